package session

import (
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/lojasmm/smoky/internal/chatui"
)

var ErrNotFound = errors.New("session not found")

const defaultPerMinute = 10

// Session is one in-memory conversation. Fields are only safe to touch
// inside Manager.WithLock.
type Session struct {
	ID         string
	Transcript []chatui.Message
	Limiter    *rate.Limiter

	mu sync.Mutex

	// guarded by Manager.mu
	lastUsed time.Time
	active   int
}

// Append adds messages to the end of the transcript, in order.
func (s *Session) Append(msgs ...chatui.Message) {
	s.Transcript = append(s.Transcript, msgs...)
}

// Manager owns every live session and serializes turns within a session
// so that concurrent replies never interleave in the transcript.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	perMinute int
	welcome   []string
	now       func() time.Time
}

func NewManager(perMinute int, welcome []string) *Manager {
	if perMinute <= 0 {
		perMinute = defaultPerMinute
	}
	return &Manager{
		sessions:  make(map[string]*Session),
		perMinute: perMinute,
		welcome:   welcome,
		now:       time.Now,
	}
}

// Create starts a session seeded with the welcome lines.
func (m *Manager) Create() *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(m.perMinute)), m.perMinute),
	}
	for i, line := range m.welcome {
		s.Append(chatui.TextMessage(welcomeID(i), line, chatui.PositionLeft))
	}

	m.mu.Lock()
	s.lastUsed = m.now()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// WithLock executes fn while holding the session's mutex.
// Turns on the same session are serialized; different sessions run in parallel.
// A session is pinned from lookup until fn returns, so Cleanup never evicts
// it while a caller is waiting for or holding its lock.
func (m *Manager) WithLock(id string, fn func(s *Session) error) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	if ok {
		s.active++
		s.lastUsed = m.now()
	}
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}

	defer func() {
		m.mu.Lock()
		s.active--
		s.lastUsed = m.now()
		m.mu.Unlock()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

// Snapshot returns a copy of the session transcript.
func (m *Manager) Snapshot(id string) ([]chatui.Message, error) {
	var out []chatui.Message
	err := m.WithLock(id, func(s *Session) error {
		out = append(make([]chatui.Message, 0, len(s.Transcript)), s.Transcript...)
		return nil
	})
	return out, err
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Cleanup removes sessions not used within maxAge to prevent memory leaks.
func (m *Manager) Cleanup(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		if s.active > 0 {
			continue // mid-turn
		}
		if now.Sub(s.lastUsed) > maxAge {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

func welcomeID(i int) string {
	return "welcome_" + strconv.Itoa(i)
}
