package session

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lojasmm/smoky/internal/chatui"
)

func TestManager_CreateSeedsWelcome(t *testing.T) {
	m := NewManager(5, []string{"hi", "ask me"})
	s := m.Create()

	msgs, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "welcome_0", msgs[0].ID)
	assert.Equal(t, "hi", msgs[0].Content.Text)
	assert.Equal(t, chatui.PositionLeft, msgs[0].Position)
	assert.Equal(t, "welcome_1", msgs[1].ID)
}

func TestManager_UnknownSession(t *testing.T) {
	m := NewManager(5, nil)

	err := m.WithLock("nope", func(*Session) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = m.Snapshot("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_SnapshotIsACopy(t *testing.T) {
	m := NewManager(5, []string{"hi"})
	s := m.Create()

	snap, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	snap[0].Content.Text = "changed"

	again, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "hi", again[0].Content.Text)
}

func TestManager_WithLockSerializesTurns(t *testing.T) {
	m := NewManager(5, nil)
	s := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithLock(s.ID, func(s *Session) error {
				s.Append(chatui.TextMessage("u", "x", chatui.PositionRight))
				s.Append(chatui.TextMessage("a", "y", chatui.PositionLeft))
				return nil
			})
		}()
	}
	wg.Wait()

	msgs, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 100)
	for i := 0; i < len(msgs); i += 2 {
		assert.Equal(t, "u", msgs[i].ID)
		assert.Equal(t, "a", msgs[i+1].ID)
	}
}

// fakeClock is a manual clock safe to advance while other goroutines read it.
type fakeClock struct{ nanos atomic.Int64 }

func newFakeClock(m *Manager) *fakeClock {
	c := &fakeClock{}
	c.nanos.Store(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixNano())
	m.now = c.Now
	return c
}

func (c *fakeClock) Now() time.Time { return time.Unix(0, c.nanos.Load()) }

func (c *fakeClock) Advance(d time.Duration) { c.nanos.Add(int64(d)) }

func activeTurns(m *Manager, id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id].active
}

func TestManager_Cleanup(t *testing.T) {
	m := NewManager(5, nil)
	clock := newFakeClock(m)
	stale := m.Create()
	clock.Advance(2 * time.Hour)
	fresh := m.Create()

	assert.Equal(t, 1, m.Cleanup(time.Hour))
	assert.Equal(t, 1, m.Len())

	_, err := m.Snapshot(stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = m.Snapshot(fresh.ID)
	assert.NoError(t, err)
}

func TestManager_CleanupSkipsPendingTurn(t *testing.T) {
	m := NewManager(5, nil)
	clock := newFakeClock(m)
	s := m.Create()

	// Another turn holds the session lock, so the next caller is parked
	// between lookup and acquiring the lock.
	s.mu.Lock()
	done := make(chan error, 1)
	go func() {
		done <- m.WithLock(s.ID, func(s *Session) error {
			s.Append(chatui.TextMessage("u", "late", chatui.PositionRight))
			return nil
		})
	}()
	require.Eventually(t, func() bool { return activeTurns(m, s.ID) == 1 }, time.Second, time.Millisecond)

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 0, m.Cleanup(time.Hour))
	assert.Equal(t, 1, m.Len())

	s.mu.Unlock()
	require.NoError(t, <-done)

	msgs, err := m.Snapshot(s.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "late", msgs[0].Content.Text)

	// Finishing the turn refreshes lastUsed.
	assert.Equal(t, 0, m.Cleanup(time.Hour))

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 1, m.Cleanup(time.Hour))
	assert.Equal(t, 0, m.Len())
}

func TestManager_CleanupSkipsRunningTurn(t *testing.T) {
	m := NewManager(5, nil)
	clock := newFakeClock(m)
	s := m.Create()

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- m.WithLock(s.ID, func(*Session) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	clock.Advance(2 * time.Hour)
	assert.Equal(t, 0, m.Cleanup(time.Hour))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, 1, m.Len())
}

func TestManager_RateLimiterBurst(t *testing.T) {
	m := NewManager(2, nil)
	s := m.Create()

	assert.True(t, s.Limiter.Allow())
	assert.True(t, s.Limiter.Allow())
	assert.False(t, s.Limiter.Allow())
}
