package dialogflow

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorType categorizes agent transport failures.
type ErrorType string

const (
	ErrTimeout     ErrorType = "timeout"      // context deadline exceeded, client timeout
	ErrRateLimit   ErrorType = "rate_limit"   // 429
	ErrServer      ErrorType = "server_error" // 5xx, agent or chatbot server down
	ErrNotFound    ErrorType = "not_found"    // 404, wrong base URL
	ErrBadResponse ErrorType = "bad_response" // 2xx with a body we could not decode
	ErrUnknown     ErrorType = "unknown"
)

// Error is returned by Client when the chatbot server answers with a
// non-2xx status or an undecodable body.
type Error struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("detectIntent status %d: %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("detectIntent status %d: %s", e.StatusCode, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// AgentError is a classified transport failure.
type AgentError struct {
	Type      ErrorType
	Message   string // user-facing hint
	Retryable bool
	Err       error
}

func (e *AgentError) Error() string { return fmt.Sprintf("%s: %v", e.Type, e.Err) }

func (e *AgentError) Unwrap() error { return e.Err }

// ClassifyError maps an error returned by Client into an AgentError.
func ClassifyError(err error) *AgentError {
	var ae *AgentError
	if errors.As(err, &ae) {
		return ae
	}

	var netErr net.Error
	var apiErr *Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return &AgentError{
			Type: ErrTimeout, Retryable: true,
			Message: "The bot took too long to answer. Please try again.",
			Err:     err,
		}
	case errors.As(err, &apiErr):
		return classifyStatus(apiErr)
	default:
		return &AgentError{
			Type: ErrUnknown, Retryable: false,
			Message: "Could not reach the bot.",
			Err:     err,
		}
	}
}

func classifyStatus(e *Error) *AgentError {
	switch {
	case e.Err != nil:
		return &AgentError{
			Type: ErrBadResponse, Retryable: false,
			Message: "The bot sent a reply we could not read.",
			Err:     e,
		}
	case e.StatusCode == http.StatusTooManyRequests:
		return &AgentError{
			Type: ErrRateLimit, Retryable: true,
			Message: "The bot is busy right now. Please try again in a moment.",
			Err:     e,
		}
	case e.StatusCode == http.StatusNotFound:
		return &AgentError{
			Type: ErrNotFound, Retryable: false,
			Message: "The bot endpoint could not be found.",
			Err:     e,
		}
	case e.StatusCode >= 500:
		return &AgentError{
			Type: ErrServer, Retryable: true,
			Message: "The bot is temporarily unavailable. Please try again in a few minutes.",
			Err:     e,
		}
	default:
		return &AgentError{
			Type: ErrUnknown, Retryable: false,
			Message: "Unexpected error while talking to the bot.",
			Err:     e,
		}
	}
}
