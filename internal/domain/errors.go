package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrLimitExceeded     = errors.New("limit exceeded")
	ErrInvalidInput      = errors.New("invalid input")
	ErrAlreadyExists     = errors.New("already exists")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrWorkflowFinalized = errors.New("workflow already finalized")
	ErrWorkflowFailed    = errors.New("workflow failed")

	ErrAgentTimeout     = errors.New("matching agent timed out")
	ErrAgentUnavailable = errors.New("matching agent unreachable")
	ErrAgentProtocol    = errors.New("matching agent protocol error")
)

type AgentErrorKind string

const (
	AgentErrTimeout    AgentErrorKind = FailureTimeout
	AgentErrConnection AgentErrorKind = FailureConnection
	AgentErrProtocol   AgentErrorKind = FailureProtocol
)

// AgentError is returned by every matching agent client. It matches the
// corresponding ErrAgent* sentinel under errors.Is.
type AgentError struct {
	Kind  AgentErrorKind
	Cause error
}

func (e *AgentError) Error() string {
	switch e.Kind {
	case AgentErrTimeout:
		return fmt.Sprintf("AI agent timeout: %v", e.Cause)
	case AgentErrConnection:
		return fmt.Sprintf("AI agent connection failed: %v", e.Cause)
	default:
		return fmt.Sprintf("AI agent protocol error: %v", e.Cause)
	}
}

func (e *AgentError) Unwrap() error { return e.Cause }

func (e *AgentError) Is(target error) bool {
	switch target {
	case ErrAgentTimeout:
		return e.Kind == AgentErrTimeout
	case ErrAgentUnavailable:
		return e.Kind == AgentErrConnection
	case ErrAgentProtocol:
		return e.Kind == AgentErrProtocol
	}
	return false
}

// NewValidationError wraps ErrInvalidInput with a client-facing message.
func NewValidationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
