package session

import "errors"

// Session machine errors.
var (
	// ErrValidation marks empty topic or turn input.
	ErrValidation = errors.New("invalid session input")
	// ErrInvalidTransition marks an operation the current state does not
	// allow.
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	// ErrTurnInFlight marks a submission while the AI reply for the
	// previous turn is still pending.
	ErrTurnInFlight = errors.New("turn already in flight")
	// ErrDuplicateTurn marks a turn id that was already processed.
	ErrDuplicateTurn = errors.New("duplicate turn")
	// ErrStaleTurn marks a reply that arrived after the session was
	// restarted; its result is discarded.
	ErrStaleTurn = errors.New("turn abandoned by restart")
)
