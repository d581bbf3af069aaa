package provider

import "errors"

// ErrProvider marks any failure talking to the AI partner. Callers treat
// these as transient and keep the session in a retryable state.
var ErrProvider = errors.New("ai partner unavailable")
