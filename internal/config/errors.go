package config

import "errors"

// Config errors.
var (
	// ErrLoad marks a failure reading a configuration source.
	ErrLoad = errors.New("cannot load configuration")
	// ErrInvalid marks configuration that loaded but fails validation.
	ErrInvalid = errors.New("invalid configuration")
)
