package identity

import "errors"

// Identity errors.
var (
	// ErrValidation marks malformed sign-up or profile input.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateAccount marks a sign-up with an email already in use.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrInvalidCredential marks a sign-in with an unknown email or a
	// wrong password. The two cases are deliberately indistinguishable.
	ErrInvalidCredential = errors.New("invalid credentials")
	// ErrNotFound marks a lookup for an absent account or profile,
	// including session reads while nobody is signed in.
	ErrNotFound = errors.New("not found")
)
