package identity

// Option customizes a Manager.
type Option func(*Manager)

// WithHasher substitutes the password hasher. Tests use this to avoid
// paying full bcrypt cost per case.
func WithHasher(hasher Hasher) Option {
	return func(m *Manager) {
		if hasher != nil {
			m.hasher = hasher
		}
	}
}

// WithMinPasswordLength overrides the minimum accepted password length.
func WithMinPasswordLength(length int) Option {
	return func(m *Manager) {
		if length > 0 {
			m.minPasswordLen = length
		}
	}
}
