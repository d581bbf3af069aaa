// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Layer file and environment overrides on top via Load.
package config

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir holds the snapshot store files.
	DataDir string `koanf:"data_dir"`

	// StoreLatencyMS adds an artificial delay to every store call so the
	// client sees realistic loading states against the local medium.
	StoreLatencyMS int `koanf:"store_latency_ms"`

	// LeaderboardLimit caps GET /leaderboard?limit.
	LeaderboardLimit int `koanf:"leaderboard_limit"`

	// DedupeSize bounds the turn-id idempotency cache.
	DedupeSize int `koanf:"dedupe_size"`

	// EventBusSize bounds the session event bus buffer.
	EventBusSize int `koanf:"event_bus_size"`

	// Provider selects the AI partner backend: "offline" or "anthropic".
	Provider string `koanf:"provider"`

	// AnthropicModel overrides the hosted model identifier.
	AnthropicModel string `koanf:"anthropic_model"`

	// ImpactMin and ImpactMax bound the per-turn heuristic score impact.
	ImpactMin int `koanf:"impact_min"`
	ImpactMax int `koanf:"impact_max"`

	// BcryptCost tunes password hashing. Zero means the library default.
	BcryptCost int `koanf:"bcrypt_cost"`
}

// Provider backends.
const (
	ProviderOffline   = "offline"
	ProviderAnthropic = "anthropic"
)

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:         "info",
		Addr:             ":9080",
		DataDir:          "data",
		StoreLatencyMS:   120,
		LeaderboardLimit: 50,
		DedupeSize:       10_000,
		EventBusSize:     1024,
		Provider:         ProviderOffline,
		AnthropicModel:   "",
		ImpactMin:        5,
		ImpactMax:        19,
		BcryptCost:       0,
	}
}
