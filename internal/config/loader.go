package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if AGON_CONFIG is set
//  3. env (prefix AGON_)
func Load() (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("AGON_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
	}

	// Map env keys like AGON_STORE_LATENCY_MS -> store_latency_ms,
	// preserving underscores to match the koanf tags on the struct.
	envProvider := env.Provider("AGON_", ".", func(s string) string {
		s = strings.ToLower(s)

		return strings.TrimPrefix(s, "agon_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalid)
	}
	if cfg.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalid)
	}
	if cfg.Provider != ProviderOffline && cfg.Provider != ProviderAnthropic {
		return fmt.Errorf("%w: unknown provider %q", ErrInvalid, cfg.Provider)
	}
	if cfg.ImpactMin < 0 || cfg.ImpactMax < cfg.ImpactMin {
		return fmt.Errorf("%w: impact range %d..%d", ErrInvalid, cfg.ImpactMin, cfg.ImpactMax)
	}
	if cfg.LeaderboardLimit <= 0 {
		return fmt.Errorf("%w: leaderboard_limit must be positive", ErrInvalid)
	}

	return nil
}
