package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agonhq/agon/internal/adapters/http/api"
	"github.com/agonhq/agon/internal/adapters/http/swagger"
	"github.com/agonhq/agon/internal/adapters/provider"
	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/adapters/voice"
	"github.com/agonhq/agon/internal/config"
	"github.com/agonhq/agon/internal/domain/dedupe"
	"github.com/agonhq/agon/internal/domain/scoring"
	"github.com/agonhq/agon/internal/identity"
	"github.com/agonhq/agon/internal/session"
	"github.com/agonhq/agon/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")

		return
	}
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")

		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	medium, err := repository.NewFileMedium(cfg.DataDir)
	if err != nil {
		log.Error(ctx, "cannot open data directory", logger.String("data_dir", cfg.DataDir), logger.Error(err))

		return
	}
	store := repository.NewStore(medium,
		repository.WithLatency(time.Duration(cfg.StoreLatencyMS)*time.Millisecond))

	ident := identity.NewManager(store,
		identity.WithHasher(identity.NewBcryptHasher(cfg.BcryptCost)))

	partner := buildPartner(ctx, cfg, log)

	bus := session.NewBus(cfg.EventBusSize)
	registry := session.NewRegistry(store, partner,
		session.WithBus(bus),
		session.WithScorer(scoring.NewHeuristicScorer(
			scoring.WithImpactRange(cfg.ImpactMin, cfg.ImpactMax))),
		session.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(cfg.DedupeSize))))
	defer registry.Close()

	speaker := voice.NewSpeaker(bus, voice.NoopSynthesizer{})
	go speaker.Run(ctx)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(ident, registry, partner, store,
		api.WithLeaderboardLimit(cfg.LeaderboardLimit)).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}
	if err := speaker.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "speaker shutdown failed", logger.Error(err))
	}
	_ = bus.Close()

	log.Info(ctx, "server stopped")
}

// buildPartner selects the AI backend from configuration. The hosted
// backend reads its API key from the environment; without one the offline
// partner keeps the service usable.
func buildPartner(ctx context.Context, cfg *config.Config, log logger.Logger) provider.Partner {
	if cfg.Provider == config.ProviderAnthropic {
		log.Info(ctx, "using hosted AI partner", logger.String("model", cfg.AnthropicModel))

		return provider.NewAnthropic(provider.WithModel(cfg.AnthropicModel))
	}

	log.Info(ctx, "using offline AI partner")

	return provider.NewOffline()
}
