package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"PalavraCerta/internal/config"
	"PalavraCerta/internal/database"
	"PalavraCerta/internal/geminiservice"
	"PalavraCerta/internal/notify"
	"PalavraCerta/internal/palavra"
	"PalavraCerta/internal/server"
	"PalavraCerta/internal/store"
	"PalavraCerta/internal/utility"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func gracefulShutdown(apiServer *http.Server, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Listen for the interrupt signal.
	<-ctx.Done()

	log.Info().Msg("shutting down gracefully, press Ctrl+C again to force")
	stop() // Allow Ctrl+C to force shutdown

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown with error")
	}

	log.Info().Msg("Server exiting")

	// Notify the main goroutine that the shutdown is complete
	done <- true
}

// openBackend builds the configured store backend behind an LRU cache.
// The returned cleanup closes whatever connection the backend holds.
func openBackend(ctx context.Context, cfg config.Config) (store.Backend, database.Service, func(), error) {
	var (
		backend store.Backend
		db      database.Service
		cleanup = func() {}
	)

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		svc, err := database.NewService(ctx, cfg.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		pg, err := store.NewPostgres(ctx, svc.Pool())
		if err != nil {
			svc.Close()
			return nil, nil, nil, err
		}
		backend, db, cleanup = pg, svc, svc.Close
	case config.DriverRedis:
		rdb, err := store.NewRedis(ctx, cfg.RedisURL, cfg.StoreTTL)
		if err != nil {
			return nil, nil, nil, err
		}
		backend = rdb
		cleanup = func() {
			if err := rdb.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing redis client")
			}
		}
	default:
		backend = store.NewMemory()
	}

	cached, err := store.NewCached(backend, cfg.StoreCacheSize)
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return cached, db, cleanup, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	startCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	backend, db, cleanup, err := openBackend(startCtx, cfg)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Unable to open preference store")
	}
	defer cleanup()
	log.Info().Str("driver", cfg.StoreDriver).Int("cache_size", cfg.StoreCacheSize).Msg("Preference store ready")

	storeLog := log.With().Str("component", "store").Logger()
	st := store.New(backend, &storeLog)

	geminiLog := log.With().Str("component", "gemini").Logger()
	provider := geminiservice.NewClient(cfg.Gemini, &geminiLog)
	if !provider.Enabled() {
		log.Warn().Msg("GEMINI_API_KEY is not set; every verse will be the fallback verse")
	}

	hub := notify.NewHub(cfg.AllowOrigins...)
	ctrlLog := log.With().Str("component", "palavra").Logger()
	ctrl := palavra.NewController(st, provider, palavra.Options{
		Location: cfg.DisplayTZ,
		Ambient:  utility.PrefersDark,
		Notifier: hub,
		Logger:   &ctrlLog,
	})

	secret := cfg.SessionSecret
	if secret == "" {
		// Sessions will not survive a restart.
		if secret, err = utility.GenerateSecureToken(32); err != nil {
			log.Fatal().Err(err).Msg("Unable to generate session secret")
		}
		log.Warn().Msg("SESSION_SECRET is not set; using an ephemeral key")
	}
	cookies := sessions.NewCookieStore([]byte(secret))
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	apiServer := server.NewServer(cfg.Port, server.Deps{
		Controller:   ctrl,
		Hub:          hub,
		Store:        st,
		DB:           db,
		Sessions:     cookies,
		RateLimitRPS: cfg.RateLimitRPS,
		AllowOrigins: cfg.AllowOrigins,
	})

	// Create a done channel to signal when the shutdown is complete
	done := make(chan bool, 1)

	// Run graceful shutdown in a separate goroutine
	go gracefulShutdown(apiServer, done)

	log.Info().Int("port", cfg.Port).Msg("Palavra Certa API listening")
	err = apiServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		panic(fmt.Sprintf("http server error: %s", err))
	}

	// Wait for the graceful shutdown to complete
	<-done
	log.Info().Msg("Graceful shutdown complete.")
}
