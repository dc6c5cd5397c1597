package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crhubottom/school-flow-project/internal/api"
	"github.com/crhubottom/school-flow-project/internal/auth"
	"github.com/crhubottom/school-flow-project/internal/config"
	"github.com/crhubottom/school-flow-project/internal/service"
	"github.com/crhubottom/school-flow-project/internal/storage"
	"github.com/crhubottom/school-flow-project/internal/storage/firestore"
	sqlstore "github.com/crhubottom/school-flow-project/internal/storage/sql"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	// Initialize storage
	store, err := newStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize storage")
	}
	defer store.Close()
	log.Info().Str("backend", cfg.Store.Backend).Msg("storage initialized")

	// Initialize identity-provider verifier
	verifier, err := newVerifier(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize token verifier")
	}

	// Profile mirror runs as its own background task so a failed profile
	// write can never affect a request.
	mirror := service.NewProfileMirror(store)
	mirror.Start()
	defer mirror.Stop()

	groups := service.NewGroupService(store)
	router := api.NewRouter(groups, verifier, mirror, cfg.CORS.GetAllowedOrigins())

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr()).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server stopped")
}

func newStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Store.Backend {
	case config.BackendSQL:
		if cfg.Store.DBDriver == "sqlite3" {
			if err := os.MkdirAll(filepath.Dir(cfg.Store.DBDSN), 0o755); err != nil {
				return nil, err
			}
		}
		return sqlstore.New(cfg.Store.DBDriver, cfg.Store.DBDSN)
	default:
		return firestore.New(ctx, cfg.Store.FirebaseProjectID, cfg.Store.FirebaseCredentials)
	}
}

func newVerifier(ctx context.Context, cfg *config.Config) (auth.Verifier, error) {
	if cfg.Auth.DevMode {
		log.Warn().Msg("dev-mode token verifier enabled; do not use in production")
		return auth.NewStaticVerifier(), nil
	}

	issuer := cfg.Auth.IssuerURL
	if issuer == "" {
		issuer = auth.FirebaseIssuerURL(cfg.Store.FirebaseProjectID)
	}
	audience := cfg.Auth.Audience
	if audience == "" {
		audience = cfg.Store.FirebaseProjectID
	}
	return auth.NewOIDCVerifier(ctx, issuer, audience)
}
