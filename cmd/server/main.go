// Command server runs the messaging gateway: a small HTTP API that sends
// templated messages (optionally with an image and a document attachment)
// through a paired messaging session and records every send in SQLite.
//
// Startup order matters: configuration, logging, tracing, database, media
// store, then the default session is brought up before the HTTP listener so
// pairing begins immediately.
//
// @title        Messaging Gateway API
// @version      1.0
// @description  HTTP gateway for sending templated messages with attachments.
// @BasePath     /
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/tbourn/go-wa-gateway/docs"
	"github.com/tbourn/go-wa-gateway/internal/config"
	httpapi "github.com/tbourn/go-wa-gateway/internal/http"
	"github.com/tbourn/go-wa-gateway/internal/media"
	"github.com/tbourn/go-wa-gateway/internal/observability"
	"github.com/tbourn/go-wa-gateway/internal/repo"
	"github.com/tbourn/go-wa-gateway/internal/session"
	"github.com/tbourn/go-wa-gateway/internal/sysutil"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

// simPairDelay is how long the simulated transport waits before reporting
// ready. Real transports pair when the operator scans the code.
const simPairDelay = 2 * time.Second

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	gin.SetMode(cfg.GinMode)

	appCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(appCtx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}

	// An unreachable send log is fatal: the gateway must not deliver
	// messages it cannot record.
	db, err := repo.OpenSQLite(cfg.DBPath, cfg.OTEL.Enabled)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database failed")
	}

	store, err := media.NewStore(cfg.MediaDir)
	if err != nil {
		log.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("media store init failed")
	}

	registry := session.NewRegistry(session.NewSimFactory(simPairDelay, log.Logger), log.Logger)
	registry.CreateSession(appCtx, cfg.SessionID)

	r := gin.New()
	httpapi.RegisterRoutes(appCtx, r, db, registry, store, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("session", cfg.SessionID).Msg("gateway listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-appCtx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	registry.Shutdown()

	if err := shutdownOTel(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("otel shutdown failed")
	}
	log.Info().Msg("gateway stopped")
}
