// Command server runs the registrations backend: it proxies the tournament
// API through a cached query layer and serves the form, table, dashboard and
// theme endpoints.
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
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/tkd-inscripciones/internal/client"
	"github.com/tbourn/tkd-inscripciones/internal/config"
	httpapi "github.com/tbourn/tkd-inscripciones/internal/http"
	"github.com/tbourn/tkd-inscripciones/internal/observability"
	"github.com/tbourn/tkd-inscripciones/internal/query"
	"github.com/tbourn/tkd-inscripciones/internal/repo"
	"github.com/tbourn/tkd-inscripciones/internal/sysutil"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

const purgeEvery = time.Hour

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.ConfigureLogger(nil, cfg.LogLevel, cfg.LogPretty)
	gin.SetMode(cfg.GinMode)
	ver := sysutil.FirstNonEmpty(version, os.Getenv("APP_VERSION"), "dev")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup")
	}

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("open database")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate")
	}
	if cfg.OTEL.Enabled {
		if err := repo.EnableTracing(db); err != nil {
			log.Fatal().Err(err).Msg("gorm tracing")
		}
	}

	upstream := client.New(cfg.Upstream.BaseURL,
		client.WithHTTPClient(&http.Client{Timeout: cfg.Upstream.Timeout}),
		client.WithSchoolsBaseURL(cfg.Upstream.SchoolsBaseURL),
	)
	regs := query.NewRegistrations(query.New(query.Options{
		StaleTime: cfg.Query.StaleTime,
		GCTime:    cfg.Query.GCTime,
	}), upstream)

	r := gin.New()
	if err := httpapi.RegisterRoutes(ctx, r, httpapi.Deps{DB: db, Registrations: regs}, cfg); err != nil {
		log.Fatal().Err(err).Msg("register routes")
	}

	go purgeIdempotency(ctx, db)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Dur("query_stale_time", regs.Cache().StaleTime()).
			Str("version", ver).
			Msg("http listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := shutdownOTel(sctx); err != nil {
		log.Error().Err(err).Msg("otel shutdown")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info().Msg("bye")
}

// purgeIdempotency drops expired Idempotency-Key records until ctx ends.
func purgeIdempotency(ctx context.Context, db *gorm.DB) {
	t := time.NewTicker(purgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency")
				continue
			}
			if n > 0 {
				log.Debug().Int64("rows", n).Msg("purged idempotency records")
			}
		}
	}
}
