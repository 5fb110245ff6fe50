// Package httpapi wires the HTTP transport (Gin) to the registration, dashboard
// and theme services. It centralizes the cross-cutting concerns: tracing,
// correlation IDs, redacted logging, panic recovery, compression, metrics,
// idempotency, rate limiting, CORS and security headers.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/tkd-inscripciones/docs"
	"github.com/tbourn/tkd-inscripciones/internal/config"
	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/http/handlers"
	"github.com/tbourn/tkd-inscripciones/internal/http/middleware"
	"github.com/tbourn/tkd-inscripciones/internal/query"
	"github.com/tbourn/tkd-inscripciones/internal/repo"
	"github.com/tbourn/tkd-inscripciones/internal/services"
)

// prefRepoShim adapts the repository free functions to services.PreferenceRepo.
type prefRepoShim struct{}

// GetPreference proxies repo.GetPreference.
func (prefRepoShim) GetPreference(ctx context.Context, db *gorm.DB, key string) (*domain.Preference, error) {
	return repo.GetPreference(ctx, db, key)
}

// SetPreference proxies repo.SetPreference.
func (prefRepoShim) SetPreference(ctx context.Context, db *gorm.DB, key, value string) (*domain.Preference, error) {
	return repo.SetPreference(ctx, db, key, value)
}

// idemRepoShim adapts the repository free functions to services.IdempotencyRepo.
type idemRepoShim struct{}

// GetIdempotency proxies repo.GetIdempotency.
func (idemRepoShim) GetIdempotency(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.Idempotency, error) {
	return repo.GetIdempotency(ctx, db, key, now)
}

// CreateIdempotency proxies repo.CreateIdempotency.
func (idemRepoShim) CreateIdempotency(ctx context.Context, db *gorm.DB, key, inscripcionID string, status int, ttl time.Duration) (*domain.Idempotency, error) {
	return repo.CreateIdempotency(ctx, db, key, inscripcionID, status, ttl)
}

// Deps are the long-lived objects built in main and shared by the services.
type Deps struct {
	// DB stores the theme preference and Idempotency-Key outcomes.
	DB *gorm.DB
	// Registrations is the cached query facade over the upstream API.
	Registrations *query.Registrations
}

// exposed lists the response headers browser clients may read.
var exposed = []string{"Content-Length", "ETag", handlers.HeaderIdempotencyReplayed}

// RegisterRoutes attaches all middleware and endpoints to r. It reads the
// persisted theme through ctx and fails if the preference store is unusable.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. gzip
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per IP, writes only, bypass on replay)
//  10. CORS and security headers
func RegisterRoutes(ctx context.Context, r *gin.Engine, deps Deps, cfg config.Config) error {
	r.HandleMethodNotAllowed = true
	db := deps.DB

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))
	r.Use(middleware.Recovery())
	r.Use(limitBody(1 << 20))
	// promhttp compresses on its own
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen:     200,
			Replayable: middleware.ReplayableRoute(http.MethodPost, createPath(cfg.APIBasePath)),
		},
		func(ctx context.Context, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, key, now)
			if errors.Is(err, repo.ErrNotFound) {
				return false, nil
			}
			return rec != nil, err
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByClientIP())
	r.Use(rl.Handler())

	r.Use(corsMiddleware(cfg.CORS.AllowedOrigins)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		Revalidate:   true,
		EnablePolicy: true,
		Expose:       exposed,
	}))

	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/ready", func(c *gin.Context) {
		if err := ping(c.Request.Context(), db); err != nil {
			handlers.Fail(c, http.StatusServiceUnavailable, "not_ready", "preference store unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.SwaggerEnabled {
		docs.SwaggerInfo.BasePath = cfg.APIBasePath
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← query layer / repo
	regSvc := services.NewRegistrationService(deps.Registrations)
	regSvc.DB = db
	regSvc.Idem = idemRepoShim{}
	if cfg.IdempotencyTTL > 0 {
		regSvc.IdemTTL = cfg.IdempotencyTTL
	}
	dashSvc := &services.DashboardService{Queries: deps.Registrations}
	themeSvc, err := services.NewThemeService(ctx, db, prefRepoShim{}, cfg.ThemePreferDark)
	if err != nil {
		return fmt.Errorf("load theme preference: %w", err)
	}
	h := handlers.New(regSvc, dashSvc, themeSvc)

	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		api.GET("/inscripciones", h.ListInscripciones)
		api.POST("/inscripciones", h.CreateInscripcion)
		api.GET("/inscripciones/:id", h.GetInscripcion)
		api.PUT("/inscripciones/:id", h.UpdateInscripcion)
		api.DELETE("/inscripciones/:id", h.DeleteInscripcion)

		api.GET("/escuelas", h.ListEscuelas)
		api.GET("/dashboard", h.GetDashboard)

		api.GET("/preferences/theme", h.GetTheme)
		api.PUT("/preferences/theme", h.SetTheme)
		api.POST("/preferences/theme/toggle", h.ToggleTheme)
	}
	return nil
}

// corsMiddleware allows every origin when none are configured, otherwise
// echoes allow-listed origins. ACAO is also set on requests gin-contrib/cors
// ignores (no Origin header, same-origin) so health checks see it.
func corsMiddleware(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "If-None-Match", middleware.HeaderIdempotencyKey},
		ExposeHeaders:    append([]string{"X-Request-ID"}, exposed...),
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

func ping(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return gorm.ErrInvalidDB
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// createPath is the route template of the registration create endpoint, the
// only write that replays a stored Idempotency-Key outcome.
func createPath(base string) string {
	if base == "" || base == "/" {
		return "/inscripciones"
	}
	return base + "/inscripciones"
}

// limitBody caps request bodies at maxBytes; larger bodies fail on read.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
