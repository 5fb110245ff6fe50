package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tkd-inscripciones/internal/dashboard"
	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/utils"
)

//
// Service contracts (context-aware)
//

// RegistrationService validates and forwards registration operations to the
// cached query layer. *services.RegistrationService satisfies it.
type RegistrationService interface {
	// List returns the whole collection.
	List(ctx context.Context) ([]domain.Inscripcion, error)
	// ListPage returns one page and the collection size.
	ListPage(ctx context.Context, page, pageSize int) ([]domain.Inscripcion, int, error)
	// Version reports when the cached collection was loaded.
	Version() time.Time
	Get(ctx context.Context, id string) (*domain.Inscripcion, error)
	// Create reports replayed=true when idemKey matched a previous create.
	Create(ctx context.Context, in domain.InscripcionInput, idemKey string) (*domain.Inscripcion, bool, error)
	Update(ctx context.Context, id string, in domain.InscripcionInput) (*domain.Inscripcion, error)
	Delete(ctx context.Context, id string) error
	Escuelas(ctx context.Context) ([]domain.Escuela, error)
}

// DashboardService aggregates the registration set for the control board.
type DashboardService interface {
	Summary(ctx context.Context) (dashboard.Summary, time.Time, error)
}

// ThemeService reads and changes the persisted light/dark preference.
type ThemeService interface {
	Mode() domain.ThemeMode
	Set(ctx context.Context, m domain.ThemeMode) (domain.ThemeMode, error)
	Toggle(ctx context.Context) (domain.ThemeMode, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	regSvc   RegistrationService
	dashSvc  DashboardService
	themeSvc ThemeService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(regSvc RegistrationService, dashSvc DashboardService, themeSvc ThemeService) *Handlers {
	return &Handlers{regSvc: regSvc, dashSvc: dashSvc, themeSvc: themeSvc}
}

//
// DTOs
//

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
}

func newPagination(page, pageSize, total int) Pagination {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params, and
// reports whether the caller asked for paging at all.
func clampPagination(c *gin.Context) (page, pageSize int, paged bool) {
	_, hasPage := c.GetQuery("page")
	_, hasSize := c.GetQuery("page_size")
	page, pageSize = utils.NormalizePage(
		utils.AtoiDefault(c.Query("page"), 1),
		utils.AtoiDefault(c.Query("page_size"), utils.DefaultPageSize),
	)
	return page, pageSize, hasPage || hasSize
}

// notModified sets etag and reports whether the request's If-None-Match
// already names it, in which case a 304 has been written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
		c.Status(http.StatusNotModified)
		return true
	}
	return false
}
