// Registration HTTP handlers.
//
// This file exposes REST endpoints for tournament registrations:
//   - GET    /inscripciones        (list, optional paging, ETag support)
//   - GET    /inscripciones/{id}   (detail)
//   - POST   /inscripciones        (create, Idempotency-Key replay)
//   - PUT    /inscripciones/{id}   (replace, keeps fechaInscripcion)
//   - DELETE /inscripciones/{id}   (remove)
//
// Reads are served from the query cache; successful writes invalidate it.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/http/middleware"
)

// HeaderIdempotencyReplayed marks a create answered from a previous request.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// ListInscripcionesResponse wraps a page of registrations and pagination
// information. Without paging params the page holds the whole collection.
type ListInscripcionesResponse struct {
	Inscripciones []domain.Inscripcion `json:"inscripciones"`
	Pagination    Pagination           `json:"pagination"`
}

// ListInscripciones godoc
// @ID          listInscripciones
// @Summary     List registrations
// @Description Returns the cached registration list. Paging is applied only when page or page_size is given. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Inscripciones
// @Produce     json
//
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"inscripciones:2:1715342400000000000\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListInscripcionesResponse
// @Header      200  {string} ETag  "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Failure     504  {object} handlers.ErrorResponse "Upstream timed out"
// @Router      /inscripciones [get]
func (h *Handlers) ListInscripciones(c *gin.Context) {
	ctx := c.Request.Context()
	page, pageSize, paged := clampPagination(c)

	var (
		items []domain.Inscripcion
		total int
		err   error
	)
	if paged {
		items, total, err = h.regSvc.ListPage(ctx, page, pageSize)
	} else {
		items, err = h.regSvc.List(ctx)
		total = len(items)
		page, pageSize = 1, total
	}
	if err != nil {
		failErr(c, err)
		return
	}

	etag := fmt.Sprintf(`W/"inscripciones:%d:%d:%d:%d"`, total, h.regSvc.Version().UnixNano(), page, pageSize)
	if notModified(c, etag) {
		return
	}

	pg := newPagination(page, pageSize, total)
	if !paged {
		pg.TotalPages = 1
		pg.HasNext = false
	}
	ok(c, http.StatusOK, ListInscripcionesResponse{Inscripciones: items, Pagination: pg})
}

// GetInscripcion godoc
// @ID          getInscripcion
// @Summary     Get a registration
// @Tags        Inscripciones
// @Produce     json
//
// @Param       id  path  string  true  "Registration ID"  example(3)
//
// @Success     200  {object} domain.Inscripcion
// @Failure     400  {object} handlers.ErrorResponse "Missing id"
// @Failure     404  {object} handlers.ErrorResponse "Registration not found"
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Router      /inscripciones/{id} [get]
func (h *Handlers) GetInscripcion(c *gin.Context) {
	rec, err := h.regSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// CreateInscripcion godoc
// @ID          createInscripcion
// @Summary     Register a student
// @Description Validates the form, creates the registration upstream, and refreshes the cached list. Retrying with the same Idempotency-Key returns the original registration with Idempotency-Replayed: true.
// @Tags        Inscripciones
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                   false "Client retry key"  example(form-4f1c2a)
// @Param       body             body    domain.InscripcionInput  true  "Registration form"
//
// @Success     201  {object} domain.Inscripcion
// @Header      201  {string} Idempotency-Replayed "true when served from a previous request"
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Router      /inscripciones [post]
func (h *Handlers) CreateInscripcion(c *gin.Context) {
	var in domain.InscripcionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	rec, replayed, err := h.regSvc.Create(c.Request.Context(), in, key)
	if err != nil {
		failErr(c, err)
		return
	}
	if replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusCreated, rec)
}

// UpdateInscripcion godoc
// @ID          updateInscripcion
// @Summary     Replace a registration
// @Description Validates the form and replaces the registration; the original fechaInscripcion is kept.
// @Tags        Inscripciones
// @Accept      json
// @Produce     json
//
// @Param       id    path    string                   true  "Registration ID"  example(3)
// @Param       body  body    domain.InscripcionInput  true  "Registration form"
//
// @Success     200  {object} domain.Inscripcion
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Registration not found"
// @Failure     422  {object} handlers.ErrorResponse "Validation failed"
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Router      /inscripciones/{id} [put]
func (h *Handlers) UpdateInscripcion(c *gin.Context) {
	var in domain.InscripcionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	rec, err := h.regSvc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

// DeleteInscripcion godoc
// @ID          deleteInscripcion
// @Summary     Delete a registration
// @Tags        Inscripciones
//
// @Param       id  path  string  true  "Registration ID"  example(3)
//
// @Success     204  {string} string "No Content"
// @Failure     404  {object} handlers.ErrorResponse "Registration not found"
// @Failure     502  {object} handlers.ErrorResponse "Upstream failed"
// @Router      /inscripciones/{id} [delete]
func (h *Handlers) DeleteInscripcion(c *gin.Context) {
	if err := h.regSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		failErr(c, err)
		return
	}
	noContent(c)
}
