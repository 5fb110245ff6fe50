// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the error
// envelope, the success writers, and the translation of service and upstream
// errors into stable status codes.
//
// Example error response:
//
//	HTTP/1.1 422 Unprocessable Entity
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "validation_failed",
//	  "message": "validation failed: correoElectronico",
//	  "details": [{"field": "correoElectronico", "rule": "form_email", "message": "Por favor, ingrese un correo electrónico válido"}]
//	}
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/tkd-inscripciones/internal/client"
	"github.com/tbourn/tkd-inscripciones/internal/http/middleware"
	"github.com/tbourn/tkd-inscripciones/internal/services"
)

// statusClientClosedRequest is the non-standard status logged when the
// caller went away before the response was ready.
const statusClientClosedRequest = 499

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"registration not found"`
	// Per-field failures, only set for validation_failed
	Details []services.FieldError `json:"details,omitempty"`
}

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		lg := middleware.LoggerFrom(c)
		lg.Error().
			Int("status", status).
			Str("code", resp.Code).
			Str("message", resp.Message).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() for router-level fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// noContent writes an HTTP 204 No Content response.
func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// failErr maps an error returned by a service onto the envelope:
//
//	*services.ValidationError   422 validation_failed (with details)
//	services.ErrMissingID       400 bad_request
//	client.ErrNotFound          404 not_found
//	context.DeadlineExceeded    504 upstream_timeout
//	context.Canceled            499 (client went away)
//	*client.TransportError      502 upstream_failed (operation message)
//	anything else               500 internal_error
func failErr(c *gin.Context, err error) {
	var ve *services.ValidationError
	var te *client.TransportError
	switch {
	case errors.As(err, &ve):
		failWith(c, http.StatusUnprocessableEntity, ErrorResponse{
			Code:    ErrCodeValidationFailed,
			Message: ve.Error(),
			Details: ve.Fields,
		})
	case errors.Is(err, services.ErrMissingID):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "registration id required")
	case errors.Is(err, client.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, client.ErrNotFound.Error())
	case errors.Is(err, context.DeadlineExceeded):
		fail(c, http.StatusGatewayTimeout, ErrCodeUpstreamTimeout, "upstream timed out")
	case errors.Is(err, context.Canceled):
		c.AbortWithStatus(statusClientClosedRequest)
	case errors.As(err, &te):
		fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, te.Message)
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}
