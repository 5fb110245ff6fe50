// Package services holds the application logic behind the HTTP handlers:
// registration form validation and submission, the dashboard summary and the
// theme preference. This file centralizes the service-level error values so
// handlers can map them to HTTP results consistently.
package services

import (
	"errors"
	"strings"

	"github.com/tbourn/tkd-inscripciones/internal/client"
)

var (
	// ErrInscripcionNotFound matches upstream 404s for a single registration.
	ErrInscripcionNotFound = client.ErrNotFound

	// ErrMissingID is returned when a detail operation is called with a blank id.
	ErrMissingID = errors.New("registration id is required")

	// ErrInvalidTheme is returned when a theme mode is neither light nor dark.
	ErrInvalidTheme = errors.New("theme mode must be light or dark")
)

// FieldError describes one rejected form field. Field uses the wire name
// (e.g. "correoElectronico").
type FieldError struct {
	Field   string `json:"field" example:"correoElectronico"`
	Rule    string `json:"rule" example:"form_email"`
	Message string `json:"message" example:"Por favor, ingrese un correo electrónico válido"`
}

// ValidationError is returned when a registration form fails validation.
// It is produced before any upstream call.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "validation failed: " + strings.Join(names, ", ")
}
