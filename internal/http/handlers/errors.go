// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case. Generic codes mirror HTTP status semantics;
// the upstream_* and validation_failed codes carry failures that a status
// alone cannot distinguish. Clients are expected to branch on the code.
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "upstream_failed",
//	  "message": "failed to load registrations"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidationFailed = "validation_failed"
	ErrCodeUpstreamFailed   = "upstream_failed"
	ErrCodeUpstreamTimeout  = "upstream_timeout"
	ErrCodeThemeFailed      = "theme_failed"
)
