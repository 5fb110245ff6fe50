// Package docs holds the OpenAPI 2.0 document of the HTTP API, in the layout
// swag init emits, and registers it for gin-swagger. Keep it in step with the
// handler annotations when routes change.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/dashboard": {
            "get": {
                "description": "Aggregates the cached registrations per school and per belt rank. The weak ETag changes whenever the list is reloaded.",
                "produces": ["application/json"],
                "tags": ["Dashboard"],
                "summary": "Control board summary",
                "operationId": "getDashboard",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/dashboard.Summary"},
                        "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}
                    },
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/escuelas": {
            "get": {
                "description": "Returns the cached schools catalog used by the registration form.",
                "produces": ["application/json"],
                "tags": ["Escuelas"],
                "summary": "List schools",
                "operationId": "listEscuelas",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/domain.Escuela"}}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/inscripciones": {
            "get": {
                "description": "Returns the cached registration list. Paging is applied only when page or page_size is given. Supports weak ETag via If-None-Match and may return 304.",
                "produces": ["application/json"],
                "tags": ["Inscripciones"],
                "summary": "List registrations",
                "operationId": "listInscripciones",
                "parameters": [
                    {"type": "string", "description": "Return 304 if ETag matches", "name": "If-None-Match", "in": "header"},
                    {"minimum": 1, "type": "integer", "default": 1, "description": "Page number", "name": "page", "in": "query"},
                    {"maximum": 100, "minimum": 1, "type": "integer", "default": 20, "description": "Items per page", "name": "page_size", "in": "query"}
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {"$ref": "#/definitions/handlers.ListInscripcionesResponse"},
                        "headers": {"ETag": {"type": "string", "description": "Weak ETag for current result"}}
                    },
                    "304": {"description": "Not Modified", "schema": {"type": "string"}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "504": {"description": "Upstream timed out", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "post": {
                "description": "Validates the form, creates the registration upstream, and refreshes the cached list. Retrying with the same Idempotency-Key returns the original registration with Idempotency-Replayed: true.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Inscripciones"],
                "summary": "Register a student",
                "operationId": "createInscripcion",
                "parameters": [
                    {"type": "string", "example": "form-4f1c2a", "description": "Client retry key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Registration form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.InscripcionInput"}}
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {"$ref": "#/definitions/domain.Inscripcion"},
                        "headers": {"Idempotency-Replayed": {"type": "string", "description": "true when served from a previous request"}}
                    },
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/inscripciones/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Inscripciones"],
                "summary": "Get a registration",
                "operationId": "getInscripcion",
                "parameters": [
                    {"type": "string", "example": "3", "description": "Registration ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Inscripcion"}},
                    "400": {"description": "Missing id", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Registration not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "put": {
                "description": "Validates the form and replaces the registration; the original fechaInscripcion is kept.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Inscripciones"],
                "summary": "Replace a registration",
                "operationId": "updateInscripcion",
                "parameters": [
                    {"type": "string", "example": "3", "description": "Registration ID", "name": "id", "in": "path", "required": true},
                    {"description": "Registration form", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.InscripcionInput"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.Inscripcion"}},
                    "400": {"description": "Bad request", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "404": {"description": "Registration not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            },
            "delete": {
                "tags": ["Inscripciones"],
                "summary": "Delete a registration",
                "operationId": "deleteInscripcion",
                "parameters": [
                    {"type": "string", "example": "3", "description": "Registration ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content", "schema": {"type": "string"}},
                    "404": {"description": "Registration not found", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "502": {"description": "Upstream failed", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/preferences/theme": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Preferences"],
                "summary": "Current theme mode",
                "operationId": "getTheme",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ThemeResponse"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Preferences"],
                "summary": "Choose the theme mode",
                "operationId": "setTheme",
                "parameters": [
                    {"description": "Mode", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.SetThemeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ThemeResponse"}},
                    "400": {"description": "Unknown mode", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Could not persist", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/preferences/theme/toggle": {
            "post": {
                "produces": ["application/json"],
                "tags": ["Preferences"],
                "summary": "Flip between light and dark",
                "operationId": "toggleTheme",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ThemeResponse"}},
                    "500": {"description": "Could not persist", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dashboard.BeltBar": {
            "type": "object",
            "properties": {
                "color": {"type": "string"},
                "count": {"type": "integer"},
                "gradient": {"type": "boolean"},
                "label": {"type": "string"},
                "outlined": {"type": "boolean"},
                "widthPct": {"type": "number"}
            }
        },
        "dashboard.SchoolBar": {
            "type": "object",
            "properties": {
                "alumnos": {"type": "integer"},
                "nombre": {"type": "string"}
            }
        },
        "dashboard.Summary": {
            "type": "object",
            "properties": {
                "beltBars": {"type": "array", "items": {"$ref": "#/definitions/dashboard.BeltBar"}},
                "perBeltRank": {"type": "object", "additionalProperties": {"type": "integer"}},
                "perSchool": {"type": "object", "additionalProperties": {"type": "integer"}},
                "schoolBars": {"type": "array", "items": {"$ref": "#/definitions/dashboard.SchoolBar"}},
                "schoolCount": {"type": "integer"},
                "totalCount": {"type": "integer"}
            }
        },
        "domain.Escuela": {
            "type": "object",
            "properties": {
                "ciudad": {"type": "string"},
                "id": {"type": "string"},
                "nombre": {"type": "string"},
                "pais": {"type": "string"}
            }
        },
        "domain.Inscripcion": {
            "type": "object",
            "properties": {
                "apellidoAlumno": {"type": "string"},
                "correoElectronico": {"type": "string"},
                "documento": {"type": "string"},
                "edad": {"type": "integer"},
                "fechaInscripcion": {"type": "string"},
                "gradoCinturon": {"type": "string"},
                "id": {"type": "string"},
                "nombreAlumno": {"type": "string"},
                "nombreEscuela": {"type": "string"},
                "peso": {"type": "number"},
                "tipoDocumento": {"type": "string"}
            }
        },
        "domain.InscripcionInput": {
            "type": "object",
            "required": ["apellidoAlumno", "correoElectronico", "documento", "gradoCinturon", "nombreAlumno", "nombreEscuela", "tipoDocumento"],
            "properties": {
                "apellidoAlumno": {"type": "string"},
                "correoElectronico": {"type": "string"},
                "documento": {"type": "string"},
                "edad": {"type": "integer", "maximum": 100, "minimum": 5},
                "gradoCinturon": {"type": "string"},
                "nombreAlumno": {"type": "string"},
                "nombreEscuela": {"type": "string"},
                "peso": {"type": "number", "maximum": 200, "minimum": 20},
                "tipoDocumento": {"type": "string"}
            }
        },
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string", "example": "not_found"},
                "details": {"type": "array", "items": {"$ref": "#/definitions/services.FieldError"}},
                "message": {"type": "string", "example": "registration not found"},
                "request_id": {"type": "string", "example": "123e4567-e89b-12d3-a456-426614174000"}
            }
        },
        "handlers.ListInscripcionesResponse": {
            "type": "object",
            "properties": {
                "inscripciones": {"type": "array", "items": {"$ref": "#/definitions/domain.Inscripcion"}},
                "pagination": {"$ref": "#/definitions/handlers.Pagination"}
            }
        },
        "handlers.Pagination": {
            "type": "object",
            "properties": {
                "has_next": {"type": "boolean"},
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total": {"type": "integer"},
                "total_pages": {"type": "integer"}
            }
        },
        "handlers.SetThemeRequest": {
            "type": "object",
            "required": ["mode"],
            "properties": {
                "mode": {"type": "string", "enum": ["light", "dark"], "example": "light"}
            }
        },
        "handlers.ThemeResponse": {
            "type": "object",
            "properties": {
                "dark": {"type": "boolean", "example": true},
                "mode": {"type": "string", "enum": ["light", "dark"], "example": "dark"}
            }
        },
        "services.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string", "example": "correoElectronico"},
                "message": {"type": "string", "example": "Por favor, ingrese un correo electrónico válido"},
                "rule": {"type": "string", "example": "form_email"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Taekwondo Registrations API",
	Description:      "Backend for the tournament registration form, the registrations table and the control board.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
