// Package domain defines the registration records exchanged with the external
// tournament API, the schools reference data, and the local persistence models
// (theme preference, idempotency keys) mapped with GORM.
package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Inscripcion is one tournament registration as stored by the external
// collection resource. JSON field names follow the wire format of the API.
//
// Fields:
//   - ID: decimal integer string, assigned by the client as max(existing)+1.
//     A JSON number is accepted on decode and kept as its decimal text.
//   - NombreEscuela: name of the student's school (selected from Escuela.Nombre).
//   - Documento / TipoDocumento: identity document and its kind.
//   - Edad / Peso: age in years and weight in kilograms.
//   - GradoCinturon: belt rank label (see BeltRanks).
//   - FechaInscripcion: ISO-8601 creation stamp, set once and preserved on update.
type Inscripcion struct {
	ID                string  `json:"id"`
	NombreEscuela     string  `json:"nombreEscuela"`
	NombreAlumno      string  `json:"nombreAlumno"`
	ApellidoAlumno    string  `json:"apellidoAlumno"`
	Documento         string  `json:"documento"`
	TipoDocumento     string  `json:"tipoDocumento"`
	CorreoElectronico string  `json:"correoElectronico"`
	Edad              int     `json:"edad"`
	Peso              float64 `json:"peso"`
	GradoCinturon     string  `json:"gradoCinturon"`
	FechaInscripcion  string  `json:"fechaInscripcion,omitempty"`
}

// UnmarshalJSON decodes r, accepting "id" as a string or a number.
func (r *Inscripcion) UnmarshalJSON(b []byte) error {
	type plain Inscripcion
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

// InscripcionInput is the caller-supplied part of a registration: everything
// except the identity and the creation stamp.
type InscripcionInput struct {
	NombreEscuela     string  `json:"nombreEscuela"     validate:"required"`
	NombreAlumno      string  `json:"nombreAlumno"      validate:"required"`
	ApellidoAlumno    string  `json:"apellidoAlumno"    validate:"required"`
	Documento         string  `json:"documento"         validate:"required"`
	TipoDocumento     string  `json:"tipoDocumento"     validate:"required,document_type"`
	CorreoElectronico string  `json:"correoElectronico" validate:"required,form_email"`
	Edad              int     `json:"edad"              validate:"min=5,max=100"`
	Peso              float64 `json:"peso"              validate:"min=20,max=200"`
	GradoCinturon     string  `json:"gradoCinturon"     validate:"required,belt_rank"`
}

// Input returns the editable fields of the record.
func (r Inscripcion) Input() InscripcionInput {
	return InscripcionInput{
		NombreEscuela:     r.NombreEscuela,
		NombreAlumno:      r.NombreAlumno,
		ApellidoAlumno:    r.ApellidoAlumno,
		Documento:         r.Documento,
		TipoDocumento:     r.TipoDocumento,
		CorreoElectronico: r.CorreoElectronico,
		Edad:              r.Edad,
		Peso:              r.Peso,
		GradoCinturon:     r.GradoCinturon,
	}
}

// Record builds the full wire body for id and fecha from the input.
func (in InscripcionInput) Record(id, fecha string) Inscripcion {
	return Inscripcion{
		ID:                id,
		NombreEscuela:     in.NombreEscuela,
		NombreAlumno:      in.NombreAlumno,
		ApellidoAlumno:    in.ApellidoAlumno,
		Documento:         in.Documento,
		TipoDocumento:     in.TipoDocumento,
		CorreoElectronico: in.CorreoElectronico,
		Edad:              in.Edad,
		Peso:              in.Peso,
		GradoCinturon:     in.GradoCinturon,
		FechaInscripcion:  fecha,
	}
}

// Escuela is a participating school. Read-only reference data used to
// populate the school selection of the registration form.
type Escuela struct {
	ID     string `json:"id"`
	Nombre string `json:"nombre"`
	Ciudad string `json:"ciudad"`
	Pais   string `json:"pais"`
}

// UnmarshalJSON decodes e, accepting "id" as a string or a number.
func (e *Escuela) UnmarshalJSON(b []byte) error {
	type plain Escuela
	aux := struct {
		*plain
		ID json.RawMessage `json:"id"`
	}{plain: (*plain)(e)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	id, err := decodeID(aux.ID)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// decodeID reads an id written as a JSON string or integer. Absent and null
// ids decode to "".
func decodeID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
			return "", fmt.Errorf("id %s is not an integer", n)
		}
	}
	return n.String(), nil
}

// timestampLayout matches JavaScript's Date.toISOString (UTC, milliseconds).
const timestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t as the API's ISO-8601 registration stamp.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}
