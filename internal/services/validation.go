package services

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// emailPattern is the address check the registration form applies.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const msgInvalidEmail = "Por favor, ingrese un correo electrónico válido"

var rangeMessages = map[string]string{
	"edad": "La edad debe estar entre 5 y 100 años",
	"peso": "El peso debe estar entre 20 y 200 kg",
}

// newValidator builds a validator that reports fields by their JSON name and
// knows the registration-specific tags.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration errors only happen on an empty tag or a nil func.
	_ = v.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return domain.IsDocumentType(fl.Field().String())
	})
	_ = v.RegisterValidation("belt_rank", func(fl validator.FieldLevel) bool {
		return domain.IsBeltRank(fl.Field().String())
	})
	_ = v.RegisterValidation("form_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

// normalizeInput trims every text field.
func normalizeInput(in domain.InscripcionInput) domain.InscripcionInput {
	in.NombreEscuela = strings.TrimSpace(in.NombreEscuela)
	in.NombreAlumno = strings.TrimSpace(in.NombreAlumno)
	in.ApellidoAlumno = strings.TrimSpace(in.ApellidoAlumno)
	in.Documento = strings.TrimSpace(in.Documento)
	in.TipoDocumento = strings.TrimSpace(in.TipoDocumento)
	in.CorreoElectronico = strings.TrimSpace(in.CorreoElectronico)
	in.GradoCinturon = strings.TrimSpace(in.GradoCinturon)
	return in
}

func validateInput(v *validator.Validate, in domain.InscripcionInput) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fe.Field(),
			Rule:    fe.Tag(),
			Message: fieldMessage(fe.Field(), fe.Tag()),
		})
	}
	return out
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return "Este campo es obligatorio"
	case "form_email":
		return msgInvalidEmail
	case "document_type":
		return "El tipo de documento debe ser RUT, Pasaporte o DNI"
	case "belt_rank":
		return "Grado de cinturón desconocido"
	case "min", "max":
		if m, ok := rangeMessages[field]; ok {
			return m
		}
	}
	return "Valor inválido"
}
