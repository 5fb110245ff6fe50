package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/query"
	"github.com/tbourn/tkd-inscripciones/internal/utils"
)

// RegistrationQueries is the cached read/mutate surface the service drives.
// *query.Registrations satisfies it.
type RegistrationQueries interface {
	List(ctx context.Context) ([]domain.Inscripcion, error)
	Get(ctx context.Context, id string) (query.Result[domain.Inscripcion], error)
	Create(ctx context.Context, in domain.InscripcionInput) (domain.Inscripcion, error)
	Update(ctx context.Context, id string, in domain.InscripcionInput) (domain.Inscripcion, error)
	Delete(ctx context.Context, id string) error
	Escuelas(ctx context.Context) ([]domain.Escuela, error)
	Cache() *query.Cache
}

// IdempotencyRepo persists Idempotency-Key outcomes of create requests.
type IdempotencyRepo interface {
	GetIdempotency(ctx context.Context, db *gorm.DB, key string, now time.Time) (*domain.Idempotency, error)
	CreateIdempotency(ctx context.Context, db *gorm.DB, key, inscripcionID string, status int, ttl time.Duration) (*domain.Idempotency, error)
}

// RegistrationService validates registration forms and submits them through
// the cached query layer. Invalid input never reaches the upstream API and
// never touches the cache.
type RegistrationService struct {
	Queries RegistrationQueries

	// DB and Idem enable Idempotency-Key replay on Create; both optional.
	DB      *gorm.DB
	Idem    IdempotencyRepo
	IdemTTL time.Duration

	validate *validator.Validate
}

// NewRegistrationService returns a service over q without idempotency support.
func NewRegistrationService(q RegistrationQueries) *RegistrationService {
	return &RegistrationService{Queries: q, IdemTTL: 24 * time.Hour, validate: newValidator()}
}

// Validate trims in and checks it against the form rules. It returns the
// normalized input, and a *ValidationError when a rule fails.
func (s *RegistrationService) Validate(in domain.InscripcionInput) (domain.InscripcionInput, error) {
	if s.validate == nil {
		s.validate = newValidator()
	}
	in = normalizeInput(in)
	return in, validateInput(s.validate, in)
}

// List returns every registration.
func (s *RegistrationService) List(ctx context.Context) ([]domain.Inscripcion, error) {
	return s.Queries.List(ctx)
}

// ListPage returns one page of registrations and the collection size.
func (s *RegistrationService) ListPage(ctx context.Context, page, pageSize int) ([]domain.Inscripcion, int, error) {
	all, err := s.Queries.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	return utils.Paginate(all, page, pageSize), len(all), nil
}

// Version reports when the cached collection was last loaded; zero if never.
func (s *RegistrationService) Version() time.Time {
	e, _ := s.Queries.Cache().Snapshot(query.KeyInscripciones)
	return e.UpdatedAt
}

// Get returns the registration with id. A blank id yields ErrMissingID.
func (s *RegistrationService) Get(ctx context.Context, id string) (*domain.Inscripcion, error) {
	res, err := s.Queries.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.Disabled {
		return nil, ErrMissingID
	}
	return &res.Data, nil
}

// Create validates in and creates the registration. When idemKey is set and a
// previous create with the same key succeeded, that registration is returned
// with replayed=true and nothing new is created.
func (s *RegistrationService) Create(ctx context.Context, in domain.InscripcionInput, idemKey string) (rec *domain.Inscripcion, replayed bool, err error) {
	idemKey = strings.TrimSpace(idemKey)
	if prev := s.replay(ctx, idemKey); prev != nil {
		return prev, true, nil
	}

	in, err = s.Validate(in)
	if err != nil {
		return nil, false, err
	}
	created, err := s.Queries.Create(ctx, in)
	if err != nil {
		return nil, false, err
	}

	if idemKey != "" && s.idempotent() {
		if _, err := s.Idem.CreateIdempotency(ctx, s.DB, idemKey, created.ID, http.StatusCreated, s.IdemTTL); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("idempotency_key", idemKey).Msg("store idempotency key")
		}
	}
	return &created, false, nil
}

// Update validates in and replaces the registration at id, keeping its
// original fechaInscripcion.
func (s *RegistrationService) Update(ctx context.Context, id string, in domain.InscripcionInput) (*domain.Inscripcion, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrMissingID
	}
	in, err := s.Validate(in)
	if err != nil {
		return nil, err
	}
	rec, err := s.Queries.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the registration at id.
func (s *RegistrationService) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrMissingID
	}
	return s.Queries.Delete(ctx, id)
}

// Escuelas returns the schools catalog for the school selector.
func (s *RegistrationService) Escuelas(ctx context.Context) ([]domain.Escuela, error) {
	return s.Queries.Escuelas(ctx)
}

func (s *RegistrationService) idempotent() bool { return s.DB != nil && s.Idem != nil }

// replay returns the registration recorded for key, or nil when there is
// nothing to replay. Lookup failures fall through to a normal create.
func (s *RegistrationService) replay(ctx context.Context, key string) *domain.Inscripcion {
	if key == "" || !s.idempotent() {
		return nil
	}
	prev, err := s.Idem.GetIdempotency(ctx, s.DB, key, time.Now().UTC())
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Ctx(ctx).Warn().Err(err).Msg("idempotency lookup")
		}
		return nil
	}
	res, err := s.Queries.Get(ctx, prev.InscripcionID)
	if err != nil || res.Disabled {
		// the stored registration is gone; treat as a fresh submit
		return nil
	}
	return &res.Data
}
