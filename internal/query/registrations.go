package query

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// Transport is the upstream surface the facade reads and mutates through.
// *client.Client satisfies it.
type Transport interface {
	List(ctx context.Context) ([]domain.Inscripcion, error)
	Get(ctx context.Context, id string) (domain.Inscripcion, error)
	Create(ctx context.Context, in domain.InscripcionInput) (domain.Inscripcion, error)
	Update(ctx context.Context, id string, in domain.InscripcionInput) (domain.Inscripcion, error)
	Delete(ctx context.Context, id string) error
	ListEscuelas(ctx context.Context) ([]domain.Escuela, error)
}

// Result is the outcome of a query that may be disabled.
type Result[T any] struct {
	Data     T
	Status   Status
	Disabled bool
}

// Registrations binds the registration endpoints to a Cache.
type Registrations struct {
	cache *Cache
	tr    Transport
}

// NewRegistrations returns the facade over tr backed by cache.
func NewRegistrations(cache *Cache, tr Transport) *Registrations {
	return &Registrations{cache: cache, tr: tr}
}

// Cache exposes the underlying cache (snapshots, ETags).
func (r *Registrations) Cache() *Cache { return r.cache }

// List returns the full registration collection.
func (r *Registrations) List(ctx context.Context) ([]domain.Inscripcion, error) {
	v, err := r.cache.Fetch(ctx, KeyInscripciones, func(ctx context.Context) (any, error) {
		return r.tr.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	recs, err := as[[]domain.Inscripcion](KeyInscripciones, v)
	if err != nil {
		return nil, err
	}
	return slices.Clone(recs), nil
}

// Get returns one registration. A blank id disables the query: nothing is
// fetched and the result reports StatusIdle with Disabled set.
func (r *Registrations) Get(ctx context.Context, id string) (Result[domain.Inscripcion], error) {
	if strings.TrimSpace(id) == "" {
		return Result[domain.Inscripcion]{Status: StatusIdle, Disabled: true}, nil
	}
	key := InscripcionKey(id)
	v, err := r.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		return r.tr.Get(ctx, id)
	})
	if err != nil {
		return Result[domain.Inscripcion]{Status: StatusFailed}, err
	}
	rec, err := as[domain.Inscripcion](key, v)
	if err != nil {
		return Result[domain.Inscripcion]{Status: StatusFailed}, err
	}
	return Result[domain.Inscripcion]{Data: rec, Status: StatusResolved}, nil
}

// Escuelas returns the schools catalog.
func (r *Registrations) Escuelas(ctx context.Context) ([]domain.Escuela, error) {
	v, err := r.cache.Fetch(ctx, KeyEscuelas, func(ctx context.Context) (any, error) {
		return r.tr.ListEscuelas(ctx)
	})
	if err != nil {
		return nil, err
	}
	out, err := as[[]domain.Escuela](KeyEscuelas, v)
	if err != nil {
		return nil, err
	}
	return slices.Clone(out), nil
}

// Create adds a registration and, on success, invalidates the collection.
func (r *Registrations) Create(ctx context.Context, in domain.InscripcionInput) (domain.Inscripcion, error) {
	rec, err := r.tr.Create(ctx, in)
	if err != nil {
		return domain.Inscripcion{}, err
	}
	r.invalidate("create", rec.ID)
	return rec, nil
}

// Update replaces a registration and, on success, invalidates the collection
// and its detail entries.
func (r *Registrations) Update(ctx context.Context, id string, in domain.InscripcionInput) (domain.Inscripcion, error) {
	rec, err := r.tr.Update(ctx, id, in)
	if err != nil {
		return domain.Inscripcion{}, err
	}
	r.invalidate("update", id)
	return rec, nil
}

// Delete removes a registration and, on success, invalidates the collection
// and drops the deleted record's detail entry.
func (r *Registrations) Delete(ctx context.Context, id string) error {
	if err := r.tr.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate("delete", id)
	r.cache.Remove(InscripcionKey(id))
	return nil
}

func (r *Registrations) invalidate(op, id string) {
	n := r.cache.Invalidate(KeyInscripciones)
	log.Debug().
		Str("op", op).
		Str("id", id).
		Int("entries", n).
		Int("live", r.cache.Len()).
		Msg("registrations invalidated")
}

func as[T any](key Key, v any) (T, error) {
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("query %q: unexpected value type %T", strings.Join(key, "/"), v)
	}
	return t, nil
}
