package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/tkd-inscripciones/internal/client"
	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/query"
	"github.com/tbourn/tkd-inscripciones/internal/upstreamtest"
)

// ----- Fakes -----

type fakeQueries struct {
	cache *query.Cache

	list    []domain.Inscripcion
	listErr error

	got    map[string]domain.Inscripcion
	getErr error

	createIn  *domain.InscripcionInput
	createOut domain.Inscripcion
	createErr error
	creates   int

	updateID string
	updateIn *domain.InscripcionInput

	deleteID string
}

func newFakeQueries() *fakeQueries {
	return &fakeQueries{cache: query.New(query.Options{}), got: map[string]domain.Inscripcion{}}
}

func (f *fakeQueries) List(context.Context) ([]domain.Inscripcion, error) { return f.list, f.listErr }

func (f *fakeQueries) Get(_ context.Context, id string) (query.Result[domain.Inscripcion], error) {
	if strings.TrimSpace(id) == "" {
		return query.Result[domain.Inscripcion]{Status: query.StatusIdle, Disabled: true}, nil
	}
	if f.getErr != nil {
		return query.Result[domain.Inscripcion]{Status: query.StatusFailed}, f.getErr
	}
	rec, ok := f.got[id]
	if !ok {
		return query.Result[domain.Inscripcion]{Status: query.StatusFailed}, &client.TransportError{Kind: client.KindNotFound}
	}
	return query.Result[domain.Inscripcion]{Data: rec, Status: query.StatusResolved}, nil
}

func (f *fakeQueries) Create(_ context.Context, in domain.InscripcionInput) (domain.Inscripcion, error) {
	f.creates++
	f.createIn = &in
	if f.createErr != nil {
		return domain.Inscripcion{}, f.createErr
	}
	return f.createOut, nil
}

func (f *fakeQueries) Update(_ context.Context, id string, in domain.InscripcionInput) (domain.Inscripcion, error) {
	f.updateID, f.updateIn = id, &in
	return in.Record(id, "2025-01-01T00:00:00.000Z"), nil
}

func (f *fakeQueries) Delete(_ context.Context, id string) error {
	f.deleteID = id
	return nil
}

func (f *fakeQueries) Escuelas(context.Context) ([]domain.Escuela, error) {
	return []domain.Escuela{{ID: "1", Nombre: "Dojang Norte"}}, nil
}

func (f *fakeQueries) Cache() *query.Cache { return f.cache }

type fakeIdemRepo struct {
	rec       *domain.Idempotency
	getErr    error
	createKey string
	createID  string
	createErr error
}

func (r *fakeIdemRepo) GetIdempotency(_ context.Context, _ *gorm.DB, key string, _ time.Time) (*domain.Idempotency, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	if r.rec == nil || r.rec.Key != key {
		return nil, gorm.ErrRecordNotFound
	}
	return r.rec, nil
}

func (r *fakeIdemRepo) CreateIdempotency(_ context.Context, _ *gorm.DB, key, id string, status int, _ time.Duration) (*domain.Idempotency, error) {
	r.createKey, r.createID = key, id
	if r.createErr != nil {
		return nil, r.createErr
	}
	return &domain.Idempotency{Key: key, InscripcionID: id, Status: status}, nil
}

func fieldNames(err error) []string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	out := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		out[i] = f.Field
	}
	return out
}

// ----- Validation -----

func TestValidate_AcceptsSampleAndTrims(t *testing.T) {
	s := NewRegistrationService(newFakeQueries())
	in := upstreamtest.Sample()
	in.NombreAlumno = "  Ana  "
	in.CorreoElectronico = " ana@example.com "

	got, err := s.Validate(in)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got.NombreAlumno != "Ana" || got.CorreoElectronico != "ana@example.com" {
		t.Fatalf("input not trimmed: %+v", got)
	}
}

func TestValidate_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.InscripcionInput)
		field  string
		rule   string
	}{
		{"blank school", func(in *domain.InscripcionInput) { in.NombreEscuela = "   " }, "nombreEscuela", "required"},
		{"blank first name", func(in *domain.InscripcionInput) { in.NombreAlumno = "" }, "nombreAlumno", "required"},
		{"blank last name", func(in *domain.InscripcionInput) { in.ApellidoAlumno = "" }, "apellidoAlumno", "required"},
		{"blank document", func(in *domain.InscripcionInput) { in.Documento = "" }, "documento", "required"},
		{"unknown document type", func(in *domain.InscripcionInput) { in.TipoDocumento = "CI" }, "tipoDocumento", "document_type"},
		{"email without domain dot", func(in *domain.InscripcionInput) { in.CorreoElectronico = "ana@example" }, "correoElectronico", "form_email"},
		{"email with space", func(in *domain.InscripcionInput) { in.CorreoElectronico = "a na@example.com" }, "correoElectronico", "form_email"},
		{"age too low", func(in *domain.InscripcionInput) { in.Edad = 4 }, "edad", "min"},
		{"age too high", func(in *domain.InscripcionInput) { in.Edad = 101 }, "edad", "max"},
		{"weight too low", func(in *domain.InscripcionInput) { in.Peso = 19.9 }, "peso", "min"},
		{"weight too high", func(in *domain.InscripcionInput) { in.Peso = 200.1 }, "peso", "max"},
		{"unknown belt", func(in *domain.InscripcionInput) { in.GradoCinturon = "Cinta Morada" }, "gradoCinturon", "belt_rank"},
	}
	s := NewRegistrationService(newFakeQueries())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := upstreamtest.Sample()
			tt.mutate(&in)
			_, err := s.Validate(in)
			var ve *ValidationError
			if !errors.As(err, &ve) || len(ve.Fields) != 1 {
				t.Fatalf("expected one field error, got %v", err)
			}
			f := ve.Fields[0]
			if f.Field != tt.field || f.Rule != tt.rule || f.Message == "" {
				t.Fatalf("field error = %+v; want %s/%s", f, tt.field, tt.rule)
			}
		})
	}
}

func TestValidate_Boundaries(t *testing.T) {
	s := NewRegistrationService(newFakeQueries())
	for _, tc := range []struct {
		edad int
		peso float64
	}{{5, 20}, {100, 200}} {
		in := upstreamtest.Sample()
		in.Edad, in.Peso = tc.edad, tc.peso
		if _, err := s.Validate(in); err != nil {
			t.Fatalf("edad=%d peso=%v should pass: %v", tc.edad, tc.peso, err)
		}
	}
}

func TestValidate_EmptyFormListsEveryField(t *testing.T) {
	s := NewRegistrationService(newFakeQueries())
	_, err := s.Validate(domain.InscripcionInput{})
	got := fieldNames(err)
	if len(got) != 9 {
		t.Fatalf("expected 9 field errors, got %v", got)
	}
	if !strings.HasPrefix(err.Error(), "validation failed: nombreEscuela") {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestValidationError_Messages(t *testing.T) {
	if (&ValidationError{}).Error() != "validation failed" {
		t.Fatalf("empty ValidationError message")
	}
	if fieldMessage("correoElectronico", "form_email") != "Por favor, ingrese un correo electrónico válido" {
		t.Fatalf("email message changed")
	}
	if fieldMessage("other", "min") != "Valor inválido" {
		t.Fatalf("fallback message")
	}
}

// ----- Operations -----

func TestCreate_InvalidNeverReachesQueries(t *testing.T) {
	q := newFakeQueries()
	s := NewRegistrationService(q)
	in := upstreamtest.Sample()
	in.CorreoElectronico = "bad"

	_, _, err := s.Create(context.Background(), in, "")
	if names := fieldNames(err); len(names) != 1 || names[0] != "correoElectronico" {
		t.Fatalf("err = %v", err)
	}
	if q.creates != 0 {
		t.Fatalf("invalid input reached the transport")
	}
}

func TestCreate_PassesNormalizedInput(t *testing.T) {
	q := newFakeQueries()
	q.createOut = domain.Inscripcion{ID: "3"}
	s := NewRegistrationService(q)
	in := upstreamtest.Sample()
	in.NombreEscuela = " Dojang Norte "

	rec, replayed, err := s.Create(context.Background(), in, "")
	if err != nil || replayed || rec.ID != "3" {
		t.Fatalf("Create = %+v, %v, %v", rec, replayed, err)
	}
	if q.createIn.NombreEscuela != "Dojang Norte" {
		t.Fatalf("transport got untrimmed input %q", q.createIn.NombreEscuela)
	}
}

func TestCreate_TransportErrorSurfaces(t *testing.T) {
	q := newFakeQueries()
	q.createErr = &client.TransportError{Op: client.OpCreate, Kind: client.KindHTTP, Status: 500, Message: client.OpMessage(client.OpCreate)}
	s := NewRegistrationService(q)

	_, _, err := s.Create(context.Background(), upstreamtest.Sample(), "")
	var te *client.TransportError
	if !errors.As(err, &te) || te.Message != "failed to create registration" {
		t.Fatalf("err = %v", err)
	}
}

func TestCreate_IdempotencyStoresAndReplays(t *testing.T) {
	q := newFakeQueries()
	q.createOut = domain.Inscripcion{ID: "8", NombreAlumno: "Ana"}
	idem := &fakeIdemRepo{}
	s := NewRegistrationService(q)
	s.DB, s.Idem = &gorm.DB{}, idem

	_, replayed, err := s.Create(context.Background(), upstreamtest.Sample(), " key-1 ")
	if err != nil || replayed {
		t.Fatalf("first create = %v, %v", replayed, err)
	}
	if idem.createKey != "key-1" || idem.createID != "8" {
		t.Fatalf("idempotency not stored: %+v", idem)
	}

	idem.rec = &domain.Idempotency{Key: "key-1", InscripcionID: "8"}
	q.got["8"] = q.createOut
	rec, replayed, err := s.Create(context.Background(), upstreamtest.Sample(), "key-1")
	if err != nil || !replayed || rec.ID != "8" {
		t.Fatalf("replay = %+v, %v, %v", rec, replayed, err)
	}
	if q.creates != 1 {
		t.Fatalf("replay created a second record")
	}
}

func TestCreate_IdempotencyFailuresAreBestEffort(t *testing.T) {
	q := newFakeQueries()
	q.createOut = domain.Inscripcion{ID: "2"}
	idem := &fakeIdemRepo{getErr: errors.New("db down"), createErr: errors.New("db down")}
	s := NewRegistrationService(q)
	s.DB, s.Idem = &gorm.DB{}, idem

	rec, replayed, err := s.Create(context.Background(), upstreamtest.Sample(), "k")
	if err != nil || replayed || rec.ID != "2" {
		t.Fatalf("Create = %+v, %v, %v", rec, replayed, err)
	}

	// a stored key whose registration was deleted upstream creates anew
	idem.getErr = nil
	idem.rec = &domain.Idempotency{Key: "k", InscripcionID: "gone"}
	if _, replayed, _ := s.Create(context.Background(), upstreamtest.Sample(), "k"); replayed {
		t.Fatalf("replayed a registration that no longer exists")
	}
	if q.creates != 2 {
		t.Fatalf("creates = %d; want 2", q.creates)
	}
}

func TestGet(t *testing.T) {
	q := newFakeQueries()
	q.got["1"] = domain.Inscripcion{ID: "1"}
	s := NewRegistrationService(q)

	if rec, err := s.Get(context.Background(), "1"); err != nil || rec.ID != "1" {
		t.Fatalf("Get = %+v, %v", rec, err)
	}
	if _, err := s.Get(context.Background(), " "); !errors.Is(err, ErrMissingID) {
		t.Fatalf("blank id err = %v", err)
	}
	if _, err := s.Get(context.Background(), "9"); !errors.Is(err, ErrInscripcionNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestUpdate_ValidatesAndForwards(t *testing.T) {
	q := newFakeQueries()
	s := NewRegistrationService(q)

	if _, err := s.Update(context.Background(), "", upstreamtest.Sample()); !errors.Is(err, ErrMissingID) {
		t.Fatalf("blank id err = %v", err)
	}
	bad := upstreamtest.Sample()
	bad.Edad = 0
	if _, err := s.Update(context.Background(), "4", bad); fieldNames(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	if q.updateIn != nil {
		t.Fatalf("invalid update reached the transport")
	}

	rec, err := s.Update(context.Background(), "4", upstreamtest.Sample())
	if err != nil || rec.ID != "4" || q.updateID != "4" {
		t.Fatalf("Update = %+v, %v", rec, err)
	}
}

func TestDelete_And_Escuelas(t *testing.T) {
	q := newFakeQueries()
	s := NewRegistrationService(q)

	if err := s.Delete(context.Background(), "  "); !errors.Is(err, ErrMissingID) {
		t.Fatalf("blank delete err = %v", err)
	}
	if err := s.Delete(context.Background(), "5"); err != nil || q.deleteID != "5" {
		t.Fatalf("Delete = %v (id %q)", err, q.deleteID)
	}
	if got, err := s.Escuelas(context.Background()); err != nil || len(got) != 1 {
		t.Fatalf("Escuelas = %v, %v", got, err)
	}
}

func TestListPage(t *testing.T) {
	q := newFakeQueries()
	for i := 1; i <= 5; i++ {
		q.list = append(q.list, domain.Inscripcion{ID: string(rune('0' + i))})
	}
	s := NewRegistrationService(q)

	items, total, err := s.ListPage(context.Background(), 2, 2)
	if err != nil || total != 5 || len(items) != 2 || items[0].ID != "3" {
		t.Fatalf("ListPage = %+v, %d, %v", items, total, err)
	}

	q.listErr = errors.New("boom")
	if _, _, err := s.ListPage(context.Background(), 1, 2); err == nil {
		t.Fatalf("expected list error")
	}
}

// A rejected submit against the real cache leaves the cached list fresh.
func TestCreate_FailedSubmitKeepsCache(t *testing.T) {
	srv := upstreamtest.New([]domain.Inscripcion{{ID: "1", NombreEscuela: "A", GradoCinturon: "Cinta Blanca"}}, nil)
	t.Cleanup(srv.Close)
	regs := query.NewRegistrations(query.New(query.Options{}), client.New(srv.URL, client.WithHTTPClient(srv.Client())))
	s := NewRegistrationService(regs)
	ctx := context.Background()

	if _, err := s.List(ctx); err != nil {
		t.Fatalf("List: %v", err)
	}
	loaded := s.Version()
	if loaded.IsZero() {
		t.Fatalf("Version should be set after a load")
	}

	bad := upstreamtest.Sample()
	bad.GradoCinturon = ""
	if _, _, err := s.Create(ctx, bad, ""); fieldNames(err) == nil {
		t.Fatalf("expected validation error, got %v", err)
	}
	srv.Fail(http.MethodPost, "/inscripciones", http.StatusInternalServerError)
	if _, _, err := s.Create(ctx, upstreamtest.Sample(), ""); err == nil {
		t.Fatalf("expected upstream failure")
	}

	if e, _ := regs.Cache().Snapshot(query.KeyInscripciones); e.Stale || !e.UpdatedAt.Equal(loaded) {
		t.Fatalf("cache touched by failed submits: %+v", e)
	}
	if srv.Hits(http.MethodPost, "/inscripciones") != 1 {
		t.Fatalf("only the valid submit should reach upstream")
	}
}
