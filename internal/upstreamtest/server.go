// Package upstreamtest provides an in-memory stand-in for the tournament API
// (a json-server style "inscripciones" collection plus "escuelas") for tests.
package upstreamtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// Server is a fake upstream. Zero value is not usable; call New.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	records  map[string]domain.Inscripcion
	schools  []domain.Escuela
	failures map[string]int // "METHOD /path" -> status to reply with
	hits     map[string]*atomic.Int64
	gate     chan struct{} // when non-nil, GET /inscripciones blocks until closed
}

// New starts a fake upstream seeded with records and schools.
func New(records []domain.Inscripcion, schools []domain.Escuela) *Server {
	s := &Server{
		records:  make(map[string]domain.Inscripcion, len(records)),
		schools:  schools,
		failures: map[string]int{},
		hits:     map[string]*atomic.Int64{},
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Fail makes requests matching method and path (e.g. "POST", "/inscripciones")
// reply with status until cleared with Fail(method, path, 0).
func (s *Server) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := method + " " + path
	if status == 0 {
		delete(s.failures, k)
		return
	}
	s.failures[k] = status
}

// Hold makes GET /inscripciones block until the returned release func runs.
func (s *Server) Hold() (release func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := make(chan struct{})
	s.gate = g
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			if s.gate == g {
				s.gate = nil
			}
			s.mu.Unlock()
			close(g)
		})
	}
}

// Hits returns how many requests reached method and path.
func (s *Server) Hits(method, path string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.hits[method+" "+path]; ok {
		return c.Load()
	}
	return 0
}

// Record returns the stored record with id.
func (s *Server) Record(id string) (domain.Inscripcion, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}

// Put stores r directly, bypassing HTTP (simulates another client).
func (s *Server) Put(r domain.Inscripcion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.ID] = r
}

func (s *Server) count(k string) {
	s.mu.Lock()
	c, ok := s.hits[k]
	if !ok {
		c = &atomic.Int64{}
		s.hits[k] = c
	}
	s.mu.Unlock()
	c.Add(1)
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	s.count(r.Method + " " + path)

	s.mu.Lock()
	status, failing := s.failures[r.Method+" "+path]
	gate := s.gate
	s.mu.Unlock()
	if failing {
		http.Error(w, http.StatusText(status), status)
		return
	}

	switch {
	case path == "/escuelas" && r.Method == http.MethodGet:
		s.mu.Lock()
		out := append([]domain.Escuela(nil), s.schools...)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, out)

	case path == "/inscripciones" && r.Method == http.MethodGet:
		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		writeJSON(w, http.StatusOK, s.list())

	case path == "/inscripciones" && r.Method == http.MethodPost:
		var rec domain.Inscripcion
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec.ID == "" {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		_, dup := s.records[rec.ID]
		if !dup {
			s.records[rec.ID] = rec
		}
		s.mu.Unlock()
		if dup {
			http.Error(w, "duplicate id", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, rec)

	case strings.HasPrefix(path, "/inscripciones/"):
		id := strings.TrimPrefix(path, "/inscripciones/")
		s.item(w, r, id)

	default:
		http.NotFound(w, r)
	}
}

func (s *Server) item(w http.ResponseWriter, r *http.Request, id string) {
	s.mu.Lock()
	cur, ok := s.records[id]
	s.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, cur)
	case http.MethodPut:
		var rec domain.Inscripcion
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		rec.ID = id
		s.mu.Lock()
		s.records[id] = rec
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		s.mu.Lock()
		delete(s.records, id)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) list() []domain.Inscripcion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Inscripcion, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a < b
	})
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Sample returns a valid registration input for tests.
func Sample() domain.InscripcionInput {
	return domain.InscripcionInput{
		NombreEscuela:     "Dojang Norte",
		NombreAlumno:      "Ana",
		ApellidoAlumno:    "Rojas",
		Documento:         "12345678-9",
		TipoDocumento:     domain.DocumentRUT,
		CorreoElectronico: "ana@example.com",
		Edad:              14,
		Peso:              48.5,
		GradoCinturon:     "Cinta Azul",
	}
}
