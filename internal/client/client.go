// Package client is the transport to the external tournament API: the
// "inscripciones" collection resource and the read-only "escuelas" list.
//
// Every method is a single HTTP round trip except Create (list, then POST)
// and Update (get, then PUT). Nothing is retried; a call either succeeds or
// returns one *TransportError. Deadlines come from the caller's context and
// the configured http.Client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
	"github.com/tbourn/tkd-inscripciones/internal/sequence"
)

const (
	collectionPath = "/inscripciones"
	schoolsPath    = "/escuelas"
	tracerName     = "github.com/tbourn/tkd-inscripciones/internal/client"
)

// Client talks to the registrations and schools endpoints.
// It is safe for concurrent use.
type Client struct {
	baseURL        string
	schoolsBaseURL string
	http           *http.Client
	now            func() time.Time
	tracer         trace.Tracer
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client (timeouts, transport).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithSchoolsBaseURL points the schools list at a different base URL.
func WithSchoolsBaseURL(base string) Option {
	return func(c *Client) {
		if b := strings.TrimRight(strings.TrimSpace(base), "/"); b != "" {
			c.schoolsBaseURL = b
		}
	}
}

// WithClock overrides the time source used for creation stamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New returns a Client rooted at baseURL (e.g. "http://localhost:3001").
func New(baseURL string, opts ...Option) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	c := &Client{
		baseURL:        base,
		schoolsBaseURL: base,
		http:           http.DefaultClient,
		now:            time.Now,
		tracer:         otel.Tracer(tracerName),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// List returns every registration in the collection.
func (c *Client) List(ctx context.Context) ([]domain.Inscripcion, error) {
	var out []domain.Inscripcion
	if err := c.do(ctx, OpList, http.MethodGet, c.baseURL+collectionPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Inscripcion{}
	}
	return out, nil
}

// Get returns the registration with id. A 404 yields a KindNotFound error.
func (c *Client) Get(ctx context.Context, id string) (domain.Inscripcion, error) {
	var out domain.Inscripcion
	if err := c.do(ctx, OpGet, http.MethodGet, c.itemURL(id), nil, &out); err != nil {
		return domain.Inscripcion{}, err
	}
	return out, nil
}

// Create lists the collection, assigns max(id)+1 from that snapshot, and
// POSTs the record with a fresh creation stamp. Concurrent creators racing on
// the same snapshot can collide on the id; see package sequence.
func (c *Client) Create(ctx context.Context, in domain.InscripcionInput) (domain.Inscripcion, error) {
	existing, err := c.List(ctx)
	if err != nil {
		return domain.Inscripcion{}, wrap(OpCreate, err)
	}
	body := in.Record(sequence.NextID(existing), domain.FormatTimestamp(c.now()))

	var out domain.Inscripcion
	if err := c.do(ctx, OpCreate, http.MethodPost, c.baseURL+collectionPath, body, &out); err != nil {
		return domain.Inscripcion{}, err
	}
	return out, nil
}

// Update replaces the record at id with in. The original fechaInscripcion is
// read first and carried over; a record that never had one gets a new stamp.
func (c *Client) Update(ctx context.Context, id string, in domain.InscripcionInput) (domain.Inscripcion, error) {
	current, err := c.Get(ctx, id)
	if err != nil {
		return domain.Inscripcion{}, wrap(OpUpdate, err)
	}
	fecha := current.FechaInscripcion
	if fecha == "" {
		fecha = domain.FormatTimestamp(c.now())
	}
	body := in.Record(id, fecha)

	var out domain.Inscripcion
	if err := c.do(ctx, OpUpdate, http.MethodPut, c.itemURL(id), body, &out); err != nil {
		return domain.Inscripcion{}, err
	}
	return out, nil
}

// Delete removes the record at id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, OpDelete, http.MethodDelete, c.itemURL(id), nil, nil)
}

// ListEscuelas returns the schools reference list.
func (c *Client) ListEscuelas(ctx context.Context) ([]domain.Escuela, error) {
	var out []domain.Escuela
	if err := c.do(ctx, OpListSchools, http.MethodGet, c.schoolsBaseURL+schoolsPath, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Escuela{}
	}
	return out, nil
}

func (c *Client) itemURL(id string) string {
	return c.baseURL + collectionPath + "/" + url.PathEscape(id)
}

// do performs one round trip. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, op, method, target string, body, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "upstream."+op, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target),
		))
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, OpMessage(op))
		}
		observe(op, outcome, time.Since(start))
		span.End()
	}()

	var rdr io.Reader
	if body != nil {
		raw, mErr := json.Marshal(body)
		if mErr != nil {
			return newError(op, KindNetwork, 0, fmt.Errorf("encode body: %w", mErr))
		}
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return newError(op, KindNetwork, 0, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	log.Debug().Str("op", op).Str("method", method).Str("url", target).Msg("upstream request")

	resp, err := c.http.Do(req)
	if err != nil {
		return newError(op, KindNetwork, 0, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		resp.Body.Close()
	}()
	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		kind := KindHTTP
		if resp.StatusCode == http.StatusNotFound && (op == OpGet || op == OpUpdate || op == OpDelete) {
			kind = KindNotFound
		}
		return newError(op, kind, resp.StatusCode, fmt.Errorf("unexpected status %s", resp.Status))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newError(op, KindDecode, resp.StatusCode, fmt.Errorf("decode response: %w", err))
	}
	return nil
}
