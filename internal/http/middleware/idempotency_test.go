package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestHelpers_GetIdempotencyKey_IsReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if k, ok := GetIdempotencyKey(c); k != "" || ok {
		t.Fatalf("expected empty key when not set")
	}
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false by default")
	}

	c.Set(ctxKeyIdemKey, 123)
	if _, ok := GetIdempotencyKey(c); ok {
		t.Fatalf("non-string key must read as absent")
	}
	c.Set(ctxKeyIdemReplay, true)
	if !IsReplay(c) {
		t.Fatalf("expected IsReplay=true")
	}
	c.Set(ctxKeyIdemReplay, "yes")
	if IsReplay(c) {
		t.Fatalf("expected IsReplay=false for non-bool")
	}
}

func serveWithKey(t *testing.T, h gin.HandlerFunc, method, key string, next gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(h)
	r.Handle(method, "/inscripciones", next)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/inscripciones", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_NoHeader_NoLookupCalled(t *testing.T) {
	called := false
	lookup := func(context.Context, string, time.Time) (bool, error) { called = true; return false, nil }

	w := serveWithKey(t, IdempotencyValidator(IdempotencyOptions{}, lookup), http.MethodPost, "", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("key should not be present when header missing")
		}
		c.Status(http.StatusNoContent)
	})
	if w.Code != http.StatusNoContent || called {
		t.Fatalf("code=%d lookupCalled=%v", w.Code, called)
	}
}

func TestIdempotencyValidator_IgnoredOnSafeMethods(t *testing.T) {
	w := serveWithKey(t, IdempotencyValidator(IdempotencyOptions{MaxLen: 1}, nil), http.MethodGet, "way-too-long", func(c *gin.Context) {
		if _, ok := GetIdempotencyKey(c); ok {
			t.Fatalf("GET must not stash a key")
		}
		c.Status(http.StatusOK)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("GET with key = %d; want 200", w.Code)
	}
}

func TestIdempotencyValidator_InvalidKey(t *testing.T) {
	tests := []struct {
		name string
		opts IdempotencyOptions
		key  string
	}{
		{"too long", IdempotencyOptions{MaxLen: 5}, "abcdef"},
		{"custom pattern", IdempotencyOptions{Pattern: regexp.MustCompile(`^[0-9]+$`)}, "abc123"},
		{"default pattern rejects spaces", IdempotencyOptions{}, "form 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serveWithKey(t, IdempotencyValidator(tt.opts, nil), http.MethodPost, tt.key, func(c *gin.Context) {
				t.Fatalf("handler must not run")
			})
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			var body map[string]any
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil || body["code"] != "bad_idempotency_key" {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestIdempotencyValidator_Valid_NoLookup(t *testing.T) {
	w := serveWithKey(t, IdempotencyValidator(IdempotencyOptions{}, nil), http.MethodPost, "abc-123", func(c *gin.Context) {
		key, ok := GetIdempotencyKey(c)
		if !ok || key != "abc-123" {
			t.Fatalf("expected stashed key abc-123, got %q ok=%v", key, ok)
		}
		if IsReplay(c) || IsRateBypass(c) {
			t.Fatalf("no lookup means no replay")
		}
		c.Status(http.StatusOK)
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestIdempotencyValidator_Lookup(t *testing.T) {
	tests := []struct {
		name   string
		exists bool
		err    error
		replay bool
	}{
		{"miss", false, nil, false},
		{"hit", true, nil, true},
		{"error is a miss", true, errors.New("db down"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(_ context.Context, key string, now time.Time) (bool, error) {
				if key != "k-9" || now.IsZero() {
					t.Fatalf("lookup args: key=%q now=%v", key, now)
				}
				return tt.exists, tt.err
			}
			w := serveWithKey(t, IdempotencyValidator(IdempotencyOptions{}, lookup), http.MethodPost, "k-9", func(c *gin.Context) {
				if IsReplay(c) != tt.replay || IsRateBypass(c) != tt.replay {
					t.Fatalf("replay=%v bypass=%v; want %v", IsReplay(c), IsRateBypass(c), tt.replay)
				}
				c.Status(http.StatusCreated)
			})
			if w.Code != http.StatusCreated {
				t.Fatalf("code=%d", w.Code)
			}
		})
	}
}

func TestIdempotencyValidator_ReplayScopedToReplayableRequests(t *testing.T) {
	opts := IdempotencyOptions{Replayable: ReplayableRoute(http.MethodPost, "/inscripciones")}
	tests := []struct {
		name   string
		opts   IdempotencyOptions
		method string
		replay bool
	}{
		{"create route", opts, http.MethodPost, true},
		{"update with a stored key", opts, http.MethodPut, false},
		{"delete with a stored key", opts, http.MethodDelete, false},
		{"default allows post", IdempotencyOptions{}, http.MethodPost, true},
		{"default rejects put", IdempotencyOptions{}, http.MethodPut, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			lookup := func(context.Context, string, time.Time) (bool, error) { calls++; return true, nil }
			w := serveWithKey(t, IdempotencyValidator(tt.opts, lookup), tt.method, "k-1", func(c *gin.Context) {
				if IsReplay(c) != tt.replay || IsRateBypass(c) != tt.replay {
					t.Fatalf("replay=%v bypass=%v; want %v", IsReplay(c), IsRateBypass(c), tt.replay)
				}
				if k, ok := GetIdempotencyKey(c); !ok || k != "k-1" {
					t.Fatalf("key must still be stashed, got %q", k)
				}
				c.Status(http.StatusOK)
			})
			if w.Code != http.StatusOK {
				t.Fatalf("code=%d", w.Code)
			}
			if want := map[bool]int{true: 1, false: 0}[tt.replay]; calls != want {
				t.Fatalf("lookup calls = %d; want %d", calls, want)
			}
		})
	}
}

func TestIdempotencyValidator_StoredKeyDoesNotLiftRateLimitOnOtherWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.001, 1, KeyByClientIP())
	r := gin.New()
	r.Use(IdempotencyValidator(
		IdempotencyOptions{Replayable: ReplayableRoute(http.MethodPost, "/inscripciones")},
		func(context.Context, string, time.Time) (bool, error) { return true, nil },
	))
	r.Use(rl.Handler())
	r.POST("/inscripciones", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.PUT("/inscripciones/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/preferences/theme/toggle", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(method, path string) int {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set(HeaderIdempotencyKey, "k-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	// replays of the create are free
	for i := 0; i < 3; i++ {
		if code := send(http.MethodPost, "/inscripciones"); code != http.StatusCreated {
			t.Fatalf("replayed create %d = %d", i, code)
		}
	}
	if code := send(http.MethodPost, "/preferences/theme/toggle"); code != http.StatusOK {
		t.Fatalf("first toggle = %d", code)
	}
	for _, p := range []struct{ method, path string }{
		{http.MethodPost, "/preferences/theme/toggle"},
		{http.MethodPut, "/inscripciones/1"},
		{http.MethodPut, "/inscripciones/2"},
	} {
		if code := send(p.method, p.path); code != http.StatusTooManyRequests {
			t.Fatalf("%s %s = %d; want 429", p.method, p.path, code)
		}
	}
}
