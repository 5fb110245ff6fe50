// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file validates the Idempotency-Key header sent with registration form
// submits. A double-clicked submit or a client retry carries the same key, so
// the registration service can replay the first result instead of creating a
// second record under the next id. The middleware only validates and stashes
// the key; replay itself happens in the service.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client's retry key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay" // bool: a stored outcome exists for the key
	ctxKeyRateBypass = "rate.bypass" // bool: skip rate limiting
)

var defaultKeyPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether the lookup found a stored outcome for the key.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. Values <= 0 / nil pick
// the defaults (200 bytes, token characters, POST only).
//
// Replayable selects the requests whose key may match a stored outcome. Only
// those are looked up, and only those can be marked as replays and skip rate
// limiting; a key sent on any other write is validated and nothing more.
type IdempotencyOptions struct {
	MaxLen     int
	Pattern    *regexp.Regexp
	Replayable func(*gin.Context) bool
}

// ReplayableRoute matches method requests to the route template path.
func ReplayableRoute(method, path string) func(*gin.Context) bool {
	return func(c *gin.Context) bool {
		return c.Request.Method == method && c.FullPath() == path
	}
}

func postOnly(c *gin.Context) bool { return c.Request.Method == http.MethodPost }

// IdempotencyLookup reports whether a still-valid outcome exists for key.
// Errors are treated as a miss.
type IdempotencyLookup func(ctx context.Context, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header on unsafe methods
// and stashes it for handlers. Invalid keys get a 400. When lookup finds a
// stored outcome for a replayable request, that request is marked as a replay
// and exempted from rate limiting, since serving it creates nothing new.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultKeyPattern
	}
	replayable := opts.Replayable
	if replayable == nil {
		replayable = postOnly
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" || safeMethod(c.Request.Method) {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil && replayable(c) {
			if exists, err := lookup(c.Request.Context(), key, time.Now().UTC()); err == nil && exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

func safeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}
