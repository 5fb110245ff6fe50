package client

import (
	"errors"
	"fmt"
)

// Kind classifies a transport failure.
type Kind int

const (
	// KindNetwork: the request never completed (dial, TLS, reset, cancelled).
	KindNetwork Kind = iota + 1
	// KindHTTP: the server answered with a non-success status.
	KindHTTP
	// KindNotFound: the server answered 404 for a single resource.
	KindNotFound
	// KindDecode: the server answered 2xx but the body was not a valid record.
	KindDecode
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindNotFound:
		return "not_found"
	case KindDecode:
		return "decode"
	default:
		return "unknown"
	}
}

// ErrNotFound matches (via errors.Is) any TransportError of KindNotFound.
var ErrNotFound = errors.New("registration not found")

// TransportError is the single error type surfaced by Client. Message is the
// human-readable, operation-specific text shown to users; Err carries the
// underlying cause.
type TransportError struct {
	Op      string
	Kind    Kind
	Status  int // HTTP status when Kind is KindHTTP or KindNotFound
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports NotFound failures as ErrNotFound.
func (e *TransportError) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// Operation names, also used as metric and span labels.
const (
	OpList        = "list"
	OpGet         = "get"
	OpCreate      = "create"
	OpUpdate      = "update"
	OpDelete      = "delete"
	OpListSchools = "list_schools"
)

var opMessages = map[string]string{
	OpList:        "failed to load registrations",
	OpGet:         "failed to load registration",
	OpCreate:      "failed to create registration",
	OpUpdate:      "failed to update registration",
	OpDelete:      "failed to delete registration",
	OpListSchools: "failed to load schools",
}

// OpMessage returns the user-facing failure message for op.
func OpMessage(op string) string {
	if m, ok := opMessages[op]; ok {
		return m
	}
	return "request failed"
}

func newError(op string, kind Kind, status int, cause error) *TransportError {
	return &TransportError{Op: op, Kind: kind, Status: status, Message: OpMessage(op), Err: cause}
}

// wrap re-labels a failure of an inner step (e.g. the list a create performs)
// as a failure of op, keeping the inner kind and status.
func wrap(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return &TransportError{Op: op, Kind: te.Kind, Status: te.Status, Message: OpMessage(op), Err: te}
	}
	return newError(op, KindNetwork, 0, err)
}
