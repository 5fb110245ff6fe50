package query

import "strings"

// Key identifies a query, e.g. {"inscripciones"} or {"inscripciones", "7"}.
// Keys form a hierarchy: {"inscripciones"} is a prefix of every detail key.
type Key []string

// keySep cannot appear in an id taken from a URL path segment.
const keySep = "\x00"

func (k Key) String() string { return strings.Join(k, keySep) }

// HasPrefix reports whether p is a leading sub-sequence of k.
// The empty prefix matches every key.
func (k Key) HasPrefix(p Key) bool {
	if len(p) > len(k) {
		return false
	}
	for i := range p {
		if k[i] != p[i] {
			return false
		}
	}
	return true
}

// Registration query keys.
var (
	KeyInscripciones = Key{"inscripciones"}
	KeyEscuelas      = Key{"escuelas"}
)

// InscripcionKey is the detail key for one registration.
func InscripcionKey(id string) Key { return Key{"inscripciones", id} }
