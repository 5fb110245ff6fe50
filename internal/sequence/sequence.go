// Package sequence derives the identifier of the next registration from the
// current record set.
//
// Ids are assigned client-side as max(existing)+1 over a point-in-time
// snapshot of the collection. Two clients creating at the same time can read
// the same snapshot and compute the same id; the collection API offers no
// server-side sequence, so this gap is accepted rather than papered over
// with local locking.
package sequence

import (
	"math"
	"strconv"
	"strings"

	"github.com/tbourn/tkd-inscripciones/internal/domain"
)

// NextID returns max(parsed ids)+1 as a decimal string with no leading zeros.
// Ids that do not parse as non-negative base-10 integers, or that cannot be
// incremented, count as 0, so they never raise the maximum. An empty set yields "1".
func NextID(records []domain.Inscripcion) string {
	var max uint64
	for _, r := range records {
		if n := parseID(r.ID); n > max {
			max = n
		}
	}
	return strconv.FormatUint(max+1, 10)
}

// parseID parses a decimal id, returning 0 for anything malformed or at the
// top of the range.
func parseID(id string) uint64 {
	id = strings.TrimSpace(id)
	if id == "" {
		return 0
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil || n == math.MaxUint64 {
		return 0
	}
	return n
}
