package services

import (
	"context"
	"time"

	"github.com/tbourn/tkd-inscripciones/internal/dashboard"
	"github.com/tbourn/tkd-inscripciones/internal/query"
)

// DashboardService builds the control-board summary from the cached list.
type DashboardService struct {
	Queries RegistrationQueries
}

// Summary aggregates the current registration set. It returns the time the
// underlying list was loaded so callers can derive validators (ETag).
func (s *DashboardService) Summary(ctx context.Context) (dashboard.Summary, time.Time, error) {
	recs, err := s.Queries.List(ctx)
	if err != nil {
		return dashboard.Summary{}, time.Time{}, err
	}
	e, _ := s.Queries.Cache().Snapshot(query.KeyInscripciones)
	return dashboard.Aggregate(recs), e.UpdatedAt, nil
}
