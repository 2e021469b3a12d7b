package directory

import (
	"context"
	"time"
)

// Health checks the directory service health. The service itself is healthy
// even when the store is not; the store check is reported separately so
// readiness probes can act on it.
func (s *Service) Health(ctx context.Context) *HealthOutput {
	storeOk := s.store != nil && s.store.Ping(ctx) == nil

	status := "ok"
	return &HealthOutput{
		Status: status,
		Checks: HealthChecks{
			Store: storeOk,
		},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}
