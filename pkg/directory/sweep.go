package directory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/a2amesh/agent-mesh/pkg/events"
)

const sweepLogPrefix = "directory:sweep"

// Sweep purges lapsed entries from the store and emits an expired event per
// purged specialist. Reads already filter lapsed entries, so the sweep is
// housekeeping; its failure is reported but harmless.
func (s *Service) Sweep(ctx context.Context) (int, error) {
	if err := s.requireStore(); err != nil {
		return 0, err
	}

	purged, err := s.store.SweepExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s - sweep failed: %w", sweepLogPrefix, err)
	}

	for _, agentID := range purged {
		slog.Info(fmt.Sprintf("%s - Specialist %q expired", sweepLogPrefix, agentID))
		s.publishChanged(ctx, events.TypeExpired, agentID)
	}
	return len(purged), nil
}
