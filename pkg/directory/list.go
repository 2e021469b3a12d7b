package directory

import (
	"context"
	"fmt"
	"log/slog"
)

const listLogPrefix = "directory:list"

// List returns the public data of all live specialists. Expired entries are
// simply absent (the store filters them); secrets are never part of the output.
func (s *Service) List(ctx context.Context) (ListOutput, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	records, err := s.store.ListRecords(ctx)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - store read failed: %v", listLogPrefix, err))
		return nil, NewDirectoryError(CodeStoreUnavailable, "directory store unavailable")
	}

	out := make(ListOutput, len(records))
	for _, rec := range records {
		out[rec.AgentID] = AgentSummary{
			BaseURL: rec.BaseURL,
			Version: rec.Version,
			Tools:   rec.Tools,
		}
	}

	slog.Debug(fmt.Sprintf("%s - Listing %d registered specialists", listLogPrefix, len(out)))
	return out, nil
}
