package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/a2amesh/agent-mesh/pkg/events"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const registerLogPrefix = "directory:register"

// Register creates or renews (heartbeat) a specialist entry. Each call fully
// replaces the prior record and resets both the record and secret TTLs; there
// is no separate renew operation.
func (s *Service) Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	agentID := strings.TrimSpace(input.AgentID)
	baseURL := strings.TrimSpace(input.BaseURL)
	secret := strings.TrimSpace(input.SecretToken)
	version := strings.TrimSpace(input.Version)

	if agentID == "" || baseURL == "" || secret == "" || input.Tools == nil {
		return nil, NewDirectoryError(CodeInvalidArgument,
			"registration data incomplete or invalid (agent_id, base_url, tools:list, secret_token)")
	}
	if version != "" {
		if _, err := semver.NewVersion(version); err != nil {
			return nil, NewDirectoryError(CodeInvalidArgument,
				fmt.Sprintf("version %q is not a valid semantic version", version))
		}
	}

	rec := store.SpecialistRecord{
		AgentID: agentID,
		BaseURL: baseURL,
		Version: version,
		Tools:   input.Tools,
	}
	if err := s.store.PutSpecialist(ctx, rec, secret, s.config.HeartbeatTTL); err != nil {
		slog.Error(fmt.Sprintf("%s - store write for %q failed: %v", registerLogPrefix, agentID, err))
		return nil, NewDirectoryError(CodeStoreUnavailable, "directory store unavailable")
	}

	// Diagnostic count; a failed count never fails the registration.
	total := 0
	if records, err := s.store.ListRecords(ctx); err == nil {
		total = len(records)
	}
	slog.Info(fmt.Sprintf("%s - Specialist %q registered. Total: %d", registerLogPrefix, agentID, total))

	s.publishChanged(ctx, events.TypeRegistered, agentID)

	return &RegisterOutput{
		Message:           fmt.Sprintf("Specialist %s registered successfully.", agentID),
		ActiveSpecialists: total,
	}, nil
}

// publishChanged emits a change event; failures are logged, never escalated.
func (s *Service) publishChanged(ctx context.Context, eventType, agentID string) {
	event := &events.DirectoryChangedEvent{
		Type:      eventType,
		AgentID:   agentID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.publisher.PublishChanged(ctx, event); err != nil {
		slog.Warn(fmt.Sprintf("%s - publish %s event for %q failed: %v", registerLogPrefix, eventType, agentID, err))
	}
}
