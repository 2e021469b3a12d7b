package directory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/a2amesh/agent-mesh/pkg/events"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const deregisterLogPrefix = "directory:deregister"

// Deregister removes a specialist's record and secret together. An unknown
// id is a normal, non-fatal outcome reported as NOT_FOUND.
func (s *Service) Deregister(ctx context.Context, input *DeregisterInput) (*DeregisterOutput, error) {
	if err := s.requireStore(); err != nil {
		return nil, err
	}

	agentID := strings.TrimSpace(input.AgentID)
	if agentID == "" {
		return nil, NewDirectoryError(CodeInvalidArgument, "agent_id for deregistration was not provided")
	}

	err := s.store.DeleteSpecialist(ctx, agentID)
	if err == store.ErrNotFound {
		slog.Info(fmt.Sprintf("%s - Attempt to deregister unknown specialist %q", deregisterLogPrefix, agentID))
		return nil, NewDirectoryError(CodeNotFound, fmt.Sprintf("Specialist %s not found in the directory.", agentID))
	}
	if err != nil {
		slog.Error(fmt.Sprintf("%s - store delete for %q failed: %v", deregisterLogPrefix, agentID, err))
		return nil, NewDirectoryError(CodeStoreUnavailable, "directory store unavailable")
	}

	slog.Info(fmt.Sprintf("%s - Specialist %q deregistered", deregisterLogPrefix, agentID))
	s.publishChanged(ctx, events.TypeDeregistered, agentID)

	return &DeregisterOutput{
		Message: fmt.Sprintf("Specialist %s deregistered successfully.", agentID),
	}, nil
}
