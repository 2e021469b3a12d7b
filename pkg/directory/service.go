package directory

import (
	"time"

	"github.com/a2amesh/agent-mesh/pkg/events"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const defaultHeartbeatTTL = 60 * time.Second

// Config holds directory service configuration.
type Config struct {
	// HeartbeatTTL is the lifetime of a registration; a specialist that does
	// not re-register inside this window is considered offline.
	HeartbeatTTL time.Duration
}

// DefaultConfig returns the default directory configuration.
func DefaultConfig() Config {
	return Config{HeartbeatTTL: defaultHeartbeatTTL}
}

// Service is the specialist directory: an ephemeral, heartbeat-renewed
// registry of specialist records and secrets.
type Service struct {
	store     store.Store
	publisher events.EventPublisher
	config    Config
}

// NewServiceParams holds parameters for NewService.
type NewServiceParams struct {
	Store     store.Store
	Publisher events.EventPublisher
	Config    Config
}

// NewService creates a new directory Service.
func NewService(params NewServiceParams) *Service {
	cfg := params.Config
	if cfg.HeartbeatTTL <= 0 {
		cfg.HeartbeatTTL = defaultHeartbeatTTL
	}

	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}

	return &Service{
		store:     params.Store,
		publisher: pub,
		config:    cfg,
	}
}

// TTL returns the heartbeat window registrations are held for.
func (s *Service) TTL() time.Duration {
	return s.config.HeartbeatTTL
}

// requireStore returns an error if no store is configured.
func (s *Service) requireStore() *DirectoryError {
	if s.store == nil {
		return NewDirectoryError(CodeInternal, "store not configured")
	}
	return nil
}
