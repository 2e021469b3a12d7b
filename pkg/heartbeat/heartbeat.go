// Package heartbeat keeps a specialist's directory registration alive by
// re-registering on a fixed interval shorter than the directory's TTL.
package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/a2amesh/agent-mesh/pkg/directory"
)

const logPrefix = "heartbeat:runner"

// defaultInterval stays well inside the directory's default 60s TTL.
const defaultInterval = 40 * time.Second

// Registrar is the slice of the directory client the runner needs.
type Registrar interface {
	Register(ctx context.Context, input *directory.RegisterInput) (*directory.RegisterOutput, error)
	Deregister(ctx context.Context, agentID string) error
}

// Runner periodically re-registers one specialist. Each beat is a full
// registration; a missed beat just means the next one renews a lapsed entry.
type Runner struct {
	registrar Registrar
	input     *directory.RegisterInput
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRunnerParams holds parameters for NewRunner.
type NewRunnerParams struct {
	Registrar Registrar
	// Registration is sent verbatim on every beat.
	Registration *directory.RegisterInput
	// Interval between beats; must stay below the directory's heartbeat TTL.
	Interval time.Duration
}

// NewRunner creates a heartbeat Runner.
func NewRunner(params NewRunnerParams) *Runner {
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Runner{
		registrar: params.Registrar,
		input:     params.Registration,
		interval:  interval,
	}
}

// Start registers immediately and then renews on every interval tick until
// Stop is called. Registration failures are logged and retried on the next
// beat, never fatal.
func (r *Runner) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})

	r.beat(ctx)
	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.beat(ctx)
			}
		}
	}()
}

// Stop halts renewal and deregisters the specialist so it disappears from the
// directory immediately instead of waiting out its TTL.
func (r *Runner) Stop(ctx context.Context) {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done

	if err := r.registrar.Deregister(ctx, r.input.AgentID); err != nil {
		slog.Warn(fmt.Sprintf("%s - deregistration of %q on stop failed: %v", logPrefix, r.input.AgentID, err))
		return
	}
	slog.Info(fmt.Sprintf("%s - Specialist %q deregistered", logPrefix, r.input.AgentID))
}

func (r *Runner) beat(ctx context.Context) {
	out, err := r.registrar.Register(ctx, r.input)
	if err != nil {
		slog.Warn(fmt.Sprintf("%s - heartbeat for %q failed: %v", logPrefix, r.input.AgentID, err))
		return
	}
	slog.Debug(fmt.Sprintf("%s - Heartbeat for %q ok (%d specialists active)", logPrefix, r.input.AgentID, out.ActiveSpecialists))
}
