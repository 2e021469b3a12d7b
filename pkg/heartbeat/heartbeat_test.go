package heartbeat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/a2amesh/agent-mesh/pkg/directory"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const heartbeatTestPrefix = "heartbeat:heartbeat_test"

// recordingRegistrar counts register/deregister calls.
type recordingRegistrar struct {
	mu          sync.Mutex
	registers   int
	registerErr error
	deregisters []string
}

func (r *recordingRegistrar) Register(ctx context.Context, input *directory.RegisterInput) (*directory.RegisterOutput, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registers++
	if r.registerErr != nil {
		return nil, r.registerErr
	}
	return &directory.RegisterOutput{Message: "ok", ActiveSpecialists: 1}, nil
}

func (r *recordingRegistrar) Deregister(ctx context.Context, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deregisters = append(r.deregisters, agentID)
	return nil
}

func (r *recordingRegistrar) registerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registers
}

func testRegistration() *directory.RegisterInput {
	return &directory.RegisterInput{
		AgentID:     "bio-1",
		BaseURL:     "http://127.0.0.1:9001",
		Tools:       []store.ToolDescriptor{{Name: "query_biologist"}},
		SecretToken: "s3cr3t",
	}
}

func TestRunner_RegistersImmediatelyAndRenews(t *testing.T) {
	reg := &recordingRegistrar{}
	runner := NewRunner(NewRunnerParams{
		Registrar:    reg,
		Registration: testRegistration(),
		Interval:     20 * time.Millisecond,
	})

	runner.Start(context.Background())
	defer runner.Stop(context.Background())

	if reg.registerCount() < 1 {
		t.Fatalf("%s - no immediate registration on Start", heartbeatTestPrefix)
	}

	deadline := time.After(2 * time.Second)
	for reg.registerCount() < 3 {
		select {
		case <-deadline:
			t.Fatalf("%s - only %d registrations after 2s, want renewals", heartbeatTestPrefix, reg.registerCount())
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunner_StopDeregisters(t *testing.T) {
	reg := &recordingRegistrar{}
	runner := NewRunner(NewRunnerParams{
		Registrar:    reg,
		Registration: testRegistration(),
		Interval:     time.Hour,
	})

	runner.Start(context.Background())
	runner.Stop(context.Background())

	if len(reg.deregisters) != 1 || reg.deregisters[0] != "bio-1" {
		t.Errorf("%s - deregisters = %v, want exactly one for bio-1", heartbeatTestPrefix, reg.deregisters)
	}
}

func TestRunner_RegistrationFailureIsRetriedNextBeat(t *testing.T) {
	reg := &recordingRegistrar{registerErr: errors.New("directory down")}
	runner := NewRunner(NewRunnerParams{
		Registrar:    reg,
		Registration: testRegistration(),
		Interval:     20 * time.Millisecond,
	})

	runner.Start(context.Background())
	defer runner.Stop(context.Background())

	deadline := time.After(2 * time.Second)
	for reg.registerCount() < 2 {
		select {
		case <-deadline:
			t.Fatalf("%s - runner stopped beating after a failure", heartbeatTestPrefix)
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestRunner_StopWithoutStartIsNoOp(t *testing.T) {
	reg := &recordingRegistrar{}
	runner := NewRunner(NewRunnerParams{Registrar: reg, Registration: testRegistration()})
	runner.Stop(context.Background())
	if len(reg.deregisters) != 0 {
		t.Errorf("%s - deregistered without ever starting", heartbeatTestPrefix)
	}
}
