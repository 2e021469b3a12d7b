package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/a2amesh/agent-mesh/pkg/directory"
)

const routerLogPrefix = "host:router"

// fallbackIntro prefixes the capabilities listing when no tool fits a query.
const fallbackIntro = "Olá! Sou o agente Host. Eu recebo sua pergunta, escolho o agente mais adequado e encaminho sua solicitação.\n" +
	"Quando não encontro um agente ideal, posso te mostrar quem está disponível agora:\n\n"

// DirectoryAPI is the slice of the directory client the router needs.
type DirectoryAPI interface {
	ListAgents(ctx context.Context) (directory.ListOutput, error)
	Deregister(ctx context.Context, agentID string) error
}

// SpecialistAPI is the slice of the specialist client the router needs.
type SpecialistAPI interface {
	Probe(ctx context.Context, baseURL string) error
	Execute(ctx context.Context, executeURL, secretToken string, env *Envelope) (*SpecialistResult, error)
}

// RouterConfig holds routing identity and the timeout of each pipeline stage.
type RouterConfig struct {
	HostAgentID       string
	RefreshTimeout    time.Duration
	OracleTimeout     time.Duration
	ProbeTimeout      time.Duration
	DeregisterTimeout time.Duration
	DelegateTimeout   time.Duration
}

// DefaultRouterConfig returns the stock stage timeouts.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		HostAgentID:       "host-agent",
		RefreshTimeout:    5 * time.Second,
		OracleTimeout:     20 * time.Second,
		ProbeTimeout:      2 * time.Second,
		DeregisterTimeout: 3 * time.Second,
		DelegateTimeout:   60 * time.Second,
	}
}

// Router runs the query pipeline: refresh the directory view, decide a target
// (oracle, then keyword heuristic), verify the target is alive, delegate, and
// project the specialist's answer.
type Router struct {
	cfg        RouterConfig
	directory  DirectoryAPI
	specialist SpecialistAPI
	oracle     Oracle
	rules      *RoutingRules
	secrets    map[string]string

	mu       sync.Mutex
	lastSnap *Snapshot
}

// NewRouterParams holds parameters for NewRouter.
type NewRouterParams struct {
	Config     RouterConfig
	Directory  DirectoryAPI
	Specialist SpecialistAPI
	// Oracle may be nil; routing then relies on the keyword heuristic alone.
	Oracle Oracle
	Rules  *RoutingRules
	// Secrets maps specialist id to its bearer token, distributed out-of-band.
	Secrets map[string]string
}

// NewRouter creates a Router.
func NewRouter(params NewRouterParams) *Router {
	cfg := params.Config
	defaults := DefaultRouterConfig()
	if cfg.HostAgentID == "" {
		cfg.HostAgentID = defaults.HostAgentID
	}
	if cfg.RefreshTimeout <= 0 {
		cfg.RefreshTimeout = defaults.RefreshTimeout
	}
	if cfg.OracleTimeout <= 0 {
		cfg.OracleTimeout = defaults.OracleTimeout
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaults.ProbeTimeout
	}
	if cfg.DeregisterTimeout <= 0 {
		cfg.DeregisterTimeout = defaults.DeregisterTimeout
	}
	if cfg.DelegateTimeout <= 0 {
		cfg.DelegateTimeout = defaults.DelegateTimeout
	}
	rules := params.Rules
	if rules == nil {
		rules = DefaultRoutingRules()
	}
	secrets := params.Secrets
	if secrets == nil {
		secrets = map[string]string{}
	}
	return &Router{
		cfg:        cfg,
		directory:  params.Directory,
		specialist: params.Specialist,
		oracle:     params.Oracle,
		rules:      rules,
		secrets:    secrets,
	}
}

// Route answers one user query. Errors are *RouteError; everything the
// pipeline can answer locally (meta queries, no-tool fallback) comes back as
// a normal QueryOutput.
func (r *Router) Route(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	query := strings.TrimSpace(input.Query)
	if query == "" {
		return nil, NewRouteError(CodeInvalidQuery, "A 'query' não pode estar vazia.")
	}

	snap := r.refreshSnapshot(ctx)
	if snap.Empty() {
		return nil, NewRouteError(CodeNoSpecialists, "Nenhum agente especialista disponível no momento.")
	}

	// Capability questions are answered locally, without bothering the
	// oracle or any specialist.
	if r.rules.IsMetaQuery(query) {
		return &QueryOutput{Answer: snap.Listing(), Agents: snap.Cards()}, nil
	}

	decision := r.decide(ctx, query, snap)
	if !decision.Valid() {
		return &QueryOutput{Answer: fallbackIntro + snap.Listing(), Agents: snap.Cards()}, nil
	}

	secret, ok := r.secrets[decision.OwnerAgentID]
	if !ok || secret == "" {
		return nil, NewRouteError(CodeSecretMissing,
			fmt.Sprintf("Erro de segurança interno: token para o agente %s não encontrado.", decision.OwnerAgentID))
	}

	agentInfo, ok := snap.Agents[decision.OwnerAgentID]
	if !ok {
		return nil, NewRouteError(CodeAgentDataMissing,
			fmt.Sprintf("Dados do agente '%s' não encontrados.", decision.OwnerAgentID))
	}

	if err := r.probe(ctx, agentInfo.BaseURL); err != nil {
		slog.Warn(fmt.Sprintf("%s - health probe for %q failed: %v", routerLogPrefix, decision.OwnerAgentID, err))
		r.deregisterDead(ctx, decision.OwnerAgentID)
		return nil, NewRouteError(CodeSpecialistUnavailable,
			fmt.Sprintf("O agente especialista '%s' está indisponível no momento. Por favor, tente novamente mais tarde.", decision.OwnerAgentID))
	}

	env := NewEnvelope(r.cfg.HostAgentID, decision.OwnerAgentID, query, input.UUID)
	result, err := r.delegate(ctx, decision.ExecuteURL, secret, env)
	if err != nil {
		var upstream *UpstreamError
		if errors.As(err, &upstream) {
			return nil, NewRouteError(CodeUpstreamFailure,
				fmt.Sprintf("Erro ao comunicar com o agente especialista: %d %s", upstream.Status, upstream.Body))
		}
		return nil, NewRouteError(CodeUpstreamFailure,
			fmt.Sprintf("Erro de comunicação com o agente especialista: %v", err))
	}

	slog.Info(fmt.Sprintf("%s - Query %s delegated to %q via tool %q", routerLogPrefix, env.MessageID, decision.OwnerAgentID, decision.Tool))

	return &QueryOutput{
		Answer:            result.Result,
		SourceAgentID:     decision.OwnerAgentID,
		SourceTool:        decision.Tool,
		Sources:           result.Sources,
		ChosenTemperature: result.ChosenTemperature,
		Similarity:        result.Similarity,
	}, nil
}

// refreshSnapshot fetches a fresh directory view. A fetch failure falls back
// to the last successful snapshot so transient directory outages do not stop
// routing.
func (r *Router) refreshSnapshot(ctx context.Context) *Snapshot {
	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.RefreshTimeout)
	defer cancel()

	agents, err := r.directory.ListAgents(fetchCtx)
	if err != nil {
		r.mu.Lock()
		last := r.lastSnap
		r.mu.Unlock()
		slog.Warn(fmt.Sprintf("%s - directory fetch failed, using last known view: %v", routerLogPrefix, err))
		return last
	}

	snap := BuildSnapshot(agents)
	r.mu.Lock()
	r.lastSnap = snap
	r.mu.Unlock()
	slog.Debug(fmt.Sprintf("%s - Discovery complete: %d tools from %d agents", routerLogPrefix, len(snap.Tools), len(snap.Agents)))
	return snap
}

// decide asks the oracle first and falls back to the keyword heuristic. The
// oracle is best effort: errors and unusable output are logged, never fatal.
func (r *Router) decide(ctx context.Context, query string, snap *Snapshot) *Decision {
	if r.oracle != nil {
		oracleCtx, cancel := context.WithTimeout(ctx, r.cfg.OracleTimeout)
		decision, err := r.oracle.Decide(oracleCtx, query, snap.Tools)
		cancel()
		if err != nil {
			slog.Warn(fmt.Sprintf("%s - oracle failed: %v", routerLogPrefix, err))
		}
		if decision.Valid() {
			return decision
		}
	}
	return r.rules.Route(query, snap.Tools)
}

func (r *Router) probe(ctx context.Context, baseURL string) error {
	probeCtx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()
	return r.specialist.Probe(probeCtx, baseURL)
}

// deregisterDead asks the directory to evict a specialist that failed its
// probe. Best effort, and skipped entirely when the caller is already gone:
// a canceled request should not mutate the directory.
func (r *Router) deregisterDead(ctx context.Context, agentID string) {
	if ctx.Err() != nil {
		return
	}
	dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.cfg.DeregisterTimeout)
	defer cancel()
	if err := r.directory.Deregister(dctx, agentID); err != nil {
		slog.Warn(fmt.Sprintf("%s - deregistration of dead specialist %q failed: %v", routerLogPrefix, agentID, err))
		return
	}
	slog.Info(fmt.Sprintf("%s - Specialist %q deregistered after failed health probe", routerLogPrefix, agentID))
}

func (r *Router) delegate(ctx context.Context, executeURL, secret string, env *Envelope) (*SpecialistResult, error) {
	delegateCtx, cancel := context.WithTimeout(ctx, r.cfg.DelegateTimeout)
	defer cancel()
	return r.specialist.Execute(delegateCtx, executeURL, secret, env)
}
