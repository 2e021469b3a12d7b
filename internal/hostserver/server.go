// Package hostserver orchestrates the routing host: directory client,
// decision oracle, routing rules, and the HTTP API consumed by the UI.
package hostserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a2amesh/agent-mesh/internal/config"
	"github.com/a2amesh/agent-mesh/pkg/dirclient"
	"github.com/a2amesh/agent-mesh/pkg/host"
)

const logPrefix = "hostserver:server"

// Run starts the host server, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadHostConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	slog.Info(fmt.Sprintf("%s - Starting host %s (directory: %s)", logPrefix, cfg.HostAgentID, cfg.DirectoryBaseURL))

	rules := host.DefaultRoutingRules()
	if cfg.RoutingRulesFile != "" {
		rules, err = host.LoadRoutingRules(cfg.RoutingRulesFile)
		if err != nil {
			return fmt.Errorf("%s - failed to load routing rules: %w", logPrefix, err)
		}
		slog.Info(fmt.Sprintf("%s - Loaded routing rules from %s", logPrefix, cfg.RoutingRulesFile))
	}

	var oracle host.Oracle
	if cfg.LLMBaseURL != "" {
		oracle = host.NewLLMOracle(host.LLMOracleConfig{
			BaseURL: cfg.LLMBaseURL,
			APIKey:  cfg.LLMAPIKey,
			Model:   cfg.LLMModel,
		})
		slog.Info(fmt.Sprintf("%s - Decision oracle enabled (model %s)", logPrefix, cfg.LLMModel))
	} else {
		slog.Info(fmt.Sprintf("%s - No LLM configured, routing by keyword heuristic only", logPrefix))
	}

	router := host.NewRouter(host.NewRouterParams{
		Config: host.RouterConfig{
			HostAgentID:       cfg.HostAgentID,
			RefreshTimeout:    cfg.RefreshTimeout,
			OracleTimeout:     cfg.OracleTimeout,
			ProbeTimeout:      cfg.ProbeTimeout,
			DeregisterTimeout: cfg.DeregisterTimeout,
			DelegateTimeout:   cfg.DelegateTimeout,
		},
		Directory:  dirclient.NewClient(cfg.DirectoryBaseURL, nil),
		Specialist: host.NewSpecialistClient(nil),
		Oracle:     oracle,
		Rules:      rules,
		Secrets:    cfg.Secrets,
	})

	mux := NewMux(router)
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{Addr: httpAddr, Handler: mux}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	httpServer.Shutdown(shutdownCtx)

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

func setupLogging(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

// NewMux builds the host HTTP routes.
func NewMux(router *host.Router) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/query", handleQuery(router))
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

// httpStatusFor maps a routing error code to its HTTP status.
func httpStatusFor(code string) int {
	switch code {
	case host.CodeInvalidQuery:
		return http.StatusBadRequest
	case host.CodeNoSpecialists, host.CodeSpecialistUnavailable:
		return http.StatusServiceUnavailable
	case host.CodeUpstreamFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func handleQuery(router *host.Router) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var input host.QueryInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "A 'query' não pode estar vazia."})
			return
		}

		out, err := router.Route(r.Context(), &input)
		if err != nil {
			var routeErr *host.RouteError
			if !errors.As(err, &routeErr) {
				routeErr = host.NewRouteError("INTERNAL_ERROR", err.Error())
			}
			writeJSON(w, httpStatusFor(routeErr.Code), map[string]string{"error": routeErr.Message})
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
