package dirserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/a2amesh/agent-mesh/pkg/directory"
)

// httpStatusFor maps a directory error code to its HTTP status.
func httpStatusFor(code string) int {
	switch code {
	case directory.CodeInvalidArgument:
		return http.StatusBadRequest
	case directory.CodeNotFound:
		return http.StatusNotFound
	case directory.CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError serializes a directory error as JSON with the mapped status.
func writeError(w http.ResponseWriter, err error) {
	var dirErr *directory.DirectoryError
	if !errors.As(err, &dirErr) {
		dirErr = directory.NewDirectoryError(directory.CodeInternal, err.Error())
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusFor(dirErr.Code))
	json.NewEncoder(w).Encode(map[string]interface{}{"error": dirErr})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// NewMux builds the directory HTTP routes on top of the given service.
// requestTimeout bounds each handler's store work.
func NewMux(svc *directory.Service, requestTimeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/register", handleRegister(svc, requestTimeout))
	mux.HandleFunc("/deregister", handleDeregister(svc, requestTimeout))
	mux.HandleFunc("/list_agents", handleListAgents(svc, requestTimeout))
	mux.HandleFunc("/health", handleHealth(svc, requestTimeout))
	mux.HandleFunc("/ready", handleReady(svc, requestTimeout))
	mux.HandleFunc("/", handleHome(svc, requestTimeout))
	return mux
}

func handleRegister(svc *directory.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var input directory.RegisterInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, directory.NewDirectoryError(directory.CodeInvalidArgument,
				"request body is not valid JSON"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		out, err := svc.Register(ctx, &input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleDeregister(svc *directory.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var input directory.DeregisterInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			writeError(w, directory.NewDirectoryError(directory.CodeInvalidArgument,
				"request body is not valid JSON"))
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		out, err := svc.Deregister(ctx, &input)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func handleListAgents(svc *directory.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		out, err := svc.List(ctx)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleHealth reports liveness: the process is up even when the store is
// not, so this is always 200 with the store check broken out.
func handleHealth(svc *directory.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()
		writeJSON(w, http.StatusOK, svc.Health(ctx))
	}
}

// handleReady reports readiness: 503 until the store is reachable.
func handleReady(svc *directory.Service, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		h := svc.Health(ctx)
		if !h.Checks.Store {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// logRequests wraps a handler with one access log line per request.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug(fmt.Sprintf("%s - %s %s (%s)", logPrefix, r.Method, r.URL.Path, time.Since(start)))
	})
}
