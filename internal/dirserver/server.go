// Package dirserver orchestrates the directory service: store, change events,
// expiry sweeper, and the HTTP API.
package dirserver

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/a2amesh/agent-mesh/internal/config"
	"github.com/a2amesh/agent-mesh/pkg/commsutil"
	"github.com/a2amesh/agent-mesh/pkg/directory"
	"github.com/a2amesh/agent-mesh/pkg/events"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const logPrefix = "dirserver:server"

// Run starts the directory server, blocks until shutdown signal, then cleans up.
func Run() error {
	cfg, err := config.LoadDirectoryConfig()
	if err != nil {
		return fmt.Errorf("%s - failed to load config: %w", logPrefix, err)
	}
	if err := cfg.ValidateForServe(); err != nil {
		return err
	}
	setupLogging(cfg.LogLevel)

	slog.Info(fmt.Sprintf("%s - Starting directory service %s", logPrefix, cfg.ServiceID))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Step 1: Connect to database
	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("%s - failed to connect to database: %w", logPrefix, err)
	}
	defer pool.Close()

	// Step 1b: Run migrations if enabled
	if cfg.RunMigrations {
		migrationSQL, err := store.LoadMigrationFiles(cfg.MigrationPath)
		if err != nil {
			return fmt.Errorf("%s - failed to load migrations: %w", logPrefix, err)
		}
		if err := store.RunMigrations(ctx, pool, migrationSQL); err != nil {
			return fmt.Errorf("%s - failed to run migrations: %w", logPrefix, err)
		}
	}

	// Step 2: Optional change-event publishing over NATS
	var publisher events.EventPublisher = &events.NoOpPublisher{}
	if cfg.COMMSURL != "" {
		nc, err := commsutil.Connect(cfg.COMMSURL, cfg.COMMSName)
		if err != nil {
			return fmt.Errorf("%s - failed to connect to NATS: %w", logPrefix, err)
		}
		defer nc.Drain()
		slog.Info(fmt.Sprintf("%s - Connected to NATS at %s", logPrefix, cfg.COMMSURL))

		publisherOpts := &events.CommsPublisherOpts{}
		if cfg.ChangeEventSubject != "" {
			publisherOpts.GlobalChangeSubject = cfg.ChangeEventSubject
		}
		publisher = events.NewCommsPublisher(nc, publisherOpts)
	}

	// Step 3: Create the directory service
	svc := directory.NewService(directory.NewServiceParams{
		Store:     store.NewPostgres(pool),
		Publisher: publisher,
		Config:    directory.Config{HeartbeatTTL: cfg.HeartbeatTTL},
	})

	// Step 4: Background expiry sweeper. Reads already exclude lapsed entries;
	// the sweeper reclaims rows and emits expired events.
	go runSweeper(ctx, svc, cfg.SweepInterval)

	// Step 5: HTTP API
	mux := NewMux(svc, cfg.HealthCheckTimeout)
	httpAddr := fmt.Sprintf(":%d", cfg.HTTPPort)
	httpServer := &http.Server{Addr: httpAddr, Handler: logRequests(mux)}
	go func() {
		slog.Info(fmt.Sprintf("%s - HTTP server listening on %s", logPrefix, httpAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error(fmt.Sprintf("%s - HTTP server error: %v", logPrefix, err))
		}
	}()

	slog.Info(fmt.Sprintf("%s - Directory service is ready (heartbeat TTL %s)", logPrefix, cfg.HeartbeatTTL))

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info(fmt.Sprintf("%s - Received signal %s, shutting down", logPrefix, sig))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)

	slog.Info(fmt.Sprintf("%s - Shutdown complete", logPrefix))
	return nil
}

// setupLogging configures the default slog logger.
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

// runSweeper purges lapsed registrations on a fixed interval until ctx is done.
func runSweeper(ctx context.Context, svc *directory.Service, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.Sweep(ctx); err != nil {
				slog.Warn(fmt.Sprintf("%s - sweep failed: %v", logPrefix, err))
			}
		}
	}
}

// homePageTemplate is the HTML for the directory home page.
const homePageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>Agent Mesh Directory</title>
  <style>
    * { box-sizing: border-box; }
    body { background: #fff; color: #000; font-family: system-ui, sans-serif; margin: 0; padding: 2rem; line-height: 1.5; }
    a { color: #0066cc; }
    h1, h2, h3 { color: #0066cc; }
    .status-ok { color: #0066cc; font-weight: bold; }
    table { border-collapse: collapse; width: 100%; max-width: 900px; margin-top: 0.5rem; }
    th, td { text-align: left; padding: 0.5rem 0.75rem; border: 1px solid #ccc; vertical-align: top; }
    th { background: #f0f4f8; color: #0066cc; }
    .stat { font-weight: bold; color: #0066cc; }
    .meta { color: #333; font-size: 0.9rem; margin-top: 1rem; }
    section { margin-bottom: 2rem; }
    .error { color: #cc0000; }
  </style>
</head>
<body>
  <h1>Agent Mesh Directory</h1>
  <p class="meta">Live specialist registrations. Entries lapse unless renewed by heartbeat.</p>

  <section>
    <h2>Health</h2>
    <p>Status: <span class="status-{{.Health.Status}}">{{.Health.Status}}</span></p>
    <p>Store: {{if .Health.Checks.Store}}<span class="stat">OK</span>{{else}}<span class="error">Failed</span>{{end}}</p>
    <p>Timestamp: {{.Health.Timestamp}}</p>
  </section>

  <section>
    <h2>Specialists</h2>
    {{if .ListError}}
    <p class="error">Could not load directory contents: {{.ListError}}</p>
    {{else}}
    <p>Live specialists: <span class="stat">{{len .Agents}}</span></p>
    {{if not .Agents}}
    <p>No specialists registered.</p>
    {{else}}
    <table>
      <thead>
        <tr><th>Agent</th><th>Base URL</th><th>Version</th><th>Tools</th></tr>
      </thead>
      <tbody>
        {{range $id, $a := .Agents}}
        <tr>
          <td>{{$id}}</td>
          <td>{{$a.BaseURL}}</td>
          <td>{{$a.Version}}</td>
          <td>{{range $a.Tools}}{{.Name}} {{end}}</td>
        </tr>
        {{end}}
      </tbody>
    </table>
    {{end}}
    {{end}}
  </section>
</body>
</html>
`

// homeData is the data passed to the home page template.
type homeData struct {
	Health    *directory.HealthOutput
	Agents    directory.ListOutput
	ListError string
}

// handleHome returns an HTTP handler for the directory home page.
func handleHome(svc *directory.Service, timeout time.Duration) http.HandlerFunc {
	tmpl := template.Must(template.New("home").Parse(homePageTemplate))
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		data := homeData{Health: svc.Health(ctx)}
		agents, err := svc.List(ctx)
		if err != nil {
			data.ListError = err.Error()
		} else {
			data.Agents = agents
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.Execute(w, data); err != nil {
			slog.Error(fmt.Sprintf("%s - home template execute: %v", logPrefix, err))
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
	}
}
