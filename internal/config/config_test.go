package config

import (
	"os"
	"testing"
	"time"
)

func clearEnv(t *testing.T, vars ...string) {
	t.Helper()
	for _, env := range vars {
		os.Unsetenv(env)
	}
}

var directoryEnvVars = []string{
	"DIRECTORY_AGENT_ID", "DATABASE_URL", "RUN_MIGRATIONS", "MIGRATION_PATH",
	"HEARTBEAT_TTL", "SWEEP_INTERVAL", "COMMS_URL", "SERVICE_NAME",
	"DIRECTORY_CHANGE_EVENT_SUBJECT", "HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "LOG_LEVEL",
}

var hostEnvVars = []string{
	"HOST_AGENT_ID", "REGISTRY_BASE_URL", "SPECIALIST_SECRETS_JSON",
	"LLM_BASE_URL", "LLM_API_KEY", "LLM_MODEL_NAME", "ROUTING_RULES_FILE",
	"REFRESH_TIMEOUT", "ORACLE_TIMEOUT", "PROBE_TIMEOUT", "DEREGISTER_TIMEOUT",
	"DELEGATE_TIMEOUT", "HTTP_PORT", "HEALTH_CHECK_TIMEOUT", "LOG_LEVEL",
}

func TestLoadDirectoryConfig_Defaults(t *testing.T) {
	clearEnv(t, directoryEnvVars...)

	cfg, err := LoadDirectoryConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}

	if cfg.ServiceID != "registry-agent-v1-main" {
		t.Errorf("config:config_test - ServiceID = %q, want registry-agent-v1-main", cfg.ServiceID)
	}
	if cfg.HeartbeatTTL != 60*time.Second {
		t.Errorf("config:config_test - HeartbeatTTL = %v, want 60s", cfg.HeartbeatTTL)
	}
	if cfg.SweepInterval != 30*time.Second {
		t.Errorf("config:config_test - SweepInterval = %v, want 30s", cfg.SweepInterval)
	}
	if cfg.COMMSURL != "" {
		t.Errorf("config:config_test - COMMSURL = %q, want empty (events disabled)", cfg.COMMSURL)
	}
	if cfg.HTTPPort != 8080 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8080", cfg.HTTPPort)
	}
	if cfg.RunMigrations {
		t.Error("config:config_test - expected RunMigrations=false by default")
	}
	if err := cfg.ValidateForServe(); err != nil {
		t.Errorf("config:config_test - ValidateForServe on defaults failed: %v", err)
	}
}

func TestLoadDirectoryConfig_Overrides(t *testing.T) {
	clearEnv(t, directoryEnvVars...)
	t.Setenv("HEARTBEAT_TTL", "90s")
	t.Setenv("COMMS_URL", "nats://127.0.0.1:4222")

	cfg, err := LoadDirectoryConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}
	if cfg.HeartbeatTTL != 90*time.Second {
		t.Errorf("config:config_test - HeartbeatTTL = %v, want 90s", cfg.HeartbeatTTL)
	}
	if cfg.COMMSURL != "nats://127.0.0.1:4222" {
		t.Errorf("config:config_test - COMMSURL = %q, want override", cfg.COMMSURL)
	}
}

func TestDirectoryValidateForServe_Rejects(t *testing.T) {
	cfg := &DirectoryConfig{DatabaseURL: "", HeartbeatTTL: 60 * time.Second, SweepInterval: 30 * time.Second}
	if err := cfg.ValidateForServe(); err == nil {
		t.Error("config:config_test - expected error for empty DATABASE_URL")
	}

	cfg = &DirectoryConfig{DatabaseURL: "postgres://x", HeartbeatTTL: 0, SweepInterval: 30 * time.Second}
	if err := cfg.ValidateForServe(); err == nil {
		t.Error("config:config_test - expected error for zero HEARTBEAT_TTL")
	}
}

func TestLoadHostConfig_Defaults(t *testing.T) {
	clearEnv(t, hostEnvVars...)

	cfg, err := LoadHostConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}
	if cfg.HostAgentID != "host-agent" {
		t.Errorf("config:config_test - HostAgentID = %q, want host-agent", cfg.HostAgentID)
	}
	if cfg.DirectoryBaseURL != "http://localhost:8080" {
		t.Errorf("config:config_test - DirectoryBaseURL = %q, unexpected default", cfg.DirectoryBaseURL)
	}
	if len(cfg.Secrets) != 0 {
		t.Errorf("config:config_test - Secrets = %v, want empty map", cfg.Secrets)
	}
	if cfg.ProbeTimeout != 2*time.Second {
		t.Errorf("config:config_test - ProbeTimeout = %v, want 2s", cfg.ProbeTimeout)
	}
	if cfg.DeregisterTimeout != 3*time.Second {
		t.Errorf("config:config_test - DeregisterTimeout = %v, want 3s", cfg.DeregisterTimeout)
	}
	if cfg.HTTPPort != 8000 {
		t.Errorf("config:config_test - HTTPPort = %d, want 8000", cfg.HTTPPort)
	}
	if err := cfg.ValidateForServe(); err != nil {
		t.Errorf("config:config_test - ValidateForServe on defaults failed: %v", err)
	}
}

func TestLoadHostConfig_SecretsJSON(t *testing.T) {
	clearEnv(t, hostEnvVars...)
	t.Setenv("SPECIALIST_SECRETS_JSON", `{"bio-1":"s3cr3t","guide-1":"t0k3n"}`)

	cfg, err := LoadHostConfig()
	if err != nil {
		t.Fatalf("config:config_test - unexpected error: %v", err)
	}
	if cfg.Secrets["bio-1"] != "s3cr3t" || cfg.Secrets["guide-1"] != "t0k3n" {
		t.Errorf("config:config_test - Secrets = %v, want both entries decoded", cfg.Secrets)
	}
}

func TestLoadHostConfig_BadSecretsJSON(t *testing.T) {
	clearEnv(t, hostEnvVars...)
	t.Setenv("SPECIALIST_SECRETS_JSON", "not json")

	if _, err := LoadHostConfig(); err == nil {
		t.Error("config:config_test - expected error for malformed SPECIALIST_SECRETS_JSON")
	}
}
