package dirclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a2amesh/agent-mesh/pkg/directory"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const clientTestPrefix = "dirclient:client_test"

func TestListAgents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/list_agents" || r.Method != http.MethodGet {
			t.Errorf("%s - unexpected request %s %s", clientTestPrefix, r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(directory.ListOutput{
			"bio-1": {BaseURL: "http://127.0.0.1:9001", Tools: []store.ToolDescriptor{{Name: "query_bio"}}},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	out, err := c.ListAgents(context.Background())
	if err != nil {
		t.Fatalf("%s - ListAgents: %v", clientTestPrefix, err)
	}
	if out["bio-1"].BaseURL != "http://127.0.0.1:9001" {
		t.Errorf("%s - unexpected list output: %v", clientTestPrefix, out)
	}
}

func TestRegisterAndDeregister(t *testing.T) {
	var gotRegister directory.RegisterInput
	var gotDeregister directory.DeregisterInput
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/register":
			json.NewDecoder(r.Body).Decode(&gotRegister)
			json.NewEncoder(w).Encode(directory.RegisterOutput{Message: "ok", ActiveSpecialists: 1})
		case "/deregister":
			json.NewDecoder(r.Body).Decode(&gotDeregister)
			json.NewEncoder(w).Encode(directory.DeregisterOutput{Message: "ok"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	out, err := c.Register(context.Background(), &directory.RegisterInput{
		AgentID:     "bio-1",
		BaseURL:     "http://127.0.0.1:9001",
		Tools:       []store.ToolDescriptor{{Name: "query_bio"}},
		SecretToken: "s3cr3t",
	})
	if err != nil {
		t.Fatalf("%s - Register: %v", clientTestPrefix, err)
	}
	if out.ActiveSpecialists != 1 || gotRegister.AgentID != "bio-1" {
		t.Errorf("%s - register round trip mismatch: out=%+v sent=%+v", clientTestPrefix, out, gotRegister)
	}

	if err := c.Deregister(context.Background(), "bio-1"); err != nil {
		t.Fatalf("%s - Deregister: %v", clientTestPrefix, err)
	}
	if gotDeregister.AgentID != "bio-1" {
		t.Errorf("%s - deregister sent agent_id %q, want bio-1", clientTestPrefix, gotDeregister.AgentID)
	}
}

func TestNonOKStatusIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"STORE_UNAVAILABLE"}}`, http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.ListAgents(context.Background()); err == nil {
		t.Errorf("%s - expected error for 503 list_agents", clientTestPrefix)
	}
	if err := c.Deregister(context.Background(), "bio-1"); err == nil {
		t.Errorf("%s - expected error for 503 deregister", clientTestPrefix)
	}
}
