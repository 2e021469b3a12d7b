package host

import (
	"os"
	"path/filepath"
	"testing"
)

const heuristicTestPrefix = "host:heuristic_test"

func testTools() []ToolEntry {
	return []ToolEntry{
		{Name: "query_ai_guide", Description: "Guia sobre inteligência artificial e ética", OwnerAgentID: "guide-1", ExecuteURL: "http://guide/execute"},
		{Name: "query_biologist", Description: "Responde perguntas de biologia e ecologia", OwnerAgentID: "bio-1", ExecuteURL: "http://bio/execute"},
	}
}

func TestHeuristicRoute(t *testing.T) {
	rules := DefaultRoutingRules()
	tools := testTools()

	cases := []struct {
		name      string
		query     string
		wantOwner string
	}{
		{"biology keyword", "Quais plantas vivem no cerrado?", "bio-1"},
		{"biology accented keyword", "Qual o habitat dessa espécie?", "bio-1"},
		{"ai keyword", "O que é machine learning?", "guide-1"},
		{"padded short keyword", "como funciona a ia hoje em dia", "guide-1"},
		{"english biology keyword", "tell me about ecology", "bio-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := rules.Route(tc.query, tools)
			if d == nil {
				t.Fatalf("%s - Route(%q) = nil, want owner %s", heuristicTestPrefix, tc.query, tc.wantOwner)
			}
			if d.OwnerAgentID != tc.wantOwner {
				t.Errorf("%s - Route(%q) owner = %s, want %s", heuristicTestPrefix, tc.query, d.OwnerAgentID, tc.wantOwner)
			}
		})
	}
}

func TestHeuristicRoute_NoMatch(t *testing.T) {
	rules := DefaultRoutingRules()

	if d := rules.Route("bom dia, tudo bem?", testTools()); d != nil {
		t.Errorf("%s - greeting routed to %+v, want nil", heuristicTestPrefix, d)
	}
	if d := rules.Route("", testTools()); d != nil {
		t.Errorf("%s - empty query routed to %+v, want nil", heuristicTestPrefix, d)
	}
	if d := rules.Route("Quais plantas vivem no cerrado?", nil); d != nil {
		t.Errorf("%s - routed with no tools: %+v", heuristicTestPrefix, d)
	}
}

func TestIsMetaQuery(t *testing.T) {
	rules := DefaultRoutingRules()

	cases := []struct {
		query string
		want  bool
	}{
		{"Oi, quais ferramentas você tem?", true},
		{"o que você faz?", true},
		{"help", true},
		{"what can you do", true},
		{"Quais plantas vivem no cerrado?", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := rules.IsMetaQuery(tc.query); got != tc.want {
			t.Errorf("%s - IsMetaQuery(%q) = %v, want %v", heuristicTestPrefix, tc.query, got, tc.want)
		}
	}
}

func TestLoadRoutingRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	content := `meta_phrases:
  - "what are your skills"
categories:
  - name: weather
    query_keywords: ["clima", "weather"]
    tool_tokens: ["weather", "clima"]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("%s - write rules file: %v", heuristicTestPrefix, err)
	}

	rules, err := LoadRoutingRules(path)
	if err != nil {
		t.Fatalf("%s - LoadRoutingRules: %v", heuristicTestPrefix, err)
	}
	if !rules.IsMetaQuery("what are your skills?") {
		t.Errorf("%s - custom meta phrase not honored", heuristicTestPrefix)
	}
	if rules.IsMetaQuery("help") {
		t.Errorf("%s - default meta phrases leaked into custom rules", heuristicTestPrefix)
	}

	tools := []ToolEntry{{Name: "query_weather", OwnerAgentID: "weather-1", ExecuteURL: "http://w/execute"}}
	d := rules.Route("como está o clima hoje?", tools)
	if d == nil || d.OwnerAgentID != "weather-1" {
		t.Errorf("%s - custom category did not route: %+v", heuristicTestPrefix, d)
	}
}

func TestLoadRoutingRules_EmptyFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0o644); err != nil {
		t.Fatalf("%s - write rules file: %v", heuristicTestPrefix, err)
	}

	rules, err := LoadRoutingRules(path)
	if err != nil {
		t.Fatalf("%s - LoadRoutingRules: %v", heuristicTestPrefix, err)
	}
	if !rules.IsMetaQuery("help") {
		t.Errorf("%s - defaults not applied for empty file", heuristicTestPrefix)
	}
}

func TestLoadRoutingRules_MissingFile(t *testing.T) {
	if _, err := LoadRoutingRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Errorf("%s - expected error for missing rules file", heuristicTestPrefix)
	}
}
