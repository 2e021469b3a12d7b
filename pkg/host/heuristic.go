package host

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const heuristicLogPrefix = "host:heuristic"

// Category is one keyword-routing rule: queries containing any QueryKeywords
// are routed to the first tool whose name or description contains any
// ToolTokens.
type Category struct {
	Name          string   `yaml:"name"`
	QueryKeywords []string `yaml:"query_keywords"`
	ToolTokens    []string `yaml:"tool_tokens"`
}

// RoutingRules drives the non-LLM parts of routing: meta-query detection and
// the keyword fallback used when the oracle declines.
type RoutingRules struct {
	MetaPhrases []string   `yaml:"meta_phrases"`
	Categories  []Category `yaml:"categories"`
}

// DefaultRoutingRules returns the built-in rules. Keywords cover Portuguese
// and English phrasings for the two stock specialist domains.
func DefaultRoutingRules() *RoutingRules {
	return &RoutingRules{
		MetaPhrases: []string{
			"o que você faz", "o que voce faz", "o que pode fazer", "o que podem fazer",
			"quais agentes", "quais ferramentas", "ferramentas disponíveis", "ferramentas disponiveis",
			"o que pode", "ajuda", "help", "capabilities", "capacidades", "comandos",
			"o que consegue fazer", "what can you do", "which tools",
		},
		Categories: []Category{
			{
				Name: "ai-ethics",
				QueryKeywords: []string{
					"inteligência artificial", "inteligencia artificial", " ia ", " ai ",
					"machine learning", " ml ", "ética", "etica", "responsável", "responsavel",
					"algoritmo", "algoritmos", "modelo de ia", "modelos de ia",
					"artificial intelligence", "ethics",
				},
				ToolTokens: []string{"guia", "guide", "ia", "ai", "ethic"},
			},
			{
				Name: "biology",
				QueryKeywords: []string{
					"biologia", "ecologia", "ecossistema", "animal", "animais", "planta", "plantas",
					"espécie", "especie", "habitat", "conservação", "conservacao", "biólogo", "biologo",
					"biology", "ecology", "species",
				},
				ToolTokens: []string{"biolog", "ecolog", "bio"},
			},
		},
	}
}

// LoadRoutingRules reads rules from a YAML file. Sections left empty in the
// file fall back to the built-in defaults.
func LoadRoutingRules(path string) (*RoutingRules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s - read rules file %s: %w", heuristicLogPrefix, path, err)
	}
	var rules RoutingRules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("%s - parse rules file %s: %w", heuristicLogPrefix, path, err)
	}
	defaults := DefaultRoutingRules()
	if len(rules.MetaPhrases) == 0 {
		rules.MetaPhrases = defaults.MetaPhrases
	}
	if len(rules.Categories) == 0 {
		rules.Categories = defaults.Categories
	}
	return &rules, nil
}

// IsMetaQuery reports whether the text asks about the system's own
// capabilities rather than a domain question.
func (r *RoutingRules) IsMetaQuery(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return false
	}
	for _, phrase := range r.MetaPhrases {
		if strings.Contains(t, phrase) {
			return true
		}
	}
	return false
}

// Route picks a tool by keyword matching. It is a pure function of its
// inputs: categories are tried in order, and within a category tools are
// tried in snapshot order. Returns nil when nothing matches.
func (r *RoutingRules) Route(query string, tools []ToolEntry) *Decision {
	if strings.TrimSpace(query) == "" || len(tools) == 0 {
		return nil
	}
	// Padded so boundary keywords like " ia " match at the edges too.
	padded := " " + strings.ToLower(query) + " "

	for _, cat := range r.Categories {
		if !containsAny(padded, cat.QueryKeywords) {
			continue
		}
		for _, tool := range tools {
			haystack := strings.ToLower(tool.Name) + " " + strings.ToLower(tool.Description)
			if containsAny(haystack, cat.ToolTokens) {
				return &Decision{
					Tool:         tool.Name,
					OwnerAgentID: tool.OwnerAgentID,
					ExecuteURL:   tool.ExecuteURL,
				}
			}
		}
	}
	return nil
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
