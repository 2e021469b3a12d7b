package host

import (
	"fmt"
	"sort"
	"strings"

	"github.com/a2amesh/agent-mesh/pkg/directory"
)

// ToolEntry is one discovered tool flattened out of the directory listing,
// annotated with its owner and execute endpoint.
type ToolEntry struct {
	Name         string                 `json:"name"`
	Description  string                 `json:"description"`
	Parameters   map[string]interface{} `json:"parameters,omitempty"`
	OwnerAgentID string                 `json:"owner_agent_id"`
	ExecuteURL   string                 `json:"agent_execute_url"`
}

// Snapshot is one coherent view of the directory: the raw agent map plus the
// flattened tool list routing works against.
type Snapshot struct {
	Agents directory.ListOutput
	Tools  []ToolEntry
}

// BuildSnapshot flattens a directory listing into a routing snapshot. Tools
// are ordered by agent id then position for stable prompts and listings.
func BuildSnapshot(agents directory.ListOutput) *Snapshot {
	snap := &Snapshot{Agents: agents}
	for _, agentID := range sortedAgentIDs(agents) {
		info := agents[agentID]
		for _, tool := range info.Tools {
			snap.Tools = append(snap.Tools, ToolEntry{
				Name:         tool.Name,
				Description:  tool.Description,
				Parameters:   tool.Parameters,
				OwnerAgentID: agentID,
				ExecuteURL:   strings.TrimRight(info.BaseURL, "/") + "/execute",
			})
		}
	}
	return snap
}

// Empty reports whether the snapshot has no routable tools.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Tools) == 0
}

// Cards returns the per-agent capabilities listing.
func (s *Snapshot) Cards() []AgentCard {
	if s == nil {
		return nil
	}
	cards := make([]AgentCard, 0, len(s.Agents))
	for _, agentID := range sortedAgentIDs(s.Agents) {
		info := s.Agents[agentID]
		card := AgentCard{AgentID: agentID, BaseURL: info.BaseURL, Tools: []ToolCard{}}
		for _, tool := range info.Tools {
			card.Tools = append(card.Tools, ToolCard{Name: tool.Name, Description: tool.Description})
		}
		cards = append(cards, card)
	}
	return cards
}

// Listing renders a human-readable summary of available agents and tools.
func (s *Snapshot) Listing() string {
	cards := s.Cards()
	if len(cards) == 0 {
		return "No momento, não há agentes registrados no sistema."
	}
	lines := []string{"Posso coordenar os seguintes agentes e ferramentas:"}
	for _, card := range cards {
		lines = append(lines, fmt.Sprintf("- %s", card.AgentID))
		for _, tool := range card.Tools {
			lines = append(lines, fmt.Sprintf("    • %s: %s", tool.Name, tool.Description))
		}
	}
	return strings.Join(lines, "\n")
}

func sortedAgentIDs(agents directory.ListOutput) []string {
	ids := make([]string, 0, len(agents))
	for id := range agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
