package host

import (
	"encoding/json"
	"strings"
)

// noToolSentinel is the value the decision oracle answers with when no tool
// fits the query.
const noToolSentinel = "none"

// Decision names the tool a query should be delegated to.
type Decision struct {
	Tool         string `json:"tool_to_use"`
	OwnerAgentID string `json:"owner_agent_id"`
	ExecuteURL   string `json:"agent_execute_url"`
}

// Valid reports whether the decision can be acted upon: all fields present
// and none of them the no-tool sentinel.
func (d *Decision) Valid() bool {
	if d == nil {
		return false
	}
	return d.Tool != "" && d.Tool != noToolSentinel &&
		d.OwnerAgentID != "" && d.OwnerAgentID != noToolSentinel &&
		d.ExecuteURL != "" && d.ExecuteURL != noToolSentinel
}

// ParseDecision extracts a routing decision from raw oracle output. Models
// often wrap the JSON in prose, so a failed direct parse retries on the
// substring between the first '{' and the last '}'. Returns nil when no
// usable decision is present.
func ParseDecision(raw string) *Decision {
	var d Decision
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		start := strings.Index(raw, "{")
		end := strings.LastIndex(raw, "}")
		if start == -1 || end == -1 || end <= start {
			return nil
		}
		if err := json.Unmarshal([]byte(raw[start:end+1]), &d); err != nil {
			return nil
		}
	}
	if d.Tool == "" || d.Tool == noToolSentinel {
		return nil
	}
	return &d
}
