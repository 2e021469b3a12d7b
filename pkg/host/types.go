// Package host implements the routing host: it discovers specialists from the
// directory, picks one per query, and delegates the query over authenticated
// agent-to-agent calls.
package host

// QueryInput holds one user question to route.
type QueryInput struct {
	Query string `json:"query"`
	UUID  string `json:"uuid,omitempty"`
}

// QueryOutput is the routed answer projected for the caller.
type QueryOutput struct {
	Answer            string      `json:"answer"`
	SourceAgentID     string      `json:"source_agent_id,omitempty"`
	SourceTool        string      `json:"source_tool,omitempty"`
	Sources           interface{} `json:"sources,omitempty"`
	ChosenTemperature interface{} `json:"chosen_temperature,omitempty"`
	Similarity        interface{} `json:"similarity,omitempty"`
	// Agents is filled on meta-query and fallback answers only.
	Agents []AgentCard `json:"agents,omitempty"`
}

// AgentCard is one specialist in a capabilities listing.
type AgentCard struct {
	AgentID string     `json:"agent_id"`
	BaseURL string     `json:"base_url"`
	Tools   []ToolCard `json:"tools"`
}

// ToolCard is one tool in a capabilities listing.
type ToolCard struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// RouteError is a structured error from the routing pipeline.
type RouteError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RouteError) Error() string {
	return e.Code + ": " + e.Message
}

// Error codes used by the routing pipeline.
const (
	CodeInvalidQuery          = "INVALID_QUERY"
	CodeNoSpecialists         = "NO_SPECIALISTS"
	CodeSecretMissing         = "SECRET_MISSING"
	CodeAgentDataMissing      = "AGENT_DATA_MISSING"
	CodeSpecialistUnavailable = "SPECIALIST_UNAVAILABLE"
	CodeUpstreamFailure       = "UPSTREAM_FAILURE"
)

// NewRouteError creates a new RouteError.
func NewRouteError(code, message string) *RouteError {
	return &RouteError{Code: code, Message: message}
}
