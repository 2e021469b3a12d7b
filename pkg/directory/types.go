// Package directory implements the specialist directory business logic.
package directory

import "github.com/a2amesh/agent-mesh/pkg/store"

// RegisterInput holds parameters for the register operation.
type RegisterInput struct {
	AgentID     string                 `json:"agent_id"`
	BaseURL     string                 `json:"base_url"`
	Version     string                 `json:"version,omitempty"`
	Tools       []store.ToolDescriptor `json:"tools"`
	SecretToken string                 `json:"secret_token"`
}

// RegisterOutput holds the result of the register operation.
type RegisterOutput struct {
	Message string `json:"message"`
	// ActiveSpecialists is the live specialist count after this register,
	// observable for diagnostics.
	ActiveSpecialists int `json:"activeSpecialists"`
}

// DeregisterInput holds parameters for the deregister operation.
type DeregisterInput struct {
	AgentID string `json:"agent_id"`
}

// DeregisterOutput holds the result of the deregister operation.
type DeregisterOutput struct {
	Message string `json:"message"`
}

// AgentSummary is the public view of one specialist in list output.
// Secrets never appear here.
type AgentSummary struct {
	BaseURL string                 `json:"base_url"`
	Version string                 `json:"version,omitempty"`
	Tools   []store.ToolDescriptor `json:"tools"`
}

// ListOutput maps specialist id to its public data.
type ListOutput map[string]AgentSummary

// HealthOutput holds the result of the health operation.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks holds individual health check results.
type HealthChecks struct {
	Store bool `json:"store"`
}

// DirectoryError is a structured error from the directory service.
type DirectoryError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DirectoryError) Error() string {
	return e.Code + ": " + e.Message
}

// Error codes used by the directory service.
const (
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeNotFound         = "NOT_FOUND"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// NewDirectoryError creates a new DirectoryError.
func NewDirectoryError(code, message string) *DirectoryError {
	return &DirectoryError{Code: code, Message: message}
}
