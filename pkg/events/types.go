// Package events defines event types and publisher interfaces for directory change events.
package events

// Change event types.
const (
	TypeRegistered   = "registered"
	TypeDeregistered = "deregistered"
	TypeExpired      = "expired"
)

// DirectoryChangedEvent is emitted when a specialist's directory entry changes.
type DirectoryChangedEvent struct {
	Type      string `json:"type"`
	AgentID   string `json:"agentId"`
	Timestamp string `json:"timestamp"`
}
