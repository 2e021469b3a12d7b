package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	// SubjectDirectoryChanged carries every directory change event.
	SubjectDirectoryChanged = "mesh.directory.changed"
)

// BuildAgentChangeSubject builds a granular change event subject for one specialist.
func BuildAgentChangeSubject(agentID string) string {
	// Normalize: replace dots so the agent id stays a single subject token
	safe := strings.ReplaceAll(agentID, ".", "_")
	return fmt.Sprintf("%s.%s", SubjectDirectoryChanged, safe)
}
