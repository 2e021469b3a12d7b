package commsutil

import "testing"

func TestBuildAgentChangeSubject(t *testing.T) {
	tests := []struct {
		name    string
		agentID string
		want    string
	}{
		{
			name:    "simple id",
			agentID: "bio-1",
			want:    "mesh.directory.changed.bio-1",
		},
		{
			name:    "dotted id is sanitized",
			agentID: "bio.v1.main",
			want:    "mesh.directory.changed.bio_v1_main",
		},
		{
			name:    "empty id",
			agentID: "",
			want:    "mesh.directory.changed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildAgentChangeSubject(tt.agentID)
			if got != tt.want {
				t.Errorf("commsutil:subjects_test - BuildAgentChangeSubject(%q) = %q, want %q", tt.agentID, got, tt.want)
			}
		})
	}
}
