package host

import (
	"strings"
	"testing"

	"github.com/a2amesh/agent-mesh/pkg/directory"
	"github.com/a2amesh/agent-mesh/pkg/store"
)

const snapshotTestPrefix = "host:snapshot_test"

func TestBuildSnapshot(t *testing.T) {
	agents := directory.ListOutput{
		"guide-1": {
			BaseURL: "http://127.0.0.1:9002/",
			Tools:   []store.ToolDescriptor{{Name: "query_ai_guide", Description: "Guia de IA"}},
		},
		"bio-1": {
			BaseURL: "http://127.0.0.1:9001",
			Tools: []store.ToolDescriptor{
				{Name: "query_biologist", Description: "Biologia"},
				{Name: "identify_species", Description: "Identifica espécies"},
			},
		},
	}

	snap := BuildSnapshot(agents)
	if len(snap.Tools) != 3 {
		t.Fatalf("%s - flattened %d tools, want 3", snapshotTestPrefix, len(snap.Tools))
	}
	// Agent ids sort bio-1 before guide-1, tools keep their listed order.
	if snap.Tools[0].Name != "query_biologist" || snap.Tools[1].Name != "identify_species" || snap.Tools[2].Name != "query_ai_guide" {
		t.Errorf("%s - tool order = %s, %s, %s", snapshotTestPrefix, snap.Tools[0].Name, snap.Tools[1].Name, snap.Tools[2].Name)
	}
	if snap.Tools[0].OwnerAgentID != "bio-1" {
		t.Errorf("%s - owner = %s, want bio-1", snapshotTestPrefix, snap.Tools[0].OwnerAgentID)
	}
	if snap.Tools[0].ExecuteURL != "http://127.0.0.1:9001/execute" {
		t.Errorf("%s - execute url = %s", snapshotTestPrefix, snap.Tools[0].ExecuteURL)
	}
	// Trailing slash on base url must not double up.
	if snap.Tools[2].ExecuteURL != "http://127.0.0.1:9002/execute" {
		t.Errorf("%s - execute url = %s", snapshotTestPrefix, snap.Tools[2].ExecuteURL)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	var nilSnap *Snapshot
	if !nilSnap.Empty() {
		t.Errorf("%s - nil snapshot reported non-empty", snapshotTestPrefix)
	}
	if !BuildSnapshot(directory.ListOutput{}).Empty() {
		t.Errorf("%s - empty listing reported non-empty", snapshotTestPrefix)
	}
	agents := directory.ListOutput{"bio-1": {BaseURL: "http://x", Tools: []store.ToolDescriptor{{Name: "t"}}}}
	if BuildSnapshot(agents).Empty() {
		t.Errorf("%s - populated snapshot reported empty", snapshotTestPrefix)
	}
}

func TestSnapshotListing(t *testing.T) {
	agents := directory.ListOutput{
		"bio-1": {
			BaseURL: "http://127.0.0.1:9001",
			Tools:   []store.ToolDescriptor{{Name: "query_biologist", Description: "Responde perguntas de biologia"}},
		},
	}
	listing := BuildSnapshot(agents).Listing()
	if !strings.Contains(listing, "bio-1") || !strings.Contains(listing, "query_biologist") {
		t.Errorf("%s - listing incomplete: %q", snapshotTestPrefix, listing)
	}

	empty := BuildSnapshot(directory.ListOutput{}).Listing()
	if !strings.Contains(empty, "não há agentes") {
		t.Errorf("%s - empty listing text = %q", snapshotTestPrefix, empty)
	}
}

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("host-1", "bio-1", "pergunta", "user-7")
	if !strings.HasPrefix(env.MessageID, "msg_") {
		t.Errorf("%s - MessageID = %q, want msg_ prefix", snapshotTestPrefix, env.MessageID)
	}
	if env.PayloadType != "text_query" {
		t.Errorf("%s - PayloadType = %q", snapshotTestPrefix, env.PayloadType)
	}
	if env.SenderAgentID != "host-1" || env.ReceiverAgentID != "bio-1" {
		t.Errorf("%s - sender/receiver = %s/%s", snapshotTestPrefix, env.SenderAgentID, env.ReceiverAgentID)
	}
	if env.Payload.Query != "pergunta" || env.Payload.UUID != "user-7" {
		t.Errorf("%s - payload = %+v", snapshotTestPrefix, env.Payload)
	}

	other := NewEnvelope("host-1", "bio-1", "pergunta", "user-7")
	if other.MessageID == env.MessageID {
		t.Errorf("%s - message ids not unique", snapshotTestPrefix)
	}
}
