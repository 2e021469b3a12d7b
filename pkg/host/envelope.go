package host

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the agent-to-agent message posted to a specialist's execute
// endpoint.
type Envelope struct {
	MessageID       string          `json:"message_id"`
	Timestamp       string          `json:"timestamp"`
	SenderAgentID   string          `json:"sender_agent_id"`
	ReceiverAgentID string          `json:"receiver_agent_id"`
	PayloadType     string          `json:"payload_type"`
	Payload         EnvelopePayload `json:"payload"`
}

// EnvelopePayload carries the delegated question plus the caller's
// conversation id so specialists can keep per-user context.
type EnvelopePayload struct {
	Query string `json:"query"`
	UUID  string `json:"uuid,omitempty"`
}

// NewEnvelope builds a text-query envelope with a fresh message id.
func NewEnvelope(senderID, receiverID, query, userUUID string) *Envelope {
	return &Envelope{
		MessageID:       "msg_" + uuid.NewString(),
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		SenderAgentID:   senderID,
		ReceiverAgentID: receiverID,
		PayloadType:     "text_query",
		Payload: EnvelopePayload{
			Query: query,
			UUID:  userUUID,
		},
	}
}
