// Package chat holds the in-memory conversation transcript and the mock
// reply generator backing the assistant.
package chat

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "ai"
)

// Message is one entry in the conversation log, ordered by insertion.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	Role      Role   `json:"type"`
	ProjectID string `json:"project_id,omitempty"`
	Timestamp int64  `json:"timestamp"`
}
