package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is an inline media payload sent together with a prompt.
type Attachment struct {
	MIMEType string
	Data     []byte
}

// GroundingSource is a {title, uri} citation the provider attaches to a
// response when search grounding kicked in.
type GroundingSource struct {
	Title string
	URI   string
}

// Video points at a generated video the UI can play back.
type Video struct {
	URI string
}

// Message is one entry in the conversation log (user or model).
//
// User messages are immutable after creation. A model message starts as an
// empty streaming placeholder and is mutated in place while chunks arrive,
// then finalized exactly once per attempt.
type Message struct {
	ID        MessageID
	Role      Role
	Content   string
	CreatedAt Timestamp

	IsStreaming bool
	IsError     bool

	Feedback         Feedback // empty when the user has not rated the message
	Attachment       *Attachment
	GroundingSources []GroundingSource
	Video            *Video
}

// NewUserMessage builds an immutable user turn, optionally carrying media.
func NewUserMessage(text string, att *Attachment) *Message {
	return &Message{
		ID:         MessageID(uuid.NewString()),
		Role:       RoleUser,
		Content:    text,
		CreatedAt:  time.Now(),
		Attachment: att,
	}
}

// NewModelPlaceholder builds the empty streaming message that will receive
// the response for the paired user turn.
func NewModelPlaceholder() *Message {
	return &Message{
		ID:          MessageID(uuid.NewString()),
		Role:        RoleModel,
		CreatedAt:   time.Now(),
		IsStreaming: true,
	}
}

// ResetForRetry puts a model message back into the placeholder state while
// keeping its identity and position in the log.
func (m *Message) ResetForRetry() {
	m.Content = ""
	m.IsStreaming = true
	m.IsError = false
	m.GroundingSources = nil
	m.Video = nil
}
