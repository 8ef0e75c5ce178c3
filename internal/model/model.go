package model

import (
	"strings"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// SegmentKind identifies the kind of a content segment. Only text is produced today.
type SegmentKind string

const SegmentText SegmentKind = "text"

// Segment is a single piece of message content.
type Segment struct {
	Type SegmentKind `json:"type" yaml:"type"`
	Text string      `json:"text" yaml:"text"`
}

// Conversation stores metadata about a conversation.
type Conversation struct {
	ID        string    `json:"id" yaml:"id"`
	Title     string    `json:"title" yaml:"title"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Message stores a single message in a conversation.
type Message struct {
	ID        string    `json:"id" yaml:"id"`
	Role      Role      `json:"role" yaml:"role"`
	Content   []Segment `json:"content" yaml:"content"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// NewTextMessage builds a message holding a single text segment.
func NewTextMessage(id string, role Role, text string) Message {
	return Message{
		ID:        id,
		Role:      role,
		Content:   []Segment{{Type: SegmentText, Text: text}},
		CreatedAt: time.Now().UTC(),
	}
}

// Text collapses all text segments into one newline-joined string.
func (m Message) Text() string {
	parts := make([]string, 0, len(m.Content))
	for _, seg := range m.Content {
		if seg.Type == SegmentText {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// SetText replaces the message content with a single text segment.
func (m *Message) SetText(text string) {
	m.Content = []Segment{{Type: SegmentText, Text: text}}
}

// FullConversation includes the conversation metadata and all its messages.
type FullConversation struct {
	Conversation `yaml:",inline"`
	Messages     []Message `json:"messages" yaml:"messages"`
}

// SearchState is the web search state shared by the stream and the rendering boundary.
type SearchState struct {
	Enabled     bool   `json:"enabled"`
	IsSearching bool   `json:"is_searching"`
	Results     string `json:"results"`
}

// SessionState is the lifecycle state of a single stream session.
type SessionState int32

const (
	StateIdle SessionState = iota
	StateConnecting
	StateStreaming
	StateCompleted
	StateFailed
	StateCancelled
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "streaming"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Active reports whether the session still holds the conversation tail open.
func (s SessionState) Active() bool {
	return s == StateConnecting || s == StateStreaming
}

// Snapshot is the accumulated assistant text at one point of a session.
// Failed is set on the single synthetic snapshot carrying an error message.
type Snapshot struct {
	Text   string
	Failed bool
}

// StreamEvent is what the conversation controller hands to its consumer for
// every snapshot, plus one terminal event once the session has ended.
type StreamEvent struct {
	ConversationID string      `json:"conversation_id"`
	MessageID      string      `json:"message_id,omitempty"`
	Text           string      `json:"text"`
	Streaming      bool        `json:"streaming"`
	State          string      `json:"state"`
	Search         SearchState `json:"search"`
	Error          string      `json:"error,omitempty"`
}
