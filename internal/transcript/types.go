package transcript

import (
	"time"
)

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single entry in the transcript
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// BusyKind names one of the two in-flight flags
type BusyKind int

const (
	Sending BusyKind = iota
	Uploading
)

// String returns the flag name
func (k BusyKind) String() string {
	switch k {
	case Sending:
		return "sending"
	case Uploading:
		return "uploading"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only view of the store at one point in time
type Snapshot struct {
	SessionID string
	Messages  []Message
	Sending   bool
	Uploading bool
}

// Locked reports whether input affordances must be disabled
func (s Snapshot) Locked() bool {
	return s.Sending || s.Uploading
}

// Last returns the newest message, or false when the transcript is empty
func (s Snapshot) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
