package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultGreeting seeds every new session
const DefaultGreeting = "Hello! I am Jarvis. I can run Python code, process files, and help you with your tasks. Upload a file or ask me anything."

// Listener is notified with a fresh snapshot after every mutation
type Listener func(Snapshot)

type subscription struct {
	id int
	fn Listener
}

// Store holds the ordered conversation and the busy flags of one session.
// Messages are only ever appended; there is no edit or remove.
type Store struct {
	mu        sync.RWMutex
	sessionID string
	greeting  string
	messages  []Message
	sending   bool
	uploading bool

	subsMu sync.Mutex
	subs   []subscription
	nextID int

	// notifyMu serializes deliveries so listeners never see an older
	// snapshot after a newer one
	notifyMu sync.Mutex
}

// NewStore creates a store seeded with the assistant greeting
func NewStore(greeting string) *Store {
	if greeting == "" {
		greeting = DefaultGreeting
	}
	s := &Store{greeting: greeting}
	s.seedLocked()
	return s
}

// seedLocked starts a new session (must be called with lock held or before publication)
func (s *Store) seedLocked() {
	s.sessionID = uuid.New().String()
	s.messages = []Message{{
		Role:      RoleAssistant,
		Content:   s.greeting,
		Timestamp: time.Now(),
	}}
	s.sending = false
	s.uploading = false
}

// Reset discards the conversation and starts a new seeded session
func (s *Store) Reset() {
	s.mu.Lock()
	s.seedLocked()
	s.mu.Unlock()

	s.notify()
}

// Append adds a message to the end of the transcript
func (s *Store) Append(msg Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	s.mu.Unlock()

	s.notify()
}

// AppendUser appends a user-authored message
func (s *Store) AppendUser(content string) {
	s.Append(Message{Role: RoleUser, Content: content})
}

// AppendAssistant appends an assistant-authored message
func (s *Store) AppendAssistant(content string) {
	s.Append(Message{Role: RoleAssistant, Content: content})
}

// SetBusy sets one of the busy flags
func (s *Store) SetBusy(kind BusyKind, value bool) {
	s.mu.Lock()
	switch kind {
	case Sending:
		s.sending = value
	case Uploading:
		s.uploading = value
	}
	s.mu.Unlock()

	s.notify()
}

// Busy returns the value of one busy flag
func (s *Store) Busy(kind BusyKind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch kind {
	case Sending:
		return s.sending
	case Uploading:
		return s.uploading
	}
	return false
}

// Sending reports whether a chat request is in flight
func (s *Store) Sending() bool {
	return s.Busy(Sending)
}

// Uploading reports whether an upload is in flight
func (s *Store) Uploading() bool {
	return s.Busy(Uploading)
}

// Locked reports whether either flag is set
func (s *Store) Locked() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sending || s.uploading
}

// Messages returns a copy of the transcript in display order
func (s *Store) Messages() []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// SessionID returns the identifier of the current session
func (s *Store) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Snapshot returns the full read-only state
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)

	return Snapshot{
		SessionID: s.sessionID,
		Messages:  msgs,
		Sending:   s.sending,
		Uploading: s.uploading,
	}
}

// Subscribe registers a listener and returns a function that removes it
func (s *Store) Subscribe(fn Listener) func() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs = append(s.subs, subscription{id: id, fn: fn})

	return func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// notify calls every listener outside the state lock. The snapshot is
// taken under notifyMu, so deliveries reach listeners in state order.
// Listeners may read the store but must not mutate it.
func (s *Store) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.subsMu.Lock()
	subs := make([]subscription, len(s.subs))
	copy(subs, s.subs)
	s.subsMu.Unlock()

	if len(subs) == 0 {
		return
	}

	snap := s.Snapshot()
	for _, sub := range subs {
		sub.fn(snap)
	}
}
