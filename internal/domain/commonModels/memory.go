package commonModels

import "sync"

const (
	SpeakerUser      = "user"
	SpeakerAssistant = "assistant"
)

type Turn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// ConversationMemory is the ordered transcript of one session. Append-only
// while the session lives, clearable as a whole, never edited per turn.
// Each session owns exactly one instance - memories are never shared.
type ConversationMemory struct {
	mu    sync.RWMutex
	turns []Turn
}

func NewConversationMemory() *ConversationMemory {
	return &ConversationMemory{}
}

func (m *ConversationMemory) Append(speaker, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, Turn{Speaker: speaker, Text: text})
}

// Turns returns a copy so callers cannot mutate the transcript.
func (m *ConversationMemory) Turns() []Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

func (m *ConversationMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.turns)
}

func (m *ConversationMemory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = nil
}
