package service

import (
	"fmt"
	"strings"
	"sync"
)

// ConversationTurn is one completed question/answer exchange.
type ConversationTurn struct {
	Question string
	Answer   string
}

// ConversationMemory is a bounded sliding window over the last turns of one
// session. It is owned by its session and never shared across sessions.
type ConversationMemory struct {
	mu     sync.Mutex
	window int
	turns  []ConversationTurn
}

func NewConversationMemory(window int) *ConversationMemory {
	return &ConversationMemory{window: window}
}

// Append records a successful turn, evicting the oldest beyond the window.
func (m *ConversationMemory) Append(question, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, ConversationTurn{Question: question, Answer: answer})
	if len(m.turns) > m.window {
		m.turns = m.turns[len(m.turns)-m.window:]
	}
}

// Turns returns a copy of the remembered turns, oldest first.
func (m *ConversationMemory) Turns() []ConversationTurn {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ConversationTurn, len(m.turns))
	copy(out, m.turns)
	return out
}

// History renders the window as prompt text.
func (m *ConversationMemory) History() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var b strings.Builder
	for _, turn := range m.turns {
		fmt.Fprintf(&b, "Питання: %s\nВідповідь: %s\n", turn.Question, turn.Answer)
	}
	return b.String()
}

// memoryStore keys conversation memories by session so concurrent queries
// from different sessions never leak history into each other's prompts.
type memoryStore struct {
	mu       sync.Mutex
	window   int
	sessions map[string]*ConversationMemory
}

func newMemoryStore(window int) *memoryStore {
	return &memoryStore{
		window:   window,
		sessions: make(map[string]*ConversationMemory),
	}
}

func (s *memoryStore) get(sessionID string) *ConversationMemory {
	s.mu.Lock()
	defer s.mu.Unlock()
	mem, ok := s.sessions[sessionID]
	if !ok {
		mem = NewConversationMemory(s.window)
		s.sessions[sessionID] = mem
	}
	return mem
}

func (s *memoryStore) drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}
