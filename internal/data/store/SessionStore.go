package store

import (
	"sync"

	"github.com/nkapoor/docuchat/internal/agent"
	"github.com/nkapoor/docuchat/internal/agent/tools"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/rag"
	"github.com/nkapoor/docuchat/internal/rag/embedding"
	"github.com/nkapoor/docuchat/internal/rag/llm"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

// IndexFactory builds the vector index backing one chat session. The session
// id lets backend implementations isolate per-session collections.
type IndexFactory func(sessionId string) vectorDB.Index

// SessionStore is the in-process registry of live chat sessions and research
// agents, created on demand. Sessions hold the conversational and index state
// that the job pipeline and handlers operate on.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*rag.Session
	agents   map[string]*agent.Agent

	newIndex      IndexFactory
	provider      llm.Provider
	agentProvider llm.Provider
	embedder      embedding.Embedder
	registry      *tools.Registry
	logger        *logger_i.Logger
}

// InitSessionStore wires the store's factories. provider answers document
// questions, agentProvider drives the research loop; they usually share a
// gateway but carry different system instructions.
func InitSessionStore(newIndex IndexFactory, provider llm.Provider, agentProvider llm.Provider, embedder embedding.Embedder, registry *tools.Registry) *SessionStore {
	return &SessionStore{
		sessions:      make(map[string]*rag.Session),
		agents:        make(map[string]*agent.Agent),
		newIndex:      newIndex,
		provider:      provider,
		agentProvider: agentProvider,
		embedder:      embedder,
		registry:      registry,
		logger:        logger_i.NewLogger("SessionStore"),
	}
}

// Session returns the session for chatId, creating it on first use.
func (s *SessionStore) Session(chatId string) *rag.Session {
	s.mu.RLock()
	session, ok := s.sessions[chatId]
	s.mu.RUnlock()
	if ok {
		return session
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok = s.sessions[chatId]; ok {
		return session
	}
	session = rag.NewSession(s.newIndex(chatId), s.provider, s.embedder)
	s.sessions[chatId] = session
	s.logger.Info("Created session", "chatId", chatId)
	return session
}

// Lookup returns the session only if it already exists.
func (s *SessionStore) Lookup(chatId string) (*rag.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[chatId]
	return session, ok
}

// Drop forgets the session. The caller clears the session's index first if
// backend cleanup is wanted.
func (s *SessionStore) Drop(chatId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatId)
}

// Agent returns the research agent for agentId, creating it on first use.
func (s *SessionStore) Agent(agentId string) *agent.Agent {
	s.mu.RLock()
	a, ok := s.agents[agentId]
	s.mu.RUnlock()
	if ok {
		return a
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok = s.agents[agentId]; ok {
		return a
	}
	a = agent.New(s.agentProvider, s.registry)
	s.agents[agentId] = a
	s.logger.Info("Created agent", "agentId", agentId)
	return a
}

// LookupAgent returns the agent only if it already exists.
func (s *SessionStore) LookupAgent(agentId string) (*agent.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.agents[agentId]
	return a, ok
}

// Tools exposes the registry the agents are built with.
func (s *SessionStore) Tools() []tools.Spec {
	return s.registry.Specs()
}

// History is a convenience for handlers that only need the transcript.
func (s *SessionStore) History(chatId string) ([]commonModels.Turn, bool) {
	session, ok := s.Lookup(chatId)
	if !ok {
		return nil, false
	}
	return session.History(), true
}
