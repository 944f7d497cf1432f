package rag

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/metrics"
	"github.com/nkapoor/docuchat/internal/rag/chunker"
	"github.com/nkapoor/docuchat/internal/rag/docload"
	"github.com/nkapoor/docuchat/internal/rag/embedding"
	"github.com/nkapoor/docuchat/internal/rag/llm"
	"github.com/nkapoor/docuchat/internal/rag/retriever"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB"
	"github.com/nkapoor/docuchat/pkg/logger_i"
)

type State string

const (
	StateEmpty   State = "Empty"
	StateIndexed State = "Indexed"
)

const embedBatchSize = 100

// Session is one document-chat session: a vector index, a conversation
// memory and the state machine Empty -> Indexed. A Session is exclusively
// owned; its index and memory are never shared with another session. The
// mutex serializes operations for hosts that run them off multiple
// goroutines - the operations themselves are synchronous.
type Session struct {
	mu          sync.Mutex
	index       vectorDB.Index
	llmProvider llm.Provider
	embedder    embedding.Embedder
	retriever   *retriever.Retriever
	memory      *commonModels.ConversationMemory
	state       State
	doc         commonModels.Document
	logger      *logger_i.Logger
}

func NewSession(index vectorDB.Index, llmProvider llm.Provider, em embedding.Embedder) *Session {
	return &Session{
		index:       index,
		llmProvider: llmProvider,
		embedder:    em,
		retriever:   retriever.New(em, index),
		memory:      commonModels.NewConversationMemory(),
		state:       StateEmpty,
		logger:      logger_i.NewLogger("RAG Session"),
	}
}

// SupportedFormats reports the upload formats the loader accepts.
func SupportedFormats() []string {
	return docload.SupportedFormats()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Ingest chunks rawText, embeds every chunk and rebuilds the index. The new
// document supersedes any previous one. On any failure the index is left
// cleared, never partially populated - the caller retries ingestion
// wholesale.
func (s *Session) Ingest(ctx context.Context, rawText string, meta docload.Meta) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(rawText) == "" {
		return 0, fmt.Errorf("%w: %q", ragerr.ErrNoContent, meta.Name)
	}

	windows, err := chunker.Split(rawText, config.ChunkSize, config.ChunkOverlap)
	if err != nil {
		return 0, err
	}

	doc := commonModels.Document{
		Id:          newId(),
		Name:        meta.Name,
		ContentType: meta.ContentType,
		IngestedAt:  time.Now(),
	}

	chunks := make([]commonModels.DocChunk, len(windows))
	for i, w := range windows {
		chunks[i] = commonModels.DocChunk{
			Doc:     doc,
			ChunkId: newId(),
			Text:    w.Text,
			Offset:  w.Offset,
			Order:   w.Ordinal,
		}
	}

	if err := s.index.Clear(ctx); err != nil {
		return 0, err
	}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		if err := s.ingestBatch(ctx, chunks[start:end]); err != nil {
			s.abortIngest(ctx)
			return 0, err
		}
	}

	s.doc = doc
	s.state = StateIndexed
	metrics.CaptureDocumentIngested(len(chunks))
	s.logger.Info("Document indexed", "name", doc.Name, "chunks", len(chunks))
	return len(chunks), nil
}

func (s *Session) ingestBatch(ctx context.Context, batch []commonModels.DocChunk) error {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	start := time.Now()
	vectors, err := s.embedder.BatchEmbedding(ctx, texts)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: batch embedding: %v", ragerr.ErrEmbedding, err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", ragerr.ErrEmbedding, len(vectors), len(batch))
	}

	entries := make([]commonModels.IndexEntry, len(batch))
	for i := range batch {
		entries[i] = commonModels.IndexEntry{Vector: vectors[i], Chunk: batch[i]}
	}
	return s.index.Add(ctx, entries)
}

// abortIngest enforces the no-partial-index guarantee.
func (s *Session) abortIngest(ctx context.Context) {
	if err := s.index.Clear(ctx); err != nil {
		s.logger.Error("could not clear index after failed ingest", "error", err)
	}
	s.state = StateEmpty
}

// Ask answers a question from the indexed document and the conversation so
// far, then appends the exchange to memory. Requires an indexed document.
func (s *Session) Ask(ctx context.Context, question string) (commonModels.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIndexed {
		return commonModels.Answer{}, ragerr.ErrNotReady
	}

	hits, err := s.retriever.Retrieve(ctx, question, config.RetrievalTopK)
	if err != nil {
		return commonModels.Answer{}, err
	}

	start := time.Now()
	answer, err := s.llmProvider.Generate(ctx, buildAskPrompt(hits, question), s.memory.Turns())
	metrics.CaptureExecutionMetrics("llm_generation", time.Since(start))
	if err != nil {
		return commonModels.Answer{}, err
	}

	s.memory.Append(commonModels.SpeakerUser, question)
	s.memory.Append(commonModels.SpeakerAssistant, answer)

	return commonModels.Answer{
		Text:    answer,
		Sources: sourceRefs(hits),
	}, nil
}

// Summarize condenses a small retrieved sample of the document. Best effort:
// any failure degrades to a fixed placeholder instead of blocking the chat
// flow.
func (s *Session) Summarize(ctx context.Context) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIndexed {
		return "No document uploaded."
	}

	hits, err := s.retriever.Retrieve(ctx, config.SummaryQuery, config.SummaryTopK)
	if err != nil || len(hits) == 0 {
		s.logger.Warn("summary retrieval failed", "error", err)
		return config.SummaryFallback
	}

	summary, err := s.llmProvider.Generate(ctx, buildSummaryPrompt(hits), nil)
	if err != nil {
		s.logger.Warn("summary generation failed", "error", err)
		return config.SummaryFallback
	}
	return summary
}

// Clear discards the index contents and the conversation memory and returns
// the session to Empty.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.index.Clear(ctx); err != nil {
		return err
	}
	s.memory.Clear()
	s.doc = commonModels.Document{}
	s.state = StateEmpty
	return nil
}

// History exposes the transcript for callers that render it.
func (s *Session) History() []commonModels.Turn {
	return s.memory.Turns()
}
