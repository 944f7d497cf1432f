package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nkapoor/docuchat/internal/domain/commonModels"
	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/nkapoor/docuchat/internal/rag"
	"github.com/nkapoor/docuchat/internal/rag/docload"
	"github.com/nkapoor/docuchat/internal/rag/vectorDB/memoryDB"
)

func newTestSession(e *MockEmbedder, p *MockProvider) (*rag.Session, *memoryDB.Index) {
	idx := memoryDB.NewIndex(3)
	return rag.NewSession(idx, p, e), idx
}

func txtMeta(name string) docload.Meta {
	return docload.Meta{Name: name, ContentType: commonModels.TXT}
}

func TestIngest_Success(t *testing.T) {
	s, idx := newTestSession(&MockEmbedder{}, &MockProvider{})

	count, err := s.Ingest(context.Background(), strings.Repeat("document text ", 200), txtMeta("doc.txt"))
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if count < 2 {
		t.Errorf("expected multiple chunks, got %d", count)
	}
	if idx.Len() != count {
		t.Errorf("index holds %d entries, reported %d chunks", idx.Len(), count)
	}
	if s.State() != rag.StateIndexed {
		t.Errorf("state got %s, want Indexed", s.State())
	}
}

func TestIngest_EmptyDocumentRejected(t *testing.T) {
	s, idx := newTestSession(&MockEmbedder{}, &MockProvider{})
	ctx := context.Background()

	for _, text := range []string{"", "   \n\t\n  "} {
		_, err := s.Ingest(ctx, text, txtMeta("blank.txt"))
		if !errors.Is(err, ragerr.ErrNoContent) {
			t.Fatalf("ingesting %q got %v, want ErrNoContent", text, err)
		}
	}
	if idx.Len() != 0 {
		t.Errorf("index holds %d entries, want 0", idx.Len())
	}
	if s.State() != rag.StateEmpty {
		t.Errorf("state got %s, want Empty", s.State())
	}
	if _, err := s.Ask(ctx, "anything in there?"); !errors.Is(err, ragerr.ErrNotReady) {
		t.Errorf("Ask after rejected ingest got %v, want ErrNotReady", err)
	}
}

func TestIngest_EmbeddingFailure_LeavesIndexCleared(t *testing.T) {
	embedder := &MockEmbedder{
		OnBatchEmbedding: func(ctx context.Context, chunks []string) ([][]float32, error) {
			return nil, errors.New("api limit")
		},
	}
	s, idx := newTestSession(embedder, &MockProvider{})

	_, err := s.Ingest(context.Background(), strings.Repeat("text ", 500), txtMeta("doc.txt"))
	if !errors.Is(err, ragerr.ErrEmbedding) {
		t.Fatalf("got %v, want ErrEmbedding", err)
	}
	if idx.Len() != 0 {
		t.Errorf("index holds %d entries after failed ingest, want 0", idx.Len())
	}
	if s.State() != rag.StateEmpty {
		t.Errorf("state got %s, want Empty", s.State())
	}
}

func TestIngest_ReplacesPreviousDocument(t *testing.T) {
	s, idx := newTestSession(&MockEmbedder{}, &MockProvider{})
	ctx := context.Background()

	first, err := s.Ingest(ctx, strings.Repeat("first document ", 300), txtMeta("first.txt"))
	if err != nil {
		t.Fatalf("first ingest failed: %v", err)
	}
	second, err := s.Ingest(ctx, "tiny replacement", txtMeta("second.txt"))
	if err != nil {
		t.Fatalf("second ingest failed: %v", err)
	}
	if second != 1 {
		t.Errorf("tiny document produced %d chunks, want 1", second)
	}
	if idx.Len() != second {
		t.Errorf("index holds %d entries, want %d (first doc had %d)", idx.Len(), second, first)
	}
}

func TestAsk_BeforeIngest_NotReady(t *testing.T) {
	s, _ := newTestSession(&MockEmbedder{}, &MockProvider{})

	_, err := s.Ask(context.Background(), "what is this about?")
	if !errors.Is(err, ragerr.ErrNotReady) {
		t.Errorf("got %v, want ErrNotReady", err)
	}
}

func TestAsk_ReturnsAnswerAndSources(t *testing.T) {
	provider := &MockProvider{
		OnGenerate: func(ctx context.Context, prompt string, history []commonModels.Turn) (string, error) {
			if !strings.Contains(prompt, "User Question: what is covered?") {
				t.Errorf("prompt missing question: %q", prompt)
			}
			return "the answer", nil
		},
	}
	s, _ := newTestSession(&MockEmbedder{}, provider)

	if _, err := s.Ingest(context.Background(), strings.Repeat("content ", 400), txtMeta("doc.txt")); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}

	answer, err := s.Ask(context.Background(), "what is covered?")
	if err != nil {
		t.Fatalf("Ask failed: %v", err)
	}
	if answer.Text != "the answer" {
		t.Errorf("answer got %q", answer.Text)
	}
	if len(answer.Sources) == 0 {
		t.Fatal("no sources returned")
	}
	for _, src := range answer.Sources {
		if len([]rune(src.Preview)) > 203 { // 200 + ellipsis
			t.Errorf("source preview too long: %d runes", len([]rune(src.Preview)))
		}
		if src.DocName != "doc.txt" {
			t.Errorf("source doc name got %q", src.DocName)
		}
	}
}

func TestAsk_AppendsToMemory(t *testing.T) {
	s, _ := newTestSession(&MockEmbedder{}, &MockProvider{})
	ctx := context.Background()

	if _, err := s.Ingest(ctx, "short document", txtMeta("doc.txt")); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := s.Ask(ctx, "first question"); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	history := s.History()
	if len(history) != 2 {
		t.Fatalf("history has %d turns, want 2", len(history))
	}
	if history[0].Speaker != commonModels.SpeakerUser || history[0].Text != "first question" {
		t.Errorf("unexpected first turn: %+v", history[0])
	}
	if history[1].Speaker != commonModels.SpeakerAssistant {
		t.Errorf("unexpected second turn: %+v", history[1])
	}
}

func TestAsk_GenerationFailure(t *testing.T) {
	provider := &MockProvider{
		OnGenerate: func(ctx context.Context, prompt string, history []commonModels.Turn) (string, error) {
			return "", ragerr.ErrGateway
		},
	}
	s, _ := newTestSession(&MockEmbedder{}, provider)
	ctx := context.Background()

	if _, err := s.Ingest(ctx, "short document", txtMeta("doc.txt")); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := s.Ask(ctx, "question"); !errors.Is(err, ragerr.ErrGateway) {
		t.Errorf("got %v, want ErrGateway", err)
	}
	if len(s.History()) != 0 {
		t.Error("failed exchange must not be appended to memory")
	}
}

func TestSummarize_BestEffort(t *testing.T) {
	tests := []struct {
		name     string
		generate func(ctx context.Context, prompt string, history []commonModels.Turn) (string, error)
		ingest   bool
		want     string
	}{
		{
			name: "Success",
			generate: func(ctx context.Context, prompt string, history []commonModels.Turn) (string, error) {
				return "a fine summary", nil
			},
			ingest: true,
			want:   "a fine summary",
		},
		{
			name: "Generation_Failure_Falls_Back",
			generate: func(ctx context.Context, prompt string, history []commonModels.Turn) (string, error) {
				return "", errors.New("provider down")
			},
			ingest: true,
			want:   "Unable to generate summary at this time.",
		},
		{
			name:   "No_Document",
			ingest: false,
			want:   "No document uploaded.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(&MockEmbedder{}, &MockProvider{OnGenerate: tt.generate})
			if tt.ingest {
				if _, err := s.Ingest(context.Background(), "document to summarize", txtMeta("doc.txt")); err != nil {
					t.Fatalf("ingest failed: %v", err)
				}
			}
			if got := s.Summarize(context.Background()); got != tt.want {
				t.Errorf("Summarize got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClear_ThenAsk_NotReady(t *testing.T) {
	s, idx := newTestSession(&MockEmbedder{}, &MockProvider{})
	ctx := context.Background()

	if _, err := s.Ingest(ctx, "some document", txtMeta("doc.txt")); err != nil {
		t.Fatalf("ingest failed: %v", err)
	}
	if _, err := s.Ask(ctx, "q"); err != nil {
		t.Fatalf("Ask failed: %v", err)
	}

	if err := s.Clear(ctx); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if idx.Len() != 0 {
		t.Error("index not emptied by Clear")
	}
	if len(s.History()) != 0 {
		t.Error("memory not emptied by Clear")
	}
	if _, err := s.Ask(ctx, "q again"); !errors.Is(err, ragerr.ErrNotReady) {
		t.Errorf("got %v, want ErrNotReady", err)
	}
}

func TestSessions_MemoryIsolation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestSession(&MockEmbedder{}, &MockProvider{})
	b, _ := newTestSession(&MockEmbedder{}, &MockProvider{})

	if _, err := a.Ingest(ctx, "doc a", txtMeta("a.txt")); err != nil {
		t.Fatalf("ingest a failed: %v", err)
	}
	if _, err := b.Ingest(ctx, "doc b", txtMeta("b.txt")); err != nil {
		t.Fatalf("ingest b failed: %v", err)
	}

	if _, err := a.Ask(ctx, "question for a"); err != nil {
		t.Fatalf("Ask a failed: %v", err)
	}

	if len(a.History()) != 2 {
		t.Errorf("session a history has %d turns, want 2", len(a.History()))
	}
	if len(b.History()) != 0 {
		t.Errorf("session b observed %d turns from session a", len(b.History()))
	}
}

func TestSupportedFormats(t *testing.T) {
	got := rag.SupportedFormats()
	if len(got) != 4 {
		t.Errorf("got %d formats: %v", len(got), got)
	}
}
