package rag

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nkapoor/docuchat/internal/config"
	"github.com/nkapoor/docuchat/internal/domain/commonModels"
)

func newId() string {
	return uuid.New().String()
}

func buildAskPrompt(hits []commonModels.ScoredChunk, question string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	for _, hit := range hits {
		b.WriteString(hit.Chunk.Text)
		b.WriteString("\n\n")
	}
	fmt.Fprintf(&b, "User Question: %s", question)
	return b.String()
}

func buildSummaryPrompt(hits []commonModels.ScoredChunk) string {
	var b strings.Builder
	b.WriteString("Please provide a concise summary of the following document content:\n\n")
	for _, hit := range hits {
		b.WriteString(hit.Chunk.Text)
		b.WriteString("\n\n")
	}
	b.WriteString("Summary:")
	return b.String()
}

// sourceRefs previews each retrieved chunk, in retrieval order.
func sourceRefs(hits []commonModels.ScoredChunk) []commonModels.SourceRef {
	refs := make([]commonModels.SourceRef, len(hits))
	for i, hit := range hits {
		refs[i] = commonModels.SourceRef{
			Preview: preview(hit.Chunk.Text, config.SourcePreviewRunes),
			DocName: hit.Chunk.Doc.Name,
			Offset:  hit.Chunk.Offset,
			Order:   hit.Chunk.Order,
		}
	}
	return refs
}

func preview(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
