package openaiEmbedding

import (
	"errors"
	"testing"

	"github.com/nkapoor/docuchat/internal/domain/ragerr"
	"github.com/openai/openai-go"
)

func TestCollectVectors_OrderedByIndex(t *testing.T) {
	data := []openai.Embedding{
		{Index: 2, Embedding: []float64{3}},
		{Index: 0, Embedding: []float64{1}},
		{Index: 1, Embedding: []float64{2}},
	}

	vectors, err := collectVectors(data, 3)
	if err != nil {
		t.Fatalf("collectVectors failed: %v", err)
	}
	for i, want := range []float32{1, 2, 3} {
		if vectors[i][0] != want {
			t.Errorf("vectors[%d] = %v, want [%v]", i, vectors[i], want)
		}
	}
}

func TestCollectVectors_BadIndices(t *testing.T) {
	tests := []struct {
		name string
		data []openai.Embedding
	}{
		{"out of range", []openai.Embedding{{Index: 0}, {Index: 2}}},
		{"negative", []openai.Embedding{{Index: -1}, {Index: 0}}},
		{"duplicate leaves a gap", []openai.Embedding{{Index: 0}, {Index: 0}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := collectVectors(tc.data, 2); !errors.Is(err, ragerr.ErrEmbedding) {
				t.Fatalf("got %v, want ErrEmbedding", err)
			}
		})
	}
}
