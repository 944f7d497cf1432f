package commonModels

import "time"

type DocType string

var (
	PDF  DocType = "PDF"
	DOCX DocType = "DOCX"
	TXT  DocType = "TXT"
	ERR  DocType = "ERROR"
)

// Document is the immutable record of one uploaded file. A new upload
// supersedes it wholesale, it is never edited in place.
type Document struct {
	Id          string    `json:"source_doc_id"`
	Name        string    `json:"doc_name"`
	ContentType DocType   `json:"content_type"`
	IngestedAt  time.Time `json:"ingested_at"`
}

// DocChunk is one contiguous window cut out of a Document. Offset and Order
// are deterministic for a given (text, chunk size, overlap).
type DocChunk struct {
	Doc     Document `json:"doc"`
	ChunkId string   `json:"chunk_id"`
	Text    string   `json:"content"`
	Offset  int      `json:"offset"`
	Order   int      `json:"chunk_order"`
}

// IndexEntry pairs a chunk with its embedding for storage in a vector index.
type IndexEntry struct {
	Vector []float32
	Chunk  DocChunk
}

// ScoredChunk is one retrieval hit. Results are ordered by descending Score,
// ties broken by insertion order.
type ScoredChunk struct {
	Chunk DocChunk `json:"chunk"`
	Score float32  `json:"score"`
}

// SourceRef is the caller-facing citation for one retrieved chunk. Preview is
// capped at 200 runes.
type SourceRef struct {
	Preview string `json:"content"`
	DocName string `json:"doc_name"`
	Offset  int    `json:"offset"`
	Order   int    `json:"chunk_order"`
}

type Answer struct {
	Text    string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}
