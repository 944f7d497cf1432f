// Package ragerr holds the sentinel errors shared across the RAG pipeline and
// the research agent. Callers match them with errors.Is; sites that fail wrap
// with fmt.Errorf("...: %w", ...) so the cause stays visible in logs.
package ragerr

import "errors"

var (
	// ErrConfig marks invalid parameters (chunk size, overlap, vector
	// dimension). Fatal, never retried.
	ErrConfig = errors.New("invalid configuration")

	// ErrUnsupportedFormat marks a document type the loader cannot handle.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrNoContent marks an upload whose extraction produced no indexable
	// text, e.g. a blank file or a scanned PDF.
	ErrNoContent = errors.New("document has no extractable text")

	// ErrEmbedding marks a failed embedding gateway call.
	ErrEmbedding = errors.New("embedding call failed")

	// ErrGateway marks a failed generation gateway call.
	ErrGateway = errors.New("generation call failed")

	// ErrNotReady marks an operation invoked before its prerequisite state,
	// e.g. asking a question before any document was indexed.
	ErrNotReady = errors.New("no document indexed")

	// ErrAgent marks a reasoning loop that could not reach the model at all.
	ErrAgent = errors.New("agent could not reach the model")
)
