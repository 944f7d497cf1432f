package chunker

import (
	"fmt"

	"github.com/nkapoor/docuchat/internal/domain/ragerr"
)

// Window is one fixed-size slice of the input text. Offset and Ordinal are
// rune-based and deterministic for a given (text, size, overlap).
type Window struct {
	Text    string
	Offset  int
	Ordinal int
}

// Split cuts text into windows of at most size runes, each overlapping the
// previous one by overlap runes, covering the input end to end with no gaps.
// Text no longer than size yields exactly one window.
func Split(text string, size, overlap int) ([]Window, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size %d must be positive", ragerr.ErrConfig, size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: overlap %d must be in [0, %d)", ragerr.ErrConfig, overlap, size)
	}

	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	if len(runes) <= size {
		return []Window{{Text: string(runes), Offset: 0, Ordinal: 0}}, nil
	}

	step := size - overlap
	var windows []Window
	for start := 0; ; start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		windows = append(windows, Window{
			Text:    string(runes[start:end]),
			Offset:  start,
			Ordinal: len(windows),
		})
		if end == len(runes) {
			break
		}
	}
	return windows, nil
}
