package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/nkapoor/docuchat/internal/domain/ragerr"
)

func TestSplit_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		size      int
		overlap   int
		wantCount int
	}{
		{name: "Shorter_Than_Size", text: "short", size: 100, overlap: 10, wantCount: 1},
		{name: "Exactly_Size", text: strings.Repeat("a", 10), size: 10, overlap: 2, wantCount: 1},
		{name: "Two_Windows", text: strings.Repeat("a", 15), size: 10, overlap: 2, wantCount: 2},
		{name: "Zero_Overlap", text: strings.Repeat("a", 30), size: 10, overlap: 0, wantCount: 3},
		{name: "Long_Text", text: strings.Repeat("x", 1000), size: 100, overlap: 20, wantCount: 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			windows, err := Split(tt.text, tt.size, tt.overlap)
			if err != nil {
				t.Fatalf("Split failed: %v", err)
			}
			if len(windows) != tt.wantCount {
				t.Errorf("window count got %d, want %d", len(windows), tt.wantCount)
			}
			// ceil((n-overlap)/(size-overlap)) for n > size, else 1
			n := len([]rune(tt.text))
			want := 1
			if n > tt.size {
				step := tt.size - tt.overlap
				want = (n - tt.overlap + step - 1) / step
			}
			if len(windows) != want {
				t.Errorf("window count got %d, formula says %d", len(windows), want)
			}
		})
	}
}

func TestSplit_Coverage(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " + strings.Repeat("More filler text here. ", 20)
	size, overlap := 50, 10

	windows, err := Split(text, size, overlap)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}

	runes := []rune(text)
	for i, w := range windows {
		if w.Ordinal != i {
			t.Errorf("window %d has ordinal %d", i, w.Ordinal)
		}
		if w.Text == "" {
			t.Errorf("window %d is empty", i)
		}
		if got := string(runes[w.Offset : w.Offset+len([]rune(w.Text))]); got != w.Text {
			t.Errorf("window %d does not match source at offset %d", i, w.Offset)
		}
		if i > 0 {
			prev := windows[i-1]
			prevEnd := prev.Offset + len([]rune(prev.Text))
			if w.Offset > prevEnd {
				t.Errorf("gap between window %d (ends %d) and window %d (starts %d)", i-1, prevEnd, i, w.Offset)
			}
		}
	}

	last := windows[len(windows)-1]
	if last.Offset+len([]rune(last.Text)) != len(runes) {
		t.Error("last window does not reach end of text")
	}
}

func TestSplit_Deterministic(t *testing.T) {
	text := strings.Repeat("deterministic input ", 100)
	a, _ := Split(text, 120, 30)
	b, _ := Split(text, 120, 30)

	if len(a) != len(b) {
		t.Fatalf("counts differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("window %d differs between runs", i)
		}
	}
}

func TestSplit_InvalidParams(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
	}{
		{"Overlap_Equals_Size", 10, 10},
		{"Overlap_Exceeds_Size", 10, 20},
		{"Negative_Overlap", 10, -1},
		{"Zero_Size", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.size, tt.overlap)
			if !errors.Is(err, ragerr.ErrConfig) {
				t.Errorf("got %v, want ErrConfig", err)
			}
		})
	}
}

func TestSplit_EmptyText(t *testing.T) {
	windows, err := Split("", 10, 2)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if len(windows) != 0 {
		t.Errorf("got %d windows for empty text, want 0", len(windows))
	}
}
