package tools

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const readingWordsPerMinute = 200

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// TextAnalyzerSpec reports word/character/sentence/paragraph counts, an
// estimated reading time and the most frequent words of the given text.
func TextAnalyzerSpec() Spec {
	return Spec{
		Name: "text_analyzer",
		Description: "Useful for analyzing text. Provides word count, character count, " +
			"sentence count, paragraph count, estimated reading time and most common words. " +
			"Input should be the text to analyze.",
		Run: runTextAnalyzer,
	}
}

func runTextAnalyzer(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Error: no text provided to analyze."
	}

	words := strings.Fields(text)
	charCount := utf8.RuneCountInString(text)
	charNoSpaces := 0
	for _, r := range text {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			charNoSpaces++
		}
	}

	sentences := 0
	for _, part := range sentenceSplitRe.Split(text, -1) {
		if strings.TrimSpace(part) != "" {
			sentences++
		}
	}

	paragraphs := 0
	for _, block := range strings.Split(text, "\n\n") {
		if strings.TrimSpace(block) != "" {
			paragraphs++
		}
	}

	readingMinutes := (len(words) + readingWordsPerMinute - 1) / readingWordsPerMinute

	var sb strings.Builder
	sb.WriteString("Text Analysis Results:\n")
	fmt.Fprintf(&sb, "- Words: %d\n", len(words))
	fmt.Fprintf(&sb, "- Characters: %d\n", charCount)
	fmt.Fprintf(&sb, "- Characters (no spaces): %d\n", charNoSpaces)
	fmt.Fprintf(&sb, "- Sentences: %d\n", sentences)
	fmt.Fprintf(&sb, "- Paragraphs: %d\n", paragraphs)
	fmt.Fprintf(&sb, "- Estimated reading time: %d minute(s)\n", readingMinutes)

	if top := topWords(words, 5); len(top) > 0 {
		sb.WriteString("- Most common words: ")
		sb.WriteString(strings.Join(top, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// topWords returns the n most frequent words longer than three characters,
// breaking frequency ties by first occurrence in the text.
func topWords(words []string, n int) []string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, w := range words {
		w = strings.ToLower(strings.Trim(w, ".,;:!?\"'()[]{}"))
		if utf8.RuneCountInString(w) <= 3 {
			continue
		}
		if _, ok := firstSeen[w]; !ok {
			firstSeen[w] = i
		}
		counts[w]++
	}

	ranked := make([]string, 0, len(counts))
	for w := range counts {
		ranked = append(ranked, w)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if counts[ranked[i]] != counts[ranked[j]] {
			return counts[ranked[i]] > counts[ranked[j]]
		}
		return firstSeen[ranked[i]] < firstSeen[ranked[j]]
	})

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]string, 0, len(ranked))
	for _, w := range ranked {
		out = append(out, fmt.Sprintf("%s (%d)", w, counts[w]))
	}
	return out
}
