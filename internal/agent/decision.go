package agent

import (
	"encoding/json"
	"fmt"
	"strings"
)

const actionFinal = "final"

// decision is the wire format the model answers in on every loop step:
// either {"action": "<tool>", "input": "..."} or
// {"action": "final", "answer": "..."}.
type decision struct {
	Action string `json:"action"`
	Input  string `json:"input"`
	Answer string `json:"answer"`
}

// parseDecision pulls the first JSON object out of the model reply and decodes
// it. Models wrap JSON in prose or code fences often enough that strict
// whole-string decoding is not an option.
func parseDecision(reply string) (decision, error) {
	var d decision

	raw, ok := firstJSONObject(reply)
	if !ok {
		return d, fmt.Errorf("no JSON object in model reply")
	}
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return d, fmt.Errorf("decode decision: %w", err)
	}
	d.Action = strings.ToLower(strings.TrimSpace(d.Action))
	if d.Action == "" {
		return d, fmt.Errorf("decision has no action")
	}
	return d, nil
}

// firstJSONObject scans for the first balanced {...} span, honoring strings
// and escapes so braces inside the answer text do not truncate the object.
func firstJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
