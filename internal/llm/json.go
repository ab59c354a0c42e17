package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

var jsonFenceRe = regexp.MustCompile("(?s)```json\\s*\n(.*?)```")

// DecodeJSON extracts a JSON object from model output into v. Models wrap
// structured output unpredictably, so two strategies are tried: a fenced
// Markdown json block first, then the outermost balanced { ... } pair.
// Returns false when no parseable object is found; callers treat that as a
// soft failure, never a crash.
func DecodeJSON(text string, v any) bool {
	if m := jsonFenceRe.FindStringSubmatch(text); m != nil {
		if json.Unmarshal([]byte(strings.TrimSpace(m[1])), v) == nil {
			return true
		}
	}

	raw, ok := balancedObject(text)
	if !ok {
		return false
	}
	return json.Unmarshal([]byte(raw), v) == nil
}

// balancedObject finds the first top-level { ... } pair, tracking string
// literals and escapes so braces inside values do not fool the scan.
func balancedObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escape := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if escape {
			escape = false
			continue
		}
		switch ch {
		case '\\':
			escape = true
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}
	return "", false
}
