package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Generation output is supposed to be a bare JSON array, but models wrap it
// in prose, markdown fences, or a {"results": [...]} envelope often enough
// that parsing runs three stages before giving up.

var resultsKeyRe = regexp.MustCompile(`"results"\s*:`)

// parseCandidateArray recovers a JSON array of objects from raw model
// output. Stage one parses the whole response; stage two takes the first
// balanced [...] span; stage three looks inside a "results" envelope. All
// three failing means zero candidates, not an error.
func parseCandidateArray(raw string) ([]json.RawMessage, bool) {
	raw = stripFences(raw)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err == nil {
		return items, true
	}

	if span, ok := balancedSpan(raw, '[', ']'); ok {
		if err := json.Unmarshal([]byte(span), &items); err == nil {
			return items, true
		}
	}

	if loc := resultsKeyRe.FindStringIndex(raw); loc != nil {
		if span, ok := balancedSpan(raw[loc[1]:], '[', ']'); ok {
			if err := json.Unmarshal([]byte(span), &items); err == nil {
				return items, true
			}
		}
	}

	return nil, false
}

// parseSingleObject recovers one JSON object from raw model output using the
// first balanced {...} span.
func parseSingleObject(raw string) (json.RawMessage, bool) {
	raw = stripFences(raw)

	span, ok := balancedSpan(raw, '{', '}')
	if !ok {
		return nil, false
	}
	if !json.Valid([]byte(span)) {
		return nil, false
	}
	return json.RawMessage(span), true
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// balancedSpan returns the first span of s starting at open and ending at
// its matching close, skipping brackets inside JSON string literals.
func balancedSpan(s string, open, close byte) (string, bool) {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// brackets inside strings don't count
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
