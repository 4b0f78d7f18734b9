// Package textmatch scores similarity between free-text labels. It is the
// basis for deduplication and catalog matching: listings scraped from
// different pages rarely agree byte-for-byte on a name.
package textmatch

import (
	"strings"
	"unicode"
)

// DefaultThreshold is the minimum score at which two labels count as the same
// entity.
const DefaultThreshold = 0.6

// Normalize lowercases s, replaces every non-alphanumeric rune with a space,
// and collapses runs of whitespace.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Score returns a similarity in [0,1] for two labels. Identical normalized
// strings score 1.0, containment scores 0.9, everything else falls through to
// a Dice coefficient over character bigrams.
func Score(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == nb {
		if na == "" {
			return 0
		}
		return 1.0
	}
	if na == "" || nb == "" {
		return 0
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return 0.9
	}

	ba := bigrams(na)
	bb := bigrams(nb)
	if len(ba) == 0 || len(bb) == 0 {
		return 0
	}

	intersection := 0
	for bg := range ba {
		if _, ok := bb[bg]; ok {
			intersection++
		}
	}
	return 2 * float64(intersection) / float64(len(ba)+len(bb))
}

func bigrams(s string) map[string]struct{} {
	bg := make(map[string]struct{}, len(s))
	for i := 0; i+2 <= len(s); i++ {
		bg[s[i:i+2]] = struct{}{}
	}
	return bg
}

// SameLocation compares two location strings by their first comma-delimited
// segment. Equal segments match, as does one segment containing the other
// ("Downtown Des Moines" vs "Des Moines"). Two empty locations match.
func SameLocation(a, b string) bool {
	sa := Normalize(firstSegment(a))
	sb := Normalize(firstSegment(b))
	if sa == sb {
		return true
	}
	if sa == "" || sb == "" {
		return false
	}
	return strings.Contains(sa, sb) || strings.Contains(sb, sa)
}

func firstSegment(s string) string {
	if i := strings.Index(s, ","); i >= 0 {
		return s[:i]
	}
	return s
}
