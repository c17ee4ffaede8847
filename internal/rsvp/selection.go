package rsvp

import (
	"strings"
	"unicode"
)

// MatchSelection locates the word index where free-form selected text begins
// in the word stream, or -1 when nothing qualifies. Selection text can differ
// from extraction output in whitespace and punctuation, so this is a
// best-effort token heuristic rather than an exact substring search: a
// candidate is accepted when at least half of the selection's tokens
// (rounded up) match contiguously from that point.
func MatchSelection(words []Word, selection string) int {
	tokens := normalizeTokens(selection)
	if len(tokens) == 0 {
		return -1
	}
	required := (len(tokens) + 1) / 2

	for i := range words {
		first := normalizeWord(words[i].Text)
		if first == "" || !looseEquals(first, tokens[0]) {
			continue
		}

		matched := 1
		for j := 1; j < len(tokens) && i+j < len(words); j++ {
			next := normalizeWord(words[i+j].Text)
			if !looseEquals(next, tokens[j]) {
				break
			}
			matched++
		}
		if matched >= required {
			return i
		}
	}
	return -1
}

// looseEquals accepts equal, containing, or contained tokens, since the two
// sides may split punctuation differently.
func looseEquals(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// normalizeWord lowercases a token and strips everything that is not a letter
// or digit.
func normalizeWord(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeTokens(s string) []string {
	var tokens []string
	for _, f := range strings.Fields(s) {
		if t := normalizeWord(f); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}
