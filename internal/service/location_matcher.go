package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// normalizeName lowercases, strips diacritics and collapses whitespace so
// "Thành phố Hồ Chí Minh" and "thanh pho ho chi minh" compare equal.
func normalizeName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		out = strings.ToLower(s)
	}
	// đ has no decomposition.
	out = strings.ReplaceAll(out, "đ", "d")
	return strings.Join(strings.Fields(out), " ")
}

// containsEither reports whether either normalized string contains the other.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// matchLocation picks the first candidate whose name or one of its name
// extensions contains the query (or is contained by it). Failing that, the
// candidate sharing the most words with the query wins; ties keep the earlier
// candidate and zero overlap is no match.
func matchLocation[T any](items []T, query string, name func(T) string, extensions func(T) []string) (T, bool) {
	var zero T
	q := normalizeName(query)
	if q == "" {
		return zero, false
	}

	for _, it := range items {
		if containsEither(q, normalizeName(name(it))) {
			return it, true
		}
		for _, ext := range extensions(it) {
			if containsEither(q, normalizeName(ext)) {
				return it, true
			}
		}
	}

	queryTokens := make(map[string]struct{})
	for _, tok := range strings.Fields(q) {
		queryTokens[tok] = struct{}{}
	}

	best, bestScore := -1, 0
	for i, it := range items {
		seen := make(map[string]struct{})
		score := 0
		for _, tok := range strings.Fields(normalizeName(name(it))) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			if _, ok := queryTokens[tok]; ok {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return zero, false
	}
	return items[best], true
}
