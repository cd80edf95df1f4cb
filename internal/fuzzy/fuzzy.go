// Package fuzzy ranks near-miss option names for did-you-mean suggestions.
package fuzzy

import (
	"sort"
	"strings"
)

// Matcher finds candidates within a maximum edit distance of an input.
type Matcher struct {
	maxDistance int
	minLength   int
}

// NewMatcher creates a matcher allowing at most maxDistance edits. Inputs
// shorter than two characters never get suggestions; nearly everything is one
// edit away from them.
func NewMatcher(maxDistance int) *Matcher {
	return &Matcher{maxDistance: maxDistance, minLength: 2}
}

// Match pairs a candidate with its edit distance from the input.
type Match struct {
	Value    string
	Distance int
}

// FindBest returns the closest candidate, or an empty string when nothing
// lies within the distance cap.
func (m *Matcher) FindBest(input string, candidates []string) string {
	matches := m.FindMatches(input, candidates)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].Value
}

// FindMatches returns every candidate within the distance cap, closest first.
// Comparison is case-insensitive: a case-only mismatch is distance zero and
// ranks ahead of everything else. Ties break on longer common prefix, then
// lexically, so the ordering is deterministic.
func (m *Matcher) FindMatches(input string, candidates []string) []Match {
	if len(input) < m.minLength {
		return nil
	}
	lowered := strings.ToLower(input)

	var matches []Match
	for _, candidate := range candidates {
		d := m.distance(lowered, strings.ToLower(candidate))
		if d <= m.maxDistance {
			matches = append(matches, Match{Value: candidate, Distance: d})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		pi := commonPrefixLen(lowered, strings.ToLower(matches[i].Value))
		pj := commonPrefixLen(lowered, strings.ToLower(matches[j].Value))
		if pi != pj {
			return pi > pj
		}
		return matches[i].Value < matches[j].Value
	})
	return matches
}

// distance is the Levenshtein edit distance, computed over two rows with an
// early exit once every cell in a row exceeds the cap.
func (m *Matcher) distance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	if abs(len(a)-len(b)) > m.maxDistance {
		return m.maxDistance + 1
	}
	if len(a) > len(b) {
		a, b = b, a
	}

	prev := make([]int, len(a)+1)
	cur := make([]int, len(a)+1)
	for i := range prev {
		prev[i] = i
	}

	for i := 1; i <= len(b); i++ {
		cur[0] = i
		rowMin := i
		for j := 1; j <= len(a); j++ {
			cost := 0
			if a[j-1] != b[i-1] {
				cost = 1
			}
			cur[j] = min3(cur[j-1]+1, prev[j]+1, prev[j-1]+cost)
			if cur[j] < rowMin {
				rowMin = cur[j]
			}
		}
		if rowMin > m.maxDistance {
			return m.maxDistance + 1
		}
		prev, cur = cur, prev
	}
	return prev[len(a)]
}

func commonPrefixLen(a, b string) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

// FindBestOption returns the closest option name to input, or an empty string
// when no candidate is within maxDistance edits.
func FindBestOption(input string, candidates []string, maxDistance int) string {
	return NewMatcher(maxDistance).FindBest(input, candidates)
}
