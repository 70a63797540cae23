// Package resolver maps loosely typed variable references onto dataset columns.
package resolver

import "strings"

// MinSimilarity is the ratio a fuzzy candidate must strictly exceed
const MinSimilarity = 0.3

// Match describes how a keyword was resolved
type Match struct {
	Column string
	Exact  bool    // keyword equals the column name
	Score  float64 // 1 for containment matches, similarity ratio otherwise
}

// Resolve returns the column a keyword refers to.
// Containment of the trimmed, case-folded keyword wins first (first column in order);
// otherwise the column with the highest similarity ratio, if above MinSimilarity.
// A blank keyword never resolves.
func Resolve(keyword string, columns []string) (string, bool) {
	m, ok := ResolveMatch(keyword, columns)
	return m.Column, ok
}

// ResolveMatch is Resolve with match details
func ResolveMatch(keyword string, columns []string) (Match, bool) {
	needle := strings.ToLower(strings.TrimSpace(keyword))
	if needle == "" || len(columns) == 0 {
		return Match{}, false
	}
	for _, col := range columns {
		if strings.Contains(strings.ToLower(col), needle) {
			return Match{Column: col, Exact: col == keyword, Score: 1}, true
		}
	}

	best, bestScore := "", 0.0
	for _, col := range columns {
		score := Similarity(needle, strings.ToLower(col))
		if score > bestScore {
			best, bestScore = col, score
		}
	}
	if bestScore > MinSimilarity {
		return Match{Column: best, Score: bestScore}, true
	}
	return Match{}, false
}

// Similarity is 2*LCS/(len(a)+len(b)) over runes, where LCS is the longest
// common subsequence. Two empty strings are identical.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(lcsLength(ra, rb)) / float64(total)
}

func lcsLength(a, b []rune) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				curr[j] = prev[j-1] + 1
			case prev[j] >= curr[j-1]:
				curr[j] = prev[j]
			default:
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
