package usecase

import (
	"regexp"
	"sort"
	"strings"
)

var punctuationRegex = regexp.MustCompile(`[^\w\s]`)

// ratio is the normalized levenshtein similarity of two strings in [0,1].
func ratio(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	r1 := []rune(s1)
	r2 := []rune(s2)
	longest := len(r1)
	if len(r2) > longest {
		longest = len(r2)
	}
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(longest)
}

// partialRatio is the best similarity of needle against any same-length
// window of haystack. A direct substring hit short-circuits to 1.0.
func partialRatio(needle, haystack string) float64 {
	if needle == "" || haystack == "" {
		return 0.0
	}
	if strings.Contains(haystack, needle) {
		return 1.0
	}

	nr := []rune(needle)
	hr := []rune(haystack)
	if len(hr) <= len(nr) {
		return ratio(needle, haystack)
	}

	best := 0.0
	for i := 0; i+len(nr) <= len(hr); i++ {
		if r := ratio(needle, string(hr[i:i+len(nr)])); r > best {
			best = r
			if best == 1.0 {
				break
			}
		}
	}
	return best
}

// tokenSetRatio compares the token sets of two strings, ignoring word order
// and duplication. The classic construction: score the sorted intersection
// against each side's intersection+remainder, and the two full sides against
// each other, returning the best.
func tokenSetRatio(s1, s2 string) float64 {
	t1 := tokenSet(s1)
	t2 := tokenSet(s2)
	if len(t1) == 0 || len(t2) == 0 {
		return 0.0
	}

	var intersection, diff1, diff2 []string
	for tok := range t1 {
		if t2[tok] {
			intersection = append(intersection, tok)
		} else {
			diff1 = append(diff1, tok)
		}
	}
	for tok := range t2 {
		if !t1[tok] {
			diff2 = append(diff2, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(diff1)
	sort.Strings(diff2)

	base := strings.Join(intersection, " ")
	combined1 := strings.TrimSpace(base + " " + strings.Join(diff1, " "))
	combined2 := strings.TrimSpace(base + " " + strings.Join(diff2, " "))

	best := ratio(base, combined1)
	if r := ratio(base, combined2); r > best {
		best = r
	}
	if r := ratio(combined1, combined2); r > best {
		best = r
	}
	return best
}

// tokenSet splits a string into a set of lowercase word tokens with
// punctuation stripped.
func tokenSet(s string) map[string]bool {
	cleaned := punctuationRegex.ReplaceAllString(strings.ToLower(s), " ")
	set := make(map[string]bool)
	for _, w := range strings.Fields(cleaned) {
		set[w] = true
	}
	return set
}

// levenshteinDistance computes edit distance over rune slices using the
// two-row formulation.
func levenshteinDistance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	n := len(r2)
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= len(r1); i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = minOf(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

func minOf(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
