package util

import (
	"regexp"
	"strings"
)

var (
	reSpaces         = regexp.MustCompile(`\s+`)
	reBinomialExact  = regexp.MustCompile(`^[A-Z][a-z]+ [a-z\-]+(?: [a-z\-]+)?$`)
	reBinomialPrefix = regexp.MustCompile(`^[A-Z][a-z]+ [a-z\-]+(?: [a-z\-]+)?`)
)

func NormalizeSpaces(input string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(input, " "))
}

// IsBinomial reports whether the whole string is a binomial name, with an
// optional third infraspecific epithet: "Genus species[ infraspecific]".
func IsBinomial(input string) bool {
	return reBinomialExact.MatchString(input)
}

// HasBinomialPrefix reports whether the string starts with a binomial name,
// ignoring whatever trails it (author citations, common names, page noise).
func HasBinomialPrefix(input string) bool {
	return reBinomialPrefix.MatchString(input)
}

// ExtractBinomial returns the leading binomial name of the string, if any.
func ExtractBinomial(input string) (string, bool) {
	m := reBinomialPrefix.FindString(input)
	if m == "" {
		return "", false
	}
	return m, true
}

// SimilarityRatio computes a case-insensitive similarity between two strings
// as 2*M / (len(a)+len(b)), where M is the length of their longest common
// subsequence of runes. Returns a value in [0,1]; 1 means equal ignoring
// case, 0 means nothing in common (or an empty input).
func SimilarityRatio(a, b string) float64 {
	ra := []rune(strings.ToLower(a))
	rb := []rune(strings.ToLower(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	// Single-row LCS table; inputs are short name strings.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	matches := prev[len(rb)]
	return float64(2*matches) / float64(len(ra)+len(rb))
}
