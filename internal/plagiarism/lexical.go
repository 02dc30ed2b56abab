package plagiarism

import (
	"strings"
)

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// Jaccard computes |A ∩ B| / |A ∪ B| over the unique tokens of both sequences.
// Returns 0 when both are empty.
func Jaccard(tokensA, tokensB []string) float64 {
	return setJaccard(toSet(tokensA), toSet(tokensB))
}

func setJaccard(setA, setB map[string]struct{}) float64 {
	shared := 0
	for item := range setA {
		if _, ok := setB[item]; ok {
			shared++
		}
	}

	union := len(setA) + len(setB) - shared
	if union == 0 {
		return 0.0
	}
	return float64(shared) / float64(union)
}

// Ngrams slides a window of n tokens over the sequence and joins each window with a space
func Ngrams(tokens []string, n int) []string {
	if n <= 0 || len(tokens) < n {
		return []string{}
	}

	grams := make([]string, 0, len(tokens)-n+1)
	for i := 0; i <= len(tokens)-n; i++ {
		grams = append(grams, strings.Join(tokens[i:i+n], " "))
	}
	return grams
}

// NgramJaccard is the Jaccard similarity of the two n-gram sets
func NgramJaccard(tokensA, tokensB []string, n int) float64 {
	return Jaccard(Ngrams(tokensA, n), Ngrams(tokensB, n))
}
