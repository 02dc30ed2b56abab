package plagiarism

import (
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// stringBlend weighs word overlap against character edit similarity
type stringBlend struct {
	word float64
	char float64
}

// The match extractor and the line-similarity metric were tuned separately and
// use different blends. Keep them apart.
var (
	matchBlend = stringBlend{word: 0.8, char: 0.2}
	lineBlend  = stringBlend{word: 0.7, char: 0.3}
)

// Levenshtein returns the exact edit distance between a and b, counted in runes
func Levenshtein(a, b string) int {
	return levenshtein.ComputeDistance(a, b)
}

// MatchStringSimilarity compares two passages for match extraction and sentence similarity
func MatchStringSimilarity(a, b string) float64 {
	return stringSimilarity(a, b, matchBlend)
}

// LineStringSimilarity compares two lines for document-level line similarity
func LineStringSimilarity(a, b string) float64 {
	return stringSimilarity(a, b, lineBlend)
}

func stringSimilarity(a, b string, blend stringBlend) float64 {
	if a == b {
		return 1.0
	}

	normA := Preprocess(a)
	normB := Preprocess(b)
	if normA == normB {
		return 1.0
	}
	if normA == "" || normB == "" {
		return 0.0
	}

	wordsA := words(normA)
	wordsB := words(normB)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	// Membership count, not multiset intersection: every occurrence in A that
	// appears anywhere in B counts.
	inB := toSet(wordsB)
	common := 0
	for _, word := range wordsA {
		if _, ok := inB[word]; ok {
			common++
		}
	}
	wordSimilarity := float64(common) / float64(max(len(wordsA), len(wordsB)))

	longer, shorter := normA, normB
	if utf8.RuneCountInString(normB) > utf8.RuneCountInString(normA) {
		longer, shorter = normB, normA
	}
	maxLen := utf8.RuneCountInString(longer)
	charSimilarity := float64(maxLen-Levenshtein(longer, shorter)) / float64(maxLen)

	return clamp(wordSimilarity*blend.word+charSimilarity*blend.char, 0, 1)
}
