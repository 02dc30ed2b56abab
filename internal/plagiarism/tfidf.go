package plagiarism

import (
	"math"
	"strings"
)

// TfIdfVector is a sparse term -> weight mapping; absent terms weigh 0
type TfIdfVector map[string]float64

// BuildTfIdf weighs the terms of two documents against a corpus made of exactly
// those two documents. Identical documents get all-ones vectors over the shared vocabulary.
func BuildTfIdf(textA, textB string) (TfIdfVector, TfIdfVector) {
	tokensA := Tokenize(textA)
	tokensB := Tokenize(textB)

	if strings.TrimSpace(textA) == strings.TrimSpace(textB) {
		ones := make(TfIdfVector)
		for _, token := range tokensA {
			ones[token] = 1.0
		}
		return ones, ones
	}

	countsA := termCounts(tokensA)
	countsB := termCounts(tokensB)

	idf := func(term string) float64 {
		docs := 0
		if _, ok := countsA[term]; ok {
			docs++
		}
		if _, ok := countsB[term]; ok {
			docs++
		}
		return math.Log(2.0 / math.Max(1, float64(docs)))
	}

	return weigh(countsA, len(tokensA), idf), weigh(countsB, len(tokensB), idf)
}

func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, token := range tokens {
		counts[token]++
	}
	return counts
}

func weigh(counts map[string]int, total int, idf func(string) float64) TfIdfVector {
	vector := make(TfIdfVector, len(counts))
	if total == 0 {
		return vector
	}
	for term, count := range counts {
		if weight := float64(count) / float64(total) * idf(term); weight != 0 {
			vector[term] = weight
		}
	}
	return vector
}

// CosineSimilarity returns the cosine of the angle between two vectors, clamped to [0, 1].
// Two zero vectors are identical (1.0); one zero vector against a non-zero one scores 0.
func CosineSimilarity(vectorA, vectorB TfIdfVector) float64 {
	dot := 0.0
	normA := 0.0
	normB := 0.0

	for term, weightA := range vectorA {
		normA += weightA * weightA
		dot += weightA * vectorB[term]
	}
	for _, weightB := range vectorB {
		normB += weightB * weightB
	}

	if normA == 0 && normB == 0 {
		return 1.0
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}

	return clamp(dot/(math.Sqrt(normA)*math.Sqrt(normB)), 0, 1)
}

func clamp(value, low, high float64) float64 {
	return math.Min(high, math.Max(low, value))
}
