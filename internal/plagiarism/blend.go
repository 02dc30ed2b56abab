package plagiarism

// SimilarityScores holds the five document-level metrics, each in [0, 1]
type SimilarityScores struct {
	Line     float64
	TfIdf    float64
	Jaccard  float64
	Ngram    float64
	Sentence float64
}

// Combine blends the component scores with the given weights and clamps to [0, 1]
func (s SimilarityScores) Combine(weights Weights) float64 {
	combined := s.Line*weights.Line +
		s.TfIdf*weights.TfIdf +
		s.Jaccard*weights.Jaccard +
		s.Ngram*weights.Ngram +
		s.Sentence*weights.Sentence
	return clamp(combined, 0, 1)
}

// ComputeScores runs every metric over a document pair.
// rawA/rawB are the documents as uploaded, textA/textB their preprocessed forms.
func ComputeScores(rawA, rawB, textA, textB string, th Thresholds) SimilarityScores {
	tokensA := Tokenize(textA)
	tokensB := Tokenize(textB)
	vectorA, vectorB := BuildTfIdf(textA, textB)

	return SimilarityScores{
		Line:     LineSimilarity(rawA, rawB, th),
		TfIdf:    CosineSimilarity(vectorA, vectorB),
		Jaccard:  Jaccard(tokensA, tokensB),
		Ngram:    NgramJaccard(tokensA, tokensB, th.NgramSize),
		Sentence: SentenceSimilarity(rawA, rawB, th),
	}
}
