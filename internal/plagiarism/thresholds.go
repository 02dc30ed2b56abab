package plagiarism

import "github.com/RishiKendai/aegis-text/internal/models"

// Weights holds the blend weights of the five document-level metrics
type Weights struct {
	Line     float64
	TfIdf    float64
	Jaccard  float64
	Ngram    float64
	Sentence float64
}

// Thresholds groups every tunable constant of the engine.
// Similarity thresholds are fractions in [0, 1].
type Thresholds struct {
	// MatchAcceptance is the score a line or sentence pair must exceed to be reported
	MatchAcceptance float64
	// LineMatch is the best-match score a line must exceed to count toward line similarity
	LineMatch float64
	// Exact and Similar classify accepted segments; anything below Similar is a paraphrase
	Exact   float64
	Similar float64

	// DuplicateDelta is the similarity distance (in percentage points) under which a sentence
	// match is considered a repeat of an earlier match sharing DuplicatePrefix runes of content
	DuplicateDelta  float64
	DuplicatePrefix int

	MaxMatches       int
	MinSentenceLen   int
	MinNormalizedLen int
	PreviewLen       int
	NgramSize        int

	Weights Weights
}

// DefaultThresholds returns the tuned production constants
func DefaultThresholds() Thresholds {
	return Thresholds{
		MatchAcceptance:  0.7,
		LineMatch:        0.8,
		Exact:            0.95,
		Similar:          0.85,
		DuplicateDelta:   5,
		DuplicatePrefix:  50,
		MaxMatches:       20,
		MinSentenceLen:   10,
		MinNormalizedLen: 5,
		PreviewLen:       100,
		NgramSize:        2,
		Weights: Weights{
			Line:     0.40,
			TfIdf:    0.25,
			Jaccard:  0.15,
			Ngram:    0.15,
			Sentence: 0.05,
		},
	}
}

// classify maps a [0,1] similarity to its segment tag
func (t Thresholds) classify(similarity float64) models.MatchType {
	if similarity > t.Exact {
		return models.MatchExact
	} else if similarity > t.Similar {
		return models.MatchSimilar
	}
	return models.MatchParaphrase
}
