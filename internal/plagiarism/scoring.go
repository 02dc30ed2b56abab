package plagiarism

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/RishiKendai/aegis-text/internal/models"
)

const (
	maxConfidence = 95.0
	minConfidence = 20.0
)

// PairID derives the result identifier of a document pair
func PairID(a, b *models.Document) string {
	return a.ID + "-" + b.ID
}

// ComparePair scores one document pair
func ComparePair(a, b *models.Document, th Thresholds) models.ComparisonResult {
	result := models.ComparisonResult{
		ID:           PairID(a, b),
		File1:        a,
		File2:        b,
		Matches:      []models.MatchSegment{},
		AnalysisType: models.AnalysisTypeText,
	}

	contentA := strings.TrimSpace(a.Content)
	contentB := strings.TrimSpace(b.Content)
	if contentA == contentB {
		lastLine := max(0, len(SplitLines(contentA))-1)
		result.Similarity = 100.0
		result.Confidence = maxConfidence
		result.Matches = []models.MatchSegment{{
			File1Range: [2]int{0, lastLine},
			File2Range: [2]int{0, lastLine},
			Content:    preview(contentA, th.PreviewLen),
			Similarity: 100,
			Type:       models.MatchExact,
		}}
		return result
	}

	textA := Preprocess(a.Content)
	textB := Preprocess(b.Content)
	lenA := utf8.RuneCountInString(textA)
	lenB := utf8.RuneCountInString(textB)
	if lenA < th.MinNormalizedLen || lenB < th.MinNormalizedLen {
		result.Similarity = 0.0
		result.Confidence = minConfidence
		return result
	}

	combined := ComputeScores(a.Content, b.Content, textA, textB, th).Combine(th.Weights)
	result.Matches = FindMatches(a.Content, b.Content, th)
	result.Similarity = math.Round(combined*10000) / 100
	result.Confidence = round2(Confidence(combined, result.Matches, lenA, lenB))

	return result
}

// Confidence estimates how trustworthy a similarity score is, as a percentage in [20, 95].
// similarity is the combined [0,1] score, lenA/lenB the normalized text lengths.
func Confidence(similarity float64, matches []models.MatchSegment, lenA, lenB int) float64 {
	matchFactor := math.Min(float64(len(matches))/8, 1) * 0.15

	lengthFactor := 0.0
	if longest := max(lenA, lenB); longest > 0 {
		lengthFactor = float64(min(lenA, lenB)) / float64(longest) * 0.1
	}

	qualityFactor := 0.0
	if len(matches) > 0 {
		sum := 0.0
		for _, match := range matches {
			sum += match.Similarity
		}
		qualityFactor = sum / float64(len(matches)) / 100 * 0.1
	}

	confidence := (similarity + matchFactor + lengthFactor + qualityFactor) * 100
	return clamp(confidence, minConfidence, maxConfidence)
}

// GetRiskLevel returns the risk band of a similarity percentage
func GetRiskLevel(similarity float64) string {
	if similarity < 30 {
		return "clean"
	} else if similarity < 60 {
		return "suspicious"
	} else if similarity < 85 {
		return "highly suspicious"
	}
	return "near copy"
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
