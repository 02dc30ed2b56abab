package report

import (
	"time"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/RishiKendai/aegis-text/internal/plagiarism"
)

// FlagThreshold is the similarity percentage from which a pair counts as flagged
const FlagThreshold = 70.0

// Build summarizes a result set for export. It reads scores as computed and never rescores.
func Build(results []models.ComparisonResult, now time.Time) *models.Report {
	rep := &models.Report{
		Timestamp:        now.UTC(),
		TotalComparisons: len(results),
		Results:          make([]models.ResultSummary, 0, len(results)),
		Status:           "completed",
	}

	for _, result := range results {
		summary := models.ResultSummary{
			ID:           result.ID,
			Similarity:   result.Similarity,
			Confidence:   result.Confidence,
			MatchCount:   len(result.Matches),
			AnalysisType: result.AnalysisType,
			Risk:         plagiarism.GetRiskLevel(result.Similarity),
		}
		if result.File1 != nil {
			summary.File1 = result.File1.Name
		}
		if result.File2 != nil {
			summary.File2 = result.File2.Name
		}

		if result.Similarity >= FlagThreshold {
			rep.FlaggedPairs++
		}
		rep.MaxSimilarity = max(rep.MaxSimilarity, result.Similarity)
		rep.Results = append(rep.Results, summary)
	}

	return rep
}

// Failed builds the report stored when an analysis could not complete
func Failed(analysisID string, err error, now time.Time) *models.Report {
	return &models.Report{
		AnalysisID: analysisID,
		Timestamp:  now.UTC(),
		Results:    []models.ResultSummary{},
		Status:     "failed",
		Error:      err.Error(),
	}
}
