package models

import (
	"time"
)

type Step string

const (
	StepIdle      Step = "idle"
	StepInitiated Step = "initiated"
	StepStarted   Step = "started"
	StepAnalyzing Step = "analyzing"
	StepCompleted Step = "completed"
	StepFailed    Step = "failed"
)

type MatchType string

const (
	MatchExact      MatchType = "exact"
	MatchSimilar    MatchType = "similar"
	MatchParaphrase MatchType = "paraphrase"
)

const AnalysisTypeText = "text"

// Document is an uploaded text, immutable once built by the intake layer
type Document struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Content string `json:"content"`
	Length  int    `json:"size"`
}

// MatchSegment is one piece of evidence for an overlap between two documents.
// Ranges are 0-based inclusive line or sentence indices.
type MatchSegment struct {
	File1Range [2]int    `json:"file1Range"`
	File2Range [2]int    `json:"file2Range"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"` // 0..100
	Type       MatchType `json:"type"`
}

// ComparisonResult is the outcome of scoring one document pair
type ComparisonResult struct {
	ID           string         `json:"id"`
	File1        *Document      `json:"file1"`
	File2        *Document      `json:"file2"`
	Similarity   float64        `json:"similarity"` // percentage, 2 decimals
	Matches      []MatchSegment `json:"matches"`
	AnalysisType string         `json:"analysisType"`
	Confidence   float64        `json:"confidence"` // percentage in [20, 95]
}

// ResultSummary is the per-pair line of an exported report
type ResultSummary struct {
	ID           string  `bson:"id" json:"id"`
	File1        string  `bson:"file1" json:"file1"`
	File2        string  `bson:"file2" json:"file2"`
	Similarity   float64 `bson:"similarity" json:"similarity"`
	Confidence   float64 `bson:"confidence" json:"confidence"`
	MatchCount   int     `bson:"matchCount" json:"matchCount"`
	AnalysisType string  `bson:"analysisType" json:"analysisType"`
	Risk         string  `bson:"risk" json:"risk"` // clean, suspicious, highly suspicious, near copy
}

// Report is the exportable summary of an analysis run. It never carries document content.
type Report struct {
	AnalysisID       string          `bson:"analysisId" json:"analysisId,omitempty"`
	Timestamp        time.Time       `bson:"timestamp" json:"timestamp"`
	TotalComparisons int             `bson:"totalComparisons" json:"totalComparisons"`
	FlaggedPairs     int             `bson:"flaggedPairs" json:"flaggedPairs"`
	MaxSimilarity    float64         `bson:"maxSimilarity" json:"maxSimilarity"`
	Results          []ResultSummary `bson:"results" json:"results"`
	Status           string          `bson:"status" json:"status"` // completed, failed
	Error            string          `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt        time.Time       `bson:"createdAt" json:"createdAt"`
}

// AnalyzeResponse is returned by the synchronous analyze endpoint
type AnalyzeResponse struct {
	Results []ComparisonResult `json:"results"`
	Report  *Report            `json:"report"`
}

// AnalysisAccepted is returned when an analysis is queued
type AnalysisAccepted struct {
	Step       Step   `json:"step"`
	AnalysisID string `json:"analysisId"`
}

// CompareResponse reports the string-pair comparator blends
type CompareResponse struct {
	MatchSimilarity float64 `json:"matchSimilarity"`
	LineSimilarity  float64 `json:"lineSimilarity"`
	Levenshtein     int     `json:"levenshtein"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}
