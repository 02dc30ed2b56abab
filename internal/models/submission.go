package models

// SubmittedDocument is a document as it arrives from the intake layer
type SubmittedDocument struct {
	ID      string `json:"id" validate:"required,max=256"`
	Name    string `json:"name" validate:"max=512"`
	Content string `json:"content"`
}

// AnalysisRequest is the body of analyze requests and of queued stream messages
type AnalysisRequest struct {
	AnalysisID string              `json:"analysisId,omitempty"`
	Documents  []SubmittedDocument `json:"documents" validate:"required,min=2,dive"`
}

// CompareRequest is the body of the string-pair comparator endpoint
type CompareRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}
