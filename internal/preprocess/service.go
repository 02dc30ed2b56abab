package preprocess

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/go-playground/validator/v10"
)

var (
	ErrTooFewDocuments  = errors.New("at least 2 documents are required")
	ErrTooManyDocuments = errors.New("too many documents")
	ErrDocumentTooLarge = errors.New("document too large")
	ErrDuplicateID      = errors.New("duplicate document id")
	ErrInvalidEncoding  = errors.New("document content is not valid UTF-8")
)

// ValidationError carries per-field messages from struct validation
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return "invalid request: " + strings.Join(parts, ", ")
}

// Service turns submitted payloads into immutable Documents
type Service struct {
	validate         *validator.Validate
	maxDocuments     int
	maxDocumentBytes int
}

func NewService(maxDocuments, maxDocumentBytes int) *Service {
	return &Service{
		validate:         validator.New(),
		maxDocuments:     maxDocuments,
		maxDocumentBytes: maxDocumentBytes,
	}
}

// BuildDocuments validates a request and materializes its documents in input order
func (s *Service) BuildDocuments(req *models.AnalysisRequest) ([]models.Document, error) {
	if len(req.Documents) < 2 {
		return nil, ErrTooFewDocuments
	}
	if s.maxDocuments > 0 && len(req.Documents) > s.maxDocuments {
		return nil, fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyDocuments, len(req.Documents), s.maxDocuments)
	}

	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, e := range verrs {
				fields[e.Namespace()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
			}
			return nil, &ValidationError{Fields: fields}
		}
		return nil, fmt.Errorf("failed to validate request: %w", err)
	}

	seen := make(map[string]bool, len(req.Documents))
	documents := make([]models.Document, 0, len(req.Documents))
	for _, submitted := range req.Documents {
		if seen[submitted.ID] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateID, submitted.ID)
		}
		seen[submitted.ID] = true

		if s.maxDocumentBytes > 0 && len(submitted.Content) > s.maxDocumentBytes {
			return nil, fmt.Errorf("%w: %s is %d bytes, limit is %d", ErrDocumentTooLarge, submitted.ID, len(submitted.Content), s.maxDocumentBytes)
		}
		if !utf8.ValidString(submitted.Content) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidEncoding, submitted.ID)
		}

		documents = append(documents, NewDocument(submitted.ID, submitted.Name, submitted.Content))
	}

	return documents, nil
}

// NewDocument builds a Document, defaulting the display name to the id
func NewDocument(id, name, content string) models.Document {
	if name == "" {
		name = id
	}
	return models.Document{
		ID:      id,
		Name:    name,
		Content: content,
		Length:  utf8.RuneCountInString(content),
	}
}
