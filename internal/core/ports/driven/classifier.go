package driven

import (
	"context"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// Classification is the outcome of classifying one extracted document.
type Classification struct {
	// Type is the detected document type.
	Type domain.DocumentType

	// TaxYear is the detected tax year, if any.
	TaxYear *int

	// Issues are encoded issue strings found during classification,
	// in "[SEVERITY:type:expected:detected] text" form.
	Issues []string
}

// Classifier maps extracted content to a document type.
// The classification model and its prompts are opaque externals.
type Classifier interface {
	Classify(ctx context.Context, fileName string, result *domain.ExtractionResult) (*Classification, error)
}
