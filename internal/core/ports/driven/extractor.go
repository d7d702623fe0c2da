package driven

import (
	"context"

	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// ExtractionInput locates a document for the extraction service.
// Exactly one of URL or Data is set.
type ExtractionInput struct {
	// URL is a resolvable document URL.
	URL string

	// Data is an inline payload, sent base64-encoded.
	Data []byte

	// MediaType declares the payload's content type. Required when
	// Data is set.
	MediaType string

	// FileName names the document for diagnostics.
	FileName string
}

// Extractor wraps the remote document-understanding call.
// Implementations return *domain.ExtractionError for service failures
// so callers can classify them as fatal or transient.
type Extractor interface {
	// Extract runs the remote call once and returns normalised
	// page-level markdown plus any tables. Confidence on the result
	// is computed by the caller, not the service.
	Extract(ctx context.Context, input ExtractionInput) (*domain.ExtractionResult, error)
}
