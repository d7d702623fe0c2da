package domain

import (
	"errors"
	"fmt"
)

// TableFormat declares how an extracted table is encoded.
type TableFormat string

const (
	TableFormatMarkdown TableFormat = "markdown"
	TableFormatHTML     TableFormat = "html"
)

// ExtractedTable is one table found during extraction.
type ExtractedTable struct {
	// ID identifies the table within the document.
	ID string

	// Content is the table body in the declared format.
	Content string

	// Format declares the encoding of Content.
	Format TableFormat
}

// ExtractedPage is one page of normalised markdown.
type ExtractedPage struct {
	// Index is the zero-based page number.
	Index int

	// Markdown is the normalised page content.
	Markdown string
}

// ExtractionResult is the output of the document-understanding service,
// plus a locally computed confidence score.
type ExtractionResult struct {
	// Pages is the page-indexed markdown content.
	Pages []ExtractedPage

	// Tables are the extracted tables, possibly empty.
	Tables []ExtractedTable

	// Confidence is the heuristic confidence in [0,1]. It is computed
	// locally, never returned by the remote call. Zero when a
	// plain-text fallback produced the result.
	Confidence float64
}

// TotalChars returns the extracted character count across all pages.
func (r *ExtractionResult) TotalChars() int {
	total := 0
	for _, p := range r.Pages {
		total += len(p.Markdown)
	}
	return total
}

// ScoreConfidence computes the heuristic confidence for a result:
// more than 100 characters with at least one table scores 0.95, more
// than 100 characters alone 0.85, anything less 0.60.
func ScoreConfidence(r *ExtractionResult) float64 {
	substantial := r.TotalChars() > 100
	switch {
	case substantial && len(r.Tables) > 0:
		return 0.95
	case substantial:
		return 0.85
	default:
		return 0.60
	}
}

// ExtractionError is a remote extraction failure carrying an HTTP-like
// status code. A zero StatusCode means the failure never reached the
// service (connection error, timeout).
type ExtractionError struct {
	StatusCode int
	Message    string
}

// Error implements the error interface.
func (e *ExtractionError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("extraction failed: %s", e.Message)
	}
	return fmt.Sprintf("extraction failed (status %d): %s", e.StatusCode, e.Message)
}

// Fatal reports whether the error should never be retried: a status
// below 500 other than 429. Status-less errors are transient.
func (e *ExtractionError) Fatal() bool {
	return e.StatusCode > 0 && e.StatusCode < 500 && e.StatusCode != 429
}

// IsFatalExtractionError reports whether err is a non-retryable
// extraction failure.
func IsFatalExtractionError(err error) bool {
	var ee *ExtractionError
	if errors.As(err, &ee) {
		return ee.Fatal()
	}
	return false
}
