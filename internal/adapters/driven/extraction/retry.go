package extraction

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
	"github.com/arushs/Formly-sub001/internal/logger"
)

// Retry policy defaults.
const (
	DefaultMaxAttempts  = 3
	DefaultInitialDelay = 1000 * time.Millisecond
	DefaultMaxDelay     = 10000 * time.Millisecond

	// maxJitter is the upper bound of random jitter added to each wait.
	maxJitter = 500 * time.Millisecond
)

// Media types the extraction service accepts.
var supportedMediaTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/tiff":      true,
	"image/webp":      true,
	"text/plain":      true,
	"text/csv":        true,
}

// RetryConfig tunes the backoff behaviour.
type RetryConfig struct {
	// MaxAttempts is the total attempt count, including the first.
	MaxAttempts int

	// InitialDelay is the wait before the second attempt.
	InitialDelay time.Duration

	// MaxDelay caps the exponential growth.
	MaxDelay time.Duration
}

// DefaultRetryConfig returns the standard policy: three attempts,
// one second initial delay, doubling to a ten second ceiling.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  DefaultMaxAttempts,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
	}
}

// FallbackFunc substitutes a degraded result when extraction has
// exhausted its attempts. Returning nil declines the substitution.
type FallbackFunc func(input driven.ExtractionInput) *domain.ExtractionResult

// Ensure RetryingExtractor implements the interface.
var _ driven.Extractor = (*RetryingExtractor)(nil)

// RetryingExtractor wraps an Extractor with exponential backoff.
//
// Errors carrying an HTTP-like status below 500 and not equal to 429
// are fatal and never retried. Everything else (5xx, 429, status-less)
// is retried until attempts are exhausted, after which the last error
// surfaces. An unsupported media type fails pre-flight with zero
// attempts.
type RetryingExtractor struct {
	inner    driven.Extractor
	cfg      RetryConfig
	fallback FallbackFunc
}

// Option configures a RetryingExtractor.
type Option func(*RetryingExtractor)

// WithPlainTextFallback opts into substituting a plain-text result
// (single page, zero tables, confidence undefined) when extraction
// ultimately fails, keeping the pipeline moving with degraded data.
func WithPlainTextFallback() Option {
	return func(r *RetryingExtractor) {
		r.fallback = plainTextFallback
	}
}

// WithFallback installs a caller-supplied fallback.
func WithFallback(f FallbackFunc) Option {
	return func(r *RetryingExtractor) {
		r.fallback = f
	}
}

// NewRetryingExtractor wraps inner with the given retry policy.
func NewRetryingExtractor(inner driven.Extractor, cfg RetryConfig, opts ...Option) *RetryingExtractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultInitialDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = DefaultMaxDelay
	}
	r := &RetryingExtractor{inner: inner, cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Extract runs the wrapped call under the retry policy. Successful
// results get their confidence scored before returning.
func (r *RetryingExtractor) Extract(ctx context.Context, input driven.ExtractionInput) (*domain.ExtractionResult, error) {
	if input.URL == "" && !supportedMediaTypes[normalizeMediaType(input.MediaType)] {
		// Pre-flight: never attempted, never retried.
		return nil, fmt.Errorf("media type %q for %s: %w", input.MediaType, input.FileName, domain.ErrUnsupportedType)
	}

	var lastErr error
	delay := r.cfg.InitialDelay

	for attempt := 1; attempt <= r.cfg.MaxAttempts; attempt++ {
		result, err := r.inner.Extract(ctx, input)
		if err == nil {
			result.Confidence = domain.ScoreConfidence(result)
			return result, nil
		}
		lastErr = err

		if domain.IsFatalExtractionError(err) {
			return nil, err
		}
		if attempt == r.cfg.MaxAttempts {
			break
		}

		wait := delay + time.Duration(rand.Int63n(int64(maxJitter)))
		logger.Debug("extraction attempt %d/%d for %s failed (%v), retrying in %s",
			attempt, r.cfg.MaxAttempts, input.FileName, err, wait)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}

		delay *= 2
		if delay > r.cfg.MaxDelay {
			delay = r.cfg.MaxDelay
		}
	}

	if r.fallback != nil {
		if result := r.fallback(input); result != nil {
			logger.Warn("extraction exhausted for %s, substituting plain-text fallback", input.FileName)
			return result, nil
		}
	}
	return nil, lastErr
}

// plainTextFallback produces a degraded single-page result from inline
// text payloads. Binary payloads decline the substitution.
func plainTextFallback(input driven.ExtractionInput) *domain.ExtractionResult {
	if len(input.Data) == 0 || !strings.HasPrefix(normalizeMediaType(input.MediaType), "text/") {
		return nil
	}
	return &domain.ExtractionResult{
		Pages: []domain.ExtractedPage{{Index: 0, Markdown: string(input.Data)}},
	}
}

func normalizeMediaType(mediaType string) string {
	if i := strings.Index(mediaType, ";"); i >= 0 {
		mediaType = mediaType[:i]
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}
