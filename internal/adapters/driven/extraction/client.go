// Package extraction provides the document-understanding service
// adapter and the retry layer that wraps it.
package extraction

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.Extractor = (*Client)(nil)

// Default configuration values.
const (
	DefaultTimeout = 120 * time.Second

	// defaultRequestRate throttles calls to the extraction service.
	defaultRequestRate = 2.0
)

// Config holds configuration for the extraction service client.
type Config struct {
	// APIKey authenticates with the extraction service (required).
	APIKey string

	// BaseURL is the API base URL (required).
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Client calls the remote document-understanding service. It performs
// exactly one attempt per Extract call; retry policy belongs to
// RetryingExtractor.
type Client struct {
	client  *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
}

// extractRequest is the service request format. Exactly one of URL or
// Data is populated.
type extractRequest struct {
	URL         string `json:"url,omitempty"`
	Data        string `json:"data,omitempty"`
	MediaType   string `json:"media_type,omitempty"`
	TableFormat string `json:"table_format"`
}

// extractResponse is the service response format.
type extractResponse struct {
	Pages []struct {
		Index    int    `json:"index"`
		Markdown string `json:"markdown"`
	} `json:"pages"`
	Tables []struct {
		ID      string `json:"id"`
		Content string `json:"content"`
		Format  string `json:"format"`
	} `json:"tables"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient creates an extraction service client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("extraction: API key is required")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("extraction: base URL is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestRate), 1),
	}, nil
}

// Extract runs the remote call once. Failures surface as
// *domain.ExtractionError so callers can classify them.
func (c *Client) Extract(ctx context.Context, input driven.ExtractionInput) (*domain.ExtractionResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := extractRequest{
		URL:         input.URL,
		MediaType:   input.MediaType,
		TableFormat: string(domain.TableFormatMarkdown),
	}
	if len(input.Data) > 0 {
		reqBody.Data = base64.StdEncoding.EncodeToString(input.Data)
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v1/extract",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		// Status-less: connection failures are transient.
		return nil, &domain.ExtractionError{Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ExtractionError{Message: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ExtractionError{
			StatusCode: resp.StatusCode,
			Message:    serviceMessage(body),
		}
	}

	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &domain.ExtractionError{Message: fmt.Sprintf("decode response: %v", err)}
	}
	if parsed.Error != nil {
		return nil, &domain.ExtractionError{Message: parsed.Error.Message}
	}

	result := &domain.ExtractionResult{
		Pages:  make([]domain.ExtractedPage, len(parsed.Pages)),
		Tables: make([]domain.ExtractedTable, len(parsed.Tables)),
	}
	for i, p := range parsed.Pages {
		result.Pages[i] = domain.ExtractedPage{Index: p.Index, Markdown: p.Markdown}
	}
	for i, t := range parsed.Tables {
		result.Tables[i] = domain.ExtractedTable{
			ID:      t.ID,
			Content: t.Content,
			Format:  domain.TableFormat(t.Format),
		}
	}
	return result, nil
}

// serviceMessage pulls a useful message out of an error response body.
func serviceMessage(body []byte) string {
	var parsed extractResponse
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil {
		return parsed.Error.Message
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return string(body)
}
