package graph

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/arushs/Formly-sub001/internal/connectors/ratelimit"
	"github.com/arushs/Formly-sub001/internal/core/domain"
)

// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
const DefaultBaseURL = "https://graph.microsoft.com/v1.0"

// client is a thin JSON client over the Graph REST API. The official
// Graph SDK pulls in a very large dependency tree for the handful of
// drive calls needed here, so the calls are made directly.
type client struct {
	httpClient *http.Client
	tokens     oauth2.TokenSource
	limiter    *ratelimit.RateLimiter
	baseURL    string
}

func newClient(ts oauth2.TokenSource) *client {
	return &client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		tokens:     ts,
		limiter:    ratelimit.NewRateLimiter("graph"),
		baseURL:    DefaultBaseURL,
	}
}

// driveItem is the subset of the Graph driveItem resource we read.
type driveItem struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Size    int64  `json:"size"`
	File    *struct {
		MimeType string `json:"mimeType"`
	} `json:"file"`
	Folder  *struct{} `json:"folder"`
	Deleted *struct {
		State string `json:"state"`
	} `json:"deleted"`
	ParentReference *struct {
		ID      string `json:"id"`
		DriveID string `json:"driveId"`
	} `json:"parentReference"`
}

// itemPage is one page of a children or delta listing.
type itemPage struct {
	Value     []driveItem `json:"value"`
	NextLink  string      `json:"@odata.nextLink"`
	DeltaLink string      `json:"@odata.deltaLink"`
}

// getJSON performs an authenticated GET and decodes the response into
// out. url may be absolute (odata next/delta links) or a path under
// the base URL.
func (c *client) getJSON(ctx context.Context, url string, out any) error {
	resp, err := c.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("graph decode response: %w", err)
	}
	return nil
}

// get performs an authenticated GET and returns the raw response.
// Non-2xx statuses are converted to errors; the caller owns the body
// on success.
func (c *client) get(ctx context.Context, url string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if !strings.HasPrefix(url, "http") {
		url = c.baseURL + url
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("graph create request: %w", err)
	}

	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("graph token: %w", err)
	}
	token.SetAuthHeader(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
		c.limiter.RecordRateLimitError(retryAfter)
		resp.Body.Close()
		return nil, fmt.Errorf("%w: graph", domain.ErrRateLimited)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &apiError{Status: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

// apiError is a non-2xx Graph response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("graph: status %d: %s", e.Status, e.Body)
}

// isGone reports whether err is a 410 response, which the delta API
// returns when a delta link has expired.
func isGone(err error) bool {
	apiErr, ok := err.(*apiError) //nolint:errorlint // constructed locally
	return ok && apiErr.Status == http.StatusGone
}

// encodeShareURL encodes a sharing URL for the Graph shares API:
// "u!" + unpadded base64url of the URL.
func encodeShareURL(raw string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(raw))
	encoded = strings.TrimRight(encoded, "=")
	encoded = strings.ReplaceAll(encoded, "/", "_")
	encoded = strings.ReplaceAll(encoded, "+", "-")
	return "u!" + encoded
}
