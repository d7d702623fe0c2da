package extraction

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arushs/Formly-sub001/internal/core/domain"
	"github.com/arushs/Formly-sub001/internal/core/ports/driven"
)

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "http://localhost"})
	assert.Error(t, err, "missing API key")

	_, err = NewClient(Config{APIKey: "key"})
	assert.Error(t, err, "missing base URL")

	client, err := NewClient(Config{APIKey: "key", BaseURL: "http://localhost"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClientExtract_Success(t *testing.T) {
	var captured extractRequest
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/extract", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"pages": []map[string]any{
				{"index": 0, "markdown": "Form W-2"},
				{"index": 1, "markdown": "Copy B"},
			},
			"tables": []map[string]any{
				{"id": "t1", "content": "| box | amount |", "format": "markdown"},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	result, err := client.Extract(context.Background(), driven.ExtractionInput{
		Data:      []byte("pdf bytes"),
		MediaType: "application/pdf",
		FileName:  "w2.pdf",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer secret", authHeader)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("pdf bytes")), captured.Data)
	assert.Equal(t, "application/pdf", captured.MediaType)
	assert.Equal(t, string(domain.TableFormatMarkdown), captured.TableFormat)

	require.Len(t, result.Pages, 2)
	assert.Equal(t, "Form W-2", result.Pages[0].Markdown)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, domain.TableFormatMarkdown, result.Tables[0].Format)
	assert.Zero(t, result.Confidence, "the client never scores confidence")
}

func TestClientExtract_URLInput(t *testing.T) {
	var captured extractRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"pages": []map[string]any{}})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), driven.ExtractionInput{
		URL: "https://example.com/w2.pdf",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/w2.pdf", captured.URL)
	assert.Empty(t, captured.Data)
}

func TestClientExtract_ServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "corrupt document"},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), driven.ExtractionInput{
		Data:      []byte("x"),
		MediaType: "application/pdf",
	})
	require.Error(t, err)

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, http.StatusUnprocessableEntity, extractionErr.StatusCode)
	assert.Equal(t, "corrupt document", extractionErr.Message)
	assert.True(t, extractionErr.Fatal())
}

func TestClientExtract_EmbeddedError(t *testing.T) {
	// A 200 response can still carry a service-level error.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "password protected"},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), driven.ExtractionInput{
		Data:      []byte("x"),
		MediaType: "application/pdf",
	})
	require.Error(t, err)

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Zero(t, extractionErr.StatusCode)
	assert.False(t, extractionErr.Fatal(), "status-less errors stay retryable")
}

func TestClientExtract_ConnectionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close() // refuse connections

	client, err := NewClient(Config{APIKey: "secret", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Extract(context.Background(), driven.ExtractionInput{
		Data:      []byte("x"),
		MediaType: "application/pdf",
	})
	require.Error(t, err)

	var extractionErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Zero(t, extractionErr.StatusCode)
}
