// internal/vision/client_test.go
package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"outfit-advisor/internal/common/config"
	cerrors "outfit-advisor/internal/common/errors"
	"outfit-advisor/internal/common/logger"
)

// ==========================
// Test Helpers
// ==========================

func newTestClient(baseURL string) *Client {
	return NewGroq(config.ModelProviderConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "test-model",
		Timeout: 5000,
	}, logger.NewNop())
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

// ==========================
// Success Path
// ==========================

func TestDescribeOutfit_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.Equal(t, defaultMaxTokens, req.MaxTokens)
		assert.Equal(t, defaultTemperature, req.Temperature)

		require.Len(t, req.Messages, 1)
		require.Len(t, req.Messages[0].Content, 2)
		assert.Equal(t, "text", req.Messages[0].Content[0].Type)
		assert.Equal(t, "describe this", req.Messages[0].Content[0].Text)
		assert.Equal(t, "image_url", req.Messages[0].Content[1].Type)
		assert.Equal(t, "data:image/jpeg;base64,Zm9v", req.Messages[0].Content[1].ImageURL.URL)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionResponse("APPROPRIATE: Yes")))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	reply, err := client.DescribeOutfit(context.Background(), "data:image/jpeg;base64,Zm9v", "describe this")

	require.NoError(t, err)
	assert.Equal(t, "APPROPRIATE: Yes", reply)
}

// ==========================
// Failure Modes
// ==========================

func TestDescribeOutfit_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limit exceeded"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.DescribeOutfit(context.Background(), "data:image/jpeg;base64,Zm9v", "p")

	require.Error(t, err)
	assert.True(t, cerrors.IsProviderError(err))
	assert.Contains(t, err.Error(), "PROVIDER_ERROR")
}

func TestDescribeOutfit_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.DescribeOutfit(context.Background(), "data:image/jpeg;base64,Zm9v", "p")

	require.Error(t, err)
	assert.True(t, cerrors.IsProviderError(err))
}

func TestDescribeOutfit_EmptyCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.DescribeOutfit(context.Background(), "data:image/jpeg;base64,Zm9v", "p")

	require.Error(t, err)
	assert.True(t, cerrors.IsProviderError(err))
}

func TestDescribeOutfit_ConnectionRefused(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")
	_, err := client.DescribeOutfit(context.Background(), "data:image/jpeg;base64,Zm9v", "p")

	require.Error(t, err)
	assert.True(t, cerrors.IsProviderError(err))
}

func TestDescribeOutfit_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(server.URL)
	_, err := client.DescribeOutfit(ctx, "data:image/jpeg;base64,Zm9v", "p")

	require.Error(t, err)
	assert.True(t, cerrors.IsProviderError(err))
}

func TestProviderNames(t *testing.T) {
	cfg := config.ModelProviderConfig{Timeout: 1000}
	assert.Equal(t, "groq", NewGroq(cfg, logger.NewNop()).Name())
	assert.Equal(t, "openrouter", NewOpenRouter(cfg, logger.NewNop()).Name())
}
