package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// newTestClient creates an sdkClient pointing at a local test server.
func newTestClient(t *testing.T, baseURL string) *sdkClient {
	t.Helper()
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  "test-key",
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	require.NoError(t, err)
	return &sdkClient{client: client}
}

func generateContentJSON(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{
				"content": map[string]any{
					"role":  "model",
					"parts": []map[string]any{{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{
			"promptTokenCount":     20,
			"candidatesTokenCount": 6,
		},
	}
}

func TestSDKClient_GenerateContent(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateContentJSON("Hello from test")) //nolint:errcheck
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	resp, err := client.GenerateContent(context.Background(), GenerateRequest{
		Model:  "gemini-2.5-pro",
		Prompt: "Summarize this.",
	})
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "Hello from test", resp.Text)
	assert.Equal(t, int64(20), resp.Usage.InputTokens)
	assert.Equal(t, int64(6), resp.Usage.OutputTokens)
	assert.Contains(t, gotPath, "gemini-2.5-pro")
}

func TestSDKClient_GenerateContent_DefaultsModel(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateContentJSON("ok")) //nolint:errcheck
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	_, err := client.GenerateContent(context.Background(), GenerateRequest{Prompt: "hi"})
	require.NoError(t, err)
	assert.Contains(t, gotPath, DefaultModel)
}

func TestSDKClient_GenerateContent_EmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
			"candidates": []map[string]any{
				{
					"content":      map[string]any{"role": "model", "parts": []any{}},
					"finishReason": "SAFETY",
				},
			},
		})
	}))
	defer ts.Close()

	client := newTestClient(t, ts.URL)
	_, err := client.GenerateContent(context.Background(), GenerateRequest{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
