package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFakeImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.png")
	require.NoError(t, os.WriteFile(path, []byte("not-really-png"), 0o644))
	return path
}

func TestCompleteSendsImageAndPrompt(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "  [[0, 1]]  "}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "gpt-4o"}, nil)
	out, err := c.Complete(context.Background(), writeFakeImage(t), "group these")
	require.NoError(t, err)
	assert.Equal(t, "[[0, 1]]", out, "content is trimmed")

	assert.Equal(t, "gpt-4o", captured["model"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)

	imagePart := content[0].(map[string]any)
	assert.Equal(t, "image_url", imagePart["type"])
	url := imagePart["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"))

	textPart := content[1].(map[string]any)
	assert.Equal(t, "group these", textPart["text"])
}

func TestCompleteStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), writeFakeImage(t), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	c := NewClient(Config{APIKey: "k", BaseURL: srv.URL}, nil)
	_, err := c.Complete(context.Background(), writeFakeImage(t), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestCompleteMissingImage(t *testing.T) {
	c := NewClient(Config{APIKey: "k", BaseURL: "http://localhost:1"}, nil)
	_, err := c.Complete(context.Background(), "/nonexistent/page.png", "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode image")
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"}, nil)
	assert.Equal(t, "https://api.openai.com/v1", c.cfg.BaseURL)
	assert.Equal(t, "gpt-4o", c.cfg.Model)
	assert.Equal(t, 4096, c.cfg.MaxTokens)
	assert.NotNil(t, c.httpClient)
}
