// Package openai implements vlm.Client against the OpenAI-compatible
// chat/completions endpoint, sending the page image as a base64 data URL
// alongside the stage prompt.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Complete sends one vision request and returns the raw text of the first
// choice. Structural parsing of that text is the caller's concern.
func (c *Client) Complete(ctx context.Context, imagePath string, prompt string) (string, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("vlm.complete.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"image", filepath.Base(imagePath),
		"prompt_len", len(prompt),
	)

	dataURL, err := readAsDataURL(imagePath)
	if err != nil {
		return "", fmt.Errorf("encode image: %w", err)
	}

	body := map[string]any{
		"model":      c.cfg.Model,
		"max_tokens": c.cfg.MaxTokens,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
					{"type": "text", "text": prompt},
				},
			},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, httpErr := c.post(ctx, endpoint, body)
	if httpErr != nil {
		c.log.Error("vlm.complete.http_error",
			"req_id", rid, "error", httpErr,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", httpErr
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("vlm.complete.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("vlm.complete.no_choices",
			"req_id", rid, "raw", string(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(cc.Choices[0].Message.Content)
	c.log.Info("vlm.complete.ok",
		"req_id", rid,
		"content_len", len(content),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return content, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vlm http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if err := body.Close(); err != nil {
			c.log.Warn("response body close error", "error", err)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vlm status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

func readAsDataURL(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	mt := mime.TypeByExtension("." + ext)
	if mt == "" {
		switch ext {
		case "jpg", "jpeg":
			mt = "image/jpeg"
		default:
			mt = "image/png"
		}
	}
	data := base64.StdEncoding.EncodeToString(b)
	return "data:" + mt + ";base64," + data, nil
}
