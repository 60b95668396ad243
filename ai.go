package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tidwall/gjson"
)

const aiMaxTokens = 128

// AIClient proxies a prompt to an external text-generation endpoint. This is
// pass-through glue: no validation, no retries, the caller gets whatever text
// the upstream produced.
type AIClient struct {
	url    string
	token  string
	client *http.Client
}

func NewAIClient(url string, token string) *AIClient {
	return &AIClient{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *AIClient) Configured() bool {
	return c != nil && c.url != "" && c.token != ""
}

func (c *AIClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(map[string]any{
		"prompt":     prompt,
		"max_tokens": aiMaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call ai upstream: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read ai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("ai upstream returned %d", resp.StatusCode)
	}

	// Response shape varies by backend; probe the known locations in order
	// and fall back to the raw body.
	for _, path := range []string{"result", "response", "choices.0.text", "result.response"} {
		if v := gjson.GetBytes(raw, path); v.Type == gjson.String {
			return v.String(), nil
		}
	}
	return string(raw), nil
}
