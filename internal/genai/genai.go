// Package genai is a minimal client for the text-generation service used by
// the extraction pipeline. It speaks the messages wire format and reads the
// model configuration from a TTL-cached remote source so model swaps don't
// require a redeploy.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	apiVersion     = "2023-06-01"
	defaultBaseURL = "https://api.anthropic.com"
	defaultTimeout = 90 * time.Second
)

// Profile selects token and temperature settings for a request.
type Profile string

const (
	// ProfileStandard is for structured extraction over full page text.
	ProfileStandard Profile = "standard"
	// ProfileLightweight is for short classification-style calls.
	ProfileLightweight Profile = "lightweight"
)

// Request is one completion call.
type Request struct {
	Profile Profile
	System  string
	Prompt  string
}

// Client calls the generation service.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
	Config  *ConfigCache
}

// NewClient returns a Client with the default endpoint and timeout. cfg may
// not be nil; use NewConfigCache(nil) for hardcoded defaults.
func NewClient(apiKey string, cfg *ConfigCache) *Client {
	return &Client{
		BaseURL: defaultBaseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: defaultTimeout},
		Config:  cfg,
	}
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiRequest struct {
	Model       string       `json:"model"`
	MaxTokens   int          `json:"max_tokens"`
	Temperature float64      `json:"temperature"`
	System      string       `json:"system,omitempty"`
	Messages    []apiMessage `json:"messages"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one request and returns the text of the first content
// block.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	if c.APIKey == "" {
		return "", fmt.Errorf("genai: missing API key")
	}

	cfg := c.Config.Get(ctx)

	body := apiRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		System:      req.System,
		Messages:    []apiMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.Profile == ProfileLightweight {
		body.Model = cfg.LightweightModel
		body.MaxTokens = cfg.LightweightMaxTokens
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/messages", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.HTTP.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("calling generation service: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decoding response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("generation service: %s (%s)", parsed.Error.Message, parsed.Error.Type)
		}
		return "", fmt.Errorf("generation service: status %d", resp.StatusCode)
	}
	if len(parsed.Content) == 0 {
		return "", fmt.Errorf("generation service: empty content")
	}
	return parsed.Content[0].Text, nil
}
