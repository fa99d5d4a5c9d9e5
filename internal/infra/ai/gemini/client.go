package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	domai "github.com/bryanwahyu/healthinsure-ai/internal/domain/ai"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1"
	DefaultModel   = "gemini-1.5-flash"
)

type Part struct {
	Text string `json:"text"`
}

type Content struct {
	Parts []*Part `json:"parts"`
	Role  string  `json:"role,omitempty"`
}

type GenerateRequest struct {
	Contents []*Content `json:"contents"`
}

type Candidate struct {
	Content      *Content `json:"content"`
	FinishReason string   `json:"finishReason,omitempty"`
}

type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type GenerateResponse struct {
	Candidates []*Candidate `json:"candidates"`
	Error      *APIError    `json:"error,omitempty"`
}

// Client calls the generateContent endpoint with a single user turn.
type Client struct {
	APIKey  string
	Model   string
	BaseURL string
	HTTP    *http.Client
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		APIKey:  apiKey,
		Model:   model,
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.BaseURL, c.Model)
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(GenerateRequest{
		Contents: []*Content{{Parts: []*Part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("x-goog-api-key", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("read gemini response: %w", err)
	}

	var parsed GenerateResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		pe := &domai.ProviderError{
			StatusCode: res.StatusCode,
			Message:    fmt.Sprintf("status error, got status %d. with response body %s", res.StatusCode, strings.TrimSpace(string(body))),
		}
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			pe.Message = parsed.Error.Message
		}
		if res.StatusCode == http.StatusTooManyRequests {
			pe.Err = domai.ErrQuotaExceeded
		}
		return "", pe
	}

	if decodeErr != nil {
		return "", fmt.Errorf("decode gemini response: %w", decodeErr)
	}
	if parsed.Error != nil {
		return "", &domai.ProviderError{StatusCode: parsed.Error.Code, Message: parsed.Error.Message}
	}
	if len(parsed.Candidates) == 0 || parsed.Candidates[0].Content == nil || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &domai.ProviderError{StatusCode: res.StatusCode, Message: domai.UnknownErrorMessage}
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
