package openai

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "strings"
    "time"

    "github.com/sashabaranov/go-openai"

    domai "github.com/bryanwahyu/healthinsure-ai/internal/domain/ai"
)

const maxTokens = 2048

// Client talks to any OpenAI-compatible chat completions API, including
// Gemini's OpenAI compatibility endpoint.
type Client struct {
    *openai.Client
    Model string
}

func NewClient(apiKey, model, baseURL string, timeout time.Duration) *Client {
    cfg := openai.DefaultConfig(apiKey)
    if baseURL != "" {
        cfg.BaseURL = strings.TrimRight(baseURL, "/")
    }
    cfg.HTTPClient = &http.Client{Timeout: timeout}
    return &Client{Client: openai.NewClientWithConfig(cfg), Model: model}
}

// Generate sends the prompt as the only user message; no system role, no history.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
    model := c.Model
    if model == "" {
        model = openai.GPT4oMini
    }
    req := openai.ChatCompletionRequest{
        Model: model,
        Messages: []openai.ChatCompletionMessage{
            {Role: openai.ChatMessageRoleUser, Content: prompt},
        },
    }
    // For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
    if strings.HasPrefix(model, "o1") || strings.HasPrefix(model, "o3") || strings.HasPrefix(model, "o4") || strings.HasPrefix(model, "gpt-5") {
        req.MaxCompletionTokens = maxTokens
    } else {
        req.MaxTokens = maxTokens
    }

    resp, err := c.CreateChatCompletion(ctx, req)
    if err != nil {
        return "", mapError(err)
    }
    if len(resp.Choices) == 0 {
        return "", &domai.ProviderError{Message: domai.UnknownErrorMessage}
    }

    return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
    var apiErr *openai.APIError
    if errors.As(err, &apiErr) {
        return providerError(apiErr.HTTPStatusCode, apiErr.Message)
    }
    var reqErr *openai.RequestError
    if errors.As(err, &reqErr) {
        msg := fmt.Sprintf("status error, got status %d", reqErr.HTTPStatusCode)
        if len(reqErr.Body) > 0 {
            msg += ". with response body " + strings.TrimSpace(string(reqErr.Body))
        }
        return providerError(reqErr.HTTPStatusCode, msg)
    }
    return fmt.Errorf("failed to create chat completion: %w", err)
}

func providerError(status int, msg string) *domai.ProviderError {
    pe := &domai.ProviderError{StatusCode: status, Message: msg}
    if status == http.StatusTooManyRequests {
        pe.Err = domai.ErrQuotaExceeded
    }
    return pe
}
