package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ide-mentor/mentor-api/internal/config"
)

// Fixed sampling temperature for tutoring answers.
const temperature = 0.2

// Ensure OpenRouterClient implements Completer interface.
var _ Completer = (*OpenRouterClient)(nil)

// OpenRouterClient talks to an OpenAI-compatible chat-completions endpoint.
type OpenRouterClient struct {
	client *http.Client
	cfg    *config.OpenRouterConfig
}

func NewOpenRouterClient(cfg *config.OpenRouterConfig) *OpenRouterClient {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.Logger = nil
	rc.HTTPClient.Timeout = cfg.Timeout

	return &OpenRouterClient{
		client: rc.StandardClient(),
		cfg:    cfg,
	}
}

type chatMessage struct {
	Role string `json:"role"`
	// Either a plain string or a []contentPart for multimodal messages.
	Content any `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (o *OpenRouterClient) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
) (string, error) {
	ctx, span := tracer.Start(ctx, "OpenRouterClient.Complete", trace.WithAttributes(
		attribute.String("model", o.cfg.Model),
	))
	defer span.End()

	out, err := o.do(ctx, o.cfg.Model, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "completion failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "completed")
	return out, nil
}

func (o *OpenRouterClient) CompleteWithImages(
	ctx context.Context,
	systemPrompt, userText string,
	images []Image,
) (string, error) {
	ctx, span := tracer.Start(ctx, "OpenRouterClient.CompleteWithImages", trace.WithAttributes(
		attribute.String("model", o.cfg.MultimodalModel),
		attribute.Int("images", len(images)),
	))
	defer span.End()

	parts := make([]contentPart, 0, len(images)+1)
	parts = append(parts, contentPart{Type: "text", Text: userText})
	for _, img := range images {
		parts = append(parts, contentPart{
			Type: "image_url",
			ImageURL: &imageURL{
				URL: fmt.Sprintf("data:image/%s;base64,%s", img.Extension, img.Content),
			},
		})
	}

	// Attribution headers used by the remote service for rankings; no
	// functional effect on the completion.
	headers := map[string]string{
		"HTTP-Referer": o.cfg.Referer,
		"X-Title":      o.cfg.Title,
	}

	out, err := o.do(ctx, o.cfg.MultimodalModel, []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: parts},
	}, headers)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "multimodal completion failed")
		return "", err
	}

	span.SetStatus(codes.Ok, "completed")
	return out, nil
}

func (o *OpenRouterClient) do(
	ctx context.Context,
	model string,
	messages []chatMessage,
	extraHeaders map[string]string,
) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		o.cfg.BaseURL+"/chat/completions",
		bytes.NewReader(body),
	)
	if err != nil {
		return "", fmt.Errorf("failed to construct completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+o.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf(
			"completion endpoint returned status %d: %s",
			resp.StatusCode,
			respBody,
		)
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("completion endpoint returned error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion endpoint returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
