package gateway_test

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ide-mentor/mentor-api/internal/config"
	"github.com/ide-mentor/mentor-api/internal/gateway"
)

func newTestConfig(baseURL string) *config.OpenRouterConfig {
	return &config.OpenRouterConfig{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		Model:           "some/model",
		MultimodalModel: "some/multimodal-model",
		Referer:         "https://example.com/mentor",
		Title:           "Mentor-Test",
		Timeout:         5 * time.Second,
		MaxRetries:      0,
	}
}

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func TestComplete(t *testing.T) {
	ctx := t.Context()

	t.Run("ReturnsAnswer", func(t *testing.T) {
		var captured capturedRequest
		var authHeader string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, http.MethodPost, r.Method)
			authHeader = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"use a hash map"}}]}`))
		}))
		defer srv.Close()

		client := gateway.NewOpenRouterClient(newTestConfig(srv.URL))
		out, err := client.Complete(ctx, "you are a tutor", "how do I solve two-sum?")
		require.NoError(t, err, "failed to complete")

		assert.Equal(t, "use a hash map", out)
		assert.Equal(t, "Bearer test-key", authHeader)
		assert.Equal(t, "some/model", captured.Model)
		assert.InDelta(t, 0.2, captured.Temperature, 1e-9)
		require.Len(t, captured.Messages, 2)
		assert.Equal(t, "system", captured.Messages[0].Role)
		assert.Equal(t, "user", captured.Messages[1].Role)
		assert.JSONEq(t, `"how do I solve two-sum?"`, string(captured.Messages[1].Content))
	})

	t.Run("ServerError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := gateway.NewOpenRouterClient(newTestConfig(srv.URL))
		_, err := client.Complete(ctx, "sys", "user")

		require.Error(t, err, "expected completion failure")
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("ErrorEnvelope", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"error":{"message":"rate limited"}}`))
		}))
		defer srv.Close()

		client := gateway.NewOpenRouterClient(newTestConfig(srv.URL))
		_, err := client.Complete(ctx, "sys", "user")

		require.Error(t, err, "expected completion failure")
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("NoChoices", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"choices":[]}`))
		}))
		defer srv.Close()

		client := gateway.NewOpenRouterClient(newTestConfig(srv.URL))
		_, err := client.Complete(ctx, "sys", "user")

		require.Error(t, err, "expected completion failure")
		assert.Contains(t, err.Error(), "no choices")
	})
}

func TestCompleteWithImages(t *testing.T) {
	ctx := t.Context()

	t.Run("SendsDataURIsAndAttribution", func(t *testing.T) {
		var captured capturedRequest
		var referer, title string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			referer = r.Header.Get("HTTP-Referer")
			title = r.Header.Get("X-Title")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"see the diagram"}}]}`))
		}))
		defer srv.Close()

		encoded := base64.StdEncoding.EncodeToString([]byte("fake image bytes"))
		client := gateway.NewOpenRouterClient(newTestConfig(srv.URL))
		out, err := client.CompleteWithImages(ctx, "sys", "what does the figure show?",
			[]gateway.Image{{Content: encoded, Extension: "png"}})
		require.NoError(t, err, "failed to complete")

		assert.Equal(t, "see the diagram", out)
		assert.Equal(t, "https://example.com/mentor", referer)
		assert.Equal(t, "Mentor-Test", title)
		assert.Equal(t, "some/multimodal-model", captured.Model)

		require.Len(t, captured.Messages, 2)
		var parts []struct {
			Type     string `json:"type"`
			Text     string `json:"text"`
			ImageURL *struct {
				URL string `json:"url"`
			} `json:"image_url"`
		}
		require.NoError(t, json.Unmarshal(captured.Messages[1].Content, &parts),
			"user content should be a part list")
		require.Len(t, parts, 2)
		assert.Equal(t, "text", parts[0].Type)
		assert.Equal(t, "what does the figure show?", parts[0].Text)
		assert.Equal(t, "image_url", parts[1].Type)
		require.NotNil(t, parts[1].ImageURL)
		assert.True(t,
			strings.HasPrefix(parts[1].ImageURL.URL, "data:image/png;base64,"),
			"image url should be a png data uri")
		assert.Equal(t, "data:image/png;base64,"+encoded, parts[1].ImageURL.URL)
	})
}
