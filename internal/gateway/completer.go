// Package gateway mediates calls to the remote chat-completion API.
package gateway

import (
	"context"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer(
	"github.com/ide-mentor/mentor-api/internal/gateway",
)

// Image is one base64-encoded image attached to a completion request.
type Image struct {
	Content   string
	Extension string
}

// Completer produces a model answer for a system/user prompt pair. Failures
// are returned as errors; masking them behind a canned reply is the
// caller's decision, not the gateway's.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	CompleteWithImages(
		ctx context.Context,
		systemPrompt, userText string,
		images []Image,
	) (string, error)
}
