package fetch

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer(
	"github.com/ide-mentor/mentor-api/internal/fetch",
)

// Fetcher downloads remote content, such as images referenced by a
// question's markup.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}
