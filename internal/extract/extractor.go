package extract

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer(
	"github.com/ide-mentor/mentor-api/internal/extract",
)

// ErrNotArchive reports that the input is not a well-formed archive.
var ErrNotArchive = errors.New("not a valid zip archive")

type Extractor interface {
	Extract(ctx context.Context, archivePath string, outDir string) error
}
