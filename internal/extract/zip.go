package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Ensure ZipExtractor implements Extractor interface.
var _ Extractor = (*ZipExtractor)(nil)

// .zip extractor
type ZipExtractor struct{}

func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{}
}

func (*ZipExtractor) Extract(ctx context.Context, archivePath string, outDir string) error {
	_, span := tracer.Start(ctx, "ZipExtractor.Extract", trace.WithAttributes(
		attribute.String("archivePath", archivePath),
		attribute.String("outDir", outDir),
	))
	defer span.End()

	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		if errors.Is(err, zip.ErrFormat) {
			err = fmt.Errorf("%w: %s", ErrNotArchive, archivePath)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to open archive")
		return err
	}
	defer reader.Close()

	for _, entry := range reader.File {
		if err := writeEntry(entry, outDir); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to write archive entry")
			return err
		}
	}

	span.SetStatus(codes.Ok, "extracted zip")
	return nil
}

func writeEntry(entry *zip.File, outDir string) error {
	dest := filepath.Join(outDir, entry.Name)

	// Reject entries that would land outside outDir.
	cleanOut := filepath.Clean(outDir)
	if dest != cleanOut && !strings.HasPrefix(dest, cleanOut+string(os.PathSeparator)) {
		return fmt.Errorf("archive entry escapes destination: %s", entry.Name)
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory for %s: %w", entry.Name, err)
	}

	in, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, entry.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	//nolint:gosec // G110: submissions are small student projects; size limiting happens at upload
	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}

	return out.Close()
}
