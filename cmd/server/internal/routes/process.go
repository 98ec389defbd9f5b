package routes

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ide-mentor/mentor-api/internal/logger"
	"github.com/ide-mentor/mentor-api/internal/mentor"
	"github.com/ide-mentor/mentor-api/internal/types"
)

// Process runs one submission through the pipeline: validate the multipart
// request, resolve the question, stage the archive in the container, and
// ask the model.
func (h *Handler) Process(c echo.Context) error {
	ctx, span := tracer.Start(c.Request().Context(), "Process")
	defer span.End()

	file, err := c.FormFile("zip")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "no zip file provided")
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("No zip file provided"))
	}
	if file.Filename == "" {
		span.SetStatus(codes.Ok, "no zip file selected")
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("No zip file selected"))
	}

	query := c.FormValue("query")
	if query == "" {
		span.SetStatus(codes.Ok, "no query provided")
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError("No query provided"))
	}

	ident := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	span.SetAttributes(
		attribute.String("submission.filename", file.Filename),
		attribute.String("submission.identifier", ident),
	)
	logger.Logger.InfoContext(ctx, "processing submission", "identifier", ident)

	// The upload lives in a request-scoped temp dir, removed no matter how
	// the request ends.
	tempDir, err := os.MkdirTemp(h.config.TempDir, "upload-")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create temp dir")
		return fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() {
		if rmErr := os.RemoveAll(tempDir); rmErr != nil {
			logger.Logger.WarnContext(ctx, "failed to remove upload temp dir",
				"path", tempDir, "error", rmErr)
		}
	}()

	zipPath := filepath.Join(tempDir, filepath.Base(file.Filename))
	if err := saveUpload(file, zipPath); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to persist upload")
		return fmt.Errorf("failed to persist upload: %w", err)
	}

	span.AddEvent("persisted upload")

	record, err := h.catalog.Find(ctx, ident)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "no catalog match")
		return echo.NewHTTPError(http.StatusBadRequest, types.StringError(fmt.Sprintf(
			"Could not find question details for ID: %s. "+
				"Please ensure the zip filename matches a valid question ID in %s",
			ident,
			h.config.Catalog.Path,
		)))
	}

	span.AddEvent("resolved question", trace.WithAttributes(
		attribute.String("question.id", record.ID),
	))

	env, err := h.stager.Stage(
		ctx,
		h.config.Container.ID,
		zipPath,
		h.config.Container.DestPath,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to stage environment")
		return echo.NewHTTPError(http.StatusInternalServerError, types.StringError(
			fmt.Sprintf("Error setting up environment: %s", err),
		))
	}
	defer func() {
		if rmErr := env.Remove(); rmErr != nil {
			logger.Logger.WarnContext(ctx, "failed to remove scratch dir",
				"path", env.ScratchDir, "error", rmErr)
		}
	}()

	span.AddEvent("staged environment", trace.WithAttributes(
		attribute.String("scratch", env.ScratchDir),
	))

	answer := h.bot.Respond(ctx, &mentor.Request{
		Query:    query,
		Question: record,
		WorkDir:  env.ScratchDir,
	})

	span.SetStatus(codes.Ok, "")
	return c.JSON(http.StatusOK, types.ProcessResponse{Response: answer})
}

func saveUpload(file *multipart.FileHeader, dest string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Close()
}
