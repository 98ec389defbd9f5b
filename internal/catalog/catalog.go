// Package catalog looks question metadata up in the commands CSV.
package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ide-mentor/mentor-api/internal/logger"
)

var tracer = otel.Tracer(
	"github.com/ide-mentor/mentor-api/internal/catalog",
)

// ErrNotFound is returned for every lookup failure: missing file, empty
// file, absent column, or no matching row. The details are logged here;
// callers only get the sentinel.
var ErrNotFound = errors.New("no matching question record")

// Record is one row of the catalog.
type Record struct {
	ID        string `csv:"question_command_id"`
	Content   string `csv:"question_content"`
	TestCases string `csv:"question_test_cases"`
}

type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

func init() {
	// A catalog missing one of the required columns must be diagnosed, not
	// silently zero-filled.
	gocsv.FailIfUnmatchedStructTags = true
}

// Find loads the catalog fresh and returns the record whose id matches the
// identifier. An exact case-insensitive match wins; failing that, a
// case-insensitive substring match is accepted for compatibility with
// loosely named uploads, first row wins and ambiguity is logged.
func (s *Store) Find(ctx context.Context, identifier string) (*Record, error) {
	ctx, span := tracer.Start(ctx, "Store.Find", trace.WithAttributes(
		attribute.String("identifier", identifier),
		attribute.String("path", s.path),
	))
	defer span.End()

	l := logger.Logger

	f, err := os.Open(s.path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "catalog file not readable")
		l.ErrorContext(ctx, "catalog file not readable", "path", s.path, "error", err)
		return nil, ErrNotFound
	}
	defer f.Close()

	var rows []*Record
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "failed to decode catalog")
		l.ErrorContext(ctx, "failed to decode catalog",
			"path", s.path,
			"columns", s.readHeader(),
			"error", err,
		)
		return nil, ErrNotFound
	}

	span.AddEvent("loaded catalog", trace.WithAttributes(
		attribute.Int("rows", len(rows)),
	))

	for _, row := range rows {
		row.ID = strings.TrimSpace(row.ID)
	}

	needle := strings.ToLower(identifier)
	var matches []*Record
	for _, row := range rows {
		if strings.ToLower(row.ID) == needle {
			matches = []*Record{row}
			break
		}
		if strings.Contains(strings.ToLower(row.ID), needle) {
			matches = append(matches, row)
		}
	}

	if len(matches) == 0 {
		span.SetStatus(codes.Ok, "identifier not in catalog")
		l.WarnContext(ctx, "identifier not in catalog",
			"identifier", identifier,
			"available", availableIDs(rows),
		)
		return nil, ErrNotFound
	}
	if len(matches) > 1 {
		l.WarnContext(ctx, "identifier matches multiple catalog rows, using first",
			"identifier", identifier,
			"matches", availableIDs(matches),
		)
	}

	span.SetStatus(codes.Ok, "found question record")
	return matches[0], nil
}

// readHeader re-reads the first CSV line for diagnostics only.
func (s *Store) readHeader() []string {
	f, err := os.Open(s.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	header, err := csv.NewReader(f).Read()
	if err != nil {
		return nil
	}
	return header
}

func availableIDs(rows []*Record) string {
	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}
	return fmt.Sprintf("%v", ids)
}
