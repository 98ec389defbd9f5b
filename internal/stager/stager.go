// Package stager extracts a submission archive and copies it into a
// running container's filesystem via the container CLI.
package stager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	cp "github.com/otiai10/copy"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/semaphore"

	"github.com/ide-mentor/mentor-api/internal/command"
	"github.com/ide-mentor/mentor-api/internal/extract"
	"github.com/ide-mentor/mentor-api/internal/logger"
)

var tracer = otel.Tracer(
	"github.com/ide-mentor/mentor-api/internal/stager",
)

// ErrArchiveMissing reports that the archive path does not exist. No
// container mutation happens in that case.
var ErrArchiveMissing = errors.New("archive does not exist")

// StagedEnvironment records where a submission was staged: the local
// scratch directory holding the extracted tree and the container path the
// tree was copied to.
type StagedEnvironment struct {
	ContainerID string
	ScratchDir  string
	DestPath    string
}

// Remove deletes the local scratch directory. The container-side copy is
// left in place.
func (e *StagedEnvironment) Remove() error {
	return os.RemoveAll(e.ScratchDir)
}

type Stager struct {
	executor    command.Executor
	extractor   extract.Extractor
	cli         string
	scratchRoot string
	timeout     time.Duration

	// Container-side mkdir and copy are serialized; concurrent requests
	// would otherwise interleave writes under the same destination path.
	containerOps *semaphore.Weighted
}

func New(
	executor command.Executor,
	extractor extract.Extractor,
	cli string,
	scratchRoot string,
	timeout time.Duration,
) *Stager {
	return &Stager{
		executor:     executor,
		extractor:    extractor,
		cli:          cli,
		scratchRoot:  scratchRoot,
		timeout:      timeout,
		containerOps: semaphore.NewWeighted(1),
	}
}

// Stage extracts the zip at zipPath into a request-scoped scratch directory
// and copies its contents into the container at destPath. The scratch
// directory survives the call so the caller can read the extracted tree;
// it is the caller's job to Remove the returned environment.
func (s *Stager) Stage(
	ctx context.Context,
	containerID, zipPath, destPath string,
) (*StagedEnvironment, error) {
	ctx, span := tracer.Start(ctx, "Stager.Stage", trace.WithAttributes(
		attribute.String("containerID", containerID),
		attribute.String("zipPath", zipPath),
		attribute.String("destPath", destPath),
	))
	defer span.End()

	l := logger.Logger

	if _, err := os.Stat(zipPath); err != nil {
		err = fmt.Errorf("%w: %s", ErrArchiveMissing, zipPath)
		span.RecordError(err)
		span.SetStatus(codes.Error, "archive missing")
		return nil, err
	}

	// Scratch directories are scoped per request so concurrent requests
	// cannot clobber each other's extracted trees.
	scratch := filepath.Join(s.scratchRoot, uuid.NewString())
	l.DebugContext(ctx, "staging into scratch directory", "path", scratch)

	if err := os.MkdirAll(s.scratchRoot, 0o755); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create scratch root")
		return nil, fmt.Errorf("failed to create scratch root: %w", err)
	}

	// Extract into a temp directory first; the scratch path only appears
	// once extraction has fully succeeded.
	tmp, err := os.MkdirTemp(s.scratchRoot, "extract-")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create extraction directory")
		return nil, fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := s.extractor.Extract(ctx, zipPath, tmp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to extract archive")
		return nil, fmt.Errorf("failed to extract %s: %w", zipPath, err)
	}

	if err := cp.Copy(tmp, scratch, cp.Options{}); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to promote extracted tree")
		return nil, fmt.Errorf("failed to promote extracted tree to scratch: %w", err)
	}

	span.AddEvent("extracted archive", trace.WithAttributes(
		attribute.String("scratch", scratch),
	))

	env := &StagedEnvironment{
		ContainerID: containerID,
		ScratchDir:  scratch,
		DestPath:    destPath,
	}

	if err := s.copyIntoContainer(ctx, env); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy into container")
		// The scratch dir is cleaned up; a partially created destination
		// directory may remain in the container.
		_ = env.Remove()
		return nil, err
	}

	span.SetStatus(codes.Ok, "staged environment")
	return env, nil
}

func (s *Stager) copyIntoContainer(ctx context.Context, env *StagedEnvironment) error {
	ctx, span := tracer.Start(ctx, "Stager.copyIntoContainer")
	defer span.End()

	if err := s.containerOps.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("failed to acquire container staging slot: %w", err)
	}
	defer s.containerOps.Release(1)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	mkdir := command.New(s.cli, "exec", env.ContainerID, "mkdir", "-p", env.DestPath)
	if err := s.run(ctx, mkdir, "create destination directory"); err != nil {
		return err
	}
	span.AddEvent("created destination directory")

	copyCmd := command.New(
		s.cli,
		"cp",
		env.ScratchDir+string(os.PathSeparator)+".",
		env.ContainerID+":"+env.DestPath,
	)
	if err := s.run(ctx, copyCmd, "copy scratch contents"); err != nil {
		return err
	}
	span.AddEvent("copied scratch contents into container")

	return nil
}

func (s *Stager) run(ctx context.Context, cmd *command.Command, action string) error {
	result, err := s.executor.Execute(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf(
			"failed to %s: exit code(%d)\nstdout(%s)\nstderr(%s)",
			action,
			result.ExitCode,
			result.Stdout,
			result.Stderr,
		)
	}
	return nil
}
