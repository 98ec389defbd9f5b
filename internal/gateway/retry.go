package gateway

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/codes"
)

// Ensure RetryCompleter implements Completer interface.
var _ Completer = (*RetryCompleter)(nil)

// Meta completer that wraps completion calls in backoff loops
type RetryCompleter struct {
	completer Completer
	backoff   func() retry.Backoff
}

func NewRetryCompleterBackoff(completer Completer, backoff func() retry.Backoff) *RetryCompleter {
	return &RetryCompleter{
		completer: completer,
		backoff:   backoff,
	}
}

func NewRetryCompleter(completer Completer) *RetryCompleter {
	return &RetryCompleter{
		completer: completer,
		backoff: func() retry.Backoff {
			b := retry.NewFibonacci(time.Millisecond * 250)
			b = retry.WithMaxRetries(2, b)
			return b
		},
	}
}

func (r *RetryCompleter) Complete(
	ctx context.Context,
	systemPrompt, userPrompt string,
) (string, error) {
	ctx, span := tracer.Start(ctx, "RetryCompleter.Complete")
	defer span.End()

	var out string
	err := retry.Do(ctx, r.backoff(), func(rctx context.Context) error {
		//nolint:govet // shadow: intentionally shadow ctx and span to avoid using the incorrect one.
		ctx, span := tracer.Start(rctx, "RetryCompleter.Complete.Retry")
		defer span.End()

		var err error
		out, err = r.completer.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to complete")
			return retry.RetryableError(err)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "successfully retried")
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to complete")
		return "", err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "completed")
	return out, nil
}

func (r *RetryCompleter) CompleteWithImages(
	ctx context.Context,
	systemPrompt, userText string,
	images []Image,
) (string, error) {
	ctx, span := tracer.Start(ctx, "RetryCompleter.CompleteWithImages")
	defer span.End()

	var out string
	err := retry.Do(ctx, r.backoff(), func(rctx context.Context) error {
		//nolint:govet // shadow: intentionally shadow ctx and span to avoid using the incorrect one.
		ctx, span := tracer.Start(rctx, "RetryCompleter.CompleteWithImages.Retry")
		defer span.End()

		var err error
		out, err = r.completer.CompleteWithImages(ctx, systemPrompt, userText, images)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to complete")
			return retry.RetryableError(err)
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "successfully retried")
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to complete")
		return "", err
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "completed")
	return out, nil
}
