// Package mentor turns a question record, a staged submission, and a
// student query into a model answer.
package mentor

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ide-mentor/mentor-api/internal/catalog"
	"github.com/ide-mentor/mentor-api/internal/content"
	"github.com/ide-mentor/mentor-api/internal/fetch"
	"github.com/ide-mentor/mentor-api/internal/gateway"
	"github.com/ide-mentor/mentor-api/internal/logger"
)

var tracer = otel.Tracer(
	"github.com/ide-mentor/mentor-api/internal/mentor",
)

const systemPrompt = "You are IDE Mentor, a tutoring assistant for programming exercises. " +
	"You are given the problem statement, its test cases, and the student's submitted project. " +
	"Answer the student's question about their own code. Point at the relevant files and lines, " +
	"explain the underlying concept, and prefer guiding the student over handing out a full solution."

// Fallback strings returned in place of a model answer when inference
// fails. These are user-facing; HTTP callers still see a success.
const (
	fallbackText = "I apologize, but I'm having trouble processing your request at the moment. " +
		"Please try again later."
	fallbackImages = "I apologize, but I'm having trouble processing your image-based request at the moment. " +
		"Please try again later."
)

// Request is everything needed to answer one student question.
type Request struct {
	// Query is the student's free-text question.
	Query string
	// Question is the catalog record for the exercise.
	Question *catalog.Record
	// WorkDir holds the extracted submission.
	WorkDir string
}

type Bot struct {
	completer gateway.Completer
	fetcher   fetch.Fetcher
}

func New(completer gateway.Completer, fetcher fetch.Fetcher) *Bot {
	return &Bot{
		completer: completer,
		fetcher:   fetcher,
	}
}

// Respond builds the prompt bundle and asks the model. Inference failures
// are logged and masked with the fallback string; Respond never fails.
func (b *Bot) Respond(ctx context.Context, req *Request) string {
	ctx, span := tracer.Start(ctx, "Bot.Respond", trace.WithAttributes(
		attribute.String("question.id", req.Question.ID),
	))
	defer span.End()

	questionText, imageLinks := content.ParseMarkup(req.Question.Content)
	if questionText == "" {
		// Plain-text catalog entries have no paragraph markup.
		questionText = req.Question.Content
	}

	images := b.collectImages(ctx, imageLinks)
	userPrompt := buildUserPrompt(questionText, req)

	span.AddEvent("built prompt", trace.WithAttributes(
		attribute.Int("images", len(images)),
		attribute.Int("promptLength", len(userPrompt)),
	))

	if len(images) > 0 {
		out, err := b.completer.CompleteWithImages(ctx, systemPrompt, userPrompt, images)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Ok, "masked multimodal completion failure")
			logger.Logger.ErrorContext(ctx, "multimodal completion failed", "error", err)
			return fallbackImages
		}
		span.RecordError(nil)
		span.SetStatus(codes.Ok, "answered with images")
		return out
	}

	out, err := b.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Ok, "masked completion failure")
		logger.Logger.ErrorContext(ctx, "completion failed", "error", err)
		return fallbackText
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "answered")
	return out
}

// collectImages downloads and base64-encodes the images referenced by the
// question markup. Failures drop the image and keep going; the question is
// still answerable without it.
func (b *Bot) collectImages(ctx context.Context, links []string) []gateway.Image {
	ctx, span := tracer.Start(ctx, "Bot.collectImages", trace.WithAttributes(
		attribute.Int("links", len(links)),
	))
	defer span.End()

	l := logger.Logger

	var images []gateway.Image
	for _, link := range links {
		body, err := b.fetcher.Fetch(ctx, link)
		if err != nil {
			l.WarnContext(ctx, "failed to download question image", "url", link, "error", err)
			continue
		}

		encoded, format, err := content.EncodeImageData(body)
		closeErr := body.Close()
		if err != nil {
			l.WarnContext(ctx, "failed to encode question image", "url", link, "error", err)
			continue
		}
		if closeErr != nil {
			l.WarnContext(ctx, "failed to close image download", "url", link, "error", closeErr)
		}

		images = append(images, gateway.Image{Content: encoded, Extension: format})
	}

	span.AddEvent("collected images", trace.WithAttributes(
		attribute.Int("images", len(images)),
	))
	return images
}

func buildUserPrompt(questionText string, req *Request) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Problem statement:\n%s\n\n", questionText)
	fmt.Fprintf(&b, "Test cases:\n%s\n\n", req.Question.TestCases)
	fmt.Fprintf(&b, "Student submission:\n%s\n\n", content.WalkTree(req.WorkDir, true))
	fmt.Fprintf(&b, "Student question:\n%s", req.Query)

	return b.String()
}
