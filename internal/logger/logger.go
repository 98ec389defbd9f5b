package logger

import (
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	slogotel "github.com/remychantenay/slog-otel"
)

var LogLevel = new(slog.LevelVar)

var jsonHandler = slog.NewJSONHandler(
	os.Stderr,
	&slog.HandlerOptions{AddSource: true, Level: LogLevel},
)
var sloghandler = slogotel.NewOtelHandler(slogotel.WithNoTraceEvents(true))
var Handler = sloghandler(jsonHandler)
var Logger = slog.New(Handler)

func InitSlog() {
	slog.SetDefault(Logger)
	LogLevel.Set(slog.LevelDebug)
}

// InitPretty swaps the process logger to a tint handler for local terminals.
// Trace correlation stays intact since the handler is wrapped the same way.
func InitPretty() {
	Handler = sloghandler(tint.NewHandler(os.Stderr, &tint.Options{Level: LogLevel}))
	Logger = slog.New(Handler)
	slog.SetDefault(Logger)
}
