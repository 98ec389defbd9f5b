package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	otellib "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/ide-mentor/mentor-api/cmd/server/internal/routes"
	"github.com/ide-mentor/mentor-api/internal/catalog"
	"github.com/ide-mentor/mentor-api/internal/command"
	"github.com/ide-mentor/mentor-api/internal/config"
	"github.com/ide-mentor/mentor-api/internal/extract"
	"github.com/ide-mentor/mentor-api/internal/fetch"
	"github.com/ide-mentor/mentor-api/internal/gateway"
	"github.com/ide-mentor/mentor-api/internal/logger"
	"github.com/ide-mentor/mentor-api/internal/mentor"
	"github.com/ide-mentor/mentor-api/internal/otel"
	"github.com/ide-mentor/mentor-api/internal/stager"
)

const name string = "github.com/ide-mentor/mentor-api/server"

var tracer = otellib.Tracer(name)

type server struct {
	router       *echo.Echo
	config       *config.Config
	otelShutdown func(context.Context) error
}

func initServer(ctx context.Context) (*server, error) {
	server := new(server)

	// Matches the deployment habit of keeping the OpenRouter key in .env.
	if err := godotenv.Load(); err != nil {
		logger.Logger.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.GetConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize server config: %w", err)
	}
	server.config = cfg

	logger.LogLevel.Set(slog.Level(cfg.Logging.App.Level))
	if cfg.Logging.App.Pretty {
		logger.InitPretty()
	}

	shutdownOTel, err := otel.SetupOTelSDK(ctx, cfg.Logging.UseOTLP)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OTEL SDK: %w", err)
	}
	defer func() {
		// Something failed to initialize, make sure everything gets flushed to the server
		if server.otelShutdown == nil {
			otelShutdownCtx, cancel := context.WithTimeout(
				context.Background(),
				time.Second*time.Duration(cfg.GracefulShutdownSecs),
			)
			defer cancel()

			if err = shutdownOTel(otelShutdownCtx); err != nil {
				logger.Logger.Error("failed to flush otel data", "error", err)
			}
		}
	}()

	_, span := tracer.Start(ctx, "initServer")
	defer span.End()

	catalogStore := catalog.New(cfg.Catalog.Path)

	stagingClient := stager.New(
		command.NewShellExecutor(),
		extract.NewZipExtractor(),
		cfg.Container.CLI,
		cfg.ScratchDir,
		cfg.Container.Timeout,
	)

	span.AddEvent("initialized catalog and stager")

	imageClient := retryablehttp.NewClient()
	imageClient.RetryMax = 3
	imageClient.Logger = nil
	fetcher := fetch.NewHTTPFetcher(imageClient.StandardClient())

	completer := gateway.NewRetryCompleter(gateway.NewOpenRouterClient(cfg.OpenRouter))
	bot := mentor.New(completer, fetcher)

	span.AddEvent("initialized gateway")

	handler := routes.NewHandler(catalogStore, stagingClient, bot, cfg)

	e, err := routes.BuildEcho(logger.Logger, cfg.CORS.Origins)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error building router")
		return nil, fmt.Errorf("error building router: %w", err)
	}
	handler.AddRoutes(e)

	span.AddEvent("created echo router")

	server.otelShutdown = shutdownOTel
	server.router = e

	return server, nil
}

func (s *server) Start() error {
	logger.Logger.Info("Starting services...")

	err := s.router.Start(s.config.ListenAddress)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func (s *server) Shutdown() error {
	var errs error

	ctx, cancelTimeout := context.WithTimeout(
		context.Background(),
		time.Second*time.Duration(s.config.GracefulShutdownSecs),
	)
	defer cancelTimeout()

	if err := s.router.Shutdown(ctx); err != nil {
		errs = errors.Join(errs, err)
	}

	if s.otelShutdown != nil {
		errs = errors.Join(errs, s.otelShutdown(ctx))
	}

	return errs
}

func main() {
	ctx, cancelSignal := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)

	logger.InitSlog()

	server, err := initServer(ctx)
	if err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	errch := make(chan error, 1)
	go func() {
		<-ctx.Done()
		logger.Logger.Info("Got shutdown signal!")
		errch <- server.Shutdown()
		close(errch)
	}()

	if err := server.Start(); err != nil {
		logger.Logger.Error(err.Error())
		cancelSignal()
		os.Exit(1)
	}

	if err := <-errch; err != nil {
		logger.Logger.Error("Error shutting down server", "error", err)
	}

	cancelSignal()
}
