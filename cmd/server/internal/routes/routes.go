package routes

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/ide-mentor/mentor-api/internal/types"
	"github.com/ide-mentor/mentor-api/internal/validator"
)

// BuildEcho assembles the router: tracing, request logging, CORS, and the
// error envelope every handler shares.
func BuildEcho(logger *slog.Logger, corsOrigins []string) (*echo.Echo, error) {
	e := echo.New()

	validate := validator.Create()
	e.Validator = &validate

	e.Use(
		otelecho.Middleware("mentor-api"),
		slogecho.NewWithConfig(logger, slogecho.Config{}),
		middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: corsOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
			ExposeHeaders: []string{
				echo.HeaderContentType,
				echo.HeaderAccept,
			},
		}),
	)

	// Everything that escapes a handler becomes {"error": "<message>"}.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		payload := types.StringError(fmt.Sprintf("Error processing request: %v", err))

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if typed, isTyped := he.Message.(types.Error); isTyped {
				payload = typed
			} else {
				payload = types.StringError(fmt.Sprintf("%v", he.Message))
			}
		}

		if jsonErr := c.JSON(code, payload); jsonErr != nil {
			logger.Error("failed to write error response", "error", jsonErr)
		}
	}

	return e, nil
}
