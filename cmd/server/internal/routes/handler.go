package routes

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.opentelemetry.io/otel"

	"github.com/ide-mentor/mentor-api/internal/catalog"
	"github.com/ide-mentor/mentor-api/internal/config"
	"github.com/ide-mentor/mentor-api/internal/mentor"
	"github.com/ide-mentor/mentor-api/internal/stager"
	"github.com/ide-mentor/mentor-api/internal/types"
)

const name = "github.com/ide-mentor/mentor-api/cmd/server/routes"

var tracer = otel.Tracer(name)

type Handler struct {
	catalog *catalog.Store
	stager  *stager.Stager
	bot     *mentor.Bot
	config  *config.Config
}

func NewHandler(
	cat *catalog.Store,
	stg *stager.Stager,
	bot *mentor.Bot,
	cfg *config.Config,
) Handler {
	return Handler{
		catalog: cat,
		stager:  stg,
		bot:     bot,
		config:  cfg,
	}
}

func (h *Handler) AddRoutes(e *echo.Echo) {
	e.GET("/", h.Health)
	e.POST("/process", h.Process)
}

func (*Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, types.Health{
		Status:  "ok",
		Message: "Server is running",
	})
}
