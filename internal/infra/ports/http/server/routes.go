package server

import (
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/cinesync/cinesync/internal/application/config"
	"github.com/cinesync/cinesync/internal/infra/ports/http/handlers"
	"github.com/cinesync/cinesync/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	catalogHandler *handlers.CatalogHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true

	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	e.GET("/ws", wsHandler.Handle)

	api := e.Group("/api")
	{
		api.GET("/movies", catalogHandler.ListMoviesHandler)
		api.GET("/rooms", roomHandler.ListRoomsHandler)
		api.GET("/state/:room", roomHandler.RoomStateHandler)
	}

	// The player and controller pages also answer on /<page>/<room> so a
	// room link can be opened directly.
	e.GET("/player", page(cfg.WebDir, "player.html"))
	e.GET("/player/:room", page(cfg.WebDir, "player.html"))
	e.GET("/control", page(cfg.WebDir, "control.html"))
	e.GET("/control/:room", page(cfg.WebDir, "control.html"))
	e.GET("/rooms", page(cfg.WebDir, "rooms.html"))

	e.Static("/data", cfg.DataDir)
	e.Static("/", cfg.WebDir)

	return e
}

func page(webDir, name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.File(filepath.Join(webDir, name))
	}
}
