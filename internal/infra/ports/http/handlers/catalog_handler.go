package handlers

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinesync/cinesync/internal/application/constant"
	"github.com/cinesync/cinesync/internal/usecase"
)

type CatalogHandler struct {
	catalogUsecase usecase.CatalogUsecase
}

func NewCatalogHandler(catalogUsecase usecase.CatalogUsecase) *CatalogHandler {
	return &CatalogHandler{catalogUsecase: catalogUsecase}
}

func (h *CatalogHandler) ListMoviesHandler(c echo.Context) error {
	library, err := h.catalogUsecase.Movies(c.Request().Context())
	if err != nil {
		slog.Error("scan media library", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to scan media library"})
	}

	return c.JSON(http.StatusOK, library)
}
