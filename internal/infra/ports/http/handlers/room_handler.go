package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cinesync/cinesync/internal/usecase"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase) *RoomHandler {
	return &RoomHandler{roomUsecase: roomUsecase}
}

func (h *RoomHandler) ListRoomsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, h.roomUsecase.ListRooms(c.Request().Context()))
}

// RoomStateHandler returns the state of one room, creating it if this is
// the first reference.
func (h *RoomHandler) RoomStateHandler(c echo.Context) error {
	roomID := c.Param("room")

	return c.JSON(http.StatusOK, h.roomUsecase.RoomState(c.Request().Context(), roomID))
}
