package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/cinesync/cinesync/internal/application/config"
	"github.com/cinesync/cinesync/internal/application/constant"
	"github.com/cinesync/cinesync/internal/application/metric"
	"github.com/cinesync/cinesync/internal/domain/events"
	"github.com/cinesync/cinesync/internal/infra/adapters/memory"
	"github.com/cinesync/cinesync/internal/usecase"
)

type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	syncUsecase usecase.SyncUsecase

	wsConnRepo memory.WebsocketConnectionRepository
}

func NewWebSocketHandler(cfg *config.Config, syncUsecase usecase.SyncUsecase, wsConnRepo memory.WebsocketConnectionRepository) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				return r.Header.Get("Origin") == cfg.Domain
			},
		},
		syncUsecase: syncUsecase,
		wsConnRepo:  wsConnRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	// The connection id is the client id for its whole lifetime.
	clientID := uuid.New()

	h.wsConnRepo.Add(clientID, ws)
	metric.IncrementWSActiveConnections()

	defer func() {
		h.wsConnRepo.Remove(clientID)
		metric.DecrementWSActiveConnections()

		// Implicit leave; a no-op when the client never joined a room.
		h.syncUsecase.HandleDisconnect(c.Request().Context(), clientID)
	}()

	err = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	if err != nil {
		return err
	}
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				if err := ws.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-c.Request().Context().Done():
				return
			}
		}
	}()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		default:
			_, msg, err := ws.ReadMessage()
			if err != nil {
				h.handleWebsocketError(clientID, err)
				return nil
			}

			syncMessage := new(events.Message)

			if err = json.Unmarshal(msg, &syncMessage); err != nil {
				slog.Warn("unmarshal websocket message",
					slog.Any(constant.Error, err),
					slog.Any(constant.ClientID, clientID),
				)
				continue
			}

			h.handleMessage(c.Request().Context(), clientID, syncMessage)
		}
	}
}

// handleMessage dispatches one sync event. Malformed payloads decode to
// zero values and get defaulted downstream; nothing is rejected.
func (h *WebSocketHandler) handleMessage(
	ctx context.Context,
	clientID uuid.UUID,
	msg *events.Message,
) {
	metric.RecordSyncEvent(msg.Type)

	switch msg.Type {
	case events.TypeJoinRoom:
		var ev events.JoinEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleJoin(ctx, clientID, ev)

	case events.TypeLeaveRoom:
		var ev events.LeaveEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleLeave(ctx, clientID, ev)

	case events.TypePlayEpisode:
		var ev events.PlayEpisodeEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandlePlayEpisode(ctx, clientID, ev)

	case events.TypePlayPause:
		var ev events.PlayPauseEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandlePlayPause(ctx, clientID, ev)

	case events.TypeSeek:
		var ev events.SeekEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleSeek(ctx, clientID, ev)

	case events.TypeVolume:
		var ev events.VolumeEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleVolume(ctx, clientID, ev)

	case events.TypeFullscreen:
		var ev events.FullscreenEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleFullscreen(ctx, clientID, ev)

	case events.TypeTimeUpdate:
		var ev events.TimeUpdateEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleTimeUpdate(ctx, clientID, ev)

	case events.TypeVideoEnded:
		var ev events.VideoEndedEvent
		decodeEvent(msg, &ev, clientID)
		h.syncUsecase.HandleVideoEnded(ctx, clientID, ev)

	default:
		slog.Warn("unknown message type",
			slog.String(constant.Event, msg.Type),
			slog.Any(constant.ClientID, clientID),
		)
	}
}

func decodeEvent(msg *events.Message, target any, clientID uuid.UUID) {
	if len(msg.Data) == 0 {
		return
	}

	if err := json.Unmarshal(msg.Data, target); err != nil {
		slog.Warn("unmarshal event payload",
			slog.Any(constant.Error, err),
			slog.String(constant.Event, msg.Type),
			slog.Any(constant.ClientID, clientID),
		)
	}
}

func (h *WebSocketHandler) handleWebsocketError(clientID uuid.UUID, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway:
			slog.Info("client disconnected from websocket", slog.Any(constant.ClientID, clientID))
		default:
			slog.Error("websocket close error", slog.Any(constant.ClientID, clientID))
		}
	} else {
		slog.Error(
			"websocket read",
			slog.Any(constant.Error, err),
		)
	}
}
