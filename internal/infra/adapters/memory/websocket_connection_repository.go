package memory

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cinesync/cinesync/internal/application/constant"
)

// WebsocketConnectionRepository tracks live websocket connections in
// memory. Delivery is fire-and-forget: write errors are logged and the
// disconnect path cleans the connection up.
type WebsocketConnectionRepository interface {
	Add(uuid.UUID, *websocket.Conn)
	Remove(clientID uuid.UUID)

	Write(uuid.UUID, any)
	WriteAll(any)
}

type safeWS struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

type wsConnectionRepository struct {
	// wsConns holds map[client_id]*ws.conn
	wsConns map[uuid.UUID]*safeWS

	mu sync.RWMutex
}

func NewWSConnectionRepository() WebsocketConnectionRepository {
	return &wsConnectionRepository{
		wsConns: make(map[uuid.UUID]*safeWS, 10),
	}
}

func (w *wsConnectionRepository) Add(clientID uuid.UUID, conn *websocket.Conn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.wsConns[clientID] = &safeWS{conn: conn}
}

func (w *wsConnectionRepository) Remove(clientID uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.wsConns, clientID)
}

func (w *wsConnectionRepository) Write(clientID uuid.UUID, payload any) {
	safews, ok := w.getSafeWS(clientID)
	if !ok {
		slog.Error("get websocket", slog.Any(constant.ClientID, clientID))
		return
	}

	safews.write(clientID, payload)
}

// WriteAll delivers the payload to every connected client, whatever room
// it is in.
func (w *wsConnectionRepository) WriteAll(payload any) {
	w.mu.RLock()
	conns := make(map[uuid.UUID]*safeWS, len(w.wsConns))
	for id, safews := range w.wsConns {
		conns[id] = safews
	}
	w.mu.RUnlock()

	for id, safews := range conns {
		safews.write(id, payload)
	}
}

func (w *wsConnectionRepository) getSafeWS(clientID uuid.UUID) (*safeWS, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	conn, ok := w.wsConns[clientID]
	return conn, ok
}

func (s *safeWS) write(clientID uuid.UUID, payload any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.WriteJSON(payload); err != nil {
		slog.Error("write to websocket", slog.Any(constant.ClientID, clientID))
	}
}
