package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cinesync/cinesync/internal/domain/models"
	"github.com/cinesync/cinesync/internal/domain/output"
)

// RoomRegistry is the in-memory mapping from room id to room state and
// connected clients. It is the only owner of both maps. Mutators return
// the post-mutation snapshot so read-modify-write stays atomic under the
// registry lock.
type RoomRegistry interface {
	GetOrCreate(roomID string) output.StateSnapshot
	AddClient(roomID string, clientID uuid.UUID, role models.Role) output.StateSnapshot
	RemoveClient(clientID uuid.UUID) (string, bool)

	// Members returns every client currently in the room, whatever its
	// declared role.
	Members(roomID string) []uuid.UUID

	ListRooms() []output.RoomSummary
	TotalClients() int

	SetEpisode(roomID, movie, episode string) output.StateSnapshot
	SetPlaying(roomID string, playing bool) output.StateSnapshot
	SetPosition(roomID string, seconds float64) output.StateSnapshot
	SetVolume(roomID string, level float64) output.StateSnapshot
}

type roomRegistry struct {
	rooms   map[string]*models.RoomState
	clients map[uuid.UUID]*models.Client

	mu sync.RWMutex
}

func NewRoomRegistry() RoomRegistry {
	return &roomRegistry{
		rooms:   make(map[string]*models.RoomState),
		clients: make(map[uuid.UUID]*models.Client),
	}
}

// getOrCreate must be called with the lock held.
func (r *roomRegistry) getOrCreate(roomID string) *models.RoomState {
	if room, ok := r.rooms[roomID]; ok {
		return room
	}

	room := models.NewRoomState(roomID)
	r.rooms[roomID] = room
	return room
}

func (r *roomRegistry) GetOrCreate(roomID string) output.StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	return snapshot(r.getOrCreate(roomID))
}

func (r *roomRegistry) AddClient(roomID string, clientID uuid.UUID, role models.Role) output.StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.getOrCreate(roomID)

	// Roles other than player/controller are tracked as live clients but
	// belong to neither membership set.
	switch role {
	case models.RolePlayer:
		room.Players[clientID] = struct{}{}
	case models.RoleController:
		room.Controllers[clientID] = struct{}{}
	}

	r.clients[clientID] = &models.Client{
		ID:       clientID,
		RoomID:   roomID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	return snapshot(room)
}

// RemoveClient drops the client and its room membership. A room is never
// deleted here: its state survives until the process exits so clients can
// reconnect. Unknown clients are a no-op.
func (r *roomRegistry) RemoveClient(clientID uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.clients[clientID]
	if !ok {
		return "", false
	}

	if room, ok := r.rooms[client.RoomID]; ok {
		delete(room.Players, clientID)
		delete(room.Controllers, clientID)
	}

	delete(r.clients, clientID)

	return client.RoomID, true
}

func (r *roomRegistry) Members(roomID string) []uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var members []uuid.UUID
	for id, client := range r.clients {
		if client.RoomID == roomID {
			members = append(members, id)
		}
	}

	return members
}

func (r *roomRegistry) ListRooms() []output.RoomSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summaries := make([]output.RoomSummary, 0, len(r.rooms))
	for _, room := range r.rooms {
		summaries = append(summaries, output.RoomSummary{
			ID:               room.ID,
			CurrentMovie:     optional(room.CurrentMovie),
			CurrentEpisode:   optional(room.CurrentEpisode),
			IsPlaying:        room.IsPlaying,
			PlayersCount:     len(room.Players),
			ControllersCount: len(room.Controllers),
			CreatedAt:        unixSeconds(room.CreatedAt),
		})
	}

	return summaries
}

func (r *roomRegistry) TotalClients() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}

// SetEpisode selects new content. Selecting always resets the position to
// zero and starts playback, whatever the previous state was.
func (r *roomRegistry) SetEpisode(roomID, movie, episode string) output.StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.getOrCreate(roomID)
	room.CurrentMovie = movie
	room.CurrentEpisode = episode
	room.IsPlaying = true
	room.CurrentTime = 0

	return snapshot(room)
}

func (r *roomRegistry) SetPlaying(roomID string, playing bool) output.StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.getOrCreate(roomID)
	room.IsPlaying = playing

	return snapshot(room)
}

func (r *roomRegistry) SetPosition(roomID string, seconds float64) output.StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.getOrCreate(roomID)
	room.CurrentTime = seconds

	return snapshot(room)
}

func (r *roomRegistry) SetVolume(roomID string, level float64) output.StateSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.getOrCreate(roomID)
	room.Volume = level

	return snapshot(room)
}

// snapshot must be called with the lock held.
func snapshot(room *models.RoomState) output.StateSnapshot {
	players := make([]uuid.UUID, 0, len(room.Players))
	for id := range room.Players {
		players = append(players, id)
	}

	controllers := make([]uuid.UUID, 0, len(room.Controllers))
	for id := range room.Controllers {
		controllers = append(controllers, id)
	}

	return output.StateSnapshot{
		CurrentMovie:   optional(room.CurrentMovie),
		CurrentEpisode: optional(room.CurrentEpisode),
		IsPlaying:      room.IsPlaying,
		CurrentTime:    room.CurrentTime,
		Volume:         room.Volume,
		Players:        players,
		Controllers:    controllers,
		CreatedAt:      unixSeconds(room.CreatedAt),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
