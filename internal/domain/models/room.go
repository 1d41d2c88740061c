package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the caller-declared kind of a client connection. It is not
// verified by the server.
type Role string

const (
	RolePlayer     Role = "player"
	RoleController Role = "controller"
)

// RoomState is the synchronized playback state of one room. The registry
// owns it exclusively; rooms are created lazily on first reference and
// live for the rest of the process, even after every client has left.
type RoomState struct {
	ID             string
	CurrentMovie   string
	CurrentEpisode string
	IsPlaying      bool
	CurrentTime    float64
	Volume         float64
	Players        map[uuid.UUID]struct{}
	Controllers    map[uuid.UUID]struct{}
	CreatedAt      time.Time
}

func NewRoomState(id string) *RoomState {
	return &RoomState{
		ID:          id,
		Volume:      1.0,
		Players:     make(map[uuid.UUID]struct{}),
		Controllers: make(map[uuid.UUID]struct{}),
		CreatedAt:   time.Now(),
	}
}

// Client is one live connection. It references exactly one room.
type Client struct {
	ID       uuid.UUID
	RoomID   string
	Role     Role
	JoinedAt time.Time
}
