package output

import "github.com/google/uuid"

// StateSnapshot is the full room state payload sent to bring a client's
// local view in sync. Timestamps are unix seconds, fractional.
type StateSnapshot struct {
	CurrentMovie   *string     `json:"current_movie"`
	CurrentEpisode *string     `json:"current_episode"`
	IsPlaying      bool        `json:"is_playing"`
	CurrentTime    float64     `json:"current_time"`
	Volume         float64     `json:"volume"`
	Players        []uuid.UUID `json:"players"`
	Controllers    []uuid.UUID `json:"controllers"`
	CreatedAt      float64     `json:"created_at"`
}

// RoomSummary is one entry of the aggregate room list.
type RoomSummary struct {
	ID               string  `json:"id"`
	CurrentMovie     *string `json:"current_movie"`
	CurrentEpisode   *string `json:"current_episode"`
	IsPlaying        bool    `json:"is_playing"`
	PlayersCount     int     `json:"players_count"`
	ControllersCount int     `json:"controllers_count"`
	CreatedAt        float64 `json:"created_at"`
}

// RoomList is the room-list snapshot broadcast to every connected client.
type RoomList struct {
	Rooms        []RoomSummary `json:"rooms"`
	TotalClients int           `json:"total_clients"`
}
