package events

import (
	"encoding/json"
	"log/slog"

	"github.com/cinesync/cinesync/internal/application/constant"
	"github.com/cinesync/cinesync/internal/domain/models"
)

// Incoming event types.
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypePlayEpisode = "play_episode"
	TypePlayPause   = "play_pause"
	TypeSeek        = "seek"
	TypeVolume      = "volume"
	TypeFullscreen  = "fullscreen"
	TypeTimeUpdate  = "time_update"
	TypeVideoEnded  = "video_ended"
)

// Outgoing event types. Playback directives are rebroadcast under their
// incoming type name.
const (
	TypeRoomJoined  = "room_joined"
	TypeStateUpdate = "state_update"
	TypeRoomsUpdate = "rooms_update"
)

// Message is the envelope for every websocket frame in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// NewMessage wraps a payload into an envelope. Marshal failures cannot
// happen for our payload types, so they are only logged.
func NewMessage(msgType string, payload any) Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal event payload", slog.Any(constant.Error, err), slog.String(constant.Event, msgType))
	}

	return Message{Type: msgType, Data: data}
}

// JoinEvent declares a client's room and role. The role is taken at face
// value.
type JoinEvent struct {
	Room string      `json:"room"`
	Role models.Role `json:"type"`
}

type LeaveEvent struct {
	Room string `json:"room"`
}

type PlayEpisodeEvent struct {
	Room     string `json:"room"`
	Movie    string `json:"movie"`
	Episode  string `json:"episode"`
	FilePath string `json:"file_path"`
}

type PlayPauseEvent struct {
	Room      string `json:"room"`
	IsPlaying bool   `json:"is_playing"`
}

type SeekEvent struct {
	Room string  `json:"room"`
	Time float64 `json:"time"`
}

// VolumeEvent carries the new volume level. A missing level defaults to
// full volume; values are passed through without clamping.
type VolumeEvent struct {
	Room   string   `json:"room"`
	Volume *float64 `json:"volume"`
}

type FullscreenEvent struct {
	Room       string `json:"room"`
	Fullscreen bool   `json:"fullscreen"`
}

// TimeUpdateEvent is the periodic position heartbeat from the playing
// client. It mutates state but is never rebroadcast.
type TimeUpdateEvent struct {
	Room string  `json:"room"`
	Time float64 `json:"time"`
}

type VideoEndedEvent struct {
	Room      string  `json:"room"`
	Timestamp float64 `json:"timestamp"`
}

// RoomJoinedEvent acknowledges a join to the joining client.
type RoomJoinedEvent struct {
	Room string      `json:"room"`
	Role models.Role `json:"type"`
}

// PlayEpisodeBroadcast is the play directive sent to the room.
type PlayEpisodeBroadcast struct {
	Movie    string `json:"movie"`
	Episode  string `json:"episode"`
	FilePath string `json:"file_path"`
}

type PlayPauseBroadcast struct {
	IsPlaying bool `json:"is_playing"`
}

type SeekBroadcast struct {
	Time float64 `json:"time"`
}

type VolumeBroadcast struct {
	Volume float64 `json:"volume"`
}

type FullscreenBroadcast struct {
	Fullscreen bool `json:"fullscreen"`
}

// VideoEndedBroadcast notifies the room that playback finished.
type VideoEndedBroadcast struct {
	Room      string  `json:"room"`
	Movie     *string `json:"movie"`
	Episode   *string `json:"episode"`
	Timestamp float64 `json:"timestamp"`
}
