package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cinesync/cinesync/internal/application/constant"
	"github.com/cinesync/cinesync/internal/application/metric"
	"github.com/cinesync/cinesync/internal/domain/events"
	"github.com/cinesync/cinesync/internal/domain/output"
	"github.com/cinesync/cinesync/internal/infra/adapters/memory"
)

// DefaultRoom is used whenever an event does not name a room.
const DefaultRoom = "default"

// SyncUsecase applies client playback events to the registry and
// rebroadcasts them. There is no protocol-level failure path: malformed
// or missing fields are defaulted, never rejected.
type SyncUsecase interface {
	HandleJoin(ctx context.Context, clientID uuid.UUID, ev events.JoinEvent)
	HandleLeave(ctx context.Context, clientID uuid.UUID, ev events.LeaveEvent)
	HandleDisconnect(ctx context.Context, clientID uuid.UUID)

	HandlePlayEpisode(ctx context.Context, clientID uuid.UUID, ev events.PlayEpisodeEvent)
	HandlePlayPause(ctx context.Context, clientID uuid.UUID, ev events.PlayPauseEvent)
	HandleSeek(ctx context.Context, clientID uuid.UUID, ev events.SeekEvent)
	HandleVolume(ctx context.Context, clientID uuid.UUID, ev events.VolumeEvent)
	HandleFullscreen(ctx context.Context, clientID uuid.UUID, ev events.FullscreenEvent)
	HandleTimeUpdate(ctx context.Context, clientID uuid.UUID, ev events.TimeUpdateEvent)
	HandleVideoEnded(ctx context.Context, clientID uuid.UUID, ev events.VideoEndedEvent)
}

type syncUsecase struct {
	registry memory.RoomRegistry
	wsRepo   memory.WebsocketConnectionRepository

	// mu serializes apply+broadcast so events for one room go out in the
	// order they were applied.
	mu sync.Mutex
}

func NewSyncUsecase(
	registry memory.RoomRegistry,
	wsRepo memory.WebsocketConnectionRepository,
) SyncUsecase {
	return &syncUsecase{
		registry: registry,
		wsRepo:   wsRepo,
	}
}

func (s *syncUsecase) HandleJoin(ctx context.Context, clientID uuid.UUID, ev events.JoinEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	state := s.registry.AddClient(roomID, clientID, ev.Role)

	s.wsRepo.Write(clientID, events.NewMessage(events.TypeStateUpdate, state))
	s.wsRepo.Write(clientID, events.NewMessage(events.TypeRoomJoined, events.RoomJoinedEvent{
		Room: roomID,
		Role: ev.Role,
	}))

	s.broadcastRoomList()

	slog.Info("client joined room",
		slog.Any(constant.ClientID, clientID),
		slog.String(constant.RoomID, roomID),
		slog.String(constant.Role, string(ev.Role)),
	)
}

func (s *syncUsecase) HandleLeave(ctx context.Context, clientID uuid.UUID, ev events.LeaveEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeClient(clientID, "client left room")
}

// HandleDisconnect is the implicit leave. Disconnect-before-join races are
// expected and are a no-op.
func (s *syncUsecase) HandleDisconnect(ctx context.Context, clientID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeClient(clientID, "client disconnected")
}

func (s *syncUsecase) removeClient(clientID uuid.UUID, logMsg string) {
	roomID, ok := s.registry.RemoveClient(clientID)
	if !ok {
		return
	}

	s.broadcastRoomList()

	slog.Info(logMsg,
		slog.Any(constant.ClientID, clientID),
		slog.String(constant.RoomID, roomID),
	)
}

func (s *syncUsecase) HandlePlayEpisode(ctx context.Context, clientID uuid.UUID, ev events.PlayEpisodeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	state := s.registry.SetEpisode(roomID, ev.Movie, ev.Episode)

	s.broadcastRoom(roomID, events.NewMessage(events.TypePlayEpisode, events.PlayEpisodeBroadcast{
		Movie:    ev.Movie,
		Episode:  ev.Episode,
		FilePath: ev.FilePath,
	}))
	s.broadcastRoom(roomID, events.NewMessage(events.TypeStateUpdate, state))
	s.broadcastRoomList()

	slog.Info("play episode",
		slog.String(constant.RoomID, roomID),
		slog.String("movie", ev.Movie),
		slog.String("episode", ev.Episode),
	)
}

func (s *syncUsecase) HandlePlayPause(ctx context.Context, clientID uuid.UUID, ev events.PlayPauseEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	state := s.registry.SetPlaying(roomID, ev.IsPlaying)

	s.broadcastRoom(roomID, events.NewMessage(events.TypePlayPause, events.PlayPauseBroadcast{
		IsPlaying: ev.IsPlaying,
	}))
	s.broadcastRoom(roomID, events.NewMessage(events.TypeStateUpdate, state))
	s.broadcastRoomList()
}

// HandleSeek rebroadcasts the new position to the room but deliberately
// skips the room-list snapshot: position changes are too frequent.
func (s *syncUsecase) HandleSeek(ctx context.Context, clientID uuid.UUID, ev events.SeekEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	state := s.registry.SetPosition(roomID, ev.Time)

	s.broadcastRoom(roomID, events.NewMessage(events.TypeSeek, events.SeekBroadcast{Time: ev.Time}))
	s.broadcastRoom(roomID, events.NewMessage(events.TypeStateUpdate, state))
}

func (s *syncUsecase) HandleVolume(ctx context.Context, clientID uuid.UUID, ev events.VolumeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	// Missing level means full volume. Values are not clamped.
	level := 1.0
	if ev.Volume != nil {
		level = *ev.Volume
	}

	state := s.registry.SetVolume(roomID, level)

	s.broadcastRoom(roomID, events.NewMessage(events.TypeVolume, events.VolumeBroadcast{Volume: level}))
	s.broadcastRoom(roomID, events.NewMessage(events.TypeStateUpdate, state))
}

// HandleFullscreen relays a transient UI signal. No state is persisted.
func (s *syncUsecase) HandleFullscreen(ctx context.Context, clientID uuid.UUID, ev events.FullscreenEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	s.broadcastRoom(roomID, events.NewMessage(events.TypeFullscreen, events.FullscreenBroadcast{
		Fullscreen: ev.Fullscreen,
	}))
}

// HandleTimeUpdate records the playing client's position heartbeat. It is
// never rebroadcast, to avoid feedback loops.
func (s *syncUsecase) HandleTimeUpdate(ctx context.Context, clientID uuid.UUID, ev events.TimeUpdateEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.registry.SetPosition(roomOrDefault(ev.Room), ev.Time)
}

func (s *syncUsecase) HandleVideoEnded(ctx context.Context, clientID uuid.UUID, ev events.VideoEndedEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	roomID := roomOrDefault(ev.Room)

	state := s.registry.SetPlaying(roomID, false)

	timestamp := ev.Timestamp
	if timestamp == 0 {
		timestamp = float64(time.Now().UnixNano()) / float64(time.Second)
	}

	s.broadcastRoom(roomID, events.NewMessage(events.TypeVideoEnded, events.VideoEndedBroadcast{
		Room:      roomID,
		Movie:     state.CurrentMovie,
		Episode:   state.CurrentEpisode,
		Timestamp: timestamp,
	}))
	s.broadcastRoom(roomID, events.NewMessage(events.TypeStateUpdate, state))
	s.broadcastRoomList()

	slog.Info("video ended", slog.String(constant.RoomID, roomID))
}

// broadcastRoom delivers to every client currently a member of the room,
// the originator included.
func (s *syncUsecase) broadcastRoom(roomID string, msg events.Message) {
	for _, memberID := range s.registry.Members(roomID) {
		s.wsRepo.Write(memberID, msg)
	}
}

func (s *syncUsecase) broadcastRoomList() {
	rooms := s.registry.ListRooms()

	metric.SetRoomsTotal(len(rooms))

	s.wsRepo.WriteAll(events.NewMessage(events.TypeRoomsUpdate, output.RoomList{
		Rooms:        rooms,
		TotalClients: s.registry.TotalClients(),
	}))
}

func roomOrDefault(roomID string) string {
	if roomID == "" {
		return DefaultRoom
	}
	return roomID
}
