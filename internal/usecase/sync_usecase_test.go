package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cinesync/cinesync/internal/domain/events"
	"github.com/cinesync/cinesync/internal/domain/models"
	"github.com/cinesync/cinesync/internal/domain/output"
	"github.com/cinesync/cinesync/internal/infra/adapters/memory"
	"github.com/cinesync/cinesync/internal/usecase"
)

// messageRecorder implements memory.WebsocketConnectionRepository and
// captures everything the broadcaster writes.
type messageRecorder struct {
	mu     sync.Mutex
	direct map[uuid.UUID][]events.Message
	toAll  []events.Message
}

func newMessageRecorder() *messageRecorder {
	return &messageRecorder{direct: make(map[uuid.UUID][]events.Message)}
}

func (r *messageRecorder) Add(uuid.UUID, *websocket.Conn) {}
func (r *messageRecorder) Remove(uuid.UUID)               {}

func (r *messageRecorder) Write(clientID uuid.UUID, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct[clientID] = append(r.direct[clientID], payload.(events.Message))
}

func (r *messageRecorder) WriteAll(payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toAll = append(r.toAll, payload.(events.Message))
}

func (r *messageRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct = make(map[uuid.UUID][]events.Message)
	r.toAll = nil
}

func (r *messageRecorder) messagesFor(clientID uuid.UUID) []events.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Message(nil), r.direct[clientID]...)
}

func (r *messageRecorder) broadcasts() []events.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Message(nil), r.toAll...)
}

func decodePayload[T any](t *testing.T, msg events.Message) T {
	t.Helper()
	var payload T
	require.NoError(t, json.Unmarshal(msg.Data, &payload))
	return payload
}

func findMessage(msgs []events.Message, msgType string) (events.Message, bool) {
	for _, m := range msgs {
		if m.Type == msgType {
			return m, true
		}
	}
	return events.Message{}, false
}

func newSyncFixture() (usecase.SyncUsecase, memory.RoomRegistry, *messageRecorder) {
	registry := memory.NewRoomRegistry()
	recorder := newMessageRecorder()
	return usecase.NewSyncUsecase(registry, recorder), registry, recorder
}

func TestSyncUsecase_HandleJoin(t *testing.T) {
	uc, _, recorder := newSyncFixture()
	ctx := context.Background()

	clientID := uuid.New()
	uc.HandleJoin(ctx, clientID, events.JoinEvent{Room: "r1", Role: models.RoleController})

	msgs := recorder.messagesFor(clientID)
	require.Len(t, msgs, 2)

	assert.Equal(t, events.TypeStateUpdate, msgs[0].Type)
	state := decodePayload[output.StateSnapshot](t, msgs[0])
	assert.False(t, state.IsPlaying)
	assert.Equal(t, 1.0, state.Volume)
	assert.Equal(t, []uuid.UUID{clientID}, state.Controllers)

	assert.Equal(t, events.TypeRoomJoined, msgs[1].Type)
	joined := decodePayload[events.RoomJoinedEvent](t, msgs[1])
	assert.Equal(t, "r1", joined.Room)
	assert.Equal(t, models.RoleController, joined.Role)

	broadcasts := recorder.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, events.TypeRoomsUpdate, broadcasts[0].Type)
	roomList := decodePayload[output.RoomList](t, broadcasts[0])
	assert.Equal(t, 1, roomList.TotalClients)
	require.Len(t, roomList.Rooms, 1)
	assert.Equal(t, "r1", roomList.Rooms[0].ID)
}

func TestSyncUsecase_JoinDefaultsRoom(t *testing.T) {
	uc, registry, recorder := newSyncFixture()

	clientID := uuid.New()
	uc.HandleJoin(context.Background(), clientID, events.JoinEvent{Role: models.RolePlayer})

	msg, ok := findMessage(recorder.messagesFor(clientID), events.TypeRoomJoined)
	require.True(t, ok)
	joined := decodePayload[events.RoomJoinedEvent](t, msg)
	assert.Equal(t, "default", joined.Room)
	assert.Equal(t, []uuid.UUID{clientID}, registry.Members("default"))
}

// The scenario from the drawing board: a controller picks an episode and
// the player in the same room receives the play directive.
func TestSyncUsecase_HandlePlayEpisode(t *testing.T) {
	uc, _, recorder := newSyncFixture()
	ctx := context.Background()

	controller := uuid.New()
	player := uuid.New()
	uc.HandleJoin(ctx, controller, events.JoinEvent{Room: "r1", Role: models.RoleController})
	uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
	recorder.reset()

	uc.HandlePlayEpisode(ctx, controller, events.PlayEpisodeEvent{
		Room:     "r1",
		Movie:    "X",
		Episode:  "1",
		FilePath: "data/X/1.mp4",
	})

	for _, clientID := range []uuid.UUID{player, controller} {
		msgs := recorder.messagesFor(clientID)

		playMsg, ok := findMessage(msgs, events.TypePlayEpisode)
		require.True(t, ok)
		play := decodePayload[events.PlayEpisodeBroadcast](t, playMsg)
		assert.Equal(t, "X", play.Movie)
		assert.Equal(t, "1", play.Episode)
		assert.Equal(t, "data/X/1.mp4", play.FilePath)

		stateMsg, ok := findMessage(msgs, events.TypeStateUpdate)
		require.True(t, ok)
		state := decodePayload[output.StateSnapshot](t, stateMsg)
		assert.True(t, state.IsPlaying)
		assert.Equal(t, 0.0, state.CurrentTime)
	}

	broadcasts := recorder.broadcasts()
	require.Len(t, broadcasts, 1)
	assert.Equal(t, events.TypeRoomsUpdate, broadcasts[0].Type)
}

func TestSyncUsecase_PlayEpisodeResetsPosition(t *testing.T) {
	uc, registry, _ := newSyncFixture()
	ctx := context.Background()

	uc.HandlePlayEpisode(ctx, uuid.New(), events.PlayEpisodeEvent{Room: "r1", Movie: "X", Episode: "1"})
	uc.HandleSeek(ctx, uuid.New(), events.SeekEvent{Room: "r1", Time: 300})
	uc.HandlePlayPause(ctx, uuid.New(), events.PlayPauseEvent{Room: "r1", IsPlaying: false})

	uc.HandlePlayEpisode(ctx, uuid.New(), events.PlayEpisodeEvent{Room: "r1", Movie: "X", Episode: "2"})

	state := registry.GetOrCreate("r1")
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 0.0, state.CurrentTime)
	require.NotNil(t, state.CurrentEpisode)
	assert.Equal(t, "2", *state.CurrentEpisode)
}

func TestSyncUsecase_HandleTimeUpdate(t *testing.T) {
	uc, registry, recorder := newSyncFixture()
	ctx := context.Background()

	player := uuid.New()
	uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
	recorder.reset()

	uc.HandleTimeUpdate(ctx, player, events.TimeUpdateEvent{Room: "r1", Time: 17.5})

	// State moves, but nothing at all goes out.
	assert.Equal(t, 17.5, registry.GetOrCreate("r1").CurrentTime)
	assert.Empty(t, recorder.messagesFor(player))
	assert.Empty(t, recorder.broadcasts())
}

func TestSyncUsecase_HandleSeek(t *testing.T) {
	uc, _, recorder := newSyncFixture()
	ctx := context.Background()

	player := uuid.New()
	uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
	recorder.reset()

	uc.HandleSeek(ctx, player, events.SeekEvent{Room: "r1", Time: 95})

	msgs := recorder.messagesFor(player)
	seekMsg, ok := findMessage(msgs, events.TypeSeek)
	require.True(t, ok)
	assert.Equal(t, 95.0, decodePayload[events.SeekBroadcast](t, seekMsg).Time)

	_, ok = findMessage(msgs, events.TypeStateUpdate)
	assert.True(t, ok)

	// Position changes never trigger a room-list snapshot.
	assert.Empty(t, recorder.broadcasts())
}

func TestSyncUsecase_HandleVolume(t *testing.T) {
	tests := []struct {
		name     string
		event    events.VolumeEvent
		expected float64
	}{
		{
			name:     "explicit level",
			event:    events.VolumeEvent{Room: "r1", Volume: float64Ptr(0.4)},
			expected: 0.4,
		},
		{
			name:     "missing level defaults to full volume",
			event:    events.VolumeEvent{Room: "r1"},
			expected: 1.0,
		},
		{
			name:     "out-of-range level is passed through unclamped",
			event:    events.VolumeEvent{Room: "r1", Volume: float64Ptr(1.5)},
			expected: 1.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc, registry, recorder := newSyncFixture()
			ctx := context.Background()

			player := uuid.New()
			uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
			recorder.reset()

			uc.HandleVolume(ctx, player, tt.event)

			assert.Equal(t, tt.expected, registry.GetOrCreate("r1").Volume)

			msg, ok := findMessage(recorder.messagesFor(player), events.TypeVolume)
			require.True(t, ok)
			assert.Equal(t, tt.expected, decodePayload[events.VolumeBroadcast](t, msg).Volume)
		})
	}
}

func TestSyncUsecase_HandleFullscreen(t *testing.T) {
	uc, registry, recorder := newSyncFixture()
	ctx := context.Background()

	player := uuid.New()
	uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
	uc.HandlePlayEpisode(ctx, player, events.PlayEpisodeEvent{Room: "r1", Movie: "X", Episode: "1"})
	before := registry.GetOrCreate("r1")
	recorder.reset()

	uc.HandleFullscreen(ctx, player, events.FullscreenEvent{Room: "r1", Fullscreen: true})

	msgs := recorder.messagesFor(player)
	require.Len(t, msgs, 1)
	assert.Equal(t, events.TypeFullscreen, msgs[0].Type)
	assert.True(t, decodePayload[events.FullscreenBroadcast](t, msgs[0]).Fullscreen)

	// Transient signal: no state mutation, no state snapshot.
	assert.Equal(t, before, registry.GetOrCreate("r1"))
	assert.Empty(t, recorder.broadcasts())
}

func TestSyncUsecase_HandleVideoEnded(t *testing.T) {
	uc, registry, recorder := newSyncFixture()
	ctx := context.Background()

	player := uuid.New()
	uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
	uc.HandlePlayEpisode(ctx, player, events.PlayEpisodeEvent{Room: "r1", Movie: "X", Episode: "1"})
	recorder.reset()

	uc.HandleVideoEnded(ctx, player, events.VideoEndedEvent{Room: "r1"})

	assert.False(t, registry.GetOrCreate("r1").IsPlaying)

	msgs := recorder.messagesFor(player)
	endedMsg, ok := findMessage(msgs, events.TypeVideoEnded)
	require.True(t, ok)
	ended := decodePayload[events.VideoEndedBroadcast](t, endedMsg)
	assert.Equal(t, "r1", ended.Room)
	require.NotNil(t, ended.Movie)
	assert.Equal(t, "X", *ended.Movie)
	require.NotNil(t, ended.Episode)
	assert.Equal(t, "1", *ended.Episode)
	assert.NotZero(t, ended.Timestamp)

	stateMsg, ok := findMessage(msgs, events.TypeStateUpdate)
	require.True(t, ok)
	assert.False(t, decodePayload[output.StateSnapshot](t, stateMsg).IsPlaying)

	require.Len(t, recorder.broadcasts(), 1)
}

func TestSyncUsecase_LeaveAndDisconnect(t *testing.T) {
	uc, registry, recorder := newSyncFixture()
	ctx := context.Background()

	controller := uuid.New()
	player := uuid.New()
	uc.HandleJoin(ctx, controller, events.JoinEvent{Room: "r1", Role: models.RoleController})
	uc.HandleJoin(ctx, player, events.JoinEvent{Room: "r1", Role: models.RolePlayer})
	recorder.reset()

	uc.HandleLeave(ctx, controller, events.LeaveEvent{Room: "r1"})
	assert.Equal(t, 1, registry.TotalClients())
	require.Len(t, recorder.broadcasts(), 1)

	uc.HandleDisconnect(ctx, player)
	assert.Equal(t, 0, registry.TotalClients())
	require.Len(t, recorder.broadcasts(), 2)

	// Disconnect before join is an expected race and stays silent.
	recorder.reset()
	uc.HandleDisconnect(ctx, uuid.New())
	assert.Empty(t, recorder.broadcasts())
}

func float64Ptr(v float64) *float64 {
	return &v
}
