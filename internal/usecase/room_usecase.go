package usecase

import (
	"context"

	"github.com/cinesync/cinesync/internal/domain/output"
	"github.com/cinesync/cinesync/internal/infra/adapters/memory"
)

// RoomUsecase serves the room query endpoints.
type RoomUsecase interface {
	ListRooms(ctx context.Context) output.RoomList
	RoomState(ctx context.Context, roomID string) output.StateSnapshot
}

type roomUsecase struct {
	registry memory.RoomRegistry
}

func NewRoomUsecase(registry memory.RoomRegistry) RoomUsecase {
	return &roomUsecase{registry: registry}
}

func (u *roomUsecase) ListRooms(ctx context.Context) output.RoomList {
	return output.RoomList{
		Rooms:        u.registry.ListRooms(),
		TotalClients: u.registry.TotalClients(),
	}
}

// RoomState lazily creates the room: querying an unknown room is not an
// error.
func (u *roomUsecase) RoomState(ctx context.Context, roomID string) output.StateSnapshot {
	return u.registry.GetOrCreate(roomOrDefault(roomID))
}
