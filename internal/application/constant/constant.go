package constant

// Shared slog attribute keys.
const (
	Error    = "error"
	ClientID = "client_id"
	RoomID   = "room_id"
	Role     = "role"
	Event    = "event"
)
