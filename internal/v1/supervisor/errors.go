package supervisor

import "errors"

// Sentinel errors returned by Supervisor methods, following the same small-
// sentinel convention as internal/v1/room.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotAccepting = errors.New("server is not accepting new rooms")
	ErrSeatNotFound = errors.New("no disconnected seat with that name")
)
