// Package connection implements the ConnectionRegistry described in §4.3:
// the sole mapping from a live transport to the (room, player) it belongs
// to, and back. It is deliberately the only place that knows about
// transport identity — rooms and games never see a transport_id, only
// player names.
package connection

import (
	"sync"

	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// Entry identifies which seat a transport is currently bound to.
type Entry struct {
	RoomID     types.RoomIDType
	PlayerName types.PlayerName
}

// Registry is a thread-safe transport_id -> (room, player) map, plus its
// reverse index for unicast delivery. A single mutex guards both maps;
// the registry is small and short-lived enough per room that sharding
// buys nothing over a plain RWMutex.
type Registry struct {
	mu   sync.RWMutex
	byID map[types.ClientIDType]Entry
	rev  map[Entry]types.ClientIDType
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byID: make(map[types.ClientIDType]Entry),
		rev:  make(map[Entry]types.ClientIDType),
	}
}

// Register binds transportID to (roomID, playerName). Idempotent: calling
// it again with the same transportID simply overwrites the binding (used
// on reconnect, where a new transport_id replaces the stale one for the
// same seat).
func (reg *Registry) Register(transportID types.ClientIDType, roomID types.RoomIDType, playerName types.PlayerName) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if old, ok := reg.byID[transportID]; ok {
		delete(reg.rev, old)
	}
	entry := Entry{RoomID: roomID, PlayerName: playerName}
	if oldID, ok := reg.rev[entry]; ok {
		delete(reg.byID, oldID)
	}
	reg.byID[transportID] = entry
	reg.rev[entry] = transportID
}

// OnDisconnect removes transportID's binding and reports which (room,
// player) it belonged to, or ok=false if the transport was never
// registered (or already removed).
func (reg *Registry) OnDisconnect(transportID types.ClientIDType) (Entry, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	entry, ok := reg.byID[transportID]
	if !ok {
		return Entry{}, false
	}
	delete(reg.byID, transportID)
	delete(reg.rev, entry)
	return entry, true
}

// LookupTransport returns the transport_id currently bound to (roomID,
// playerName), or ok=false if that seat has no live transport.
func (reg *Registry) LookupTransport(roomID types.RoomIDType, playerName types.PlayerName) (types.ClientIDType, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	id, ok := reg.rev[Entry{RoomID: roomID, PlayerName: playerName}]
	return id, ok
}

// LookupEntry returns the (room, player) bound to transportID, or
// ok=false if unregistered.
func (reg *Registry) LookupEntry(transportID types.ClientIDType) (Entry, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	entry, ok := reg.byID[transportID]
	return entry, ok
}

// Count returns the number of live transport bindings, used by metrics
// and debug endpoints.
func (reg *Registry) Count() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.byID)
}
