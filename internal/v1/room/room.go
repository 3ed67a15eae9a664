// Package room implements the seat roster and host bookkeeping described in
// §4.2: who is sitting where, who the host is, and the deterministic host
// migration policy. It knows nothing about phases, action queues, or
// transports — those live in internal/v1/game, internal/v1/queue, and
// internal/v1/transport. The game, broadcaster and bot handle hold a *Room,
// but Room holds no reference back to its game, queues, or supervisor.
package room

import (
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/types"
)

// Room holds the seat roster for one game room (§3). Exactly one seat holds
// the host role at any moment while any seat is occupied; seats are stable
// by slot index and never migrate.
type Room struct {
	mu sync.RWMutex

	id        types.RoomIDType
	seats     [types.SeatCount]*Seat
	hostName  types.PlayerName
	started   bool
	createdAt time.Time
}

// New creates an empty room with the given id.
func New(id types.RoomIDType) *Room {
	return &Room{id: id, createdAt: time.Now()}
}

func (r *Room) ID() types.RoomIDType { return r.id }

func (r *Room) CreatedAt() time.Time { return r.createdAt }

// Started reports whether start_game has transitioned this room out of
// Waiting (§3: phase == Waiting iff started == false).
func (r *Room) Started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.started
}

// MarkStarted transitions the room out of Waiting. Idempotent.
func (r *Room) MarkStarted() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.started = true
}

// HostName returns the current host's name, or "" if the room is empty.
func (r *Room) HostName() types.PlayerName {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostName
}

// IsHost reports whether name currently holds the host role.
func (r *Room) IsHost(name types.PlayerName) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.hostName != "" && r.hostName == name
}

// SeatCount returns the number of filled seats.
func (r *Room) SeatCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, s := range r.seats {
		if s != nil {
			n++
		}
	}
	return n
}

// Seats returns a shallow copy of the seat array; callers must not mutate
// the pointed-to Seat values from outside the driver loop that owns them.
func (r *Room) Seats() [types.SeatCount]*Seat {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seats
}

// SeatAt returns the seat in the given slot, or nil if the slot is empty or
// out of range.
func (r *Room) SeatAt(idx types.SeatIndex) *Seat {
	if !idx.Valid() {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.seats[idx]
}

// FindSeat returns the slot index and seat for name, or (NoSeat, nil) if not
// present.
func (r *Room) FindSeat(name types.PlayerName) (types.SeatIndex, *Seat) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, s := range r.seats {
		if s != nil && s.Name == name {
			return types.SeatIndex(i), s
		}
	}
	return types.NoSeat, nil
}

// AddPlayer seats name in the lowest empty slot (§4.2). The first seat
// filled becomes host. Returns ErrRoomStarted if the room has started,
// ErrNameTaken if name is already seated, ErrRoomFull if no slot is free.
func (r *Room) AddPlayer(name types.PlayerName, isBot bool) (types.SeatIndex, error) {
	if err := types.ValidatePlayerName(name); err != nil {
		return types.NoSeat, ErrInvalidName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return types.NoSeat, ErrRoomStarted
	}
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			return types.NoSeat, ErrNameTaken
		}
	}

	slot := types.NoSeat
	for i, s := range r.seats {
		if s == nil {
			slot = types.SeatIndex(i)
			break
		}
	}
	if slot == types.NoSeat {
		return types.NoSeat, ErrRoomFull
	}

	r.seats[slot] = &Seat{
		Name:          name,
		IsBot:         isBot,
		OriginalIsBot: isBot,
		IsConnected:   !isBot,
	}
	if r.hostName == "" {
		r.hostName = name
	}
	return slot, nil
}

// RemoveResult is returned by RemovePlayer.
type RemoveResult struct {
	Slot    types.SeatIndex
	WasHost bool
}

// RemovePlayer empties name's seat. If name was host, the caller is
// responsible for triggering migration (§4.2); RemovePlayer itself clears
// the host slot so IsHost never returns true for a removed name.
func (r *Room) RemovePlayer(name types.PlayerName) (RemoveResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.seats {
		if s != nil && s.Name == name {
			wasHost := r.hostName == name
			r.seats[i] = nil
			if wasHost {
				r.hostName = ""
			}
			return RemoveResult{Slot: types.SeatIndex(i), WasHost: wasHost}, nil
		}
	}
	return RemoveResult{}, ErrNotFound
}

// HasAnyHumans reports whether any occupied seat is not a bot.
func (r *Room) HasAnyHumans() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s != nil && !s.IsBot {
			return true
		}
	}
	return false
}

// HasAnyConnectedHumans reports whether any occupied seat is a connected
// human.
func (r *Room) HasAnyConnectedHumans() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.seats {
		if s != nil && !s.IsBot && s.IsConnected {
			return true
		}
	}
	return false
}

// MigrateHost chooses a new host per §4.2's deterministic policy: lowest-
// slot connected human, else lowest-slot human (disconnected), else
// lowest-slot bot, else "" if the room is empty. It always updates
// hostName; applying it when the current host is already the unique
// qualifying candidate is a no-op in effect.
func (r *Room) MigrateHost() types.PlayerName {
	r.mu.Lock()
	defer r.mu.Unlock()

	var connectedHuman, anyHuman, anyBot *Seat
	for _, s := range r.seats {
		if s == nil {
			continue
		}
		if !s.IsBot && s.IsConnected && connectedHuman == nil {
			connectedHuman = s
		}
		if !s.OriginalIsBot && anyHuman == nil {
			anyHuman = s
		}
		if s.IsBot && anyBot == nil {
			anyBot = s
		}
	}

	var newHost *Seat
	switch {
	case connectedHuman != nil:
		newHost = connectedHuman
	case anyHuman != nil:
		newHost = anyHuman
	case anyBot != nil:
		newHost = anyBot
	}

	if newHost == nil {
		r.hostName = ""
		return ""
	}
	r.hostName = newHost.Name
	return newHost.Name
}

// MarkDisconnected flips a seat to disconnected and, for a human seat,
// converts it to a bot so the driver loop never stalls waiting on an
// action that will never arrive (§4.9). OriginalIsBot is left untouched so
// reconnection can tell a human seat apart from a seat that started as a
// bot. Returns false if name has no seat.
func (r *Room) MarkDisconnected(name types.PlayerName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			s.IsConnected = false
			s.DisconnectTime = time.Now()
			s.IsBot = true
			return true
		}
	}
	return false
}

// MarkReconnected flips a seat back to connected and, if it started out
// human, hands control back from the bot stand-in (§4.9). Returns false if
// name has no seat or the seat was never a human to begin with.
func (r *Room) MarkReconnected(name types.PlayerName) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.seats {
		if s != nil && s.Name == name {
			if s.OriginalIsBot {
				return false
			}
			s.IsConnected = true
			s.IsBot = false
			s.DisconnectTime = time.Time{}
			return true
		}
	}
	return false
}
