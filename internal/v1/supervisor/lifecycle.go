package supervisor

import (
	"context"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"go.uber.org/zap"
)

// HandleDisconnect is called by the transport layer when a connection's
// read loop exits. It looks up which (room, player) transportID belonged
// to, converts that seat to a bot stand-in, runs host migration if the
// departing player was host, and broadcasts the resulting player_disconnected
// / host_changed facts (§4.9). This mutates Room state directly rather than
// going through the ActionQueue: connection lifecycle is phase-independent
// by design, so it sits above the driver loop rather than inside it.
func (s *Supervisor) HandleDisconnect(ctx context.Context, transportID types.ClientIDType) {
	entry, ok := s.registry.OnDisconnect(transportID)
	if !ok {
		return
	}
	metrics.DecConnection()

	e, ok := s.lookup(entry.RoomID)
	if !ok {
		return
	}
	if !e.room.MarkDisconnected(entry.PlayerName) {
		return
	}
	metrics.BotSeats.Inc()
	logging.Info(ctx, "seat disconnected, converted to bot",
		zap.String("room_id", string(entry.RoomID)), zap.String("player", string(entry.PlayerName)))

	events := []game.Event{{Type: "player_disconnected", Data: map[string]any{"player_name": string(entry.PlayerName), "players": e.game.Snapshot().Players}}}
	if wasHost := e.room.HostName() == entry.PlayerName; wasHost {
		newHost := e.room.MigrateHost()
		events = append(events, game.Event{Type: "host_changed", Data: map[string]any{"host_name": string(newHost)}})
	}
	e.broadcaster.Broadcast(entry.RoomID, events)

	if !e.room.HasAnyHumans() {
		// §4.9 step 4 / scenario S5: the last human just left. Destroy the
		// room immediately, not after a grace period — a grace period here
		// would let a subsequent join_room wrongly resurrect an abandoned
		// room instead of getting room_not_found.
		s.destroyRoomNow(entry.RoomID, e, "all_players_disconnected")
		return
	}

	s.wakeBotActorForDisconnectedSeat(ctx, e, entry.PlayerName)
}

// wakeBotActorForDisconnectedSeat nudges the room's BotActor in case the
// phase was already waiting on the seat that just became a bot (otherwise
// it would never act until the next unrelated phase transition).
func (s *Supervisor) wakeBotActorForDisconnectedSeat(ctx context.Context, e *entry, seat types.PlayerName) {
	botSeats := e.game.BotSeatsAwaitingAction()
	for _, name := range botSeats {
		if name == seat {
			e.actor.OnPhaseChange(ctx, e.game.Snapshot().Phase, e.game.TurnNumber, []types.PlayerName{seat})
			return
		}
	}
}

// HandleReconnect implements §6.2's client_ready reconnection path: since
// the envelope carries only a player_name and not a room_id, every live
// room is scanned for a disconnected human seat with that name. Returns
// the room id and seat the player was restored to, and registers the new
// transport binding.
func (s *Supervisor) HandleReconnect(ctx context.Context, transportID types.ClientIDType, playerName types.PlayerName) (types.RoomIDType, types.SeatIndex, error) {
	s.mu.Lock()
	var target *entry
	var targetID types.RoomIDType
	for id, e := range s.rooms {
		if idx, seat := e.room.FindSeat(playerName); seat != nil && idx.Valid() && !seat.IsConnected && !seat.OriginalIsBot {
			target = e
			targetID = id
			break
		}
	}
	s.mu.Unlock()

	if target == nil {
		return "", types.NoSeat, ErrSeatNotFound
	}

	s.cancelPendingCleanup(targetID)

	if !target.room.MarkReconnected(playerName) {
		return "", types.NoSeat, ErrSeatNotFound
	}
	metrics.BotSeats.Dec()
	metrics.IncConnection()
	s.registry.Register(transportID, targetID, playerName)

	idx, _ := target.room.FindSeat(playerName)

	target.broadcaster.DeliverQueuedThenResume(targetID, playerName, transportID)
	events := []game.Event{{Type: "player_reconnected", Data: map[string]any{"player_name": string(playerName), "players": target.game.Snapshot().Players}}}
	target.broadcaster.Broadcast(targetID, events)

	logging.Info(ctx, "seat reconnected", zap.String("room_id", string(targetID)), zap.String("player", string(playerName)))
	return targetID, idx, nil
}

// HandleLeave processes an explicit leave_room request: any player may
// leave at any time (§4.2); it goes through the ActionQueue like every
// other game action so the driver applies it in total order with
// everything else, rather than being handled here directly.
func (s *Supervisor) HandleLeave(roomID types.RoomIDType, player types.PlayerName) bool {
	_, ok := s.Enqueue(roomID, queue.Action{Type: game.ActionLeaveRoom, PlayerName: player})
	return ok
}

// destroyRoomNow removes roomID from the live room map, broadcasts
// game_terminated with reason, and tears the room down, all without any
// grace period (§4.9 step 4). Distinct from the GameOver idle-cleanup grace
// period (§4.6.8), which is a different case: here there is no one left to
// show a delayed teardown to.
func (s *Supervisor) destroyRoomNow(roomID types.RoomIDType, e *entry, reason string) {
	s.mu.Lock()
	if _, ok := s.rooms[roomID]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, roomID)
	if timer, ok := s.cleanupTimers[roomID]; ok {
		timer.Stop()
		delete(s.cleanupTimers, roomID)
	}
	s.mu.Unlock()

	e.broadcaster.Broadcast(roomID, []game.Event{{Type: "game_terminated", Data: map[string]any{"reason": reason}}})
	s.teardownRoom(roomID, e)
}

// scheduleGameOverCleanup arms the post-GameOver grace-period timer
// (§4.6.8): GameOver accepts nothing but leave_room, so once the window
// elapses without the room having been destroyed some other way (e.g. the
// last player disconnecting, handled immediately by destroyRoomNow) it is
// torn down unconditionally.
func (s *Supervisor) scheduleGameOverCleanup(roomID types.RoomIDType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.cleanupTimers[roomID]; exists {
		return
	}
	grace := s.cfg.RoomCleanupGrace
	s.cleanupTimers[roomID] = time.AfterFunc(grace, func() {
		s.destroyGameOverRoom(roomID)
	})
}

func (s *Supervisor) cancelPendingCleanup(roomID types.RoomIDType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if timer, ok := s.cleanupTimers[roomID]; ok {
		timer.Stop()
		delete(s.cleanupTimers, roomID)
	}
}

func (s *Supervisor) destroyGameOverRoom(roomID types.RoomIDType) {
	s.mu.Lock()
	delete(s.cleanupTimers, roomID)
	e, ok := s.rooms[roomID]
	if !ok {
		s.mu.Unlock()
		return
	}
	delete(s.rooms, roomID)
	s.mu.Unlock()

	e.broadcaster.Broadcast(roomID, []game.Event{{Type: "room_closed", Data: map[string]any{"reason": "game_over_grace_expired"}}})
	s.teardownRoom(roomID, e)
}

// teardownRoom stops the driver loop, closes the action queue, and drops
// the message queue's buffered state for roomID.
func (s *Supervisor) teardownRoom(roomID types.RoomIDType, e *entry) {
	if e.cancel != nil {
		e.cancel()
	}
	e.actions.Close()
	s.messageQueue.DestroyRoom(roomID)
	metrics.ActiveRooms.Dec()
	metrics.RoomPlayers.DeleteLabelValues(string(roomID))
	logging.Info(context.Background(), "room destroyed", zap.String("room_id", string(roomID)))
}

// Shutdown stops accepting new rooms and tears every live room's driver
// loop down, mirroring the teacher's graceful-shutdown Hub.Shutdown.
func (s *Supervisor) Shutdown(ctx context.Context) {
	s.mu.Lock()
	s.accepting = false
	for _, timer := range s.cleanupTimers {
		timer.Stop()
	}
	s.cleanupTimers = make(map[types.RoomIDType]*time.Timer)
	rooms := make(map[types.RoomIDType]*entry, len(s.rooms))
	for id, e := range s.rooms {
		rooms[id] = e
	}
	s.rooms = make(map[types.RoomIDType]*entry)
	s.mu.Unlock()

	for id, e := range rooms {
		s.teardownRoom(id, e)
	}
}
