// Package transport implements the WebSocket connection lifecycle and the
// JSON envelope routing described in §6: one Hub per process, one Client
// per WebSocket, each incoming frame parsed into {action, data} and either
// handled inline (connection/lobby categories) or forwarded to a room's
// ActionQueue via the supervisor (room/game categories).
package transport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"

	"github.com/andynenth/liap-tui-server/internal/v1/config"
	"github.com/andynenth/liap-tui-server/internal/v1/connection"
	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/queue"
	"github.com/andynenth/liap-tui-server/internal/v1/ratelimit"
	"github.com/andynenth/liap-tui-server/internal/v1/room"
	"github.com/andynenth/liap-tui-server/internal/v1/supervisor"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// connectionActions never touch a room; they're answered directly off the
// registry/supervisor state (§6.1 "Connection" category).
var connectionActions = map[string]bool{
	"client_ready":  true,
	"ack":           true,
	"sync_request":  true,
	"ping":          true,
}

// lobbyActions create or discover rooms before a player is bound to one
// (§6.1 "Lobby" category).
var lobbyActions = map[string]bool{
	"create_room":       true,
	"join_room":         true,
	"request_room_list": true,
}

// roomRateLimited names the two action types that get their own per-type
// bucket (§5); everything else only pays the shared inbound bucket.
var roomRateLimited = map[string]bool{
	"declare": true,
	"play":    true,
}

// Hub is the single process-wide WebSocket coordinator. It implements
// broadcast.Sender by looking the destination Client up and writing to its
// send channel.
type Hub struct {
	upgrader    websocket.Upgrader
	supervisor  *supervisor.Supervisor
	registry    *connection.Registry
	rateLimiter *ratelimit.RateLimiter
	cfg         *config.Config

	mu      sync.RWMutex
	clients map[types.ClientIDType]*Client
}

// NewHub wires a Hub around the Registry and RateLimiter. The Supervisor is
// attached afterwards with SetSupervisor, since it is built with this Hub as
// its Sender (see cmd/server for the two-step construction this requires).
func NewHub(cfg *config.Config, registry *connection.Registry, rateLimiter *ratelimit.RateLimiter) *Hub {
	allowed := strings.Split(cfg.AllowedOrigins, ",")
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return originAllowed(r.Header.Get("Origin"), allowed)
			},
		},
		registry: registry,
		rateLimiter: rateLimiter,
		cfg:         cfg,
		clients:     make(map[types.ClientIDType]*Client),
	}
}

// SetSupervisor completes construction; split from NewHub because the
// Supervisor needs this Hub as its broadcast.Sender and the Hub needs the
// Supervisor to route actions, and Go has no forward declarations.
func (h *Hub) SetSupervisor(s *supervisor.Supervisor) {
	h.supervisor = s
}

func originAllowed(origin string, allowed []string) bool {
	if origin == "" {
		return true
	}
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

// Send implements broadcast.Sender.
func (h *Hub) Send(transportID types.ClientIDType, event game.Event) error {
	h.mu.RLock()
	client, ok := h.clients[transportID]
	h.mu.RUnlock()
	if !ok {
		return errClientGone
	}
	return client.deliver(event)
}

// ServeWs upgrades an HTTP request to a WebSocket connection (§6).
func (h *Hub) ServeWs(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Warn(c.Request.Context(), "websocket upgrade failed", zap.Error(err))
		return
	}

	id := types.ClientIDType(uuid.New().String())
	client := newClient(conn, id, h)

	h.mu.Lock()
	h.clients[id] = client
	h.mu.Unlock()

	metrics.IncConnection()
	logging.Info(c.Request.Context(), "client connected", zap.String("transport_id", string(id)))

	go client.writePump()
	go client.readPump()
	client.sendEvent("connected", map[string]any{"transport_id": string(id)})
}

// route dispatches one parsed action to the right handler category.
func (h *Hub) route(c *Client, action string, data map[string]any) {
	ctx := context.Background()

	if h.rateLimiter != nil && !h.rateLimiter.CheckInbound(ctx, string(c.ID)) {
		c.sendError("rate_limited", "too many messages")
		return
	}

	switch {
	case connectionActions[action]:
		h.handleConnectionAction(ctx, c, action, data)
	case lobbyActions[action]:
		h.handleLobbyAction(ctx, c, action, data)
	default:
		h.handleRoomAction(ctx, c, action, data)
	}
}

// onDisconnect implements Router; called from Client.readPump's deferred
// cleanup once the socket is gone.
func (h *Hub) onDisconnect(c *Client) {
	h.mu.Lock()
	delete(h.clients, c.ID)
	h.mu.Unlock()

	h.supervisor.HandleDisconnect(context.Background(), c.ID)
}

func (h *Hub) handleConnectionAction(ctx context.Context, c *Client, action string, data map[string]any) {
	switch action {
	case "ping":
		c.sendEvent("pong", map[string]any{})

	case "ack":
		// No response required; acknowledges a previously delivered event.

	case "client_ready":
		name, _ := data["player_name"].(string)
		if name == "" {
			c.sendError("invalid_request", "player_name is required")
			return
		}
		if _, ok := h.registry.LookupEntry(c.ID); ok {
			c.sendEvent("ready_ack", map[string]any{})
			return
		}
		roomID, _, err := h.supervisor.HandleReconnect(ctx, c.ID, types.PlayerName(name))
		if err != nil {
			c.sendError("not_found", "no disconnected seat found for that name")
			return
		}
		logging.Info(ctx, "client reconnected", zap.String("room_id", string(roomID)), zap.String("player", name))

	case "sync_request":
		entry, ok := h.registry.LookupEntry(c.ID)
		if !ok {
			c.sendError("invalid_request", "not bound to a room")
			return
		}
		snap, ok := h.supervisor.Snapshot(entry.RoomID)
		if !ok {
			c.sendError("not_found", "room no longer exists")
			return
		}
		c.sendEvent("phase_change", snap)
	}
}

func (h *Hub) handleLobbyAction(ctx context.Context, c *Client, action string, data map[string]any) {
	switch action {
	case "create_room":
		name, _ := data["host_name"].(string)
		roomID, slot, err := h.supervisor.CreateRoom(ctx, types.PlayerName(name))
		if err != nil {
			c.sendError(errCode(err), err.Error())
			return
		}
		h.registry.Register(c.ID, roomID, types.PlayerName(name))
		c.sendEvent("room_created", map[string]any{"room_id": string(roomID), "seat": int(slot)})

	case "join_room":
		roomIDStr, _ := data["room_id"].(string)
		name, _ := data["player_name"].(string)
		roomID := types.RoomIDType(roomIDStr)
		slot, err := h.supervisor.JoinRoom(ctx, roomID, types.PlayerName(name))
		if err != nil {
			c.sendError(errCode(err), err.Error())
			return
		}
		h.registry.Register(c.ID, roomID, types.PlayerName(name))
		c.sendEvent("room_joined", map[string]any{"room_id": string(roomID), "seat": int(slot)})

	case "request_room_list":
		c.sendEvent("room_list_update", map[string]any{"rooms": h.supervisor.ListRooms()})
	}
}

// handleRoomAction covers the Room and Game categories (§6.1): everything
// that must go through the single-consumer ActionQueue for the caller's
// bound room, plus the one read-only exception (get_room_state).
func (h *Hub) handleRoomAction(ctx context.Context, c *Client, action string, data map[string]any) {
	entry, ok := h.registry.LookupEntry(c.ID)
	if !ok {
		c.sendError("invalid_request", "not bound to a room")
		return
	}

	if action == "get_room_state" {
		snap, ok := h.supervisor.Snapshot(entry.RoomID)
		if !ok {
			c.sendError("not_found", "room no longer exists")
			return
		}
		c.sendEvent("phase_change", snap)
		return
	}

	if action == "player_ready" {
		// Acknowledged at the transport layer only — no phase currently
		// expects this as a game action (it is not part of any phase's
		// AllowedActions set).
		c.sendEvent("ready_ack", map[string]any{})
		return
	}

	if h.rateLimiter != nil && roomRateLimited[action] {
		var limited bool
		switch action {
		case "declare":
			limited = !h.rateLimiter.CheckDeclare(ctx, string(c.ID))
		case "play":
			limited = !h.rateLimiter.CheckPlay(ctx, string(c.ID))
		}
		if limited {
			c.sendError("rate_limited", "too many "+action+" actions")
			return
		}
	}

	_, ok = h.supervisor.Enqueue(entry.RoomID, queue.Action{
		Type:       queue.ActionType(action),
		PlayerName: entry.PlayerName,
		Payload:    data,
	})
	if !ok {
		c.sendError("not_found", "room no longer exists")
	}
}

// errCode extracts a stable wire error code from a room/supervisor error,
// falling back to a generic code for plain errors.
func errCode(err error) string {
	if re, ok := err.(*room.Error); ok {
		return re.Code
	}
	switch err {
	case supervisor.ErrRoomNotFound, supervisor.ErrSeatNotFound:
		return "not_found"
	case supervisor.ErrNotAccepting:
		return "server_unavailable"
	default:
		return "invalid_request"
	}
}

var errClientGone = errors.New("transport no longer connected")
