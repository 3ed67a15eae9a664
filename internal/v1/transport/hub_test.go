package transport

import (
	"testing"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/bot"
	"github.com/andynenth/liap-tui-server/internal/v1/config"
	"github.com/andynenth/liap-tui-server/internal/v1/connection"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/supervisor"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testHub(t *testing.T) (*Hub, *supervisor.Supervisor) {
	cfg := &config.Config{
		AllowedOrigins:     "*",
		MessageQueueCap:    16,
		EventLogRingCap:    8,
		RoomCleanupGrace:   50 * time.Millisecond,
		BotDeclareDelayMin: time.Millisecond,
		BotDeclareDelayMax: 2 * time.Millisecond,
		BotRedealDelayMin:  time.Millisecond,
		BotRedealDelayMax:  2 * time.Millisecond,
	}
	registry := connection.New()
	hub := NewHub(cfg, registry, nil)
	sup := supervisor.New(cfg, registry, hub, rules.DefaultEngine{}, bot.DefaultStrategy{Engine: rules.DefaultEngine{}})
	hub.SetSupervisor(sup)
	return hub, sup
}

func TestHub_CreateRoomThenJoin(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, sup := testHub(t)
	defer sup.Shutdown(t.Context())

	conn := &fakeConn{}
	host := newClient(conn, types.ClientIDType("host"), hub)

	hub.route(host, "create_room", map[string]any{"host_name": "alice"})
	require.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) >= 1
	}, time.Second, 5*time.Millisecond)

	entry, ok := hub.registry.LookupEntry("host")
	require.True(t, ok)
	assert.Equal(t, types.PlayerName("alice"), entry.PlayerName)

	guestConn := &fakeConn{}
	guest := newClient(guestConn, types.ClientIDType("guest"), hub)
	hub.route(guest, "join_room", map[string]any{"room_id": string(entry.RoomID), "player_name": "bob"})

	require.Eventually(t, func() bool {
		guestConn.mu.Lock()
		defer guestConn.mu.Unlock()
		return len(guestConn.written) >= 1
	}, time.Second, 5*time.Millisecond)

	stats, ok := sup.RoomStats(entry.RoomID)
	require.True(t, ok)
	assert.Equal(t, 2, stats.SeatCount)
}

func TestHub_RoomActionWithoutBindingErrors(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())
	hub, sup := testHub(t)
	defer sup.Shutdown(t.Context())

	conn := &fakeConn{}
	c := newClient(conn, types.ClientIDType("lonely"), hub)

	hub.route(c, "declare", map[string]any{"value": 2})

	require.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) >= 1
	}, time.Second, 5*time.Millisecond)
}
