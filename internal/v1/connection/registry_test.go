package connection

import (
	"testing"

	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/stretchr/testify/assert"
)

func TestRegister_IdempotentSameTransport(t *testing.T) {
	reg := New()
	reg.Register("t1", "ROOM01", "alice")
	reg.Register("t1", "ROOM01", "alice")

	assert.Equal(t, 1, reg.Count())
	id, ok := reg.LookupTransport("ROOM01", "alice")
	assert.True(t, ok)
	assert.Equal(t, types.ClientIDType("t1"), id)
}

func TestRegister_NewTransportReplacesOldForSameSeat(t *testing.T) {
	reg := New()
	reg.Register("t1", "ROOM01", "alice")
	reg.Register("t2", "ROOM01", "alice")

	id, ok := reg.LookupTransport("ROOM01", "alice")
	assert.True(t, ok)
	assert.Equal(t, types.ClientIDType("t2"), id)

	_, ok = reg.LookupEntry("t1")
	assert.False(t, ok, "stale transport binding must be cleared")
}

func TestOnDisconnect_RoundTrip(t *testing.T) {
	reg := New()
	reg.Register("t1", "ROOM01", "alice")

	entry, ok := reg.OnDisconnect("t1")
	assert.True(t, ok)
	assert.Equal(t, types.RoomIDType("ROOM01"), entry.RoomID)
	assert.Equal(t, types.PlayerName("alice"), entry.PlayerName)

	_, ok = reg.LookupTransport("ROOM01", "alice")
	assert.False(t, ok)
	assert.Equal(t, 0, reg.Count())
}

func TestOnDisconnect_UnknownTransport(t *testing.T) {
	reg := New()
	_, ok := reg.OnDisconnect("ghost")
	assert.False(t, ok)
}

func TestRegister_ReconnectSameName(t *testing.T) {
	reg := New()
	reg.Register("t1", "ROOM01", "alice")
	_, _ = reg.OnDisconnect("t1")

	reg.Register("t2", "ROOM01", "alice")
	id, ok := reg.LookupTransport("ROOM01", "alice")
	assert.True(t, ok)
	assert.Equal(t, types.ClientIDType("t2"), id)
}

func TestLookupTransport_DifferentRoomsSameName(t *testing.T) {
	reg := New()
	reg.Register("t1", "ROOM01", "alice")
	reg.Register("t2", "ROOM02", "alice")

	id1, ok := reg.LookupTransport("ROOM01", "alice")
	assert.True(t, ok)
	assert.Equal(t, types.ClientIDType("t1"), id1)

	id2, ok := reg.LookupTransport("ROOM02", "alice")
	assert.True(t, ok)
	assert.Equal(t, types.ClientIDType("t2"), id2)
}
