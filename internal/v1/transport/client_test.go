package transport

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn is an in-memory wsConnection double: writes are appended to
// written, reads drain a queue the test pre-loads.
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	toRead  [][]byte
	readPos int
	closed  bool
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readPos >= len(f.toRead) {
		return 0, nil, errConnClosed
	}
	msg := f.toRead[f.readPos]
	f.readPos++
	return 1, msg, nil // websocket.TextMessage == 1
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	f.written = append(f.written, cp)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) SetReadDeadline(time.Time) error  { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

type errConnClosedType struct{}

func (errConnClosedType) Error() string { return "connection closed" }

var errConnClosed = errConnClosedType{}

type fakeRouter struct {
	mu          sync.Mutex
	routed      []string
	disconnects int
}

func (r *fakeRouter) route(c *Client, action string, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routed = append(r.routed, action)
}

func (r *fakeRouter) onDisconnect(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnects++
}

func TestClient_ReadPump_RoutesParsedActions(t *testing.T) {
	conn := &fakeConn{toRead: [][]byte{
		[]byte(`{"action":"declare","data":{"value":3}}`),
	}}
	router := &fakeRouter{}
	c := newClient(conn, types.ClientIDType("t1"), router)

	c.readPump()

	router.mu.Lock()
	defer router.mu.Unlock()
	require.Len(t, router.routed, 1)
	assert.Equal(t, "declare", router.routed[0])
	assert.Equal(t, 1, router.disconnects)
}

func TestClient_ReadPump_MalformedEnvelopeSendsError(t *testing.T) {
	conn := &fakeConn{toRead: [][]byte{[]byte(`not json`)}}
	router := &fakeRouter{}
	c := newClient(conn, types.ClientIDType("t1"), router)

	done := make(chan struct{})
	go func() {
		c.readPump()
		close(done)
	}()
	go c.writePump()

	<-done
	require.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) >= 1
	}, time.Second, 5*time.Millisecond)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	var env outboundEnvelope
	require.NoError(t, json.Unmarshal(conn.written[0], &env))
	assert.Equal(t, "error", env.Event)
}

func TestClient_Deliver_InlinesSequenceForOutboundEvent(t *testing.T) {
	conn := &fakeConn{}
	router := &fakeRouter{}
	c := newClient(conn, types.ClientIDType("t1"), router)
	go c.writePump()
	defer c.close()

	err := c.deliver(game.Event{Sequence: 7, Type: "phase_change", Data: map[string]any{"phase": "turn"}})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		conn.mu.Lock()
		defer conn.mu.Unlock()
		return len(conn.written) >= 1
	}, time.Second, 5*time.Millisecond)

	conn.mu.Lock()
	defer conn.mu.Unlock()
	var env outboundEnvelope
	require.NoError(t, json.Unmarshal(conn.written[0], &env))
	assert.Equal(t, "phase_change", env.Event)
	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(7), data["sequence"])
}
