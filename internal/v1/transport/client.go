package transport

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/game"
	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 64
)

// wsConnection is the narrow surface Client needs from *websocket.Conn,
// kept as an interface so tests can fake the wire without a real socket.
type wsConnection interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(string) error)
}

// inboundEnvelope is the client->server wire shape (§6.1).
type inboundEnvelope struct {
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

// outboundEnvelope is the server->client wire shape (§6.1). Data carries
// sequence inline for critical events per §6.2; omitted (zero) otherwise.
type outboundEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one WebSocket connection: a read loop that turns frames into
// router calls, and a write loop that serializes outbound events without
// letting a slow client block the broadcaster (§4.8, §6).
type Client struct {
	conn   wsConnection
	ID     types.ClientIDType
	router Router

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

// Router is satisfied by *Hub; split out so Client doesn't need the whole
// Hub type to compile or be tested.
type Router interface {
	route(c *Client, action string, data map[string]any)
	onDisconnect(c *Client)
}

func newClient(conn wsConnection, id types.ClientIDType, router Router) *Client {
	return &Client{conn: conn, ID: id, router: router, send: make(chan []byte, sendBufferSize)}
}

// enqueue puts payload on the client's send buffer without blocking; it
// returns false if the client is closed or the buffer is full.
func (c *Client) enqueue(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.conn.Close()
}

func (c *Client) readPump() {
	defer func() {
		c.router.onDisconnect(c)
		c.close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var env inboundEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			c.sendError("invalid_request", "malformed message envelope")
			continue
		}
		c.router.route(c, env.Action, env.Data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) sendEvent(eventType string, data any) {
	payload, err := json.Marshal(outboundEnvelope{Event: eventType, Data: data})
	if err != nil {
		logging.Error(nil, "failed to marshal outbound event", zap.String("event_type", eventType), zap.Error(err))
		return
	}
	if !c.enqueue(payload) {
		metrics.BroadcastFanout.WithLabelValues("dropped_full_buffer").Inc()
	}
}

func (c *Client) sendError(code, message string) {
	c.sendEvent("error", map[string]any{"code": code, "message": message})
}

// deliver writes one game.Event as an outbound envelope, inlining the
// sequence number per §6.2.
func (c *Client) deliver(event game.Event) error {
	data := map[string]any{}
	for k, v := range event.Data {
		data[k] = v
	}
	if event.Sequence > 0 {
		data["sequence"] = event.Sequence
	}
	c.sendEvent(event.Type, data)
	return nil
}
