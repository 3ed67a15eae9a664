// Package metrics declares all Prometheus metrics for the server, kept
// together to avoid coupling business packages to the registry.
//
// Naming convention: namespace_subsystem_name
// - namespace: liaptui (application-level grouping)
// - subsystem: room, action, broadcast, bot, websocket, rate_limit (feature grouping)
// - name: specific metric
//
// Metric types:
// - Gauge: current state (active rooms, connections)
// - Counter: cumulative events (actions processed, rejected)
// - Histogram: latency distributions (phase handle duration, broadcast fan-out)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveRooms tracks the current number of live rooms.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "liaptui",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// ActiveConnections tracks the current number of open WebSocket connections.
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "liaptui",
		Subsystem: "websocket",
		Name:      "connections_active",
		Help:      "Current number of active WebSocket connections",
	})

	// BotSeats tracks the current number of bot-controlled seats across all rooms.
	BotSeats = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "liaptui",
		Subsystem: "room",
		Name:      "bot_seats_active",
		Help:      "Current number of bot-controlled seats",
	})

	// RoomPlayers tracks the number of filled seats per room.
	RoomPlayers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "liaptui",
		Subsystem: "room",
		Name:      "players_count",
		Help:      "Number of filled seats in each room",
	}, []string{"room_id"})

	// ActionsProcessed counts actions accepted or rejected by a phase handler.
	ActionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liaptui",
		Subsystem: "action",
		Name:      "processed_total",
		Help:      "Total actions dequeued and handled, by type and result",
	}, []string{"action_type", "result"})

	// ActionQueueDepth tracks the current number of actions waiting in a room's queue.
	ActionQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "liaptui",
		Subsystem: "action",
		Name:      "queue_depth",
		Help:      "Current depth of a room's action queue",
	}, []string{"room_id"})

	// PhaseHandleDuration tracks how long a phase takes to handle one action.
	PhaseHandleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liaptui",
		Subsystem: "action",
		Name:      "handle_duration_seconds",
		Help:      "Time spent inside PhaseState.handle",
		Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25},
	}, []string{"phase"})

	// BroadcastFanout counts per-recipient broadcast outcomes.
	BroadcastFanout = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liaptui",
		Subsystem: "broadcast",
		Name:      "fanout_total",
		Help:      "Total per-recipient broadcast attempts, by outcome",
	}, []string{"outcome"})

	// BroadcastDuration tracks the wall time to fan an event out to a room.
	BroadcastDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "liaptui",
		Subsystem: "broadcast",
		Name:      "duration_seconds",
		Help:      "Time spent fanning one event out to a room",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// MessageQueueDrops counts events dropped on MessageQueue overflow.
	MessageQueueDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liaptui",
		Subsystem: "broadcast",
		Name:      "queue_drops_total",
		Help:      "Total events dropped from a disconnected seat's message queue on overflow",
	}, []string{"room_id"})

	// BotIntents counts bot intents by outcome: enqueued, cancelled (phase
	// changed during the think delay) or breaker_rejected (strategy call failed).
	BotIntents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liaptui",
		Subsystem: "bot",
		Name:      "intents_total",
		Help:      "Total bot intents, by outcome (enqueued, cancelled, breaker_rejected)",
	}, []string{"outcome"})

	// BotBreakerState tracks the bot strategy circuit breaker state per room.
	// 0: closed, 1: open, 2: half-open.
	BotBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "liaptui",
		Subsystem: "bot",
		Name:      "breaker_state",
		Help:      "Circuit breaker state guarding BotStrategy.ChooseAction (0=closed,1=open,2=half-open)",
	}, []string{"room_id"})

	// RateLimitExceeded counts requests rejected by the rate limiter.
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liaptui",
		Subsystem: "rate_limit",
		Name:      "exceeded_total",
		Help:      "Total requests that exceeded a rate limit bucket",
	}, []string{"bucket"})

	// RateLimitRequests counts requests checked against the rate limiter.
	RateLimitRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "liaptui",
		Subsystem: "rate_limit",
		Name:      "requests_total",
		Help:      "Total requests checked against a rate limit bucket",
	}, []string{"bucket"})
)

// IncConnection records a new WebSocket connection.
func IncConnection() {
	ActiveConnections.Inc()
}

// DecConnection records a closed WebSocket connection.
func DecConnection() {
	ActiveConnections.Dec()
}
