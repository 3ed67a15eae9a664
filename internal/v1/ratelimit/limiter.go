// Package ratelimit implements transport-boundary throttling using Redis or
// local memory as the token-bucket store. This is boundary protection only
// (§5): it never touches game state and has no notion of a user account.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/config"
	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/metrics"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

// RateLimiter holds the transport-boundary token buckets described in §5:
// per-IP connection opens, per-connection inbound messages, and
// per-event-type buckets for the two actions most worth throttling.
type RateLimiter struct {
	connOpen    *limiter.Limiter
	inbound     *limiter.Limiter
	declare     *limiter.Limiter
	play        *limiter.Limiter
	store       limiter.Store
	redisClient *redis.Client
}

// NewRateLimiter builds a RateLimiter from cfg. redisClient may be nil, in
// which case buckets fall back to an in-memory store.
func NewRateLimiter(cfg *config.Config, redisClient *redis.Client) (*RateLimiter, error) {
	connOpenRate, err := limiter.NewRateFromFormatted(cfg.RateLimitConnOpen)
	if err != nil {
		return nil, fmt.Errorf("invalid connection-open rate: %w", err)
	}
	inboundRate, err := limiter.NewRateFromFormatted(cfg.RateLimitInbound)
	if err != nil {
		return nil, fmt.Errorf("invalid inbound-message rate: %w", err)
	}
	declareRate, err := limiter.NewRateFromFormatted(cfg.RateLimitDeclare)
	if err != nil {
		return nil, fmt.Errorf("invalid declare rate: %w", err)
	}
	playRate, err := limiter.NewRateFromFormatted(cfg.RateLimitPlay)
	if err != nil {
		return nil, fmt.Errorf("invalid play rate: %w", err)
	}

	var store limiter.Store
	if redisClient != nil {
		s, err := sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: "liaptui:ratelimit:"})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis store: %w", err)
		}
		store = s
		logging.Info(context.Background(), "rate limiter using redis store")
	} else {
		store = memory.NewStore()
		logging.Warn(context.Background(), "rate limiter using in-memory store (no redis client)")
	}

	return &RateLimiter{
		connOpen:    limiter.New(store, connOpenRate),
		inbound:     limiter.New(store, inboundRate),
		declare:     limiter.New(store, declareRate),
		play:        limiter.New(store, playRate),
		store:       store,
		redisClient: redisClient,
	}, nil
}

// ConnectionOpenMiddleware enforces the per-IP connection-open bucket ahead
// of the WebSocket upgrade handshake.
func (rl *RateLimiter) ConnectionOpenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		lctx, err := rl.connOpen.Get(ctx, c.ClientIP())
		if err != nil {
			logging.Error(ctx, "rate limiter store failed", zap.Error(err))
			c.Next()
			return
		}

		metrics.RateLimitRequests.WithLabelValues("connection_open").Inc()
		c.Header("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))

		if lctx.Reached {
			metrics.RateLimitExceeded.WithLabelValues("connection_open").Inc()
			c.Header("Retry-After", strconv.FormatInt(lctx.Reset-time.Now().Unix(), 10))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many connection attempts"})
			return
		}

		c.Next()
	}
}

// CheckInbound enforces the per-connection inbound-message bucket. Call once
// per parsed frame, keyed by the connection's transport id.
func (rl *RateLimiter) CheckInbound(ctx context.Context, clientID string) bool {
	return rl.checkBucket(ctx, rl.inbound, "inbound_message", clientID)
}

// CheckDeclare enforces the per-event-type bucket for declare actions.
func (rl *RateLimiter) CheckDeclare(ctx context.Context, clientID string) bool {
	return rl.checkBucket(ctx, rl.declare, "declare", clientID)
}

// CheckPlay enforces the per-event-type bucket for play actions.
func (rl *RateLimiter) CheckPlay(ctx context.Context, clientID string) bool {
	return rl.checkBucket(ctx, rl.play, "play", clientID)
}

func (rl *RateLimiter) checkBucket(ctx context.Context, l *limiter.Limiter, bucket, key string) bool {
	lctx, err := l.Get(ctx, key)
	if err != nil {
		logging.Error(ctx, "rate limiter store failed", zap.Error(err), zap.String("bucket", bucket))
		return true // fail open: availability over strict enforcement
	}

	metrics.RateLimitRequests.WithLabelValues(bucket).Inc()
	if lctx.Reached {
		metrics.RateLimitExceeded.WithLabelValues(bucket).Inc()
		return false
	}
	return true
}
