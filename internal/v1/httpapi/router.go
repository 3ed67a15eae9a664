// Package httpapi wires the process's gin router: health probes, the
// lobby's room listing/stats surface, the WebSocket upgrade route, and
// metrics exposition. Game play itself never touches HTTP — this is purely
// discovery and operational surface (SUPPLEMENTED FEATURES: room listing &
// stats, health liveness/readiness split).
package httpapi

import (
	"net/http"

	"github.com/andynenth/liap-tui-server/internal/v1/health"
	"github.com/andynenth/liap-tui-server/internal/v1/middleware"
	"github.com/andynenth/liap-tui-server/internal/v1/ratelimit"
	"github.com/andynenth/liap-tui-server/internal/v1/supervisor"
	"github.com/andynenth/liap-tui-server/internal/v1/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// roomHub is the narrow view of transport.Hub the router needs for the
// WebSocket upgrade route, kept as an interface so httpapi never imports
// transport (transport already imports supervisor; this avoids a cycle).
type roomHub interface {
	ServeWs(c *gin.Context)
}

// New builds the process's gin.Engine with every route this server
// exposes (§6, SUPPLEMENTED FEATURES).
func New(sup *supervisor.Supervisor, hub roomHub, rateLimiter *ratelimit.RateLimiter, allowedOrigins []string, version string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CorrelationID())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Origin", "Content-Type", middleware.HeaderXCorrelationID},
		AllowCredentials: true,
	}))

	healthHandler := health.NewHandler(sup, version)
	r.GET("/health/live", healthHandler.Liveness)
	r.GET("/health/ready", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	rooms := r.Group("/rooms")
	rooms.GET("", listRooms(sup))
	rooms.GET("/:roomId/stats", roomStats(sup))
	rooms.GET("/:roomId/events", roomEvents(sup))

	wsGroup := r.Group("/ws")
	if rateLimiter != nil {
		wsGroup.Use(rateLimiter.ConnectionOpenMiddleware())
	}
	wsGroup.GET("", hub.ServeWs)

	return r
}

func listRooms(sup *supervisor.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"rooms": sup.ListRooms()})
	}
}

func roomStats(sup *supervisor.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := types.RoomIDType(c.Param("roomId"))
		stats, ok := sup.RoomStats(roomID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

func roomEvents(sup *supervisor.Supervisor) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID := types.RoomIDType(c.Param("roomId"))
		events, ok := sup.RecentEvents(roomID)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}
