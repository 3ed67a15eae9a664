// Command server is the Liap Tui game server process entrypoint: it loads
// and validates configuration, wires the connection registry, bot
// strategy, rules engine, supervisor, and transport hub together, then
// serves HTTP/WebSocket traffic until an interrupt signal asks it to shut
// down gracefully.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/andynenth/liap-tui-server/internal/v1/bot"
	"github.com/andynenth/liap-tui-server/internal/v1/config"
	"github.com/andynenth/liap-tui-server/internal/v1/connection"
	"github.com/andynenth/liap-tui-server/internal/v1/httpapi"
	"github.com/andynenth/liap-tui-server/internal/v1/logging"
	"github.com/andynenth/liap-tui-server/internal/v1/ratelimit"
	"github.com/andynenth/liap-tui-server/internal/v1/rules"
	"github.com/andynenth/liap-tui-server/internal/v1/supervisor"
	"github.com/andynenth/liap-tui-server/internal/v1/transport"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	// No .env file is the common case in deployed environments; fall back
	// to real environment variables when it's missing.
	_ = godotenv.Load()

	cfg, err := config.ValidateEnv()
	if err != nil {
		panic(err)
	}

	if err := logging.Initialize(cfg.GoEnv != "production"); err != nil {
		panic(err)
	}
	ctx := context.Background()
	logging.Info(ctx, "starting liap-tui-server", zap.String("go_env", cfg.GoEnv), zap.String("port", cfg.Port))

	registry := connection.New()

	var redisClient *redis.Client
	if cfg.RedisEnabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer redisClient.Close()
	}

	rateLimiter, err := ratelimit.NewRateLimiter(cfg, redisClient)
	if err != nil {
		logging.Fatal(ctx, "failed to build rate limiter", zap.Error(err))
	}

	engine := rules.DefaultEngine{}
	strategy := bot.DefaultStrategy{Engine: engine}

	// Hub and Supervisor reference each other (Hub.Send needs the
	// supervisor's registry; Supervisor needs Hub as its broadcast.Sender),
	// so construction happens in two steps with NewHub before New.
	hub := transport.NewHub(cfg, registry, rateLimiter)
	sup := supervisor.New(cfg, registry, hub, engine, strategy)
	hub.SetSupervisor(sup)

	allowedOrigins := strings.Split(cfg.AllowedOrigins, ",")
	router := httpapi.New(sup, hub, rateLimiter, allowedOrigins, version)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logging.Info(ctx, "http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal(ctx, "http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info(ctx, "shutdown signal received, draining")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Error(ctx, "http server forced to shutdown", zap.Error(err))
	}
	sup.Shutdown(shutdownCtx)

	logging.Info(ctx, "server exited cleanly")
}
