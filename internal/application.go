package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-online/internal/config"
	"github.com/rocketscienceinc/tictactoe-online/internal/repository"
	"github.com/rocketscienceinc/tictactoe-online/internal/transport/rest"
	"github.com/rocketscienceinc/tictactoe-online/internal/transport/websocket"
	"github.com/rocketscienceinc/tictactoe-online/internal/usecase"
)

const shutdownTimeout = 5 * time.Second

var ErrAddrNotFound = errors.New("redis address string is empty")

// RunApp - runs the application until SIGINT/SIGTERM or a fatal server error.
func RunApp(logger *slog.Logger, conf *config.Config) error {
	log := logger.With("component", "app")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	redisAddrString := conf.Redis.GetRedisAddr()
	if conf.Redis.Host == "" {
		return ErrAddrNotFound
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: redisAddrString,
		DB:   conf.Redis.DB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("could not connect to redis storage: %w", err)
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Error("could not close redis storage", "error", err)
		}
	}()

	roomRepo := repository.NewRoomRepository(redisClient)
	publisher := usecase.NewSnapshotPublisher(logger, roomRepo, 0)

	hub := websocket.NewHub(logger, conf.WebSocket.SendBuffer)
	roomManager := usecase.NewRoomManager(logger, hub, publisher, usecase.RoomManagerOptions{
		CodeLength:      conf.Rooms.CodeLength,
		MaxCodeAttempts: conf.Rooms.MaxCodeAttempts,
	})
	wsServer := websocket.New(logger, hub, roomManager, websocket.Options{
		WriteTimeout:   conf.WebSocket.WriteTimeout,
		AllowedOrigins: conf.WebSocket.AllowedOrigins,
	})

	srv := &http.Server{
		Addr: ":" + conf.HTTPPort,
		Handler: rest.NewRouter(rest.RouterConfig{
			Logger:    logger,
			Rooms:     roomRepo,
			WebSocket: wsServer,
		}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       30 * time.Second,
	}

	// run snapshot publisher
	publisherErrCh := make(chan error, 1)
	go func() {
		if err := publisher.Run(ctx); err != nil {
			log.Error("snapshot publisher error", "error", err)
			publisherErrCh <- err
		}
	}()

	// run HTTP server
	httpErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", conf.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
			httpErrCh <- err
		}
	}()

	var runErr error
	select {
	case err := <-httpErrCh:
		runErr = fmt.Errorf("HTTP server error: %w", err)
	case err := <-publisherErrCh:
		runErr = fmt.Errorf("snapshot publisher error: %w", err)
	case <-ctx.Done():
		log.Info("Application context canceled, shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shut down HTTP server", "error", err)
	}

	wsServer.Shutdown()
	roomManager.Close()

	return runErr
}
