package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lalith-99/roomcast/internal/api"
	"github.com/lalith-99/roomcast/internal/config"
	"github.com/lalith-99/roomcast/internal/observ"
	"github.com/lalith-99/roomcast/internal/repository/kv"
	"github.com/lalith-99/roomcast/internal/store"
	"github.com/lalith-99/roomcast/internal/sweeper"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// Startup has no parent deadline; "take as long as you need to connect"
	// is the right behavior here. Requests get their own contexts later.
	kvStore, err := store.NewRedisStore(context.Background(), cfg.RedisURL, logger)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer kvStore.Close()

	messages := kv.NewMessageStore(kvStore, cfg.MessageRetention, logger)
	users := kv.NewPresenceStore(kvStore, cfg.OnlineThreshold, cfg.UserMaxAge, logger)
	rooms := kv.NewRoomStore(kvStore, messages, logger)
	accounts := kv.NewAccountStore(kvStore, logger)

	// First boot on an empty store gets the canonical public room, so a
	// client never polls into a world with nowhere to post.
	if _, err := rooms.EnsureDefaultRoom(context.Background()); err != nil {
		return fmt.Errorf("ensure default room: %w", err)
	}

	sweep := sweeper.New(rooms, messages, users, cfg.SweepInterval, logger)

	router := api.NewRouter(api.Deps{
		Store:    kvStore,
		Messages: messages,
		Users:    users,
		Rooms:    rooms,
		Accounts: accounts,
		Sweeper:  sweep,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting roomcast",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
		)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
