// Package main provides the lobby server binary: a WebSocket matchmaking
// backend with a read-only HTTP inspection surface.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/duelyard/lobby/internal/config"
	"github.com/duelyard/lobby/internal/inspect"
	"github.com/duelyard/lobby/internal/lobby"
	"github.com/duelyard/lobby/internal/observability"
	"github.com/duelyard/lobby/internal/server"
	"github.com/duelyard/lobby/internal/transport/ws"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer observability.Sync(logger)

	logger.Info("starting lobby server",
		zap.String("addr", cfg.Server.Addr()),
	)

	identities := lobby.NewIdentityRegistry()
	rooms := lobby.NewRoomRegistry()

	hub := ws.NewHub(cfg.Websocket, logger)
	coord := lobby.NewCoordinator(identities, rooms, hub, logger)
	hub.Bind(coord)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	inspect.NewHandler(rooms, logger).Register(mux)

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	lifecycle := server.NewLifecycle(logger)

	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("http server listening",
				zap.String("addr", cfg.Server.Addr()),
			)
			if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
		},
	})

	lifecycle.Add("hub", &server.FuncService{
		StartFn: func() error {
			<-ctx.Done()
			return nil
		},
		StopFn: func() {
			hub.Stop()
		},
	})

	logger.Info("lobby server initialized",
		zap.Duration("startup", time.Since(start)),
		zap.String("addr", cfg.Server.Addr()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
