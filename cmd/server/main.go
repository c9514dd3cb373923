package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"jutsuclash/battle"
	"jutsuclash/catalog"
	"jutsuclash/config"
	"jutsuclash/matchmaking"
	"jutsuclash/server"
	"jutsuclash/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := utils.GetEnvDefault("CONFIG", "server.toml")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Logging.Level)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetLogLoggerLevel(level)

	addr := utils.GetEnvDefault("ADDR", cfg.Server.Addr)
	port := utils.GetEnvDefault("PORT", cfg.Server.Port)

	// 術カタログ読み込み（未指定なら組み込み定義）
	var cat *catalog.Catalog
	if cfg.Catalog.Path != "" {
		cat, err = catalog.Load(cfg.Catalog.Path)
	} else {
		cat, err = catalog.Default()
	}
	if err != nil {
		log.Fatalf("catalog error: %v", err)
	}
	slog.InfoContext(ctx, "jutsu catalog loaded", "count", cat.Len())

	// ルーター・エンジン・キューの結線
	router := server.NewRouter()
	engine := battle.NewEngine(cat, router, battle.Tuning{
		StartDelay:   cfg.Battle.StartDelay,
		Duration:     cfg.Battle.Duration,
		TickInterval: cfg.Battle.TickInterval,
		PurgeGrace:   cfg.Battle.PurgeGrace,
		ChakraRegen:  cfg.Battle.ChakraRegen,
		ComboDecay:   cfg.Battle.ComboDecay,
		ComboGain:    cfg.Battle.ComboGain,
		ComboMax:     cfg.Battle.ComboMax,
	})
	queue := matchmaking.NewQueue(router.HandlePair).
		WithInterval(cfg.Matchmaking.PairingInterval).
		WithEloWindow(cfg.Matchmaking.EloWindow)
	router.Bind(queue, engine)

	go queue.Run(ctx)
	go engine.Run(ctx)

	handler := server.Route(router)
	s := server.NewServer(fmt.Sprintf("%s:%s", addr, port), handler)

	go func() {
		if err := s.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()
	slog.InfoContext(ctx, "server listening", "addr", s.Addr())

	<-ctx.Done()
	slog.InfoContext(ctx, "shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(ctx, "graceful shutdown failed", "error", err)
		if err := s.Close(); err != nil {
			slog.ErrorContext(ctx, "forced close failed", "error", err)
		}
	}
	slog.InfoContext(ctx, "server shutdown complete")
}
