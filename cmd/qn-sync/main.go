package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/marcus/qn/internal/server"
)

func main() {
	listen := flag.String("listen", ":8787", "listen address")
	dbPath := flag.String("db", "qn-sync.db", "path to the note database")
	authKey := flag.String("auth-key", "", "shared auth key (empty disables auth)")
	logLevel := flag.String("log-level", "info", "log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "json", "log format (json, text)")
	flag.Parse()

	var level slog.Level
	switch strings.ToLower(*logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(*logFormat) == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))

	cfg := server.ConfigFromEnv(server.Config{
		ListenAddr: *listen,
		DBPath:     *dbPath,
		AuthKey:    *authKey,
	})
	if cfg.AuthKey == "" {
		slog.Warn("no auth key configured, accepting unauthenticated requests")
	}

	db, err := server.OpenDB(cfg.DBPath)
	if err != nil {
		slog.Error("open note db", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	srv := server.NewServer(cfg, db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(); err != nil {
		slog.Error("start server", "err", err)
		os.Exit(1)
	}

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "err", err)
	}
}
