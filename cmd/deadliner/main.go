package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/deadliner/internal/auth"
	"github.com/dukerupert/deadliner/internal/config"
	"github.com/dukerupert/deadliner/internal/database"
	"github.com/dukerupert/deadliner/internal/logging"
	"github.com/dukerupert/deadliner/internal/metrics"
	"github.com/dukerupert/deadliner/internal/server"
)

func main() {
	envFile := flag.String("env", ".env", "optional dotenv file loaded before reading DEADLINER_* variables")
	issueFor := flag.String("issue-token", "", "print a signed bearer token for this user id and exit (requires DEADLINER_JWT_SECRET)")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if *issueFor != "" {
		if cfg.JWTSecret == "" {
			slog.Error("issue-token needs DEADLINER_JWT_SECRET")
			os.Exit(1)
		}
		token, err := auth.IssueToken(cfg.JWTSecret, *issueFor, "", "")
		if err != nil {
			slog.Error("issue token", "error", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.JWTSecret == "" {
		slog.Warn("no JWT secret configured, every bearer token maps to the demo user", "user_id", cfg.DemoUser.ID)
	}

	srv := server.New(db, cfg, metrics.New(), logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(cfg.RateWindow)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("deadliner starting", "addr", ":"+cfg.Port, "db", cfg.DBPath)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down", "websocket_clients", srv.Hub().ClientCount())
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
