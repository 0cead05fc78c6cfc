package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LeiMuu/UserManagementAPI/internal/auth"
	"github.com/LeiMuu/UserManagementAPI/internal/config"
	"github.com/LeiMuu/UserManagementAPI/internal/gate"
	"github.com/LeiMuu/UserManagementAPI/internal/httpapi"
	"github.com/LeiMuu/UserManagementAPI/internal/obs"
	"github.com/LeiMuu/UserManagementAPI/internal/users"
	userspg "github.com/LeiMuu/UserManagementAPI/internal/users/pg"
)

var version = "1.0.0"

// Demo credential pair; swap the verifier for a real store to change this.
const (
	demoUsername = "testuser"
	demoPassword = "password123"
)

func main() {
	cfg := config.Load()

	obs.Init()
	obs.InitBuildInfo(version)

	tokens, err := auth.NewTokenService(cfg.AuthSecret)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	g, err := gate.New(cfg.Gate.Capacity, cfg.Gate.Wait)
	if err != nil {
		log.Fatalf("admission gate: %v", err)
	}

	// Record store: Postgres when a DSN is configured, in-memory otherwise.
	var store users.Store
	var closeStore func() error
	if cfg.Postgres.DSN != "" {
		pgStore, err := userspg.Open(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("open postgres store: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("ensure schema: %v", err)
		}
		if cfg.SeedUsers > 0 {
			if err := pgStore.Seed(ctx, cfg.SeedUsers); err != nil {
				cancel()
				log.Fatalf("seed users: %v", err)
			}
		}
		cancel()
		store = pgStore
		closeStore = pgStore.Close
	} else {
		mem := users.NewInMemory()
		if cfg.SeedUsers > 0 {
			mem.Seed(cfg.SeedUsers)
		}
		store = mem
	}

	verifier := auth.NewStaticVerifier(demoUsername, demoPassword)

	api := httpapi.New(store, tokens, verifier, g, httpapi.Options{
		Version:        version,
		LoginPerSecond: cfg.Login.PerSecond,
		LoginBurst:     cfg.Login.Burst,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	obs.LogEvent("info", "starting user-api", map[string]any{
		"version":       version,
		"addr":          cfg.Addr,
		"gate_capacity": g.Capacity(),
		"gate_wait":     g.Wait().String(),
	})

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	obs.LogEvent("info", "shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if closeStore != nil {
		_ = closeStore()
	}
	obs.LogEvent("info", "stopped", nil)
}
