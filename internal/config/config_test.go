package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if len(cfg.AuthSecret) < 32 {
		t.Fatalf("default secret shorter than 32 bytes: %d", len(cfg.AuthSecret))
	}
	if cfg.Gate.Capacity != 100 {
		t.Fatalf("unexpected gate capacity: %d", cfg.Gate.Capacity)
	}
	if cfg.Gate.Wait != 10*time.Second {
		t.Fatalf("unexpected gate wait: %v", cfg.Gate.Wait)
	}
	if cfg.SeedUsers != 20 {
		t.Fatalf("unexpected seed count: %d", cfg.SeedUsers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("GATE_CAPACITY", "3")
	t.Setenv("GATE_WAIT", "250ms")
	t.Setenv("APP_ADDR", ":9090")
	t.Setenv("SEED_USERS", "0")

	cfg := Load()

	if cfg.Gate.Capacity != 3 {
		t.Fatalf("override ignored: capacity=%d", cfg.Gate.Capacity)
	}
	if cfg.Gate.Wait != 250*time.Millisecond {
		t.Fatalf("override ignored: wait=%v", cfg.Gate.Wait)
	}
	if cfg.Addr != ":9090" {
		t.Fatalf("override ignored: addr=%s", cfg.Addr)
	}
	if cfg.SeedUsers != 0 {
		t.Fatalf("override ignored: seed=%d", cfg.SeedUsers)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("GATE_CAPACITY", "not-a-number")
	t.Setenv("GATE_WAIT", "soon")

	cfg := Load()

	if cfg.Gate.Capacity != 100 {
		t.Fatalf("malformed capacity should fall back to default, got %d", cfg.Gate.Capacity)
	}
	if cfg.Gate.Wait != 10*time.Second {
		t.Fatalf("malformed wait should fall back to default, got %v", cfg.Gate.Wait)
	}
}
