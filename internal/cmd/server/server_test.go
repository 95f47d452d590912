package server

import (
	"context"
	"flag"
	"testing"
	"time"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MaxPlayers != 15 {
		t.Fatalf("expected default capacity 15, got %d", cfg.MaxPlayers)
	}
	if cfg.HealthInterval != 30*time.Second {
		t.Fatalf("expected default health interval 30s, got %s", cfg.HealthInterval)
	}
	if cfg.FleetManaged {
		t.Fatal("expected fleet management off by default")
	}
}

func TestParseConfigEnv(t *testing.T) {
	t.Setenv("SHARDCORE_SHARD_ID", "shard-9")
	t.Setenv("SHARDCORE_MAX_PLAYERS", "40")
	t.Setenv("SHARDCORE_TOKEN_ISSUER", "https://issuer.example/pool")
	t.Setenv("SHARDCORE_FLEET_MANAGED", "true")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.ShardID != "shard-9" {
		t.Fatalf("expected shard-9, got %q", cfg.ShardID)
	}
	if cfg.MaxPlayers != 40 {
		t.Fatalf("expected capacity 40, got %d", cfg.MaxPlayers)
	}
	if cfg.TokenIssuer != "https://issuer.example/pool" {
		t.Fatalf("unexpected issuer %q", cfg.TokenIssuer)
	}
	if !cfg.FleetManaged {
		t.Fatal("expected fleet management on")
	}
}

func TestParseConfigFlagOverrides(t *testing.T) {
	t.Setenv("SHARDCORE_MAX_PLAYERS", "40")

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-max-players", "8", "-shard-id", "shard-flag"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.MaxPlayers != 8 {
		t.Fatalf("expected flag to win over env, got %d", cfg.MaxPlayers)
	}
	if cfg.ShardID != "shard-flag" {
		t.Fatalf("expected shard-flag, got %q", cfg.ShardID)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, Config{MaxPlayers: 4, HealthInterval: time.Hour})
	}()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on context cancel")
	}
}
