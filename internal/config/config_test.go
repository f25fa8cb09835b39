package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaultsEnvOnly(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Resolution.Wait != 60*time.Second {
		t.Fatalf("wait=%s want 60s", cfg.Resolution.Wait)
	}
	if cfg.Resolution.FloorInterval != 5*time.Second {
		t.Fatalf("floor=%s want 5s", cfg.Resolution.FloorInterval)
	}
	if cfg.Queue.Backend != "memory" {
		t.Fatalf("queue backend=%q want memory", cfg.Queue.Backend)
	}
	if cfg.Oracle.Source != "binance" {
		t.Fatalf("oracle source=%q want binance", cfg.Oracle.Source)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BB_QUEUE_BACKEND", "redis")
	t.Setenv("BB_REDIS_ADDR", "localhost:6379")
	t.Setenv("BB_WORKER_BATCH_SIZE", "3")
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Queue.Backend != "redis" || cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("queue=%+v redis=%+v", cfg.Queue, cfg.Redis)
	}
	if cfg.Worker.BatchSize != 3 {
		t.Fatalf("batch size=%d want 3", cfg.Worker.BatchSize)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	raw := []byte("oracle:\n  source: coindesk\nresolution:\n  floor_interval: 7s\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Oracle.Source != "coindesk" {
		t.Fatalf("oracle source=%q want coindesk", cfg.Oracle.Source)
	}
	if cfg.Resolution.FloorInterval != 7*time.Second {
		t.Fatalf("floor=%s want 7s", cfg.Resolution.FloorInterval)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatalf("expected error")
	}
}
