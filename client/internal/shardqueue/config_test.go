package shardqueue

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Shards != 4 || cfg.QueueSize != 128 {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.EnqueueTimeout != 100*time.Millisecond {
		t.Fatalf("unexpected enqueue timeout %v", cfg.EnqueueTimeout)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PLQ_SHARDS", "8")
	t.Setenv("PLQ_QUEUE_SIZE", "256")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Shards != 8 || cfg.QueueSize != 256 {
		t.Fatalf("env override ignored: %+v", cfg)
	}
}
