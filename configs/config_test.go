package configs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValidation(t *testing.T) {
	// DefaultConfig 必须可以直接通过验证
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig validation failed: %v", err)
	}
}

func TestHistoryConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		config  HistoryConfig
		wantErr bool
	}{
		{
			name:    "memory provider passes",
			config:  HistoryConfig{Provider: HistoryProviderMemory},
			wantErr: false,
		},
		{
			name: "redis provider with addr passes",
			config: HistoryConfig{
				Provider: HistoryProviderRedis,
				Redis:    RedisConfig{Addr: "localhost:6379"},
			},
			wantErr: false,
		},
		{
			name:    "redis provider without addr fails",
			config:  HistoryConfig{Provider: HistoryProviderRedis},
			wantErr: true,
		},
		{
			name: "badger in memory passes",
			config: HistoryConfig{
				Provider: HistoryProviderBadger,
				Badger:   BadgerConfig{InMemory: true},
			},
			wantErr: false,
		},
		{
			name:    "badger without path fails",
			config:  HistoryConfig{Provider: HistoryProviderBadger},
			wantErr: true,
		},
		{
			name:    "unknown provider fails",
			config:  HistoryConfig{Provider: "postgres"},
			wantErr: true,
		},
		{
			name:    "empty provider fails",
			config:  HistoryConfig{},
			wantErr: true,
		},
		{
			name:    "negative max records fails",
			config:  HistoryConfig{Provider: HistoryProviderMemory, MaxRecords: -1},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("HistoryConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestRedisConfigDefaults(t *testing.T) {
	cfg := RedisConfig{Addr: "redis:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.KeyPrefix != "rating:history:" {
		t.Errorf("KeyPrefix = %q, want default", cfg.KeyPrefix)
	}
	if cfg.Timeout != 3*time.Second {
		t.Errorf("Timeout = %v, want 3s", cfg.Timeout)
	}
}

func TestSessionConfigValidation(t *testing.T) {
	cfg := SessionConfig{TTL: time.Hour}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Header != "X-Session-ID" {
		t.Errorf("Header = %q, want X-Session-ID", cfg.Header)
	}
	if cfg.CleanupInterval != 30*time.Minute {
		t.Errorf("CleanupInterval = %v, want 30m", cfg.CleanupInterval)
	}

	zero := SessionConfig{}
	if err := zero.Validate(); err == nil {
		t.Error("zero ttl must fail")
	}
}

func TestDatasetConfigValidation(t *testing.T) {
	disabled := DatasetConfig{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("disabled dataset must pass: %v", err)
	}

	missing := DatasetConfig{Enabled: true}
	if err := missing.Validate(); err == nil {
		t.Error("enabled dataset without path must fail")
	}
}

func TestLoadFromFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
history:
  provider: badger
  badger:
    in_memory: true
pipeline:
  artifacts:
    dir: /srv/artifacts
  explain:
    default_top_n: 5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("RATING_PORT", "7070")
	t.Setenv("RATING_DATASET_PATH", "/tmp/datos.csv")

	cfg, err := LoadFrom(context.Background(), filepath.Join(dir, "missing.yaml"), path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("Port = %d, want env override 7070", cfg.Server.Port)
	}
	if cfg.History.Provider != HistoryProviderBadger || !cfg.History.Badger.InMemory {
		t.Errorf("History = %+v, want in-memory badger", cfg.History)
	}
	if got := cfg.Pipeline.Artifacts.EncoderPath(); got != filepath.Join("/srv/artifacts", "encoder.json") {
		t.Errorf("EncoderPath = %q", got)
	}
	if cfg.Pipeline.Explain.DefaultTopN != 5 {
		t.Errorf("DefaultTopN = %d, want 5", cfg.Pipeline.Explain.DefaultTopN)
	}
	if cfg.Dataset.Path != "/tmp/datos.csv" {
		t.Errorf("Dataset.Path = %q", cfg.Dataset.Path)
	}
	if cfg.Session.TTL != 2*time.Hour {
		t.Errorf("Session.TTL = %v, want default 2h", cfg.Session.TTL)
	}
}

func TestLoadFromRejectsInvalidProvider(t *testing.T) {
	t.Setenv("RATING_HISTORY_PROVIDER", "cassandra")

	if _, err := LoadFrom(context.Background()); err == nil {
		t.Error("expected validation error for unknown provider")
	}
}
