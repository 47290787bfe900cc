package config

import (
	"os"
	"path/filepath"
	"testing"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 9090
log:
  log_level: "debug"
storage:
  database_path: "/tmp/test.db"
  audio_dir: "/tmp/audio"
`

	err := os.WriteFile(configFile, []byte(configContent), 0o644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	result, err := NewLoader(configFile).WithDotEnv(false).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected server port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	// omitted sections keep their defaults
	if cfg.Spectrogram.SampleRate != 16000 {
		t.Errorf("expected default sample rate 16000, got %d", cfg.Spectrogram.SampleRate)
	}
	if cfg.Model.InputSize != 224 {
		t.Errorf("expected default input size 224, got %d", cfg.Model.InputSize)
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader("")

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing database path",
			mutate:  func(c *Config) { c.Storage.DatabasePath = "" },
			wantErr: true,
		},
		{
			name:    "missing model path",
			mutate:  func(c *Config) { c.Model.Path = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := loader.validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSelfCheck(t *testing.T) {
	cfg := Defaults()
	if err := SelfCheck(cfg); err != nil {
		t.Fatalf("SelfCheck on defaults should pass, got %v", err)
	}

	cfg.Spectrogram.HopLength = 256
	err := SelfCheck(cfg)
	if err == nil {
		t.Fatal("SelfCheck should fail on a hop length mismatch")
	}
	if !platformerrors.IsKind(err, platformerrors.KindConfig) {
		t.Errorf("SelfCheck mismatch should be a config error, got %v", err)
	}
}
