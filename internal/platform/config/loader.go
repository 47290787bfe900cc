package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// Loader reads the YAML configuration file, falling back to defaults for
// anything the file omits.
type Loader struct {
	useDotEnv bool
	path      string
}

// NewLoader creates a loader reading from path. An empty path loads defaults
// only.
func NewLoader(path string) *Loader {
	return &Loader{
		useDotEnv: true,
		path:      path,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load reads and validates the configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	cfg := Defaults()

	if l.path != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig,
				"config load", "read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig,
				"config load", "parse config file", err)
		}
	}

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: l.path}, nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return platformerrors.New(platformerrors.KindConfig,
			"config validate", fmt.Sprintf("invalid server port %d", cfg.Server.Port))
	}
	if cfg.Storage.DatabasePath == "" {
		return platformerrors.New(platformerrors.KindConfig,
			"config validate", "storage.database_path is required")
	}
	if cfg.Storage.AudioDir == "" {
		return platformerrors.New(platformerrors.KindConfig,
			"config validate", "storage.audio_dir is required")
	}
	if cfg.Model.Path == "" {
		return platformerrors.New(platformerrors.KindConfig,
			"config validate", "model.path is required")
	}
	return nil
}

// SelfCheck verifies the loaded transform and model constants against the
// contract the shipped weights were trained with. A mismatch silently
// degrades accuracy at inference time, so the server refuses to start
// instead.
func SelfCheck(cfg *Config) error {
	expected := Defaults()
	if cfg.Spectrogram != expected.Spectrogram {
		return platformerrors.New(platformerrors.KindConfig, "config self-check",
			fmt.Sprintf("spectrogram constants %+v do not match training contract %+v",
				cfg.Spectrogram, expected.Spectrogram))
	}
	if cfg.Model.InputSize != expected.Model.InputSize ||
		cfg.Model.Mean != expected.Model.Mean ||
		cfg.Model.Std != expected.Model.Std {
		return platformerrors.New(platformerrors.KindConfig, "config self-check",
			"model input contract does not match training contract")
	}
	return nil
}
