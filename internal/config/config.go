package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"
)

// Config captures the client settings read from config.toml.
type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	LogFile        string
	LogLevel       zapcore.Level
	PollInterval   time.Duration // zero disables background refresh
}

const (
	defaultConfigPath     = "~/.config/linkboard/config.toml"
	defaultAPIURL         = "http://127.0.0.1:8000/api/"
	defaultLogFile        = "~/.local/state/linkboard/linkboard.log"
	defaultRequestTimeout = 5 * time.Second
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:         defaultAPIURL,
		RequestTimeout: defaultRequestTimeout,
		LogFile:        mustExpand(defaultLogFile),
		LogLevel:       zapcore.InfoLevel,
	}
}

// Load locates and parses config.toml, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path, defaultConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL         string `toml:"api_url"`
		RequestTimeout string `toml:"request_timeout"`
		LogFile        string `toml:"log_file"`
		LogLevel       string `toml:"log_level"`
		PollInterval   string `toml:"poll_interval"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("parse config: request_timeout %q: want a positive duration", v)
		}
		cfg.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.PollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("parse config: poll_interval %q: want a duration", v)
		}
		cfg.PollInterval = d
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		level, err := zapcore.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: log_level: %w", err)
		}
		cfg.LogLevel = level
	}

	return cfg, nil
}

// ResolvePath returns the expanded path, or the expanded fallback when path is
// blank.
func ResolvePath(path, fallback string) (string, error) {
	return resolvePath(path, fallback)
}

func resolvePath(path, fallback string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(fallback)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
