// Package config resolves CLI settings from ~/.haloguard/config.toml and
// HALOGUARD_* environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".haloguard"
	envPrefix  = "HALOGUARD"

	SecretsBackendChain = "chain"
	SecretsBackendFile  = "file"
)

const (
	keyBackendURL      = "backend_url"
	keyRequestTimeout  = "request_timeout"
	keyDetectTimeout   = "detect_timeout"
	keyFallbackLatency = "fallback_latency"
	keyStreamInterval  = "stream.interval"
	keyStreamMaxWidth  = "stream.max_width"
	keyHistoryPath     = "history.path"
	keySecretsBackend  = "secrets.backend"
	keySecretsDir      = "secrets.dir"
	keyLogLevel        = "log.level"
	keyLogFormat       = "log.format"
)

type Config struct {
	BackendURL      string
	RequestTimeout  time.Duration
	DetectTimeout   time.Duration
	FallbackLatency time.Duration
	Stream          StreamConfig
	HistoryPath     string
	Secrets         SecretsConfig
	Log             LogConfig
}

type StreamConfig struct {
	Interval time.Duration
	MaxWidth int
}

type SecretsConfig struct {
	Backend string
	Dir     string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration into cfg, which may be nil. A missing config file
// is not an error.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(baseDir)
	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(keyBackendURL, "http://localhost:8001")
	cfg.SetDefault(keyRequestTimeout, "30s")
	cfg.SetDefault(keyDetectTimeout, "2m")
	cfg.SetDefault(keyFallbackLatency, "2s")
	cfg.SetDefault(keyStreamInterval, "500ms")
	cfg.SetDefault(keyStreamMaxWidth, 640)
	cfg.SetDefault(keyHistoryPath, filepath.Join(baseDir, "history.toml"))
	cfg.SetDefault(keySecretsBackend, SecretsBackendChain)
	cfg.SetDefault(keySecretsDir, filepath.Join(baseDir, "secrets"))
	cfg.SetDefault(keyLogLevel, "warn")
	cfg.SetDefault(keyLogFormat, "text")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		BackendURL:      strings.TrimRight(strings.TrimSpace(cfg.GetString(keyBackendURL)), "/"),
		RequestTimeout:  cfg.GetDuration(keyRequestTimeout),
		DetectTimeout:   cfg.GetDuration(keyDetectTimeout),
		FallbackLatency: cfg.GetDuration(keyFallbackLatency),
		Stream: StreamConfig{
			Interval: cfg.GetDuration(keyStreamInterval),
			MaxWidth: cfg.GetInt(keyStreamMaxWidth),
		},
		HistoryPath: expandHome(cfg.GetString(keyHistoryPath), homeDir),
		Secrets: SecretsConfig{
			Backend: strings.ToLower(strings.TrimSpace(cfg.GetString(keySecretsBackend))),
			Dir:     expandHome(cfg.GetString(keySecretsDir), homeDir),
		},
		Log: LogConfig{
			Level:  cfg.GetString(keyLogLevel),
			Format: cfg.GetString(keyLogFormat),
		},
	}

	if err := loaded.Validate(); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) Validate() error {
	parsed, err := url.Parse(c.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", keyBackendURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("invalid %s %q: must use http or https", keyBackendURL, c.BackendURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("invalid %s %q: host is required", keyBackendURL, c.BackendURL)
	}

	durations := []struct {
		key   string
		value time.Duration
	}{
		{keyRequestTimeout, c.RequestTimeout},
		{keyDetectTimeout, c.DetectTimeout},
		{keyStreamInterval, c.Stream.Interval},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("invalid %s: must be positive", d.key)
		}
	}
	if c.FallbackLatency < 0 {
		return fmt.Errorf("invalid %s: must not be negative", keyFallbackLatency)
	}
	if c.Stream.MaxWidth <= 0 {
		return fmt.Errorf("invalid %s: must be positive", keyStreamMaxWidth)
	}

	switch c.Secrets.Backend {
	case SecretsBackendChain, SecretsBackendFile:
	default:
		return fmt.Errorf("invalid %s %q: want %s or %s", keySecretsBackend, c.Secrets.Backend, SecretsBackendChain, SecretsBackendFile)
	}

	if c.HistoryPath == "" {
		return fmt.Errorf("invalid %s: path is empty", keyHistoryPath)
	}

	return nil
}

func expandHome(path string, homeDir string) string {
	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
