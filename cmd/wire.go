package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/haloguard/haloguard-cli/internal/adapters/backend"
	"github.com/haloguard/haloguard-cli/internal/adapters/detector/synthetic"
	"github.com/haloguard/haloguard-cli/internal/adapters/metrics"
	tomlrepo "github.com/haloguard/haloguard-cli/internal/adapters/repo/toml"
	chainstore "github.com/haloguard/haloguard-cli/internal/adapters/secrets/chain"
	filestore "github.com/haloguard/haloguard-cli/internal/adapters/secrets/file"
	"github.com/haloguard/haloguard-cli/internal/adapters/stream"
	"github.com/haloguard/haloguard-cli/internal/application"
	"github.com/haloguard/haloguard-cli/internal/config"
	"github.com/haloguard/haloguard-cli/internal/logger"
	"github.com/haloguard/haloguard-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

type app struct {
	config    config.Config
	logger    *slog.Logger
	client    backend.Client
	session   *application.SessionService
	detection *application.DetectionService
	history   *application.HistoryService
	stream    *application.StreamService
	registry  *prometheus.Registry
	now       func() time.Time
}

func wireApp() (*app, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(os.Stderr, logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("wire logger: %w", err)
	}

	secretStore, err := wireSecretStore(cfg.Secrets)
	if err != nil {
		return nil, err
	}

	historyRepo, err := tomlrepo.NewHistoryRepository(cfg.HistoryPath)
	if err != nil {
		return nil, fmt.Errorf("wire history repository: %w", err)
	}

	streamEndpoint, err := backend.StreamEndpoint(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("resolve stream endpoint: %w", err)
	}

	client := backend.Client{
		BaseURL:        cfg.BackendURL,
		HTTPClient:     &http.Client{},
		RequestTimeout: cfg.RequestTimeout,
		DetectTimeout:  cfg.DetectTimeout,
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	session := application.NewSessionService(client, secretStore, log)
	fallback := synthetic.New(synthetic.WithLatency(cfg.FallbackLatency))

	return &app{
		config:    cfg,
		logger:    log,
		client:    client,
		session:   session,
		detection: application.NewDetectionService(client, fallback, session, collector, log),
		history:   application.NewHistoryService(client, historyRepo, session, ports.SystemClock{}, collector, log),
		stream: application.NewStreamService(stream.Dialer{}, session, application.StreamConfig{
			Endpoint:      streamEndpoint,
			FrameInterval: cfg.Stream.Interval,
		}, collector, log),
		registry: registry,
		now:      time.Now,
	}, nil
}

func wireSecretStore(cfg config.SecretsConfig) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.SecretsBackendFile:
		return filestore.NewStore(cfg.Dir), nil
	default:
		store, err := chainstore.NewPassFirstWithFileFallback(cfg.Dir)
		if err != nil {
			return nil, fmt.Errorf("wire secret store chain: %w", err)
		}
		return store, nil
	}
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
