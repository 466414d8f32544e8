package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

const (
	historyOpList   = "list"
	historyOpCreate = "create"
)

type HistoryListing struct {
	Entries []domain.ScanHistoryEntry
	Source  domain.HistorySource
}

// HistoryService reads the remote history when it is reachable and keeps a
// capped local copy of every scan recorded on this machine.
type HistoryService struct {
	remote  ports.HistoryAPI
	local   ports.HistoryRepository
	tokens  ports.TokenSource
	clock   ports.Clock
	metrics ports.Metrics
	logger  *slog.Logger
	newID   func() string
}

func NewHistoryService(remote ports.HistoryAPI, local ports.HistoryRepository, tokens ports.TokenSource, clock ports.Clock, metrics ports.Metrics, logger *slog.Logger) *HistoryService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &HistoryService{
		remote:  remote,
		local:   local,
		tokens:  tokens,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
		newID:   uuid.NewString,
	}
}

// List prefers the remote history and falls back to the local copy. The two
// are never merged.
func (s *HistoryService) List(ctx context.Context) HistoryListing {
	entries, err := s.remote.ListHistory(ctx, s.token())
	if err == nil {
		s.metrics.RecordHistorySync(historyOpList, ports.HistoryOutcomeOK)
		return HistoryListing{Entries: entries, Source: domain.HistorySourceRemote}
	}

	s.metrics.RecordHistorySync(historyOpList, ports.HistoryOutcomeFailed)
	s.logger.Warn("remote history unavailable, using local copy", slog.Any("err", err))

	local, err := s.local.List(ctx)
	if err != nil {
		s.logger.Warn("read local history", slog.Any("err", err))
		local = nil
	}

	return HistoryListing{Entries: local, Source: domain.HistorySourceLocal}
}

// Record uploads the scan best-effort, then always prepends it to the local
// copy. Only a local write failure is returned.
func (s *HistoryService) Record(ctx context.Context, filename string, mediaType domain.FileType, result domain.DetectionResult) (domain.ScanHistoryEntry, error) {
	if strings.TrimSpace(filename) == "" {
		filename = domain.UnknownFilename
	}
	now := s.clock.Now()

	upload := domain.HistoryUpload{
		Filename:  filename,
		FileType:  mediaType,
		Timestamp: now,
		Result:    result,
	}
	if err := s.remote.CreateHistory(ctx, s.token(), upload); err != nil {
		s.metrics.RecordHistorySync(historyOpCreate, ports.HistoryOutcomeFailed)
		s.logger.Warn("save scan to remote history", slog.String("file", filename), slog.Any("err", err))
	} else {
		s.metrics.RecordHistorySync(historyOpCreate, ports.HistoryOutcomeOK)
	}

	// The scan is complete; a remote call that ran out the caller's deadline
	// must not cost the local copy.
	entry := domain.NewScanHistoryEntry(s.newID(), filename, mediaType, result, now)
	if err := s.local.Prepend(context.WithoutCancel(ctx), entry, domain.HistoryRetention); err != nil {
		s.logger.Error("save scan to local history", slog.String("file", filename), slog.Any("err", err))
		return domain.ScanHistoryEntry{}, err
	}

	return entry, nil
}

func (s *HistoryService) token() string {
	if s.tokens == nil {
		return ""
	}
	return s.tokens.Token()
}
