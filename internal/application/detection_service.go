package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

type DetectOptions struct {
	// Explain asks the image detector for an explanation and heatmap.
	Explain bool
}

// DetectionService asks the primary detector and falls back to the
// synthetic one on any failure other than caller cancellation.
type DetectionService struct {
	primary  ports.Detector
	fallback ports.Detector
	tokens   ports.TokenSource
	metrics  ports.Metrics
	logger   *slog.Logger
}

func NewDetectionService(primary ports.Detector, fallback ports.Detector, tokens ports.TokenSource, metrics ports.Metrics, logger *slog.Logger) *DetectionService {
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &DetectionService{
		primary:  primary,
		fallback: fallback,
		tokens:   tokens,
		metrics:  metrics,
		logger:   logger,
	}
}

// Detect returns a result for media. The only error it reports is the
// caller's own cancellation.
func (s *DetectionService) Detect(ctx context.Context, media domain.MediaFile, opts DetectOptions) (domain.DetectionResult, error) {
	req := domain.DetectionRequest{
		Media:   media,
		Explain: opts.Explain,
	}
	if s.tokens != nil {
		req.Token = s.tokens.Token()
	}

	result, err := s.primary.Detect(ctx, req)
	if err == nil {
		s.metrics.RecordDetection(result.Source, result.OverallPrediction)
		return result, nil
	}
	if shouldSkipFallback(ctx, err) {
		return domain.DetectionResult{}, err
	}

	s.logger.Warn("detection backend unavailable, using synthetic result",
		slog.String("file", media.Name),
		slog.String("file_type", string(media.FileType())),
		slog.Any("err", err),
	)

	result, err = s.fallback.Detect(ctx, req)
	if err != nil {
		return domain.DetectionResult{}, err
	}
	result.Source = domain.SourceFallback
	s.metrics.RecordDetection(result.Source, result.OverallPrediction)

	return result, nil
}

// shouldSkipFallback reports whether err came from the caller giving up
// rather than from the backend.
func shouldSkipFallback(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return true
	}
	return errors.Is(err, context.Canceled)
}
