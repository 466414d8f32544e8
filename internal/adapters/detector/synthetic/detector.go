// Package synthetic produces plausible detection results locally when the
// detection service cannot be reached.
package synthetic

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

const (
	ModelVersion = "2.0.0"
	Explanation  = "Backend unavailable; this result was synthesized locally and is not a real analysis."

	DefaultLatency = 2 * time.Second

	fakeProbability = 0.3
)

type Detector struct {
	latency time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

var _ ports.Detector = (*Detector)(nil)

type Option func(*Detector)

// WithLatency overrides the artificial delay. Zero disables it.
func WithLatency(latency time.Duration) Option {
	return func(d *Detector) {
		if latency < 0 {
			latency = 0
		}
		d.latency = latency
	}
}

func WithSource(source rand.Source) Option {
	return func(d *Detector) {
		d.rng = rand.New(source)
	}
}

func New(opts ...Option) *Detector {
	d := &Detector{
		latency: DefaultLatency,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) Detect(ctx context.Context, req domain.DetectionRequest) (domain.DetectionResult, error) {
	if err := d.wait(ctx); err != nil {
		return domain.DetectionResult{}, err
	}

	fileType := req.Media.FileType()

	d.mu.Lock()
	defer d.mu.Unlock()

	prediction := domain.PredictionReal
	if strings.Contains(strings.ToLower(req.Media.Name), "fake") || d.rng.Float64() < fakeProbability {
		prediction = domain.PredictionFake
	}

	result := domain.DetectionResult{
		OverallScore:          d.between(0.85, 0.99),
		OverallPrediction:     prediction,
		Confidence:            d.between(0.85, 0.99),
		VisionScore:           d.between(0.85, 0.99),
		VisionPrediction:      prediction,
		Explanation:           Explanation,
		ProcessingTimeSeconds: d.between(2.5, 4.5),
		ModelVersion:          ModelVersion,
		FileType:              fileType,
		Source:                domain.SourceFallback,
	}

	if fileType == domain.FileTypeVideo {
		audio := d.between(0.75, 0.95)
		physiological := d.between(0.70, 0.95)
		result.AudioSyncScore = &audio
		result.PhysiologicalScore = &physiological
	}

	return result, nil
}

func (d *Detector) wait(ctx context.Context) error {
	if d.latency <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d.latency)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// between draws from [low, high). Callers hold d.mu.
func (d *Detector) between(low float64, high float64) float64 {
	return low + d.rng.Float64()*(high-low)
}
