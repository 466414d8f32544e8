package report

import (
	"testing"
	"time"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectionRendersVerdictScoresAndExtras(t *testing.T) {
	audio := 0.81
	output, err := Detection(domain.DetectionResult{
		OverallScore:          0.92,
		OverallPrediction:     domain.PredictionFake,
		Confidence:            0.9,
		VisionScore:           0.88,
		VisionPrediction:      domain.PredictionFake,
		AudioSyncScore:        &audio,
		HeatmapURL:            "/static/heatmaps/1.png",
		Explanation:           "Blending artifacts near the jawline",
		ProcessingTimeSeconds: 1.5,
		ModelVersion:          "2.0.0",
		FileType:              domain.FileTypeVideo,
		Source:                domain.SourceBackend,
	}, Options{Filename: "clip.mp4"})

	require.NoError(t, err)
	assert.Contains(t, output, "Detection Result: clip.mp4")
	assert.Contains(t, output, "DEEPFAKE")
	assert.Contains(t, output, "overall:")
	assert.Contains(t, output, "92%")
	assert.Contains(t, output, "audio sync:")
	assert.NotContains(t, output, "physiological:")
	assert.Contains(t, output, "heatmap: /static/heatmaps/1.png")
	assert.Contains(t, output, "Blending artifacts")
	assert.NotContains(t, output, "[offline]")
}

func TestDetectionFlagsSynthesizedResult(t *testing.T) {
	output, err := Detection(domain.DetectionResult{
		OverallPrediction: domain.PredictionReal,
		OverallScore:      0.9,
		FileType:          domain.FileTypeImage,
		Source:            domain.SourceFallback,
	}, Options{})

	require.NoError(t, err)
	assert.Contains(t, output, "AUTHENTIC")
	assert.Contains(t, output, "[offline]")
	assert.Contains(t, output, "model: n/a")
}

func TestHistoryRendersRowsAndSource(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	output, err := History([]domain.ScanHistoryEntry{
		{ID: "1", Filename: "a.png", MediaType: domain.FileTypeImage, Verdict: domain.VerdictDeepfake, Confidence: 0.93, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "2", Filename: "b.mp4", MediaType: domain.FileTypeVideo, Verdict: domain.VerdictAuthentic, Confidence: 0.5, Timestamp: now.Add(-30 * time.Second)},
	}, domain.HistorySourceLocal, Options{Now: now})

	require.NoError(t, err)
	assert.Contains(t, output, "scans: 2 (source: local)")
	assert.Contains(t, output, "a.png")
	assert.Contains(t, output, "93%")
	assert.Contains(t, output, "2 hours ago")
	assert.Contains(t, output, "just now")
}

func TestHistoryRendersEmptyState(t *testing.T) {
	output, err := History(nil, domain.HistorySourceRemote, Options{})

	require.NoError(t, err)
	assert.Contains(t, output, "scans: 0 (source: remote)")
	assert.Contains(t, output, "No scans recorded yet.")
}

func TestStreamLine(t *testing.T) {
	line := StreamLine(domain.DetectionResult{
		FrameID:               12,
		OverallPrediction:     domain.PredictionFake,
		Confidence:            0.87,
		ProcessingTimeSeconds: 0.25,
	})

	assert.Equal(t, "frame 12: deepfake (confidence 87%, 0.25s)", line)
}

func TestFormatWhen(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "1 minute ago", formatWhen(now.Add(-90*time.Second), now))
	assert.Equal(t, "1 hour ago", formatWhen(now.Add(-time.Hour), now))
	assert.Equal(t, "3 days ago", formatWhen(now.Add(-72*time.Hour), now))
}
