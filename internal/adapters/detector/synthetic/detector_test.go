package synthetic

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func request(name string, contentType string) domain.DetectionRequest {
	return domain.DetectionRequest{Media: domain.NewMediaFile("/tmp/"+name, contentType)}
}

func TestDetectFakeFilenameAlwaysPredictsFake(t *testing.T) {
	t.Parallel()

	detector := New(WithLatency(0), WithSource(rand.NewPCG(1, 2)))

	for _, name := range []string{"clip_fake.mp4", "DeepFake.png", "FAKE.jpg"} {
		for i := 0; i < 20; i++ {
			result, err := detector.Detect(context.Background(), request(name, "image/png"))
			require.NoError(t, err)
			assert.Equal(t, domain.PredictionFake, result.OverallPrediction, name)
			assert.True(t, result.IsDeepfake())
		}
	}
}

func TestDetectScoreRangesAndShape(t *testing.T) {
	t.Parallel()

	detector := New(WithLatency(0), WithSource(rand.NewPCG(7, 11)))

	for i := 0; i < 200; i++ {
		image, err := detector.Detect(context.Background(), request("a.png", "image/png"))
		require.NoError(t, err)

		assert.GreaterOrEqual(t, image.OverallScore, 0.85)
		assert.Less(t, image.OverallScore, 0.99)
		assert.GreaterOrEqual(t, image.Confidence, 0.85)
		assert.Less(t, image.Confidence, 0.99)
		assert.GreaterOrEqual(t, image.VisionScore, 0.85)
		assert.GreaterOrEqual(t, image.ProcessingTimeSeconds, 2.5)
		assert.Less(t, image.ProcessingTimeSeconds, 4.5)
		assert.Nil(t, image.AudioSyncScore)
		assert.Nil(t, image.PhysiologicalScore)
		assert.False(t, image.HasHeatmap())
		assert.Equal(t, ModelVersion, image.ModelVersion)
		assert.Equal(t, domain.SourceFallback, image.Source)
		assert.Equal(t, domain.FileTypeImage, image.FileType)
		assert.Equal(t, image.OverallPrediction, image.VisionPrediction)

		video, err := detector.Detect(context.Background(), request("b.mp4", "video/mp4"))
		require.NoError(t, err)
		assert.Equal(t, domain.FileTypeVideo, video.FileType)
		require.NotNil(t, video.AudioSyncScore)
		require.NotNil(t, video.PhysiologicalScore)
		assert.GreaterOrEqual(t, *video.AudioSyncScore, 0.75)
		assert.Less(t, *video.AudioSyncScore, 0.95)
		assert.GreaterOrEqual(t, *video.PhysiologicalScore, 0.70)
		assert.Less(t, *video.PhysiologicalScore, 0.95)
	}
}

func TestDetectProducesBothVerdictsForNeutralNames(t *testing.T) {
	t.Parallel()

	detector := New(WithLatency(0), WithSource(rand.NewPCG(3, 5)))
	counts := map[domain.Prediction]int{}
	for i := 0; i < 500; i++ {
		result, err := detector.Detect(context.Background(), request("holiday.jpg", "image/jpeg"))
		require.NoError(t, err)
		counts[result.OverallPrediction]++
	}

	assert.Positive(t, counts[domain.PredictionFake])
	assert.Greater(t, counts[domain.PredictionReal], counts[domain.PredictionFake])
}

func TestDetectHonoursCancellationDuringLatency(t *testing.T) {
	t.Parallel()

	detector := New(WithLatency(time.Minute))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := detector.Detect(ctx, request("a.png", "image/png"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}
