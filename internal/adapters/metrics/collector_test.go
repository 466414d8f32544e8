package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDetection(domain.SourceFallback, domain.PredictionFake)
	c.RecordDetection(domain.SourceFallback, domain.PredictionFake)
	c.RecordDetection(domain.SourceBackend, domain.PredictionReal)
	c.RecordFrame(ports.FrameSent)
	c.RecordFrame(ports.FrameDroppedBusy)
	c.RecordFrame(ports.FrameDroppedBusy)
	c.RecordStreamMessage(ports.StreamMessageMalformed)
	c.RecordHistorySync("create", ports.HistoryOutcomeFailed)

	assert.InDelta(t, 2, testutil.ToFloat64(c.detections.WithLabelValues("fallback", "fake")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.detections.WithLabelValues("backend", "real")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(c.frames.WithLabelValues(ports.FrameDroppedBusy)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.streamMessages.WithLabelValues(ports.StreamMessageMalformed)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(c.historySync.WithLabelValues("create", ports.HistoryOutcomeFailed)), 0)

	count, err := testutil.GatherAndCount(reg, "haloguard_stream_frames_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestHandlerServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordFrame(ports.FrameSent)

	server := httptest.NewServer(Handler(reg))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `haloguard_stream_frames_total{outcome="sent"} 1`)
}
