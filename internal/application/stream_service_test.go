package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
	"github.com/haloguard/haloguard-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testStreamEndpoint = "ws://detector.test/api/detect/stream"

type inbound struct {
	result domain.DetectionResult
	err    error
}

// fakeConn hands sent frames to the test and replays queued inbound
// messages until closed.
type fakeConn struct {
	sent     chan domain.StreamFrameMessage
	inbound  chan inbound
	closed   chan struct{}
	once     sync.Once
	closeCnt int
	mu       sync.Mutex
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		sent:    make(chan domain.StreamFrameMessage, 64),
		inbound: make(chan inbound, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) SendFrame(msg domain.StreamFrameMessage) error {
	select {
	case <-c.closed:
		return errors.New("use of closed connection")
	case c.sent <- msg:
		return nil
	}
}

func (c *fakeConn) ReadResult() (domain.DetectionResult, error) {
	select {
	case <-c.closed:
		return domain.DetectionResult{}, errors.New("use of closed connection")
	case msg := <-c.inbound:
		return msg.result, msg.err
	}
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	c.closeCnt++
	c.mu.Unlock()
	c.once.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) closeCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeCnt
}

type fakeFrames struct {
	mu     sync.Mutex
	closed int
}

func (f *fakeFrames) NextFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return []byte{0xff, 0xd8, 0xff, 0xd9}, nil
}

func (f *fakeFrames) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeFrames) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type staticHeaders http.Header

func (h staticHeaders) AuthHeaders() http.Header { return http.Header(h) }

func newTestStreamService(t *testing.T, conn ports.StreamConn) (*StreamService, *mocks.MockStreamDialer) {
	t.Helper()

	dialer := mocks.NewMockStreamDialer(t)
	if conn != nil {
		dialer.EXPECT().Dial(mockAnyContext(), testStreamEndpoint, mock.Anything).Return(conn, nil).Once()
	}
	service := NewStreamService(dialer, nil, StreamConfig{
		Endpoint:      testStreamEndpoint,
		FrameInterval: 5 * time.Millisecond,
	}, nil, nil)

	return service, dialer
}

func waitDone(t *testing.T, handle *StreamHandle) {
	t.Helper()

	select {
	case <-handle.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop")
	}
}

func TestStreamOpenDialFailureReleasesSource(t *testing.T) {
	service, dialer := newTestStreamService(t, nil)
	dialer.EXPECT().Dial(mockAnyContext(), testStreamEndpoint, mock.Anything).Return(nil, errors.New("connection refused")).Once()
	frames := &fakeFrames{}

	handle, err := service.Open(context.Background(), frames, nil)
	require.Error(t, err)
	assert.Nil(t, handle)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 1, frames.closeCount())
}

func TestStreamOpenSendsAuthHeaders(t *testing.T) {
	conn := newFakeConn()
	dialer := mocks.NewMockStreamDialer(t)
	header := http.Header{"Authorization": []string{"Bearer T"}}
	dialer.EXPECT().Dial(mockAnyContext(), testStreamEndpoint, header).Return(conn, nil).Once()
	service := NewStreamService(dialer, staticHeaders(header), StreamConfig{Endpoint: testStreamEndpoint}, nil, nil)

	handle, err := service.Open(context.Background(), &fakeFrames{}, nil)
	require.NoError(t, err)
	require.NoError(t, handle.Close())
}

func TestStreamSendsFramesWithIncreasingIDs(t *testing.T) {
	conn := newFakeConn()
	service, _ := newTestStreamService(t, conn)

	handle, err := service.Open(context.Background(), &fakeFrames{}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })

	for want := int64(1); want <= 3; want++ {
		select {
		case msg := <-conn.sent:
			assert.Equal(t, domain.FrameMessageType, msg.Type)
			assert.Equal(t, want, msg.FrameID)
			assert.Contains(t, msg.Data, "data:image/jpeg;base64,")
		case <-time.After(2 * time.Second):
			t.Fatalf("frame %d was not sent", want)
		}
	}
}

func TestStreamDeliversResultsAndSkipsMalformed(t *testing.T) {
	conn := newFakeConn()
	service, _ := newTestStreamService(t, conn)
	results := make(chan domain.DetectionResult, 4)

	handle, err := service.Open(context.Background(), &fakeFrames{}, func(result domain.DetectionResult) {
		results <- result
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = handle.Close() })

	conn.inbound <- inbound{err: fmt.Errorf("decode stream message: %w", domain.ErrMalformedPayload)}
	conn.inbound <- inbound{result: domain.DetectionResult{
		OverallPrediction: domain.PredictionFake,
		OverallScore:      0.93,
		HeatmapURL:        "/static/heatmaps/1.png",
	}}

	select {
	case got := <-results:
		assert.Equal(t, domain.PredictionFake, got.OverallPrediction)
		assert.Equal(t, domain.SourceStream, got.Source)
		assert.Empty(t, got.HeatmapURL)
	case <-time.After(2 * time.Second):
		t.Fatal("result was not delivered")
	}
	assert.NoError(t, handle.Err())
}

func TestStreamCloseIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	service, _ := newTestStreamService(t, conn)
	frames := &fakeFrames{}
	var calls int
	var mu sync.Mutex

	handle, err := service.Open(context.Background(), frames, func(domain.DetectionResult) {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	require.NoError(t, err)

	require.NoError(t, handle.Close())
	require.NoError(t, handle.Close())
	waitDone(t, handle)

	assert.Equal(t, 1, conn.closeCount())
	assert.Equal(t, 1, frames.closeCount())
	assert.NoError(t, handle.Err())

	mu.Lock()
	defer mu.Unlock()
	assert.Zero(t, calls)
}

func TestStreamTransportFailureEndsStream(t *testing.T) {
	conn := newFakeConn()
	service, _ := newTestStreamService(t, conn)
	frames := &fakeFrames{}

	handle, err := service.Open(context.Background(), frames, nil)
	require.NoError(t, err)

	conn.inbound <- inbound{err: errors.New("connection reset by peer")}
	waitDone(t, handle)

	require.Error(t, handle.Err())
	assert.ErrorContains(t, handle.Err(), "connection reset by peer")
	require.Eventually(t, func() bool {
		return frames.closeCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, handle.Close())
}

func TestStreamContextCancelClosesStream(t *testing.T) {
	conn := newFakeConn()
	service, _ := newTestStreamService(t, conn)
	frames := &fakeFrames{}
	ctx, cancel := context.WithCancel(context.Background())

	handle, err := service.Open(ctx, frames, nil)
	require.NoError(t, err)

	cancel()
	waitDone(t, handle)

	require.Eventually(t, func() bool {
		return frames.closeCount() == 1 && conn.closeCount() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.NoError(t, handle.Err())
}

type recordingMetrics struct {
	ports.NopMetrics

	mu     sync.Mutex
	frames []string
}

func (m *recordingMetrics) RecordFrame(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.frames = append(m.frames, outcome)
}

func (m *recordingMetrics) frameOutcomes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.frames...)
}

// countingFrames counts captures so a dropped tick can be told apart from a
// queued one.
type countingFrames struct {
	fakeFrames
	captured int
}

func (f *countingFrames) NextFrame(ctx context.Context) ([]byte, error) {
	f.captured++
	return f.fakeFrames.NextFrame(ctx)
}

func TestStreamDropsTicksWhileNotReadyWithoutQueueing(t *testing.T) {
	conn := newFakeConn()
	frames := &countingFrames{}
	metrics := &recordingMetrics{}
	h := &StreamHandle{
		conn:     conn,
		source:   frames,
		cancel:   func() {},
		done:     make(chan struct{}),
		interval: time.Hour,
		metrics:  metrics,
		logger:   slog.New(slog.DiscardHandler),
	}

	h.sendFrame(context.Background())
	h.sendFrame(context.Background())

	assert.Zero(t, frames.captured)
	assert.Empty(t, conn.sent)
	assert.Equal(t, []string{ports.FrameDroppedBusy, ports.FrameDroppedBusy}, metrics.frameOutcomes())

	h.ready.Store(true)
	h.sendFrame(context.Background())

	require.Len(t, conn.sent, 1)
	msg := <-conn.sent
	assert.Equal(t, int64(1), msg.FrameID)
	assert.Equal(t, 1, frames.captured)
	assert.Equal(t, []string{ports.FrameDroppedBusy, ports.FrameDroppedBusy, ports.FrameSent}, metrics.frameOutcomes())
}

func TestStreamStopsSendingAfterTransportFailure(t *testing.T) {
	conn := newFakeConn()
	metrics := &recordingMetrics{}
	dialer := mocks.NewMockStreamDialer(t)
	dialer.EXPECT().Dial(mockAnyContext(), testStreamEndpoint, mock.Anything).Return(conn, nil).Once()
	service := NewStreamService(dialer, nil, StreamConfig{
		Endpoint:      testStreamEndpoint,
		FrameInterval: 5 * time.Millisecond,
	}, metrics, nil)

	handle, err := service.Open(context.Background(), &fakeFrames{}, nil)
	require.NoError(t, err)

	select {
	case <-conn.sent:
	case <-time.After(2 * time.Second):
		t.Fatal("first frame was not sent")
	}

	conn.inbound <- inbound{err: errors.New("connection reset by peer")}
	waitDone(t, handle)

	sentAfterFailure := len(metrics.frameOutcomes())
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, sentAfterFailure, len(metrics.frameOutcomes()), "sender kept ticking after the stream ended")
	assert.False(t, handle.ready.Load())
}

func TestStreamPeerCloseIsNotLoggedAsFailure(t *testing.T) {
	conn := newFakeConn()
	var logs bytes.Buffer
	dialer := mocks.NewMockStreamDialer(t)
	dialer.EXPECT().Dial(mockAnyContext(), testStreamEndpoint, mock.Anything).Return(conn, nil).Once()
	service := NewStreamService(dialer, nil, StreamConfig{Endpoint: testStreamEndpoint}, nil,
		slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))

	handle, err := service.Open(context.Background(), &fakeFrames{}, nil)
	require.NoError(t, err)

	conn.inbound <- inbound{err: fmt.Errorf("read stream message: %w", domain.ErrStreamClosedByPeer)}
	waitDone(t, handle)

	require.ErrorIs(t, handle.Err(), domain.ErrStreamClosedByPeer)
	assert.Contains(t, logs.String(), "level=INFO msg=\"stream closed by server\"")
	assert.NotContains(t, logs.String(), "level=ERROR")
}
