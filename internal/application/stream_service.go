package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

const DefaultFrameInterval = 500 * time.Millisecond

type StreamConfig struct {
	Endpoint      string
	FrameInterval time.Duration
}

// StreamService opens live detection channels: frames go out on a fixed
// tick, results come back asynchronously.
type StreamService struct {
	dialer  ports.StreamDialer
	headers ports.AuthHeaderSource
	cfg     StreamConfig
	metrics ports.Metrics
	logger  *slog.Logger
}

func NewStreamService(dialer ports.StreamDialer, headers ports.AuthHeaderSource, cfg StreamConfig, metrics ports.Metrics, logger *slog.Logger) *StreamService {
	if cfg.FrameInterval <= 0 {
		cfg.FrameInterval = DefaultFrameInterval
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &StreamService{
		dialer:  dialer,
		headers: headers,
		cfg:     cfg,
		metrics: metrics,
		logger:  logger,
	}
}

// Open dials the stream detector and starts the sender and receiver. The
// source is owned by the returned handle; on error it is already closed.
// Canceling ctx tears the stream down like Close.
func (s *StreamService) Open(ctx context.Context, source ports.FrameSource, onResult func(domain.DetectionResult)) (*StreamHandle, error) {
	if source == nil {
		return nil, errors.New("frame source is required")
	}
	if onResult == nil {
		onResult = func(domain.DetectionResult) {}
	}

	var header http.Header
	if s.headers != nil {
		header = s.headers.AuthHeaders()
	}

	conn, err := s.dialer.Dial(ctx, s.cfg.Endpoint, header)
	if err != nil {
		if closeErr := source.Close(); closeErr != nil {
			s.logger.Warn("release frame source", slog.Any("err", closeErr))
		}
		return nil, fmt.Errorf("open detection stream: %w", err)
	}

	streamCtx, cancel := context.WithCancel(ctx)
	h := &StreamHandle{
		conn:     conn,
		source:   source,
		cancel:   cancel,
		done:     make(chan struct{}),
		interval: s.cfg.FrameInterval,
		metrics:  s.metrics,
		logger:   s.logger,
		onResult: onResult,
	}
	h.ready.Store(true)

	h.senderWG.Add(1)
	go h.sendLoop(streamCtx)
	go h.receiveLoop()
	go func() {
		<-streamCtx.Done()
		_ = h.Close()
	}()

	return h, nil
}

// StreamHandle controls one open stream.
type StreamHandle struct {
	conn     ports.StreamConn
	source   ports.FrameSource
	cancel   context.CancelFunc
	interval time.Duration
	metrics  ports.Metrics
	logger   *slog.Logger
	onResult func(domain.DetectionResult)

	ready    atomic.Bool
	closing  atomic.Bool
	nextID   int64
	senderWG sync.WaitGroup
	done     chan struct{}

	closeOnce sync.Once
	closeErr  error

	errMu sync.Mutex
	err   error
}

// Close stops the ticker, waits for the sender, then releases the transport
// and the frame source. It is safe to call more than once.
func (h *StreamHandle) Close() error {
	h.closeOnce.Do(func() {
		h.closing.Store(true)
		h.cancel()
		h.senderWG.Wait()
		h.ready.Store(false)

		var errs []error
		if err := h.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close stream transport: %w", err))
		}
		if err := h.source.Close(); err != nil {
			errs = append(errs, fmt.Errorf("release frame source: %w", err))
		}
		h.closeErr = errors.Join(errs...)
	})

	return h.closeErr
}

// Done is closed once results stop arriving.
func (h *StreamHandle) Done() <-chan struct{} {
	return h.done
}

// Err returns the transport error that ended the stream, if any.
func (h *StreamHandle) Err() error {
	h.errMu.Lock()
	defer h.errMu.Unlock()

	return h.err
}

func (h *StreamHandle) sendLoop(ctx context.Context) {
	defer h.senderWG.Done()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.sendFrame(ctx)
		}
	}
}

func (h *StreamHandle) sendFrame(ctx context.Context) {
	if !h.ready.Load() {
		h.metrics.RecordFrame(ports.FrameDroppedBusy)
		return
	}

	frame, err := h.source.NextFrame(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.metrics.RecordFrame(ports.FrameCaptureFailed)
		h.logger.Warn("capture frame", slog.Any("err", err))
		return
	}

	h.nextID++
	msg := domain.NewJPEGFrameMessage(h.nextID, frame)
	if err := h.conn.SendFrame(msg); err != nil {
		h.metrics.RecordFrame(ports.FrameSendFailed)
		h.logger.Warn("send frame", slog.Int64("frame_id", msg.FrameID), slog.Any("err", err))
		return
	}

	h.metrics.RecordFrame(ports.FrameSent)
}

func (h *StreamHandle) receiveLoop() {
	defer close(h.done)

	for {
		result, err := h.conn.ReadResult()
		if err != nil {
			if errors.Is(err, domain.ErrMalformedPayload) {
				h.metrics.RecordStreamMessage(ports.StreamMessageMalformed)
				h.logger.Warn("skip stream message", slog.Any("err", err))
				continue
			}
			if !h.closing.Load() {
				h.ready.Store(false)
				h.setErr(err)
				if errors.Is(err, domain.ErrStreamClosedByPeer) {
					h.logger.Info("stream closed by server", slog.Any("err", err))
				} else {
					h.logger.Error("stream transport failed", slog.Any("err", err))
				}
				_ = h.Close()
			}
			return
		}

		if h.closing.Load() {
			continue
		}

		result.Source = domain.SourceStream
		result.HeatmapURL = ""
		h.metrics.RecordStreamMessage(ports.StreamMessageResult)
		h.metrics.RecordDetection(result.Source, result.OverallPrediction)
		h.onResult(result)
	}
}

func (h *StreamHandle) setErr(err error) {
	h.errMu.Lock()
	defer h.errMu.Unlock()

	h.err = err
}
