// Package stream carries live frames to the stream detector over a websocket.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultWriteTimeout     = 5 * time.Second
	closeGracePeriod        = time.Second
	maxMessageBytes         = 1 << 20
)

type Dialer struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

var _ ports.StreamDialer = Dialer{}

func (d Dialer) Dial(ctx context.Context, endpoint string, header http.Header) (ports.StreamConn, error) {
	handshakeTimeout := d.HandshakeTimeout
	if handshakeTimeout <= 0 {
		handshakeTimeout = defaultHandshakeTimeout
	}

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}

	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial stream detector: status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial stream detector: %w", err)
	}
	conn.SetReadLimit(maxMessageBytes)

	writeTimeout := d.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}

	return &Conn{conn: conn, writeTimeout: writeTimeout}, nil
}

// Conn is one open stream. SendFrame must not be called concurrently with
// itself or with Close; ReadResult may run alongside either.
type Conn struct {
	conn         *websocket.Conn
	writeTimeout time.Duration
}

var _ ports.StreamConn = (*Conn)(nil)

type inboundMessage struct {
	FrameID        *int64   `json:"frame_id"`
	Prediction     *string  `json:"prediction"`
	Score          *float64 `json:"score"`
	Confidence     *float64 `json:"confidence"`
	ProcessingTime *float64 `json:"processing_time"`
	ModelVersion   string   `json:"model_version"`
	Error          string   `json:"error"`
}

func (c *Conn) SendFrame(msg domain.StreamFrameMessage) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("send frame %d: %w", msg.FrameID, err)
	}
	return nil
}

func (c *Conn) ReadResult() (domain.DetectionResult, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		if IsNormalClosure(err) {
			return domain.DetectionResult{}, fmt.Errorf("read stream message: %w: %w", domain.ErrStreamClosedByPeer, err)
		}
		return domain.DetectionResult{}, fmt.Errorf("read stream message: %w", err)
	}
	if messageType != websocket.TextMessage {
		return domain.DetectionResult{}, fmt.Errorf("%w: unexpected message type %d", domain.ErrMalformedPayload, messageType)
	}

	return decodeInbound(data)
}

// Close sends a normal close frame and drops the connection.
func (c *Conn) Close() error {
	deadline := time.Now().Add(closeGracePeriod)
	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	writeErr := c.conn.WriteControl(websocket.CloseMessage, message, deadline)
	closeErr := c.conn.Close()

	if writeErr != nil && !errors.Is(writeErr, websocket.ErrCloseSent) && !isClosedConn(writeErr) {
		return errors.Join(fmt.Errorf("send close frame: %w", writeErr), closeErr)
	}
	return closeErr
}

// IsNormalClosure reports whether err is the peer ending the stream cleanly.
func IsNormalClosure(err error) bool {
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) {
		return false
	}
	return closeErr.Code == websocket.CloseNormalClosure || closeErr.Code == websocket.CloseGoingAway
}

func isClosedConn(err error) bool {
	return strings.Contains(err.Error(), "use of closed network connection")
}

func decodeInbound(data []byte) (domain.DetectionResult, error) {
	var msg inboundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.DetectionResult{}, fmt.Errorf("decode stream message: %w: %w", domain.ErrMalformedPayload, err)
	}
	if msg.Error != "" {
		return domain.DetectionResult{}, fmt.Errorf("%w: stream detector error: %s", domain.ErrMalformedPayload, msg.Error)
	}
	if msg.Prediction == nil || msg.Score == nil {
		return domain.DetectionResult{}, fmt.Errorf("%w: stream message missing prediction or score", domain.ErrMalformedPayload)
	}

	prediction, err := domain.ParsePrediction(*msg.Prediction)
	if err != nil {
		return domain.DetectionResult{}, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}

	score := *msg.Score
	confidence := score
	if msg.Confidence != nil {
		confidence = *msg.Confidence
	}
	if score < 0 || score > 1 || confidence < 0 || confidence > 1 {
		return domain.DetectionResult{}, fmt.Errorf("%w: stream score out of range", domain.ErrMalformedPayload)
	}

	result := domain.DetectionResult{
		OverallScore:      score,
		OverallPrediction: prediction,
		Confidence:        confidence,
		VisionScore:       score,
		VisionPrediction:  prediction,
		ModelVersion:      msg.ModelVersion,
		FileType:          domain.FileTypeImage,
		Source:            domain.SourceStream,
	}
	if msg.FrameID != nil {
		result.FrameID = *msg.FrameID
	}
	if msg.ProcessingTime != nil && *msg.ProcessingTime >= 0 {
		result.ProcessingTimeSeconds = *msg.ProcessingTime
	}

	return result, nil
}
