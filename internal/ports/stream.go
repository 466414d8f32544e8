package ports

import (
	"context"
	"net/http"

	"github.com/haloguard/haloguard-cli/internal/domain"
)

// FrameSource is a live media handle. NextFrame returns one JPEG-compressed
// frame; Close releases the device.
type FrameSource interface {
	NextFrame(ctx context.Context) ([]byte, error)
	Close() error
}

type StreamDialer interface {
	Dial(ctx context.Context, endpoint string, header http.Header) (StreamConn, error)
}

// StreamConn is one open duplex detection channel. ReadResult wraps
// domain.ErrMalformedPayload for messages that can be skipped and
// domain.ErrStreamClosedByPeer when the server ended the stream cleanly; any
// other error means the transport is gone.
type StreamConn interface {
	SendFrame(msg domain.StreamFrameMessage) error
	ReadResult() (domain.DetectionResult, error)
	Close() error
}
