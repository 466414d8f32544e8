package ports

import (
	"context"
	"net/http"

	"github.com/haloguard/haloguard-cli/internal/domain"
)

type AuthAPI interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, username string, password string) (string, error)
	Signup(ctx context.Context, username string, password string) error
}

type Detector interface {
	Detect(ctx context.Context, req domain.DetectionRequest) (domain.DetectionResult, error)
}

type HistoryAPI interface {
	ListHistory(ctx context.Context, token string) ([]domain.ScanHistoryEntry, error)
	CreateHistory(ctx context.Context, token string, upload domain.HistoryUpload) error
}

// TokenSource lends the current bearer token without exposing the session.
type TokenSource interface {
	Token() string
}

type AuthHeaderSource interface {
	AuthHeaders() http.Header
}
