package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	maxResponseBytes = 1 << 20
	maxErrorBodyLen  = 256

	defaultRequestTimeout = 30 * time.Second
	defaultDetectTimeout  = 2 * time.Minute
)

const (
	tokenPath       = "/api/auth/token"
	signupPath      = "/api/auth/signup"
	detectImagePath = "/api/detect/image"
	detectVideoPath = "/api/detect/video"
	streamPath      = "/api/detect/stream"
	historyPath     = "/api/history/"
	healthPath      = "/api/health"
)

// Client talks to the HaloGuard HTTP API. The zero value is not usable;
// BaseURL is required.
type Client struct {
	BaseURL        string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
	// DetectTimeout bounds uploads, which run much longer than other calls.
	DetectTimeout time.Duration
}

// StatusError reports a non-2xx response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (c Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withDefaultTimeout(ctx, c.RequestTimeout, defaultRequestTimeout)
}

func (c Client) detectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return withDefaultTimeout(ctx, c.DetectTimeout, defaultDetectTimeout)
}

func withDefaultTimeout(ctx context.Context, timeout time.Duration, fallback time.Duration) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	if timeout <= 0 {
		timeout = fallback
	}
	return context.WithTimeout(ctx, timeout)
}

func (c Client) endpoint(path string) (string, error) {
	return buildAPIURL(c.BaseURL, path)
}

func (c Client) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()
		return nil, newStatusError(op, resp)
	}

	return resp, nil
}

func newStatusError(op string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
	return &StatusError{
		Op:         op,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

func setBearer(req *http.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+token)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	if baseURL == "" {
		return "", errors.New("api base url is required")
	}
	if path == "" {
		return "", errors.New("api path is required")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	endpoint, err := parsed.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse api path: %w", err)
	}
	return endpoint.String(), nil
}

// StreamEndpoint derives the websocket URL of the stream detector from an
// http(s) base URL.
func StreamEndpoint(baseURL string) (string, error) {
	endpoint, err := buildAPIURL(baseURL, streamPath)
	if err != nil {
		return "", err
	}

	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse stream endpoint: %w", err)
	}
	switch parsed.Scheme {
	case "https":
		parsed.Scheme = "wss"
	default:
		parsed.Scheme = "ws"
	}

	return parsed.String(), nil
}
