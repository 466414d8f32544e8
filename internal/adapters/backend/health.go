package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/haloguard/haloguard-cli/internal/domain"
)

type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (c Client) Health(ctx context.Context) (Health, error) {
	endpoint, err := c.endpoint(healthPath)
	if err != nil {
		return Health{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Health{}, fmt.Errorf("create health request: %w", err)
	}

	resp, err := c.do(req, "health")
	if err != nil {
		return Health{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload Health
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return Health{}, fmt.Errorf("decode health response: %w: %w", domain.ErrMalformedPayload, err)
	}
	if payload.Status == "" {
		return Health{}, fmt.Errorf("health response missing status: %w", domain.ErrMalformedPayload)
	}

	return payload, nil
}
