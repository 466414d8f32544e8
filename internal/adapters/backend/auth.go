package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/haloguard/haloguard-cli/internal/domain"
	"github.com/haloguard/haloguard-cli/internal/ports"
)

var _ ports.AuthAPI = Client{}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token using the form-encoded
// password grant.
func (c Client) Login(ctx context.Context, username string, password string) (string, error) {
	endpoint, err := c.endpoint(tokenPath)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	values.Set("username", username)
	values.Set("password", password)

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.do(req, "login")
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	var payload tokenResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode login response: %w: %w", domain.ErrMalformedPayload, err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", fmt.Errorf("login response missing access token: %w", domain.ErrMalformedPayload)
	}

	return payload.AccessToken, nil
}

func (c Client) Signup(ctx context.Context, username string, password string) error {
	endpoint, err := c.endpoint(signupPath)
	if err != nil {
		return err
	}

	body, err := json.Marshal(signupRequest{Username: username, Password: password})
	if err != nil {
		return fmt.Errorf("encode signup request: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create signup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, "signup")
	if err != nil {
		return err
	}
	_ = resp.Body.Close()

	return nil
}
