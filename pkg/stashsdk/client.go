// Package stashsdk is the Go client for a stashbin server. It wraps the
// HTTP API and maintains a persistent session that refreshes its token
// pair before the access token goes stale.
package stashsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stashbin/stashbin/pkg/api"
)

// Version is the SDK release version, reported in the User-Agent.
const Version = "0.1.0"

// Client is an unauthenticated stashbin API client. Authenticated access
// goes through a Session created by Login or Resume.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent with every request. The server embeds it in
	// refresh tokens as the session fingerprint.
	UserAgent string
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: "stashsdk/" + Version,
	}
}

func (c *Client) url(path string) string {
	return c.BaseURL + path
}

// doJSON performs a request with an optional JSON body and decodes the
// response into out. Non-2xx responses come back as *api.Error.
func (c *Client) doJSON(ctx context.Context, method, path, bearer string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &api.Error{StatusCode: resp.StatusCode}
	if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Code == "" {
		apiErr.Code = "http_error"
		apiErr.Message = resp.Status
	}
	return apiErr
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, password, email string) (api.RegisterResponse, error) {
	var out api.RegisterResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", "", api.RegisterRequest{
		Username: username,
		Password: password,
		Email:    email,
	}, &out)
	return out, err
}

// login exchanges credentials for a token pair.
func (c *Client) login(ctx context.Context, username, password string) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", "", api.LoginRequest{
		Username: username,
		Password: password,
	}, &out)
	return out, err
}

// refresh exchanges a refresh token for a fresh pair.
func (c *Client) refresh(ctx context.Context, refreshToken string) (api.AuthResponse, error) {
	var out api.AuthResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/auth/refresh", "", api.RefreshRequest{
		RefreshToken: refreshToken,
	}, &out)
	return out, err
}

// logout revokes a refresh token server-side.
func (c *Client) logout(ctx context.Context, refreshToken string) error {
	return c.doJSON(ctx, http.MethodPost, "/api/auth/logout", "", api.RefreshRequest{
		RefreshToken: refreshToken,
	}, nil)
}

// Health returns the liveness status of the server.
func (c *Client) Health(ctx context.Context) (api.HealthResponse, error) {
	var out api.HealthResponse
	err := c.doJSON(ctx, http.MethodGet, "/livez", "", nil, &out)
	return out, err
}
