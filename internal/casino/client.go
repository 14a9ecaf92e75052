// Package casino is the HTTP client for the casino backend's wager API.
//
// The backend is the sole arbiter of randomness, balances and payouts; this
// client issues exactly one request per user action and never retries —
// duplicate submission is prevented upstream by disabling input for the
// whole wager cycle, and a blind retry here could double-charge the player.
//
// # Authentication
//
// All requests carry a bearer session token. There is no token refresh: a
// 401 invalidates the session and the caller routes to re-authentication.
package casino

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Config holds configuration for the casino API client.
type Config struct {
	// BaseURL is the backend origin (e.g. "https://api.fortuna.example").
	BaseURL string

	// Token is the bearer session credential. Required for all calls.
	Token string

	// HTTPClient allows injecting a custom HTTP client (useful for
	// testing). Defaults to a client with a 15s timeout.
	HTTPClient *http.Client

	// UserAgent overrides the User-Agent header. Optional.
	UserAgent string
}

// Client talks to the casino backend.
type Client struct {
	config Config
	http   *http.Client
	mu     sync.RWMutex
}

// NewClient creates a client with the given configuration.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{config: cfg, http: httpClient}
}

// SetToken updates the session token (thread-safe).
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.config.Token = token
}

// Token returns the current session token (thread-safe).
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config.Token
}

// PlaceWager submits one wager to POST /api/games/{game} and returns the
// authoritative result. payload is the game-specific request body; a unique
// wager identifier is attached so the backend can reject replays.
func (c *Client) PlaceWager(ctx context.Context, game string, payload map[string]any) (*Result, error) {
	if game == "" {
		return nil, fmt.Errorf("casino: game key is required")
	}
	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["identifier"] = uuid.NewString()

	return c.post(ctx, "api/games/"+game, body)
}

// ClaimDailyBonus claims the once-per-day bonus. A repeat claim comes back
// as an *APIError whose Detail is the server's reason (e.g. "bonus already
// claimed today").
func (c *Client) ClaimDailyBonus(ctx context.Context) (*Result, error) {
	return c.post(ctx, "api/bonus/daily", map[string]any{})
}

// LoginResult is the session-creation response.
type LoginResult struct {
	Token   string  `json:"token"`
	Profile Profile `json:"profile"`
}

// Login exchanges credentials for a session token. On success the token is
// installed on the client for subsequent calls. Bad credentials surface as
// an *AuthError.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	respBody, err := c.do(ctx, http.MethodPost, "api/auth/login", map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var lr LoginResult
	if err := json.Unmarshal(respBody, &lr); err != nil {
		return nil, fmt.Errorf("casino: parse login response: %w", err)
	}
	c.SetToken(lr.Token)
	return &lr, nil
}

// FetchProfile loads the authenticated user snapshot.
func (c *Client) FetchProfile(ctx context.Context) (*Profile, error) {
	respBody, err := c.do(ctx, http.MethodGet, "api/profile", nil)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := json.Unmarshal(respBody, &p); err != nil {
		return nil, fmt.Errorf("casino: parse profile: %w", err)
	}
	return &p, nil
}

// post sends a JSON POST and decodes the wager result envelope.
func (c *Client) post(ctx context.Context, path string, body any) (*Result, error) {
	respBody, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}
	var result Result
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("casino: parse result: %w", err)
	}
	return &result, nil
}

// do performs a single request. It maps 401 to *AuthError and every other
// non-2xx status to *APIError carrying the body's detail string verbatim.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	base := c.config.BaseURL
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(path, "/")

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("casino: marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("casino: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+c.Token())
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("casino: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("casino: read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthError{StatusCode: resp.StatusCode, Message: "session expired or invalid"}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := genericFailureDetail
		var eb errorBody
		if err := json.Unmarshal(respBody, &eb); err == nil && eb.Detail != "" {
			detail = eb.Detail
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Detail: detail}
	}

	return respBody, nil
}
