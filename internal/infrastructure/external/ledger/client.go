// Package ledger implements the remote experience-ledger API client.
// The ledger is the authoritative store for a learner's experience
// aggregate (points, badges, streaks); this client consumes its three
// endpoints: experience-state, experience-event and game-result.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/koydo-hub/koydo-experience-hub/internal/domain/experience"
)

// Endpoint paths on the ledger service.
const (
	statePath      = "/api/language/gamification/state"
	gameResultPath = "/api/games/state"
)

// ErrFeatureUnavailable is returned when the ledger signals that the
// experience feature is not provisioned for this user: unauthenticated
// or backend not migrated yet. Callers treat it as session-permanent.
// Wraps experience.ErrUnavailable so the application layer can match
// it without importing this package.
var ErrFeatureUnavailable = fmt.Errorf("experience ledger unavailable: %w", experience.ErrUnavailable)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the ledger API client.
type ClientConfig struct {
	// BaseURL is the ledger base URL.
	BaseURL string

	// APIKey is the bearer token for authentication (if applicable).
	APIKey string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RateLimiterConfig for request pacing.
	RateLimiterConfig RateLimiterConfig

	// Logger for structured logging.
	Logger *slog.Logger

	// Debug enables request-level debug logging.
	Debug bool
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:           baseURL,
		Timeout:           30 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the experience-ledger API client.
//
// The client performs single-shot requests: mutation submissions are
// fire-and-forget by contract and must not be retried here. The periodic
// reconciliation sweep adds bounded retries on top via pkg/retry.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *slog.Logger
	rateLimiter *RateLimiter
	mapper      *Mapper
}

// NewClient creates a new ledger API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      config.Logger,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		mapper:      NewMapper(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// FetchState fetches the authoritative experience aggregate.
//
// Returns ErrFeatureUnavailable when the ledger responds with 401 or 503
// (feature not provisioned for this session). An empty or absent payload
// returns (nil, nil): the user has no aggregate yet.
func (c *Client) FetchState(ctx context.Context) (*experience.Snapshot, error) {
	var response StateResponseDTO
	if err := c.doRequest(ctx, http.MethodGet, statePath, nil, &response); err != nil {
		return nil, fmt.Errorf("fetch experience state: %w", err)
	}

	if response.State == nil {
		return nil, nil
	}
	return c.mapper.HydrationSnapshot(response.State), nil
}

// SubmitEvent submits a points-awarded or badge-earned mutation and
// returns the ledger's canonical snapshot for reconciliation.
// A nil snapshot means the ledger acknowledged without a state payload.
func (c *Client) SubmitEvent(ctx context.Context, ev experience.LedgerEvent) (*experience.Snapshot, error) {
	body := c.mapper.EventToDTO(ev)

	var response StateResponseDTO
	if err := c.doRequest(ctx, http.MethodPost, statePath, body, &response); err != nil {
		return nil, fmt.Errorf("submit %s event: %w", ev.Type, err)
	}

	if response.State == nil {
		return nil, nil
	}
	return c.mapper.ReconcileSnapshot(response.State), nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GAME RESULT OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

// SubmitGameResult submits a completed game to the ledger.
//
// A non-success response is not an error at this layer: the server's
// message (or a generic fallback) is surfaced via the outcome's Error
// field, matching the presentation contract. A returned error therefore
// always means a transport-level failure.
func (c *Client) SubmitGameResult(ctx context.Context, in experience.GameResultInput) (experience.GameResultOutcome, error) {
	body := c.mapper.GameResultToDTO(in)

	var response GameResultResponseDTO
	err := c.doRequest(ctx, http.MethodPost, gameResultPath, body, &response)
	if err == nil {
		return c.mapper.OutcomeFromDTO(&response), nil
	}

	if errors.Is(err, ErrFeatureUnavailable) {
		return experience.GameResultOutcome{Error: "Failed to submit game result."}, nil
	}
	var apiErr *APIErrorDTO
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "Failed to submit game result."
		}
		return experience.GameResultOutcome{Error: msg}, nil
	}
	return experience.GameResultOutcome{}, fmt.Errorf("submit game result: %w", err)
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doRequest performs a single rate-limited HTTP request.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	if err := c.rateLimiter.Allow(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	fullURL := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	if c.config.Debug {
		c.logger.Debug("ledger api request", "method", method, "path", path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	// 401/503 mean the feature is not provisioned for this session.
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusServiceUnavailable {
		return ErrFeatureUnavailable
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIErrorDTO{StatusCode: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil || apiErr.Message == "" {
			apiErr.Message = fmt.Sprintf("ledger error: status %d", resp.StatusCode)
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal response: %w", err)
		}
	}
	return nil
}
