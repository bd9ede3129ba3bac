// Package ai provides the AI completion client and the strict response
// parser with soft-failure recovery categories.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/alchemorsel/companion/internal/ports/outbound"
	"github.com/alchemorsel/companion/pkg/errors"
)

// Config holds AI client configuration
type Config struct {
	CompletionURL  string
	RequestTimeout time.Duration
}

// Client calls the assistant's completion endpoint. The endpoint wraps the
// model reply in a status envelope; the raw reply text is returned for the
// parser to validate.
type Client struct {
	completionURL string
	httpClient    *http.Client
	logger        *zap.Logger
}

// NewClient creates a new completion client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		completionURL: cfg.CompletionURL,
		httpClient:    &http.Client{Timeout: timeout},
		logger:        logger.Named("ai"),
	}
}

var _ outbound.CompletionService = (*Client)(nil)

// envelope is the completion endpoint's reply wrapper.
type envelope struct {
	Status string `json:"status"`
	Data   struct {
		Reply string `json:"reply"`
	} `json:"data"`
}

// Complete sends the constructed prompt and returns the model's raw reply
// text. Deadline expiry maps to CodeTimeout, every other transport or
// service fault to CodeNetwork.
func (c *Client) Complete(ctx context.Context, req outbound.CompletionRequest) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.NewValidationError("completion request not serializable", err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.completionURL, bytes.NewReader(payload))
	if err != nil {
		return "", errors.NewNetworkError("build completion request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return "", errors.NewTimeoutError("completion request", err)
		}
		return "", errors.NewNetworkError("completion request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewNetworkError("completion request", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", errors.NewNetworkError("completion request", fmt.Errorf("decode envelope: %w", err))
	}
	if env.Status != "success" {
		return "", errors.NewNetworkError("completion request", fmt.Errorf("service reported status %q", env.Status))
	}

	c.logger.Debug("completion received",
		zap.String("request_type", req.RequestType),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("reply_bytes", len(env.Data.Reply)))

	return env.Data.Reply, nil
}

func isTimeout(err error) bool {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return stderrors.As(err, &netErr) && netErr.Timeout()
}
