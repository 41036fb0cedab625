// Package client provides the HTTP client for the remote captions API.
// It handles authentication, retry logic with exponential backoff, and maps
// transport failures onto the domain error sentinels so every fetch reports
// exactly one terminal outcome: success, HTTP error, network error, or
// timeout.
package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	mserrors "github.com/otherjamesbrown/meetscribe-cli/pkg/errors"
	"github.com/otherjamesbrown/meetscribe-cli/pkg/logging"
)

// Default client settings.
const (
	DefaultTimeout           = 30 * time.Second
	DefaultConnectTimeout    = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultInitialBackoff    = 100 * time.Millisecond
	DefaultMaxBackoff        = 5 * time.Second
	DefaultBackoffMultiplier = 2.0
	defaultUserAgent         = "mscribe-cli"
)

// Options configures the Client behavior.
type Options struct {
	// BaseURL is the captions API root, e.g. "https://api.example.com".
	BaseURL string

	// Timeout is the overall deadline for one logical call, retries included.
	Timeout time.Duration

	// ConnectTimeout bounds dialing a single connection.
	ConnectTimeout time.Duration

	// MaxRetries is the maximum number of retry attempts for retryable
	// failures (network errors and 5xx responses).
	MaxRetries int

	// InitialBackoff is the initial backoff duration for retries.
	InitialBackoff time.Duration

	// MaxBackoff is the maximum backoff duration for retries.
	MaxBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// Token is the bearer token attached to every request, if set.
	Token string

	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Logger receives debug/warn entries. Defaults to a nop logger.
	Logger logging.Logger

	// HTTPClient overrides the underlying transport (used in tests).
	HTTPClient *http.Client
}

// Client talks to the remote captions API.
type Client struct {
	baseURL    string
	opts       *Options
	httpClient *http.Client
	log        logging.Logger
}

// NewClient creates a Client with the given options, filling in defaults for
// any zero-valued field.
func NewClient(opts *Options) *Client {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = DefaultMaxBackoff
	}
	if opts.BackoffMultiplier <= 0 {
		opts.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	log := opts.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: opts.ConnectTimeout,
				}).DialContext,
			},
		}
	}

	return &Client{
		baseURL:    opts.BaseURL,
		opts:       opts,
		httpClient: httpClient,
		log:        log,
	}
}

// getJSON performs a GET with retries and decodes the caller's view of the
// body via decode. Retries cover network errors and 5xx responses; 4xx
// responses and context cancelation terminate immediately.
func (c *Client) getJSON(ctx context.Context, path string, decode func(io.Reader) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	requestID := uuid.NewString()
	log := c.log.With(logging.F("request_id", requestID), logging.F("path", path))

	backoff := c.opts.InitialBackoff
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Debug("retrying request",
				logging.F("attempt", attempt),
				logging.F("backoff", backoff))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return terminalContextError(ctx.Err())
			}
			backoff = time.Duration(float64(backoff) * c.opts.BackoffMultiplier)
			if backoff > c.opts.MaxBackoff {
				backoff = c.opts.MaxBackoff
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("X-Request-ID", requestID)
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Bearer "+c.opts.Token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return terminalContextError(ctxErr)
			}
			lastErr = fmt.Errorf("request failed: %v: %w", err, mserrors.ErrUnavailable)
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			err := decode(resp.Body)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		case resp.StatusCode == http.StatusNotFound:
			resp.Body.Close()
			return fmt.Errorf("%s: %w", path, mserrors.ErrNotFound)
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			resp.Body.Close()
			return fmt.Errorf("status %d: %w", resp.StatusCode, mserrors.ErrUnauthorized)
		case resp.StatusCode >= 500:
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d: %w", resp.StatusCode, mserrors.ErrUnavailable)
			continue
		default:
			resp.Body.Close()
			return fmt.Errorf("unexpected status %d: %w", resp.StatusCode, mserrors.ErrUnavailable)
		}
	}

	return fmt.Errorf("all %d attempts failed: %w", c.opts.MaxRetries+1, lastErr)
}

// terminalContextError maps context termination onto the domain sentinels.
func terminalContextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("fetch deadline exceeded: %w", mserrors.ErrTimeout)
	}
	return err
}
