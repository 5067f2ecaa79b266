package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/quantmind-br/gitingest-go/internal/domain"
	"github.com/quantmind-br/gitingest-go/internal/utils"
)

// Defaults of a remote ingestion call
const (
	DefaultBaseURL      = "http://192.168.50.90:8082"
	DefaultMaxFileSize  = 243
	DefaultPatternType  = "exclude"
	DefaultMaxRetries   = 3
	DefaultInitialDelay = 1 * time.Second
	DefaultTimeout      = 5 * time.Minute
	MaxRetryDelay       = 1 * time.Hour

	// BaseURLEnv names the environment variable holding the service URL
	BaseURLEnv = "GITINGEST_URL"

	ingestPath = "/api/v1/ingest"
)

// Options are per-call settings of Ingest
type Options struct {
	// RequestHeartbeat is accepted for agent tool compatibility and has no effect
	RequestHeartbeat bool
	MaxFileSize      int // kilobytes
	PatternType      string
	MaxRetries       int // total attempts
	InitialDelay     time.Duration
}

// DefaultOptions returns default call options
func DefaultOptions() Options {
	return Options{
		MaxFileSize:  DefaultMaxFileSize,
		PatternType:  DefaultPatternType,
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = d.MaxFileSize
	}
	if o.PatternType == "" {
		o.PatternType = d.PatternType
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = d.MaxRetries
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = d.InitialDelay
	}
	return o
}

// AnalysisError is returned by Ingest. Its message is the text Gitingest
// reports in place of a result.
type AnalysisError struct {
	Exhausted bool // every attempt failed with a retryable error
	Err       error
}

func (e *AnalysisError) Error() string {
	if e.Exhausted {
		return fmt.Sprintf("Repository analysis failed after multiple attempts: %v", e.Err)
	}
	return "Repository analysis failed: " + upperFirst(e.Err.Error())
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// Client calls the ingestion endpoint of a remote gitingest service
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *utils.Logger
	newTimer   func() backoff.Timer
}

// ClientOptions contains options for creating a Client
type ClientOptions struct {
	BaseURL    string // defaults to $GITINGEST_URL, then DefaultBaseURL
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     *utils.Logger
}

// NewClient creates a new Client
func NewClient(opts ClientOptions) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = os.Getenv(BaseURLEnv)
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the service URL requests are sent to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ingest analyzes repoURL on the remote service and returns the formatted
// report. Transport failures, 5xx and 429 responses are retried with a
// doubling delay; other failures return immediately. Sleeping between
// attempts blocks the calling goroutine.
func (c *Client) Ingest(ctx context.Context, repoURL string, opts Options) (string, error) {
	opts = opts.withDefaults()
	endpoint := c.requestURL(repoURL, opts)

	retrier := NewRetrier(RetrierOptions{
		MaxAttempts:     opts.MaxRetries,
		InitialInterval: opts.InitialDelay,
		NewTimer:        c.newTimer,
	})

	var report string
	err := retrier.Retry(ctx, func() error {
		var err error
		report, err = c.fetch(ctx, endpoint)
		return err
	}, func(attempt int, err error) {
		c.logger.Error().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", opts.MaxRetries).
			Str("url", repoURL).
			Msg("Analysis attempt failed")
	})
	if err != nil {
		return "", &AnalysisError{Exhausted: domain.IsRetryable(err), Err: err}
	}

	return report, nil
}

// Gitingest is Ingest with failures rendered as text, for callers that
// relay the result verbatim.
func (c *Client) Gitingest(ctx context.Context, repoURL string, opts Options) string {
	report, err := c.Ingest(ctx, repoURL, opts)
	if err != nil {
		return err.Error()
	}
	return report
}

func (c *Client) requestURL(repoURL string, opts Options) string {
	params := url.Values{}
	params.Set("url", repoURL)
	params.Set("max_file_size", strconv.Itoa(opts.MaxFileSize))
	params.Set("pattern_type", opts.PatternType)
	return c.baseURL + ingestPath + "?" + params.Encode()
}

// fetch performs a single attempt
func (c *Client) fetch(ctx context.Context, endpoint string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			err = fmt.Errorf("%w: %w", domain.ErrTimeout, err)
		}
		return "", domain.NewRetryableError(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", domain.NewFetchError(endpoint, resp.StatusCode, domain.ErrRateLimited)
	case resp.StatusCode != http.StatusOK:
		return "", domain.NewFetchError(endpoint, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewRetryableError(fmt.Errorf("failed to read response: %w", err))
	}
	if len(body) == 0 {
		return "", domain.ErrEmptyResponse
	}

	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}

	fields, _ := data.(map[string]any)
	return FormatReport(fields), nil
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
