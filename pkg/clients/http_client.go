// Package clients provides the reliability layer for calls to remote property
// servers: retries with backoff, circuit breaking, rate limiting and OAuth2
// client-credentials authentication.
package clients

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// maxErrorBody bounds how much of an error response is kept in the error.
const maxErrorBody = 4096

// HTTPConfig configures the HTTP client
type HTTPConfig struct {
	RequestTimeout time.Duration
	Retry          *RetryPolicy
	// CircuitBreaker is nil when circuit breaking is disabled
	CircuitBreaker *CircuitBreakerConfig
	RateLimit      float64
	RateBurst      int
	Auth           config.AuthConfig
	// Transport overrides the default transport, mostly for tests
	Transport      http.RoundTripper
}

// DefaultHTTPConfig returns the default configuration
func DefaultHTTPConfig() *HTTPConfig {
	return &HTTPConfig{
		RequestTimeout: 30 * time.Second,
		Retry:          DefaultRetryPolicy(),
		CircuitBreaker: &CircuitBreakerConfig{FailureThreshold: 5, SuccessThreshold: 2, Timeout: 30 * time.Second},
	}
}

// HTTPConfigFrom builds the client configuration from the property server and
// reliability sections.
func HTTPConfigFrom(cfg *config.Config) *HTTPConfig {
	out := &HTTPConfig{
		RequestTimeout: cfg.PropertyServer.Timeout,
		Retry:          NewRetryPolicy(cfg.Reliability),
		RateLimit:      cfg.Reliability.RateLimitPerSec,
		RateBurst:      cfg.Reliability.RateLimitBurst,
		Auth:           cfg.PropertyServer.Auth,
	}
	if cfg.Reliability.CircuitBreaker {
		cb := CircuitBreakerConfigFrom(cfg.Reliability)
		out.CircuitBreaker = &cb
	}
	return out
}

// HTTPClient performs GET requests through the rate limiter, circuit breaker
// and retry policy.
type HTTPClient struct {
	config         *HTTPConfig
	logger         *zap.Logger
	httpClient     *http.Client
	retry          *RetryPolicy
	circuitBreaker *CircuitBreaker
	rateLimiter    *RateLimiter

	totalRequests  int64
	failedRequests int64
}

// NewHTTPClient creates a new HTTP client
func NewHTTPClient(cfg *HTTPConfig, logger *zap.Logger) *HTTPClient {
	if cfg == nil {
		cfg = DefaultHTTPConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("component", "http_client"))

	transport := cfg.Transport
	if transport == nil {
		transport = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: time.Second,
			ForceAttemptHTTP2:     true,
		}
	}

	base := &http.Client{Transport: transport, Timeout: cfg.RequestTimeout}
	httpClient := base
	if cfg.Auth.Enabled() {
		cc := &clientcredentials.Config{
			ClientID:     cfg.Auth.ClientID,
			ClientSecret: cfg.Auth.ClientSecret,
			TokenURL:     cfg.Auth.TokenURL,
			Scopes:       cfg.Auth.Scopes,
		}
		// token requests go through the same transport
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
		httpClient = cc.Client(ctx)
		httpClient.Timeout = cfg.RequestTimeout
		logger.Info("OAuth2 client credentials enabled", zap.String("token_url", cfg.Auth.TokenURL))
	}

	client := &HTTPClient{
		config:     cfg,
		logger:     logger,
		httpClient: httpClient,
		retry:      cfg.Retry,
	}
	if client.retry == nil {
		client.retry = NoRetryPolicy()
	}
	if cfg.CircuitBreaker != nil {
		client.circuitBreaker = NewCircuitBreaker(*cfg.CircuitBreaker, logger)
	}
	if cfg.RateLimit > 0 {
		client.rateLimiter = NewRateLimiter(cfg.RateLimit, cfg.RateBurst)
	}
	return client
}

// Get performs a GET request and returns the response body of a 2xx response.
// Other statuses are turned into typed errors: 400 validation, 404 not found,
// 408 and 504 timeout, 429 rate limit and other 5xx connection.
func (c *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	var body []byte
	err := c.retry.ExecuteWithCondition(ctx, func(ctx context.Context) error {
		var err error
		body, err = c.attempt(ctx, url, headers)
		return err
	}, shouldRetry)
	if err != nil {
		atomic.AddInt64(&c.failedRequests, 1)
		return nil, err
	}
	return body, nil
}

func shouldRetry(err error) bool {
	return ocferrors.IsRetryable(err) && !errors.Is(err, ErrCircuitOpen)
}

func (c *HTTPClient) attempt(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var body []byte
	call := func() error {
		var err error
		body, err = c.do(ctx, url, headers)
		return err
	}

	if c.circuitBreaker != nil {
		return body, c.circuitBreaker.Execute(call)
	}
	return body, call()
}

func (c *HTTPClient) do(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeValidation, "invalid request")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	atomic.AddInt64(&c.totalRequests, 1)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeTimeout, "request cancelled").WithDetail("url", url)
		}
		return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "request failed").WithDetail("url", url)
	}
	defer resp.Body.Close()

	c.logger.Debug("http request",
		zap.String("url", url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, ocferrors.Wrap(err, ocferrors.ErrorTypeConnection, "failed to read response").WithDetail("url", url)
		}
		return body, nil
	}

	msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return nil, StatusError(resp.StatusCode, strings.TrimSpace(string(msg))).WithDetail("url", url)
}

// StatusError maps an HTTP error status to a typed error.
func StatusError(status int, message string) *ocferrors.Error {
	if message == "" {
		message = http.StatusText(status)
	}

	var errType ocferrors.ErrorType
	switch {
	case status == http.StatusBadRequest:
		errType = ocferrors.ErrorTypeValidation
	case status == http.StatusNotFound:
		errType = ocferrors.ErrorTypeNotFound
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		errType = ocferrors.ErrorTypeTimeout
	case status == http.StatusTooManyRequests:
		errType = ocferrors.ErrorTypeRateLimit
	case status >= 500:
		errType = ocferrors.ErrorTypeConnection
	default:
		errType = ocferrors.ErrorTypeData
	}
	return ocferrors.New(errType, message).WithDetail("status", strconv.Itoa(status))
}

// HTTPStats holds request counters.
type HTTPStats struct {
	TotalRequests  int64  `json:"total_requests"`
	FailedRequests int64  `json:"failed_requests"`
	CircuitState   string `json:"circuit_state,omitempty"`
}

// GetStats returns request counters. TotalRequests counts attempts and
// FailedRequests counts calls that failed after all attempts.
func (c *HTTPClient) GetStats() HTTPStats {
	stats := HTTPStats{
		TotalRequests:  atomic.LoadInt64(&c.totalRequests),
		FailedRequests: atomic.LoadInt64(&c.failedRequests),
	}
	if c.circuitBreaker != nil {
		stats.CircuitState = c.circuitBreaker.State().String()
	}
	return stats
}

// Close releases idle connections.
func (c *HTTPClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
