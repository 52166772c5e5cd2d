package connection

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/yndnr/delivtrack-go/internal/core/domain"
	"github.com/yndnr/delivtrack-go/internal/telemetry/logger"
	"github.com/yndnr/delivtrack-go/internal/telemetry/metric"
)

// Defaults for Options.
const (
	DefaultBaseURL = "http://localhost:8080/api/v1"
	DefaultTimeout = 10 * time.Second
)

// maxErrorBody caps how much of a failed response is read for its message.
const maxErrorBody = 1 << 20

// TokenSource supplies the current session token. An empty token means
// no session.
type TokenSource interface {
	Token() string
}

// Options configures an HTTPClient.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables
	TLSConfig *tls.Config
	UserAgent string
	Logger    logger.Logger
	Metrics   *metric.Registry
}

// HTTPClient is the single choke point for API calls.
type HTTPClient struct {
	baseURL   string
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	log       logger.Logger
	metrics   *metric.Registry

	mu     sync.RWMutex
	tokens TokenSource

	listeners listenerSet
}

// NewHTTPClient creates a new HTTP client.
func NewHTTPClient(opts Options) *HTTPClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := &http.Client{Timeout: timeout}
	if opts.TLSConfig != nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.TLSClientConfig = opts.TLSConfig
		httpClient.Transport = transport
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "delivtrack/dev"
	}
	log := opts.Logger
	if log == nil {
		log = logger.Default()
	}

	return &HTTPClient{
		baseURL:   baseURL,
		client:    httpClient,
		limiter:   limiter,
		userAgent: ua,
		log:       log.With("component", "http"),
		metrics:   opts.Metrics,
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// UseTokenSource sets where the bearer token is read from.
func (c *HTTPClient) UseTokenSource(ts TokenSource) {
	c.mu.Lock()
	c.tokens = ts
	c.mu.Unlock()
}

// OnUnauthorized registers a listener for 401 responses and returns a
// function that removes it.
func (c *HTTPClient) OnUnauthorized(fn UnauthorizedListener) func() {
	return c.listeners.add(fn)
}

// RequestOption adjusts a single call.
type RequestOption func(*requestConfig)

type requestConfig struct {
	noAuth bool
}

// NoAuth sends the call without a bearer token even if a session exists.
func NoAuth() RequestOption {
	return func(rc *requestConfig) {
		rc.noAuth = true
	}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodPost, path, body, opts...)
}

// Put performs a PUT request with JSON body.
func (c *HTTPClient) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodPut, path, body, opts...)
}

// Delete performs a DELETE request.
func (c *HTTPClient) Delete(ctx context.Context, path string, opts ...RequestOption) (*http.Response, error) {
	return c.Do(ctx, http.MethodDelete, path, nil, opts...)
}

// Do sends one request. A 2xx response is returned unchanged and the
// caller owns its body. Any other outcome is returned as a
// *domain.RequestError with the body already consumed.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Response, error) {
	var rc requestConfig
	for _, opt := range opts {
		opt(&rc)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	requestID := ulid.Make().String()
	ctx = logger.WithRequestID(logger.WithLogger(ctx, c.log), requestID)
	log := logger.L(ctx).With("method", method, "path", path)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.addHeaders(req, requestID, body != nil, rc.noAuth)

	start := time.Now()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.fail(log, method, start, classifyWait(ctx, err))
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, c.fail(log, method, start, classifyTransport(err))
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		c.observe(method, KindOK, start)
		log.Debug("request completed", "status", resp.StatusCode, "elapsed", time.Since(start))
		return resp, nil
	}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	resp.Body.Close()

	reqErr := classifyStatus(resp.StatusCode, data)
	if reqErr.Kind == domain.KindUnauthorized {
		if c.metrics != nil {
			c.metrics.UnauthorizedEvents.Inc()
		}
		c.listeners.emit(UnauthorizedEvent{
			Method:    method,
			Path:      path,
			RequestID: requestID,
			At:        time.Now(),
		})
	}
	return nil, c.fail(log, method, start, reqErr)
}

// DoJSON sends one request and decodes a 2xx body into target.
func (c *HTTPClient) DoJSON(ctx context.Context, method, path string, body, target any, opts ...RequestOption) error {
	resp, err := c.Do(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return ParseResponse(resp, target)
}

func (c *HTTPClient) fail(log logger.Logger, method string, start time.Time, err *domain.RequestError) error {
	c.observe(method, string(err.Kind), start)
	log.Debug("request failed",
		"kind", err.Kind,
		"status", err.Status,
		"cause", err.Cause,
		"elapsed", time.Since(start))
	return err
}

func (c *HTTPClient) observe(method, kind string, start time.Time) {
	if c.metrics != nil {
		c.metrics.ObserveRequest(method, kind, time.Since(start))
	}
}

// addHeaders adds authentication and common headers.
func (c *HTTPClient) addHeaders(req *http.Request, requestID string, hasBody, noAuth bool) {
	if !noAuth {
		if token := c.token(); token != "" {
			(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(req)
		}
	}
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
}

func (c *HTTPClient) token() string {
	c.mu.RLock()
	ts := c.tokens
	c.mu.RUnlock()

	if ts == nil {
		return ""
	}
	return ts.Token()
}

// ParseResponse decodes a JSON response body into target and closes it.
// A nil target discards the body.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if target == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
