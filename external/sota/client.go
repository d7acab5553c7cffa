package sota

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"syscall"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL  = "https://sota.id/api"
	defaultTokenTTL = 23 * time.Hour
	maxBodyBytes    = 6 << 20
	maxPages        = 500
)

var errSotaTransient = crerr.New("sota transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Email          string
	Password       string
	Timeout        time.Duration
	Retry          resilience.RetryPolicy
	RateLimitRPS   float64
	RateLimitBurst int
	TokenTTL       time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the authenticated SOTA REST API. It is safe for concurrent
// use; identical in-flight GETs share one request.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	email          string
	password       string
	retry          resilience.RetryPolicy
	limiter        *rate.Limiter
	tokenTTL       time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	flight         singleflight.Group
	now            func() time.Time

	mu             sync.Mutex
	token          string
	tokenExpiresAt time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 30 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultTokenTTL
	}

	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)
	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		email:          strings.TrimSpace(cfg.Email),
		password:       cfg.Password,
		retry:          resilience.NormalizeRetryPolicy(cfg.Retry),
		limiter:        rate.NewLimiter(limit, burst),
		tokenTTL:       tokenTTL,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker("sota", breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		now:            time.Now,
	}
}

// Token returns the cached access token, authenticating when none is cached
// or the cached one expired. The cache is checked again inside the shared
// login so a caller that raced a finished login reuses its token.
func (c *Client) Token(ctx context.Context) (string, error) {
	if token, ok := c.cachedToken(); ok {
		return token, nil
	}
	return c.login(ctx, func(ctx context.Context) (string, error) {
		if token, ok := c.cachedToken(); ok {
			return token, nil
		}
		return c.authenticate(ctx)
	})
}

// Authenticate obtains a fresh access token. Concurrent callers share one
// login request.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	return c.login(ctx, c.authenticate)
}

func (c *Client) login(ctx context.Context, fn func(context.Context) (string, error)) (string, error) {
	out, err, _ := c.flight.Do("auth", func() (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return "", err
	}
	return out.(string), nil
}

func (c *Client) cachedToken() (string, bool) {
	c.mu.Lock()
	token, expiresAt := c.token, c.tokenExpiresAt
	c.mu.Unlock()

	if token == "" {
		return "", false
	}
	return token, c.now().Before(expiresAt)
}

func (c *Client) authenticate(ctx context.Context) (string, error) {
	if c.email == "" || c.password == "" {
		return "", fmt.Errorf("%w: sota credentials are not configured", usecase.ErrUnauthorized)
	}
	body, err := sonic.Marshal(authRequest{Email: c.email, Password: c.password})
	if err != nil {
		return "", fmt.Errorf("encode auth request: %w", err)
	}

	authURL := c.baseURL + "/auth/token/"
	var raw []byte
	err = resilience.Retry(ctx, c.retry, isTransient, func(ctx context.Context, _ int) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("content-type", "application/json")
		req.Header.Set("accept", "application/json")

		var status int
		raw, status, err = c.send(ctx, req)
		if err != nil {
			return err
		}
		switch {
		case status >= 200 && status < 300:
			return nil
		case status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusForbidden:
			return fmt.Errorf("%w: sota login rejected status=%d", usecase.ErrUnauthorized, status)
		default:
			return statusError(status, raw)
		}
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sota authentication failed", "error", err)
		return "", wrapExhausted(err)
	}

	var resp authResponse
	if err := sonic.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	if strings.TrimSpace(resp.Access) == "" {
		return "", fmt.Errorf("%w: auth response carries no access token", usecase.ErrUnauthorized)
	}

	c.mu.Lock()
	c.token = resp.Access
	c.tokenExpiresAt = c.now().Add(c.tokenTTL)
	c.mu.Unlock()
	c.logger.InfoContext(ctx, "sota token refreshed", "expires_in", c.tokenTTL.String())
	return resp.Access, nil
}

func (c *Client) invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.tokenExpiresAt = time.Time{}
	}
}

// FetchList returns every item of a collection resource, following the
// `next` cursor. Query parameters apply to the first page only; later pages
// carry them in the cursor.
func (c *Client) FetchList(ctx context.Context, locale usecase.Locale, path string, query url.Values) ([]map[string]any, error) {
	next := c.resourceURL(path, query)
	seen := make(map[string]struct{})
	out := make([]map[string]any, 0, 64)

	for page := 0; next != ""; page++ {
		if page >= maxPages {
			return nil, fmt.Errorf("pagination of %s exceeded %d pages", path, maxPages)
		}
		if _, dup := seen[next]; dup {
			break
		}
		seen[next] = struct{}{}

		var doc any
		if _, err := c.doJSON(ctx, locale, next, &doc); err != nil {
			return nil, err
		}

		switch typed := doc.(type) {
		case []any:
			out = append(out, asMaps(typed)...)
			next = ""
		case map[string]any:
			items, _ := nestedList(typed, "results", "data")
			out = append(out, items...)
			next = c.resolveNext(getString(typed, "next"))
		default:
			return nil, fmt.Errorf("decode provider payload: unexpected list document %T", doc)
		}
	}
	return out, nil
}

// FetchOne returns a single object resource.
func (c *Client) FetchOne(ctx context.Context, locale usecase.Locale, path string, query url.Values) (map[string]any, error) {
	var doc map[string]any
	if _, err := c.doJSON(ctx, locale, c.resourceURL(path, query), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) fetchDocument(ctx context.Context, locale usecase.Locale, path string, query url.Values) (any, error) {
	var doc any
	if _, err := c.doJSON(ctx, locale, c.resourceURL(path, query), &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (c *Client) resourceURL(path string, query url.Values) string {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}
	return fullURL
}

func (c *Client) resolveNext(next string) string {
	if next == "" {
		return ""
	}
	ref, err := url.Parse(next)
	if err != nil {
		return ""
	}
	if ref.IsAbs() {
		return ref.String()
	}
	base, err := url.Parse(c.baseURL + "/")
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}

func (c *Client) doJSON(ctx context.Context, locale usecase.Locale, fullURL string, target any) ([]byte, error) {
	done := func(error) {}
	if c.circuitEnabled {
		var err error
		done, err = c.breaker.Allow()
		if err != nil {
			c.logger.WarnContext(ctx, "sota circuit breaker rejected request", "state", c.breaker.State())
			return nil, fmt.Errorf("%w: sota feed is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	key := string(locale) + " " + fullURL
	out, err, _ := c.flight.Do(key, func() (any, error) {
		return c.get(ctx, locale, fullURL)
	})
	if isCircuitFailure(err) {
		done(err)
	} else {
		done(nil)
	}
	if err != nil {
		return nil, wrapExhausted(err)
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, fmt.Errorf("unexpected response payload type %T", out)
	}
	if err := sonic.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("decode provider payload: %w", err)
	}
	return raw, nil
}

func (c *Client) get(ctx context.Context, locale usecase.Locale, fullURL string) ([]byte, error) {
	var raw []byte
	err := resilience.Retry(ctx, c.retry, isTransient, func(ctx context.Context, _ int) error {
		var err error
		raw, err = c.getOnce(ctx, locale, fullURL, true)
		return err
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sota request failed", "url", redactURL(fullURL), "locale", locale, "error", err)
		return nil, err
	}
	return raw, nil
}

func (c *Client) getOnce(ctx context.Context, locale usecase.Locale, fullURL string, reauth bool) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if locale != "" {
		req.Header.Set("Accept-Language", string(locale))
	}

	started := c.now()
	raw, status, err := c.send(ctx, req)
	if err != nil {
		return nil, err
	}
	c.logger.DebugContext(ctx, "sota request",
		"url", redactURL(fullURL),
		"locale", locale,
		"status", status,
		"duration_ms", c.now().Sub(started).Milliseconds(),
	)
	switch {
	case status >= 200 && status < 300:
		return raw, nil
	case status == http.StatusUnauthorized && reauth:
		c.invalidate(token)
		return c.getOnce(ctx, locale, fullURL, false)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: provider status=%d", usecase.ErrUnauthorized, status)
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: provider status=404 url=%s", usecase.ErrNotFound, redactURL(fullURL))
	default:
		return nil, statusError(status, raw)
	}
}

// send performs one round trip. Network failures of a transient kind are
// marked with errSotaTransient.
func (c *Client) send(ctx context.Context, req *http.Request) ([]byte, int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		if isTransientNetError(err) {
			return nil, 0, fmt.Errorf("%w: send request: %v", errSotaTransient, err)
		}
		return nil, 0, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read response body: %v", errSotaTransient, err)
	}
	return raw, resp.StatusCode, nil
}

func statusError(status int, body []byte) error {
	if isRetryableStatus(status) {
		return fmt.Errorf("%w: provider status=%d body=%s", errSotaTransient, status, abbreviateBody(body))
	}
	return fmt.Errorf("provider status=%d body=%s", status, abbreviateBody(body))
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func isTransient(err error) bool {
	return crerr.Is(err, errSotaTransient)
}

func isTransientNetError(err error) bool {
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return stderrors.Is(err, syscall.ECONNRESET) ||
		stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, io.ErrUnexpectedEOF) ||
		stderrors.Is(err, io.EOF)
}

func isCircuitFailure(err error) bool {
	return err != nil && isTransient(err)
}

// wrapExhausted reports transient failures that outlived the retry policy as
// ErrFetchFailed.
func wrapExhausted(err error) error {
	if isTransient(err) && !stderrors.Is(err, usecase.ErrFetchFailed) {
		return fmt.Errorf("%w: %w", usecase.ErrFetchFailed, err)
	}
	return err
}
