package sota

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/matchsync/internal/domain/lineup"
	"github.com/riskibarqy/matchsync/internal/platform/logging"
	"github.com/riskibarqy/matchsync/internal/platform/resilience"
	"github.com/riskibarqy/matchsync/internal/usecase"
	"github.com/valyala/fasthttp"
)

const (
	defaultLiveBaseURL = "https://sota.id/em"
	maxLiveRedirects   = 3
)

// TokenSource hands out the access token the live documents are signed with.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type LiveClientConfig struct {
	HTTPClient *fasthttp.Client
	BaseURL    string
	Timeout    time.Duration
	Retry      resilience.RetryPolicy
	Tokens     TokenSource
	Logger     *logging.Logger
}

// LiveClient reads the static per-match documents published during a game.
type LiveClient struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	retry   resilience.RetryPolicy
	tokens  TokenSource
	logger  *logging.Logger
}

var _ usecase.LiveFeed = (*LiveClient)(nil)

func NewLiveClient(cfg LiveClientConfig) *LiveClient {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &fasthttp.Client{
			Name:                "matchsync",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
			MaxResponseBodySize: maxBodyBytes,
		}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultLiveBaseURL
	}
	return &LiveClient{
		client:  client,
		baseURL: baseURL,
		timeout: timeout,
		retry:   resilience.NormalizeRetryPolicy(cfg.Retry),
		tokens:  cfg.Tokens,
		logger:  logger,
	}
}

func (c *LiveClient) FetchLiveLineup(ctx context.Context, gameSotaID string, side lineup.Side) (usecase.ExternalLineupFeed, error) {
	raw, err := c.getDocument(ctx, fmt.Sprintf("%s-team-%s.json", gameSotaID, side))
	if err != nil {
		return usecase.ExternalLineupFeed{}, fmt.Errorf("fetch live lineup game_id=%s side=%s: %w", gameSotaID, side, err)
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return usecase.ExternalLineupFeed{}, fmt.Errorf("decode live lineup game_id=%s side=%s: %w", gameSotaID, side, err)
	}
	return ParseLineupFeed(rows), nil
}

func (c *LiveClient) FetchLiveEvents(ctx context.Context, gameSotaID string) ([]usecase.ExternalLiveEvent, error) {
	raw, err := c.getDocument(ctx, gameSotaID+"-list.json")
	if err != nil {
		return nil, fmt.Errorf("fetch live events game_id=%s: %w", gameSotaID, err)
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, fmt.Errorf("decode live events game_id=%s: %w", gameSotaID, err)
	}
	return ParseEventFeed(rows), nil
}

func (c *LiveClient) getDocument(ctx context.Context, name string) ([]byte, error) {
	var raw []byte
	err := resilience.Retry(ctx, c.retry, isTransient, func(ctx context.Context, _ int) error {
		var err error
		raw, err = c.getOnce(ctx, name)
		return err
	})
	if err != nil {
		c.logger.WarnContext(ctx, "sota live document request failed", "document", name, "error", err)
		return nil, wrapExhausted(err)
	}
	return raw, nil
}

func (c *LiveClient) getOnce(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docURL := c.baseURL + "/" + name
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		docURL += "?access_token=" + url.QueryEscape(token)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(docURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("accept", "application/json")
	req.SetTimeout(c.requestTimeout(ctx))

	if err := c.client.DoRedirects(req, resp, maxLiveRedirects); err != nil {
		if isTransientLiveError(err) {
			return nil, fmt.Errorf("%w: send request: %v", errSotaTransient, err)
		}
		return nil, fmt.Errorf("send request: %w", err)
	}

	status := resp.StatusCode()
	body := append([]byte(nil), resp.Body()...)
	c.logger.DebugContext(ctx, "live document get", "document", name, "status", status, "bytes", len(body))
	switch {
	case status >= 200 && status < 300:
		return body, nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return nil, fmt.Errorf("%w: live document status=%d", usecase.ErrUnauthorized, status)
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%w: live document %s", usecase.ErrNotFound, name)
	default:
		return nil, statusError(status, body)
	}
}

// requestTimeout caps the client timeout by the context deadline.
func (c *LiveClient) requestTimeout(ctx context.Context) time.Duration {
	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}
	if timeout <= 0 {
		timeout = time.Millisecond
	}
	return timeout
}

func isTransientLiveError(err error) bool {
	return stderrors.Is(err, fasthttp.ErrTimeout) ||
		stderrors.Is(err, fasthttp.ErrConnectionClosed) ||
		stderrors.Is(err, fasthttp.ErrNoFreeConns) ||
		isTransientNetError(err)
}

// decodeRows reads a JSON array of objects. Some documents are published as
// a JSON string holding the array.
func decodeRows(raw []byte) ([]map[string]any, error) {
	var doc any
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if text, ok := doc.(string); ok {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, nil
		}
		if err := sonic.UnmarshalString(text, &doc); err != nil {
			return nil, err
		}
	}
	if doc == nil {
		return nil, nil
	}
	if _, ok := doc.([]any); !ok {
		return nil, fmt.Errorf("unexpected document %T", doc)
	}
	return asMaps(doc), nil
}
