package sleeper

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/cache"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/logging"
	"github.com/riskibarqy/dynasty-lineage/internal/platform/resilience"
	"github.com/riskibarqy/dynasty-lineage/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"
)

const (
	defaultBaseURL     = "https://api.sleeper.app/v1"
	maxResponseBytes   = 64 << 20
	responseCacheScope = "sleeper:"
)

var _ usecase.ResponseFlusher = (*Client)(nil)

var (
	errSleeperTransient = crerr.New("sleeper transient failure")
	errSleeperNotFound  = crerr.New("sleeper resource not found")
)

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	// RateLimiter is shared by every request of the process. When nil a
	// limiter is built from MinRequestInterval.
	RateLimiter        *resilience.RateLimiter
	MinRequestInterval time.Duration
	// ResponseCache keeps decoded-ready response bodies until ClearCache.
	ResponseCache  *cache.Store
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads league history from the Sleeper public API. It is safe for
// concurrent use; all requests pass through one rate limiter.
type Client struct {
	httpClient *http.Client
	baseURL    string
	retry      resilience.RetryPolicy
	limiter    *resilience.RateLimiter
	responses  *cache.Store
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     singleflight.Group
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
		httpClient.Timeout = 20 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := cfg.RateLimiter
	if limiter == nil {
		limiter = resilience.NewRateLimiter(cfg.MinRequestInterval)
	}
	responses := cfg.ResponseCache
	if responses == nil {
		responses = cache.NewStore(0)
	}
	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("sleeper circuit breaker state changed", "from", from, "to", to)
		}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		retry:      resilience.RetryPolicy{MaxRetries: max(cfg.MaxRetries, 0), BaseDelay: cfg.RetryBaseDelay},
		limiter:    limiter,
		responses:  responses,
		logger:     logger,
		breaker:    breakerCfg.Build(),
	}
}

// ClearCache drops every cached response.
func (c *Client) ClearCache() {
	c.responses.DeletePrefix(context.Background(), responseCacheScope)
}

// doJSON fetches path and decodes it into target. Identical concurrent
// requests share one round trip and successful bodies are cached.
func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	key := responseCacheScope + path
	if cached, ok := c.responses.Get(ctx, key); ok {
		return decode(cached.([]byte), target)
	}

	out, err, _ := c.flight.Do(key, func() (any, error) {
		if cached, ok := c.responses.Get(ctx, key); ok {
			return cached, nil
		}
		raw, reqErr := c.requestWithBreaker(ctx, path)
		if reqErr != nil {
			return nil, reqErr
		}
		c.responses.Set(ctx, key, raw)
		return raw, nil
	})
	if err != nil {
		return mapError(err, path)
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}
	return decode(raw, target)
}

func (c *Client) requestWithBreaker(ctx context.Context, path string) ([]byte, error) {
	if c.breaker == nil {
		return c.executeRequest(ctx, c.baseURL+path)
	}

	var raw []byte
	err := c.breaker.Do(func() error {
		var reqErr error
		raw, reqErr = c.executeRequest(ctx, c.baseURL+path)
		return reqErr
	}, isCircuitFailure)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "sleeper circuit breaker rejected request", "state", c.breaker.State(), "path", path)
	}
	return raw, err
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	attempts := c.retry.Attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = crerr.Wrapf(errSleeperTransient, "send request: %v", err)
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Wrapf(errSleeperTransient, "read response body: %v", readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case resp.StatusCode == http.StatusNotFound:
				return nil, crerr.Wrapf(errSleeperNotFound, "status=%d", resp.StatusCode)
			case isRetryableStatus(resp.StatusCode):
				lastErr = crerr.Wrapf(errSleeperTransient, "status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, crerr.Newf("sleeper status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == attempts {
			break
		}
		if err := resilience.Sleep(ctx, c.retry.Backoff(attempt)); err != nil {
			return nil, err
		}
	}

	if lastErr == nil {
		lastErr = crerr.New("sleeper request failed")
	}
	c.logger.WarnContext(ctx, "sleeper request failed", "url", fullURL, "attempts", attempts, "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxResponseBytes)); err != nil {
		return nil, err
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func decode(raw []byte, target any) error {
	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrap(err, "decode sleeper payload")
	}
	return nil
}

// mapError translates transport failures into use case sentinels.
func mapError(err error, path string) error {
	switch {
	case err == nil:
		return nil
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		return err
	case crerr.Is(err, errSleeperNotFound):
		return fmt.Errorf("%w: sleeper %s", usecase.ErrNotFound, path)
	case stderrors.Is(err, resilience.ErrCircuitOpen):
		return fmt.Errorf("%w: sleeper is temporarily unavailable", usecase.ErrDependencyUnavailable)
	default:
		return fmt.Errorf("%w: sleeper %s: %v", usecase.ErrDependencyUnavailable, path, err)
	}
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errSleeperTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
