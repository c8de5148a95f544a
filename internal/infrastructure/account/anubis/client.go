package anubis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/survivor-league/internal/domain/user"
	"github.com/riskibarqy/survivor-league/internal/platform/cache"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/resilience"
	"github.com/riskibarqy/survivor-league/internal/usecase"
	"github.com/valyala/fasthttp"
)

var errAnubisTransient = crerr.New("anubis transient failure")

type ClientConfig struct {
	BaseURL        string
	IntrospectPath string
	AdminKey       string
	Timeout        time.Duration
	CacheTTL       time.Duration
	CacheMaxSize   int
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client resolves bearer tokens to principals through the Anubis
// introspection endpoint.
type Client struct {
	httpClient    *fasthttp.Client
	introspectURL string
	adminKey      string
	timeout       time.Duration
	// nil when CacheTTL <= 0
	principals *cache.Store
	breaker    *resilience.CircuitBreaker
	logger     *logging.Logger
}

func NewClient(cfg ClientConfig, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Client{
		httpClient: &fasthttp.Client{
			Name:                "survivor-league",
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
		introspectURL: introspectionURL(cfg.BaseURL, cfg.IntrospectPath),
		adminKey:      strings.TrimSpace(cfg.AdminKey),
		timeout:       timeout,
		principals:    newPrincipalStore(cfg),
		breaker:       resilience.NewCircuitBreaker("anubis", cfg.CircuitBreaker, logger),
		logger:        logger,
	}
}

func (c *Client) VerifyAccessToken(ctx context.Context, token string) (user.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return user.Principal{}, fmt.Errorf("%w: token is required", usecase.ErrUnauthorized)
	}

	if c.principals == nil {
		return c.verify(ctx, token)
	}
	// Keyed by token hash so raw tokens never sit in memory. Concurrent
	// requests carrying the same token share one introspection.
	sum := sha256.Sum256([]byte(token))
	value, err := c.principals.GetOrLoad(ctx, "principal:"+hex.EncodeToString(sum[:]), func(ctx context.Context) (any, error) {
		return c.verify(ctx, token)
	})
	if err != nil {
		return user.Principal{}, err
	}
	return value.(user.Principal), nil
}

func newPrincipalStore(cfg ClientConfig) *cache.Store {
	if cfg.CacheTTL <= 0 {
		return nil
	}
	return cache.NewStore(cfg.CacheTTL, cache.WithMaxEntries(cfg.CacheMaxSize))
}

// verify runs one introspection through the circuit breaker. Only transport
// failures and 5xx/429 responses count against the breaker.
func (c *Client) verify(ctx context.Context, token string) (user.Principal, error) {
	var principal user.Principal
	err := c.breaker.Do(func() error {
		var callErr error
		principal, callErr = c.introspect(ctx, token)
		return callErr
	}, func(err error) bool { return errors.Is(err, errAnubisTransient) })
	if errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "anubis circuit breaker rejected request", "state", c.breaker.State())
		return user.Principal{}, fmt.Errorf("%w: anubis circuit open", usecase.ErrDependencyUnavailable)
	}
	return principal, err
}

func (c *Client) introspect(ctx context.Context, token string) (user.Principal, error) {
	body, err := sonic.Marshal(introspectRequest{Token: token})
	if err != nil {
		return user.Principal{}, crerr.Wrap(err, "marshal introspect request")
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.introspectURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Accept", "application/json")
	if c.adminKey != "" {
		req.Header.Set("x-admin-key", c.adminKey)
	}
	req.SetBody(body)

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return user.Principal{}, fmt.Errorf("%w: %w: request introspection: %v", usecase.ErrDependencyUnavailable, errAnubisTransient, err)
	}

	status := resp.StatusCode()
	switch {
	case status == http.StatusUnauthorized:
		return user.Principal{}, fmt.Errorf("%w: introspection denied", usecase.ErrUnauthorized)
	case status == http.StatusForbidden:
		// anubis rejected our admin key, not the caller's token
		c.logger.WarnContext(ctx, "anubis rejected admin key", "status_code", status)
		return user.Principal{}, fmt.Errorf("%w: anubis forbidden", usecase.ErrDependencyUnavailable)
	case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
		return user.Principal{}, fmt.Errorf("%w: %w: anubis status %d", usecase.ErrDependencyUnavailable, errAnubisTransient, status)
	case status != http.StatusOK:
		c.logger.WarnContext(ctx, "anubis introspection non-200", "status_code", status)
		return user.Principal{}, fmt.Errorf("%w: anubis status %d", usecase.ErrDependencyUnavailable, status)
	}

	var decoded introspectResponse
	if err := sonic.Unmarshal(resp.Body(), &decoded); err != nil {
		return user.Principal{}, crerr.Wrap(err, "unmarshal introspect response")
	}
	if !decoded.Active {
		return user.Principal{}, fmt.Errorf("%w: inactive token", usecase.ErrUnauthorized)
	}
	if strings.TrimSpace(decoded.UserID) == "" {
		return user.Principal{}, crerr.New("invalid introspect response: user_id is empty")
	}

	return user.Principal{
		UserID: strings.TrimSpace(decoded.UserID),
		Email:  decoded.Email,
		Roles:  user.NormalizeRoles(decoded.Roles),
	}, nil
}

type introspectRequest struct {
	Token string `json:"token"`
}

type introspectResponse struct {
	Active bool     `json:"active"`
	UserID string   `json:"user_id"`
	Email  string   `json:"email"`
	Roles  []string `json:"roles"`
}

// introspectionURL joins base and path; an absolute path wins.
func introspectionURL(baseURL, path string) string {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if path == "" {
		return baseURL
	}
	return baseURL + "/" + strings.TrimLeft(path, "/")
}
