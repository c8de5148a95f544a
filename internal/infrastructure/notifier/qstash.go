package notifier

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/survivor-league/internal/domain/notification"
	"github.com/riskibarqy/survivor-league/internal/platform/logging"
	"github.com/riskibarqy/survivor-league/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var errQStashTransient = crerr.New("qstash transient failure")

type QStashConfig struct {
	BaseURL string
	Token   string
	// TargetURL receives the published message, e.g. the push/email gateway.
	TargetURL      string
	Retries        int
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// QStashNotifier publishes notification messages through QStash so delivery
// retries happen outside the request path. Message.DedupID is forwarded as the
// Upstash deduplication id.
type QStashNotifier struct {
	client    *http.Client
	baseURL   string
	token     string
	targetURL string
	retries   int
	logger    *logging.Logger
	breaker   *resilience.CircuitBreaker
}

func NewQStashNotifier(cfg QStashConfig, logger *logging.Logger) *QStashNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &QStashNotifier{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:     strings.TrimSpace(cfg.Token),
		targetURL: strings.TrimSpace(cfg.TargetURL),
		retries:   cfg.Retries,
		logger:    logger,
		breaker:   resilience.NewCircuitBreaker("qstash", cfg.CircuitBreaker, logger),
	}
}

func (n *QStashNotifier) Notify(ctx context.Context, msg notification.Message) error {
	err := n.breaker.Do(func() error { return n.publish(ctx, msg) }, isTransient)
	if stderrors.Is(err, resilience.ErrCircuitOpen) {
		n.logger.WarnContext(ctx, "qstash circuit breaker rejected notification", "state", n.breaker.State(), "kind", msg.Kind)
		return fmt.Errorf("qstash is temporarily unavailable: %w", err)
	}
	return err
}

func (n *QStashNotifier) publish(ctx context.Context, msg notification.Message) error {
	baseURL, err := validateHTTPBaseURL(n.baseURL)
	if err != nil {
		return crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetURL, err := validateHTTPBaseURL(n.targetURL)
	if err != nil {
		return crerr.Wrap(err, "invalid NOTIFICATION_TARGET_URL")
	}
	publishURL := baseURL + "/v2/publish/" + targetURL

	body, err := sonic.Marshal(msg)
	if err != nil {
		return crerr.Wrap(err, "marshal notification")
	}
	dedupID := strings.TrimSpace(msg.DedupID)

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", publishURL),
			attribute.String("notification.kind", msg.Kind),
			attribute.String("notification.dedup_id", dedupID),
		)
	}
	n.logger.DebugContext(ctx, "qstash notification request",
		"kind", msg.Kind,
		"user_id", msg.UserID,
		"curl_preview", buildCurlPreview(publishURL, n.retries, dedupID, truncateForLog(string(body), 2048)),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, publishURL, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	req.Header.Set("Authorization", "Bearer "+n.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Upstash-Method", http.MethodPost)
	if n.retries > 0 {
		req.Header.Set("Upstash-Retries", strconv.Itoa(n.retries))
	}
	if dedupID != "" {
		req.Header.Set("Upstash-Deduplication-Id", dedupID)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: publish notification kind=%s: %v", errQStashTransient, msg.Kind, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		callErr := fmt.Errorf("publish notification kind=%s status=%d body=%s", msg.Kind, resp.StatusCode, strings.TrimSpace(string(raw)))
		if isRetryableStatus(resp.StatusCode) {
			callErr = fmt.Errorf("%w: %v", errQStashTransient, callErr)
		}
		return callErr
	}
	return nil
}

func isTransient(err error) bool {
	return stderrors.Is(err, errQStashTransient)
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}

func buildCurlPreview(publishURL string, retries int, dedupID, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl -X POST")
	appendPart(shellQuote(publishURL))
	appendHeader("Authorization: Bearer ***")
	appendHeader("Content-Type: application/json")
	if retries > 0 {
		appendHeader("Upstash-Retries: " + strconv.Itoa(retries))
	}
	if dedupID != "" {
		appendHeader("Upstash-Deduplication-Id: " + dedupID)
	}
	appendPart("-d")
	appendPart(shellQuote(body))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}
