package webhook

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/match-predictor/internal/domain/notification"
	"github.com/riskibarqy/match-predictor/internal/platform/logging"
	"github.com/riskibarqy/match-predictor/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	SecretHeader     = "X-Webhook-Secret"
	EventHeader      = "X-Webhook-Event"
	defaultTimeout   = 5 * time.Second
	bodyPreviewBytes = 512
)

var errWebhookTransient = crerr.New("webhook transient failure")

type PublisherConfig struct {
	URL            string
	Secret         string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Publisher POSTs every event as JSON to one endpoint.
type Publisher struct {
	client  *fasthttp.Client
	url     string
	secret  string
	timeout time.Duration
	logger  *logging.Logger
	breaker *resilience.CircuitBreaker
}

func NewPublisher(cfg PublisherConfig, logger *logging.Logger) (*Publisher, error) {
	target, err := validateHTTPURL(cfg.URL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid WEBHOOK_URL")
	}
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Publisher{
		client: &fasthttp.Client{
			Name:         "match-predictor-webhook",
			ReadTimeout:  timeout,
			WriteTimeout: timeout,
		},
		url:     target,
		secret:  strings.TrimSpace(cfg.Secret),
		timeout: timeout,
		logger:  logger,
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker),
	}, nil
}

func (p *Publisher) Publish(ctx context.Context, event notification.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(event); err != nil {
		return crerr.Wrapf(err, "encode webhook event=%s", event.Name)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("webhook.event", event.Name),
			attribute.String("webhook.url", p.url),
			attribute.Int("webhook.body_bytes", buf.Len()),
		)
	}

	err := p.breaker.Execute(func() error {
		return p.send(ctx, event.Name, buf.B)
	}, isCircuitFailure)
	if err != nil {
		if crerr.Is(err, resilience.ErrCircuitOpen) {
			p.logger.WarnContext(ctx, "webhook circuit breaker rejected event", "event", event.Name, "state", p.breaker.State())
			return crerr.Wrap(err, "webhook endpoint is temporarily unavailable")
		}
		p.logger.WarnContext(ctx, "webhook delivery failed",
			"event", event.Name,
			"match_id", event.MatchID,
			"body_preview", previewBody(buf.B),
			"error", err,
		)
		return err
	}

	p.logger.DebugContext(ctx, "webhook event delivered", "event", event.Name, "match_id", event.MatchID)
	return nil
}

func (p *Publisher) send(ctx context.Context, eventName string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(p.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set(EventHeader, eventName)
	if p.secret != "" {
		req.Header.Set(SecretHeader, p.secret)
	}
	req.SetBody(body)

	deadline := time.Now().Add(p.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := p.client.DoDeadline(req, resp, deadline); err != nil {
		return crerr.Wrapf(errWebhookTransient, "post webhook event=%s: %v", eventName, err)
	}

	status := resp.StatusCode()
	if status/100 == 2 {
		return nil
	}
	if isRetryableStatus(status) {
		return crerr.Wrapf(errWebhookTransient, "post webhook event=%s status=%d body=%s", eventName, status, previewBody(resp.Body()))
	}
	return crerr.Newf("post webhook event=%s status=%d body=%s", eventName, status, previewBody(resp.Body()))
}

func validateHTTPURL(raw string) (string, error) {
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
	return candidate, nil
}

func previewBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= bodyPreviewBytes {
		return text
	}
	return fmt.Sprintf("%s...(truncated %d bytes)", text[:bodyPreviewBytes], len(text)-bodyPreviewBytes)
}

func isCircuitFailure(err error) bool {
	return crerr.Is(err, errWebhookTransient)
}

func isRetryableStatus(status int) bool {
	return status == fasthttp.StatusRequestTimeout ||
		status == fasthttp.StatusTooManyRequests ||
		status >= fasthttp.StatusInternalServerError
}
