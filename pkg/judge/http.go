package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/adforge/pkg/buildinfo"
	"github.com/matzehuels/adforge/pkg/errors"
	"github.com/matzehuels/adforge/pkg/httputil"
	"github.com/matzehuels/adforge/pkg/observability"
)

const (
	defaultHTTPTimeout = 20 * time.Second
	maxReplyBytes      = 1 << 20
)

// HTTPJudge posts prompts as JSON to a remote judgment endpoint and returns
// the response body as the reply text.
//
// 5xx responses and transport failures are retried with backoff; 4xx
// responses fail immediately. Every failure is reported as
// JUDGMENT_UNAVAILABLE.
type HTTPJudge struct {
	url     string
	client  *http.Client
	headers map[string]string
	policy  httputil.Policy
	logger  *log.Logger
}

// HTTPOption configures an [HTTPJudge].
type HTTPOption func(*HTTPJudge)

// WithHTTPClient replaces the default client (20s timeout).
func WithHTTPClient(c *http.Client) HTTPOption { return func(j *HTTPJudge) { j.client = c } }

// WithHeader adds a header to every request, e.g. an API key.
func WithHeader(k, v string) HTTPOption { return func(j *HTTPJudge) { j.headers[k] = v } }

// WithRetryPolicy overrides [httputil.DefaultPolicy].
func WithRetryPolicy(p httputil.Policy) HTTPOption { return func(j *HTTPJudge) { j.policy = p } }

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l *log.Logger) HTTPOption { return func(j *HTTPJudge) { j.logger = l } }

// NewHTTPJudge creates a judge for the endpoint at url.
func NewHTTPJudge(endpoint string, opts ...HTTPOption) (*HTTPJudge, error) {
	if err := errors.ValidateURL(endpoint); err != nil {
		return nil, err
	}
	j := &HTTPJudge{
		url:     endpoint,
		client:  &http.Client{Timeout: defaultHTTPTimeout},
		headers: map[string]string{"Content-Type": "application/json", "Accept": "application/json, text/plain", "User-Agent": buildinfo.UserAgent()},
		policy:  httputil.DefaultPolicy,
		logger:  log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j, nil
}

// Compute sends p and returns the reply body.
func (j *HTTPJudge) Compute(ctx context.Context, p Prompt) (string, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}

	var reply string
	err = httputil.Retry(ctx, j.policy, func(attempt int) error {
		text, err := j.post(ctx, body)
		if err != nil {
			j.logger.Debug("judge request failed", "kind", p.Kind, "attempt", attempt, "err", err)
			return err
		}
		reply = text
		return nil
	})
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeJudgmentUnavailable, err, "%s judgment", p.Kind)
	}
	return reply, nil
}

func (j *HTTPJudge) post(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, j.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	for k, v := range j.headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := j.client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return "", httputil.Retryable(fmt.Errorf("post %s: %w", j.url, err))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		return "", httputil.Retryable(fmt.Errorf("read reply: %w", err))
	}

	switch {
	case resp.StatusCode >= 500:
		return "", httputil.Retryable(fmt.Errorf("judge returned status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("judge returned status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	return string(data), nil
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}
