package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/foxseedlab/kikitori/internal/webhook"
)

const (
	defaultRequestTimeout = 30 * time.Second
	defaultMaxAttempts    = 3
	defaultRetryDelay     = time.Second
	responseExcerptLimit  = 256
)

// StatusError reports a webhook response outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("webhook responded with status %d", e.StatusCode)
	}
	return fmt.Sprintf("webhook responded with status %d: %s", e.StatusCode, e.Body)
}

func (e *StatusError) retryable() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

type Option func(*JSONSender)

func WithHTTPClient(client *http.Client) Option {
	return func(s *JSONSender) { s.client = client }
}

// WithRetry sets how many times a delivery is attempted and the base delay,
// which doubles after every failed attempt.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *JSONSender) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
		s.retryDelay = delay
	}
}

// JSONSender posts transcript payloads as JSON. An empty endpoint makes it
// a no-op.
type JSONSender struct {
	endpoint    string
	client      *http.Client
	maxAttempts int
	retryDelay  time.Duration
}

func NewJSONSender(endpoint string, opts ...Option) *JSONSender {
	s := &JSONSender{
		endpoint:    endpoint,
		client:      &http.Client{Timeout: defaultRequestTimeout},
		maxAttempts: defaultMaxAttempts,
		retryDelay:  defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ webhook.Sender = (*JSONSender)(nil)

func (s *JSONSender) SendTranscript(ctx context.Context, payload webhook.TranscriptWebhookPayload) error {
	if s.endpoint == "" {
		return nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode transcript payload: %w", err)
	}

	delay := s.retryDelay
	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = s.post(ctx, body)
		if lastErr == nil {
			return nil
		}
		if !shouldRetry(lastErr) || attempt == s.maxAttempts {
			break
		}
		slog.Warn("webhook delivery failed, retrying",
			"attempt", attempt,
			"error", lastErr,
		)
		select {
		case <-ctx.Done():
			return fmt.Errorf("webhook delivery: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return lastErr
}

func (s *JSONSender) post(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, responseExcerptLimit))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(excerpt))}
}

// shouldRetry retries transport failures and server side statuses.
// Cancellation of the caller's context is never retried.
func shouldRetry(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.retryable()
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
