package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/google/uuid"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/exception"
	"github.com/ijalalfrz/koalaroute-booking-gateway/internal/pkg/logger"
)

const maxResponseBytes = 8 << 20

// Authenticator supplies the bearer token for protected calls and is told when the
// booking API rejects it.
type Authenticator interface {
	Token(ctx context.Context) (string, bool)
	OnUnauthorized(ctx context.Context)
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// config for the booking API client
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RateLimitRPS int
	Limiter      RateLimiter
	HTTPClient   *http.Client
}

type Client struct {
	baseURL      string
	httpClient   *http.Client
	auth         Authenticator
	limiter      RateLimiter
	rateLimitRPS int
	maxRetries   int
}

func NewClient(cfg Config, auth Authenticator) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &Client{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   httpClient,
		auth:         auth,
		limiter:      cfg.Limiter,
		rateLimitRPS: cfg.RateLimitRPS,
		maxRetries:   cfg.MaxRetries,
	}
}

type request struct {
	op     string
	method string
	path   string
	body   any
	// fallback is the message used when the error body carries nothing specific.
	fallback string
}

func (c *Client) do(ctx context.Context, req request, out any) error {
	if err := c.allow(ctx, req.op); err != nil {
		return err
	}

	var reqBody io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("failed to marshal %s request: %w", req.op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", req.op, err)
	}

	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	requestID := logger.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	httpReq.Header.Set("X-Request-Id", requestID)

	if c.auth != nil {
		if token, ok := c.auth.Token(ctx); ok {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTransport.WithCause(fmt.Errorf("read %s response: %w", req.op, err))
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		slog.WarnContext(ctx, "booking api rejected credentials",
			slog.String("op", req.op), slog.Int("status", resp.StatusCode))
		if c.auth != nil {
			c.auth.OnUnauthorized(ctx)
		}
		return ErrUnauthorized
	}

	isJSON := isJSONContentType(resp.Header.Get("Content-Type"))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return upstreamError(resp.StatusCode, body, isJSON, req.fallback)
	}

	if !isJSON {
		return ErrNonJSONResponse.WithCause(fmt.Errorf("%s: content type %q", req.op, resp.Header.Get("Content-Type")))
	}

	if out == nil {
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return ErrNonJSONResponse.WithCause(fmt.Errorf("decode %s response: %w", req.op, err))
	}

	return nil
}

// doWithRetry retries idempotent reads on transport errors with exponential backoff.
func (c *Client) doWithRetry(ctx context.Context, req request, out any) error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		lastErr = c.do(ctx, req, out)
		if lastErr == nil {
			return nil
		}

		if kind, _ := exception.KindOf(lastErr); kind != exception.KindTransport ||
			errors.Is(lastErr, ErrRateLimitExceeded) {
			return lastErr
		}

		if attempt < c.maxRetries {
			// Exponential backoff: 200ms * 2^attempt
			backoff := time.Duration(200*(1<<attempt)) * time.Millisecond
			slog.InfoContext(ctx, "retrying booking api call with exponential backoff",
				slog.String("op", req.op), slog.Duration("backoff", backoff), slog.Int("next_attempt", attempt+2))

			timer := time.NewTimer(backoff)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}

	return lastErr
}

func (c *Client) allow(ctx context.Context, op string) error {
	if c.limiter == nil || c.rateLimitRPS <= 0 {
		return nil
	}

	res, err := c.limiter.Allow(ctx, fmt.Sprintf("limit:bookingapi:%s", op), redis_rate.PerSecond(c.rateLimitRPS))
	if err != nil {
		return fmt.Errorf("failed to rate limit: %w", err)
	}

	if res.Allowed == 0 {
		return ErrRateLimitExceeded
	}

	return nil
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

type errorDetail struct {
	Code   any    `json:"code"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

type errorBody struct {
	Error   json.RawMessage `json:"error"`
	Errors  []errorDetail   `json:"errors"`
	Message string          `json:"message"`
	Detail  string          `json:"detail"`
	Details string          `json:"details"`
}

// upstreamError builds a business error carrying the most specific message the body offers:
// error.errors[0].detail > errors[0].detail > error (string) > message > detail(s) > fallback.
func upstreamError(status int, body []byte, isJSON bool, fallback string) error {
	appErr := ErrRequestFailed
	if status >= 400 && status < 500 {
		appErr.StatusCode = http.StatusUnprocessableEntity
	}
	if fallback != "" {
		appErr.Message = fallback
	}

	cause := fmt.Errorf("booking api responded with status %d", status)

	if !isJSON {
		return appErr.WithCause(cause)
	}

	if msg := ErrorMessage(body); msg != "" {
		appErr.Message = msg
	}

	return appErr.WithCause(cause)
}

// ErrorMessage extracts the most specific error message from a booking API error body.
func ErrorMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}

	if len(eb.Error) > 0 {
		var nested struct {
			Errors []errorDetail `json:"errors"`
			Detail string        `json:"detail"`
		}
		if err := json.Unmarshal(eb.Error, &nested); err == nil {
			if msg := firstDetail(nested.Errors); msg != "" {
				return msg
			}
			if nested.Detail != "" {
				return nested.Detail
			}
		}
	}

	if msg := firstDetail(eb.Errors); msg != "" {
		return msg
	}

	if len(eb.Error) > 0 {
		var s string
		if err := json.Unmarshal(eb.Error, &s); err == nil && s != "" {
			return s
		}
	}

	for _, msg := range []string{eb.Message, eb.Detail, eb.Details} {
		if msg != "" {
			return msg
		}
	}

	return ""
}

func firstDetail(details []errorDetail) string {
	for _, d := range details {
		if d.Detail != "" {
			return d.Detail
		}
		if d.Title != "" {
			return d.Title
		}
	}

	return ""
}
