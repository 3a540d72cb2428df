package ghn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// maxResponseSize is the maximum allowed response body size (10MB)
const maxResponseSize = 10 * 1024 * 1024

const defaultTimeout = 20 * time.Second

var validate = validator.New()

// Config holds GHN API configuration.
type Config struct {
	BaseURL string
	Token   string
	ShopID  string
	Timeout time.Duration
	Retry   RetryPolicy
}

// Validate reports a KindConfig error when any credential is missing.
func (c Config) Validate() error {
	var missing []string
	if strings.TrimSpace(c.BaseURL) == "" {
		missing = append(missing, "base URL")
	}
	if strings.TrimSpace(c.Token) == "" {
		missing = append(missing, "token")
	}
	if strings.TrimSpace(c.ShopID) == "" {
		missing = append(missing, "shop id")
	}
	if len(missing) > 0 {
		return &Error{
			Kind:    KindConfig,
			Op:      "config",
			Message: "GHN API configuration is incomplete: missing " + strings.Join(missing, ", "),
		}
	}
	if _, err := strconv.Atoi(c.ShopID); err != nil {
		return &Error{Kind: KindConfig, Op: "config", Message: "GHN shop id must be numeric", Err: err}
	}
	return nil
}

// Client is the GHN API client. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	config     Config
	metrics    *Metrics
	debug      bool
	group      singleflight.Group
}

// NewClient creates a new GHN client. An incomplete config is not rejected
// here; every call checks it first and fails without touching the network.
func NewClient(config Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if config.Retry.MaxAttempts == 0 {
		config.Retry = DefaultRetryPolicy
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     config,
		debug:      os.Getenv("ENV") == "development",
	}
}

// SetMetrics attaches Prometheus collectors to the client.
func (c *Client) SetMetrics(m *Metrics) {
	c.metrics = m
}

// ValidateConfig returns the configuration error, if any.
func (c *Client) ValidateConfig() error {
	return c.config.Validate()
}

// shared runs fn once for all concurrent callers with the same key. The
// shared request is detached from any single caller's cancellation; each
// caller stops waiting when its own ctx ends and gets its own copy.
func shared[T any](ctx context.Context, c *Client, key string, fn func(context.Context) ([]T, error)) ([]T, error) {
	ch := c.group.DoChan(key, func() (any, error) {
		return fn(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, &Error{Kind: KindTransport, Op: key, Message: "request cancelled", Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]T)), nil
	}
}

// call performs one logical API call: config check, retried transport,
// envelope validation and decoding of data into out. A non-200 envelope code
// is reported with rejectKind.
func (c *Client) call(ctx context.Context, op, method, path string, body any, shopScoped bool, rejectKind ErrorKind, out any) error {
	return c.invoke(ctx, op, method, path, body, shopScoped, rejectKind, c.config.Retry.attempts(), out)
}

// invoke is call with an explicit attempt budget.
func (c *Client) invoke(ctx context.Context, op, method, path string, body any, shopScoped bool, rejectKind ErrorKind, attempts int, out any) (err error) {
	started := time.Now()
	defer func() { c.metrics.observe(op, err, started) }()

	if cfgErr := c.config.Validate(); cfgErr != nil {
		return cfgErr
	}

	var payload []byte
	if body != nil {
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	respBody, err := c.doWithRetry(ctx, op, method, path, payload, shopScoped, attempts)
	if err != nil {
		return err
	}
	return decodeEnvelope(op, respBody, rejectKind, out)
}

// doWithRetry retries network errors and non-2xx statuses with linear backoff.
func (c *Client) doWithRetry(ctx context.Context, op, method, path string, payload []byte, shopScoped bool, attempts int) ([]byte, error) {

	var lastErr error
	made := 0
	for attempt := 1; attempt <= attempts; attempt++ {
		made = attempt
		respBody, err := c.send(ctx, method, path, payload, shopScoped)
		if err == nil {
			return respBody, nil
		}
		lastErr = err

		if ctx.Err() != nil || attempt == attempts {
			break
		}

		delay := c.config.Retry.Delay(attempt)
		c.metrics.retried(op)
		log.Warn().
			Err(err).
			Str("op", op).
			Int("attempt", attempt).
			Dur("retry_in", delay).
			Msg("[GHN] Attempt failed, retrying")

		if err := sleepContext(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	return nil, &Error{
		Kind:    KindTransport,
		Op:      op,
		Message: fmt.Sprintf("failed after %d attempts: %v", made, lastErr),
		Err:     lastErr,
	}
}

// send performs a single HTTP round trip and returns the body of a 2xx response.
func (c *Client) send(ctx context.Context, method, path string, payload []byte, shopScoped bool) ([]byte, error) {
	url := c.config.BaseURL + path

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Token", c.config.Token)
	if shopScoped {
		req.Header.Set("ShopId", c.config.ShopID)
	}

	if c.debug {
		evt := log.Debug().Str("method", method).Str("endpoint", url)
		if payload != nil {
			evt = evt.RawJSON("request", payload)
		}
		evt.Msg("[GHN] Outgoing request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", path).
			Int("status_code", resp.StatusCode).
			Bytes("response", respBody).
			Msg("[GHN] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return respBody, nil
}

// decodeEnvelope validates the {code, message, data} wrapper before any
// business data is looked at.
func decodeEnvelope(op string, body []byte, rejectKind ErrorKind, out any) error {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &Error{Kind: KindResponse, Op: op, Message: "malformed response envelope", Err: err}
	}
	if err := validate.Struct(env); err != nil {
		return &Error{Kind: KindResponse, Op: op, Message: "response envelope has no code", Err: err}
	}

	if *env.Code != codeSuccess {
		msg := env.Message
		if msg == "" {
			msg = fmt.Sprintf("carrier returned code %d", *env.Code)
		}
		return &Error{Kind: rejectKind, Op: op, Message: msg}
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return &Error{Kind: KindResponse, Op: op, Message: "response envelope has no data"}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindResponse, Op: op, Message: "unexpected data shape", Err: err}
	}
	return nil
}

// validateEach runs struct validation over decoded records.
func validateEach[T any](op string, items []T) error {
	for i := range items {
		if err := validate.Struct(items[i]); err != nil {
			return &Error{
				Kind:    KindResponse,
				Op:      op,
				Message: fmt.Sprintf("record %d failed validation", i),
				Err:     err,
			}
		}
	}
	return nil
}
