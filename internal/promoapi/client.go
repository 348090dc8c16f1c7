package promoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Togather-Foundation/promotions-console/internal/domain/promotions"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is where the promotion service listens in development
	DefaultBaseURL = "http://localhost:8080"
	// ResourcePath is the collection path of the promotion resource
	ResourcePath = "/promotions"
	// MaxResponseBytes caps how much of a response body is read
	MaxResponseBytes = 10 << 20

	tracerName = "github.com/Togather-Foundation/promotions-console/internal/promoapi"
)

// Operation names one of the seven calls the client can make.
type Operation string

const (
	OpCreate     Operation = "create"
	OpUpdate     Operation = "update"
	OpRetrieve   Operation = "retrieve"
	OpDelete     Operation = "delete"
	OpActivate   Operation = "activate"
	OpDeactivate Operation = "deactivate"
	OpSearch     Operation = "search"
)

// Client talks to the promotion service. Requests are never retried.
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
	baseURL    string
	limiter    *rate.Limiter
	logger     zerolog.Logger
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client. The client is not modified;
// WithTimeout applies to a copy of it.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds each request. Zero keeps the HTTP client's own timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithRateLimit sets a client-side rate limit (requests per second).
// Zero or less disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithLogger sets the logger used for per-request debug logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the promotion service at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{},
		baseURL:    strings.TrimRight(baseURL, "/"),
		limiter:    rate.NewLimiter(rate.Inf, 1),
		logger:     zerolog.Nop(),
		tracer:     otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.timeout > 0 {
		httpClient := *client.httpClient
		httpClient.Timeout = client.timeout
		client.httpClient = &httpClient
	}

	return client
}

// BaseURL returns the service root the client sends requests to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Create creates a promotion. The service assigns its ID.
func (c *Client) Create(ctx context.Context, payload promotions.CreatePayload) (promotions.Promotion, error) {
	var created promotions.Promotion
	err := c.do(ctx, OpCreate, http.MethodPost, ResourcePath, payload, &created)
	return created, err
}

// Update replaces the promotion with the given ID.
func (c *Client) Update(ctx context.Context, id string, payload promotions.UpdatePayload) (promotions.Promotion, error) {
	var updated promotions.Promotion
	err := c.do(ctx, OpUpdate, http.MethodPut, itemPath(id), payload, &updated)
	return updated, err
}

// Get retrieves the promotion with the given ID.
func (c *Client) Get(ctx context.Context, id string) (promotions.Promotion, error) {
	var found promotions.Promotion
	err := c.do(ctx, OpRetrieve, http.MethodGet, itemPath(id), nil, &found)
	return found, err
}

// Delete deletes the promotion with the given ID.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, OpDelete, http.MethodDelete, itemPath(id), nil, nil)
}

// Activate marks the promotion active.
func (c *Client) Activate(ctx context.Context, id string) (promotions.Promotion, error) {
	var activated promotions.Promotion
	err := c.do(ctx, OpActivate, http.MethodPut, itemPath(id)+"/activate", nil, &activated)
	return activated, err
}

// Deactivate marks the promotion inactive.
func (c *Client) Deactivate(ctx context.Context, id string) (promotions.Promotion, error) {
	var deactivated promotions.Promotion
	err := c.do(ctx, OpDeactivate, http.MethodPut, itemPath(id)+"/deactivate", nil, &deactivated)
	return deactivated, err
}

// Search lists the promotions matching filters. Empty filters list them all.
func (c *Client) Search(ctx context.Context, filters promotions.Filters) ([]promotions.Promotion, error) {
	var results []promotions.Promotion
	if err := c.do(ctx, OpSearch, http.MethodGet, ResourcePath+"?"+filters.Query(), nil, &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = []promotions.Promotion{}
	}
	return results, nil
}

func itemPath(id string) string {
	return ResourcePath + "/" + url.PathEscape(id)
}

// do sends one request and decodes a 2xx body into out (when out is non-nil).
// Every failure is returned as *Error.
func (c *Client) do(ctx context.Context, op Operation, method, path string, body any, out any) (err error) {
	ctx, span := c.tracer.Start(ctx, "promoapi."+string(op), trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("http.request.method", method),
		attribute.String("url.path", path),
	)
	start := time.Now()
	status := 0
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, ErrorMessage(err))
		}
		span.End()
		c.logger.Debug().
			Str("operation", string(op)).
			Str("method", method).
			Str("path", path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Err(err).
			Msg("promotion request")
	}()

	if err := c.limiter.Wait(ctx); err != nil {
		return &Error{Op: op, Message: GenericErrorMessage, Err: fmt.Errorf("rate limiter: %w", err)}
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return &Error{Op: op, Message: GenericErrorMessage, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Op: op, Message: GenericErrorMessage, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Op: op, Message: GenericErrorMessage, Err: fmt.Errorf("http request: %w", err)}
	}
	status = resp.StatusCode
	span.SetAttributes(attribute.Int("http.response.status_code", status))

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	_ = resp.Body.Close()
	if err != nil {
		return &Error{Op: op, Status: status, Message: GenericErrorMessage, Err: fmt.Errorf("read response: %w", err)}
	}

	if status < 200 || status > 299 {
		return &Error{Op: op, Status: status, Message: failureMessage(respBody)}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &Error{Op: op, Status: status, Message: GenericErrorMessage, Err: fmt.Errorf("parse json: %w", err)}
	}
	return nil
}

// failureMessage extracts the "message" field of a failure body.
func failureMessage(body []byte) string {
	var parsed errorBody
	if err := json.Unmarshal(body, &parsed); err != nil || strings.TrimSpace(parsed.Message) == "" {
		return GenericErrorMessage
	}
	return parsed.Message
}
