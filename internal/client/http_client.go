package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rocketshoes-cart/internal/logger"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
)

var HttpClientTracer = otel.Tracer("HttpClient")

// StatusError is returned when the remote answers outside the 2xx range.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.URL, e.StatusCode)
}

// HTTPClient is a JSON-over-HTTP client with trace propagation.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	headers map[string]string
}

// RequestOptions for request configuration
type RequestOptions struct {
	Method      string
	URL         string
	Headers     map[string]string
	QueryParams map[string]string
	Body        interface{}
	Timeout     time.Duration
	Context     context.Context
}

// Response keeps the decoded payload together with the raw exchange.
type Response[T any] struct {
	Data       T
	StatusCode int
	Headers    http.Header
	RawBody    []byte
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: map[string]string{"Accept": "application/json"},
	}
}

func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

func (c *HTTPClient) SetDefaultHeader(key, value string) {
	c.headers[key] = value
}

// Do performs the request and decodes a JSON response into result (if non-nil).
// Non-2xx answers yield a *StatusError.
func (c *HTTPClient) Do(opts RequestOptions, result interface{}) error {
	_, err := c.do(opts, result)
	return err
}

func (c *HTTPClient) do(opts RequestOptions, result interface{}) (*Response[json.RawMessage], error) {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	fullURL, err := c.buildURL(opts.URL, opts.QueryParams)
	if err != nil {
		logger.Error(ctx, "Failed to build URL", slog.Any("error", err))
		return nil, fmt.Errorf("build URL: %w", err)
	}

	var bodyReader io.Reader
	if opts.Body != nil {
		bodyBytes, err := encodeBody(opts.Body)
		if err != nil {
			logger.Error(ctx, "Failed to encode body", slog.Any("error", err))
			return nil, fmt.Errorf("encode body: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	ctx, span := HttpClientTracer.Start(ctx, "HttpClient "+opts.Method)
	defer span.End()

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, opts.Method, fullURL, bodyReader)
	if err != nil {
		logger.Error(ctx, "Failed to create request", slog.Any("error", err))
		return nil, fmt.Errorf("create request: %w", err)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	traceID := span.SpanContext().TraceID().String()
	c.setHeaders(req, opts.Headers)
	req.Header.Set("X-Trace-ID", traceID)

	logger.Info(ctx, "HttpClient request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
	)

	resp, err := c.client.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		logger.Error(ctx, "Failed to execute request", slog.String("error", err.Error()))
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error(ctx, "Failed to read response body", slog.String("error", err.Error()))
		return nil, fmt.Errorf("read response body: %w", err)
	}

	out := &Response[json.RawMessage]{
		Data:       rawBody,
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		RawBody:    rawBody,
	}

	if !out.IsSuccess() {
		statusErr := &StatusError{Method: req.Method, URL: fullURL, StatusCode: resp.StatusCode, Body: rawBody}
		span.SetStatus(codes.Error, statusErr.Error())
		logger.Warn(ctx, "HttpClient unexpected status",
			slog.String("url", fullURL),
			slog.Int("status", resp.StatusCode),
		)
		return out, statusErr
	}

	if result != nil && len(rawBody) > 0 {
		if err := decodeBody(rawBody, result); err != nil {
			span.RecordError(err)
			logger.Error(ctx, "Failed to parse response", slog.Any("error", err))
			return out, fmt.Errorf("parse response: %w", err)
		}
	}

	return out, nil
}

// GetWithResponse performs a GET and returns the raw exchange.
func (c *HTTPClient) GetWithResponse(url string, opts ...RequestOptions) (*Response[json.RawMessage], error) {
	return c.do(c.withDefaults(http.MethodGet, url, nil, opts), nil)
}

func (c *HTTPClient) Get(url string, result interface{}, opts ...RequestOptions) error {
	return c.Do(c.withDefaults(http.MethodGet, url, nil, opts), result)
}

func (c *HTTPClient) Post(url string, body interface{}, result interface{}, opts ...RequestOptions) error {
	return c.Do(c.withDefaults(http.MethodPost, url, body, opts), result)
}

func (c *HTTPClient) Put(url string, body interface{}, result interface{}, opts ...RequestOptions) error {
	return c.Do(c.withDefaults(http.MethodPut, url, body, opts), result)
}

func (c *HTTPClient) Delete(url string, result interface{}, opts ...RequestOptions) error {
	return c.Do(c.withDefaults(http.MethodDelete, url, nil, opts), result)
}

func (c *HTTPClient) withDefaults(method, url string, body interface{}, opts []RequestOptions) RequestOptions {
	base := RequestOptions{Method: method, URL: url, Body: body}
	if len(opts) > 0 {
		base = mergeOptions(base, opts[0])
	}
	return base
}

func (c *HTTPClient) buildURL(endpoint string, queryParams map[string]string) (string, error) {
	var fullURL string
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		fullURL = endpoint
	} else {
		fullURL = c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	}

	if len(queryParams) == 0 {
		return fullURL, nil
	}

	u, err := url.Parse(fullURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, v := range queryParams {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func encodeBody(body interface{}) ([]byte, error) {
	switch v := body.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	case io.Reader:
		return io.ReadAll(v)
	default:
		return json.Marshal(body)
	}
}

func decodeBody(raw []byte, result interface{}) error {
	switch v := result.(type) {
	case *[]byte:
		*v = raw
		return nil
	case *string:
		*v = string(raw)
		return nil
	default:
		return json.Unmarshal(raw, result)
	}
}

// setHeaders applies defaults first so per-request headers win.
func (c *HTTPClient) setHeaders(req *http.Request, headers map[string]string) {
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	if req.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
}

func mergeOptions(base, override RequestOptions) RequestOptions {
	if override.Method != "" {
		base.Method = override.Method
	}
	if override.URL != "" {
		base.URL = override.URL
	}
	if override.Body != nil {
		base.Body = override.Body
	}
	if override.Context != nil {
		base.Context = override.Context
	}
	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}

	if base.Headers == nil {
		base.Headers = make(map[string]string)
	}
	for k, v := range override.Headers {
		base.Headers[k] = v
	}

	if base.QueryParams == nil {
		base.QueryParams = make(map[string]string)
	}
	for k, v := range override.QueryParams {
		base.QueryParams[k] = v
	}

	return base
}

func (r *Response[T]) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

func (r *Response[T]) IsClientError() bool {
	return r.StatusCode >= 400 && r.StatusCode < 500
}

func (r *Response[T]) IsServerError() bool {
	return r.StatusCode >= 500
}
