// Package api is the HTTP JSON client for the remote Hafaloha commerce API.
// Every method takes a context, issues exactly one request, and decodes the
// server's response; nothing here retries.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Shimizu-Technology/hafaloha-go/internal/identity"
)

// SessionHeader carries the client-generated identifier that correlates an
// anonymous shopper's cart across requests.
const SessionHeader = "X-Session-Id"

const defaultTimeout = 30 * time.Second

// SessionProvider yields the persisted session identifier.
type SessionProvider interface {
	Get() (string, error)
}

type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
	session SessionProvider
	tokens  identity.TokenSource
	breaker *gobreaker.CircuitBreaker[*http.Response]
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests point this at an
// httptest server's client).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTokenSource attaches bearer-token identity for authenticated and admin
// calls. Without it the client runs anonymously on the session identifier.
func WithTokenSource(ts identity.TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

func New(baseURL string, session SessionProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		session: session,
		log:     zap.NewNop(),
		httpc: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	// The breaker trips on transport failures only; decoded API errors are
	// business outcomes, not backend outages.
	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name: "hafaloha-api",
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return c
}

// auth selects which identity a request carries.
type auth int

const (
	// authSession sends the session identifier, plus a bearer token when one
	// is available. Cart, config, rates, and orders run this way.
	authSession auth = iota
	// authBearer requires a bearer token and never falls back to the session
	// identifier. All /admin routes and /me run this way.
	authBearer
)

func (c *Client) do(ctx context.Context, method, path string, mode auth, body, out any) error {
	var buf io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		buf = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if err := c.authorize(ctx, req, mode); err != nil {
		return err
	}
	return c.roundTrip(req, out)
}

// doMultipart uploads a file form field plus extra string fields. Used by the
// image and CSV-import endpoints.
func (c *Client) doMultipart(ctx context.Context, path string, mode auth, field, filename string, file io.Reader, extra map[string]string, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy upload body: %w", err)
	}
	for k, v := range extra {
		if err := w.WriteField(k, v); err != nil {
			return fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := c.authorize(ctx, req, mode); err != nil {
		return err
	}
	return c.roundTrip(req, out)
}

func (c *Client) authorize(ctx context.Context, req *http.Request, mode auth) error {
	switch mode {
	case authBearer:
		if c.tokens == nil {
			return ErrNoToken
		}
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("acquire token: %w", err)
		}
		if token == "" {
			return ErrNoToken
		}
		if identity.Expired(token, time.Now()) {
			return ErrTokenExpired
		}
		req.Header.Set("Authorization", "Bearer "+token)
	case authSession:
		id, err := c.session.Get()
		if err != nil {
			return fmt.Errorf("session identifier: %w", err)
		}
		req.Header.Set(SessionHeader, id)
		if c.tokens != nil {
			if token, err := c.tokens.Token(ctx); err == nil && token != "" {
				// An expired token is worse than none here: the session
				// identifier alone keeps the request anonymous but valid.
				if identity.Expired(token, time.Now()) {
					c.log.Warn("bearer token expired, sending anonymously")
				} else {
					req.Header.Set("Authorization", "Bearer "+token)
				}
			}
		}
	}
	return nil
}

func (c *Client) roundTrip(req *http.Request, out any) error {
	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.httpc.Do(req)
	})
	if err != nil {
		c.log.Error("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		c.log.Error("api error",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
			zap.Error(apiErr))
		return apiErr
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func pathEscape(s string) string {
	return url.PathEscape(s)
}
