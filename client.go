// Package sapo is a client SDK for the Sapo e-commerce REST API. It wraps
// the resource endpoints behind typed services, manages OAuth authorization
// and HMAC verification, and throttles outgoing requests against the
// platform's published rate limits.
package sapo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// callLimitHeader reports the server's authoritative minute-window usage,
// either as "used/limit" or a plain remaining count.
const callLimitHeader = "X-Sapo-Api-Call-Limit"

// Client is the facade every resource call passes through: admission check,
// dispatch, token accounting. Construct with NewClient; the zero value is
// not usable.
//
// SetAccessToken and SetStore reconfigure the live session. They are meant
// for setup windows, not for concurrent use with in-flight requests.
type Client struct {
	mu      sync.RWMutex
	session session

	auth      *Auth
	limiter   Limiter
	meter     Meter
	transport *transport

	// Resource services.
	Products     *ProductsService
	Orders       *OrdersService
	Customers    *CustomersService
	Collections  *CollectionsService
	Inventory    *InventoryService
	PriceRules   *PriceRulesService
	Fulfillments *FulfillmentsService
	Metafields   *MetafieldsService
	Pages        *PagesService
	Blogs        *BlogsService
	Webhooks     *WebhooksService
}

// Option configures a Client.
type Option func(*Client)

// WithStore sets the store host at construction
// (e.g. "your-store.mysapo.net").
func WithStore(store string) Option {
	return func(c *Client) { c.session.host = store }
}

// WithHTTPClient sets a custom HTTP client for API and token-exchange
// requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.transport.httpClient = hc
		c.auth.httpClient = hc
	}
}

// WithTimeout sets the default per-request timeout (30s if unset).
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.session.timeout = d }
}

// WithDefaultHeaders sets headers sent on every request. Per-call headers
// win on conflict.
func WithDefaultHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.session.defaultHeaders = make(map[string]string, len(headers))
		for k, v := range headers {
			c.session.defaultHeaders[k] = v
		}
	}
}

// WithLimiter replaces the in-process rate limiter, e.g. with the shared
// redis-backed limiter for multi-process deployments.
func WithLimiter(l Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

// WithMeter sets the request meter.
func WithMeter(m Meter) Option {
	return func(c *Client) { c.meter = m }
}

// NewClient creates a Client with the given credentials. Defaults: local
// RateLimiter, no-op meter, 30s timeout.
func NewClient(creds Credentials, opts ...Option) (*Client, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}

	c := &Client{
		session:   session{creds: creds, timeout: defaultTimeout},
		auth:      NewAuth(creds),
		transport: &transport{httpClient: http.DefaultClient},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = NewRateLimiter()
	}
	if c.meter == nil {
		c.meter = noopMeter{}
	}

	c.Products = &ProductsService{client: c}
	c.Orders = &OrdersService{client: c}
	c.Customers = &CustomersService{client: c}
	c.Collections = &CollectionsService{client: c}
	c.Inventory = &InventoryService{client: c}
	c.PriceRules = &PriceRulesService{client: c}
	c.Fulfillments = &FulfillmentsService{client: c}
	c.Metafields = &MetafieldsService{client: c}
	c.Pages = &PagesService{client: c}
	c.Blogs = &BlogsService{client: c}
	c.Webhooks = &WebhooksService{client: c}

	return c, nil
}

// NewClientFromConfig creates a Client from a loaded Config.
func NewClientFromConfig(cfg Config, opts ...Option) (*Client, error) {
	base := []Option{WithStore(cfg.Store)}
	if cfg.TimeoutMS > 0 {
		base = append(base, WithTimeout(time.Duration(cfg.TimeoutMS)*time.Millisecond))
	}
	if len(cfg.Headers) > 0 {
		base = append(base, WithDefaultHeaders(cfg.Headers))
	}
	return NewClient(cfg.Credentials(), append(base, opts...)...)
}

// SetAccessToken sets the OAuth access token used for subsequent requests.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.accessToken = token
}

// SetStore changes the store host used for subsequent requests.
func (c *Client) SetStore(store string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session.host = store
}

// RateLimits returns the current minute-window admission state.
func (c *Client) RateLimits() RateLimit {
	return c.limiter.Snapshot()
}

// AuthorizeURL returns the OAuth consent URL for a store.
func (c *Client) AuthorizeURL(store string, scopes []Scope) string {
	return c.auth.AuthorizeURL(store, scopes)
}

// CompleteOAuth verifies an OAuth callback, exchanges its code for an
// access token, and installs the token on the client. The token is also
// returned for the caller to persist.
func (c *Client) CompleteOAuth(ctx context.Context, store, callbackURL string) (Token, error) {
	token, err := c.auth.CompleteOAuth(ctx, store, callbackURL)
	if err != nil {
		return Token{}, err
	}
	c.SetAccessToken(token.AccessToken)
	return token, nil
}

// VerifyWebhook reports whether a webhook body matches its HMAC signature
// header.
func (c *Client) VerifyWebhook(body []byte, signature string) bool {
	return c.auth.VerifyWebhook(body, signature)
}

// Get issues a GET request and decodes the response body into out.
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

// Post issues a POST request with a JSON body and decodes the response
// into out.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

// Put issues a PUT request with a JSON body and decodes the response into
// out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do issues a request with per-call overrides for headers and timeout. The
// typed service methods cover the common paths; Do is the escape hatch for
// endpoints this SDK has no wrapper for.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any, opts *RequestOptions) error {
	return c.dispatch(ctx, method, path, query, body, out, opts)
}

// do is the single choke point: admission check, dispatch, consume, header
// sync, decode. A dispatch that fails does not debit the local buckets;
// only a successful response consumes a token. That keeps failed calls from
// being penalized twice (the server already counted or rejected them).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	return c.dispatch(ctx, method, path, query, body, out, nil)
}

func (c *Client) dispatch(ctx context.Context, method, path string, query url.Values, body, out any, opts *RequestOptions) error {
	if err := c.limiter.Check(ctx); err != nil {
		c.meter.OnResult(ResultEvent{Method: method, Path: path, Err: err})
		return err
	}

	c.mu.RLock()
	sess := c.session
	c.mu.RUnlock()

	c.meter.OnRequest(RequestEvent{Method: method, Path: path})

	start := time.Now()
	resp, err := c.transport.do(ctx, sess, method, path, query, body, opts)
	duration := time.Since(start)

	if err != nil {
		c.meter.OnResult(ResultEvent{Method: method, Path: path, Duration: duration, Err: err})
		return err
	}

	c.limiter.Consume(ctx)
	if remaining, ok := parseCallLimit(resp.header.Get(callLimitHeader)); ok {
		c.limiter.SyncRemaining(remaining)
	}

	c.meter.OnResult(ResultEvent{Method: method, Path: path, Status: resp.status, Duration: duration})

	if out != nil && len(resp.body) > 0 {
		if err := json.Unmarshal(resp.body, out); err != nil {
			return fmt.Errorf("sapo: decode response: %w", err)
		}
	}
	return nil
}

// parseCallLimit parses the call-limit header. "38/40" means 38 used of 40;
// a bare number is a remaining count.
func parseCallLimit(value string) (remaining int, ok bool) {
	if value == "" {
		return 0, false
	}
	if used, limit, found := strings.Cut(value, "/"); found {
		u, err1 := strconv.Atoi(strings.TrimSpace(used))
		l, err2 := strconv.Atoi(strings.TrimSpace(limit))
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return l - u, true
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return n, true
}
