// Package storefront is the HTTP client for the minimarket backend.
package storefront

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

	pkgerrors "github.com/angelmondragon/minimarket-client/pkg/errors"
)

const (
	defaultTimeout           = 10 * time.Second
	errorBodyReadLimit int64 = 4096

	// IdempotencyHeader carries the per-attempt key on order creation.
	IdempotencyHeader = "Idempotency-Key"
)

// TokenSource yields the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client talks to the storefront backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient builds a client for baseURL. tokens may be nil for anonymous use.
func NewClient(baseURL string, tokens TokenSource, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("storefront base url is required")
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return nil, fmt.Errorf("invalid storefront base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CreateOrder posts the order. Non-2xx responses come back as a rejected
// OrderResult; transport, credential and decode problems come back as errors.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest, idempotencyKey string) (OrderResult, error) {
	headers := http.Header{}
	if idempotencyKey != "" {
		headers.Set(IdempotencyHeader, idempotencyKey)
	}

	resp, err := c.do(ctx, http.MethodPost, "/cart/create", req, headers)
	if err != nil {
		return OrderResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var created struct {
			ID string `json:"_id"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
			return OrderResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode create order response")
		}
		if strings.TrimSpace(created.ID) == "" {
			return OrderResult{}, pkgerrors.New(pkgerrors.CodeDependency, "create order response missing _id")
		}
		return OrderResult{Accepted: true, OrderID: created.ID, StatusCode: resp.StatusCode}, nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	var apiErr apiError
	_ = json.Unmarshal(body, &apiErr)

	kind := RejectionFailure
	if resp.StatusCode == http.StatusConflict {
		kind = RejectionConflict
	}
	return OrderResult{
		Kind:       kind,
		Title:      apiErr.Error,
		Message:    apiErr.Message,
		StatusCode: resp.StatusCode,
	}, nil
}

// GetOrder fetches a single order.
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	var order Order
	if err := c.getJSON(ctx, "/cart/"+url.PathEscape(trimmed), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// ListOrdersByUser lists every order placed by userID.
func (c *Client) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	trimmed := strings.TrimSpace(userID)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	var orders []Order
	if err := c.getJSON(ctx, "/cart/user/"+url.PathEscape(trimmed), &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/product", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var categories []Category
	if err := c.getJSON(ctx, "/category", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Me returns the user the bearer token belongs to.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.getJSON(ctx, "/user/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+path+" response")
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, headers http.Header) (*http.Response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "storefront client not configured")
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+path+" request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build "+path+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for key, values := range headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+path+" request")
	}
	return resp, nil
}

func statusError(resp *http.Response, path string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
	cause := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))

	code := pkgerrors.CodeDependency
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = pkgerrors.CodeUnauthorized
	case http.StatusNotFound:
		code = pkgerrors.CodeNotFound
	}
	return pkgerrors.Wrap(code, cause, path+" request failed")
}
