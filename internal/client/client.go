// Package client talks to the shop API over HTTP.  Every call is a single
// attempt; failures are returned to the caller as they are.
package client

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

	"github.com/iliyamo/shopcart/internal/model"
)

// APIError is a non-2xx response.  Message is the server's "error" field,
// or the status text when the body carried none.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// Client is a typed wrapper around the REST API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginResponse is the body of a successful POST /api/login.
type LoginResponse struct {
	Message   string        `json:"message"`
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      model.Profile `json:"user"`
}

// NewProduct is the body of POST /api/products.  Price is sent as-is, so
// both a number and a numeric string are accepted.
type NewProduct struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Price       any    `json:"price"`
	Description string `json:"description,omitempty"`
}

// Me is the body of GET /api/me.
type Me struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Exp   int64  `json:"exp"`
}

// Register creates an account and returns the server's message.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (string, error) {
	var out struct {
		Message string `json:"message"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/register", "", req, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (LoginResponse, error) {
	var out LoginResponse
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/api/login", "", body, &out)
	return out, err
}

// CreateProduct adds a product.  token must belong to an admin.
func (c *Client) CreateProduct(ctx context.Context, token string, p NewProduct) (model.Product, error) {
	var out struct {
		Product model.Product `json:"product"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/products", token, p, &out); err != nil {
		return model.Product{}, err
	}
	return out.Product, nil
}

// ListProducts returns the whole catalog, newest first.
func (c *Client) ListProducts(ctx context.Context, token string) ([]model.Product, error) {
	var out []model.Product
	err := c.do(ctx, http.MethodGet, "/api/products", token, nil, &out)
	return out, err
}

// SearchProduct returns the first product whose code contains fragment.
func (c *Client) SearchProduct(ctx context.Context, token, fragment string) (model.Product, error) {
	var out model.Product
	q := url.Values{"code": {fragment}}
	err := c.do(ctx, http.MethodGet, "/api/products/search?"+q.Encode(), token, nil, &out)
	return out, err
}

// SearchProducts returns every product whose code contains fragment.
func (c *Client) SearchProducts(ctx context.Context, token, fragment string) ([]model.Product, error) {
	var out []model.Product
	q := url.Values{"code": {fragment}, "all": {"true"}}
	err := c.do(ctx, http.MethodGet, "/api/products/search?"+q.Encode(), token, nil, &out)
	return out, err
}

// Me returns the claims of token as the server sees them.
func (c *Client) Me(ctx context.Context, token string) (Me, error) {
	var out Me
	err := c.do(ctx, http.MethodGet, "/api/me", token, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			apiErr.Message = eb.Error
		}
		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
