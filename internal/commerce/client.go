package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/httpclient"
)

const upstreamName = "commerce-api"

// MergeItem is one line item pushed into the authenticated server cart.
type MergeItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	VariantID string `json:"variant_id,omitempty"`
	VendorID  string `json:"vendor_id"`
}

// Credentials are the login form fields.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Registration are the sign-up form fields.
type Registration struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Session is what the commerce API returns for a successful login or sign-up.
type Session struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// Client talks to the commerce API over HTTP.
type Client struct {
	http    httpclient.Doer
	baseURL string
	logger  *slog.Logger
}

// NewClient creates a commerce API client. doer is normally a
// *httpclient.CircuitBreakerClient.
func NewClient(baseURL string, doer httpclient.Doer, logger *slog.Logger) *Client {
	return &Client{
		http:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// AddToServerCart adds one item to the cart of the user owning token. Any
// 2xx response is success.
func (c *Client) AddToServerCart(ctx context.Context, token string, item MergeItem) error {
	resp, err := c.post(ctx, "/api/v1/cart/items", token, item)
	if err != nil {
		return fmt.Errorf("add %s to server cart: %w", item.ProductID, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("add %s to server cart: %w", item.ProductID, httpclient.ParseResponseError(resp, upstreamName))
	}
	_ = resp.Body.Close()
	return nil
}

// Login exchanges credentials for a session.
func (c *Client) Login(ctx context.Context, creds Credentials) (Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/login", creds)
}

// Register creates an account and returns its session.
func (c *Client) Register(ctx context.Context, reg Registration) (Session, error) {
	return c.authenticate(ctx, "/api/v1/auth/register", reg)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (Session, error) {
	resp, err := c.post(ctx, path, "", body)
	if err != nil {
		return Session{}, fmt.Errorf("call %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Session{}, httpclient.ParseResponseError(resp, upstreamName)
	}
	defer func() { _ = resp.Body.Close() }()

	var envelope struct {
		Data Session `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return Session{}, fmt.Errorf("decode %s response: %w", path, err)
	}
	if envelope.Data.Token == "" {
		return Session{}, fmt.Errorf("%s response carried no token", path)
	}
	return envelope.Data, nil
}

func (c *Client) post(ctx context.Context, path, token string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.DebugContext(ctx, "calling commerce api", slog.String("path", path))
	return c.http.Do(ctx, req)
}
