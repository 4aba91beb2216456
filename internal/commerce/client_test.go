package commerce

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/httpclient"
)

func newTestClient(url string) *Client {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	return NewClient(url+"/", httpclient.New(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// ---------------------------------------------------------------------------
// AddToServerCart
// ---------------------------------------------------------------------------

func TestAddToServerCart_SendsItemWithBearer(t *testing.T) {
	var got MergeItem
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/cart/items", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := newTestClient(server.URL).AddToServerCart(context.Background(), "tok-1",
		MergeItem{ProductID: "p1", Quantity: 2, VariantID: "red", VendorID: "v1"})
	require.NoError(t, err)
	assert.Equal(t, MergeItem{ProductID: "p1", Quantity: 2, VariantID: "red", VendorID: "v1"}, got)
}

func TestAddToServerCart_SendsOncePerItemOnServerError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 2
	cfg.RetryWaitMin = time.Millisecond
	client := NewClient(server.URL, httpclient.New(cfg), slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := client.AddToServerCart(context.Background(), "tok",
		MergeItem{ProductID: "p1", Quantity: 1, VendorID: "v1"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestAddToServerCart_OmitsEmptyVariant(t *testing.T) {
	var raw map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	require.NoError(t, newTestClient(server.URL).AddToServerCart(context.Background(), "tok",
		MergeItem{ProductID: "p1", Quantity: 1, VendorID: "v1"}))
	_, ok := raw["variant_id"]
	assert.False(t, ok)
}

func TestAddToServerCart_MapsRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"OUT_OF_STOCK","message":"product p1 is out of stock"}}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).AddToServerCart(context.Background(), "tok",
		MergeItem{ProductID: "p1", Quantity: 1, VendorID: "v1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "out of stock")
}

func TestAddToServerCart_RespectsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := newTestClient(server.URL).AddToServerCart(ctx, "tok", MergeItem{ProductID: "p1", Quantity: 1, VendorID: "v1"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// ---------------------------------------------------------------------------
// Login / Register
// ---------------------------------------------------------------------------

func TestLogin_ReturnsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "ada@example.com", creds.Email)
		_, _ = w.Write([]byte(`{"data":{"token":"jwt-abc","user_id":"u-1"}}`))
	}))
	defer server.Close()

	session, err := newTestClient(server.URL).Login(context.Background(),
		Credentials{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, Session{Token: "jwt-abc", UserID: "u-1"}, session)
}

func TestLogin_BadCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"invalid email or password"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Login(context.Background(), Credentials{Email: "a@b.co", Password: "nope"})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestRegister_MissingToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/auth/register", r.URL.Path)
		_, _ = w.Write([]byte(`{"data":{"user_id":"u-2"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Register(context.Background(),
		Registration{Name: "Ada", Email: "ada@example.com", Password: "secret1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no token")
}
