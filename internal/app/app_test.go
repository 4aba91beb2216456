package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burrakkozcaan/sirizen-nextjs-sub002/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(store string) *config.Config {
	return &config.Config{
		ServiceName:           "storefront-cart",
		Environment:           "test",
		LogLevel:              "error",
		HTTPPort:              0,
		ShutdownTimeout:       time.Second,
		Store:                 store,
		CartTTL:               1,
		CouponEstimatePercent: 10,
		CommerceAPIURL:        "http://127.0.0.1:1",
		CommerceTimeout:       time.Second,
		JWTSecret:             "test-secret",
		ReconcileItemTimeout:  time.Second,
		OTELSampleRate:        1,
	}
}

func TestNewApp_MemoryStoreServesRequests(t *testing.T) {
	a, err := NewApp(testConfig(config.StoreMemory), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown() })

	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ledger_store")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items",
		strings.NewReader(`{"product":{"id":"mug","vendor_id":"v1","price":200}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", "profile-1")
	rec = httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestNewApp_RedisUnavailable(t *testing.T) {
	cfg := testConfig(config.StoreRedis)
	cfg.RedisHost = "127.0.0.1"
	cfg.RedisPort = 1

	_, err := NewApp(cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestOpenStorage_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	cfg := testConfig(config.StoreRedis)
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = port

	storage, err := OpenStorage(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer storage.Close()

	require.NoError(t, storage.Ledgers.Put(context.Background(), "p1", []byte(`{"items":[]}`)))
	assert.True(t, mr.Exists("cart:ledger:p1"))
	assert.Equal(t, time.Hour, mr.TTL("cart:ledger:p1"))

	n, err := storage.PurgeExpired(context.Background(), time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestOpenStorage_SQLitePurgesExpired(t *testing.T) {
	cfg := testConfig(config.StoreSQLite)
	cfg.SQLitePath = filepath.Join(t.TempDir(), "cart.db")

	storage, err := OpenStorage(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	defer storage.Close()

	ctx := context.Background()
	require.NoError(t, storage.Ledgers.Put(ctx, "p1", []byte(`{"items":[]}`)))

	n, err := storage.PurgeExpired(ctx, time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "fresh ledger survives")

	time.Sleep(5 * time.Millisecond)
	n, err = storage.PurgeExpired(ctx, time.Millisecond)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestOpenStorage_UnknownStore(t *testing.T) {
	_, err := OpenStorage(context.Background(), testConfig("etcd"), testLogger())
	require.Error(t, err)
}

func TestNewCommerceClient(t *testing.T) {
	assert.NotNil(t, NewCommerceClient(testConfig(config.StoreMemory), testLogger()))
}
