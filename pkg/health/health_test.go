package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, handler http.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec, resp
}

func TestLivenessHandler_AlwaysUp(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(ctx context.Context) error { return errors.New("down") })

	rec, resp := serve(t, h.LivenessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
}

func TestReadinessHandler_AllHealthy(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(ctx context.Context) error { return nil })
	h.Register("kafka", func(ctx context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Len(t, resp.Checks, 2)
}

func TestReadinessHandler_OneDown(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(ctx context.Context) error { return errors.New("connection refused") })
	h.Register("kafka", func(ctx context.Context) error { return nil })

	rec, resp := serve(t, h.ReadinessHandler())

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusDown, resp.Checks["store"].Status)
	assert.Equal(t, "connection refused", resp.Checks["store"].Error)
	assert.Equal(t, StatusUp, resp.Checks["kafka"].Status)
}

func TestRegister_Replaces(t *testing.T) {
	h := NewHandler()
	h.Register("store", func(ctx context.Context) error { return errors.New("old") })
	h.Register("store", func(ctx context.Context) error { return nil })

	assert.Equal(t, StatusUp, h.Check(context.Background())["store"].Status)
}
