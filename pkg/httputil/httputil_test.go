package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/errors"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/logger"
	"github.com/burrakkozcaan/sirizen-nextjs-sub002/pkg/validator"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// --- WriteJSON / WriteData ---

func TestWriteJSON_SetsContentTypeAndStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusAccepted, Response{Data: "hello"})

	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestWriteData_WrapsEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusOK, map[string]int{"item_count": 3})

	var raw map[string]map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Equal(t, 3, raw["data"]["item_count"])
}

// --- WriteError ---

func TestWriteError_AppError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/items/p-1", nil)
	req = req.WithContext(logger.WithCorrelationID(req.Context(), "req-7"))
	rec := httptest.NewRecorder()

	WriteError(rec, req, apperrors.NotFound("line item", "p-1-default"), nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "line item with id p-1-default not found", resp.Error.Message)
	assert.Equal(t, "req-7", resp.Error.RequestID)
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("lookup: %w", apperrors.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("bad: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{fmt.Errorf("token: %w", apperrors.ErrUnauthorized), http.StatusUnauthorized, "UNAUTHORIZED"},
		{fmt.Errorf("merge: %w", apperrors.ErrServiceUnavail), http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tc.err, nil)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, decode(t, rec).Error.Code)
		})
	}
}

func TestWriteError_UnknownErrorIsLoggedAndHidden(t *testing.T) {
	var buf bytes.Buffer
	fallback := slog.New(slog.NewJSONHandler(&buf, nil))
	rec := httptest.NewRecorder()

	WriteError(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil), errors.New("redis: connection refused"), fallback)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "redis")
	assert.Contains(t, buf.String(), "redis: connection refused")
}

// --- WriteValidationError ---

func TestWriteValidationError_Fields(t *testing.T) {
	type addItem struct {
		ProductID string `json:"product_id" validate:"required"`
	}
	err := validator.Validate(addItem{})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	WriteValidationError(rec, err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Equal(t, "is required", resp.Error.Fields["product_id"])
}

func TestWriteValidationError_Plain(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteValidationError(rec, errors.New("decode request body: unexpected EOF"))

	resp := decode(t, rec)
	assert.Equal(t, "INVALID_INPUT", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "unexpected EOF")
}
