package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/resale-pricer/internal/apperror"
	"github.com/fd1az/resale-pricer/internal/logger"
)

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Context string `json:"context"`
	} `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperror.Validation(apperror.CodeInvalidInput, "price must be positive"), http.StatusBadRequest, "INVALID_INPUT"},
		{"rate_limited", apperror.New(apperror.CodeRateLimitExceeded), http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED"},
		{"plain_error_hidden", errors.New("db password in here"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(context.Background(), rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantCode, decodeError(t, rec).Error.Code)
			assert.NotContains(t, rec.Body.String(), "password")
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Cost string `json:"cost"`
	}

	tests := []struct {
		name     string
		body     string
		wantCode apperror.Code
	}{
		{"ok", `{"cost": "8000"}`, ""},
		{"empty", ``, apperror.CodeInvalidInput},
		{"unknown_field", `{"price": "1"}`, apperror.CodeInvalidFormat},
		{"trailing_object", `{"cost": "1"}{"cost": "2"}`, apperror.CodeInvalidFormat},
		{"malformed", `{"cost":`, apperror.CodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst payload
			err := DecodeJSON(req, &dst)
			if tt.wantCode == "" {
				require.NoError(t, err)
				assert.Equal(t, "8000", dst.Cost)
				return
			}
			assert.Equal(t, tt.wantCode, apperror.GetCode(err))
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	r := NewRouter(logger.New(io.Discard, logger.LevelError, "test", nil), 0)
	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, rec).Error.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_ServerErrorLogsCause(t *testing.T) {
	var buf bytes.Buffer
	r := NewRouter(logger.New(&buf, logger.LevelDebug, "test", nil), 0)
	r.Get("/boom", func(w http.ResponseWriter, r *http.Request) {
		WriteError(r.Context(), w, apperror.Internal(apperror.CodeInternalError, "loading settings", errors.New("disk I/O error")))
	})
	r.Get("/bad", func(w http.ResponseWriter, r *http.Request) {
		WriteError(r.Context(), w, apperror.Validation(apperror.CodeInvalidInput, "price must be positive"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "disk I/O error")

	var entry struct {
		Level string `json:"level"`
		Error struct {
			Code  string `json:"code"`
			Cause string `json:"cause"`
			Stack string `json:"stack"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry), buf.String())
	assert.Equal(t, "ERROR", entry.Level)
	assert.Equal(t, "INTERNAL_ERROR", entry.Error.Code)
	assert.Equal(t, "disk I/O error", entry.Error.Cause)
	assert.NotEmpty(t, entry.Error.Stack)

	buf.Reset()
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/bad", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, buf.String(), `"error"`)
}
