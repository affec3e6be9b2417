// Package httpx holds the JSON helpers, router and server shared by the HTTP adapters.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/resale-pricer/internal/apperror"
)

// MaxBodyBytes bounds request bodies. Sold-listing pages are the largest payload.
const MaxBodyBytes = 8 << 20

// WriteJSON writes payload with status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError renders err through the app error envelope. Errors that are not
// app errors become INTERNAL_ERROR without leaking their text.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(apperror.CodeInternalError, "", err)
	}

	if appErr.TraceID == "" {
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			appErr = appErr.WithTraceID(sc.TraceID().String())
		}
	}
	if reqID := middleware.GetReqID(ctx); reqID != "" {
		w.Header().Set(middleware.RequestIDHeader, reqID)
	}

	if slot, ok := ctx.Value(errorSlotKey{}).(*errorSlot); ok {
		slot.err = appErr
	}

	WriteJSON(w, appErr.StatusCode, appErr.ToResponse())
}

// DecodeJSON reads a JSON body into dst, rejecting unknown fields and
// trailing data.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation(apperror.CodeInvalidInput, "request body is empty")
		}
		return apperror.New(apperror.CodeInvalidFormat, apperror.WithContext(err.Error()), apperror.WithCause(err))
	}
	if dec.More() {
		return apperror.Validation(apperror.CodeInvalidFormat, "request body must hold a single JSON object")
	}
	return nil
}
