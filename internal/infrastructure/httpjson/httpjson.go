// Package httpjson writes JSON responses and maps application errors to HTTP
// status codes.
package httpjson

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"oticas/internal/dto"
	apperrors "oticas/internal/errors"
)

const maxBodyBytes = 1 << 20

type Writer struct {
	logger *zap.Logger
}

func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// NewTraceID returns the id echoed in every response body and log line of a request.
func NewTraceID() string {
	return uuid.New().String()
}

// Decode reads a JSON body into dst, rejecting unknown shapes and oversized bodies.
func (w *Writer) Decode(rw http.ResponseWriter, r *http.Request, traceID string, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(rw, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		w.logger.Warn("invalid JSON body", zap.String("traceId", traceID), zap.Error(err))
		w.WriteValidationError(rw, traceID, "invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		})
		return false
	}
	return true
}

func (w *Writer) WriteJSON(rw http.ResponseWriter, status int, data interface{}) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(status)
	if err := json.NewEncoder(rw).Encode(data); err != nil {
		w.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (w *Writer) WriteValidationError(rw http.ResponseWriter, traceID, message string, details ...apperrors.ValidationDetail) {
	w.WriteJSON(rw, http.StatusBadRequest, dto.ValidationErrorResponse{
		TraceID: traceID,
		Error:   "VALIDATION_ERROR",
		Message: message,
		Details: details,
	})
}

// WriteError maps err to a status code. Only messages meant for end users are
// echoed; anything unrecognized becomes a generic 500.
func (w *Writer) WriteError(rw http.ResponseWriter, traceID string, err error) {
	logger := w.logger.With(zap.String("traceId", traceID))

	if ve, ok := apperrors.IsValidationError(err); ok {
		w.WriteValidationError(rw, traceID, ve.Message, ve.Details...)
		return
	}
	if nf, ok := apperrors.IsNotFoundError(err); ok {
		w.writeError(rw, traceID, http.StatusNotFound, "NOT_FOUND", nf.Message)
		return
	}
	if ue, ok := apperrors.IsUnauthorizedError(err); ok {
		w.writeError(rw, traceID, http.StatusUnauthorized, "UNAUTHORIZED", ue.Message)
		return
	}
	if be, ok := apperrors.IsBackendError(err); ok {
		logger.Error("backend error", zap.Error(err))
		w.writeError(rw, traceID, http.StatusInternalServerError, "BACKEND_ERROR", be.Message)
		return
	}

	logger.Error("unexpected error", zap.Error(err))
	w.writeError(rw, traceID, http.StatusInternalServerError, "INTERNAL_ERROR", "an unexpected error occurred")
}

func (w *Writer) writeError(rw http.ResponseWriter, traceID string, status int, code, message string) {
	w.WriteJSON(rw, status, dto.ErrorResponse{
		TraceID:   traceID,
		Status:    status,
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	})
}
