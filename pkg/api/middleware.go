package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/ssargent/blmreader/pkg/blm"
)

// apiKeyMiddleware validates the X-API-Key header
func apiKeyMiddleware(expectedKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get("X-API-Key")
			if apiKey == "" {
				sendError(w, "Missing X-API-Key header", http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedKey)) != 1 {
				sendError(w, "Invalid API key", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// requestLogger logs one line per request through logger
func requestLogger(logger log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			l := level.Debug(logger)
			if status >= http.StatusInternalServerError {
				l = level.Warn(logger)
			}
			_ = l.Log("msg", "request", "method", r.Method, "path", r.URL.Path,
				"status", status, "bytes", ww.BytesWritten(),
				"request_id", middleware.GetReqID(r.Context()), "duration", time.Since(start))
		})
	}
}

// sendSuccess sends a successful JSON response
func sendSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := APIResponse{
		Success: true,
		Data:    data,
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

// sendError sends an error JSON response
func sendError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := APIResponse{
		Success: false,
		Error:   message,
	}
	_ = json.NewEncoder(w).Encode(response)
}

// sendReaderError maps a reader error to its HTTP status
func sendReaderError(w http.ResponseWriter, err error) {
	sendError(w, err.Error(), readerErrorStatus(err))
}

func readerErrorStatus(err error) int {
	switch {
	case errors.Is(err, blm.ErrOutOfRange),
		errors.Is(err, blm.ErrUnknownField),
		errors.Is(err, os.ErrNotExist):
		return http.StatusNotFound
	case errors.Is(err, blm.ErrMalformedFile):
		return http.StatusUnprocessableEntity
	case errors.Is(err, blm.ErrClosed):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}
