package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"tally/internal/auth"
	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/middleware/trace"
)

type contextKey string

const identityKey contextKey = "identity"

// identityFrom returns the authenticated identity attached by the authed
// middleware.
func identityFrom(ctx context.Context) (core.Identity, bool) {
	id, ok := ctx.Value(identityKey).(core.Identity)
	return id, ok
}

// authed verifies the Bearer token and attaches the caller's identity to the
// request context. Anything short of a valid token is a 401.
func (s *Server) authed(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, r, core.ErrUnauthorized)
			return
		}

		identity, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLog logs one line per request with method, path, status and
// duration.
func requestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger := applog.FromContext(r.Context())
		logger.InfoContext(r.Context(), "HTTP request",
			applog.FieldRequestID, trace.RequestID(r.Context()),
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path,
			applog.FieldStatusCode, sw.status,
			applog.FieldDuration, time.Since(start).Milliseconds())
	})
}

// recovery turns handler panics into 500 responses.
func recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger := applog.FromContext(r.Context())
				logger.ErrorContext(r.Context(), "Panic recovered",
					applog.FieldMethod, r.Method,
					applog.FieldPath, r.URL.Path,
					applog.FieldError, rec)
				writeJSON(w, http.StatusInternalServerError, errorBody("internal server error"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
