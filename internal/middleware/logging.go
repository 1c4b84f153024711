package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	pkghttp "github.com/solrent/solrent/pkg/http"
	pkglogger "github.com/solrent/solrent/pkg/logger"
)

// SecureLoggerConfig controls what the request logger records. TrustedProxies
// holds the CIDRs whose forwarding headers are honored when resolving the
// client address; Env gates whether sensitive query strings are redacted.
type SecureLoggerConfig struct {
	Env            string
	TrustedProxies []string
}

// SecureLogger returns a middleware for logging HTTP requests with sensitive
// query parameters redacted and the client address resolved through the
// trusted proxy chain.
func SecureLogger(logger *slog.Logger, cfg SecureLoggerConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start)
			requestID := middleware.GetReqID(r.Context())

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", wrapped.Status()),
				slog.Int64("bytes", int64(wrapped.BytesWritten())),
				slog.String("duration", duration.String()),
				slog.String("request_id", requestID),
				slog.String("client_ip", pkghttp.ClientIP(r, cfg.TrustedProxies)),
			}

			if r.URL.RawQuery != "" {
				if pkglogger.SanitizeQueryString(r.URL.RawQuery) {
					attrs = append(attrs, pkglogger.RedactedAttr("query", r.URL.RawQuery, cfg.Env))
				} else {
					attrs = append(attrs, slog.String("query", r.URL.RawQuery))
				}
			}

			logger.LogAttrs(context.Background(), slog.LevelInfo, "http_request", attrs...)
		})
	}
}
