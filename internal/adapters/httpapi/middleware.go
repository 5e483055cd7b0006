package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/shopfloor/internal/ctxutil"
)

// Header names shared by the server and the client.
const (
	HeaderRequestID  = "X-Request-ID"
	HeaderOperatorID = "X-Operator-ID"
)

// requestContext tags each request with a correlation id, reusing the
// caller's when present, and with the operator named in X-Operator-ID.
func requestContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		ctx := ctxutil.WithRequestID(r.Context(), id)
		if op := r.Header.Get(HeaderOperatorID); op != "" {
			ctx = ctxutil.WithActorID(ctx, op)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Info("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("request_id", ctxutil.RequestIDFromContext(r.Context())),
					zap.String("operator", ctxutil.ActorFromContext(r.Context())))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
