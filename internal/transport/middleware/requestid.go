package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/frahmantamala/role-assignment/internal"
	"github.com/frahmantamala/role-assignment/pkg/logger"
)

const TraceIDHeader = "X-Trace-ID"

// RequestID reuses an incoming trace id or mints one, and attaches it to the
// context logger and the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get(TraceIDHeader)
		if traceID == "" {
			traceID = uuid.NewString()
		}

		ctx := internal.ContextWithTraceID(r.Context(), traceID)
		ctx = logger.With(ctx, "traceID", traceID)

		w.Header().Set(TraceIDHeader, traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
