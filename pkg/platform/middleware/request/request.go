// Package request provides the request-scoped metadata middleware: every
// inbound request gets a request ID and a pinned request time before any
// handler runs.
package request

import (
	"net/http"

	"github.com/google/uuid"

	"seaplan/pkg/requestcontext"
)

// HeaderRequestID is echoed back so callers can correlate logs.
const HeaderRequestID = "X-Request-ID"

// Metadata assigns a request ID (honoring one supplied by a trusted proxy)
// and pins the request time into the context. Pinning time once per request
// keeps invariant checks (submission lead time, date windows) consistent
// across a single operation.
func Metadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		ctx = requestcontext.WithTime(ctx, requestcontext.Now(ctx))

		w.Header().Set(HeaderRequestID, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID retrieves the request ID set by Metadata.
var GetRequestID = requestcontext.RequestID
