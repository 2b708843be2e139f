package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/metrics"
)

// Recover turns a handler panic into a 500 carrying the request id, logs the
// stack and counts it. http.ErrAbortHandler is re-raised so net/http can
// drop the connection quietly.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			id := RequestIDFrom(r.Context())
			metrics.HTTPPanicsTotal.Inc()
			slog.Error("handler panic",
				"err", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", id,
				"stack", string(debug.Stack()),
			)
			httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"request_id": id})
		}()
		next.ServeHTTP(w, r)
	})
}
