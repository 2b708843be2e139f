package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/baharkarakas/adledger/internal/api/httpx"
	"github.com/baharkarakas/adledger/internal/middleware"
)

const maxBody = 1 << 20

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httpx.BadRequest(w, "invalid request body")
		return false
	}
	return true
}

func caller(w http.ResponseWriter, r *http.Request) (middleware.UserCtx, bool) {
	u, ok := middleware.FromCtx(r.Context())
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthorized", "unauthorized", nil)
	}
	return u, ok
}

// eventID prefers the Idempotency-Key header over the body field.
func eventID(r *http.Request, fromBody string) string {
	if k := strings.TrimSpace(r.Header.Get("Idempotency-Key")); k != "" {
		return k
	}
	return strings.TrimSpace(fromBody)
}

func paging(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = min(n, 200)
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
