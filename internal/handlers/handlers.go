// Package handlers exposes the JSON API, one file per resource. All
// handlers share the same conventions: query-param ids, method
// switches on a plain mux, httpx envelopes with snake_case error
// codes, and German payload field names matching the front end.
package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/mfreund/werkstatt/internal/httpx"

	"gorm.io/gorm"
)

// timeNow is swapped out in tests that depend on "today".
var timeNow = time.Now

// idFromQuery reads and validates the ?id= parameter. On failure it
// writes the error envelope itself and returns ok=false.
func idFromQuery(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := r.URL.Query().Get("id")
	if idStr == "" {
		httpx.JSONError(w, http.StatusBadRequest, "missing_id", nil)
		return 0, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_id", nil)
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts the two date shapes the front end sends: bare
// dates ("2024-03-15") and full RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

// parseDatePtr is parseDate for optional fields; empty means nil.
func parseDatePtr(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// notFoundOrInternal maps a gorm read error to 404 or 500.
func notFoundOrInternal(w http.ResponseWriter, err error, code string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSONError(w, http.StatusInternalServerError, code, nil)
}

// listParams reads pagination defaults shared by all list endpoints.
func listParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}
