package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"receber/internal/core"
)

const maxBodyBytes = 1 << 20 // 1MB

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func methodNotAllowed(w http.ResponseWriter, allow string) {
	w.Header().Set("Allow", allow)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// monthParam reads a "month" query parameter, falling back to the given
// default. A malformed value is reported as ok=false after replying 400.
func monthParam(w http.ResponseWriter, r *http.Request, fallback core.YearMonth) (core.YearMonth, bool) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return fallback, true
	}
	ym, err := core.ParseYearMonth(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
		return core.YearMonth{}, false
	}
	return ym, true
}
