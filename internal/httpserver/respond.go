package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Carig-G/the-bench/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func statusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindValidation, domain.KindConflict, domain.KindThreshold:
		return http.StatusBadRequest
	case domain.KindAuthentication:
		return http.StatusUnauthorized
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// errorWriter maps service errors to responses. Unclassified errors are
// logged with the operation and the ids involved and never shown.
type errorWriter struct {
	log *slog.Logger
}

func (e errorWriter) write(w http.ResponseWriter, r *http.Request, op string, err error, attrs ...any) {
	e.writeStatus(w, r, statusFor(domain.KindOf(err)), op, err, attrs...)
}

func (e errorWriter) writeStatus(w http.ResponseWriter, r *http.Request, status int, op string, err error, attrs ...any) {
	if status >= http.StatusInternalServerError {
		attrs = append(attrs, "op", op, "request_id", middleware.GetReqID(r.Context()), "error", err)
		e.log.ErrorContext(r.Context(), "request failed", attrs...)
	}
	writeMessage(w, status, domain.PublicMessage(err))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// idParam parses a positive integer path parameter, answering 400 itself
// when it is malformed.
func idParam(w http.ResponseWriter, r *http.Request, name, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeMessage(w, http.StatusBadRequest, "invalid "+label+" id")
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
