package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/KiiTuNp/voteapp/internal/domain"
)

type message struct {
	Message string `json:"message"`
}

type errorBody struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps a domain Kind to its one HTTP status.
func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindForbidden:
		return http.StatusForbidden
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError renders err as {"detail": ...}. Anything that is not a
// domain error is logged and hidden behind a generic message.
func writeError(w http.ResponseWriter, log *slog.Logger, r *http.Request, err error) {
	status := statusFor(domain.KindOf(err))
	detail := err.Error()
	if status == http.StatusInternalServerError {
		log.Error("http.internal", "method", r.Method, "path", r.URL.Path, "err", err)
		detail = "Internal server error"
	}
	writeJSONStatus(w, status, errorBody{Detail: detail})
}

// decodeBody reads an optional JSON body into dst. An empty body is
// fine; fields may also arrive as query parameters.
func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return domain.Invalid("Invalid JSON body")
}

// orQuery returns v, or the query parameter key when v is empty.
func orQuery(r *http.Request, v, key string) string {
	if v != "" {
		return v
	}
	return r.URL.Query().Get(key)
}
