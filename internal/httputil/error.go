package httputil

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/AdamBeresnev/elim-bracket/internal/bracket"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	if err := WriteJSON(w, status, errorBody{Error: msg}); err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

func InternalServerError(w http.ResponseWriter, msg string, err error) {
	slog.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func BadRequest(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("bad request", "message", msg, "error", err)
	} else {
		slog.Warn("bad request", "message", msg)
	}
	writeError(w, http.StatusBadRequest, msg)
}

func NotFound(w http.ResponseWriter, msg string, err error) {
	if err != nil {
		slog.Warn("not found", "message", msg, "error", err)
	} else {
		slog.Warn("not found", "message", msg)
	}
	writeError(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string, err error) {
	slog.Warn("conflict", "message", msg, "error", err)
	writeError(w, http.StatusConflict, msg)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	slog.Warn("unauthorized", "message", msg)
	writeError(w, http.StatusUnauthorized, msg)
}

// ServiceError answers with the status matching the kind of err. Client
// errors echo the message, anything else is logged and hidden.
func ServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, bracket.ErrInvalidInput):
		BadRequest(w, err.Error(), nil)
	case errors.Is(err, bracket.ErrNotFound):
		NotFound(w, err.Error(), nil)
	case errors.Is(err, bracket.ErrConflict):
		Conflict(w, err.Error(), nil)
	default:
		InternalServerError(w, "request failed", err)
	}
}
