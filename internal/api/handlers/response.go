package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/markdave123-py/quizsmith/internal/core"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", slog.Any("err", err))
	}
}

// writeError maps err to its status and short code.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, core.HTTPStatus(err), errorResponse{
		Success: false,
		Message: err.Error(),
		Code:    core.Code(err),
	})
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: message, Code: code})
}
