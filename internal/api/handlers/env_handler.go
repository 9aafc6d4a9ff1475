package handlers

import (
	"net/http"

	"github.com/markdave123-py/quizsmith/internal/core/prompts"
)

// EnvHandler serves the public values the browser needs for the Drive
// picker, plus the subject catalog and a liveness check.
type EnvHandler struct {
	clientID string
	apiKey   string
}

func NewEnvHandler(clientID, apiKey string) *EnvHandler {
	return &EnvHandler{clientID: clientID, apiKey: apiKey}
}

func (h *EnvHandler) Env(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"clientId": h.clientID,
		"apiKey":   h.apiKey,
	})
}

func (h *EnvHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"subjects": prompts.Subjects(),
	})
}

func (h *EnvHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
