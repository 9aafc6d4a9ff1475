package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/markdave123-py/quizsmith/internal/core"
	"github.com/markdave123-py/quizsmith/internal/models"
)

// FileChatter answers a fixed instruction about one file.
type FileChatter interface {
	Chat(ctx context.Context, file *models.UploadedFile) (string, error)
}

type ChatHandler struct {
	docs     FileChatter
	maxBytes int64
}

func NewChatHandler(docs FileChatter, maxUploadBytes int64) *ChatHandler {
	return &ChatHandler{docs: docs, maxBytes: maxUploadBytes}
}

func (h *ChatHandler) ChatWithFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeBadRequest(w, "invalid_form", fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	if r.MultipartForm == nil || len(r.MultipartForm.File["file"]) == 0 {
		writeError(w, &core.FieldError{Fields: []string{"file"}})
		return
	}
	file, err := readUpload(r.MultipartForm.File["file"][0])
	if err != nil {
		writeBadRequest(w, "invalid_form", err.Error())
		return
	}

	answer, err := h.docs.Chat(r.Context(), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"answer":  answer,
	})
}
