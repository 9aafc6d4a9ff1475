package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5/middleware"

	appMiddleware "github.com/markdave123-py/quizsmith/internal/api/middlewares"
	"github.com/markdave123-py/quizsmith/internal/models"
	"github.com/markdave123-py/quizsmith/internal/services"
)

// QuizGenerator runs the quiz pipeline for one request.
type QuizGenerator interface {
	Generate(ctx context.Context, req services.QuizRequest) (*models.PipelineResult, error)
}

type DocumentHandler struct {
	quiz     QuizGenerator
	maxBytes int64
}

func NewDocumentHandler(quiz QuizGenerator, maxUploadBytes int64) *DocumentHandler {
	return &DocumentHandler{quiz: quiz, maxBytes: maxUploadBytes}
}

type quizResponse struct {
	Success bool `json:"success"`
	*models.PipelineResult
}

// ChatWithFiles generates a quiz table from the uploaded files and file
// references in a multipart form.
func (h *DocumentHandler) ChatWithFiles(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeBadRequest(w, "invalid_form", fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	sources, err := formSources(r)
	if err != nil {
		writeBadRequest(w, "invalid_form", err.Error())
		return
	}

	allowPartial, _ := strconv.ParseBool(r.FormValue("allowPartial"))
	result, err := h.quiz.Generate(r.Context(), services.QuizRequest{
		RequestID:    middleware.GetReqID(r.Context()),
		Subject:      r.FormValue("subject"),
		Format:       r.FormValue("format"),
		NumQuestions: r.FormValue("numQuestions"),
		Sources:      sources,
		AccessToken:  appMiddleware.DriveToken(r.Context()),
		AllowPartial: allowPartial,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizResponse{Success: true, PipelineResult: result})
}

// formSources collects uploaded parts under "files" and "file", then the
// plain string values under "files" as remote references.
func formSources(r *http.Request) ([]services.Source, error) {
	var sources []services.Source
	if r.MultipartForm != nil {
		for _, field := range []string{"files", "file"} {
			for _, fh := range r.MultipartForm.File[field] {
				f, err := readUpload(fh)
				if err != nil {
					return nil, err
				}
				sources = append(sources, services.Source{Upload: f})
			}
		}
	}
	for _, ref := range r.Form["files"] {
		if ref != "" {
			sources = append(sources, services.Source{Ref: ref})
		}
	}
	return sources, nil
}

func readUpload(fh *multipart.FileHeader) (*models.UploadedFile, error) {
	file, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return &models.UploadedFile{
		Name:     fh.Filename,
		MimeType: fh.Header.Get("Content-Type"),
		Bytes:    data,
	}, nil
}
