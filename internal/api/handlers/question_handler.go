package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/markdave123-py/quizsmith/internal/models"
	"github.com/markdave123-py/quizsmith/internal/services"
)

// TopicGenerator generates questions from a topic alone.
type TopicGenerator interface {
	Generate(ctx context.Context, req services.TopicRequest) ([]models.TopicQuestion, error)
}

type QuestionHandler struct {
	questions TopicGenerator
}

func NewQuestionHandler(questions TopicGenerator) *QuestionHandler {
	return &QuestionHandler{questions: questions}
}

func (h *QuestionHandler) GenerateQuestions(w http.ResponseWriter, r *http.Request) {
	var req services.TopicRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid_body", "invalid request body")
		return
	}

	questions, err := h.questions.Generate(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    questions,
	})
}
