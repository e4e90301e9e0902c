package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"storyvid-backend/internal/services"
)

type PromptHandler struct {
	text textService
}

type textService interface {
	CleanPrompt(ctx context.Context, content string) (string, error)
	AnalyzeScriptConcept(ctx context.Context, content string) (*services.ConceptVerdict, error)
}

func NewPromptHandler(text textService) *PromptHandler {
	return &PromptHandler{text: text}
}

type promptRequest struct {
	Content string `json:"content"`
}

// Clean forwards a script concept through the normalizer and answers with the
// re-formatted plain text.
func (h *PromptHandler) Clean(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Content is required", r))
		return
	}

	text, err := h.text.CleanPrompt(r.Context(), req.Content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(text))
}

// Analyze asks the model whether a script concept is usable for scene
// generation.
func (h *PromptHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req promptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Content == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Script concept is required", r))
		return
	}

	verdict, err := h.text.AnalyzeScriptConcept(r.Context(), req.Content)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, verdict)
}
