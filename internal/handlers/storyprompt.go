package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"storyvid-backend/internal/middleware"
	"storyvid-backend/internal/models"
)

type StoryPromptHandler struct {
	promptRepo storyPromptRepository
}

type storyPromptRepository interface {
	Create(ctx context.Context, s *models.StoryPrompt) error
	ListByIDAndUser(ctx context.Context, id uuid.UUID, userID string) ([]*models.StoryPrompt, error)
	ListByUser(ctx context.Context, userID string) ([]*models.StoryPrompt, error)
}

func NewStoryPromptHandler(promptRepo storyPromptRepository) *StoryPromptHandler {
	return &StoryPromptHandler{promptRepo: promptRepo}
}

// GetByID fetches one specific prompt by (storypromptId, userId). Because a
// specific record was asked for, an empty result is absence: 404, not an
// empty success. The sibling list endpoints deliberately differ.
func (h *StoryPromptHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	storypromptID := r.URL.Query().Get("storypromptId")
	userID := r.URL.Query().Get("userId")

	if storypromptID == "" || userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Story Prompt ID and User ID are required", r))
		return
	}

	id, err := uuid.Parse(storypromptID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid story prompt ID", r))
		return
	}

	stories, err := h.promptRepo.ListByIDAndUser(r.Context(), id, userID)
	if err != nil {
		log.Printf("failed to fetch story prompt %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch stories", r))
		return
	}

	if len(stories) == 0 {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No stories found", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stories": stories})
}

// GetByUser lists every prompt the authenticated user owns; zero prompts is
// an empty success.
func (h *StoryPromptHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	stories, err := h.promptRepo.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("failed to list story prompts for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch stories", r))
		return
	}

	if stories == nil {
		stories = []*models.StoryPrompt{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"stories": stories})
}

func (h *StoryPromptHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req models.SaveStoryPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	fieldErrors := make(map[string]string)
	required := map[string]string{
		"storyTitle":     req.StoryTitle,
		"storyPrompt":    req.StoryPrompt,
		"storyType":      req.StoryType,
		"ageGroup":       req.AgeGroup,
		"writingStyle":   req.WritingStyle,
		"complexity":     req.Complexity,
		"bookCoverImage": req.BookCoverImage,
	}
	for field, val := range required {
		if val == "" {
			fieldErrors[field] = "This field is required"
		}
	}
	if len(req.ChapterTexts) == 0 {
		fieldErrors["chapterTexts"] = "Chapter texts are required"
	}
	if len(req.ChapterImages) == 0 {
		fieldErrors["chapterImages"] = "Chapter images are required"
	}
	if len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Missing required fields", fieldErrors, r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	story := &models.StoryPrompt{
		StorypromptID:  userID,
		StoryTitle:     req.StoryTitle,
		StoryPrompt:    req.StoryPrompt,
		StoryType:      req.StoryType,
		AgeGroup:       req.AgeGroup,
		WritingStyle:   req.WritingStyle,
		Complexity:     req.Complexity,
		BookCoverImage: req.BookCoverImage,
		ChapterTexts:   req.ChapterTexts,
		ChapterImages:  req.ChapterImages,
	}

	if err := h.promptRepo.Create(r.Context(), story); err != nil {
		log.Printf("failed to save story prompt for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save the story", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "Story saved successfully",
		"story":   story,
	})
}
