package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"storyvid-backend/internal/models"
)

type stubPromptRepo struct {
	stories []*models.StoryPrompt
	created *models.StoryPrompt
}

func (s *stubPromptRepo) Create(ctx context.Context, p *models.StoryPrompt) error {
	p.ID = uuid.New()
	s.created = p
	return nil
}

func (s *stubPromptRepo) ListByIDAndUser(ctx context.Context, id uuid.UUID, userID string) ([]*models.StoryPrompt, error) {
	var out []*models.StoryPrompt
	for _, p := range s.stories {
		if p.ID == id && p.StorypromptID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPromptRepo) ListByUser(ctx context.Context, userID string) ([]*models.StoryPrompt, error) {
	var out []*models.StoryPrompt
	for _, p := range s.stories {
		if p.StorypromptID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func TestGetByID_MissingParams(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"missing storypromptId", "/get-promptstory-by-id?userId=user_1"},
		{"missing userId", "/get-promptstory-by-id?storypromptId=" + uuid.NewString()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewStoryPromptHandler(&stubPromptRepo{})

			req := httptest.NewRequest(http.MethodGet, tc.url, nil)
			rr := httptest.NewRecorder()
			h.GetByID(rr, req)

			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
			}
		})
	}
}

func TestGetByID_EmptyResultIs404(t *testing.T) {
	h := NewStoryPromptHandler(&stubPromptRepo{})

	req := httptest.NewRequest(http.MethodGet, "/get-promptstory-by-id?storypromptId="+uuid.NewString()+"&userId=user_1", nil)
	rr := httptest.NewRecorder()
	h.GetByID(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d for zero rows, got %d", http.StatusNotFound, rr.Code)
	}

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("expected an error body, got %q", rr.Body.String())
	}
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("expected NOT_FOUND, got %q", resp.Error.Code)
	}
}

func TestGetByID_ReturnsMatchingStory(t *testing.T) {
	story := &models.StoryPrompt{
		ID:            uuid.New(),
		StorypromptID: "user_1",
		StoryTitle:    "The Paper Kingdom",
	}
	h := NewStoryPromptHandler(&stubPromptRepo{stories: []*models.StoryPrompt{story}})

	req := httptest.NewRequest(http.MethodGet, "/get-promptstory-by-id?storypromptId="+story.ID.String()+"&userId=user_1", nil)
	rr := httptest.NewRecorder()
	h.GetByID(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		Stories []models.StoryPrompt `json:"stories"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Stories) != 1 || resp.Stories[0].StoryTitle != "The Paper Kingdom" {
		t.Errorf("expected the matching story, got %v", resp.Stories)
	}
}

func TestGetByUser_EmptyIsSuccess(t *testing.T) {
	h := NewStoryPromptHandler(&stubPromptRepo{})

	req := httptest.NewRequest(http.MethodGet, "/get-promptstory-by-userId", nil)
	req = withUser(req, "user_with_nothing")
	rr := httptest.NewRecorder()
	h.GetByUser(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d on empty list, got %d", http.StatusOK, rr.Code)
	}

	var resp struct {
		Stories []models.StoryPrompt `json:"stories"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Stories == nil {
		t.Errorf("expected an empty array, got null")
	}
}

func TestSave_MissingFieldsRejected(t *testing.T) {
	repo := &stubPromptRepo{}
	h := NewStoryPromptHandler(repo)

	body, _ := json.Marshal(models.SaveStoryPromptRequest{StoryTitle: "Only a title"})
	req := httptest.NewRequest(http.MethodPost, "/save-promptstory", bytes.NewReader(body))
	req = withUser(req, "user_1")
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if repo.created != nil {
		t.Fatalf("invalid payload must not be persisted")
	}
}

func TestSave_OwnerDerivedFromIdentity(t *testing.T) {
	repo := &stubPromptRepo{}
	h := NewStoryPromptHandler(repo)

	body, _ := json.Marshal(models.SaveStoryPromptRequest{
		StoryTitle:     "The Paper Kingdom",
		StoryPrompt:    "a kingdom folded from paper",
		StoryType:      "fantasy",
		AgeGroup:       "6-8",
		WritingStyle:   "whimsical",
		Complexity:     "simple",
		BookCoverImage: "https://cdn.example.com/cover.jpg",
		ChapterTexts:   []string{"Chapter one..."},
		ChapterImages:  []string{"https://cdn.example.com/ch1.jpg"},
	})

	req := httptest.NewRequest(http.MethodPost, "/save-promptstory", bytes.NewReader(body))
	req = withUser(req, "user_real")
	rr := httptest.NewRecorder()
	h.Save(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	if repo.created == nil || repo.created.StorypromptID != "user_real" {
		t.Errorf("owner must come from the authenticated identity, got %+v", repo.created)
	}
}
