package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storyvid-backend/internal/middleware"
	"storyvid-backend/internal/models"
	"storyvid-backend/internal/services"
)

type VideoAssetHandler struct {
	assetRepo videoAssetRepository
}

type videoAssetRepository interface {
	Create(ctx context.Context, a *models.VideoAsset) error
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.VideoAsset, error)
	MostRecentByUser(ctx context.Context, userID string) (*models.VideoAsset, error)
	ListByUser(ctx context.Context, userID string) ([]*models.VideoAsset, error)
}

func NewVideoAssetHandler(assetRepo videoAssetRepository) *VideoAssetHandler {
	return &VideoAssetHandler{assetRepo: assetRepo}
}

// Create persists a finished asset bundle, then answers with a confirmation
// read of the caller's most recent asset. The owner is always the
// authenticated identity; a userId in the body is ignored.
func (h *VideoAssetHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVideoAssetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	if fieldErrors := validateCreateRequest(&req); len(fieldErrors) > 0 {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fieldErrors, r))
		return
	}

	asset := &models.VideoAsset{
		UserID:        userID,
		Prompt:        req.Prompt,
		Captions:      req.Captions,
		AudioURLs:     req.AudioURLs,
		ImageURLs:     req.ImageURLs,
		Content:       req.Content,
		TotalDuration: req.TotalDuration,
	}

	if err := h.assetRepo.Create(r.Context(), asset); err != nil {
		log.Printf("failed to create video asset for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to save video asset", r))
		return
	}

	latest, err := h.assetRepo.MostRecentByUser(r.Context(), userID)
	if err != nil {
		log.Printf("confirmation read failed for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch saved video asset", r))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"videoAssets": latest})
}

func validateCreateRequest(req *models.CreateVideoAssetRequest) map[string]string {
	fieldErrors := make(map[string]string)

	if req.Prompt == "" {
		fieldErrors["prompt"] = "Prompt is required"
	}
	if req.Content == "" {
		fieldErrors["content"] = "Content is required"
	}
	if req.TotalDuration < 0 {
		fieldErrors["totalDuration"] = "Total duration must not be negative"
	}
	if len(req.Captions.FirstScene.Words) == 0 && len(req.Captions.Dialogs) == 0 && len(req.Captions.LastScene.Words) == 0 {
		fieldErrors["captions"] = "Captions are required"
	}
	if req.AudioURLs.FirstScene == "" && len(req.AudioURLs.Dialogs) == 0 && req.AudioURLs.LastScene == "" {
		fieldErrors["audioUrls"] = "Audio URLs are required"
	}
	if req.ImageURLs.FirstScene == "" && len(req.ImageURLs.Scenes) == 0 && req.ImageURLs.LastScene == "" {
		fieldErrors["imageUrls"] = "Image URLs are required"
	}

	return fieldErrors
}

// GetByScene looks an asset up by scene id, scoped by the owning user. Both
// parameters are mandatory and checked before any store access. A malformed
// id, a missing row and a row owned by someone else are indistinguishable to
// the caller: all report 404.
func (h *VideoAssetHandler) GetByScene(w http.ResponseWriter, r *http.Request) {
	sceneID := r.URL.Query().Get("sceneId")
	userID := r.URL.Query().Get("userId")

	if sceneID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Scene ID is required", r))
		return
	}
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "User ID is required", r))
		return
	}

	// Clients historically double-encode the scene id; unescape once more.
	cleanSceneID, err := url.QueryUnescape(sceneID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No video assets found", r))
		return
	}

	// A malformed id can never match a row, so it is absence, not a caller
	// error.
	id, err := uuid.Parse(cleanSceneID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No video assets found", r))
		return
	}

	asset, err := h.assetRepo.GetByID(r.Context(), id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No video assets found", r))
		return
	}
	if err != nil {
		log.Printf("failed to fetch video asset %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch video asset", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videoAssets": asset})
}

// ListByUser returns every asset the authenticated user owns. Zero assets is
// a success, not an error.
func (h *VideoAssetHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	assets, err := h.assetRepo.ListByUser(r.Context(), userID)
	if err != nil {
		log.Printf("failed to list video assets for user %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch assets", r))
		return
	}

	if assets == nil {
		assets = []*models.VideoAsset{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videoAssets": assets})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	case *services.ForbiddenError:
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", e.Message, r))
	case *services.UpstreamError:
		log.Printf("upstream failure: %s", e.Message)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	default:
		log.Printf("unexpected error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
