package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"

	"storyvid-backend/internal/middleware"
	"storyvid-backend/internal/models"
)

const renderQueue = "queue:video-render"

type RenderHandler struct {
	assetRepo videoAssetRepository
	jobRepo   renderJobRepository
	redis     *redis.Client
}

type renderJobRepository interface {
	Create(ctx context.Context, j *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

func NewRenderHandler(assetRepo videoAssetRepository, jobRepo renderJobRepository, redisClient *redis.Client) *RenderHandler {
	return &RenderHandler{
		assetRepo: assetRepo,
		jobRepo:   jobRepo,
		redis:     redisClient,
	}
}

// Render queues an asset for MP4 assembly. The asset lookup is owner-scoped,
// so rendering someone else's asset reports not found.
func (h *RenderHandler) Render(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid asset ID", r))
		return
	}

	userID := middleware.GetUserID(r.Context())

	asset, err := h.assetRepo.GetByID(r.Context(), id, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "No video assets found", r))
		return
	}
	if err != nil {
		log.Printf("failed to fetch video asset %s for render: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch video asset", r))
		return
	}

	job := &models.Job{
		UserID:      userID,
		Type:        "video-render",
		ReferenceID: asset.ID,
	}

	if err := h.jobRepo.Create(r.Context(), job); err != nil {
		log.Printf("failed to create render job for asset %s: %v", asset.ID, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create render job", r))
		return
	}

	jobBytes, _ := json.Marshal(job)
	if err := h.redis.LPush(r.Context(), renderQueue, string(jobBytes)).Err(); err != nil {
		log.Printf("failed to enqueue render job %s: %v", job.ID, err)
		_ = h.jobRepo.UpdateStatus(r.Context(), job.ID, "failed")
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Render queue is unavailable", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"job_id":   job.ID,
		"asset_id": asset.ID,
	})
}

// GetJob reports the status of a render job, owner-scoped.
func (h *RenderHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid job ID", r))
		return
	}

	job, err := h.jobRepo.GetByID(r.Context(), id)
	if errors.Is(err, pgx.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Job not found", r))
		return
	}
	if err != nil {
		log.Printf("failed to fetch job %s: %v", id, err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch job", r))
		return
	}

	if job.UserID != middleware.GetUserID(r.Context()) {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, job)
}
