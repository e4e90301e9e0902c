package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"storyvid-backend/internal/models"
)

type stubJobRepo struct {
	jobs   []*models.Job
	getErr error
}

func (s *stubJobRepo) Create(ctx context.Context, j *models.Job) error {
	j.ID = uuid.New()
	j.Status = "pending"
	s.jobs = append(s.jobs, j)
	return nil
}

func (s *stubJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, j := range s.jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *stubJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	for _, j := range s.jobs {
		if j.ID == id {
			j.Status = status
		}
	}
	return nil
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// ─── Render ───

func TestRender_UnknownAssetIsNotFound(t *testing.T) {
	h := NewRenderHandler(&stubAssetRepo{}, &stubJobRepo{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/video-assets/render", nil)
	req = withUser(req, "user_1")
	req = withURLParam(req, "id", uuid.NewString())
	rr := httptest.NewRecorder()
	h.Render(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestRender_OtherUsersAssetIsNotFound(t *testing.T) {
	asset := sampleAsset("user_1")
	jobRepo := &stubJobRepo{}
	h := NewRenderHandler(&stubAssetRepo{assets: []*models.VideoAsset{asset}}, jobRepo, nil)

	req := httptest.NewRequest(http.MethodPost, "/video-assets/render", nil)
	req = withUser(req, "user_2")
	req = withURLParam(req, "id", asset.ID.String())
	rr := httptest.NewRecorder()
	h.Render(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
	if len(jobRepo.jobs) != 0 {
		t.Fatalf("no job must be created for someone else's asset")
	}
}

func TestRender_AssetStoreFailureIs500(t *testing.T) {
	repo := &stubAssetRepo{getErr: errors.New("connection refused: store unreachable")}
	h := NewRenderHandler(repo, &stubJobRepo{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/video-assets/render", nil)
	req = withUser(req, "user_1")
	req = withURLParam(req, "id", uuid.NewString())
	rr := httptest.NewRecorder()
	h.Render(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d: %s", http.StatusInternalServerError, rr.Code, rr.Body.String())
	}
}

// ─── Get job ───

func TestGetJob_UnknownJobIsNotFound(t *testing.T) {
	h := NewRenderHandler(&stubAssetRepo{}, &stubJobRepo{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req = withUser(req, "user_1")
	req = withURLParam(req, "id", uuid.NewString())
	rr := httptest.NewRecorder()
	h.GetJob(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, rr.Code)
	}
}

func TestGetJob_StoreFailureIs500(t *testing.T) {
	jobRepo := &stubJobRepo{getErr: errors.New("connection refused: store unreachable")}
	h := NewRenderHandler(&stubAssetRepo{}, jobRepo, nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req = withUser(req, "user_1")
	req = withURLParam(req, "id", uuid.NewString())
	rr := httptest.NewRecorder()
	h.GetJob(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d: %s", http.StatusInternalServerError, rr.Code, rr.Body.String())
	}
}

func TestGetJob_OtherUsersJobIsForbidden(t *testing.T) {
	job := &models.Job{ID: uuid.New(), UserID: "user_1", Type: "video-render", Status: "pending"}
	h := NewRenderHandler(&stubAssetRepo{}, &stubJobRepo{jobs: []*models.Job{job}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req = withUser(req, "user_2")
	req = withURLParam(req, "id", job.ID.String())
	rr := httptest.NewRecorder()
	h.GetJob(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, rr.Code)
	}
}
