package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storyvid-backend/internal/models"
)

type VideoAssetRepo struct {
	pool *pgxpool.Pool
}

func NewVideoAssetRepo(pool *pgxpool.Pool) *VideoAssetRepo {
	return &VideoAssetRepo{pool: pool}
}

func (r *VideoAssetRepo) Create(ctx context.Context, a *models.VideoAsset) error {
	a.ID = uuid.New()

	captionsBytes, _ := json.Marshal(a.Captions)
	audioBytes, _ := json.Marshal(a.AudioURLs)
	imageBytes, _ := json.Marshal(a.ImageURLs)

	query := `INSERT INTO video_assets (id, user_id, prompt, captions, audio_urls, image_urls, content, total_duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		a.ID, a.UserID, a.Prompt, captionsBytes, audioBytes, imageBytes, a.Content, a.TotalDuration,
	).Scan(&a.CreatedAt)
}

const videoAssetColumns = `id, user_id, prompt, captions, audio_urls, image_urls, content, total_duration, video_url, created_at`

func (r *VideoAssetRepo) scanAsset(row pgx.Row) (*models.VideoAsset, error) {
	a := &models.VideoAsset{}
	var captionsBytes, audioBytes, imageBytes []byte

	err := row.Scan(
		&a.ID, &a.UserID, &a.Prompt, &captionsBytes, &audioBytes, &imageBytes,
		&a.Content, &a.TotalDuration, &a.VideoURL, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(captionsBytes, &a.Captions)
	json.Unmarshal(audioBytes, &a.AudioURLs)
	json.Unmarshal(imageBytes, &a.ImageURLs)
	return a, nil
}

// GetByID returns the asset only when both id and owner match, so one user's
// lookup can never surface another user's asset. A mismatch on either field
// reports pgx.ErrNoRows.
func (r *VideoAssetRepo) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.VideoAsset, error) {
	query := `SELECT ` + videoAssetColumns + ` FROM video_assets WHERE id = $1 AND user_id = $2`
	return r.scanAsset(r.pool.QueryRow(ctx, query, id, userID))
}

// MostRecentByUser is the confirmation read after a create. Scoped by owner:
// the latest row overall could belong to someone else.
func (r *VideoAssetRepo) MostRecentByUser(ctx context.Context, userID string) (*models.VideoAsset, error) {
	query := `SELECT ` + videoAssetColumns + ` FROM video_assets WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	return r.scanAsset(r.pool.QueryRow(ctx, query, userID))
}

func (r *VideoAssetRepo) ListByUser(ctx context.Context, userID string) ([]*models.VideoAsset, error) {
	query := `SELECT ` + videoAssetColumns + ` FROM video_assets WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.VideoAsset
	for rows.Next() {
		a, err := r.scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

// UpdateVideoURL records the rendered file location. Only the render worker
// writes this; the asset itself stays immutable.
func (r *VideoAssetRepo) UpdateVideoURL(ctx context.Context, id uuid.UUID, videoURL string) error {
	_, err := r.pool.Exec(ctx, "UPDATE video_assets SET video_url = $1 WHERE id = $2", videoURL, id)
	return err
}
