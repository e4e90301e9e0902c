package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storyvid-backend/internal/models"
)

type StoryPromptRepo struct {
	pool *pgxpool.Pool
}

func NewStoryPromptRepo(pool *pgxpool.Pool) *StoryPromptRepo {
	return &StoryPromptRepo{pool: pool}
}

const storyPromptColumns = `id, storyprompt_id, story_title, story_prompt, story_type, age_group,
	writing_style, complexity, book_cover_image, chapter_texts, chapter_images, created_at`

func (r *StoryPromptRepo) Create(ctx context.Context, s *models.StoryPrompt) error {
	s.ID = uuid.New()

	query := `INSERT INTO story_prompts (id, storyprompt_id, story_title, story_prompt, story_type,
		age_group, writing_style, complexity, book_cover_image, chapter_texts, chapter_images)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		s.ID, s.StorypromptID, s.StoryTitle, s.StoryPrompt, s.StoryType,
		s.AgeGroup, s.WritingStyle, s.Complexity, s.BookCoverImage, s.ChapterTexts, s.ChapterImages,
	).Scan(&s.CreatedAt)
}

func (r *StoryPromptRepo) scanPrompt(row pgx.Row) (*models.StoryPrompt, error) {
	s := &models.StoryPrompt{}
	err := row.Scan(
		&s.ID, &s.StorypromptID, &s.StoryTitle, &s.StoryPrompt, &s.StoryType, &s.AgeGroup,
		&s.WritingStyle, &s.Complexity, &s.BookCoverImage, &s.ChapterTexts, &s.ChapterImages, &s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListByIDAndUser fetches a specific prompt, owner-scoped. Kept as a list for
// wire compatibility with clients that expect an array.
func (r *StoryPromptRepo) ListByIDAndUser(ctx context.Context, id uuid.UUID, userID string) ([]*models.StoryPrompt, error) {
	query := `SELECT ` + storyPromptColumns + ` FROM story_prompts WHERE id = $1 AND storyprompt_id = $2`
	return r.collect(ctx, query, id, userID)
}

func (r *StoryPromptRepo) ListByUser(ctx context.Context, userID string) ([]*models.StoryPrompt, error) {
	query := `SELECT ` + storyPromptColumns + ` FROM story_prompts WHERE storyprompt_id = $1 ORDER BY created_at DESC`
	return r.collect(ctx, query, userID)
}

func (r *StoryPromptRepo) collect(ctx context.Context, query string, args ...interface{}) ([]*models.StoryPrompt, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []*models.StoryPrompt
	for rows.Next() {
		s, err := r.scanPrompt(rows)
		if err != nil {
			return nil, err
		}
		prompts = append(prompts, s)
	}
	return prompts, rows.Err()
}
