package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"storyvid-backend/internal/models"
	"storyvid-backend/internal/repository"
	"storyvid-backend/internal/services"
)

const renderQueue = "queue:video-render"

// Pool consumes render jobs from Redis and assembles video files. Jobs are
// locked per-id so a requeued job is never rendered twice concurrently.
type Pool struct {
	redis       *redis.Client
	renderer    *services.RenderService
	jobRepo     *repository.JobRepo
	assetRepo   *repository.VideoAssetRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	renderer *services.RenderService,
	jobRepo *repository.JobRepo,
	assetRepo *repository.VideoAssetRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		renderer:    renderer,
		jobRepo:     jobRepo,
		assetRepo:   assetRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d render workers", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Render worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		result, err := p.redis.BLPop(ctx, 30*time.Second, renderQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}

		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Render worker %d: failed to parse job: %v", id, err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Render worker %d: processing job %s (asset %s)", id, job.ID, job.ReferenceID)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		if err := p.processRender(ctx, &job); err != nil {
			p.handleFailure(ctx, &job, err)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processRender(ctx context.Context, job *models.Job) error {
	p.publishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID: job.ID, Step: 1, StepName: "Fetching scene assets",
		},
	})

	asset, err := p.assetRepo.GetByID(ctx, job.ReferenceID, job.UserID)
	if err != nil {
		return fmt.Errorf("failed to load asset %s: %w", job.ReferenceID, err)
	}

	p.publishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID: job.ID, Step: 2, StepName: "Rendering scenes",
		},
	})

	videoURL, err := p.renderer.Render(ctx, asset)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	p.publishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "status_update",
		Payload: models.StatusUpdate{
			JobID: job.ID, Step: 3, StepName: "Saving video",
		},
	})

	if err := p.assetRepo.UpdateVideoURL(ctx, asset.ID, videoURL); err != nil {
		return fmt.Errorf("failed to record video URL: %w", err)
	}

	p.publishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "completed",
		Payload: models.CompletedEvent{
			JobID: job.ID, AssetID: asset.ID, VideoURL: videoURL,
		},
	})

	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	if err := p.jobRepo.UpdateStatus(ctx, job.ID, "completed"); err != nil {
		log.Printf("failed to mark job %s completed: %v", job.ID, err)
	}
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, processErr error) {
	log.Printf("Render job %s failed: %v", job.ID, processErr)

	job.RetryCount++
	if err := p.jobRepo.UpdateError(ctx, job.ID, processErr.Error(), job.RetryCount); err != nil {
		log.Printf("failed to record error for job %s: %v", job.ID, err)
	}

	if job.MaxRetries == 0 {
		job.MaxRetries = 3
	}

	if job.RetryCount < job.MaxRetries {
		jobBytes, _ := json.Marshal(job)
		if err := p.redis.LPush(ctx, renderQueue, string(jobBytes)).Err(); err != nil {
			log.Printf("failed to requeue job %s: %v", job.ID, err)
			p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
			return
		}
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		return
	}

	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.publishUpdate(ctx, job.UserID, models.WSMessage{
		Type: "error",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "RENDER_FAILED",
			ErrorMessage: "Video rendering failed. Please try again.",
		},
	})
}

func (p *Pool) publishUpdate(ctx context.Context, userID string, msg models.WSMessage) {
	data, _ := json.Marshal(msg)
	p.redis.Publish(ctx, "user_updates:"+userID, string(data))
}
