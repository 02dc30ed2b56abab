package plagiarism

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/RishiKendai/aegis-text/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	statusKeyPrefix = "analysis_status:"
	statusTTL       = 12 * time.Hour
)

var validSteps = map[models.Step]bool{
	models.StepIdle:      true,
	models.StepInitiated: true,
	models.StepStarted:   true,
	models.StepAnalyzing: true,
	models.StepCompleted: true,
	models.StepFailed:    true,
}

// StatusTracker records the progress of queued analyses in Redis
type StatusTracker struct {
	client redis.Cmdable
}

func NewStatusTracker(client redis.Cmdable) *StatusTracker {
	return &StatusTracker{client: client}
}

func statusKey(analysisID string) string {
	return statusKeyPrefix + analysisID
}

func (t *StatusTracker) UpdateStatus(ctx context.Context, analysisID string, step models.Step) error {
	if !validSteps[step] {
		return fmt.Errorf("unknown step: %s", step)
	}

	rkey := statusKey(analysisID)

	err := t.client.Set(ctx, rkey, string(step), statusTTL).Err()
	if err != nil {
		log.Error().Err(err).
			Str("step", string(step)).
			Str("analysisId", analysisID).
			Str("redisKey", rkey).
			Msg("Failed to update status in Redis")
		return fmt.Errorf("failed to update status in Redis: %w", err)
	}

	log.Trace().
		Str("step", string(step)).
		Str("analysisId", analysisID).
		Msg("Status updated in Redis")

	return nil
}

// GetStatus returns the current step, StepIdle when nothing was recorded
func (t *StatusTracker) GetStatus(ctx context.Context, analysisID string) (models.Step, error) {
	value, err := t.client.Get(ctx, statusKey(analysisID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.StepIdle, nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read status from Redis: %w", err)
	}
	return models.Step(value), nil
}
