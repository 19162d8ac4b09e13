package processors

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"ecomai/internal/ai"
	"ecomai/internal/config"
	"ecomai/internal/logger"
	"ecomai/internal/queue"
	"ecomai/internal/worker/processors/batch"
	"ecomai/internal/worker/processors/orders"
	"ecomai/internal/worker/processors/tracker"
)

// TaskProcessor routes task envelopes to their handlers.
type TaskProcessor struct {
	config  *config.Config
	logger  *logger.Logger
	batch   *batch.Processor
	orders  *orders.Syncer
	tracker *tracker.Tracker
}

func NewTaskProcessor(cfg *config.Config, logger *logger.Logger, db *gorm.DB) *TaskProcessor {
	completion := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, logger)

	return &TaskProcessor{
		config:  cfg,
		logger:  logger,
		batch:   batch.New(db, logger, completion, cfg.ProgressInterval),
		orders:  orders.New(db, logger, nil),
		tracker: tracker.New(db, logger),
	}
}

func (tp *TaskProcessor) Process(ctx context.Context, task *queue.Task) error {
	switch task.Type {
	case queue.TaskTypeBulkEditBatch:
		var payload queue.BulkEditBatchPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid bulk edit payload: %w", err)
		}
		return tp.batch.Process(ctx, &payload)

	case queue.TaskTypeOrderSync:
		var payload queue.OrderSyncPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid order sync payload: %w", err)
		}
		return tp.orders.Process(ctx, &payload)

	case queue.TaskTypeRankRisers:
		var payload queue.RankRisersPayload
		if err := json.Unmarshal(task.Payload, &payload); err != nil {
			return fmt.Errorf("invalid rank risers payload: %w", err)
		}
		return tp.tracker.Process(ctx, &payload)
	}

	return fmt.Errorf("unknown task type: %s", task.Type)
}
