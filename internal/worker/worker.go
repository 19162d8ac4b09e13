package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"gorm.io/gorm"

	"ecomai/internal/config"
	"ecomai/internal/logger"
	"ecomai/internal/queue"
	"ecomai/internal/worker/processors"
)

type Worker struct {
	config    *config.Config
	logger    *logger.Logger
	reader    *kafka.Reader
	processor *processors.TaskProcessor
}

func New(cfg *config.Config, logger *logger.Logger, db *gorm.DB) *Worker {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.KafkaBrokers},
		GroupID:        cfg.TaskGroupID,
		Topic:          cfg.TaskTopic,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		CommitInterval: time.Second,
	})

	processor := processors.NewTaskProcessor(cfg, logger, db)

	return &Worker{
		config:    cfg,
		logger:    logger,
		reader:    reader,
		processor: processor,
	}
}

func (w *Worker) Start() {
	w.logger.Info("Worker started, listening for tasks...")

	for {
		message, err := w.reader.ReadMessage(context.Background())
		if err != nil {
			w.logger.Error("Failed to read message: %v", err)
			return
		}

		w.logger.Debug("Received task: %s", string(message.Value))

		var task queue.Task
		if err := json.Unmarshal(message.Value, &task); err != nil {
			w.logger.Error("Failed to parse task: %v", err)
			continue
		}

		// One batch at a time; a 5-minute ceiling mirrors the upstream
		// task timeout.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		if err := w.processor.Process(ctx, &task); err != nil {
			w.logger.Error("Failed to process task %s: %v", task.Type, err)
		} else {
			w.logger.Debug("Task %s processed", task.Type)
		}
		cancel()
	}
}

func (w *Worker) Stop() {
	w.logger.Info("Stopping worker...")
	w.reader.Close()
}
