package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"ecomai/internal/logger"
	"ecomai/internal/optimizer"
)

// Task types handled by the worker.
const (
	TaskTypeBulkEditBatch = "bulk_edit.batch"
	TaskTypeOrderSync     = "orders.sync"
	TaskTypeRankRisers    = "tracker.rank_risers"
)

// Task is the envelope published to the task topic, one message per batch.
type Task struct {
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// BulkEditBatchPayload carries one slice of a bulk edit: up to BatchSize
// product IDs plus the shared settings.
type BulkEditBatchPayload struct {
	ProductIDs    []string                    `json:"product_ids"`
	UserID        string                      `json:"user_id"`
	BulkEditID    string                      `json:"bulkeditid"`
	StartIndex    int                         `json:"startIndex"`
	TotalProducts int                         `json:"total_products"`
	StoreID       string                      `json:"store_id,omitempty"`
	Settings      *optimizer.BulkEditSettings `json:"settings"`
}

// OrderSyncPayload asks the worker to pull orders for one store.
type OrderSyncPayload struct {
	StoreID  string `json:"store_id"`
	FromDate string `json:"from_date,omitempty"`
	ToDate   string `json:"to_date,omitempty"`
}

// RankRisersPayload scopes a rank recomputation to one tracked store.
type RankRisersPayload struct {
	StoreID string `json:"store_id"`
	UserID  string `json:"user_id"`
}

// Producer publishes tasks to the worker topic.
type Producer struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewProducer(brokers, topic string, logger *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
	}

	return &Producer{
		writer: writer,
		logger: logger,
	}
}

// Publish marshals the payload into a task envelope and writes it keyed by
// key, so batches of one bulk edit land on one partition in order.
func (p *Producer) Publish(ctx context.Context, taskType, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := Task{
		Type:      taskType,
		Payload:   data,
		Timestamp: time.Now().UTC(),
	}

	value, err := json.Marshal(task)
	if err != nil {
		return err
	}

	p.logger.Debug("Publishing task %s (key=%s)", taskType, key)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
