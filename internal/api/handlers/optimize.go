package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/optimizer"
	"ecomai/internal/queue"
)

// TaskPublisher is the slice of the queue producer the handlers use.
type TaskPublisher interface {
	Publish(ctx context.Context, taskType, key string, payload interface{}) error
}

type OptimizeHandler struct {
	db        *gorm.DB
	logger    *logger.Logger
	producer  TaskPublisher
	batchSize int
}

func NewOptimizeHandler(db *gorm.DB, logger *logger.Logger, producer TaskPublisher, batchSize int) *OptimizeHandler {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &OptimizeHandler{
		db:        db,
		logger:    logger,
		producer:  producer,
		batchSize: batchSize,
	}
}

type optimizeRequest struct {
	ProductIDs []string                    `json:"product_ids" binding:"required"`
	User       optimizeUser                `json:"user" binding:"required"`
	Settings   *optimizer.BulkEditSettings `json:"settings" binding:"required"`
}

type optimizeUser struct {
	UID     string `json:"uid" binding:"required"`
	StoreID string `json:"store_id"`
}

// Batch validates a bulk edit request, opens a history item and fans the
// product IDs out to the task topic in batches.
func (h *OptimizeHandler) Batch(c *gin.Context) {
	var req optimizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.ProductIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_ids must not be empty"})
		return
	}

	bulkEditID := strconv.FormatInt(time.Now().UnixMilli(), 10)

	name := "AI-edit"
	if req.Settings.General != nil && req.Settings.General.Name != "" {
		name = req.Settings.General.Name
	}

	item := models.HistoryItem{
		UserID:        req.User.UID,
		BulkEditID:    bulkEditID,
		Status:        models.HistoryStatusProcessing,
		Type:          "AI edit",
		Name:          name,
		TotalProducts: len(req.ProductIDs),
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "bulk_edit_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "total_products", "products_processed", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		h.logger.Error("Failed to create history item: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create history item"})
		return
	}

	batches := 0
	for start := 0; start < len(req.ProductIDs); start += h.batchSize {
		end := start + h.batchSize
		if end > len(req.ProductIDs) {
			end = len(req.ProductIDs)
		}

		payload := queue.BulkEditBatchPayload{
			ProductIDs:    req.ProductIDs[start:end],
			UserID:        req.User.UID,
			BulkEditID:    bulkEditID,
			StartIndex:    start,
			TotalProducts: len(req.ProductIDs),
			StoreID:       req.User.StoreID,
			Settings:      req.Settings,
		}
		if err := h.producer.Publish(c.Request.Context(), queue.TaskTypeBulkEditBatch, bulkEditID, payload); err != nil {
			h.logger.Error("Failed to enqueue batch %d of bulk edit %s: %v", batches, bulkEditID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue batch"})
			return
		}
		batches++
	}

	h.logger.Info("Bulk edit %s: %d products queued in %d batches", bulkEditID, len(req.ProductIDs), batches)
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"bulkeditid": bulkEditID,
		"batches":    batches,
	})
}
