package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// History item statuses
const (
	HistoryStatusProcessing = "Processing"
	HistoryStatusCompleted  = "Completed"
	HistoryStatusFailed     = "Failed"
)

// HistoryItem tracks one bulk edit from enqueue to completion. Rows are
// keyed (user_id, bulk_edit_id); workers bump ProductsProcessed as batches
// land and flip Status once the count reaches TotalProducts.
type HistoryItem struct {
	ID                string    `json:"id" gorm:"type:uuid;primary_key"`
	UserID            string    `json:"user_id" gorm:"not null;index:idx_history_user_edit,unique"`
	BulkEditID        string    `json:"bulk_edit_id" gorm:"not null;index:idx_history_user_edit,unique"`
	Status            string    `json:"status" gorm:"default:Processing"`
	Type              string    `json:"type"`
	Name              string    `json:"name"`
	TotalProducts     int       `json:"total_products"`
	ProductsProcessed int       `json:"products_processed"`
	Tokens            int       `json:"tokens"`
	OutputFile        string    `json:"output_file"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (h *HistoryItem) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}
