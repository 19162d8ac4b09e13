package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackedData is one product's rank inside one crawl snapshot of a
// competitor store. Snapshots share a SnapshotID; rank comparisons run
// between the two most recent snapshots of a store.
type TrackedData struct {
	ID            string    `json:"id" gorm:"type:uuid;primary_key"`
	StoreID       string    `json:"store_id" gorm:"not null;index"`
	SnapshotID    string    `json:"snapshot_id" gorm:"not null;index"`
	Handle        string    `json:"handle" gorm:"not null"`
	Title         string    `json:"title"`
	ProductID     *string   `json:"product_id"`
	CurrentRank   *int      `json:"current_rank"`
	SourceDomain  *string   `json:"source_domain"`
	SourceCountry *string   `json:"source_country"`
	Timestamp     time.Time `json:"timestamp"`
	CreatedAt     time.Time `json:"created_at"`
}

func (t *TrackedData) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TrackedWinner is a product whose rank improved between snapshots. Each
// (store, handle) pair is recorded once; Processed marks winners already
// imported as products.
type TrackedWinner struct {
	ID            string    `json:"id" gorm:"type:uuid;primary_key"`
	UserID        string    `json:"user_id" gorm:"not null;index"`
	StoreID       string    `json:"store_id" gorm:"not null;index"`
	Handle        string    `json:"handle" gorm:"not null"`
	Title         string    `json:"title"`
	ProductID     *string   `json:"product_id"`
	StartRank     int       `json:"start_rank"`
	CurrentRank   int       `json:"current_rank"`
	SourceDomain  *string   `json:"source_domain"`
	SourceCountry *string   `json:"source_country"`
	Status        string    `json:"status" gorm:"default:winner"`
	Processed     bool      `json:"processed" gorm:"default:false"`
	Timestamp     time.Time `json:"timestamp"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (t *TrackedWinner) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}
