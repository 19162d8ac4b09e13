package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Store is a connected Shopify shop whose orders and ad spend get synced.
type Store struct {
	ID            string     `json:"id" gorm:"type:uuid;primary_key"`
	UserID        string     `json:"user_id" gorm:"not null;index"`
	Domain        string     `json:"domain" gorm:"unique;not null"`
	AccessToken   string     `json:"-" gorm:"not null"`
	Currency      string     `json:"currency"`
	Language      *string    `json:"language"`
	LastOrderSync *time.Time `json:"last_order_sync"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// Order is one synced Shopify order, unique per (store, external id) so the
// sync can be re-run over overlapping date windows.
type Order struct {
	ID              string     `json:"id" gorm:"type:uuid;primary_key"`
	StoreID         string     `json:"store_id" gorm:"not null;index:idx_orders_store_ext,unique"`
	ExternalID      int64      `json:"external_id" gorm:"not null;index:idx_orders_store_ext,unique"`
	Name            string     `json:"name"`
	TotalPrice      float64    `json:"total_price" gorm:"type:decimal(10,2)"`
	Currency        string     `json:"currency"`
	FinancialStatus string     `json:"financial_status"`
	ProcessedAt     *time.Time `json:"processed_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// AdSpend is one day of advertising spend for a store and source.
type AdSpend struct {
	ID        string    `json:"id" gorm:"type:uuid;primary_key"`
	StoreID   string    `json:"store_id" gorm:"not null;index:idx_adspend_store_date,unique"`
	Date      string    `json:"date" gorm:"not null;index:idx_adspend_store_date,unique"`
	Source    string    `json:"source" gorm:"not null;index:idx_adspend_store_date,unique"`
	Amount    float64   `json:"amount" gorm:"type:decimal(10,2)"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *AdSpend) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}
