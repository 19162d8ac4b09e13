package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product is one catalog row. ProductData carries the full Shopify-shaped
// payload; the scalar columns are denormalized for listing and ranking.
type Product struct {
	ID                string          `json:"id" gorm:"type:uuid;primary_key"`
	UserID            string          `json:"user_id" gorm:"not null;index"`
	Title             string          `json:"title" gorm:"not null"`
	Price             float64         `json:"price" gorm:"type:decimal(10,2)"`
	Image             string          `json:"image"`
	SourceType        string          `json:"source_type" gorm:"default:Import"`
	SourcePlatform    *string         `json:"source_platform"`
	SourceCountry     *string         `json:"source_country"`
	SourceDomain      *string         `json:"source_domain"`
	StoreID           *string         `json:"store_id"`
	InAppTags         pq.StringArray  `json:"in_app_tags" gorm:"type:text[]"`
	Language          *string         `json:"language"`
	Ranking           *int            `json:"ranking"`
	EditType          string          `json:"edit_type"`
	ImportID          *string         `json:"import_id" gorm:"index"`
	OriginalProductID *string         `json:"original_product_id"`
	ProductData       json.RawMessage `json:"product_data" gorm:"type:jsonb"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
