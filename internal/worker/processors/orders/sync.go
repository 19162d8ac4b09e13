package orders

import (
	"context"
	"strconv"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/queue"
	"ecomai/internal/shopify"
)

const upsertBatchSize = 200

// ClientFactory builds a Shopify client for a store row. Indirection keeps
// the processor testable without real HTTP.
type ClientFactory func(store *models.Store) OrderFetcher

type OrderFetcher interface {
	GetAllOrders(fromDate, toDate string) ([]shopify.Order, error)
}

// Syncer pulls a store's orders from Shopify and upserts them, 200 rows at
// a time, keyed (store_id, external_id) so re-syncs of overlapping windows
// are safe.
type Syncer struct {
	db      *gorm.DB
	logger  *logger.Logger
	clients ClientFactory
}

func New(db *gorm.DB, logger *logger.Logger, clients ClientFactory) *Syncer {
	if clients == nil {
		clients = func(store *models.Store) OrderFetcher {
			return shopify.NewClient(store.Domain, store.AccessToken, logger)
		}
	}
	return &Syncer{db: db, logger: logger, clients: clients}
}

func (s *Syncer) Process(ctx context.Context, payload *queue.OrderSyncPayload) error {
	var store models.Store
	if err := s.db.First(&store, "id = ?", payload.StoreID).Error; err != nil {
		return err
	}

	fromDate := payload.FromDate
	if fromDate == "" {
		// Default window: the last 60 days.
		fromDate = time.Now().AddDate(0, 0, -60).Format(time.RFC3339)
	}

	fetched, err := s.clients(&store).GetAllOrders(fromDate, payload.ToDate)
	if err != nil {
		return err
	}

	rows := make([]models.Order, 0, len(fetched))
	for _, o := range fetched {
		total, _ := strconv.ParseFloat(o.TotalPrice, 64)
		row := models.Order{
			StoreID:         store.ID,
			ExternalID:      o.ID,
			Name:            o.Name,
			TotalPrice:      total,
			Currency:        o.Currency,
			FinancialStatus: o.FinancialStatus,
		}
		if o.ProcessedAt != "" {
			if t, err := time.Parse(time.RFC3339, o.ProcessedAt); err == nil {
				row.ProcessedAt = &t
			}
		}
		rows = append(rows, row)
	}

	if len(rows) > 0 {
		err = s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "external_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"total_price", "financial_status", "updated_at"}),
		}).CreateInBatches(rows, upsertBatchSize).Error
		if err != nil {
			return err
		}
	}

	now := time.Now().UTC()
	if err := s.db.Model(&store).Update("last_order_sync", &now).Error; err != nil {
		return err
	}

	s.logger.Info("Synced %d orders for store %s", len(rows), store.Domain)
	return nil
}
