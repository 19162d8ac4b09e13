package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/queue"
)

type StoreHandler struct {
	db       *gorm.DB
	logger   *logger.Logger
	producer TaskPublisher
}

func NewStoreHandler(db *gorm.DB, logger *logger.Logger, producer TaskPublisher) *StoreHandler {
	return &StoreHandler{db: db, logger: logger, producer: producer}
}

type createStoreRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	Domain      string `json:"domain" binding:"required"`
	AccessToken string `json:"access_token" binding:"required"`
	Currency    string `json:"currency"`
}

func (h *StoreHandler) Create(c *gin.Context) {
	var req createStoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	store := models.Store{
		UserID:      req.UserID,
		Domain:      req.Domain,
		AccessToken: req.AccessToken,
		Currency:    req.Currency,
	}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "domain"}},
		DoUpdates: clause.AssignmentColumns([]string{"access_token", "currency", "updated_at"}),
	}).Create(&store).Error
	if err != nil {
		h.logger.Error("Failed to save store: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save store"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": store})
}

func (h *StoreHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	var stores []models.Store
	if err := h.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&stores).Error; err != nil {
		h.logger.Error("Failed to fetch stores: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stores})
}

type syncOrdersRequest struct {
	FromDate string `json:"from_date"`
	ToDate   string `json:"to_date"`
}

// SyncOrders enqueues an order sync task for the store.
func (h *StoreHandler) SyncOrders(c *gin.Context) {
	storeID := c.Param("id")

	// An empty body is fine, the worker defaults the date window.
	var req syncOrdersRequest
	_ = c.ShouldBindJSON(&req)

	var store models.Store
	if err := h.db.Where("id = ?", storeID).First(&store).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		h.logger.Error("Failed to fetch store: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch store"})
		return
	}

	payload := queue.OrderSyncPayload{
		StoreID:  store.ID,
		FromDate: req.FromDate,
		ToDate:   req.ToDate,
	}
	if err := h.producer.Publish(c.Request.Context(), queue.TaskTypeOrderSync, store.ID, payload); err != nil {
		h.logger.Error("Failed to enqueue order sync for store %s: %v", store.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue order sync"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "store_id": store.ID})
}

type adSpendRequest struct {
	Entries []adSpendEntry `json:"entries" binding:"required"`
}

type adSpendEntry struct {
	Date     string  `json:"date" binding:"required"`
	Source   string  `json:"source" binding:"required"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// UpsertAdSpend records daily ad spend rows, replacing amounts for days
// already recorded.
func (h *StoreHandler) UpsertAdSpend(c *gin.Context) {
	storeID := c.Param("id")

	var req adSpendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Entries) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "entries must not be empty"})
		return
	}

	rows := make([]models.AdSpend, 0, len(req.Entries))
	for _, entry := range req.Entries {
		rows = append(rows, models.AdSpend{
			StoreID:  storeID,
			Date:     entry.Date,
			Source:   entry.Source,
			Amount:   entry.Amount,
			Currency: entry.Currency,
		})
	}

	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "date"}, {Name: "source"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "currency", "updated_at"}),
	}).CreateInBatches(rows, 100).Error
	if err != nil {
		h.logger.Error("Failed to upsert ad spend: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save ad spend"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "saved": len(rows)})
}

// RankRisers enqueues a rank riser detection pass for the store.
func (h *StoreHandler) RankRisers(c *gin.Context) {
	storeID := c.Param("id")
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	payload := queue.RankRisersPayload{StoreID: storeID, UserID: userID}
	if err := h.producer.Publish(c.Request.Context(), queue.TaskTypeRankRisers, storeID, payload); err != nil {
		h.logger.Error("Failed to enqueue rank risers for store %s: %v", storeID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to enqueue rank risers"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "store_id": storeID})
}
