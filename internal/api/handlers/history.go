package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecomai/internal/logger"
	"ecomai/internal/models"
)

type HistoryHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewHistoryHandler(db *gorm.DB, logger *logger.Logger) *HistoryHandler {
	return &HistoryHandler{db: db, logger: logger}
}

func (h *HistoryHandler) List(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var items []models.HistoryItem
	var total int64

	query := h.db.Model(&models.HistoryItem{}).Where("user_id = ?", userID)
	query.Count(&total)

	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&items).Error
	if err != nil {
		h.logger.Error("Failed to fetch history: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *HistoryHandler) Get(c *gin.Context) {
	userID := c.Query("user_id")
	bulkEditID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	var item models.HistoryItem
	err := h.db.Where("user_id = ? AND bulk_edit_id = ?", userID, bulkEditID).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "History item not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to fetch history item: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history item"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}
