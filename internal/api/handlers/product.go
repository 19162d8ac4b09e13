package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ecomai/internal/csvfeed"
	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/shopify"
)

type ProductHandler struct {
	db     *gorm.DB
	logger *logger.Logger
}

func NewProductHandler(db *gorm.DB, logger *logger.Logger) *ProductHandler {
	return &ProductHandler{db: db, logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
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

	query := h.db.Model(&models.Product{}).Where("user_id = ?", userID)
	if search := c.Query("search"); search != "" {
		// LOWER/LIKE instead of ILIKE so the sqlite path works too.
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}
	if editType := c.Query("edit_type"); editType != "" {
		query = query.Where("edit_type = ?", editType)
	}
	if importID := c.Query("import_id"); importID != "" {
		query = query.Where("import_id = ?", importID)
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		h.logger.Error("Failed to fetch products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": products,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

func (h *ProductHandler) Get(c *gin.Context) {
	var product models.Product
	err := h.db.Where("id = ?", c.Param("id")).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	if err != nil {
		h.logger.Error("Failed to fetch product: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": product})
}

type importRequest struct {
	UserID   string            `json:"user_id" binding:"required"`
	ImportID string            `json:"import_id"`
	StoreID  string            `json:"store_id"`
	Products []shopify.Payload `json:"products" binding:"required"`
}

// Import stores raw Shopify product payloads as catalog rows.
func (h *ProductHandler) Import(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Products) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "products must not be empty"})
		return
	}

	rows := make([]models.Product, 0, len(req.Products))
	for _, payload := range req.Products {
		if payload.Product == nil {
			continue
		}
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}

		row := models.Product{
			UserID:      req.UserID,
			Title:       payload.Product.Title,
			SourceType:  "Import",
			ProductData: data,
		}
		if req.ImportID != "" {
			row.ImportID = &req.ImportID
		}
		if req.StoreID != "" {
			row.StoreID = &req.StoreID
		}
		if payload.Product.SourceDomain != "" {
			row.SourceDomain = &payload.Product.SourceDomain
		}
		if len(payload.Product.Variants) > 0 {
			row.Price, _ = strconv.ParseFloat(payload.Product.Variants[0].Price, 64)
		}
		if payload.Product.Image != nil {
			row.Image = payload.Product.Image.Src
		} else if len(payload.Product.Images) > 0 {
			row.Image = payload.Product.Images[0].Src
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no usable products in request"})
		return
	}

	if err := h.db.CreateInBatches(rows, 100).Error; err != nil {
		h.logger.Error("Failed to import products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imported": len(rows)})
}

// ImportCSV parses a Shopify product CSV from the request body and stores
// the resulting products.
func (h *ProductHandler) ImportCSV(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	payloads, err := csvfeed.Import(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(payloads) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no products found in CSV"})
		return
	}

	importID := c.Query("import_id")
	rows := make([]models.Product, 0, len(payloads))
	for _, payload := range payloads {
		data, err := json.Marshal(payload)
		if err != nil {
			continue
		}
		row := models.Product{
			UserID:      userID,
			Title:       payload.Product.Title,
			SourceType:  "Import",
			ProductData: data,
		}
		if importID != "" {
			row.ImportID = &importID
		}
		if len(payload.Product.Variants) > 0 {
			row.Price, _ = strconv.ParseFloat(payload.Product.Variants[0].Price, 64)
		}
		if payload.Product.Image != nil {
			row.Image = payload.Product.Image.Src
		}
		rows = append(rows, row)
	}

	if err := h.db.CreateInBatches(rows, 100).Error; err != nil {
		h.logger.Error("Failed to import CSV products: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "imported": len(rows)})
}

// ExportCSV renders products matching the query as a Shopify product CSV.
func (h *ProductHandler) ExportCSV(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	query := h.db.Model(&models.Product{}).Where("user_id = ?", userID)
	if editType := c.Query("edit_type"); editType != "" {
		query = query.Where("edit_type = ?", editType)
	}
	if importID := c.Query("import_id"); importID != "" {
		query = query.Where("import_id = ?", importID)
	}

	var products []models.Product
	if err := query.Order("created_at DESC").Find(&products).Error; err != nil {
		h.logger.Error("Failed to fetch products for export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	out, err := csvfeed.Export(products)
	if err != nil {
		h.logger.Error("Failed to build CSV export: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products.csv"`)
	c.Data(http.StatusOK, "text/csv", []byte(out))
}
