package batch

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"gorm.io/gorm"

	"ecomai/internal/ai"
	"ecomai/internal/logger"
	"ecomai/internal/models"
	"ecomai/internal/optimizer"
	"ecomai/internal/queue"
	"ecomai/internal/shopify"
)

// Processor runs one bulk edit batch: fetch the product rows, resolve every
// configured edit, normalize the variants and insert the edited copies as
// new rows, reporting progress on the history item as it goes.
type Processor struct {
	db               *gorm.DB
	logger           *logger.Logger
	completion       ai.CompletionService
	normalizer       *optimizer.Normalizer
	rng              *rand.Rand
	progressInterval int
}

func New(db *gorm.DB, logger *logger.Logger, completion ai.CompletionService, progressInterval int) *Processor {
	if progressInterval <= 0 {
		progressInterval = 5
	}
	return &Processor{
		db:               db,
		logger:           logger,
		completion:       completion,
		normalizer:       optimizer.NewNormalizer(),
		rng:              rand.New(rand.NewSource(time.Now().UnixNano())),
		progressInterval: progressInterval,
	}
}

func (p *Processor) Process(ctx context.Context, payload *queue.BulkEditBatchPayload) error {
	var products []models.Product
	if err := p.db.Where("id IN ?", payload.ProductIDs).Find(&products).Error; err != nil {
		return err
	}

	if len(products) == 0 {
		p.logger.Warn("Bulk edit %s: no products found for batch starting at %d", payload.BulkEditID, payload.StartIndex)
		return nil
	}

	settings := payload.Settings
	if settings == nil {
		settings = &optimizer.BulkEditSettings{}
	}

	created := 0
	lastReported := 0

	for i := range products {
		original := &products[i]

		var raw shopify.Payload
		if err := json.Unmarshal(original.ProductData, &raw); err != nil || raw.Product == nil || raw.Product.Title == "" {
			p.logger.Warn("Skipping product %s: no usable product_data", original.ID)
			continue
		}
		product := raw.Product

		if err := p.editProduct(ctx, product, settings); err != nil {
			return err
		}

		raw.Product = product
		if err := p.insertEditedCopy(original, &raw, payload, settings); err != nil {
			return err
		}
		created++

		if created-lastReported >= p.progressInterval {
			if err := p.reportProgress(payload, created-lastReported); err != nil {
				p.logger.Error("Bulk edit %s: progress update failed: %v", payload.BulkEditID, err)
			} else {
				lastReported = created
			}
		}
	}

	// Flush whatever the interval left unreported. This runs after the loop
	// so a batch whose tail rows were skipped still lands its count.
	if created > lastReported {
		if err := p.reportProgress(payload, created-lastReported); err != nil {
			p.logger.Error("Bulk edit %s: progress update failed: %v", payload.BulkEditID, err)
		}
	}

	return p.finalizeIfDone(payload)
}

// editProduct applies the full settings tree to one product payload.
// Completion failures on a single field are logged and skipped so one flaky
// call does not sink the batch; only context cancellation aborts.
func (p *Processor) editProduct(ctx context.Context, product *shopify.Product, settings *optimizer.BulkEditSettings) error {
	tctx := optimizer.BuildContext(product, time.Now())

	optimizer.ApplyOrganizationSettings(product, settings.Organization)

	// Per-variant SKU and barcode edits.
	if inv := settings.InventoryPrices; inv != nil && (inv.SKU != nil || inv.Barcode != nil) {
		for i := range product.Variants {
			if sku := p.resolveField(ctx, "sku", inv.SKU, tctx); sku != "" {
				product.Variants[i].Sku = sku
			}
			if barcode := p.resolveField(ctx, "barcode", inv.Barcode, tctx); barcode != "" {
				product.Variants[i].Barcode = &barcode
			}
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}

	// Copywriting fields. Each result feeds the context so later edits can
	// reference the new values.
	if cw := settings.Copywriting; cw != nil {
		if title := p.resolveField(ctx, "title", cw.Title, tctx); title != "" {
			product.Title = title
			tctx["title"] = title
		}
		if desc := p.resolveField(ctx, "description", cw.Description, tctx); desc != "" {
			product.BodyHTML = desc
			tctx["description"] = desc
			tctx["body_html"] = desc
		}
		if seoTitle := p.resolveField(ctx, "seo_title", cw.SEOTitle, tctx); seoTitle != "" {
			product.SEOTitle = seoTitle
			tctx["seo_title"] = seoTitle
		}
		if seoDesc := p.resolveField(ctx, "seo_description", cw.SEODescription, tctx); seoDesc != "" {
			product.SEODescription = seoDesc
			tctx["seo_description"] = seoDesc
		}
		if handle := p.resolveField(ctx, "handle", cw.Handle, tctx); handle != "" {
			product.Handle = handle
		} else if cw.Title != nil || cw.SEOTitle != nil {
			// Retitled products get a fresh handle from the best title.
			base := product.SEOTitle
			if base == "" {
				base = product.Title
			}
			if slug := optimizer.Slugify(base); slug != "" {
				product.Handle = slug
			}
		}
	}

	// Google Shopping fields.
	if g := settings.Google; g != nil {
		if category := p.resolveField(ctx, "g_category", g.ProductCategory, tctx); category != "" {
			product.GCategory = category
		}
		if gender := p.resolveField(ctx, "g_gender", g.Gender, tctx); gender != "" {
			product.GGender = gender
		}
		optimizer.ApplyGoogleStatics(product, g)
		for i, labelEdit := range g.CustomLabels {
			if label := p.resolveField(ctx, "g_label", labelEdit, tctx); label != "" {
				optimizer.SetCustomLabel(product, i, label)
			}
		}
	}

	if gen := settings.General; gen != nil {
		if gender := p.resolveField(ctx, "gender", gen.Gender, tctx); gender != "" {
			product.Gender = gender
		}
	}

	// Custom metafields.
	for _, mf := range settings.CustomMetafields {
		if mf == nil {
			continue
		}
		if value := p.resolveField(ctx, "metafield:"+mf.Key, mf.Value, tctx); value != "" {
			product.Metafields = append(product.Metafields, shopify.Metafield{
				Namespace: mf.Namespace,
				Key:       mf.Key,
				Type:      mf.Type,
				Value:     value,
			})
		}
	}

	// Inventory and pricing normalization, per variant.
	if inv := settings.InventoryPrices; inv != nil {
		for i := range product.Variants {
			p.normalizer.Apply(&product.Variants[i], inv)
		}
	}

	// Timestamped SKU generation replaces all variant SKUs at once.
	if org := settings.Organization; org != nil && org.GenerateSKUs && org.Vendor != "" {
		base := optimizer.GenerateSKUBase(org.Vendor, time.Now(), p.rng)
		optimizer.AssignSKUs(product, base)
	}

	return ctx.Err()
}

// resolveField runs one edit descriptor, trading a failed completion for a
// log line and an unchanged field.
func (p *Processor) resolveField(ctx context.Context, field string, edit *optimizer.EditDescriptor, tctx optimizer.Context) string {
	value, err := optimizer.ApplyEdit(ctx, edit, tctx, p.completion)
	if err != nil {
		p.logger.Error("Edit failed for field %s: %v", field, err)
		return ""
	}
	return value
}

func (p *Processor) insertEditedCopy(original *models.Product, raw *shopify.Payload, payload *queue.BulkEditBatchPayload, settings *optimizer.BulkEditSettings) error {
	product := raw.Product

	data, err := json.Marshal(raw)
	if err != nil {
		return err
	}

	price := 0.0
	if len(product.Variants) > 0 {
		price, _ = strconv.ParseFloat(product.Variants[0].Price, 64)
	}

	image := ""
	if product.Image != nil {
		image = product.Image.Src
	} else if len(product.Images) > 0 {
		image = product.Images[0].Src
	}

	copy := models.Product{
		UserID:            payload.UserID,
		Title:             product.Title,
		Price:             price,
		Image:             image,
		SourceType:        original.SourceType,
		SourcePlatform:    original.SourcePlatform,
		SourceCountry:     original.SourceCountry,
		SourceDomain:      original.SourceDomain,
		EditType:          "ai-edit",
		ImportID:          &payload.BulkEditID,
		OriginalProductID: &original.ID,
		ProductData:       data,
	}
	if payload.StoreID != "" {
		copy.StoreID = &payload.StoreID
	}
	if gen := settings.General; gen != nil {
		copy.InAppTags = gen.InAppTags
		if gen.Language != "" {
			lang := gen.Language
			copy.Language = &lang
		}
	}

	return p.db.Create(&copy).Error
}

func (p *Processor) reportProgress(payload *queue.BulkEditBatchPayload, increment int) error {
	if increment <= 0 {
		return nil
	}
	return p.db.Model(&models.HistoryItem{}).
		Where("user_id = ? AND bulk_edit_id = ?", payload.UserID, payload.BulkEditID).
		UpdateColumn("products_processed", gorm.Expr("products_processed + ?", increment)).
		Error
}

// finalizeIfDone flips the history item to Completed once every batch of the
// bulk edit has reported in.
func (p *Processor) finalizeIfDone(payload *queue.BulkEditBatchPayload) error {
	var item models.HistoryItem
	err := p.db.Where("user_id = ? AND bulk_edit_id = ?", payload.UserID, payload.BulkEditID).
		First(&item).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return err
	}

	if item.TotalProducts > 0 && item.ProductsProcessed >= item.TotalProducts {
		p.logger.Info("Bulk edit %s completed (%d products)", payload.BulkEditID, item.ProductsProcessed)
		return p.db.Model(&models.HistoryItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{"status": models.HistoryStatusCompleted}).
			Error
	}
	return nil
}
