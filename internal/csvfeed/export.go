package csvfeed

import (
	"encoding/csv"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"ecomai/internal/models"
	"ecomai/internal/shopify"
)

// Headers is the Shopify product CSV column set, in export order. The two
// trailing columns are internal: they carry variant/image identity through
// an export/import round trip.
var Headers = []string{
	"Handle",
	"Title",
	"Body (HTML)",
	"Vendor",
	"Product Category",
	"Type",
	"Tags",
	"Published",
	"Option1 Name",
	"Option1 Value",
	"Option2 Name",
	"Option2 Value",
	"Option3 Name",
	"Option3 Value",
	"Variant SKU",
	"Variant Grams",
	"Variant Inventory Tracker",
	"Variant Inventory Policy",
	"Variant Inventory Qty",
	"Variant Fulfillment Service",
	"Variant Price",
	"Variant Compare At Price",
	"Variant Requires Shipping",
	"Variant Taxable",
	"Variant Barcode",
	"Image Src",
	"Image Position",
	"Image Alt Text",
	"SEO Title",
	"SEO Description",
	"Google Shopping / Google Product Category",
	"Google Shopping / Gender",
	"Google Shopping / Age Group",
	"Google Shopping / Condition",
	"Google Shopping / Custom Product",
	"Google Shopping / Custom Label 0",
	"Google Shopping / Custom Label 1",
	"Google Shopping / Custom Label 2",
	"Google Shopping / Custom Label 3",
	"Google Shopping / Custom Label 4",
	"Variant Weight Unit",
	"Status",
	"Variant Shopify ID",
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Export renders product rows as a Shopify-importable CSV, one line per
// variant; product-level columns are only filled on each product's first
// line.
func Export(products []models.Product) (string, error) {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	if err := w.Write(Headers); err != nil {
		return "", err
	}

	for i := range products {
		var raw shopify.Payload
		if err := json.Unmarshal(products[i].ProductData, &raw); err != nil || raw.Product == nil {
			continue
		}
		if err := writeProduct(w, raw.Product); err != nil {
			return "", err
		}
	}

	w.Flush()
	return sb.String(), w.Error()
}

func writeProduct(w *csv.Writer, product *shopify.Product) error {
	optionNames := make([]string, 3)
	for i, opt := range product.Options {
		if i < 3 {
			optionNames[i] = opt.Name
		}
	}

	defaultImage := ""
	if product.Image != nil {
		defaultImage = product.Image.Src
	} else if len(product.Images) > 0 {
		defaultImage = product.Images[0].Src
	}

	for i := range product.Variants {
		variant := &product.Variants[i]
		first := i == 0

		row := make(map[string]string, len(Headers))
		row["Handle"] = product.Handle
		if first {
			row["Title"] = product.Title
			row["Body (HTML)"] = product.BodyHTML
			row["Vendor"] = product.Vendor
			row["Product Category"] = product.GCategory
			row["Type"] = product.ProductType
			row["Tags"] = product.Tags
			row["Published"] = "TRUE"
			row["Option1 Name"] = optionNames[0]
			row["Option2 Name"] = optionNames[1]
			row["Option3 Name"] = optionNames[2]
			row["Image Src"] = imageSrc(product, i, defaultImage)
			row["Image Position"] = "1"
			row["SEO Title"] = seoTitle(product)
			row["SEO Description"] = seoDescription(product)
			row["Google Shopping / Google Product Category"] = product.GCategory
			row["Google Shopping / Gender"] = product.GGender
			row["Google Shopping / Age Group"] = product.GAgeGroup
			row["Google Shopping / Condition"] = product.GCondition
			row["Google Shopping / Custom Product"] = product.GCustomProduct
			row["Google Shopping / Custom Label 0"] = product.GLabel0
			row["Google Shopping / Custom Label 1"] = product.GLabel1
			row["Google Shopping / Custom Label 2"] = product.GLabel2
			row["Google Shopping / Custom Label 3"] = product.GLabel3
			row["Google Shopping / Custom Label 4"] = product.GLabel4
		}
		row["Option1 Value"] = deref(variant.Option1)
		row["Option2 Value"] = deref(variant.Option2)
		row["Option3 Value"] = deref(variant.Option3)
		row["Variant SKU"] = variant.Sku
		row["Variant Grams"] = strconv.Itoa(variant.Grams)
		row["Variant Inventory Tracker"] = deref(variant.InventoryManagement)
		row["Variant Inventory Policy"] = policyOrDefault(variant.InventoryPolicy)
		row["Variant Inventory Qty"] = strconv.Itoa(variant.InventoryQuantity)
		row["Variant Fulfillment Service"] = "manual"
		row["Variant Price"] = priceOrZero(variant.Price)
		if variant.CompareAtPrice != nil {
			row["Variant Compare At Price"] = priceOrZero(*variant.CompareAtPrice)
		}
		row["Variant Requires Shipping"] = boolCell(variant.RequiresShipping)
		row["Variant Taxable"] = boolCell(variant.Taxable)
		row["Variant Barcode"] = deref(variant.Barcode)
		row["Variant Weight Unit"] = weightUnitOrDefault(variant.WeightUnit)
		row["Status"] = statusOrDefault(product.Status)
		row["Variant Shopify ID"] = variantID(product.Handle, variant.ID, i)

		record := make([]string, len(Headers))
		for j, header := range Headers {
			record[j] = row[header]
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func seoTitle(product *shopify.Product) string {
	if product.SEOTitle != "" {
		return product.SEOTitle
	}
	return product.Title
}

// seoDescription strips markup from the body and caps it at the 160
// characters search engines display.
func seoDescription(product *shopify.Product) string {
	if product.SEODescription != "" {
		return product.SEODescription
	}
	text := htmlTagRe.ReplaceAllString(product.BodyHTML, "")
	if len(text) > 160 {
		text = text[:160]
	}
	return text
}

func imageSrc(product *shopify.Product, index int, fallback string) string {
	if index < len(product.Images) {
		return product.Images[index].Src
	}
	return fallback
}

func variantID(handle string, id int64, index int) string {
	if id != 0 {
		return strconv.FormatInt(id, 10)
	}
	return handle + "-" + strconv.Itoa(index)
}

func priceOrZero(s string) string {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func policyOrDefault(policy string) string {
	if policy == "" {
		return "deny"
	}
	return policy
}

func weightUnitOrDefault(unit string) string {
	if unit == "" {
		return "kg"
	}
	return unit
}

func statusOrDefault(status string) string {
	if status == "" {
		return "active"
	}
	return status
}

func boolCell(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
