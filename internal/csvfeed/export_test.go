package csvfeed

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomai/internal/models"
	"ecomai/internal/shopify"
)

func productRow(t *testing.T, payload shopify.Payload) models.Product {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return models.Product{UserID: "u1", Title: payload.Product.Title, ProductData: data}
}

func strPtr(s string) *string { return &s }

func testPayload() shopify.Payload {
	return shopify.Payload{Product: &shopify.Product{
		Title:    "Red Mug",
		BodyHTML: "<p>A sturdy mug for the office.</p>",
		Vendor:   "Acme",
		Handle:   "red-mug",
		Tags:     "kitchen, gifts",
		Status:   "active",
		Options: []shopify.Option{
			{Name: "Size", Position: 1, Values: []string{"Small", "Large"}},
		},
		Variants: []shopify.Variant{
			{
				Price:             "12.5",
				Sku:               "AC-1",
				Option1:           strPtr("Small"),
				InventoryPolicy:   "deny",
				InventoryQuantity: 3,
				CompareAtPrice:    strPtr("19.99"),
			},
			{
				Price:   "14",
				Sku:     "AC-2",
				Option1: strPtr("Large"),
			},
		},
		Images: []shopify.Image{{Src: "https://example.com/mug.jpg"}},
	}}
}

func TestExportHeaderAndRows(t *testing.T) {
	out, err := Export([]models.Product{productRow(t, testPayload())})
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + 2 variants

	assert.Equal(t, Headers, records[0])

	col := func(record []string, name string) string {
		for i, h := range Headers {
			if h == name {
				return record[i]
			}
		}
		t.Fatalf("no column %q", name)
		return ""
	}

	first := records[1]
	assert.Equal(t, "red-mug", col(first, "Handle"))
	assert.Equal(t, "Red Mug", col(first, "Title"))
	assert.Equal(t, "Size", col(first, "Option1 Name"))
	assert.Equal(t, "Small", col(first, "Option1 Value"))
	assert.Equal(t, "12.50", col(first, "Variant Price"))
	assert.Equal(t, "19.99", col(first, "Variant Compare At Price"))
	assert.Equal(t, "https://example.com/mug.jpg", col(first, "Image Src"))
	assert.Equal(t, "A sturdy mug for the office.", col(first, "SEO Description"))

	// Second variant line carries only variant columns.
	second := records[2]
	assert.Equal(t, "red-mug", col(second, "Handle"))
	assert.Empty(t, col(second, "Title"))
	assert.Equal(t, "Large", col(second, "Option1 Value"))
	assert.Equal(t, "14.00", col(second, "Variant Price"))
	assert.Empty(t, col(second, "Variant Compare At Price"))
}

func TestExportSkipsUnparseableRows(t *testing.T) {
	rows := []models.Product{
		{UserID: "u1", ProductData: json.RawMessage(`not json`)},
		productRow(t, testPayload()),
	}

	out, err := Export(rows)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestExportRoundTrip(t *testing.T) {
	out, err := Export([]models.Product{productRow(t, testPayload())})
	require.NoError(t, err)

	payloads, err := Import(strings.NewReader(out))
	require.NoError(t, err)
	require.Len(t, payloads, 1)

	product := payloads[0].Product
	assert.Equal(t, "Red Mug", product.Title)
	assert.Equal(t, "red-mug", product.Handle)
	require.Len(t, product.Variants, 2)
	assert.Equal(t, "12.50", product.Variants[0].Price)
	require.NotNil(t, product.Variants[0].CompareAtPrice)
	assert.Equal(t, "19.99", *product.Variants[0].CompareAtPrice)
	require.Len(t, product.Options, 1)
	assert.Equal(t, "Size", product.Options[0].Name)
	assert.Equal(t, []string{"Small", "Large"}, product.Options[0].Values)
}
