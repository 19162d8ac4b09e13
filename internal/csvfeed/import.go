package csvfeed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ecomai/internal/shopify"
)

// Import parses a Shopify product CSV into payloads, grouping variant rows
// by handle the way the export wrote them. Rows without a Handle are
// dropped; products come back in first-seen handle order.
func Import(r io.Reader) ([]shopify.Payload, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	if _, ok := index["Handle"]; !ok {
		return nil, fmt.Errorf("CSV has no Handle column")
	}

	cell := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	grouped := make(map[string][][]string)
	var order []string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		handle := cell(record, "Handle")
		if handle == "" {
			continue
		}
		if _, seen := grouped[handle]; !seen {
			order = append(order, handle)
		}
		grouped[handle] = append(grouped[handle], record)
	}

	payloads := make([]shopify.Payload, 0, len(order))
	for _, handle := range order {
		payloads = append(payloads, buildPayload(handle, grouped[handle], cell))
	}
	return payloads, nil
}

func buildPayload(handle string, group [][]string, cell func([]string, string) string) shopify.Payload {
	base := group[0]

	product := &shopify.Product{
		Title:       cell(base, "Title"),
		BodyHTML:    cell(base, "Body (HTML)"),
		Vendor:      cell(base, "Vendor"),
		ProductType: cell(base, "Type"),
		Handle:      handle,
		Tags:        cell(base, "Tags"),
		Published:   cell(base, "Published") == "TRUE",
		Status:      cell(base, "Status"),
		GCategory:   cell(base, "Product Category"),
	}

	optionValues := [3][]string{}
	optionSeen := [3]map[string]bool{{}, {}, {}}

	position := 0
	for _, record := range group {
		option1 := cell(record, "Option1 Value")
		if option1 == "" {
			continue
		}
		position++

		variant := shopify.Variant{
			Price:             priceOrZero(cell(record, "Variant Price")),
			Sku:               cell(record, "Variant SKU"),
			Position:          position,
			Taxable:           cell(record, "Variant Taxable") == "TRUE",
			RequiresShipping:  cell(record, "Variant Requires Shipping") == "TRUE",
			InventoryPolicy:   policyOrDefault(cell(record, "Variant Inventory Policy")),
			InventoryQuantity: atoiOrZero(cell(record, "Variant Inventory Qty")),
			Grams:             atoiOrZero(cell(record, "Variant Grams")),
			WeightUnit:        weightUnitOrDefault(cell(record, "Variant Weight Unit")),
		}

		variant.Title = strings.TrimSpace(strings.Trim(option1+" / "+cell(record, "Option2 Value"), " /"))
		if tracker := cell(record, "Variant Inventory Tracker"); tracker != "" {
			variant.InventoryManagement = &tracker
		}
		if compare := cell(record, "Variant Compare At Price"); compare != "" {
			formatted := priceOrZero(compare)
			variant.CompareAtPrice = &formatted
		}
		if barcode := cell(record, "Variant Barcode"); barcode != "" {
			variant.Barcode = &barcode
		}
		for i, col := range []string{"Option1 Value", "Option2 Value", "Option3 Value"} {
			value := cell(record, col)
			if value == "" {
				continue
			}
			switch i {
			case 0:
				variant.Option1 = &value
			case 1:
				variant.Option2 = &value
			case 2:
				variant.Option3 = &value
			}
			if !optionSeen[i][value] {
				optionSeen[i][value] = true
				optionValues[i] = append(optionValues[i], value)
			}
		}

		product.Variants = append(product.Variants, variant)
	}

	optionNames := []string{
		cell(base, "Option1 Name"),
		cell(base, "Option2 Name"),
		cell(base, "Option3 Name"),
	}
	for i, values := range optionValues {
		if len(values) == 0 {
			continue
		}
		name := optionNames[i]
		if name == "" {
			name = "Option " + strconv.Itoa(i+1)
		}
		product.Options = append(product.Options, shopify.Option{
			Name:     name,
			Position: i + 1,
			Values:   values,
		})
	}

	for i, record := range group {
		src := cell(record, "Image Src")
		if src == "" {
			continue
		}
		img := shopify.Image{Src: src, Position: i + 1}
		if pos := atoiOrZero(cell(record, "Image Position")); pos > 0 {
			img.Position = pos
		}
		if alt := cell(record, "Image Alt Text"); alt != "" {
			img.Alt = &alt
		}
		product.Images = append(product.Images, img)
	}
	if len(product.Images) > 0 {
		product.Image = &product.Images[0]
	}

	return shopify.Payload{Product: product}
}

func atoiOrZero(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
