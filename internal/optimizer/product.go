package optimizer

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"ecomai/internal/shopify"
)

// Tag actions for the organization settings pass.
const (
	TagActionClear   = "clear"
	TagActionReplace = "replace"
	TagActionAdd     = "add"
)

// BulkEditSettings is the full settings tree of one bulk edit request,
// grouped the way the edit form groups them.
type BulkEditSettings struct {
	General          *GeneralSettings      `json:"general,omitempty"`
	Organization     *OrganizationSettings `json:"organization,omitempty"`
	Copywriting      *CopywritingSettings  `json:"copywriting,omitempty"`
	Google           *GoogleSettings       `json:"google,omitempty"`
	InventoryPrices  *VariantSettings      `json:"inventoryPrices,omitempty"`
	CustomMetafields []*MetafieldEdit      `json:"customMetafields,omitempty"`
}

type GeneralSettings struct {
	Name      string          `json:"name,omitempty"`
	Language  string          `json:"Language,omitempty"`
	InAppTags []string        `json:"in_app_tags,omitempty"`
	Gender    *EditDescriptor `json:"gender,omitempty"`
}

type OrganizationSettings struct {
	Vendor        string `json:"vendor,omitempty"`
	TagAction     string `json:"tagAction,omitempty"`
	Tags          string `json:"tags,omitempty"`
	Published     bool   `json:"published"`
	Status        string `json:"status,omitempty"`
	ThemeTemplate string `json:"theme_template,omitempty"`
	GenerateSKUs  bool   `json:"generateSkus,omitempty"`
}

type CopywritingSettings struct {
	Title          *EditDescriptor `json:"title,omitempty"`
	Description    *EditDescriptor `json:"description,omitempty"`
	SEOTitle       *EditDescriptor `json:"seo_title,omitempty"`
	SEODescription *EditDescriptor `json:"seo_description,omitempty"`
	Handle         *EditDescriptor `json:"handle,omitempty"`
}

type GoogleSettings struct {
	ProductCategory *EditDescriptor   `json:"product_category,omitempty"`
	Gender          *EditDescriptor   `json:"gender,omitempty"`
	Condition       string            `json:"condition,omitempty"`
	AgeGroup        string            `json:"ageGroup,omitempty"`
	CustomProduct   string            `json:"customProduct,omitempty"`
	CustomLabels    []*EditDescriptor `json:"custom_labels,omitempty"`
}

type MetafieldEdit struct {
	Namespace string          `json:"namespace,omitempty"`
	Key       string          `json:"key"`
	Type      string          `json:"type,omitempty"`
	Value     *EditDescriptor `json:"value,omitempty"`
}

// ApplyOrganizationSettings rewrites vendor, tags, publication state and
// theme template on the product. Empty override fields leave the product's
// own values in place; the published flag is always written.
func ApplyOrganizationSettings(product *shopify.Product, org *OrganizationSettings) {
	if org == nil {
		return
	}

	if org.Vendor != "" {
		product.Vendor = org.Vendor
	}

	switch org.TagAction {
	case TagActionClear:
		product.Tags = ""
	case TagActionReplace:
		product.Tags = org.Tags
	case TagActionAdd:
		if org.Tags != "" {
			product.Tags = MergeTags(product.Tags, org.Tags)
		}
	}

	product.Published = org.Published
	if org.Status != "" {
		product.Status = org.Status
	}
	if org.ThemeTemplate != "" {
		product.ThemeTemplate = org.ThemeTemplate
	}
}

// MergeTags combines two comma-separated tag lists, trimming entries and
// dropping duplicates while keeping first-seen order.
func MergeTags(existing, incoming string) string {
	seen := make(map[string]bool)
	var merged []string

	for _, list := range []string{existing, incoming} {
		for _, tag := range strings.Split(list, ",") {
			tag = strings.TrimSpace(tag)
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			merged = append(merged, tag)
		}
	}

	return strings.Join(merged, ", ")
}

// ApplyGoogleStatics writes the non-AI Google Shopping fields. AI-resolved
// fields (category, gender, custom labels) are handled by the batch layer
// through ApplyEdit.
func ApplyGoogleStatics(product *shopify.Product, google *GoogleSettings) {
	if google == nil {
		return
	}
	if google.Condition != "" {
		product.GCondition = google.Condition
	}
	if google.AgeGroup != "" {
		product.GAgeGroup = google.AgeGroup
	}
	if google.CustomProduct != "" {
		product.GCustomProduct = google.CustomProduct
	}
}

// SetCustomLabel assigns one of the five Google custom label slots.
func SetCustomLabel(product *shopify.Product, index int, value string) {
	switch index {
	case 0:
		product.GLabel0 = value
	case 1:
		product.GLabel1 = value
	case 2:
		product.GLabel2 = value
	case 3:
		product.GLabel3 = value
	case 4:
		product.GLabel4 = value
	}
}

var (
	slugInvalidRe  = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpacesRe   = regexp.MustCompile(`\s+`)
	slugDashRunRe  = regexp.MustCompile(`-+`)
	slugTrimDashRe = regexp.MustCompile(`^-+|-+$`)
)

// Slugify turns a title into a Shopify handle: lowercase, alphanumerics and
// dashes only, no leading/trailing/doubled dashes.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = slugInvalidRe.ReplaceAllString(s, "")
	s = slugSpacesRe.ReplaceAllString(s, "-")
	s = slugDashRunRe.ReplaceAllString(s, "-")
	return slugTrimDashRe.ReplaceAllString(s, "")
}

// GenerateSKUBase builds the shared SKU stem for one product:
// two-letter vendor code, two random digits, DDMMYY, HHMMSS, two more
// random digits. Variants get "-<position>" appended.
func GenerateSKUBase(vendor string, now time.Time, rng *rand.Rand) string {
	code := strings.ToUpper(vendor)
	if runes := []rune(code); len(runes) > 2 {
		code = string(runes[:2])
	}
	rand1 := rng.Intn(90) + 10
	rand2 := rng.Intn(90) + 10
	return fmt.Sprintf("%s-%d%s-%s-%d", code, rand1, now.Format("020106"), now.Format("150405"), rand2)
}

// AssignSKUs stamps every variant with the base SKU plus its 1-based index.
func AssignSKUs(product *shopify.Product, base string) {
	for i := range product.Variants {
		product.Variants[i].Sku = fmt.Sprintf("%s-%d", base, i+1)
	}
}

// BuildContext flattens a product into the template lookup context, with a
// millisecond timestamp under "now". Resolved edits are layered back in by
// the batch pipeline so later edits can reference earlier results.
func BuildContext(product *shopify.Product, now time.Time) Context {
	return Context{
		"title":           product.Title,
		"description":     product.BodyHTML,
		"body_html":       product.BodyHTML,
		"vendor":          product.Vendor,
		"product_type":    product.ProductType,
		"handle":          product.Handle,
		"tags":            product.Tags,
		"seo_title":       product.SEOTitle,
		"seo_description": product.SEODescription,
		"now":             fmt.Sprintf("%d", now.UnixMilli()),
	}
}
