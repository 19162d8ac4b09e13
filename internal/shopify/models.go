package shopify

// Payload is the envelope stored in the products.product_data column.
// Shopify exports wrap the product in a top-level "product" key and
// imported rows keep that shape.
type Payload struct {
	Product *Product `json:"product"`
}

// Product represents a Shopify-shaped product record
type Product struct {
	ID             int64       `json:"id,omitempty"`
	Title          string      `json:"title"`
	BodyHTML       string      `json:"body_html,omitempty"`
	Vendor         string      `json:"vendor,omitempty"`
	ProductType    string      `json:"product_type,omitempty"`
	Handle         string      `json:"handle,omitempty"`
	Status         string      `json:"status,omitempty"`
	Tags           string      `json:"tags,omitempty"`
	Published      bool        `json:"published"`
	ThemeTemplate  string      `json:"theme_template,omitempty"`
	SEOTitle       string      `json:"seo_title,omitempty"`
	SEODescription string      `json:"seo_description,omitempty"`
	Gender         string      `json:"gender,omitempty"`
	SourceDomain   string      `json:"source_domain,omitempty"`
	Keywords       []string    `json:"keywords,omitempty"`
	Variants       []Variant   `json:"variants,omitempty"`
	Images         []Image     `json:"images,omitempty"`
	Image          *Image      `json:"image,omitempty"`
	Options        []Option    `json:"options,omitempty"`
	Metafields     []Metafield `json:"metafields,omitempty"`

	// Google Shopping metadata
	GCategory      string `json:"g_category,omitempty"`
	GGender        string `json:"g_gender,omitempty"`
	GAgeGroup      string `json:"g_age_group,omitempty"`
	GCondition     string `json:"g_condition,omitempty"`
	GCustomProduct string `json:"g_custom_product,omitempty"`
	GLabel0        string `json:"g_label0,omitempty"`
	GLabel1        string `json:"g_label1,omitempty"`
	GLabel2        string `json:"g_label2,omitempty"`
	GLabel3        string `json:"g_label3,omitempty"`
	GLabel4        string `json:"g_label4,omitempty"`
}

// Variant represents a product variant. Nullable columns are pointers so
// "unset" survives a marshal round-trip: a nil InventoryManagement means no
// quantity tracker, a nil CompareAtPrice means no "was" price is shown.
type Variant struct {
	ID                     int64   `json:"id,omitempty"`
	ProductID              int64   `json:"product_id,omitempty"`
	Title                  string  `json:"title,omitempty"`
	Price                  string  `json:"price,omitempty"`
	PriceCurrency          string  `json:"price_currency,omitempty"`
	CompareAtPrice         *string `json:"compare_at_price,omitempty"`
	CompareAtPriceCurrency string  `json:"compare_at_price_currency,omitempty"`
	Sku                    string  `json:"sku,omitempty"`
	Barcode                *string `json:"barcode,omitempty"`
	Position               int     `json:"position,omitempty"`
	InventoryPolicy        string  `json:"inventory_policy,omitempty"`
	InventoryManagement    *string `json:"inventory_management"`
	InventoryQuantity      int     `json:"inventory_quantity"`
	Option1                *string `json:"option1,omitempty"`
	Option2                *string `json:"option2,omitempty"`
	Option3                *string `json:"option3,omitempty"`
	Taxable                bool    `json:"taxable,omitempty"`
	Grams                  int     `json:"grams,omitempty"`
	Weight                 float64 `json:"weight,omitempty"`
	WeightUnit             string  `json:"weight_unit,omitempty"`
	RequiresShipping       bool    `json:"requires_shipping,omitempty"`
}

// Image represents a product image
type Image struct {
	ID        int64   `json:"id,omitempty"`
	ProductID int64   `json:"product_id,omitempty"`
	Position  int     `json:"position,omitempty"`
	Alt       *string `json:"alt,omitempty"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
	Src       string  `json:"src"`
}

// Option represents a product option
type Option struct {
	ID        int64    `json:"id,omitempty"`
	ProductID int64    `json:"product_id,omitempty"`
	Name      string   `json:"name"`
	Position  int      `json:"position,omitempty"`
	Values    []string `json:"values,omitempty"`
}

// Metafield represents a custom metafield attached during a bulk edit
type Metafield struct {
	Namespace string `json:"namespace,omitempty"`
	Key       string `json:"key"`
	Type      string `json:"type,omitempty"`
	Value     string `json:"value"`
}

// Order represents a Shopify order, reduced to the fields the order sync
// persists.
type Order struct {
	ID              int64  `json:"id"`
	Name            string `json:"name,omitempty"`
	TotalPrice      string `json:"total_price"`
	Currency        string `json:"currency,omitempty"`
	FinancialStatus string `json:"financial_status,omitempty"`
	ProcessedAt     string `json:"processed_at,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// OrdersResponse represents the response from the orders API
type OrdersResponse struct {
	Orders []Order `json:"orders"`
}

// ProductsResponse represents the response from the products API
type ProductsResponse struct {
	Products []Product `json:"products"`
}
