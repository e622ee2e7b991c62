package types

import (
	"strings"
	"time"
)

// CategorySource identifies which collector discovered a category.
type CategorySource string

const (
	SourceHomepage   CategorySource = "homepage"
	SourceSitemap    CategorySource = "sitemap"
	SourceAZ         CategorySource = "az-enumeration"
	SourceNavigation CategorySource = "navigation"
)

// Category is a catalog category or subcategory, keyed by canonical URL.
type Category struct {
	ID        int64          `json:"id,omitempty"`
	Name      string         `json:"name"`
	URL       string         `json:"url"`
	Slug      string         `json:"slug,omitempty"`
	ImageURL  string         `json:"image_url,omitempty"`
	ParentURL string         `json:"parent_url,omitempty"`
	Source    CategorySource `json:"source,omitempty"`
	ScrapedAt time.Time      `json:"scraped_at"`
}

// Product is a product summary as seen on a listing page.
// Optional numeric fields are pointers: nil means "not found on page".
type Product struct {
	ID                   int64     `json:"id,omitempty"`
	Name                 string    `json:"name"`
	URL                  string    `json:"url"`
	Slug                 string    `json:"slug,omitempty"`
	PriceCurrent         *float64  `json:"price_current,omitempty"`
	PriceOriginal        *float64  `json:"price_original,omitempty"`
	DiscountPercentage   *float64  `json:"discount_percentage,omitempty"`
	ImageURL             string    `json:"image_url,omitempty"`
	InStock              bool      `json:"in_stock"`
	PrescriptionRequired bool      `json:"prescription_required"`
	Brand                string    `json:"brand,omitempty"`
	CategoryName         string    `json:"category_name,omitempty"`
	CategoryURL          string    `json:"category_url,omitempty"`
	ScrapedAt            time.Time `json:"scraped_at"`
}

// MedicineForm is the dosage form inferred from product text.
type MedicineForm string

const (
	FormTablet    MedicineForm = "tablet"
	FormCapsule   MedicineForm = "capsule"
	FormSyrup     MedicineForm = "syrup"
	FormInjection MedicineForm = "injection"
	FormCream     MedicineForm = "cream"
	FormDrops     MedicineForm = "drops"
	FormUnknown   MedicineForm = ""
)

// RelatedProduct is a lightweight reference discovered on a detail page.
type RelatedProduct struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ProductDetail is the full record assembled from a product page.
// Every field beyond the embedded summary is best-effort: a missing
// element or failed pattern leaves the zero value.
type ProductDetail struct {
	Product

	SKU             string           `json:"sku,omitempty"`
	Description     string           `json:"description,omitempty"`
	Ingredients     string           `json:"ingredients,omitempty"`
	Dosage          string           `json:"dosage,omitempty"`
	Manufacturer    string           `json:"manufacturer,omitempty"`
	Form            MedicineForm     `json:"form,omitempty"`
	Images          []string         `json:"images,omitempty"`
	Rating          *float64         `json:"rating,omitempty"`
	ReviewCount     int              `json:"review_count"`
	RelatedProducts []RelatedProduct `json:"related_products,omitempty"`
	StockQuantity   *int             `json:"stock_quantity,omitempty"`
	DeliveryInfo    string           `json:"delivery_info,omitempty"`
	Metadata        map[string]any   `json:"metadata,omitempty"`
}

// Brand is a manufacturer or brand entity, keyed by name.
type Brand struct {
	ID          int64     `json:"id,omitempty"`
	Name        string    `json:"name"`
	URL         string    `json:"url,omitempty"`
	LogoURL     string    `json:"logo_url,omitempty"`
	Description string    `json:"description,omitempty"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// PriceInfo is the outcome of scanning a text scope for price tokens.
type PriceInfo struct {
	Current            *float64
	Original           *float64
	DiscountPercentage *float64
}

// Empty reports whether no price was found in the scope.
func (p PriceInfo) Empty() bool { return p.Current == nil }

// SlugFromURL derives the trailing slug after the given path marker,
// e.g. SlugFromURL("https://x/p/panadol-500", "/p/") == "panadol-500".
func SlugFromURL(rawURL, marker string) string {
	idx := strings.LastIndex(rawURL, marker)
	if idx < 0 {
		return ""
	}
	slug := rawURL[idx+len(marker):]
	if i := strings.IndexAny(slug, "?#"); i >= 0 {
		slug = slug[:i]
	}
	return strings.Trim(slug, "/")
}

// Float64Ptr returns a pointer to v. Convenience for optional fields.
func Float64Ptr(v float64) *float64 { return &v }

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }
