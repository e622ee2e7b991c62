package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/fetcher"
	"pharmacrawl/internal/parser"
	"pharmacrawl/internal/types"
)

// Listing extracts product summaries from category listing pages,
// following page=N pagination until the category is exhausted.
type Listing struct {
	client  *fetcher.Client
	cascade *parser.Cascade
	cfg     *config.Config
	logger  *slog.Logger
}

// NewListing creates a listing extractor over the shared fetch client.
func NewListing(client *fetcher.Client, cascade *parser.Cascade, cfg *config.Config, logger *slog.Logger) *Listing {
	return &Listing{
		client:  client,
		cascade: cascade,
		cfg:     cfg,
		logger:  logger.With("component", "listing"),
	}
}

// ExtractPage parses the product summaries on a single listing page.
// Every per-product field is best-effort; only the URL is required.
func (l *Listing) ExtractPage(doc *goquery.Document, category types.Category) []types.Product {
	links := l.cascade.ProductLinks(doc)

	products := make([]types.Product, 0, len(links))
	for _, link := range links {
		prices := l.cascade.Prices(link.Sel)
		inStock, rx := l.cascade.Flags(link.Sel)

		products = append(products, types.Product{
			Name:                 l.cascade.Name(link.Sel),
			URL:                  link.URL,
			Slug:                 types.SlugFromURL(link.URL, l.cfg.Site.ProductMarker),
			PriceCurrent:         prices.Current,
			PriceOriginal:        prices.Original,
			DiscountPercentage:   prices.DiscountPercentage,
			ImageURL:             l.cascade.Image(link.Sel),
			InStock:              inStock,
			PrescriptionRequired: rx,
			CategoryName:         category.Name,
			CategoryURL:          category.URL,
			ScrapedAt:            time.Now().UTC(),
		})
	}
	return products
}

// ExtractCategory walks a category's pages and returns every product
// summary found. Pagination stops when a page yields no products, when
// no next-page indicator remains, or when the configured page or
// per-category product cap is reached.
func (l *Listing) ExtractCategory(ctx context.Context, category types.Category) ([]types.Product, error) {
	seen := make(map[string]bool)
	var all []types.Product

	for page := 1; ; page++ {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		if l.cfg.Engine.MaxPages > 0 && page > l.cfg.Engine.MaxPages {
			l.logger.Info("page cap reached", "category", category.Name, "pages", page-1)
			break
		}

		pageURL, err := pageURL(category.URL, page)
		if err != nil {
			return all, fmt.Errorf("build page URL for %s: %w", category.URL, err)
		}

		resp := l.client.Page(ctx, pageURL, types.ModeRendered)
		if resp == nil {
			break
		}
		doc, err := resp.Document()
		if err != nil {
			l.logger.Warn("listing page unparseable", "url", pageURL, "error", err)
			break
		}

		found := l.ExtractPage(doc, category)
		fresh := 0
		for _, p := range found {
			if seen[p.URL] {
				continue
			}
			seen[p.URL] = true
			all = append(all, p)
			fresh++

			if l.cfg.Engine.MaxPerCategory > 0 && len(all) >= l.cfg.Engine.MaxPerCategory {
				l.logger.Info("per-category cap reached",
					"category", category.Name, "products", len(all))
				return all, nil
			}
		}

		l.logger.Debug("listing page extracted",
			"url", pageURL, "found", len(found), "new", fresh)

		// A page of nothing but repeats means the site is serving the
		// last page again for out-of-range page numbers.
		if len(found) == 0 || fresh == 0 {
			break
		}
		if !hasNextPage(doc) {
			break
		}
	}

	l.logger.Info("category extracted", "category", category.Name, "products", len(all))
	return all, nil
}

// pageURL appends or replaces the page query parameter, preserving any
// existing query string.
func pageURL(categoryURL string, page int) (string, error) {
	if page <= 1 {
		return categoryURL, nil
	}
	u, err := url.Parse(categoryURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("page", fmt.Sprintf("%d", page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// hasNextPage reports whether the page advertises further pages:
// pagination controls, a page= link, or a next-style control.
func hasNextPage(doc *goquery.Document) bool {
	if doc.Find(`.pagination, .pager, [class*="pagination"]`).Length() > 0 {
		return true
	}
	if doc.Find(`a[href*="page="]`).Length() > 0 {
		return true
	}
	next := false
	doc.Find(`[class*="next"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if goquery.NodeName(sel) == "a" || sel.Find("a").Length() > 0 {
			next = true
			return false
		}
		return true
	})
	return next
}

// medicineKeywords mark a product or category as a medicine rather
// than general merchandise. Detail extraction is reserved for these.
var medicineKeywords = []string{
	"medicine", "pharma", "tablet", "capsule", "syrup", "injection",
	"drops", "ointment", "atozmedicine", "mg", "ml",
}

// IsMedicinePage reports whether a category looks like a medicine
// listing rather than a general-merchandise one, from its name and URL.
func IsMedicinePage(category types.Category) bool {
	return matchesMedicine(category.Name + " " + category.URL)
}

// IsMedicineProduct reports whether a product summary looks like a
// medicine, from its name and category.
func IsMedicineProduct(p types.Product) bool {
	return matchesMedicine(p.Name + " " + p.CategoryName + " " + p.CategoryURL)
}

// FilterMedicines keeps the products worth a detail-page visit.
func FilterMedicines(products []types.Product) []types.Product {
	filtered := make([]types.Product, 0, len(products))
	for _, p := range products {
		if IsMedicineProduct(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func matchesMedicine(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range medicineKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
