package extractor

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/fetcher"
	"pharmacrawl/internal/parser"
	"pharmacrawl/internal/types"
)

// currentPriceSelectors are tried before the generic price scan. A
// dedicated sale-price element, when present, is more trustworthy than
// the min-of-all-tokens heuristic.
var currentPriceSelectors = []string{
	".current-price", ".sale-price", ".discounted-price", ".price-current",
}

var descriptionSelectors = []string{
	".product-description", ".description", "[class*=\"description\"]",
	"#description", ".product-details", ".product-info",
}

var ratingValueRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:/\s*5|out of 5|stars?)?`)

// Detail assembles full product records from product pages. Each
// sub-extraction is independent: a failure in one leaves its fields at
// zero values and never aborts the record.
type Detail struct {
	client  *fetcher.Client
	cascade *parser.Cascade
	cfg     *config.Config
	logger  *slog.Logger
}

// NewDetail creates a detail extractor over the shared fetch client.
func NewDetail(client *fetcher.Client, cascade *parser.Cascade, cfg *config.Config, logger *slog.Logger) *Detail {
	return &Detail{
		client:  client,
		cascade: cascade,
		cfg:     cfg,
		logger:  logger.With("component", "detail"),
	}
}

// Extract fetches a product page and assembles its full record. The
// summary's fields are the starting point; page data overrides them
// where found. Returns nil only when the page itself is unreachable
// or unparseable.
func (d *Detail) Extract(ctx context.Context, summary types.Product) *types.ProductDetail {
	resp := d.client.Page(ctx, summary.URL, types.ModeRendered)
	if resp == nil {
		return nil
	}
	doc, err := resp.Document()
	if err != nil {
		d.logger.Warn("detail page unparseable", "url", summary.URL, "error", err)
		return nil
	}

	detail := &types.ProductDetail{Product: summary}
	detail.ScrapedAt = time.Now().UTC()
	pageText := doc.Text()

	d.extractBasic(doc, detail)
	d.extractPricing(doc, pageText, detail)
	d.extractMedical(pageText, detail)
	d.extractImages(doc, detail)
	d.extractAvailability(pageText, detail)
	d.extractReviews(doc, pageText, detail)
	d.extractRelated(doc, detail)
	detail.Metadata = parser.Metadata(doc)

	return detail
}

func (d *Detail) extractBasic(doc *goquery.Document, detail *types.ProductDetail) {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); len(h1) > 2 {
		detail.Name = strings.Join(strings.Fields(h1), " ")
	}

	for _, sel := range descriptionSelectors {
		if text := strings.TrimSpace(doc.Find(sel).First().Text()); len(text) > 10 {
			detail.Description = strings.Join(strings.Fields(text), " ")
			break
		}
	}
}

func (d *Detail) extractPricing(doc *goquery.Document, pageText string, detail *types.ProductDetail) {
	info := parser.ScanPrices(pageText)

	// An explicit sale-price element overrides the scanned current.
	for _, sel := range currentPriceSelectors {
		text := doc.Find(sel).First().Text()
		if v, ok := parser.ParsePriceToken(text); ok {
			info.Current = types.Float64Ptr(v)
			break
		}
	}

	if info.Current != nil {
		detail.PriceCurrent = info.Current
	}
	if info.Original != nil {
		detail.PriceOriginal = info.Original
	}
	if info.DiscountPercentage != nil {
		detail.DiscountPercentage = info.DiscountPercentage
	}
}

func (d *Detail) extractMedical(pageText string, detail *types.ProductDetail) {
	detail.SKU = parser.SKU(pageText)
	detail.Manufacturer = parser.Manufacturer(pageText)
	detail.Ingredients = parser.Ingredients(pageText)
	detail.Dosage = parser.Dosage(pageText)
	detail.Form = parser.InferForm(detail.Name, detail.Description, pageText)

	if detail.Brand == "" && detail.Manufacturer != "" {
		detail.Brand = detail.Manufacturer
	}
}

// extractImages keeps images whose URL mentions a configured asset
// keyword, which filters out logos, icons, and payment badges.
func (d *Detail) extractImages(doc *goquery.Document, detail *types.ProductDetail) {
	seen := make(map[string]bool)

	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		var src string
		for _, attr := range []string{"src", "data-src", "data-lazy-src", "data-original"} {
			if v, ok := img.Attr(attr); ok && v != "" && !strings.HasPrefix(v, "data:") {
				src = v
				break
			}
		}
		if src == "" {
			return
		}
		resolved := d.cascade.ResolveURL(src)
		if resolved == "" || seen[resolved] {
			return
		}

		lower := strings.ToLower(resolved)
		for _, kw := range d.cfg.Site.AssetKeywords {
			if strings.Contains(lower, kw) {
				seen[resolved] = true
				detail.Images = append(detail.Images, resolved)
				break
			}
		}
	})

	if detail.ImageURL == "" && len(detail.Images) > 0 {
		detail.ImageURL = detail.Images[0]
	}
}

func (d *Detail) extractAvailability(pageText string, detail *types.ProductDetail) {
	detail.InStock = parser.InStock(pageText)
	detail.PrescriptionRequired = parser.PrescriptionRequired(pageText)
	detail.DeliveryInfo = parser.DeliveryInfo(pageText)
	if qty, ok := parser.StockQuantity(pageText); ok {
		detail.StockQuantity = types.IntPtr(qty)
	}
}

func (d *Detail) extractReviews(doc *goquery.Document, pageText string, detail *types.ProductDetail) {
	detail.ReviewCount = parser.ReviewCount(pageText)

	doc.Find(`.rating, .stars, [class*="rating"], [class*="star"]`).
		EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			m := ratingValueRe.FindStringSubmatch(sel.Text())
			if m == nil {
				return true
			}
			v, err := strconv.ParseFloat(m[1], 64)
			if err != nil || v < 0 || v > 5 {
				return true
			}
			detail.Rating = types.Float64Ptr(v)
			return false
		})
}

// extractRelated collects product links from related/recommended
// regions, skipping the page's own URL.
func (d *Detail) extractRelated(doc *goquery.Document, detail *types.ProductDetail) {
	seen := make(map[string]bool)

	doc.Find(`[class*="related"], [class*="recommended"], [class*="similar"]`).
		Each(func(_ int, region *goquery.Selection) {
			region.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				href, _ := a.Attr("href")
				resolved := d.cascade.ResolveURL(href)
				if resolved == "" || resolved == detail.URL || seen[resolved] {
					return
				}
				if !strings.Contains(resolved, d.cfg.Site.ProductMarker) {
					return
				}
				name := d.cascade.Name(a)
				if name == "" {
					return
				}
				seen[resolved] = true
				detail.RelatedProducts = append(detail.RelatedProducts,
					types.RelatedProduct{Name: name, URL: resolved})
			})
		})
}

// ExtractBatch runs detail extraction over summaries in fixed-size
// batches, pausing between items and twice as long between batches.
// Unreachable products are skipped and logged, never fatal.
func (d *Detail) ExtractBatch(ctx context.Context, summaries []types.Product) ([]types.ProductDetail, error) {
	batchSize := d.cfg.Engine.DetailBatchSize
	if batchSize <= 0 {
		batchSize = 10
	}
	delay := d.cfg.Engine.Delay

	details := make([]types.ProductDetail, 0, len(summaries))
	for start := 0; start < len(summaries); start += batchSize {
		end := min(start+batchSize, len(summaries))
		d.logger.Info("detail batch",
			"from", start+1, "to", end, "total", len(summaries))

		for i := start; i < end; i++ {
			if err := ctx.Err(); err != nil {
				return details, err
			}
			detail := d.Extract(ctx, summaries[i])
			if detail == nil {
				d.logger.Warn("detail skipped", "url", summaries[i].URL)
				continue
			}
			details = append(details, *detail)

			if i < end-1 {
				if err := sleep(ctx, delay); err != nil {
					return details, err
				}
			}
		}

		if end < len(summaries) {
			if err := sleep(ctx, 2*delay); err != nil {
				return details, err
			}
		}
	}
	return details, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
