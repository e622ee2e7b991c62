package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/types"
)

// Ancestor pooling depths per field family. Price scopes look further
// up than flag scopes because price badges often sit beside, not
// inside, the product link.
const (
	priceAncestorLevels = 3
	flagAncestorLevels  = 2
)

var nameClassRe = regexp.MustCompile(`(?i)name|title`)

// CandidateLink is a link located by a cascade strategy, carrying its
// canonical URL and the element it was found on.
type CandidateLink struct {
	URL string
	Sel *goquery.Selection
}

// Cascade locates semantic fields inside semi-structured catalog
// markup. Each field has an ordered list of independent strategies;
// the first strategy yielding a non-empty result wins. A field with no
// matching strategy yields the zero value, never an error.
type Cascade struct {
	base   *url.URL
	site   *config.SiteConfig
	logger *slog.Logger

	productSelectors  []string
	categorySelectors []string
}

// NewCascade creates a cascade bound to the configured site.
func NewCascade(cfg *config.Config, logger *slog.Logger) (*Cascade, error) {
	base, err := url.Parse(cfg.Site.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	site := &cfg.Site
	return &Cascade{
		base:   base,
		site:   site,
		logger: logger.With("component", "cascade"),
		productSelectors: []string{
			fmt.Sprintf(`a[href*=%q]`, site.ProductMarker),
			`.product-item a`,
			`.product-card a`,
			fmt.Sprintf(`[class*="product"] a[href*=%q]`, site.ProductMarker),
		},
		categorySelectors: []string{
			fmt.Sprintf(`a[href*=%q]`, site.CategoryMarker),
			fmt.Sprintf(`a[href*=%q]`, site.AZMarker),
			`.category-item a`,
			`.category-card a`,
			`[class*="category"] a`,
			`.subcategory a`,
			`.filter a`,
		},
	}, nil
}

// ResolveURL resolves a possibly-relative href against the site base,
// dropping fragments. Returns "" for unusable hrefs.
func (c *Cascade) ResolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" ||
		strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:") {
		return ""
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := c.base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

// ProductLinks pools product links from all strategies and returns
// them deduplicated by canonical URL, first occurrence wins.
func (c *Cascade) ProductLinks(doc *goquery.Document) []CandidateLink {
	return c.collectLinks(doc.Selection, c.productSelectors, c.site.ProductMarker)
}

// CategoryLinks pools category links from all strategies within the
// given scope, deduplicated by canonical URL.
func (c *Cascade) CategoryLinks(scope *goquery.Selection) []CandidateLink {
	return c.collectLinks(scope, c.categorySelectors, "")
}

func (c *Cascade) collectLinks(scope *goquery.Selection, selectors []string, requiredMarker string) []CandidateLink {
	seen := make(map[string]bool)
	var links []CandidateLink

	for _, selector := range selectors {
		scope.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok {
				return
			}
			resolved := c.ResolveURL(href)
			if resolved == "" || seen[resolved] {
				return
			}
			if requiredMarker != "" && !strings.Contains(resolved, requiredMarker) {
				return
			}
			seen[resolved] = true
			links = append(links, CandidateLink{URL: resolved, Sel: sel})
		})
	}
	return links
}

// Name resolves an element's display name. Strategies, in order:
// element text, title/alt attribute, nested heading, then a
// descendant whose class matches a name/title pattern. The first
// candidate longer than two characters after trimming wins.
func (c *Cascade) Name(sel *goquery.Selection) string {
	candidates := []func() string{
		func() string { return sel.Text() },
		func() string { v, _ := sel.Attr("title"); return v },
		func() string { v, _ := sel.Attr("alt"); return v },
		func() string { return sel.Find("h1, h2, h3, h4, h5, h6").First().Text() },
		func() string {
			var found string
			sel.Find("[class]").EachWithBreak(func(_ int, d *goquery.Selection) bool {
				class, _ := d.Attr("class")
				if nameClassRe.MatchString(class) {
					found = d.Text()
					return false
				}
				return true
			})
			return found
		},
	}

	for _, candidate := range candidates {
		if name := strings.TrimSpace(candidate()); len(name) > 2 {
			return collapseWhitespace(name)
		}
	}
	return ""
}

// Image resolves an element's image URL, probing lazy-load attributes
// and skipping inline data URIs.
func (c *Cascade) Image(sel *goquery.Selection) string {
	img := sel.Find("img").First()
	if img.Length() == 0 {
		return ""
	}

	for _, attr := range []string{"src", "data-src", "data-lazy-src", "data-original"} {
		src, ok := img.Attr(attr)
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			continue
		}
		return c.ResolveURL(src)
	}
	return ""
}

// Prices scans the element plus its price-scope ancestors for
// currency tokens and resolves them via the min/max policy.
func (c *Cascade) Prices(sel *goquery.Selection) types.PriceInfo {
	return ScanPrices(PooledText(sel, priceAncestorLevels))
}

// Flags reports (inStock, prescriptionRequired) from keyword scans
// over the element's flag scope.
func (c *Cascade) Flags(sel *goquery.Selection) (bool, bool) {
	text := PooledText(sel, flagAncestorLevels)
	return InStock(text), PrescriptionRequired(text)
}

// PooledText concatenates the text of sel and up to levels ancestors.
// Used for fields whose markers sit near, rather than inside, the
// anchoring element.
func PooledText(sel *goquery.Selection, levels int) string {
	var b strings.Builder
	b.WriteString(sel.Text())

	parent := sel.Parent()
	for i := 0; i < levels && parent.Length() > 0; i++ {
		tag := goquery.NodeName(parent)
		if tag == "body" || tag == "html" || tag == "#document" {
			break
		}
		b.WriteString(" ")
		b.WriteString(parent.Text())
		parent = parent.Parent()
	}
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
