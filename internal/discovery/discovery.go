package discovery

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/fetcher"
	"pharmacrawl/internal/parser"
	"pharmacrawl/internal/types"
)

// azLetters enumerates the alphabetical medicine index pages the site
// publishes under the A-Z marker.
const azLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Discoverer locates catalog categories through independent collectors
// and merges their findings. Collectors are OR-composed: each failure
// is logged and skipped, and a run in which every collector comes back
// empty still succeeds with an empty result.
type Discoverer struct {
	client  *fetcher.Client
	cascade *parser.Cascade
	cfg     *config.Config
	logger  *slog.Logger
}

// New creates a Discoverer over the shared fetch client.
func New(client *fetcher.Client, cascade *parser.Cascade, cfg *config.Config, logger *slog.Logger) *Discoverer {
	return &Discoverer{
		client:  client,
		cascade: cascade,
		cfg:     cfg,
		logger:  logger.With("component", "discovery"),
	}
}

// DiscoverAll runs every collector and merges the results,
// deduplicating by canonical URL. The first collector to report a URL
// wins; later collectors never overwrite its name or source.
func (d *Discoverer) DiscoverAll(ctx context.Context) ([]types.Category, error) {
	collectors := []struct {
		name    string
		collect func(context.Context) []types.Category
	}{
		{"homepage", d.fromHomepage},
		{"sitemap", d.fromSitemap},
		{"az", d.fromAZIndex},
		{"navigation", d.fromNavigation},
	}

	seen := make(map[string]bool)
	var merged []types.Category

	for _, c := range collectors {
		if err := ctx.Err(); err != nil {
			return merged, err
		}
		found := c.collect(ctx)
		added := 0
		for _, cat := range found {
			if cat.URL == "" || seen[cat.URL] {
				continue
			}
			seen[cat.URL] = true
			merged = append(merged, cat)
			added++
		}
		d.logger.Info("collector finished",
			"collector", c.name,
			"found", len(found),
			"new", added,
		)
	}

	d.logger.Info("discovery complete", "categories", len(merged))
	return merged, nil
}

// DiscoverSubcategories loads a category page and extracts the
// category links it exposes, excluding the page's own URL. Each result
// carries the parent's URL.
func (d *Discoverer) DiscoverSubcategories(ctx context.Context, parent types.Category) []types.Category {
	resp := d.client.Page(ctx, parent.URL, types.ModeRendered)
	if resp == nil {
		return nil
	}
	doc, err := resp.Document()
	if err != nil {
		d.logger.Warn("subcategory page unparseable", "url", parent.URL, "error", err)
		return nil
	}

	var subs []types.Category
	for _, link := range d.cascade.CategoryLinks(doc.Selection) {
		if link.URL == parent.URL {
			continue
		}
		if !strings.Contains(link.URL, d.cfg.Site.CategoryMarker) {
			continue
		}
		name := d.cascade.Name(link.Sel)
		if name == "" {
			name = types.SlugFromURL(link.URL, d.cfg.Site.CategoryMarker)
		}
		subs = append(subs, types.Category{
			Name:      name,
			URL:       link.URL,
			Slug:      types.SlugFromURL(link.URL, d.cfg.Site.CategoryMarker),
			ImageURL:  d.cascade.Image(link.Sel),
			ParentURL: parent.URL,
			Source:    parent.Source,
			ScrapedAt: time.Now().UTC(),
		})
	}
	return subs
}

// fromHomepage extracts category links from the rendered homepage.
func (d *Discoverer) fromHomepage(ctx context.Context) []types.Category {
	resp := d.client.Page(ctx, d.cfg.Site.BaseURL, types.ModeRendered)
	if resp == nil {
		return nil
	}
	doc, err := resp.Document()
	if err != nil {
		d.logger.Warn("homepage unparseable", "error", err)
		return nil
	}
	return d.categoriesFromLinks(d.cascade.CategoryLinks(doc.Selection), types.SourceHomepage)
}

// fromSitemap probes the conventional sitemap locations. An XML
// sitemap yields its <loc> entries; an HTML one falls back to anchor
// extraction. The first location that produces categories wins.
func (d *Discoverer) fromSitemap(ctx context.Context) []types.Category {
	base := strings.TrimRight(d.cfg.Site.BaseURL, "/")
	candidates := []string{
		base + "/sitemap.xml",
		base + "/sitemap",
		base + "/categories",
	}

	for _, candidate := range candidates {
		resp := d.client.Page(ctx, candidate, types.ModePlain)
		if resp == nil {
			continue
		}

		var cats []types.Category
		if resp.IsXML() {
			cats = d.categoriesFromXMLSitemap(resp.Body, candidate)
		} else {
			doc, err := resp.Document()
			if err != nil {
				d.logger.Warn("sitemap page unparseable", "url", candidate, "error", err)
				continue
			}
			cats = d.categoriesFromLinks(d.cascade.CategoryLinks(doc.Selection), types.SourceSitemap)
		}

		if len(cats) > 0 {
			return cats
		}
	}
	return nil
}

// categoriesFromXMLSitemap extracts //loc entries matching the
// category marker. htmlquery's lenient parser copes with sitemaps
// served with stray markup.
func (d *Discoverer) categoriesFromXMLSitemap(body []byte, sourceURL string) []types.Category {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		d.logger.Warn("sitemap XML unparseable", "url", sourceURL, "error", err)
		return nil
	}

	nodes, err := htmlquery.QueryAll(root, "//loc")
	if err != nil {
		d.logger.Warn("sitemap loc query failed", "url", sourceURL, "error", err)
		return nil
	}

	marker := d.cfg.Site.CategoryMarker
	var cats []types.Category
	for _, node := range nodes {
		loc := strings.TrimSpace(htmlquery.InnerText(node))
		if loc == "" || !strings.Contains(loc, marker) {
			continue
		}
		slug := types.SlugFromURL(loc, marker)
		cats = append(cats, types.Category{
			Name:      nameFromSlug(slug),
			URL:       loc,
			Slug:      slug,
			Source:    types.SourceSitemap,
			ScrapedAt: time.Now().UTC(),
		})
	}
	return cats
}

// fromAZIndex synthesizes the 26 alphabetical medicine index pages.
// These are constructed, not fetched; the site publishes one per
// letter whether or not it currently lists products.
func (d *Discoverer) fromAZIndex(_ context.Context) []types.Category {
	base := strings.TrimRight(d.cfg.Site.BaseURL, "/")
	marker := strings.Trim(d.cfg.Site.AZMarker, "/")

	cats := make([]types.Category, 0, len(azLetters))
	for _, letter := range azLetters {
		cats = append(cats, types.Category{
			Name:      fmt.Sprintf("Medicines starting with %c", letter),
			URL:       fmt.Sprintf("%s/%s/%c", base, marker, letter),
			Slug:      strings.ToLower(string(letter)),
			Source:    types.SourceAZ,
			ScrapedAt: time.Now().UTC(),
		})
	}
	return cats
}

// fromNavigation scans the nav, header, and footer regions of the
// homepage for category links the main-content collector misses.
func (d *Discoverer) fromNavigation(ctx context.Context) []types.Category {
	resp := d.client.Page(ctx, d.cfg.Site.BaseURL, types.ModeRendered)
	if resp == nil {
		return nil
	}
	doc, err := resp.Document()
	if err != nil {
		return nil
	}

	var cats []types.Category
	for _, region := range []string{"nav", "header", "footer", ".navbar", ".menu", "[class*=\"nav\"]"} {
		found := d.categoriesFromLinks(d.cascade.CategoryLinks(doc.Find(region)), types.SourceNavigation)
		cats = append(cats, found...)
	}
	return cats
}

func (d *Discoverer) categoriesFromLinks(links []parser.CandidateLink, source types.CategorySource) []types.Category {
	marker := d.cfg.Site.CategoryMarker
	var cats []types.Category
	for _, link := range links {
		if !strings.Contains(link.URL, marker) && !strings.Contains(link.URL, d.cfg.Site.AZMarker) {
			continue
		}
		slug := types.SlugFromURL(link.URL, marker)
		name := d.cascade.Name(link.Sel)
		if name == "" {
			name = nameFromSlug(slug)
		}
		if name == "" {
			continue
		}
		cats = append(cats, types.Category{
			Name:      name,
			URL:       link.URL,
			Slug:      slug,
			ImageURL:  d.cascade.Image(link.Sel),
			Source:    source,
			ScrapedAt: time.Now().UTC(),
		})
	}
	return cats
}

// nameFromSlug turns "pain-relief" into "Pain Relief".
func nameFromSlug(slug string) string {
	if slug == "" {
		return ""
	}
	words := strings.FieldsFunc(slug, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
