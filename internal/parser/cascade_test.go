package parser

import (
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"

	"pharmacrawl/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testCascade(t *testing.T) *Cascade {
	t.Helper()
	c, err := NewCascade(config.DefaultConfig(), testLogger())
	if err != nil {
		t.Fatalf("NewCascade: %v", err)
	}
	return c
}

func parseDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse fixture: %v", err)
	}
	return doc
}

const listingFixture = `<html><body>
<div class="product-grid">
  <div class="product-card">
    <a href="/p/panadol-extra">
      <img data-src="/images/product/panadol.jpg" src="data:image/gif;base64,xyz">
      <span class="product-name">Panadol Extra 500mg</span>
    </a>
    <span class="price">Rs. 40</span>
    <span class="old-price">Rs. 50</span>
  </div>
  <div class="product-card">
    <a href="https://www.dvago.pk/p/brufen-400" title="Brufen 400mg"></a>
    <span class="price">Rs. 120</span>
    <span class="badge">Out of Stock</span>
  </div>
  <a href="/p/panadol-extra">duplicate link</a>
  <a href="/cat/pain-relief">Pain Relief</a>
</div>
</body></html>`

func TestProductLinks(t *testing.T) {
	c := testCascade(t)
	doc := parseDoc(t, listingFixture)

	links := c.ProductLinks(doc)
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2 (deduplicated)", len(links))
	}
	if links[0].URL != "https://www.dvago.pk/p/panadol-extra" {
		t.Errorf("links[0] = %q", links[0].URL)
	}
	if links[1].URL != "https://www.dvago.pk/p/brufen-400" {
		t.Errorf("links[1] = %q", links[1].URL)
	}
}

func TestNameCascade(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "element text",
			html: `<a href="/p/x">Panadol Extra</a>`,
			want: "Panadol Extra",
		},
		{
			name: "title attribute",
			html: `<a href="/p/x" title="Brufen 400mg">  </a>`,
			want: "Brufen 400mg",
		},
		{
			name: "nested heading",
			html: `<div title=""><h3>Augmentin 625mg</h3></div>`,
			want: "Augmentin 625mg",
		},
		{
			name: "name class descendant",
			html: `<div><span class="item-name">Disprin</span></div>`,
			want: "Disprin",
		},
		{
			name: "too short rejected",
			html: `<a href="/p/x">ab</a>`,
			want: "",
		},
		{
			name: "whitespace collapsed",
			html: `<a href="/p/x">Panadol
			   Extra</a>`,
			want: "Panadol Extra",
		},
	}

	c := testCascade(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := parseDoc(t, "<html><body>"+tt.html+"</body></html>")
			sel := doc.Find("body").Children().First()
			if got := c.Name(sel); got != tt.want {
				t.Errorf("Name = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageSkipsDataURI(t *testing.T) {
	c := testCascade(t)
	doc := parseDoc(t, `<html><body><a href="/p/x">
		<img src="data:image/gif;base64,xyz" data-src="/images/p.jpg">
	</a></body></html>`)

	got := c.Image(doc.Find("a"))
	if got != "https://www.dvago.pk/images/p.jpg" {
		t.Errorf("Image = %q", got)
	}
}

func TestPricesPoolAncestors(t *testing.T) {
	c := testCascade(t)
	doc := parseDoc(t, `<html><body>
		<div class="product-card">
			<a href="/p/panadol-extra"><span>Panadol Extra</span></a>
			<span class="price">Rs. 40</span>
			<span class="old-price">Rs. 50</span>
		</div>
	</body></html>`)

	sel := doc.Find(`a[href="/p/panadol-extra"]`).First()
	info := c.Prices(sel)
	if info.Current == nil || *info.Current != 40 {
		t.Fatalf("current = %v, want 40", info.Current)
	}
	if info.Original == nil || *info.Original != 50 {
		t.Fatalf("original = %v, want 50", info.Original)
	}
	if info.DiscountPercentage == nil || *info.DiscountPercentage != 20 {
		t.Fatalf("discount = %v, want 20", info.DiscountPercentage)
	}
}

func TestFlagsPoolAncestors(t *testing.T) {
	c := testCascade(t)
	doc := parseDoc(t, listingFixture)

	sel := doc.Find(`a[href="https://www.dvago.pk/p/brufen-400"]`).First()
	inStock, rx := c.Flags(sel)
	if inStock {
		t.Error("expected out of stock from sibling badge")
	}
	if rx {
		t.Error("unexpected prescription flag")
	}
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/p/panadol", "https://www.dvago.pk/p/panadol"},
		{"https://www.dvago.pk/cat/vitamins", "https://www.dvago.pk/cat/vitamins"},
		{"/p/panadol#reviews", "https://www.dvago.pk/p/panadol"},
		{"#top", ""},
		{"javascript:void(0)", ""},
		{"mailto:help@dvago.pk", ""},
		{"", ""},
	}

	c := testCascade(t)
	for _, tt := range tests {
		if got := c.ResolveURL(tt.href); got != tt.want {
			t.Errorf("ResolveURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
