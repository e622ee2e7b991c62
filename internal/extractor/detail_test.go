package extractor

import (
	"testing"

	"pharmacrawl/internal/config"
	"pharmacrawl/internal/parser"
	"pharmacrawl/internal/types"
)

func testDetail(t *testing.T) *Detail {
	t.Helper()
	cfg := config.DefaultConfig()
	logger := testLogger()
	cascade, err := parser.NewCascade(cfg, logger)
	if err != nil {
		t.Fatalf("NewCascade: %v", err)
	}
	return NewDetail(nil, cascade, cfg, logger)
}

const detailFixture = `<html>
<head>
  <title>Panadol Extra - DVAGO</title>
  <meta name="description" content="Pain relief tablets">
</head>
<body>
  <h1>Panadol Extra 500mg Tablets</h1>
  <div class="product-description">
    Fast, effective relief from headache and fever.
    Manufacturer: GSK Pakistan
    Composition: Paracetamol 500mg, Caffeine 65mg
    Dosage: 1-2 tablets every 6 hours
    SKU: PND-500-24
  </div>
  <div class="price-box">
    <span class="current-price">Rs. 40</span>
    <span class="old-price">Rs. 50</span>
  </div>
  <div class="rating">4.5 out of 5</div>
  <p>12 reviews</p>
  <p>Delivery: within 24 hours</p>
  <img src="https://dvago-assets.com/product/panadol-1.jpg">
  <img data-src="https://dvago-assets.com/product/panadol-2.jpg">
  <img src="https://cdn.example.com/logo.png">
  <div class="related-products">
    <a href="/p/brufen-400">Brufen 400mg</a>
    <a href="/p/panadol-extra">Panadol Extra 500mg Tablets</a>
    <a href="/cat/pain-relief">Pain Relief</a>
  </div>
</body>
</html>`

func TestDetailSubExtractions(t *testing.T) {
	d := testDetail(t)
	doc := parseDoc(t, detailFixture)
	pageText := doc.Text()

	detail := &types.ProductDetail{Product: types.Product{
		Name: "Panadol Extra",
		URL:  "https://www.dvago.pk/p/panadol-extra",
	}}

	d.extractBasic(doc, detail)
	if detail.Name != "Panadol Extra 500mg Tablets" {
		t.Errorf("name = %q", detail.Name)
	}
	if detail.Description == "" {
		t.Error("description missing")
	}

	d.extractPricing(doc, pageText, detail)
	if detail.PriceCurrent == nil || *detail.PriceCurrent != 40 {
		t.Errorf("price_current = %v", detail.PriceCurrent)
	}
	if detail.PriceOriginal == nil || *detail.PriceOriginal != 50 {
		t.Errorf("price_original = %v", detail.PriceOriginal)
	}

	d.extractMedical(pageText, detail)
	if detail.SKU != "PND-500-24" {
		t.Errorf("sku = %q", detail.SKU)
	}
	if detail.Manufacturer != "GSK Pakistan" {
		t.Errorf("manufacturer = %q", detail.Manufacturer)
	}
	if detail.Form != types.FormTablet {
		t.Errorf("form = %q", detail.Form)
	}
	if detail.Brand != "GSK Pakistan" {
		t.Errorf("brand = %q", detail.Brand)
	}

	d.extractImages(doc, detail)
	if len(detail.Images) != 2 {
		t.Fatalf("images = %v, want 2 asset images", detail.Images)
	}

	d.extractAvailability(pageText, detail)
	if !detail.InStock {
		t.Error("expected in stock")
	}
	if detail.DeliveryInfo != "within 24 hours" {
		t.Errorf("delivery = %q", detail.DeliveryInfo)
	}

	d.extractReviews(doc, pageText, detail)
	if detail.Rating == nil || *detail.Rating != 4.5 {
		t.Errorf("rating = %v", detail.Rating)
	}
	if detail.ReviewCount != 12 {
		t.Errorf("review_count = %d", detail.ReviewCount)
	}

	d.extractRelated(doc, detail)
	if len(detail.RelatedProducts) != 1 {
		t.Fatalf("related = %+v, want 1 (own URL and category link excluded)", detail.RelatedProducts)
	}
	if detail.RelatedProducts[0].Name != "Brufen 400mg" {
		t.Errorf("related[0] = %+v", detail.RelatedProducts[0])
	}
}

func TestDetailSubExtractionsBarePage(t *testing.T) {
	d := testDetail(t)
	doc := parseDoc(t, `<html><body><h1>Mystery Item</h1></body></html>`)
	pageText := doc.Text()

	detail := &types.ProductDetail{Product: types.Product{
		URL:     "https://www.dvago.pk/p/mystery",
		InStock: true,
	}}

	d.extractBasic(doc, detail)
	d.extractPricing(doc, pageText, detail)
	d.extractMedical(pageText, detail)
	d.extractImages(doc, detail)
	d.extractAvailability(pageText, detail)
	d.extractReviews(doc, pageText, detail)
	d.extractRelated(doc, detail)

	if detail.Name != "Mystery Item" {
		t.Errorf("name = %q", detail.Name)
	}
	if detail.PriceCurrent != nil {
		t.Errorf("price = %v, want nil", *detail.PriceCurrent)
	}
	if !detail.InStock {
		t.Error("bare page should stay in stock by default")
	}
	if detail.Form != types.FormUnknown {
		t.Errorf("form = %q, want unknown", detail.Form)
	}
	if len(detail.Images) != 0 {
		t.Errorf("images = %v, want none", detail.Images)
	}
}
