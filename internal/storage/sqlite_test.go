package storage

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"pharmacrawl/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "catalog.db"), testLogger())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertCategoryIdempotent(t *testing.T) {
	s := testStore(t)

	cat := types.Category{
		Name:      "Pain Relief",
		URL:       "https://www.dvago.pk/cat/pain-relief",
		Slug:      "pain-relief",
		Source:    types.SourceHomepage,
		ScrapedAt: time.Now().UTC(),
	}

	id1, err := s.UpsertCategory(&cat)
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	cat.Name = "Pain Relief & Fever"
	id2, err := s.UpsertCategory(&cat)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if id1 != id2 {
		t.Errorf("ids differ: %d vs %d", id1, id2)
	}

	cats, err := s.Categories()
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 1 {
		t.Fatalf("got %d categories, want 1", len(cats))
	}
	if cats[0].Name != "Pain Relief & Fever" {
		t.Errorf("name = %q, want refreshed name", cats[0].Name)
	}
}

func TestCategoryParentResolution(t *testing.T) {
	s := testStore(t)

	parent := types.Category{Name: "Medicine", URL: "https://www.dvago.pk/cat/medicine"}
	if _, err := s.UpsertCategory(&parent); err != nil {
		t.Fatalf("parent upsert: %v", err)
	}

	child := types.Category{
		Name:      "Antibiotics",
		URL:       "https://www.dvago.pk/cat/antibiotics",
		ParentURL: parent.URL,
	}
	if _, err := s.UpsertCategory(&child); err != nil {
		t.Fatalf("child upsert: %v", err)
	}

	cats, err := s.Categories()
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	for _, c := range cats {
		if c.URL == child.URL && c.ParentURL != parent.URL {
			t.Errorf("child parent_url = %q, want %q", c.ParentURL, parent.URL)
		}
	}
}

func TestUpsertProductKeepsPricesOnNilUpdate(t *testing.T) {
	s := testStore(t)

	p := types.Product{
		Name:         "Panadol Extra",
		URL:          "https://www.dvago.pk/p/panadol-extra",
		PriceCurrent: types.Float64Ptr(40),
		InStock:      true,
		ScrapedAt:    time.Now().UTC(),
	}
	if _, err := s.UpsertProduct(&p); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// Second pass found no price; the stored one must survive.
	p2 := types.Product{Name: "Panadol Extra", URL: p.URL, InStock: true}
	if _, err := s.UpsertProduct(&p2); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	products, err := s.Products()
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	if products[0].PriceCurrent == nil || *products[0].PriceCurrent != 40 {
		t.Errorf("price_current = %v, want 40 preserved", products[0].PriceCurrent)
	}
}

func TestUpsertProductDetail(t *testing.T) {
	s := testStore(t)

	d := types.ProductDetail{
		Product: types.Product{
			Name:         "Panadol Extra",
			URL:          "https://www.dvago.pk/p/panadol-extra",
			PriceCurrent: types.Float64Ptr(40),
			InStock:      true,
		},
		SKU:          "PND-500-24",
		Manufacturer: "GSK Pakistan",
		Form:         types.FormTablet,
		Rating:       types.Float64Ptr(4.5),
		ReviewCount:  12,
		Images: []string{
			"https://dvago-assets.com/product/panadol-1.jpg",
			"https://dvago-assets.com/product/panadol-2.jpg",
		},
	}

	id, err := s.UpsertProductDetail(&d)
	if err != nil {
		t.Fatalf("UpsertProductDetail: %v", err)
	}

	products, err := s.Products()
	if err != nil {
		t.Fatalf("Products: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("got %d products, want 1", len(products))
	}
	got := products[0]
	if got.SKU != "PND-500-24" || got.Manufacturer != "GSK Pakistan" {
		t.Errorf("detail fields = %q / %q", got.SKU, got.Manufacturer)
	}
	if got.Form != types.FormTablet {
		t.Errorf("form = %q", got.Form)
	}

	brands, err := s.Brands()
	if err != nil {
		t.Fatalf("Brands: %v", err)
	}
	if len(brands) != 1 || brands[0].Name != "GSK Pakistan" {
		t.Errorf("brands = %+v", brands)
	}

	images, err := s.Images(id)
	if err != nil {
		t.Fatalf("Images: %v", err)
	}
	if len(images) != 2 {
		t.Errorf("images = %v", images)
	}
}

func TestCleanDuplicates(t *testing.T) {
	s := testStore(t)

	good := types.Product{
		Name:          "Panadol",
		URL:           "https://www.dvago.pk/p/panadol",
		PriceCurrent:  types.Float64Ptr(40),
		PriceOriginal: types.Float64Ptr(50),
		InStock:       true,
	}
	if _, err := s.UpsertProduct(&good); err != nil {
		t.Fatal(err)
	}

	outlier := types.Product{
		Name:         "Glitch",
		URL:          "https://www.dvago.pk/p/glitch",
		PriceCurrent: types.Float64Ptr(5000000),
		InStock:      true,
	}
	if _, err := s.UpsertProduct(&outlier); err != nil {
		t.Fatal(err)
	}

	if err := s.CleanDuplicates(); err != nil {
		t.Fatalf("CleanDuplicates: %v", err)
	}

	products, err := s.Products()
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range products {
		switch p.URL {
		case good.URL:
			if p.DiscountPercentage == nil || *p.DiscountPercentage != 20 {
				t.Errorf("discount = %v, want recomputed 20", p.DiscountPercentage)
			}
		case outlier.URL:
			if p.PriceCurrent != nil {
				t.Errorf("outlier price = %v, want nulled", *p.PriceCurrent)
			}
			if p.DiscountPercentage != nil {
				t.Errorf("outlier discount = %v, want nil", *p.DiscountPercentage)
			}
		}
	}
}

func TestComputeStats(t *testing.T) {
	s := testStore(t)

	for i, p := range []types.Product{
		{Name: "A", URL: "https://x/p/a", PriceCurrent: types.Float64Ptr(10), InStock: true},
		{Name: "B", URL: "https://x/p/b", PriceCurrent: types.Float64Ptr(30), InStock: false},
		{Name: "C", URL: "https://x/p/c", InStock: true, PrescriptionRequired: true},
	} {
		if _, err := s.UpsertProduct(&p); err != nil {
			t.Fatalf("upsert %d: %v", i, err)
		}
	}

	st, err := s.ComputeStats()
	if err != nil {
		t.Fatalf("ComputeStats: %v", err)
	}
	if st.Products != 3 {
		t.Errorf("products = %d", st.Products)
	}
	if st.WithPrice != 2 {
		t.Errorf("with_price = %d", st.WithPrice)
	}
	if st.InStock != 2 {
		t.Errorf("in_stock = %d", st.InStock)
	}
	if st.Prescription != 1 {
		t.Errorf("prescription = %d", st.Prescription)
	}
	if st.AvgPrice == nil || *st.AvgPrice != 20 {
		t.Errorf("avg = %v", st.AvgPrice)
	}
	if st.MinPrice == nil || *st.MinPrice != 10 {
		t.Errorf("min = %v", st.MinPrice)
	}
	if st.MaxPrice == nil || *st.MaxPrice != 30 {
		t.Errorf("max = %v", st.MaxPrice)
	}
}
