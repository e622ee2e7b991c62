package storage

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pharmacrawl/internal/types"
)

const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	url         TEXT NOT NULL UNIQUE,
	slug        TEXT,
	image_url   TEXT,
	parent_id   INTEGER REFERENCES categories(id),
	source      TEXT,
	scraped_at  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS brands (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL UNIQUE,
	url         TEXT,
	logo_url    TEXT,
	description TEXT,
	scraped_at  TIMESTAMP
);

CREATE TABLE IF NOT EXISTS products (
	id                    INTEGER PRIMARY KEY AUTOINCREMENT,
	name                  TEXT NOT NULL,
	url                   TEXT NOT NULL UNIQUE,
	slug                  TEXT,
	sku                   TEXT,
	description           TEXT,
	price_current         REAL,
	price_original        REAL,
	discount_percentage   REAL,
	image_url             TEXT,
	in_stock              INTEGER NOT NULL DEFAULT 1,
	stock_quantity        INTEGER,
	prescription_required INTEGER NOT NULL DEFAULT 0,
	manufacturer          TEXT,
	ingredients           TEXT,
	dosage                TEXT,
	form                  TEXT,
	rating                REAL,
	review_count          INTEGER NOT NULL DEFAULT 0,
	delivery_info         TEXT,
	category_id           INTEGER REFERENCES categories(id),
	brand_id              INTEGER REFERENCES brands(id),
	scraped_at            TIMESTAMP
);

CREATE TABLE IF NOT EXISTS product_images (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
	url        TEXT NOT NULL,
	position   INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_products_category ON products(category_id);
CREATE INDEX IF NOT EXISTS idx_products_brand    ON products(brand_id);
CREATE INDEX IF NOT EXISTS idx_images_product    ON product_images(product_id);
`

// Store persists the catalog in a SQLite database. All writes are
// upserts keyed by the natural key (URL for categories and products,
// name for brands), so re-running a scrape refreshes rather than
// duplicates.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the database file and applies the schema.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &types.StorageError{Op: "mkdir", Err: err}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &types.StorageError{Op: "open", Err: err}
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, &types.StorageError{Op: "migrate", Err: err}
	}

	logger.With("component", "storage").Info("database ready", "path", path)
	return &Store{db: db, logger: logger.With("component", "storage")}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// UpsertCategory inserts or refreshes a category and returns its row
// id. The parent, when set, is resolved by URL.
func (s *Store) UpsertCategory(cat *types.Category) (int64, error) {
	var parentID sql.NullInt64
	if cat.ParentURL != "" {
		if id, err := s.categoryIDByURL(cat.ParentURL); err == nil {
			parentID = sql.NullInt64{Int64: id, Valid: true}
		}
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO categories (name, url, slug, image_url, parent_id, source, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name       = excluded.name,
			slug       = excluded.slug,
			image_url  = CASE WHEN excluded.image_url != '' THEN excluded.image_url ELSE categories.image_url END,
			parent_id  = COALESCE(excluded.parent_id, categories.parent_id),
			scraped_at = excluded.scraped_at
		RETURNING id`,
		cat.Name, cat.URL, cat.Slug, cat.ImageURL, parentID, string(cat.Source), cat.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return 0, &types.StorageError{Op: "upsert category", Err: err}
	}
	cat.ID = id
	return id, nil
}

// UpsertBrand inserts or refreshes a brand by name and returns its id.
func (s *Store) UpsertBrand(b *types.Brand) (int64, error) {
	var id int64
	err := s.db.QueryRow(`
		INSERT INTO brands (name, url, logo_url, description, scraped_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			url        = CASE WHEN excluded.url != '' THEN excluded.url ELSE brands.url END,
			logo_url   = CASE WHEN excluded.logo_url != '' THEN excluded.logo_url ELSE brands.logo_url END,
			scraped_at = excluded.scraped_at
		RETURNING id`,
		b.Name, b.URL, b.LogoURL, b.Description, b.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return 0, &types.StorageError{Op: "upsert brand", Err: err}
	}
	b.ID = id
	return id, nil
}

// UpsertProduct inserts or refreshes a product summary and returns its
// row id. Fields only a detail pass fills are left untouched.
func (s *Store) UpsertProduct(p *types.Product) (int64, error) {
	var categoryID sql.NullInt64
	if p.CategoryURL != "" {
		if id, err := s.categoryIDByURL(p.CategoryURL); err == nil {
			categoryID = sql.NullInt64{Int64: id, Valid: true}
		}
	}

	var id int64
	err := s.db.QueryRow(`
		INSERT INTO products (name, url, slug, price_current, price_original,
			discount_percentage, image_url, in_stock, prescription_required,
			category_id, scraped_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			name                  = excluded.name,
			slug                  = excluded.slug,
			price_current         = COALESCE(excluded.price_current, products.price_current),
			price_original        = COALESCE(excluded.price_original, products.price_original),
			discount_percentage   = COALESCE(excluded.discount_percentage, products.discount_percentage),
			image_url             = CASE WHEN excluded.image_url != '' THEN excluded.image_url ELSE products.image_url END,
			in_stock              = excluded.in_stock,
			prescription_required = excluded.prescription_required,
			category_id           = COALESCE(excluded.category_id, products.category_id),
			scraped_at            = excluded.scraped_at
		RETURNING id`,
		p.Name, p.URL, p.Slug, p.PriceCurrent, p.PriceOriginal,
		p.DiscountPercentage, p.ImageURL, p.InStock, p.PrescriptionRequired,
		categoryID, p.ScrapedAt,
	).Scan(&id)
	if err != nil {
		return 0, &types.StorageError{Op: "upsert product", Err: err}
	}
	p.ID = id
	return id, nil
}

// UpsertProductDetail refreshes a product with its full detail record,
// registering the brand and replacing the image set.
func (s *Store) UpsertProductDetail(d *types.ProductDetail) (int64, error) {
	id, err := s.UpsertProduct(&d.Product)
	if err != nil {
		return 0, err
	}

	var brandID sql.NullInt64
	if d.Manufacturer != "" {
		bid, err := s.UpsertBrand(&types.Brand{Name: d.Manufacturer, ScrapedAt: d.ScrapedAt})
		if err != nil {
			return 0, err
		}
		brandID = sql.NullInt64{Int64: bid, Valid: true}
	}

	_, err = s.db.Exec(`
		UPDATE products SET
			sku            = CASE WHEN ? != '' THEN ? ELSE sku END,
			description    = CASE WHEN ? != '' THEN ? ELSE description END,
			manufacturer   = CASE WHEN ? != '' THEN ? ELSE manufacturer END,
			ingredients    = CASE WHEN ? != '' THEN ? ELSE ingredients END,
			dosage         = CASE WHEN ? != '' THEN ? ELSE dosage END,
			form           = CASE WHEN ? != '' THEN ? ELSE form END,
			rating         = COALESCE(?, rating),
			review_count   = MAX(review_count, ?),
			stock_quantity = COALESCE(?, stock_quantity),
			delivery_info  = CASE WHEN ? != '' THEN ? ELSE delivery_info END,
			brand_id       = COALESCE(?, brand_id)
		WHERE id = ?`,
		d.SKU, d.SKU,
		d.Description, d.Description,
		d.Manufacturer, d.Manufacturer,
		d.Ingredients, d.Ingredients,
		d.Dosage, d.Dosage,
		string(d.Form), string(d.Form),
		d.Rating,
		d.ReviewCount,
		d.StockQuantity,
		d.DeliveryInfo, d.DeliveryInfo,
		brandID,
		id,
	)
	if err != nil {
		return 0, &types.StorageError{Op: "update detail", Err: err}
	}

	if len(d.Images) > 0 {
		if err := s.ReplaceImages(id, d.Images); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// ReplaceImages replaces a product's image set in one transaction.
func (s *Store) ReplaceImages(productID int64, urls []string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return &types.StorageError{Op: "replace images", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM product_images WHERE product_id = ?`, productID); err != nil {
		return &types.StorageError{Op: "replace images", Err: err}
	}
	for i, u := range urls {
		if _, err := tx.Exec(
			`INSERT INTO product_images (product_id, url, position) VALUES (?, ?, ?)`,
			productID, u, i,
		); err != nil {
			return &types.StorageError{Op: "replace images", Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &types.StorageError{Op: "replace images", Err: err}
	}
	return nil
}

func (s *Store) categoryIDByURL(url string) (int64, error) {
	var id int64
	err := s.db.QueryRow(`SELECT id FROM categories WHERE url = ?`, url).Scan(&id)
	return id, err
}

// CleanDuplicates repairs the database after a run: duplicate product
// rows collapse to the lowest id per URL, non-positive and implausibly
// large prices are nulled, and discount percentages are recomputed
// from the surviving prices.
func (s *Store) CleanDuplicates() error {
	stmts := []string{
		`DELETE FROM products WHERE id NOT IN (
			SELECT MIN(id) FROM products GROUP BY url
		)`,
		`UPDATE products SET price_current = NULL
			WHERE price_current IS NOT NULL AND (price_current <= 0 OR price_current > 1000000)`,
		`UPDATE products SET price_original = NULL
			WHERE price_original IS NOT NULL AND (price_original <= 0 OR price_original > 1000000)`,
		`UPDATE products SET discount_percentage =
			CASE
				WHEN price_current IS NOT NULL AND price_original IS NOT NULL
					AND price_original > price_current
				THEN ROUND((price_original - price_current) * 100.0 / price_original, 2)
				ELSE NULL
			END`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return &types.StorageError{Op: "clean", Err: err}
		}
	}
	s.logger.Info("database cleaned")
	return nil
}

// Categories returns every stored category.
func (s *Store) Categories() ([]types.Category, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.name, c.url, COALESCE(c.slug, ''), COALESCE(c.image_url, ''),
			COALESCE(p.url, ''), COALESCE(c.source, ''), c.scraped_at
		FROM categories c
		LEFT JOIN categories p ON p.id = c.parent_id
		ORDER BY c.id`)
	if err != nil {
		return nil, &types.StorageError{Op: "query categories", Err: err}
	}
	defer rows.Close()

	var cats []types.Category
	for rows.Next() {
		var c types.Category
		var source string
		var scrapedAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.URL, &c.Slug, &c.ImageURL,
			&c.ParentURL, &source, &scrapedAt); err != nil {
			return nil, &types.StorageError{Op: "scan category", Err: err}
		}
		c.Source = types.CategorySource(source)
		if scrapedAt.Valid {
			c.ScrapedAt = scrapedAt.Time
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

// Products returns every stored product with its full detail columns.
func (s *Store) Products() ([]types.ProductDetail, error) {
	rows, err := s.db.Query(`
		SELECT pr.id, pr.name, pr.url, COALESCE(pr.slug, ''), COALESCE(pr.sku, ''),
			COALESCE(pr.description, ''), pr.price_current, pr.price_original,
			pr.discount_percentage, COALESCE(pr.image_url, ''), pr.in_stock,
			pr.stock_quantity, pr.prescription_required,
			COALESCE(pr.manufacturer, ''), COALESCE(pr.ingredients, ''),
			COALESCE(pr.dosage, ''), COALESCE(pr.form, ''), pr.rating,
			pr.review_count, COALESCE(pr.delivery_info, ''),
			COALESCE(c.name, ''), COALESCE(c.url, ''), pr.scraped_at
		FROM products pr
		LEFT JOIN categories c ON c.id = pr.category_id
		ORDER BY pr.id`)
	if err != nil {
		return nil, &types.StorageError{Op: "query products", Err: err}
	}
	defer rows.Close()

	var products []types.ProductDetail
	for rows.Next() {
		var d types.ProductDetail
		var form string
		var scrapedAt sql.NullTime
		if err := rows.Scan(&d.ID, &d.Name, &d.URL, &d.Slug, &d.SKU,
			&d.Description, &d.PriceCurrent, &d.PriceOriginal,
			&d.DiscountPercentage, &d.ImageURL, &d.InStock,
			&d.StockQuantity, &d.PrescriptionRequired,
			&d.Manufacturer, &d.Ingredients,
			&d.Dosage, &form, &d.Rating,
			&d.ReviewCount, &d.DeliveryInfo,
			&d.CategoryName, &d.CategoryURL, &scrapedAt); err != nil {
			return nil, &types.StorageError{Op: "scan product", Err: err}
		}
		d.Form = types.MedicineForm(form)
		d.Brand = d.Manufacturer
		if scrapedAt.Valid {
			d.ScrapedAt = scrapedAt.Time
		}
		products = append(products, d)
	}
	return products, rows.Err()
}

// Brands returns every stored brand.
func (s *Store) Brands() ([]types.Brand, error) {
	rows, err := s.db.Query(`
		SELECT id, name, COALESCE(url, ''), COALESCE(logo_url, ''),
			COALESCE(description, ''), scraped_at
		FROM brands ORDER BY name`)
	if err != nil {
		return nil, &types.StorageError{Op: "query brands", Err: err}
	}
	defer rows.Close()

	var brands []types.Brand
	for rows.Next() {
		var b types.Brand
		var scrapedAt sql.NullTime
		if err := rows.Scan(&b.ID, &b.Name, &b.URL, &b.LogoURL, &b.Description, &scrapedAt); err != nil {
			return nil, &types.StorageError{Op: "scan brand", Err: err}
		}
		if scrapedAt.Valid {
			b.ScrapedAt = scrapedAt.Time
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

// Images returns a product's image URLs in position order.
func (s *Store) Images(productID int64) ([]string, error) {
	rows, err := s.db.Query(
		`SELECT url FROM product_images WHERE product_id = ? ORDER BY position`, productID)
	if err != nil {
		return nil, &types.StorageError{Op: "query images", Err: err}
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, &types.StorageError{Op: "scan image", Err: err}
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// Stats summarizes the stored catalog for reports and run summaries.
type Stats struct {
	Categories       int        `json:"categories"`
	Products         int        `json:"products"`
	Brands           int        `json:"brands"`
	Images           int        `json:"images"`
	WithPrice        int        `json:"with_price"`
	WithManufacturer int        `json:"with_manufacturer"`
	InStock          int        `json:"in_stock"`
	Prescription     int        `json:"prescription_required"`
	AvgPrice         *float64   `json:"avg_price,omitempty"`
	MinPrice         *float64   `json:"min_price,omitempty"`
	MaxPrice         *float64   `json:"max_price,omitempty"`
	GeneratedAt      time.Time  `json:"generated_at"`
}

// ComputeStats gathers catalog counts and price aggregates.
func (s *Store) ComputeStats() (*Stats, error) {
	st := &Stats{GeneratedAt: time.Now().UTC()}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM categories`, &st.Categories},
		{`SELECT COUNT(*) FROM products`, &st.Products},
		{`SELECT COUNT(*) FROM brands`, &st.Brands},
		{`SELECT COUNT(*) FROM product_images`, &st.Images},
		{`SELECT COUNT(*) FROM products WHERE price_current IS NOT NULL`, &st.WithPrice},
		{`SELECT COUNT(*) FROM products WHERE manufacturer IS NOT NULL AND manufacturer != ''`, &st.WithManufacturer},
		{`SELECT COUNT(*) FROM products WHERE in_stock = 1`, &st.InStock},
		{`SELECT COUNT(*) FROM products WHERE prescription_required = 1`, &st.Prescription},
	}
	for _, c := range counts {
		if err := s.db.QueryRow(c.query).Scan(c.dest); err != nil {
			return nil, &types.StorageError{Op: "stats", Err: err}
		}
	}

	var avg, minP, maxP sql.NullFloat64
	err := s.db.QueryRow(`
		SELECT AVG(price_current), MIN(price_current), MAX(price_current)
		FROM products WHERE price_current IS NOT NULL`).Scan(&avg, &minP, &maxP)
	if err != nil {
		return nil, &types.StorageError{Op: "stats", Err: err}
	}
	if avg.Valid {
		rounded := float64(int(avg.Float64*100)) / 100
		st.AvgPrice = &rounded
	}
	if minP.Valid {
		st.MinPrice = &minP.Float64
	}
	if maxP.Valid {
		st.MaxPrice = &maxP.Float64
	}

	return st, nil
}

// ProductCount returns the number of stored products.
func (s *Store) ProductCount() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, &types.StorageError{Op: "count", Err: err}
	}
	return n, nil
}
