package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-service/models"
)

type MySQLBrands struct{ db *sql.DB }

func (r *MySQLBrands) Create(ctx context.Context, b *models.Brand) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO brands (name, slug, logo_url, created_at) VALUES (?, ?, ?, ?)`,
		b.Name, b.Slug, b.LogoURL, b.CreatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLBrands) GetByID(ctx context.Context, id int64) (*models.Brand, error) {
	var b models.Brand
	err := conn(ctx, r.db).QueryRowContext(ctx,
		`SELECT id, name, slug, logo_url, created_at FROM brands WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *MySQLBrands) Update(ctx context.Context, b *models.Brand) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE brands SET name = ?, slug = ?, logo_url = ? WHERE id = ?`, b.Name, b.Slug, b.LogoURL, b.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLBrands) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM brands WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLBrands) List(ctx context.Context) ([]models.Brand, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT id, name, slug, logo_url, created_at FROM brands ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	brands := []models.Brand{}
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.LogoURL, &b.CreatedAt); err != nil {
			return nil, err
		}
		brands = append(brands, b)
	}
	return brands, rows.Err()
}

type MySQLBikes struct{ db *sql.DB }

const bikeColumns = `id, brand_id, model, year_from, year_to, image_url, created_at`

func scanBike(row interface{ Scan(...any) error }) (*models.Bike, error) {
	var b models.Bike
	if err := row.Scan(&b.ID, &b.BrandID, &b.Model, &b.YearFrom, &b.YearTo, &b.ImageURL, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MySQLBikes) Create(ctx context.Context, b *models.Bike) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO bikes (brand_id, model, year_from, year_to, image_url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.BrandID, b.Model, b.YearFrom, b.YearTo, b.ImageURL, b.CreatedAt)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLBikes) GetByID(ctx context.Context, id int64) (*models.Bike, error) {
	b, err := scanBike(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+bikeColumns+` FROM bikes WHERE id = ?`, id))
	return b, notFound(err)
}

func (r *MySQLBikes) Update(ctx context.Context, b *models.Bike) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE bikes SET brand_id = ?, model = ?, year_from = ?, year_to = ?, image_url = ? WHERE id = ?`,
		b.BrandID, b.Model, b.YearFrom, b.YearTo, b.ImageURL, b.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLBikes) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM bikes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLBikes) List(ctx context.Context, brandID int64) ([]models.Bike, error) {
	q := `SELECT ` + bikeColumns + ` FROM bikes`
	var args []any
	if brandID != 0 {
		q += ` WHERE brand_id = ?`
		args = append(args, brandID)
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, q+` ORDER BY model`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bikes := []models.Bike{}
	for rows.Next() {
		b, err := scanBike(rows)
		if err != nil {
			return nil, err
		}
		bikes = append(bikes, *b)
	}
	return bikes, rows.Err()
}

type MySQLProducts struct{ db *sql.DB }

const productColumns = `id, sku, name, slug, description, brand_id, bike_id, category, price, sale_price, stock, image_url, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }) (*models.Product, error) {
	var (
		p           models.Product
		description sql.NullString
		brandID     sql.NullInt64
		bikeID      sql.NullInt64
		salePrice   decimal.NullDecimal
	)
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Slug, &description, &brandID, &bikeID, &p.Category,
		&p.Price, &salePrice, &p.Stock, &p.ImageURL, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Description = description.String
	p.BrandID = int64Ptr(brandID)
	p.BikeID = int64Ptr(bikeID)
	if salePrice.Valid {
		p.SalePrice = &salePrice.Decimal
	}
	return &p, nil
}

func (r *MySQLProducts) Create(ctx context.Context, p *models.Product) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO products (sku, name, slug, description, brand_id, bike_id, category, price, sale_price, stock, image_url, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.SKU, p.Name, p.Slug, p.Description, nullInt64(p.BrandID), nullInt64(p.BikeID), p.Category,
		p.Price, p.SalePrice, p.Stock, p.ImageURL, p.IsActive, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLProducts) GetByID(ctx context.Context, id int64) (*models.Product, error) {
	p, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id))
	return p, notFound(err)
}

func (r *MySQLProducts) GetForUpdate(ctx context.Context, id int64) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = ?`
	if inTx(ctx) {
		q += ` FOR UPDATE`
	}
	p, err := scanProduct(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	return p, notFound(err)
}

func (r *MySQLProducts) Update(ctx context.Context, p *models.Product) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE products SET sku = ?, name = ?, slug = ?, description = ?, brand_id = ?, bike_id = ?, category = ?,
		price = ?, sale_price = ?, stock = ?, image_url = ?, is_active = ?, updated_at = ? WHERE id = ?`,
		p.SKU, p.Name, p.Slug, p.Description, nullInt64(p.BrandID), nullInt64(p.BikeID), p.Category,
		p.Price, p.SalePrice, p.Stock, p.ImageURL, p.IsActive, p.UpdatedAt, p.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLProducts) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLProducts) List(ctx context.Context, f models.ProductFilter) ([]models.Product, error) {
	var (
		where []string
		args  []any
	)
	if f.Query != "" {
		where = append(where, `(name LIKE ? OR sku LIKE ?)`)
		like := "%" + f.Query + "%"
		args = append(args, like, like)
	}
	if f.BrandID != 0 {
		where = append(where, `brand_id = ?`)
		args = append(args, f.BrandID)
	}
	if f.BikeID != 0 {
		where = append(where, `bike_id = ?`)
		args = append(args, f.BikeID)
	}
	if f.Category != "" {
		where = append(where, `category = ?`)
		args = append(args, f.Category)
	}
	if f.ActiveOnly {
		where = append(where, `is_active = TRUE`)
	}
	q := `SELECT ` + productColumns + ` FROM products`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, ` AND `)
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, q+` ORDER BY created_at DESC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *MySQLProducts) AdjustStock(ctx context.Context, id int64, delta int) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE products SET stock = stock + ?, updated_at = NOW() WHERE id = ? AND stock + ? >= 0`, delta, id, delta)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrInsufficientStock
	}
	return nil
}

type MySQLBanners struct{ db *sql.DB }

const bannerColumns = `id, title, image_url, link_url, position, is_active, created_at`

func scanBanner(row interface{ Scan(...any) error }) (*models.Banner, error) {
	var b models.Banner
	if err := row.Scan(&b.ID, &b.Title, &b.ImageURL, &b.LinkURL, &b.Position, &b.IsActive, &b.CreatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MySQLBanners) Create(ctx context.Context, b *models.Banner) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`INSERT INTO banners (title, image_url, link_url, position, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		b.Title, b.ImageURL, b.LinkURL, b.Position, b.IsActive, b.CreatedAt)
	if err != nil {
		return err
	}
	b.ID, err = res.LastInsertId()
	return err
}

func (r *MySQLBanners) GetByID(ctx context.Context, id int64) (*models.Banner, error) {
	b, err := scanBanner(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+bannerColumns+` FROM banners WHERE id = ?`, id))
	return b, notFound(err)
}

func (r *MySQLBanners) Update(ctx context.Context, b *models.Banner) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE banners SET title = ?, image_url = ?, link_url = ?, position = ?, is_active = ? WHERE id = ?`,
		b.Title, b.ImageURL, b.LinkURL, b.Position, b.IsActive, b.ID)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLBanners) Delete(ctx context.Context, id int64) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM banners WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOrNotFound(res)
}

func (r *MySQLBanners) List(ctx context.Context, activeOnly bool) ([]models.Banner, error) {
	q := `SELECT ` + bannerColumns + ` FROM banners`
	if activeOnly {
		q += ` WHERE is_active = TRUE`
	}
	rows, err := conn(ctx, r.db).QueryContext(ctx, q+` ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	banners := []models.Banner{}
	for rows.Next() {
		b, err := scanBanner(rows)
		if err != nil {
			return nil, err
		}
		banners = append(banners, *b)
	}
	return banners, rows.Err()
}
