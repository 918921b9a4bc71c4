package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("product not found")

type Repo struct{ DB *pgxpool.Pool }

const productCols = `id, name, category, warehouse_name, sector,
	price, current_price, original_price, discount_amount, discount_percentage,
	current_quantity, base_quantity, total_value, imported_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ProductID, &p.Name, &p.Category, &p.WarehouseName, &p.Sector,
		&p.Price, &p.CurrentPrice, &p.OriginalPrice, &p.DiscountAmount, &p.DiscountPercentage,
		&p.CurrentQuantity, &p.BaseQuantity, &p.TotalValue, &p.ImportedAt, &p.UpdatedAt)
	return p, err
}

func collectProducts(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context, limit, skip int) ([]Product, int, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products
		ORDER BY name LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, 0, err
	}
	ps, err := collectProducts(rows)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, err
	}
	return ps, total, nil
}

func (r *Repo) GetByProductID(ctx context.Context, productID string) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx,
		`SELECT `+productCols+` FROM products WHERE id=$1`, productID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	return p, err
}

type SearchParams struct {
	Query     string
	Category  string
	Warehouse string
	Sort      string
}

// Search runs the free-text storefront search. The query matches name, id,
// sector and warehouse; category/warehouse narrow it; sort keys mirror the
// storefront dropdown.
func (r *Repo) Search(ctx context.Context, sp SearchParams) ([]Product, error) {
	var (
		conds []string
		args  []any
	)
	if sp.Query != "" {
		args = append(args, sp.Query)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			`(name ILIKE '%%'||$%d||'%%' OR id ILIKE '%%'||$%d||'%%' OR sector ILIKE '%%'||$%d||'%%' OR warehouse_name ILIKE '%%'||$%d||'%%')`,
			n, n, n, n))
	}
	if sp.Category != "" && sp.Category != "All" {
		args = append(args, sp.Category)
		conds = append(conds, fmt.Sprintf(`category ILIKE '%%'||$%d||'%%'`, len(args)))
	}
	if sp.Warehouse != "" && sp.Warehouse != "All" {
		args = append(args, sp.Warehouse)
		conds = append(conds, fmt.Sprintf(`warehouse_name ILIKE '%%'||$%d||'%%'`, len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	order := "name"
	switch sp.Sort {
	case "price_low":
		order = "CASE WHEN current_price > 0 THEN current_price ELSE price END ASC"
	case "price_high":
		order = "CASE WHEN current_price > 0 THEN current_price ELSE price END DESC"
	case "discount":
		order = "discount_percentage DESC"
	case "quantity":
		order = "current_quantity DESC"
	case "warehouse":
		order = "warehouse_name"
	}

	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products`+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) ByCategory(ctx context.Context, category string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products
		WHERE category ILIKE '%'||$1||'%' ORDER BY name`, category)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) ByWarehouse(ctx context.Context, warehouse string) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products
		WHERE warehouse_name ILIKE '%'||$1||'%' ORDER BY name`, warehouse)
	if err != nil {
		return nil, err
	}
	return collectProducts(rows)
}

func (r *Repo) Suggestions(ctx context.Context, q string, limit int) ([]Suggestion, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, name, category FROM products
		WHERE name ILIKE '%'||$1||'%' OR id ILIKE '%'||$1||'%'
		ORDER BY name LIMIT $2`, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Suggestion
	for rows.Next() {
		var s Suggestion
		if err := rows.Scan(&s.ID, &s.Name, &s.Category); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) Warehouses(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "warehouse_name")
}

func (r *Repo) Categories(ctx context.Context) ([]string, error) {
	return r.distinct(ctx, "category")
}

func (r *Repo) distinct(ctx context.Context, col string) ([]string, error) {
	rows, err := r.DB.Query(ctx, `SELECT DISTINCT `+col+` FROM products
		WHERE `+col+` IS NOT NULL AND TRIM(`+col+`) <> '' ORDER BY `+col)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) WarehouseStats(ctx context.Context) ([]WarehouseStat, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT warehouse_name,
		       COUNT(*),
		       COALESCE(SUM(current_quantity), 0),
		       COALESCE(SUM(total_value), 0),
		       COALESCE(AVG(current_price), 0),
		       ARRAY_AGG(DISTINCT category)
		FROM products
		GROUP BY warehouse_name
		ORDER BY COALESCE(SUM(total_value), 0) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []WarehouseStat
	for rows.Next() {
		var w WarehouseStat
		if err := rows.Scan(&w.Name, &w.TotalProducts, &w.TotalQuantity,
			&w.TotalValue, &w.AveragePrice, &w.Categories); err != nil {
			return nil, err
		}
		w.CategoriesCount = len(w.Categories)
		out = append(out, w)
	}
	return out, rows.Err()
}

// Counts backs the health endpoint.
func (r *Repo) Counts(ctx context.Context) (products, categories, warehouses int, err error) {
	err = r.DB.QueryRow(ctx, `SELECT COUNT(*),
		COUNT(DISTINCT category),
		COUNT(DISTINCT warehouse_name) FROM products`).
		Scan(&products, &categories, &warehouses)
	return
}

// SetQuantity is the admin absolute stock edit. It rewrites total_value in the
// same statement and rebases base_quantity so every retained reservation stays
// accounted for (new base = new quantity + sum of reservation quantities).
func (r *Repo) SetQuantity(ctx context.Context, productID string, quantity int) (old int, p Product, err error) {
	row := r.DB.QueryRow(ctx, `
		WITH prev AS (SELECT current_quantity FROM products WHERE id=$1)
		UPDATE products SET
			current_quantity = $2,
			total_value = $2 * (CASE WHEN current_price > 0 THEN current_price ELSE price END),
			base_quantity = $2 + (SELECT COALESCE(SUM(quantity), 0)
			                      FROM reservations
			                      WHERE product_id=$1),
			updated_at = now()
		FROM prev
		WHERE products.id=$1
		RETURNING prev.current_quantity, `+qualifiedProductCols+``, productID, quantity)
	var prevQty int
	p, err = scanQuantityUpdate(row, &prevQty)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, Product{}, ErrNotFound
	}
	return prevQty, p, err
}

const qualifiedProductCols = `products.id, products.name, products.category,
	products.warehouse_name, products.sector, products.price, products.current_price,
	products.original_price, products.discount_amount, products.discount_percentage,
	products.current_quantity, products.base_quantity, products.total_value,
	products.imported_at, products.updated_at`

func scanQuantityUpdate(row pgx.Row, prevQty *int) (Product, error) {
	var p Product
	err := row.Scan(prevQty,
		&p.ProductID, &p.Name, &p.Category, &p.WarehouseName, &p.Sector,
		&p.Price, &p.CurrentPrice, &p.OriginalPrice, &p.DiscountAmount, &p.DiscountPercentage,
		&p.CurrentQuantity, &p.BaseQuantity, &p.TotalValue, &p.ImportedAt, &p.UpdatedAt)
	return p, err
}

// Upsert writes one imported row; conflicts on id refresh the snapshot fields.
func (r *Repo) Upsert(ctx context.Context, tx pgx.Tx, p Product) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO products (id, name, category, warehouse_name, sector,
			price, current_price, original_price, discount_amount, discount_percentage,
			current_quantity, base_quantity, total_value, imported_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			name=EXCLUDED.name, category=EXCLUDED.category,
			warehouse_name=EXCLUDED.warehouse_name, sector=EXCLUDED.sector,
			price=EXCLUDED.price, current_price=EXCLUDED.current_price,
			original_price=EXCLUDED.original_price,
			discount_amount=EXCLUDED.discount_amount,
			discount_percentage=EXCLUDED.discount_percentage,
			current_quantity=EXCLUDED.current_quantity,
			base_quantity=EXCLUDED.base_quantity,
			total_value=EXCLUDED.total_value,
			updated_at=now()`,
		p.ProductID, p.Name, p.Category, p.WarehouseName, p.Sector,
		p.Price, p.CurrentPrice, p.OriginalPrice, p.DiscountAmount, p.DiscountPercentage,
		p.CurrentQuantity, p.BaseQuantity, p.TotalValue)
	return err
}
