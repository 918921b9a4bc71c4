package importer

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"github.com/kabbani-home/inventory-api/internal/catalog"
)

// Column headers as they appear in the warehouse spreadsheet.
const (
	colID            = "ID"
	colName          = "اسم الصنف"
	colSector        = "القطاع"
	colWarehouse     = "اسم المخزن"
	colQuantity      = "الكمية الحالية للمخازن"
	colCurrentPrice  = "السعر الحالي"
	colPrice         = "السعر"
	colOriginalPrice = "قبل الخصم"
)

// ParseRow maps one spreadsheet row (header -> cell) onto a product.
// Numeric cells are parsed tolerantly: blanks and garbage become zero, the
// way the spreadsheet's own formulas treat them.
func ParseRow(row map[string]string) (catalog.Product, error) {
	id := strings.TrimSpace(row[colID])
	if id == "" {
		return catalog.Product{}, fmt.Errorf("row has no product id")
	}
	name := strings.TrimSpace(row[colName])
	if name == "" {
		return catalog.Product{}, fmt.Errorf("product %s has no name", id)
	}

	p := catalog.Product{
		ProductID:       id,
		Name:            name,
		Sector:          strings.TrimSpace(row[colSector]),
		WarehouseName:   strings.TrimSpace(row[colWarehouse]),
		CurrentQuantity: parseInt(row[colQuantity]),
		CurrentPrice:    parseNumber(row[colCurrentPrice]),
		Price:           parseNumber(row[colPrice]),
		OriginalPrice:   parseNumber(row[colOriginalPrice]),
		Category:        catalog.CategoryFromID(id),
	}
	if p.OriginalPrice > 0 && p.Price > 0 {
		p.DiscountAmount = p.OriginalPrice - p.Price
		p.DiscountPercentage = p.DiscountAmount / p.OriginalPrice * 100
	}
	p.BaseQuantity = p.CurrentQuantity
	p.TotalValue = float64(p.CurrentQuantity) * p.CurrentPrice
	return p, nil
}

func parseNumber(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

func parseInt(s string) int {
	// Quantity cells sometimes carry a float rendering ("3.0").
	return int(parseNumber(s))
}

// ImportFile loads the first sheet of an XLSX workbook into the products
// table, one upsert per row inside a single transaction. Returns how many
// rows imported and how many were skipped.
func ImportFile(ctx context.Context, db *pgxpool.Pool, repo *catalog.Repo, path string) (imported, skipped int, err error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, 0, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, 0, err
	}
	if len(rows) < 2 {
		return 0, 0, fmt.Errorf("sheet %s has no data rows", sheets[0])
	}

	header := rows[0]
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for i, cells := range rows[1:] {
		row := map[string]string{}
		for c, h := range header {
			if c < len(cells) {
				row[strings.TrimSpace(h)] = cells[c]
			}
		}
		p, perr := ParseRow(row)
		if perr != nil {
			skipped++
			log.Printf("skip row %d: %v", i+2, perr)
			continue
		}
		if err := repo.Upsert(ctx, tx, p); err != nil {
			return imported, skipped, fmt.Errorf("row %d: %w", i+2, err)
		}
		imported++
		if imported%100 == 0 {
			log.Printf("processed %d products...", imported)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return imported, skipped, err
	}
	return imported, skipped, nil
}

// Seed inserts the sample products used when no spreadsheet is at hand.
func Seed(ctx context.Context, db *pgxpool.Pool, repo *catalog.Repo) error {
	tx, err := db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, p := range SampleProducts() {
		if err := repo.Upsert(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func SampleProducts() []catalog.Product {
	ps := []catalog.Product{
		{
			ProductID: "250-10-0001-01-00006", Name: "طقم جلوس ميموري", Category: "Furniture",
			Sector: "قطاع الصعيد", WarehouseName: "الفيوم - مفروشات ومراتب",
			CurrentQuantity: 2, CurrentPrice: 868.421, Price: 989.999, OriginalPrice: 1164.706,
		},
		{
			ProductID: "250-10-0001-01-00007", Name: "طقم صدفية 4ق محلي", Category: "Furniture",
			Sector: "قطاع الصعيد", WarehouseName: "المنيا - مفروشات ومراتب",
			CurrentQuantity: 1, CurrentPrice: 592.11, Price: 675.00, OriginalPrice: 794.12,
		},
		{
			ProductID: "250-02-0001-01-00008", Name: "سجادة فارسية كلاسيك", Category: "Carpets",
			Sector: "قطاع الصعيد", WarehouseName: "أسيوط - سجاد ومفروشات",
			CurrentQuantity: 5, CurrentPrice: 1200.00, Price: 1350.00, OriginalPrice: 1500.00,
		},
	}
	for i := range ps {
		p := &ps[i]
		p.DiscountAmount = p.OriginalPrice - p.Price
		p.DiscountPercentage = p.DiscountAmount / p.OriginalPrice * 100
		p.BaseQuantity = p.CurrentQuantity
		p.TotalValue = float64(p.CurrentQuantity) * p.CurrentPrice
	}
	return ps
}
