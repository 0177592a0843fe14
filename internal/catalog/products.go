package catalog

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/shopspring/decimal"
)

// salePrefix is prepended to product names to build their catalog key.
const salePrefix = "achat "

// Product is a row of the gym database product table.
type Product struct {
	Name  string
	Price decimal.Decimal
	Stock int
	Color string
}

// SaleKey is the catalog key the product is sold under.
func (p Product) SaleKey() string {
	return salePrefix + p.Name
}

// LoadProducts reads the product table of the sqlite database at dbPath,
// ordered by color so related products stay together.
func LoadProducts(ctx context.Context, dbPath string) ([]Product, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?mode=ro", dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open products database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to open products database %s: %w", dbPath, err)
	}

	rows, err := db.QueryContext(ctx, "SELECT name, price, stock, color FROM produit ORDER BY color, rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var (
			p     Product
			price float64
			stock sql.NullInt64
			color sql.NullString
		)
		if err := rows.Scan(&p.Name, &price, &stock, &color); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Price = decimal.NewFromFloat(price)
		p.Stock = int(stock.Int64)
		p.Color = color.String
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read products: %w", err)
	}
	return products, nil
}
