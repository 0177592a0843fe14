package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Jeremy009/BMC/internal/logging"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// fileItem is the YAML shape of a catalog item.
type fileItem struct {
	Key   string  `yaml:"key"`
	Price float64 `yaml:"price"`
}

// fileFormat is the YAML shape of the catalog file.
type fileFormat struct {
	Entries []fileItem `yaml:"entries"`
	Rentals []fileItem `yaml:"rentals"`
	Sales   []fileItem `yaml:"sales"`
}

// Loader builds catalogs from the configured sources.
type Loader struct {
	File       string
	ProductsDB string
	logger     logging.Logger
}

// NewLoader creates a loader for a catalog file and an optional products database.
func NewLoader(file, productsDB string, logger logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Loader{File: file, ProductsDB: productsDB, logger: logger}
}

// FindFile looks for the catalog file as given, then under ./config and
// $HOME/.bmc-register.
func FindFile(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err != nil {
			return "", err
		}
		return filename, nil
	}

	locations := []string{
		filename,
		filepath.Join("config", filename),
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".bmc-register", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", fmt.Errorf("catalog file %s: %w", filename, os.ErrNotExist)
}

// Load reads the catalog file and, when a products database is configured,
// appends every product to the sales section as "achat <name>".
func (l *Loader) Load(ctx context.Context) (*Catalog, error) {
	path, err := FindFile(l.File)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading catalog file: %w", err)
	}
	entries, rentals, sales, err := parseFile(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing catalog file %s: %w", path, err)
	}

	if l.ProductsDB != "" {
		products, err := LoadProducts(ctx, l.ProductsDB)
		if err != nil {
			return nil, err
		}
		for _, p := range products {
			sales = append(sales, Item{Key: p.SaleKey(), Price: p.Price})
		}
		l.logger.Debug("Loaded products",
			logging.F(logging.FieldCount, len(products)),
			logging.F("products_db", l.ProductsDB))
	}

	c, err := New(entries, rentals, sales)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Loaded catalog",
		logging.F(logging.FieldCatalogFile, path),
		logging.F(logging.FieldCount, c.Len()))
	return c, nil
}

// Parse builds a catalog from YAML data alone.
func Parse(data []byte) (*Catalog, error) {
	entries, rentals, sales, err := parseFile(data)
	if err != nil {
		return nil, err
	}
	return New(entries, rentals, sales)
}

func parseFile(data []byte) (entries, rentals, sales []Item, err error) {
	var f fileFormat
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, nil, nil, err
	}
	return toItems(f.Entries), toItems(f.Rentals), toItems(f.Sales), nil
}

func toItems(in []fileItem) []Item {
	out := make([]Item, 0, len(in))
	for _, fi := range in {
		out = append(out, Item{Key: fi.Key, Price: decimal.NewFromFloat(fi.Price)})
	}
	return out
}
