// Package catalog holds the pricing catalog a register session sells from.
//
// A catalog is built once, from a YAML file and optionally the product table of
// the gym database, and is read-only afterwards. Item order is preserved: it is
// the order line items appear in details strings and daily reports.
package catalog

import (
	"fmt"
	"strings"

	"github.com/Jeremy009/BMC/internal/models"

	"github.com/shopspring/decimal"
)

// Section groups catalog items. Only entries admit clients.
type Section string

const (
	SectionEntries Section = "entries"
	SectionRentals Section = "rentals"
	SectionSales   Section = "sales"
)

// Sections lists the sections in catalog order.
var Sections = []Section{SectionEntries, SectionRentals, SectionSales}

// Item is one sellable catalog entry.
type Item struct {
	Key     string
	Price   decimal.Decimal
	Section Section
}

// Catalog is an ordered, immutable set of items with unique keys.
type Catalog struct {
	items []Item
	index map[string]int
}

// New builds a catalog from its three sections. Keys must be unique across
// sections and prices must not be negative.
func New(entries, rentals, sales []Item) (*Catalog, error) {
	c := &Catalog{index: make(map[string]int)}
	for _, group := range []struct {
		section Section
		items   []Item
	}{
		{SectionEntries, entries},
		{SectionRentals, rentals},
		{SectionSales, sales},
	} {
		for _, item := range group.items {
			key := strings.TrimSpace(item.Key)
			if key == "" {
				return nil, fmt.Errorf("catalog %s: empty item key", group.section)
			}
			if _, dup := c.index[key]; dup {
				return nil, fmt.Errorf("catalog %s: duplicate item key '%s'", group.section, key)
			}
			if item.Price.IsNegative() {
				return nil, fmt.Errorf("catalog %s: negative price for '%s'", group.section, key)
			}
			c.index[key] = len(c.items)
			c.items = append(c.items, Item{Key: key, Price: item.Price, Section: group.section})
		}
	}
	return c, nil
}

// Seed implements models.PriceList.
func (c *Catalog) Seed() []models.LineItem {
	seed := make([]models.LineItem, len(c.items))
	for i, item := range c.items {
		seed[i] = models.LineItem{Key: item.Key, UnitPrice: item.Price}
	}
	return seed
}

// Lookup implements models.PriceList.
func (c *Catalog) Lookup(key string) (decimal.Decimal, bool, bool) {
	i, ok := c.index[key]
	if !ok {
		return decimal.Zero, false, false
	}
	item := c.items[i]
	return item.Price, item.Section == SectionEntries, true
}

// Items returns a copy of all items in catalog order.
func (c *Catalog) Items() []Item {
	return append([]Item(nil), c.items...)
}

// Section returns the items of one section in catalog order.
func (c *Catalog) Section(s Section) []Item {
	var out []Item
	for _, item := range c.items {
		if item.Section == s {
			out = append(out, item)
		}
	}
	return out
}

// Len returns the number of items.
func (c *Catalog) Len() int {
	return len(c.items)
}
