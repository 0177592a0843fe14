// Package models provides the register's value types: payment modalities, line
// items and transactions, plus the amount rounding policy.
package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/Jeremy009/BMC/internal/registererror"

	"github.com/shopspring/decimal"
)

// PriceList is the read-only catalog view a transaction is priced against.
type PriceList interface {
	// Seed returns every catalog item, in catalog order, with a zero quantity.
	Seed() []LineItem
	// Lookup returns the unit price of key and whether key admits a client.
	Lookup(key string) (price decimal.Decimal, entry bool, ok bool)
}

// LineItem is one kind of thing sold in a transaction.
// UnitPrice is fixed when the item is first added to the transaction.
type LineItem struct {
	Key       string
	Quantity  int
	UnitPrice decimal.Decimal
}

// Subtotal is Quantity * UnitPrice.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Transaction is one sale or cash operation.
//
// Value equals the sum of the line item subtotals until a reduction is applied;
// after that Value is scaled on its own and no longer follows from the items.
type Transaction struct {
	ID               string
	Value            decimal.Decimal
	ClientCount      int
	Modality         Modality
	Items            []LineItem
	ReductionApplied bool
	ValidatedAt      time.Time
}

// NewTransaction returns an empty transaction. With a price list, every catalog
// item is present with a zero quantity so details and reports follow catalog order.
func NewTransaction(prices PriceList) *Transaction {
	t := &Transaction{Value: decimal.Zero}
	if prices != nil {
		t.Items = prices.Seed()
	}
	return t
}

// NewManualTransaction builds an off-catalog operation (cash drop, correction, ...)
// holding a single line item of quantity one. The value may be negative.
func NewManualTransaction(description string, value decimal.Decimal, clientCount int, modality Modality) *Transaction {
	return &Transaction{
		Value:       value,
		ClientCount: clientCount,
		Modality:    modality,
		Items:       []LineItem{{Key: description, Quantity: 1, UnitPrice: value}},
	}
}

// Update adds one unit of the catalog item key. Entry items also count one client.
// The transaction is left unchanged when key is not in the price list.
func (t *Transaction) Update(prices PriceList, key string) error {
	price, entry, ok := prices.Lookup(key)
	if !ok {
		return &registererror.UnknownTransactionTypeError{Key: key}
	}

	idx := t.indexOf(key)
	if idx < 0 {
		t.Items = append(t.Items, LineItem{Key: key, UnitPrice: price})
		idx = len(t.Items) - 1
	}
	t.Items[idx].Quantity++
	t.Value = t.Value.Add(t.Items[idx].UnitPrice)
	if entry {
		t.ClientCount++
	}
	return nil
}

// ApplyReduction scales Value by factor using the ReductionPlaces rounding policy.
// Only the first call has an effect; it reports whether the reduction was applied.
func (t *Transaction) ApplyReduction(factor decimal.Decimal) bool {
	if t.ReductionApplied {
		return false
	}
	t.Value = ReduceAmount(t.Value, factor)
	t.ReductionApplied = true
	return true
}

// Merge combines t and other into a new transaction: values and client counts
// are summed, the modality becomes ModalityMultiple and line items are united
// with quantities summed.
//
// For a key present on both sides the unit price of other wins. Merging is
// therefore not commutative on prices when the same key was sold at two
// different prices; sums are unaffected.
func (t *Transaction) Merge(other *Transaction) *Transaction {
	merged := &Transaction{
		Value:       t.Value.Add(other.Value),
		ClientCount: t.ClientCount + other.ClientCount,
		Modality:    ModalityMultiple,
		Items:       make([]LineItem, 0, len(t.Items)+len(other.Items)),
	}

	var uniqueSelf []LineItem
	for _, item := range t.Items {
		if j := other.indexOf(item.Key); j >= 0 {
			merged.Items = append(merged.Items, LineItem{
				Key:       item.Key,
				Quantity:  item.Quantity + other.Items[j].Quantity,
				UnitPrice: other.Items[j].UnitPrice,
			})
		} else {
			uniqueSelf = append(uniqueSelf, item)
		}
	}
	merged.Items = append(merged.Items, uniqueSelf...)
	for _, item := range other.Items {
		if t.indexOf(item.Key) < 0 {
			merged.Items = append(merged.Items, item)
		}
	}
	return merged
}

// Aggregate folds transactions into one summary transaction, starting from seed
// (usually NewTransaction(catalog) so catalog order is kept). A nil seed starts
// from an empty transaction. Fold order matters only for price tie-breaks, see Merge.
func Aggregate(seed *Transaction, transactions []*Transaction) *Transaction {
	result := seed
	if result == nil {
		result = NewTransaction(nil)
	} else {
		result = result.Clone()
	}
	for _, t := range transactions {
		result = result.Merge(t)
	}
	return result
}

// SoldItems returns the line items with a positive quantity, in order.
func (t *Transaction) SoldItems() []LineItem {
	var sold []LineItem
	for _, item := range t.Items {
		if item.Quantity > 0 {
			sold = append(sold, item)
		}
	}
	return sold
}

// ItemsTotal is the sum of the line item subtotals.
func (t *Transaction) ItemsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range t.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Details lists the sold items, one "<quantity> x <key>" per line.
func (t *Transaction) Details() string {
	var sb strings.Builder
	for _, item := range t.SoldItems() {
		fmt.Fprintf(&sb, "%d x %s\n", item.Quantity, item.Key)
	}
	return sb.String()
}

// Clone returns a deep copy.
func (t *Transaction) Clone() *Transaction {
	c := *t
	c.Items = append([]LineItem(nil), t.Items...)
	return &c
}

func (t *Transaction) indexOf(key string) int {
	for i, item := range t.Items {
		if item.Key == key {
			return i
		}
	}
	return -1
}
