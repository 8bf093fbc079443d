package core

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Ledger is the ordered list of line items on a draft order. Items are keyed
// by product id: adding a product that is already present increments its
// quantity instead of appending a duplicate row. Insertion order is
// preserved; the ledger is never sorted.
//
// The ledger is mutated synchronously by its owning session and has no
// internal locking.
type Ledger struct {
	items []Item
}

// ItemPatch is a partial update for one ledger item. Nil fields are left
// untouched. Quantity and price are not clamped here — validation happens at
// save time.
type ItemPatch struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
	Note      *string
}

// NewLedger builds a ledger from existing items (hydrating an order fetch).
func NewLedger(items []Item) Ledger {
	return Ledger{items: append([]Item(nil), items...)}
}

// AddFromProduct adds a product to the ledger. If an item with the same
// product id exists its quantity is incremented by one; otherwise a new item
// is appended with quantity 1 and the product's current price and unit type
// captured as a snapshot.
func (l *Ledger) AddFromProduct(p Product) {
	for i := range l.items {
		if l.items[i].ProductID == p.ID {
			l.items[i].Quantity++
			return
		}
	}
	l.items = append(l.items, Item{
		ProductID:   p.ID,
		ProductName: p.Name,
		UnitType:    p.ResolveUnitType(),
		Quantity:    1,
		UnitPrice:   p.Price,
		Note:        "",
	})
}

// UpdateItem merges patch into the item at the given position.
func (l *Ledger) UpdateItem(index int, patch ItemPatch) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("item index %d out of range (ledger has %d items)", index, len(l.items))
	}
	it := &l.items[index]
	if patch.Quantity != nil {
		it.Quantity = *patch.Quantity
	}
	if patch.UnitPrice != nil {
		it.UnitPrice = *patch.UnitPrice
	}
	if patch.Note != nil {
		it.Note = *patch.Note
	}
	return nil
}

// RemoveItem deletes the item at the given position. Items are only ever
// removed explicitly; no operation drops them as a side effect.
func (l *Ledger) RemoveItem(index int) error {
	if index < 0 || index >= len(l.items) {
		return fmt.Errorf("item index %d out of range (ledger has %d items)", index, len(l.items))
	}
	l.items = append(l.items[:index], l.items[index+1:]...)
	return nil
}

// Items returns a copy of the ledger rows in insertion order. The value
// receiver keeps it callable on ledgers returned by value, order snapshots
// included.
func (l Ledger) Items() []Item {
	return append([]Item(nil), l.items...)
}

// Len returns the number of rows.
func (l Ledger) Len() int { return len(l.items) }

// MarshalJSON renders the ledger as a plain item array.
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.items)
}

// UnmarshalJSON hydrates the ledger from a plain item array.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	l.items = items
	return nil
}
