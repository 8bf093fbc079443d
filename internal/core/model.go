package core

import "github.com/shopspring/decimal"

// Address holds the delivery address fields of an order. All fields are
// optional; they are only meaningful while the order's delivery flag is on.
type Address struct {
	Street          string `json:"street"`
	Number          string `json:"number"`
	Neighborhood    string `json:"neighborhood"`
	City            string `json:"city"`
	State           string `json:"state"`
	Apartment       bool   `json:"apartment"`
	ApartmentNumber string `json:"numberApartment"`
}

// Customer is a read-model snapshot of a customer record as returned by the
// backend lookup endpoints. Orders hold a denormalized copy of the fields
// they need; the snapshot is never required to match the canonical record
// at save time.
type Customer struct {
	ID        int     `json:"id"`
	Name      string  `json:"name"`
	CellPhone string  `json:"cellPhone"`
	Address   Address `json:"address"`
}

// Category is a product category as the catalog endpoints return it.
// UnitType is the category-wide unit label ("uni", "kg").
type Category struct {
	Name     string `json:"name"`
	UnitType string `json:"unitType"`
}

// Product is a read-model snapshot of a catalog product. Unit and
// CategoryUnit are alternative unit-type sources some backend variants send
// flattened on the product itself; ResolveUnitType picks the winner.
type Product struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	CategoryName string          `json:"categoryName"`
	Category     *Category       `json:"category,omitempty"`
	CategoryUnit string          `json:"categoryUnit,omitempty"`
	Unit         string          `json:"unit,omitempty"`
}

// DefaultUnitType is used when neither the product nor its category carries
// a unit label.
const DefaultUnitType = "uni"

// ResolveUnitType picks the unit-type label for a product by priority:
// category unit type, flattened category unit hint, product-level unit
// field, then DefaultUnitType.
func (p Product) ResolveUnitType() string {
	if p.Category != nil && p.Category.UnitType != "" {
		return p.Category.UnitType
	}
	if p.CategoryUnit != "" {
		return p.CategoryUnit
	}
	if p.Unit != "" {
		return p.Unit
	}
	return DefaultUnitType
}

// Item is one line of an order's ledger. ProductName, UnitType and UnitPrice
// are captured when the item is added and deliberately never re-resolved:
// later catalog edits must not rewrite historical orders.
type Item struct {
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName"`
	UnitType    string          `json:"unitType"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Note        string          `json:"notes"`
}

// LineTotal returns quantity × unit price for this item.
func (it Item) LineTotal() decimal.Decimal {
	return decimal.NewFromInt(int64(it.Quantity)).Mul(it.UnitPrice)
}

// Order is the draft aggregate an editing session mutates in memory. ID zero
// means the order has not been persisted yet. Derived money fields are never
// stored; Totals recomputes them on every read.
type Order struct {
	ID            int             `json:"id"`
	CustomerID    int             `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerCellPhone"`
	IsDelivery    bool            `json:"isDelivery"`
	Address       Address         `json:"address"`
	Ledger        Ledger          `json:"items"`
	Discount      decimal.Decimal `json:"discount"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	Status        Status          `json:"orderStatus"`
	DeliveryDate  string          `json:"deliveryDate"` // YYYY-MM-DD
	DeliveryTime  string          `json:"deliveryTime"` // HH:MM
}

// Totals recomputes the derived money fields from the current state.
func (o *Order) Totals() Totals {
	return ComputeTotals(o.Ledger.Items(), o.Discount, o.DeliveryFee, o.AmountPaid)
}

// OrderFilter narrows the dashboard's order list feed.
type OrderFilter struct {
	Search   string
	Status   Status
	DateFrom string // YYYY-MM-DD
	DateTo   string // YYYY-MM-DD
}

// OrderSummary is one row of the dashboard's order list feed. The list is
// the set batch printing selects from.
type OrderSummary struct {
	ID           int             `json:"id"`
	CustomerName string          `json:"customerName"`
	Status       Status          `json:"orderStatus"`
	DeliveryDate string          `json:"deliveryDate"`
	Total        decimal.Decimal `json:"total"`
}
