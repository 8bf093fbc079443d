package core

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// UpsertCustomer is the nested customer block of the upsert payload. It
// carries the order's denormalized snapshot, not a reference to the
// canonical record.
type UpsertCustomer struct {
	Name            string `json:"Name"`
	CellPhone       string `json:"CellPhone,omitempty"`
	Street          string `json:"Street,omitempty"`
	Number          string `json:"Number,omitempty"`
	Neighborhood    string `json:"Neighborhood,omitempty"`
	City            string `json:"City,omitempty"`
	State           string `json:"State,omitempty"`
	Apartment       bool   `json:"Apartment"`
	NumberApartment string `json:"NumberApartment,omitempty"`
}

// UpsertItem is one line of the upsert payload.
type UpsertItem struct {
	ProductID   int             `json:"ProductId"`
	ProductName string          `json:"ProductName"`
	UnitPrice   decimal.Decimal `json:"UnitPrice"`
	Quantity    int             `json:"Quantity"`
	Notes       string          `json:"Notes"`
}

// UpsertPayload is the full snapshot the backend's upsert endpoint accepts.
// OrderID is present only when editing an existing order.
type UpsertPayload struct {
	OrderID        *int            `json:"OrderId,omitempty"`
	CustomerID     *int            `json:"CustomerId,omitempty"`
	Customer       UpsertCustomer  `json:"Customer"`
	Discount       decimal.Decimal `json:"Discount"`
	IsDelivery     bool            `json:"IsDelivery"`
	DeliveryFee    decimal.Decimal `json:"DeliveryFee"`
	AmountPaid     decimal.Decimal `json:"AmountPaid"`
	Items          []UpsertItem    `json:"Items"`
	DeliveryDate   string          `json:"DeliveryDate,omitempty"` // YYYY-MM-DDTHH:MM
	OrderStatus    Status          `json:"OrderStatus"`
	IdempotencyKey string          `json:"IdempotencyKey,omitempty"`
}

// BuildUpsert renders the draft into the persistence payload. Address fields
// are included only while the delivery flag is on.
func BuildUpsert(o *Order) UpsertPayload {
	p := UpsertPayload{
		Customer: UpsertCustomer{
			Name:      strings.TrimSpace(o.CustomerName),
			CellPhone: o.CustomerPhone,
		},
		Discount:    o.Discount,
		IsDelivery:  o.IsDelivery,
		DeliveryFee: o.DeliveryFee,
		AmountPaid:  o.AmountPaid,
		OrderStatus: o.Status,
	}
	if o.ID != 0 {
		id := o.ID
		p.OrderID = &id
	}
	if o.CustomerID != 0 {
		cid := o.CustomerID
		p.CustomerID = &cid
	}
	if o.IsDelivery {
		p.Customer.Street = o.Address.Street
		p.Customer.Number = o.Address.Number
		p.Customer.Neighborhood = o.Address.Neighborhood
		p.Customer.City = o.Address.City
		p.Customer.State = o.Address.State
		p.Customer.Apartment = o.Address.Apartment
		p.Customer.NumberApartment = o.Address.ApartmentNumber
	}
	if o.DeliveryDate != "" && o.DeliveryTime != "" {
		p.DeliveryDate = o.DeliveryDate + "T" + o.DeliveryTime
	}
	items := o.Ledger.Items()
	p.Items = make([]UpsertItem, 0, len(items))
	for _, it := range items {
		p.Items = append(p.Items, UpsertItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
			Notes:       it.Note,
		})
	}
	return p
}

// PrintSelection names which persisted orders the external print service
// should render. Rendering is entirely the print service's job; the
// composer only selects ids. An empty id list means a preview of the
// not-yet-saved draft.
type PrintSelection struct {
	IDs     []int
	Kitchen bool
}

// SinglePrintSelection selects one order for printing. An unsaved draft
// yields an empty selection (preview).
func SinglePrintSelection(o *Order, kitchen bool) PrintSelection {
	s := PrintSelection{Kitchen: kitchen}
	if o.ID != 0 {
		s.IDs = []int{o.ID}
	}
	return s
}

// FilteredPrintSelection selects the currently visible order set for batch
// printing, skipping unpersisted ids.
func FilteredPrintSelection(ids []int, kitchen bool) (PrintSelection, error) {
	s := PrintSelection{Kitchen: kitchen}
	for _, id := range ids {
		if id != 0 {
			s.IDs = append(s.IDs, id)
		}
	}
	if len(s.IDs) == 0 {
		return PrintSelection{}, NewValidationError("orders", "no persisted orders to print")
	}
	return s, nil
}

// ComposeMessage renders the aggregate as the customer-facing plain-text
// message. The phone snapshot must already hold at least one digit — callers
// run the fallback customer fetch first — otherwise composition is refused:
// a message with no recipient is useless.
func ComposeMessage(o *Order) (string, error) {
	phone := DigitsOnly(o.CustomerPhone)
	if phone == "" {
		return "", NewValidationError("customerCellPhone", "customer phone is not available for messaging")
	}

	name := strings.TrimSpace(o.CustomerName)
	if name == "" {
		name = "Cliente"
	}
	idLabel := ""
	if o.ID != 0 {
		idLabel = fmt.Sprintf(" #%d", o.ID)
	}

	t := o.Totals()

	var b strings.Builder
	fmt.Fprintf(&b, "*%s%s*\n\n", o.Status.Label(), idLabel)
	fmt.Fprintf(&b, "*Cliente:* %s - %s\n\n", name, phone)

	b.WriteString("*Itens*\n")
	for _, it := range o.Ledger.Items() {
		fmt.Fprintf(&b, "%dx %s - R$ %s", it.Quantity, it.ProductName, FormatMoney(it.LineTotal()))
		if it.Note != "" {
			fmt.Fprintf(&b, " (%s)", it.Note)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n*Subtotal:* %s\n", FormatMoney(t.Subtotal))
	if o.DeliveryFee.IsPositive() {
		fmt.Fprintf(&b, "*Taxa de entrega:* %s\n", FormatMoney(o.DeliveryFee))
	}
	if o.Discount.IsPositive() {
		fmt.Fprintf(&b, "*Desconto:* %s\n", FormatMoney(o.Discount))
	}
	if o.AmountPaid.IsPositive() {
		fmt.Fprintf(&b, "*Pago:* %s\n", FormatMoney(o.AmountPaid))
	}
	fmt.Fprintf(&b, "*Total:* %s\n\n", FormatMoney(t.Total))

	// Remaining balance only when a partial payment exists.
	if o.AmountPaid.IsPositive() && t.Remaining.IsPositive() {
		fmt.Fprintf(&b, "*Falta Pagar:* R$ %s\n\n", FormatMoney(t.Remaining))
	}

	if o.IsDelivery {
		b.WriteString("*Tipo Entrega:* Entrega")
		var parts []string
		if o.Address.Street != "" {
			parts = append(parts, o.Address.Street)
		}
		if o.Address.Number != "" {
			parts = append(parts, "Número "+o.Address.Number)
		}
		if o.Address.Apartment && o.Address.ApartmentNumber != "" {
			parts = append(parts, "Condomínio "+o.Address.ApartmentNumber)
		}
		if len(parts) > 0 {
			fmt.Fprintf(&b, "\n*Endereço:* %s", strings.Join(parts, ", "))
		}
	} else {
		b.WriteString("*Tipo Entrega:* Retirada")
	}

	return b.String(), nil
}
