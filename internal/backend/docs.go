package backend

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/core"
)

// customerDoc tolerates the two address shapes the customer endpoints send:
// a nested address object or the fields flattened onto the record.
type customerDoc struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	CellPhone string        `json:"cellPhone"`
	Address   *core.Address `json:"address"`

	Street          string `json:"street"`
	Number          string `json:"number"`
	Neighborhood    string `json:"neighborhood"`
	City            string `json:"city"`
	State           string `json:"state"`
	Apartment       bool   `json:"apartment"`
	ApartmentNumber string `json:"numberApartment"`
}

func (d customerDoc) toCustomer() core.Customer {
	c := core.Customer{ID: d.ID, Name: d.Name, CellPhone: d.CellPhone}
	if d.Address != nil {
		c.Address = *d.Address
	} else {
		c.Address = core.Address{
			Street:          d.Street,
			Number:          d.Number,
			Neighborhood:    d.Neighborhood,
			City:            d.City,
			State:           d.State,
			Apartment:       d.Apartment,
			ApartmentNumber: d.ApartmentNumber,
		}
	}
	return c
}

// itemDoc tolerates the quantity/price/note field variants order responses
// have been observed to carry.
type itemDoc struct {
	ProductID   int             `json:"productId"`
	ProductName string          `json:"productName"`
	Name        string          `json:"name"`
	Quantity    int             `json:"quantity"`
	Qty         int             `json:"qty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Price       decimal.Decimal `json:"price"`
	UnitType    string          `json:"unitType"`
	Unit        string          `json:"unit"`
	Notes       string          `json:"notes"`
	Note        string          `json:"note"`
}

func (d itemDoc) toItem() core.Item {
	it := core.Item{
		ProductID:   d.ProductID,
		ProductName: d.ProductName,
		Quantity:    d.Quantity,
		UnitPrice:   d.UnitPrice,
		UnitType:    d.UnitType,
		Note:        d.Notes,
	}
	if it.ProductName == "" {
		it.ProductName = d.Name
	}
	if it.Quantity == 0 {
		it.Quantity = d.Qty
	}
	if it.Quantity == 0 {
		it.Quantity = 1
	}
	if it.UnitPrice.IsZero() && !d.Price.IsZero() {
		it.UnitPrice = d.Price
	}
	if it.UnitType == "" {
		it.UnitType = d.Unit
	}
	if it.UnitType == "" {
		it.UnitType = core.DefaultUnitType
	}
	if it.Note == "" {
		it.Note = d.Note
	}
	return it
}

// orderDoc is the full order record as the fetch and upsert endpoints return
// it, with address fields either nested or flattened.
type orderDoc struct {
	ID            int             `json:"id"`
	CustomerID    int             `json:"customerId"`
	CustomerName  string          `json:"customerName"`
	CustomerPhone string          `json:"customerCellPhone"`
	CellPhone     string          `json:"cellPhone"`
	IsDelivery    bool            `json:"isDelivery"`
	Address       *core.Address   `json:"address"`
	Street        string          `json:"street"`
	Number        string          `json:"number"`
	Neighborhood  string          `json:"neighborhood"`
	City          string          `json:"city"`
	State         string          `json:"state"`
	Apartment     bool            `json:"apartment"`
	NumberApt     string          `json:"numberApartment"`
	Items         []itemDoc       `json:"items"`
	Discount      decimal.Decimal `json:"discount"`
	DeliveryFee   decimal.Decimal `json:"deliveryFee"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	OrderStatus   string          `json:"orderStatus"`
	Status        string          `json:"status"`
	DeliveryDate  string          `json:"deliveryDate"`
}

func (d orderDoc) toOrder(log *zap.Logger) core.Order {
	o := core.Order{
		ID:            d.ID,
		CustomerID:    d.CustomerID,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
		IsDelivery:    d.IsDelivery,
		Discount:      d.Discount,
		DeliveryFee:   d.DeliveryFee,
		AmountPaid:    d.AmountPaid,
	}
	if o.CustomerPhone == "" {
		o.CustomerPhone = d.CellPhone
	}

	if d.Address != nil {
		o.Address = *d.Address
	} else {
		o.Address = core.Address{
			Street:          d.Street,
			Number:          d.Number,
			Neighborhood:    d.Neighborhood,
			City:            d.City,
			State:           d.State,
			Apartment:       d.Apartment,
			ApartmentNumber: d.NumberApt,
		}
	}

	items := make([]core.Item, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, it.toItem())
	}
	o.Ledger = core.NewLedger(items)

	raw := d.OrderStatus
	if raw == "" {
		raw = d.Status
	}
	status, err := core.ParseStatus(raw)
	if err != nil {
		log.Warn("unknown order status in backend response, defaulting",
			zap.String("status", raw), zap.Int("order_id", d.ID))
		status = core.StatusPlaced
	}
	o.Status = status

	if d.DeliveryDate != "" {
		if t, err := core.ParseBackendDateTime(d.DeliveryDate); err == nil {
			o.DeliveryDate = t.Format("2006-01-02")
			o.DeliveryTime = t.Format("15:04")
		} else {
			log.Warn("unparseable delivery date in backend response",
				zap.String("deliveryDate", d.DeliveryDate), zap.Int("order_id", d.ID))
		}
	}
	return o
}
