package core_test

import (
	"strings"
	"testing"

	"orderdesk/internal/core"
)

func sampleOrder() core.Order {
	var l core.Ledger
	l.AddFromProduct(core.Product{ID: 1, Name: "Bolo de Cenoura", Price: d("35")})
	l.AddFromProduct(core.Product{ID: 1, Name: "Bolo de Cenoura", Price: d("35")})
	l.AddFromProduct(core.Product{ID: 2, Name: "Torta de Limão", Price: d("42.90")})

	return core.Order{
		ID:            12,
		CustomerID:    7,
		CustomerName:  "Maria Silva",
		CustomerPhone: "(11) 98765-4321",
		IsDelivery:    true,
		Address: core.Address{
			Street:          "Rua das Flores",
			Number:          "100",
			Neighborhood:    "Centro",
			City:            "São Paulo",
			State:           "SP",
			Apartment:       true,
			ApartmentNumber: "12B",
		},
		Ledger:       l,
		Discount:     d("5"),
		DeliveryFee:  d("10"),
		AmountPaid:   d("50"),
		Status:       core.StatusConfirmed,
		DeliveryDate: "2026-09-02",
		DeliveryTime: "15:00",
	}
}

func TestBuildUpsert(t *testing.T) {
	o := sampleOrder()
	p := core.BuildUpsert(&o)

	if p.OrderID == nil || *p.OrderID != 12 {
		t.Errorf("OrderID = %v, want 12", p.OrderID)
	}
	if p.CustomerID == nil || *p.CustomerID != 7 {
		t.Errorf("CustomerID = %v, want 7", p.CustomerID)
	}
	if p.Customer.Street != "Rua das Flores" || !p.Customer.Apartment || p.Customer.NumberApartment != "12B" {
		t.Errorf("address not carried: %+v", p.Customer)
	}
	if p.DeliveryDate != "2026-09-02T15:00" {
		t.Errorf("DeliveryDate = %q, want composed instant", p.DeliveryDate)
	}
	if len(p.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(p.Items))
	}
	if p.Items[0].Quantity != 2 || !p.Items[0].UnitPrice.Equal(d("35")) {
		t.Errorf("item snapshot wrong: %+v", p.Items[0])
	}
	if p.OrderStatus != core.StatusConfirmed {
		t.Errorf("status = %q", p.OrderStatus)
	}
}

func TestBuildUpsert_NewPickupOrder(t *testing.T) {
	o := sampleOrder()
	o.ID = 0
	o.CustomerID = 0
	o.IsDelivery = false
	o.DeliveryTime = ""

	p := core.BuildUpsert(&o)

	if p.OrderID != nil {
		t.Errorf("OrderID = %v, want nil for unsaved draft", *p.OrderID)
	}
	if p.CustomerID != nil {
		t.Errorf("CustomerID = %v, want nil for manual customer", *p.CustomerID)
	}
	if p.Customer.Street != "" || p.Customer.City != "" {
		t.Errorf("pickup payload carries address: %+v", p.Customer)
	}
	if p.DeliveryDate != "" {
		t.Errorf("DeliveryDate = %q, want empty without a time", p.DeliveryDate)
	}
}

func TestPrintSelections(t *testing.T) {
	o := sampleOrder()
	sel := core.SinglePrintSelection(&o, true)
	if len(sel.IDs) != 1 || sel.IDs[0] != 12 || !sel.Kitchen {
		t.Errorf("selection = %+v", sel)
	}

	o.ID = 0
	sel = core.SinglePrintSelection(&o, false)
	if len(sel.IDs) != 0 {
		t.Errorf("unsaved draft selection = %+v, want empty preview", sel)
	}

	sel, err := core.FilteredPrintSelection([]int{3, 0, 9}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sel.IDs) != 2 || sel.IDs[0] != 3 || sel.IDs[1] != 9 {
		t.Errorf("filtered selection = %+v", sel)
	}

	if _, err := core.FilteredPrintSelection([]int{0, 0}, false); !core.IsValidation(err) {
		t.Errorf("expected ValidationError for empty selection, got %v", err)
	}
}

func TestComposeMessage(t *testing.T) {
	o := sampleOrder()
	got, err := core.ComposeMessage(&o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Join([]string{
		"*Pedido Confirmado #12*",
		"",
		"*Cliente:* Maria Silva - 11987654321",
		"",
		"*Itens*",
		"2x Bolo de Cenoura - R$ 70,00",
		"1x Torta de Limão - R$ 42,90",
		"",
		"*Subtotal:* 112,90",
		"*Taxa de entrega:* 10,00",
		"*Desconto:* 5,00",
		"*Pago:* 50,00",
		"*Total:* 117,90",
		"",
		"*Falta Pagar:* R$ 67,90",
		"",
		"*Tipo Entrega:* Entrega",
		"*Endereço:* Rua das Flores, Número 100, Condomínio 12B",
	}, "\n")

	if got != want {
		t.Errorf("message mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestComposeMessage_Pickup(t *testing.T) {
	o := sampleOrder()
	o.ID = 0
	o.IsDelivery = false
	o.AmountPaid = d("0")
	o.Discount = d("0")
	o.DeliveryFee = d("0")

	got, err := core.ComposeMessage(&o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "#") {
		t.Error("unsaved order message carries an id")
	}
	if strings.Contains(got, "Falta Pagar") {
		t.Error("message carries remaining line without a payment")
	}
	if strings.Contains(got, "Taxa de entrega") || strings.Contains(got, "Desconto") {
		t.Error("message carries zero-valued adjustment lines")
	}
	if !strings.HasSuffix(got, "*Tipo Entrega:* Retirada") {
		t.Errorf("pickup message ending wrong:\n%s", got)
	}
}

func TestComposeMessage_FullyPaidOmitsRemaining(t *testing.T) {
	o := sampleOrder()
	o.AmountPaid = d("117.90")

	got, err := core.ComposeMessage(&o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, "Falta Pagar") {
		t.Error("fully paid message still carries the remaining line")
	}
}

func TestComposeMessage_NoteAndPhoneHandling(t *testing.T) {
	o := sampleOrder()
	note := "sem cobertura"
	if err := o.Ledger.UpdateItem(0, core.ItemPatch{Note: &note}); err != nil {
		t.Fatal(err)
	}
	got, err := core.ComposeMessage(&o)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "2x Bolo de Cenoura - R$ 70,00 (sem cobertura)") {
		t.Errorf("note not rendered:\n%s", got)
	}

	o.CustomerPhone = "sem telefone"
	if _, err := core.ComposeMessage(&o); !core.IsValidation(err) {
		t.Errorf("expected ValidationError without phone digits, got %v", err)
	}
}
