package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/adapters/web"
	"orderdesk/internal/app"
	"orderdesk/internal/core"
)

// stubBackend is the minimal in-memory backend the handler tests drive.
type stubBackend struct {
	customers map[int]core.Customer
	products  []core.Product
	summaries []core.OrderSummary
	saved     *core.Order

	mu            sync.Mutex
	searchCtxErrs []error
}

func (s *stubBackend) SearchCustomers(ctx context.Context, query string) ([]core.Customer, error) {
	var out []core.Customer
	for _, c := range s.customers {
		out = append(out, c)
	}
	return out, nil
}

func (s *stubBackend) SearchProducts(ctx context.Context, query string) ([]core.Product, error) {
	s.mu.Lock()
	s.searchCtxErrs = append(s.searchCtxErrs, ctx.Err())
	s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.products, nil
}

func (s *stubBackend) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	return nil, nil
}

func (s *stubBackend) ListProducts(ctx context.Context) ([]core.Product, error) {
	return s.products, nil
}

func (s *stubBackend) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return nil, &core.LookupFailure{Op: "customer", Err: fmt.Errorf("not found")}
	}
	return &c, nil
}

func (s *stubBackend) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	return nil, &core.LookupFailure{Op: "order", Err: fmt.Errorf("not found")}
}

func (s *stubBackend) ListOrders(ctx context.Context, f core.OrderFilter) ([]core.OrderSummary, error) {
	return s.summaries, nil
}

func (s *stubBackend) UpsertOrder(ctx context.Context, payload core.UpsertPayload) (*core.Order, error) {
	o := core.Order{
		ID:            77,
		CustomerName:  payload.Customer.Name,
		CustomerPhone: payload.Customer.CellPhone,
		Status:        payload.OrderStatus,
		IsDelivery:    payload.IsDelivery,
	}
	if payload.CustomerID != nil {
		o.CustomerID = *payload.CustomerID
	}
	items := make([]core.Item, 0, len(payload.Items))
	for _, it := range payload.Items {
		items = append(items, core.Item{
			ProductID: it.ProductID, ProductName: it.ProductName,
			Quantity: it.Quantity, UnitPrice: it.UnitPrice,
		})
	}
	o.Ledger = core.NewLedger(items)
	s.saved = &o
	return &o, nil
}

func (s *stubBackend) PrintURL(sel core.PrintSelection) string {
	return fmt.Sprintf("print:%v:kitchen=%v", sel.IDs, sel.Kitchen)
}

func (s *stubBackend) MessageURL(phoneDigits, body string) string {
	return "msg:" + phoneDigits
}

var _ app.Backend = (*stubBackend)(nil)

type sessionView struct {
	Token   string      `json:"token"`
	Editing bool        `json:"editing"`
	Order   core.Order  `json:"order"`
	Totals  core.Totals `json:"totals"`
}

func newTestHandler(b *stubBackend) http.Handler {
	svc := app.NewService(b, 0, zap.NewNop())
	return web.NewHandler(svc, "", zap.NewNop())
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeView(t *testing.T, rec *httptest.ResponseRecorder) sessionView {
	t.Helper()
	var v sessionView
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode view: %v (%s)", err, rec.Body.String())
	}
	return v
}

func TestHandler_OrderLifecycle(t *testing.T) {
	b := &stubBackend{
		customers: map[int]core.Customer{7: {
			ID: 7, Name: "Maria Silva", CellPhone: "11988887777",
			Address: core.Address{Street: "Rua das Flores", Number: "100"},
		}},
	}
	h := newTestHandler(b)

	// Open a blank session.
	rec := doJSON(t, h, http.MethodPost, "/api/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("create session: %d %s", rec.Code, rec.Body.String())
	}
	view := decodeView(t, rec)
	if view.Token == "" || view.Editing {
		t.Fatalf("unexpected initial view: %+v", view)
	}
	base := "/api/sessions/" + view.Token

	// Select the customer; the address cascade runs inline.
	rec = doJSON(t, h, http.MethodPost, base+"/customer", core.Customer{ID: 7, Name: "Maria Silva"})
	view = decodeView(t, rec)
	if view.Order.Address.Street != "Rua das Flores" {
		t.Errorf("cascade missing: %+v", view.Order.Address)
	}

	// Add an item and adjust financials.
	rec = doJSON(t, h, http.MethodPost, base+"/items", core.Product{ID: 1, Name: "Bolo", Price: decimal.NewFromInt(35)})
	view = decodeView(t, rec)
	if view.Order.Ledger.Len() != 1 {
		t.Fatalf("item not added: %+v", view.Order)
	}

	discount := decimal.NewFromInt(5)
	rec = doJSON(t, h, http.MethodPut, base+"/financials", map[string]any{"discount": discount})
	view = decodeView(t, rec)
	if !view.Totals.Total.Equal(decimal.NewFromInt(30)) {
		t.Errorf("total = %s, want 30", view.Totals.Total)
	}

	// Slot in the future, then save.
	tomorrow := time.Now().Add(24 * time.Hour).Format("2006-01-02")
	doJSON(t, h, http.MethodPut, base+"/slot", map[string]string{"date": tomorrow, "time": "12:00"})

	rec = doJSON(t, h, http.MethodPost, base+"/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save: %d %s", rec.Code, rec.Body.String())
	}
	view = decodeView(t, rec)
	if view.Order.ID != 77 || !view.Editing {
		t.Errorf("post-save view: %+v", view)
	}
	if b.saved == nil || len(b.saved.Ledger.Items()) != 1 {
		t.Errorf("backend did not receive the order")
	}

	// Message endpoint returns body and target.
	rec = doJSON(t, h, http.MethodGet, base+"/message", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("message: %d %s", rec.Code, rec.Body.String())
	}
	var msg map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &msg); err != nil {
		t.Fatal(err)
	}
	if msg["url"] != "msg:11988887777" {
		t.Errorf("message url = %q", msg["url"])
	}

	// Print endpoint uses the persisted id.
	rec = doJSON(t, h, http.MethodGet, base+"/print-url?kitchen=true", nil)
	var pr map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &pr); err != nil {
		t.Fatal(err)
	}
	if pr["url"] != "print:[77]:kitchen=true" {
		t.Errorf("print url = %q", pr["url"])
	}
}

func TestHandler_ValidationErrorsMapTo422(t *testing.T) {
	h := newTestHandler(&stubBackend{})

	rec := doJSON(t, h, http.MethodPost, "/api/sessions", nil)
	view := decodeView(t, rec)
	base := "/api/sessions/" + view.Token

	// Saving an empty draft fails validation.
	rec = doJSON(t, h, http.MethodPost, base+"/save", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("save status = %d, want 422", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["code"] != "VALIDATION" {
		t.Errorf("code = %q", resp["code"])
	}
}

func TestHandler_UnknownSessionIs404(t *testing.T) {
	h := newTestHandler(&stubBackend{})
	rec := doJSON(t, h, http.MethodGet, "/api/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_BadStatusRejected(t *testing.T) {
	h := newTestHandler(&stubBackend{})
	rec := doJSON(t, h, http.MethodPost, "/api/sessions", nil)
	view := decodeView(t, rec)

	rec = doJSON(t, h, http.MethodPut, "/api/sessions/"+view.Token+"/status",
		map[string]string{"status": "Shipped"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_DebouncedSearchOutlivesRequest(t *testing.T) {
	b := &stubBackend{products: []core.Product{{ID: 1, Name: "Bolo de Cenoura", Price: decimal.NewFromInt(35)}}}
	svc := app.NewService(b, 20*time.Millisecond, zap.NewNop())
	h := web.NewHandler(svc, "", zap.NewNop())

	rec := doJSON(t, h, http.MethodPost, "/api/sessions", nil)
	view := decodeView(t, rec)
	base := "/api/sessions/" + view.Token

	// The handler returns before the debounce elapses; the deferred lookup
	// must still run against a live context.
	doJSON(t, h, http.MethodPost, base+"/product-query", map[string]string{"query": "bolo"})

	deadline := time.Now().Add(2 * time.Second)
	for {
		b.mu.Lock()
		n := len(b.searchCtxErrs)
		b.mu.Unlock()
		if n > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced lookup never dispatched")
		}
		time.Sleep(5 * time.Millisecond)
	}

	b.mu.Lock()
	ctxErr := b.searchCtxErrs[0]
	b.mu.Unlock()
	if ctxErr != nil {
		t.Fatalf("remote lookup dispatched with dead context: %v", ctxErr)
	}

	// A follow-up query observes the dispatched result set.
	rec = doJSON(t, h, http.MethodPost, base+"/product-query", map[string]string{"query": "bolo"})
	var results []core.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &results); err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Name != "Bolo de Cenoura" {
		t.Errorf("results = %v, want the remote product", results)
	}
}

func TestHandler_OrdersFeedAndBatchPrint(t *testing.T) {
	b := &stubBackend{summaries: []core.OrderSummary{
		{ID: 3, CustomerName: "Maria", Status: core.StatusPlaced},
		{ID: 9, CustomerName: "João", Status: core.StatusFinished},
	}}
	h := newTestHandler(b)

	rec := doJSON(t, h, http.MethodGet, "/api/orders?status=Finished", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: %d", rec.Code)
	}
	var orders []core.OrderSummary
	if err := json.Unmarshal(rec.Body.Bytes(), &orders); err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Errorf("orders = %v", orders)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/orders/print-url?kitchen=true", nil)
	var pr map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &pr); err != nil {
		t.Fatal(err)
	}
	if pr["url"] != "print:[3 9]:kitchen=true" {
		t.Errorf("print url = %q", pr["url"])
	}
}
