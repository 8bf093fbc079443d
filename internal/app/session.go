package app

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/core"
	"orderdesk/internal/resolve"
)

// Session is one order editing session: a draft aggregate plus the two
// entity resolvers feeding it. The draft lives in memory for the duration of
// the session; it is replaced by the backend's canonical order on a
// successful save and simply discarded on cancel.
//
// All mutation goes through the session mutex — the Go rendition of the
// original single event thread. Concurrent saves of the same draft are not
// guarded beyond that; a double-submit protection is a known gap.
type Session struct {
	svc *Service

	mu           sync.Mutex
	order        core.Order
	editing      bool
	lastCascaded int // customer id the address cascade last applied

	customers *resolve.Resolver[core.Customer]
	products  *resolve.Resolver[core.Product]
}

// NewSession starts a blank draft. Delivery defaults to on and the slot to
// the current date and time, matching how the dashboard opens a new order.
func (s *Service) NewSession() *Session {
	now := time.Now()
	return s.newSession(core.Order{
		IsDelivery:   true,
		Status:       core.StatusPlaced,
		DeliveryDate: now.Format("2006-01-02"),
		DeliveryTime: now.Format("15:04"),
	}, false)
}

// EditSession hydrates a session from an existing order. The customer
// resolver is disabled for its whole lifetime: the customer identity of a
// persisted order is immutable and comes only from the order's own fetch.
// When the order is a delivery, the canonical customer address and phone are
// refreshed opportunistically.
func (s *Service) EditSession(ctx context.Context, orderID int) (*Session, error) {
	order, err := s.backend.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	sess := s.newSession(*order, true)
	sess.mu.Lock()
	sess.cascade(ctx)
	sess.mu.Unlock()
	return sess, nil
}

func (s *Service) newSession(order core.Order, editing bool) *Session {
	sess := &Session{
		svc:     s,
		order:   order,
		editing: editing,
	}
	sess.customers = resolve.New(
		s.backend.SearchCustomers,
		s.customers,
		func(c core.Customer) string { return c.Name },
		s.debounce,
		s.log,
	)
	sess.products = resolve.New(
		s.backend.SearchProducts,
		s.products,
		func(p core.Product) string { return p.Name },
		s.debounce,
		s.log,
	)
	if editing {
		sess.customers.SetDisabled(true)
	}
	return sess
}

// Order returns a snapshot of the draft.
func (s *Session) Order() core.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

// snapshot copies the draft without sharing ledger backing storage.
// Callers must hold s.mu.
func (s *Session) snapshot() core.Order {
	o := s.order
	o.Ledger = core.NewLedger(s.order.Ledger.Items())
	return o
}

// Editing reports whether the session edits a persisted order.
func (s *Session) Editing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editing
}

// Totals recomputes the derived money fields for the current draft.
func (s *Session) Totals() core.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Totals()
}

// ── Resolvers ────────────────────────────────────────────────────────────────

// SearchCustomers feeds the customer resolver. No-op on an edit session.
func (s *Session) SearchCustomers(ctx context.Context, query string) {
	s.customers.Search(ctx, query)
}

// CustomerResults returns the customer resolver's current result set.
func (s *Session) CustomerResults() []core.Customer { return s.customers.Results() }

// SearchProducts feeds the product resolver.
func (s *Session) SearchProducts(ctx context.Context, query string) {
	s.products.Search(ctx, query)
}

// ProductResults returns the product resolver's current result set.
func (s *Session) ProductResults() []core.Product { return s.products.Results() }

// ── Customer & address ───────────────────────────────────────────────────────

// SelectCustomer applies a search pick: identity, name and phone snapshot,
// then the address cascade.
func (s *Session) SelectCustomer(ctx context.Context, c core.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return core.NewValidationError("customer", "customer cannot be changed on an existing order")
	}
	s.order.CustomerID = c.ID
	s.order.CustomerName = c.Name
	s.order.CustomerPhone = c.CellPhone
	s.customers.Clear()
	s.cascade(ctx)
	return nil
}

// SetCustomerName types over the customer field, dropping any selected
// identity: a free-typed name is a walk-in customer.
func (s *Session) SetCustomerName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editing {
		return core.NewValidationError("customer", "customer cannot be changed on an existing order")
	}
	s.order.CustomerName = name
	s.order.CustomerID = 0
	// Dropping the identity also forgets the cascade: re-selecting the same
	// customer later is a fresh selection and refreshes the address again.
	s.lastCascaded = 0
	return nil
}

// SetCustomerPhone overrides the phone snapshot.
func (s *Session) SetCustomerPhone(phone string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.CustomerPhone = phone
}

// SetDelivery toggles the delivery flag. Turning it on runs the address
// cascade, which fires only if it has not already run for the currently
// selected customer.
func (s *Session) SetDelivery(ctx context.Context, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.IsDelivery = on
	if on {
		s.cascade(ctx)
	}
}

// SetAddress applies a manual address edit. Manual values are terminal: the
// cascade will not overwrite them unless the customer selection changes.
func (s *Session) SetAddress(a core.Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Address = a
}

// cascade pulls the canonical customer record and replaces the draft's
// address wholesale, plus the phone snapshot when present. It fires at most
// once per selected customer identity; fetch failures leave every field
// untouched. Callers must hold s.mu.
func (s *Session) cascade(ctx context.Context) {
	if !s.order.IsDelivery || s.order.CustomerID == 0 || s.order.CustomerID == s.lastCascaded {
		return
	}
	c, err := s.svc.backend.GetCustomer(ctx, s.order.CustomerID)
	if err != nil {
		s.svc.log.Debug("address cascade fetch failed, keeping current address",
			zap.Int("customer_id", s.order.CustomerID), zap.Error(err))
		return
	}
	s.order.Address = c.Address
	if c.CellPhone != "" {
		s.order.CustomerPhone = c.CellPhone
	}
	s.lastCascaded = c.ID
}

// ── Ledger ───────────────────────────────────────────────────────────────────

// AddProduct adds a product pick to the ledger (or increments its quantity)
// and clears the product dropdown.
func (s *Session) AddProduct(p core.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Ledger.AddFromProduct(p)
	s.products.Clear()
}

// UpdateItem merges a partial edit into the item at index.
func (s *Session) UpdateItem(index int, patch core.ItemPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Ledger.UpdateItem(index, patch)
}

// RemoveItem deletes the item at index.
func (s *Session) RemoveItem(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Ledger.RemoveItem(index)
}

// ── Financials, status, slot ─────────────────────────────────────────────────

// SetDiscount sets the order-level discount. Totals clamp at zero, so an
// oversized discount can never produce a negative total.
func (s *Session) SetDiscount(d decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.Discount = d
}

// SetDeliveryFee sets the delivery fee.
func (s *Session) SetDeliveryFee(d decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.DeliveryFee = d
}

// SetAmountPaid records the amount already paid.
func (s *Session) SetAmountPaid(d decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.AmountPaid = d
}

// SetPaidFull marks the current total as fully paid.
func (s *Session) SetPaidFull() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.AmountPaid = s.order.Totals().Total.Round(2)
}

// SetPaidHalf records a 50% down payment of the current total.
func (s *Session) SetPaidHalf() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.AmountPaid = s.order.Totals().Total.Div(decimal.NewFromInt(2)).Round(2)
}

// SetStatus moves the draft to another status. Transitions funnel through
// core.ValidTransition.
func (s *Session) SetStatus(to core.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !to.Valid() {
		return core.NewValidationError("orderStatus", "unknown status "+string(to))
	}
	if !core.ValidTransition(s.order.Status, to) {
		return core.NewValidationError("orderStatus", "transition not allowed")
	}
	s.order.Status = to
	return nil
}

// SetDeliveryDate sets the delivery date field (YYYY-MM-DD).
func (s *Session) SetDeliveryDate(date string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.DeliveryDate = date
}

// SetDeliveryTime sets the delivery time field (HH:MM).
func (s *Session) SetDeliveryTime(clock string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order.DeliveryTime = clock
}

// ── Save & outbound ──────────────────────────────────────────────────────────

// Save validates the draft, composes the upsert payload and submits it.
// On success the backend's canonical order replaces the draft and the
// session switches to edit mode. On any failure the draft is untouched so
// the save can be retried without re-entering data.
func (s *Session) Save(ctx context.Context) (core.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.order.CustomerName) == "" {
		return core.Order{}, core.NewValidationError("customerName", "customer name is required")
	}
	if s.order.Ledger.Len() == 0 {
		return core.Order{}, core.NewValidationError("items", "order needs at least one item")
	}
	if err := core.ValidateDeliverySlot(s.svc.log, s.order.DeliveryDate, s.order.DeliveryTime, time.Now()); err != nil {
		return core.Order{}, err
	}

	// Opportunistic phone backfill before composing; failure is tolerated,
	// the backend validates the final payload anyway.
	s.backfillPhone(ctx)

	payload := core.BuildUpsert(&s.order)
	payload.IdempotencyKey = uuid.NewString()

	saved, err := s.svc.backend.UpsertOrder(ctx, payload)
	if err != nil {
		return core.Order{}, err
	}

	s.order = *saved
	s.editing = true
	s.customers.SetDisabled(true)
	s.lastCascaded = saved.CustomerID
	return s.snapshot(), nil
}

// backfillPhone fills an empty phone snapshot from the canonical customer
// record, then from the shared cache. Callers must hold s.mu.
func (s *Session) backfillPhone(ctx context.Context) {
	if core.DigitsOnly(s.order.CustomerPhone) != "" || s.order.CustomerID == 0 {
		return
	}
	if c, err := s.svc.backend.GetCustomer(ctx, s.order.CustomerID); err == nil && c.CellPhone != "" {
		s.order.CustomerPhone = c.CellPhone
		return
	}
	if c, ok := s.svc.customers.Get(s.order.CustomerID); ok && c.CellPhone != "" {
		s.order.CustomerPhone = c.CellPhone
	}
}

// PrintURL builds the print-service target for this order. Unsaved drafts
// get the preview target.
func (s *Session) PrintURL(kitchen bool) string {
	s.mu.Lock()
	sel := core.SinglePrintSelection(&s.order, kitchen)
	s.mu.Unlock()
	return s.svc.backend.PrintURL(sel)
}

// ComposeMessage renders the customer-facing message for the current draft,
// backfilling the phone snapshot first. A draft with no reachable phone
// refuses composition.
func (s *Session) ComposeMessage(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backfillPhone(ctx)
	return core.ComposeMessage(&s.order)
}

// MessageURL composes the message and wraps it in the messaging target link.
func (s *Session) MessageURL(ctx context.Context) (string, error) {
	body, err := s.ComposeMessage(ctx)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	phone := core.DigitsOnly(s.order.CustomerPhone)
	s.mu.Unlock()
	return s.svc.backend.MessageURL(phone, body), nil
}
