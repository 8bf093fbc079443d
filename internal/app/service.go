// Package app wires the order composition engine together: resolvers, shared
// caches, editing sessions and the backend contract. UI adapters (REPL, web)
// talk only to this package; implementations contain no display logic.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"orderdesk/internal/cache"
	"orderdesk/internal/core"
)

// Backend is the contract of the external order API the engine consumes.
// Persistence, printing and message delivery all live behind it.
type Backend interface {
	SearchCustomers(ctx context.Context, query string) ([]core.Customer, error)
	SearchProducts(ctx context.Context, query string) ([]core.Product, error)
	ListCustomers(ctx context.Context) ([]core.Customer, error)
	ListProducts(ctx context.Context) ([]core.Product, error)
	GetCustomer(ctx context.Context, id int) (*core.Customer, error)
	GetOrder(ctx context.Context, id int) (*core.Order, error)
	ListOrders(ctx context.Context, f core.OrderFilter) ([]core.OrderSummary, error)
	UpsertOrder(ctx context.Context, payload core.UpsertPayload) (*core.Order, error)
	PrintURL(sel core.PrintSelection) string
	MessageURL(phoneDigits, body string) string
}

// DefaultDebounce is the quiet period before a resolver issues its remote
// lookup.
const DefaultDebounce = 300 * time.Millisecond

// Service owns the shared lookup caches and creates editing sessions.
type Service struct {
	backend  Backend
	log      *zap.Logger
	debounce time.Duration

	customers *cache.Collection[core.Customer]
	products  *cache.Collection[core.Product]
}

// NewService builds the engine around a backend. A non-positive debounce
// makes resolver lookups dispatch synchronously.
func NewService(b Backend, debounce time.Duration, log *zap.Logger) *Service {
	return &Service{
		backend:   b,
		log:       log,
		debounce:  debounce,
		customers: cache.NewCollection(func(c core.Customer) int { return c.ID }),
		products:  cache.NewCollection(func(p core.Product) int { return p.ID }),
	}
}

// RefreshCatalog reloads the shared customer and product caches from the
// backend. The caches only back lookups and fallbacks, so a failed refresh
// leaves the previous contents in place.
func (s *Service) RefreshCatalog(ctx context.Context) error {
	customers, err := s.backend.ListCustomers(ctx)
	if err != nil {
		return err
	}
	products, err := s.backend.ListProducts(ctx)
	if err != nil {
		return err
	}
	s.customers.Replace(customers)
	s.products.Replace(products)
	return nil
}

// InvalidateCatalog empties both shared caches; dashboard CRUD screens call
// this after editing customers or products.
func (s *Service) InvalidateCatalog() {
	s.customers.Invalidate()
	s.products.Invalidate()
}

// Customers exposes the shared customer cache.
func (s *Service) Customers() *cache.Collection[core.Customer] { return s.customers }

// Products exposes the shared product cache.
func (s *Service) Products() *cache.Collection[core.Product] { return s.products }

// ListOrders returns the filtered order list feed.
func (s *Service) ListOrders(ctx context.Context, f core.OrderFilter) ([]core.OrderSummary, error) {
	return s.backend.ListOrders(ctx, f)
}

// PrintFilteredURL selects the currently filtered order set and builds the
// print-service target for it.
func (s *Service) PrintFilteredURL(ctx context.Context, f core.OrderFilter, kitchen bool) (string, error) {
	orders, err := s.backend.ListOrders(ctx, f)
	if err != nil {
		return "", err
	}
	ids := make([]int, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	sel, err := core.FilteredPrintSelection(ids, kitchen)
	if err != nil {
		return "", err
	}
	return s.backend.PrintURL(sel), nil
}
