// Package backend is the HTTP client for the external order API that owns
// persistence, printing and message delivery. Everything here is consumed by
// contract; the engine never assumes more than the endpoint shapes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"orderdesk/internal/core"
)

// defaultCountryCode prefixes messaging phone numbers (Brazil).
const defaultCountryCode = "55"

// Client talks to the order API. It is safe for concurrent use.
type Client struct {
	base        string
	countryCode string
	http        *http.Client
	log         *zap.Logger
}

// New creates a client for the API at baseURL. An empty countryCode falls
// back to defaultCountryCode.
func New(baseURL, countryCode string, log *zap.Logger) *Client {
	if countryCode == "" {
		countryCode = defaultCountryCode
	}
	return &Client{
		base:        strings.TrimRight(baseURL, "/"),
		countryCode: countryCode,
		http:        &http.Client{Timeout: 15 * time.Second},
		log:         log,
	}
}

// NewFromEnv creates a client from API_BASE_URL and PHONE_COUNTRY_CODE.
func NewFromEnv(log *zap.Logger) (*Client, error) {
	base := os.Getenv("API_BASE_URL")
	if base == "" {
		return nil, fmt.Errorf("API_BASE_URL environment variable not set")
	}
	return New(base, os.Getenv("PHONE_COUNTRY_CODE"), log), nil
}

// SearchCustomers queries the customer lookup-by-name endpoint.
func (c *Client) SearchCustomers(ctx context.Context, query string) ([]core.Customer, error) {
	var out []core.Customer
	q := url.Values{"nome": {query}}
	if err := c.getJSON(ctx, "/api/customers/search?"+q.Encode(), &out); err != nil {
		return nil, &core.LookupFailure{Op: "customer search", Err: err}
	}
	return out, nil
}

// SearchProducts queries the product lookup-by-name endpoint.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]core.Product, error) {
	var out []core.Product
	q := url.Values{"name": {query}}
	if err := c.getJSON(ctx, "/api/products/search?"+q.Encode(), &out); err != nil {
		return nil, &core.LookupFailure{Op: "product search", Err: err}
	}
	return out, nil
}

// GetCustomer fetches one canonical customer record with address.
func (c *Client) GetCustomer(ctx context.Context, id int) (*core.Customer, error) {
	var doc customerDoc
	if err := c.getJSON(ctx, "/api/customers/"+strconv.Itoa(id), &doc); err != nil {
		return nil, &core.LookupFailure{Op: "customer fetch", Err: err}
	}
	cust := doc.toCustomer()
	return &cust, nil
}

// GetOrder fetches one full order record, items included.
func (c *Client) GetOrder(ctx context.Context, id int) (*core.Order, error) {
	var doc orderDoc
	if err := c.getJSON(ctx, "/api/orders/"+strconv.Itoa(id)+"/items", &doc); err != nil {
		return nil, &core.LookupFailure{Op: "order fetch", Err: err}
	}
	order := doc.toOrder(c.log)
	return &order, nil
}

// ListCustomers returns the full customer collection used to seed the shared
// lookup cache the resolvers fall back on.
func (c *Client) ListCustomers(ctx context.Context) ([]core.Customer, error) {
	var out []core.Customer
	if err := c.getJSON(ctx, "/api/customers", &out); err != nil {
		return nil, &core.LookupFailure{Op: "customer list", Err: err}
	}
	return out, nil
}

// ListProducts returns the full product collection used to seed the shared
// lookup cache the resolvers fall back on.
func (c *Client) ListProducts(ctx context.Context) ([]core.Product, error) {
	var out []core.Product
	if err := c.getJSON(ctx, "/api/products", &out); err != nil {
		return nil, &core.LookupFailure{Op: "product list", Err: err}
	}
	return out, nil
}

// ListOrders returns the filtered order list the dashboard displays; this is
// the set batch printing selects from.
func (c *Client) ListOrders(ctx context.Context, f core.OrderFilter) ([]core.OrderSummary, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.DateFrom != "" {
		q.Set("from", f.DateFrom)
	}
	if f.DateTo != "" {
		q.Set("to", f.DateTo)
	}
	path := "/api/orders"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []core.OrderSummary
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, &core.LookupFailure{Op: "order list", Err: err}
	}
	return out, nil
}

// UpsertOrder submits the composed payload. On acceptance the backend's
// canonical order replaces the local draft; on any failure nothing changes.
func (c *Client) UpsertOrder(ctx context.Context, payload core.UpsertPayload) (*core.Order, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &core.PersistenceFailure{Err: fmt.Errorf("encode upsert payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/api/orders/upsert", bytes.NewReader(body))
	if err != nil {
		return nil, &core.PersistenceFailure{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &core.PersistenceFailure{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, &core.PersistenceFailure{Err: fmt.Errorf("upsert rejected: %s: %s", resp.Status, readErrorBody(resp.Body))}
	}

	var doc orderDoc
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, &core.PersistenceFailure{Err: fmt.Errorf("decode upsert response: %w", err)}
	}
	order := doc.toOrder(c.log)
	return &order, nil
}

// PrintURL builds the print-service target for a selection. An empty
// selection yields the draft preview URL.
func (c *Client) PrintURL(sel core.PrintSelection) string {
	path := "/api/orders/print"
	if sel.Kitchen {
		path = "/api/orders/print/kitchen"
	}
	if len(sel.IDs) == 0 {
		return c.base + path + "?preview=true"
	}
	ids := make([]string, len(sel.IDs))
	for i, id := range sel.IDs {
		ids[i] = strconv.Itoa(id)
	}
	q := url.Values{"ids": {strings.Join(ids, ",")}}
	return c.base + path + "?" + q.Encode()
}

// MessageURL builds the messaging-target link for a digits-only phone number
// and a prebuilt text body. Delivery is entirely external.
func (c *Client) MessageURL(phoneDigits, body string) string {
	return "https://wa.me/" + c.countryCode + phoneDigits + "?text=" + url.QueryEscape(body)
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s: %s", resp.Status, readErrorBody(resp.Body))
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

// readErrorBody returns a short excerpt of an error response body.
func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return strings.TrimSpace(string(b))
}
