// Package web exposes the order composition engine to the dashboard UI as a
// JSON API. Handlers own no business logic; every operation is a thin call
// into an app.Session or the app.Service.
package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"orderdesk/internal/app"
	"orderdesk/internal/core"
)

// Handler holds the application service, the chi router and the session
// store.
type Handler struct {
	svc      *app.Service
	router   chi.Router
	sessions *sessionStore
	log      *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc *app.Service, allowedOrigins string, log *zap.Logger) http.Handler {
	h := &Handler{
		svc:      svc,
		sessions: newSessionStore(),
		log:      log,
	}
	h.sessions.startPurge(context.Background())

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))

	r.Get("/api/health", h.health)

	// Catalog caches backing the resolvers.
	r.Post("/api/catalog/refresh", h.catalogRefresh)
	r.Post("/api/catalog/invalidate", h.catalogInvalidate)

	// Order list feed and batch printing.
	r.Get("/api/orders", h.listOrders)
	r.Get("/api/orders/print-url", h.printFiltered)

	// Editing sessions.
	r.Post("/api/sessions", h.createSession)
	r.Route("/api/sessions/{token}", func(r chi.Router) {
		r.Get("/", h.getSession)
		r.Delete("/", h.discardSession)
		r.Post("/customer-query", h.customerQuery)
		r.Post("/customer", h.selectCustomer)
		r.Put("/customer-name", h.setCustomerName)
		r.Put("/phone", h.setPhone)
		r.Put("/delivery", h.setDelivery)
		r.Put("/address", h.setAddress)
		r.Post("/product-query", h.productQuery)
		r.Post("/items", h.addItem)
		r.Patch("/items/{index}", h.updateItem)
		r.Delete("/items/{index}", h.removeItem)
		r.Put("/financials", h.setFinancials)
		r.Post("/paid-full", h.paidFull)
		r.Post("/paid-half", h.paidHalf)
		r.Put("/status", h.setStatus)
		r.Put("/slot", h.setSlot)
		r.Post("/save", h.save)
		r.Get("/print-url", h.printSession)
		r.Get("/message", h.message)
	})

	h.router = r
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// ── Catalog ──────────────────────────────────────────────────────────────────

func (h *Handler) catalogRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RefreshCatalog(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]int{
		"customers": h.svc.Customers().Len(),
		"products":  h.svc.Products().Len(),
	})
}

func (h *Handler) catalogInvalidate(w http.ResponseWriter, _ *http.Request) {
	h.svc.InvalidateCatalog()
	writeJSON(w, map[string]string{"status": "invalidated"})
}

// ── Order list & batch printing ──────────────────────────────────────────────

func orderFilterFromQuery(r *http.Request) core.OrderFilter {
	q := r.URL.Query()
	return core.OrderFilter{
		Search:   q.Get("search"),
		Status:   core.Status(q.Get("status")),
		DateFrom: q.Get("from"),
		DateTo:   q.Get("to"),
	}
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), orderFilterFromQuery(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if orders == nil {
		orders = []core.OrderSummary{}
	}
	writeJSON(w, orders)
}

func (h *Handler) printFiltered(w http.ResponseWriter, r *http.Request) {
	kitchen := r.URL.Query().Get("kitchen") == "true"
	target, err := h.svc.PrintFilteredURL(r.Context(), orderFilterFromQuery(r), kitchen)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"url": target})
}

// ── Sessions ─────────────────────────────────────────────────────────────────

// sessionView is the state snapshot every session endpoint returns.
type sessionView struct {
	Token   string      `json:"token"`
	Editing bool        `json:"editing"`
	Order   core.Order  `json:"order"`
	Totals  core.Totals `json:"totals"`
}

func (h *Handler) view(token string, sess *app.Session) sessionView {
	return sessionView{
		Token:   token,
		Editing: sess.Editing(),
		Order:   sess.Order(),
		Totals:  sess.Totals(),
	}
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderID int `json:"orderId"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
			return
		}
	}

	var sess *app.Session
	if req.OrderID != 0 {
		var err error
		sess, err = h.svc.EditSession(r.Context(), req.OrderID)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
	} else {
		sess = h.svc.NewSession()
	}

	token := uuid.NewString()
	h.sessions.put(token, sess)
	h.log.Info("editing session opened",
		zap.String("token", token),
		zap.Int("order_id", req.OrderID))
	writeJSON(w, h.view(token, sess))
}

// withSession resolves the session token or writes a 404.
func (h *Handler) withSession(w http.ResponseWriter, r *http.Request) (string, *app.Session, bool) {
	token := chi.URLParam(r, "token")
	sess, ok := h.sessions.get(token)
	if !ok {
		writeError(w, r, "session not found or expired", "NOT_FOUND", http.StatusNotFound)
		return "", nil, false
	}
	return token, sess, true
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) discardSession(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	h.sessions.delete(token)
	writeJSON(w, map[string]string{"status": "discarded"})
}

// ── Customer & address ───────────────────────────────────────────────────────

func (h *Handler) customerQuery(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	// The debounced dispatch can outlive this request; the request context
	// is cancelled the moment the handler returns.
	sess.SearchCustomers(context.WithoutCancel(r.Context()), req.Query)
	results := sess.CustomerResults()
	if results == nil {
		results = []core.Customer{}
	}
	writeJSON(w, results)
}

func (h *Handler) selectCustomer(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var c core.Customer
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := sess.SelectCustomer(r.Context(), c); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) setCustomerName(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := sess.SetCustomerName(req.Name); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) setPhone(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Phone string `json:"phone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sess.SetCustomerPhone(req.Phone)
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) setDelivery(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		On bool `json:"on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sess.SetDelivery(r.Context(), req.On)
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) setAddress(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var a core.Address
	if err := json.NewDecoder(r.Body).Decode(&a); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sess.SetAddress(a)
	writeJSON(w, h.view(token, sess))
}

// ── Ledger ───────────────────────────────────────────────────────────────────

func (h *Handler) productQuery(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sess.SearchProducts(context.WithoutCancel(r.Context()), req.Query)
	results := sess.ProductResults()
	if results == nil {
		results = []core.Product{}
	}
	writeJSON(w, results)
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var p core.Product
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	sess.AddProduct(p)
	writeJSON(w, h.view(token, sess))
}

func itemIndex(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "index"))
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	index, err := itemIndex(r)
	if err != nil {
		writeError(w, r, "invalid item index", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		Quantity  *int             `json:"quantity"`
		UnitPrice *decimal.Decimal `json:"unitPrice"`
		Note      *string          `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	patch := core.ItemPatch{Quantity: req.Quantity, UnitPrice: req.UnitPrice, Note: req.Note}
	if err := sess.UpdateItem(index, patch); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	index, err := itemIndex(r)
	if err != nil {
		writeError(w, r, "invalid item index", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := sess.RemoveItem(index); err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	writeJSON(w, h.view(token, sess))
}

// ── Financials, status, slot ─────────────────────────────────────────────────

func (h *Handler) setFinancials(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Discount    *decimal.Decimal `json:"discount"`
		DeliveryFee *decimal.Decimal `json:"deliveryFee"`
		AmountPaid  *decimal.Decimal `json:"amountPaid"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Discount != nil {
		sess.SetDiscount(*req.Discount)
	}
	if req.DeliveryFee != nil {
		sess.SetDeliveryFee(*req.DeliveryFee)
	}
	if req.AmountPaid != nil {
		sess.SetAmountPaid(*req.AmountPaid)
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) paidFull(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	sess.SetPaidFull()
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) paidHalf(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	sess.SetPaidHalf()
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	status, err := core.ParseStatus(req.Status)
	if err != nil {
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := sess.SetStatus(status); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) setSlot(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, "invalid request body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if req.Date != "" {
		sess.SetDeliveryDate(req.Date)
	}
	if req.Time != "" {
		sess.SetDeliveryTime(req.Time)
	}
	writeJSON(w, h.view(token, sess))
}

// ── Save & outbound ──────────────────────────────────────────────────────────

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	token, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	if _, err := sess.Save(r.Context()); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, h.view(token, sess))
}

func (h *Handler) printSession(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	kitchen := r.URL.Query().Get("kitchen") == "true"
	writeJSON(w, map[string]string{"url": sess.PrintURL(kitchen)})
}

func (h *Handler) message(w http.ResponseWriter, r *http.Request) {
	_, sess, ok := h.withSession(w, r)
	if !ok {
		return
	}
	body, err := sess.ComposeMessage(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	target, err := sess.MessageURL(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"body": body, "url": target})
}
