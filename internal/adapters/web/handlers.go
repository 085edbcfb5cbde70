package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"beet-backend/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc    app.ApplicationService
	router chi.Router
	log    *logrus.Logger
}

// NewHandler creates and wires the chi router with all routes.
// Authentication happens upstream; callers identify their tenant scope
// through the X-Owner-ID, X-Restaurant-ID, and X-User-ID headers.
func NewHandler(svc app.ApplicationService, log *logrus.Logger, allowedOrigins string) http.Handler {
	h := &Handler{svc: svc, log: log}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(1 << 20)) // 1 MB

	r.Get("/api/health", h.health)

	r.Get("/api/units", h.listUnits)

	r.Post("/api/ingredients", h.createIngredient)
	r.Get("/api/ingredients/{id}", h.getIngredient)

	r.Get("/api/suppliers", h.listSuppliers)
	r.Get("/api/suppliers/{id}", h.getSupplier)
	r.Get("/api/suppliers/{id}/items", h.listSupplierItems)

	r.Post("/api/inventory/activate", h.activateIngredient)
	r.Get("/api/inventory/stocks", h.listStocks)
	r.Get("/api/inventory/stocks/ingredient/{ingredientId}", h.getStock)
	r.Post("/api/inventory/stocks/{stockId}/adjust", h.adjustStock)
	r.Get("/api/inventory/stocks/{stockId}/transactions", h.listTransactions)

	r.Post("/api/invoices", h.registerInvoice)
	r.Get("/api/invoices", h.listInvoices)
	r.Get("/api/invoices/{id}", h.getInvoice)

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// identity is the caller's tenant scope taken from trusted headers.
type identity struct {
	OwnerID      uuid.UUID
	RestaurantID uuid.UUID
	UserID       uuid.UUID
}

// identityFrom reads the scope headers; a missing or malformed header is a
// client error because every engine operation is tenant-scoped.
func identityFrom(r *http.Request) (identity, bool) {
	var id identity
	var err error
	if id.OwnerID, err = uuid.Parse(r.Header.Get("X-Owner-ID")); err != nil {
		return id, false
	}
	if id.RestaurantID, err = uuid.Parse(r.Header.Get("X-Restaurant-ID")); err != nil {
		return id, false
	}
	if id.UserID, err = uuid.Parse(r.Header.Get("X-User-ID")); err != nil {
		return id, false
	}
	return id, true
}

func (h *Handler) requireIdentity(w http.ResponseWriter, r *http.Request) (identity, bool) {
	id, ok := identityFrom(r)
	if !ok {
		writeError(w, r, "missing or invalid scope headers", "UNAUTHENTICATED", http.StatusUnauthorized)
	}
	return id, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, r, "invalid "+name, "INVALID_ARGUMENT", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "malformed JSON body: "+err.Error(), "INVALID_ARGUMENT", http.StatusBadRequest)
		return false
	}
	return true
}

// paging reads zero-based page and size query parameters with defaults.
func paging(r *http.Request) (page, size int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	size, _ = strconv.Atoi(r.URL.Query().Get("size"))
	if page < 0 {
		page = 0
	}
	if size <= 0 || size > 200 {
		size = 20
	}
	return page, size
}

func (h *Handler) listUnits(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListUnits(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) createIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	var req app.CreateIngredientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.OwnerID = id.OwnerID
	req.ActorID = id.UserID

	res, err := h.svc.CreateIngredient(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) getIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	ingredientID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetIngredient(r.Context(), ingredientID, id.OwnerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ListSuppliers(r.Context(), id.OwnerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getSupplier(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	supplierID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetSupplier(r.Context(), supplierID, id.OwnerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listSupplierItems(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireIdentity(w, r); !ok {
		return
	}
	supplierID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.ListSupplierItems(r.Context(), supplierID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) activateIngredient(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	var req app.ActivateIngredientRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.RestaurantID = id.RestaurantID
	req.ActorID = id.UserID

	res, err := h.svc.ActivateIngredient(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listStocks(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	res, err := h.svc.ListStocks(r.Context(), id.RestaurantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	ingredientID, ok := pathUUID(w, r, "ingredientId")
	if !ok {
		return
	}
	res, err := h.svc.GetStock(r.Context(), id.RestaurantID, ingredientID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	stockID, ok := pathUUID(w, r, "stockId")
	if !ok {
		return
	}
	var req app.AdjustStockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.StockID = stockID
	req.ActorID = id.UserID

	res, err := h.svc.AdjustStock(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireIdentity(w, r); !ok {
		return
	}
	stockID, ok := pathUUID(w, r, "stockId")
	if !ok {
		return
	}
	page, size := paging(r)
	res, err := h.svc.ListStockTransactions(r.Context(), stockID, page, size)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) registerInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	var req app.RegisterInvoiceRequest
	if !decodeBody(w, r, &req) {
		return
	}
	req.OwnerID = id.OwnerID
	req.RestaurantID = id.RestaurantID
	req.ActorID = id.UserID

	res, err := h.svc.RegisterInvoice(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	page, size := paging(r)
	res, err := h.svc.ListInvoices(r.Context(), id.RestaurantID, page, size, r.URL.Query().Get("search"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	id, ok := h.requireIdentity(w, r)
	if !ok {
		return
	}
	invoiceID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.GetInvoice(r.Context(), invoiceID, id.RestaurantID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
