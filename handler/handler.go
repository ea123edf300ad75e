package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	models "retail-inventory/model"
	"retail-inventory/service"
	"retail-inventory/store"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

// Handler is the HTTP layer that talks to service.Service
type Handler struct {
	svc service.ServiceInterface
}

// NewHandler returns a Handler instance
func NewHandler(s service.ServiceInterface) *Handler {
	return &Handler{svc: s}
}

// RegisterRoutes registers all routes on the provided router
func (h *Handler) RegisterRoutes(r *mux.Router) {
	// Products
	r.HandleFunc("/products", h.CreateProduct).Methods("POST")
	r.HandleFunc("/products/list", h.ListProducts).Methods("GET")
	r.HandleFunc("/products/total", h.TotalQuantity).Methods("GET")
	r.HandleFunc("/products/{name}", h.RemoveProduct).Methods("DELETE")
	r.HandleFunc("/products/{name}/stock", h.UpdateStock).Methods("PUT")
	r.HandleFunc("/products/{name}/price", h.UpdatePrice).Methods("PUT")
	r.HandleFunc("/products/{name}/promotion", h.UpdatePromotion).Methods("PUT")

	// Promotions
	r.HandleFunc("/promotions", h.CreatePromotion).Methods("POST")
	r.HandleFunc("/promotions/list", h.ListPromotions).Methods("GET")
	r.HandleFunc("/promotions/{name}", h.RenamePromotion).Methods("PUT")

	// Cart
	r.HandleFunc("/cart/add", h.AddToCart).Methods("POST")
	r.HandleFunc("/cart/list", h.ListCart).Methods("GET")
	r.HandleFunc("/cart/clear", h.ClearCart).Methods("POST")

	// Checkout
	r.HandleFunc("/checkout/order", h.Checkout).Methods("POST")
}

// --- request / response shapes ---
type updateStockReq struct {
	NewStock *int `json:"new_stock"`
}

type updatePriceReq struct {
	Price *decimal.Decimal `json:"price"`
}

type updatePromotionReq struct {
	Promotion string `json:"promotion"`
}

type renamePromotionReq struct {
	Name string `json:"name"`
}

type addToCartReq struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
}

// --- helpers ---
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeServiceErr maps engine errors to status codes.
func writeServiceErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrProductNotFound), errors.Is(err, service.ErrPromotionNotFound):
		writeErr(w, http.StatusNotFound, err.Error())
	case models.IsOutOfStock(err):
		writeErr(w, http.StatusConflict, err.Error())
	case models.IsInvalidArgument(err), models.IsLimitExceeded(err), errors.Is(err, service.ErrCartEmpty):
		writeErr(w, http.StatusBadRequest, err.Error())
	default:
		writeErr(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Handler ---

// CreateProduct handles POST /products
func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" {
		writeErr(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Price.IsNegative() {
		writeErr(w, http.StatusBadRequest, "price must be >= 0")
		return
	}

	name, err := h.svc.CreateProduct(req)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// ListProducts handles GET /products/list?filter=all|active|available|cart&sort=price
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ps, err := h.svc.ListProducts(q.Get("filter"), q.Get("sort") == "price")
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

// TotalQuantity handles GET /products/total
func (h *Handler) TotalQuantity(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"total": h.svc.TotalQuantity()})
}

// RemoveProduct handles DELETE /products/{name}
func (h *Handler) RemoveProduct(w http.ResponseWriter, r *http.Request) {
	name, err := h.svc.RemoveProduct(mux.Vars(r)["name"])
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": name})
}

// UpdateStock handles PUT /products/{name}/stock
// body: { "new_stock": 10 }
func (h *Handler) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var req updateStockReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.NewStock == nil {
		writeErr(w, http.StatusBadRequest, "new_stock required")
		return
	}
	if *req.NewStock < 0 {
		writeErr(w, http.StatusBadRequest, "new_stock must be >= 0")
		return
	}
	if err := h.svc.UpdateStock(mux.Vars(r)["name"], *req.NewStock); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdatePrice handles PUT /products/{name}/price
// body: { "price": "12.50" }
func (h *Handler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var req updatePriceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Price == nil {
		writeErr(w, http.StatusBadRequest, "price required")
		return
	}
	if err := h.svc.UpdatePrice(mux.Vars(r)["name"], *req.Price); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// UpdatePromotion handles PUT /products/{name}/promotion
// body: { "promotion": "20% off" }, an empty name removes the promotion
func (h *Handler) UpdatePromotion(w http.ResponseWriter, r *http.Request) {
	var req updatePromotionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.UpdatePromotion(mux.Vars(r)["name"], req.Promotion); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// CreatePromotion handles POST /promotions
// body: { "name": "20% off", "type": "percent", "percent": 20 }
func (h *Handler) CreatePromotion(w http.ResponseWriter, r *http.Request) {
	var req service.CreatePromotionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	name, err := h.svc.CreatePromotion(req)
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// ListPromotions handles GET /promotions/list
func (h *Handler) ListPromotions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListPromotions())
}

// RenamePromotion handles PUT /promotions/{name}
// body: { "name": "new name" }
func (h *Handler) RenamePromotion(w http.ResponseWriter, r *http.Request) {
	var req renamePromotionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.svc.RenamePromotion(mux.Vars(r)["name"], req.Name); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"name": req.Name})
}

// AddToCart handles POST /cart/add
// body: { "product": "...", "quantity": 2 }
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Product == "" {
		writeErr(w, http.StatusBadRequest, "product is required")
		return
	}
	if req.Quantity <= 0 {
		writeErr(w, http.StatusBadRequest, "quantity must be > 0")
		return
	}
	if err := h.svc.AddToCart(req.Product, req.Quantity); err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "added"})
}

// ListCart handles GET /cart/list
func (h *Handler) ListCart(w http.ResponseWriter, r *http.Request) {
	items, total, err := h.svc.GetCart()
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"count": len(items),
	})
}

// ClearCart handles POST /cart/clear
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearCart()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// Checkout handles POST /checkout/order
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ord, err := h.svc.Checkout(r.Context())
	if err != nil {
		writeServiceErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ord)
}
