package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
	"github.com/wawanher487/e-commerceApps/internal/models"
)

// OrderHandler serves the customer's order history. Orders display their
// placed-time snapshots; nothing is recomputed here.
type OrderHandler struct {
	Gateway Gateway
	Assets  *assets.Manager
	Log     *zap.Logger
}

// ordersResponse is the backend's order list shape.
type ordersResponse struct {
	Orders []models.Order `json:"orders"`
}

// orderResponse is the backend's single order shape.
type orderResponse struct {
	Order models.Order `json:"order"`
}

// List handles GET /user/orders.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data, err := h.Gateway.Get(r.Context(), sess, "/orders")
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp ordersResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed orders response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"orders": resp.Orders})
}

// Detail handles GET /user/orders/{id}.
func (h *OrderHandler) Detail(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	data, err := h.Gateway.Get(r.Context(), sess, "/orders/"+id)
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp orderResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed order response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"order": resp.Order})
}
