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

// AdminOrderHandler serves the console's order table. Status changes submit
// whatever the admin selected; the backend alone decides whether the
// transition is legal.
type AdminOrderHandler struct {
	Gateway Gateway
	Assets  *assets.Manager
	Log     *zap.Logger
}

// statusRequest is the JSON payload for a status change. oneof limits the
// value to the dropdown's vocabulary, not the transitions between values.
type statusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required,oneof=pending processed shipped paid completed cancelled"`
}

// List handles GET /admin/orders: every order across all customers, plus
// the status options for the dropdown.
func (h *AdminOrderHandler) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data, err := h.Gateway.Get(r.Context(), sess, "/orders/admin")
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

	writeJSON(w, http.StatusOK, map[string]any{
		"orders":   resp.Orders,
		"statuses": models.OrderStatuses,
	})
}

// UpdateStatus handles PATCH /admin/orders/{id}/status.
func (h *AdminOrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req statusRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Patch(r.Context(), sess, "/orders/"+id+"/status", map[string]models.OrderStatus{
		"status": req.Status,
	}); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "order status updated"})
}

// Delete handles DELETE /admin/orders/{id}. Requires confirm=true.
func (h *AdminOrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if !confirmed(w, r) {
		return
	}

	if _, err := h.Gateway.Delete(r.Context(), sess, "/admin/order/"+id); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "order deleted"})
}
