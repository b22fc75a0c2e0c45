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

// CartHandler serves the cart page and its mutations. Mutations are never
// optimistic: the handler waits for backend confirmation and the next view
// is always a fresh fetch, so a failed mutation leaves the displayed cart
// exactly as it was.
type CartHandler struct {
	Gateway Gateway
	Assets  *assets.Manager
	Log     *zap.Logger
}

// cartResponse is the backend's cart shape.
type cartResponse struct {
	Cart models.Cart `json:"cart"`
}

// quantityRequest is the JSON payload for a quantity change.
type quantityRequest struct {
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// Show handles GET /user/cart. Line totals come from the add-time price
// snapshot only; the current product price never enters them.
func (h *CartHandler) Show(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data, err := h.Gateway.Get(r.Context(), sess, "/cart")
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp cartResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed cart response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	lineTotals := make(map[string]int64, len(resp.Cart.Items))
	for _, item := range resp.Cart.Items {
		lineTotals[item.ID] = item.LineTotal()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cart":       resp.Cart,
		"lineTotals": lineTotals,
	})
}

// UpdateQuantity handles PATCH /user/cart/{itemID}.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	itemID := chi.URLParam(r, "itemID")

	var req quantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Patch(r.Context(), sess, "/cart/"+itemID, map[string]int64{
		"quantity": req.Quantity,
	}); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "quantity updated"})
}

// RemoveItem handles DELETE /user/cart/{itemID}. Requires confirm=true.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	itemID := chi.URLParam(r, "itemID")

	if !confirmed(w, r) {
		return
	}

	if _, err := h.Gateway.Delete(r.Context(), sess, "/cart/"+itemID); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "item removed"})
}

// Checkout handles POST /user/cart/checkout: one all-or-nothing backend
// call. Success navigates to the order history; failure surfaces the
// backend's message verbatim.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	if !confirmed(w, r) {
		return
	}

	if _, err := h.Gateway.Post(r.Context(), sess, "/orders/checkout", nil); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	http.Redirect(w, r, "/user/orders", http.StatusSeeOther)
}
