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

// CatalogHandler serves the customer-facing product pages.
type CatalogHandler struct {
	Gateway Gateway
	Assets  *assets.Manager
	// ProductImagePath is the backend prefix for product image binaries.
	ProductImagePath string
	Log              *zap.Logger
}

// productsResponse is the backend's product list shape.
type productsResponse struct {
	Products []models.Product `json:"products"`
}

// productResponse is the backend's single product shape.
type productResponse struct {
	Product models.Product `json:"product"`
}

// Dashboard handles GET /user/dashboard: the catalog list with an image URL
// per product. Failed image fetches resolve to the placeholder without
// touching the rest of the page.
func (h *CatalogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())

	data, err := h.Gateway.Get(r.Context(), sess, "/products")
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp productsResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed products response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	page := h.Assets.Page(sess.Token, "user/dashboard")
	for _, p := range resp.Products {
		page.Fetch(r.Context(), sess, p.ID, h.ProductImagePath, p.Image)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products":  resp.Products,
		"imageUrls": page.URLs(),
	})
}

// Detail handles GET /user/product/{id}.
func (h *CatalogHandler) Detail(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	data, err := h.Gateway.Get(r.Context(), sess, "/products/"+id)
	if err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	var resp productResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		h.Log.Error("malformed product response", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, message{Message: "something went wrong, please try again"})
		return
	}

	page := h.Assets.Page(sess.Token, "user/product/"+id)
	page.Fetch(r.Context(), sess, resp.Product.ID, h.ProductImagePath, resp.Product.Image)

	writeJSON(w, http.StatusOK, map[string]any{
		"product":  resp.Product,
		"imageUrl": page.URL(resp.Product.ID),
	})
}

// addToCartRequest is the JSON payload for adding a product to the cart.
type addToCartRequest struct {
	Quantity int64 `json:"quantity" validate:"required,min=1"`
}

// AddToCart handles POST /user/product/{id}/cart. The backend snapshots the
// product's current name and price into the new cart line.
func (h *CatalogHandler) AddToCart(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req addToCartRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if _, err := h.Gateway.Post(r.Context(), sess, "/cart", map[string]any{
		"productId": id,
		"quantity":  req.Quantity,
	}); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "added to cart"})
}
