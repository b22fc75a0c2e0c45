package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
)

// maxProductFormMemory bounds in-memory parsing of product uploads.
const maxProductFormMemory = 32 << 20

// AdminProductHandler serves the console's product table: list plus
// create, update, and delete. Creates and updates arrive as multipart forms
// because they may carry an image upload, and are forwarded to the backend
// as multipart again.
type AdminProductHandler struct {
	Gateway          Gateway
	Assets           *assets.Manager
	ProductImagePath string
	Log              *zap.Logger
}

// productForm is the validated field set of a product create or update.
type productForm struct {
	Name        string `validate:"required"`
	Description string `validate:"required"`
	Price       int64  `validate:"required,min=1"`
	Stock       int64  `validate:"min=0"`
}

// Dashboard handles GET /admin/dashboard: the full product table with
// authenticated images, placeholder per failed fetch.
func (h *AdminProductHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
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

	page := h.Assets.Page(sess.Token, "admin/dashboard")
	for _, p := range resp.Products {
		page.Fetch(r.Context(), sess, p.ID, h.ProductImagePath, p.Image)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"products":  resp.Products,
		"imageUrls": page.URLs(),
	})
}

// Create handles POST /admin/products.
func (h *AdminProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, http.MethodPost, "/products")
}

// Update handles PUT /admin/products/{id}.
func (h *AdminProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.forward(w, r, http.MethodPut, "/products/"+chi.URLParam(r, "id"))
}

// Delete handles DELETE /admin/products/{id}. Requires confirm=true.
func (h *AdminProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if !confirmed(w, r) {
		return
	}

	if _, err := h.Gateway.Delete(r.Context(), sess, "/products/"+id); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "product deleted"})
}

// forward validates the incoming multipart form and passes it through to
// the backend under the given method and path.
func (h *AdminProductHandler) forward(w http.ResponseWriter, r *http.Request, method, path string) {
	sess := middleware.SessionFromContext(r.Context())

	contentType, body, ok := h.rebuildForm(w, r)
	if !ok {
		return
	}

	if _, err := h.Gateway.SendForm(r.Context(), sess, method, path, contentType, body); err != nil {
		fail(w, r, h.Assets, sess, h.Log, err)
		return
	}

	writeJSON(w, http.StatusOK, message{Message: "product saved"})
}

// rebuildForm parses and validates the product fields, then rebuilds the
// multipart body (fields plus the optional image part) for forwarding. A
// false return means the response has been written.
func (h *AdminProductHandler) rebuildForm(w http.ResponseWriter, r *http.Request) (string, io.Reader, bool) {
	if err := r.ParseMultipartForm(maxProductFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid form"})
		return "", nil, false
	}

	price, err := strconv.ParseInt(r.FormValue("price"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid price"})
		return "", nil, false
	}
	stock, err := strconv.ParseInt(r.FormValue("stock"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid stock"})
		return "", nil, false
	}

	form := productForm{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Price:       price,
		Stock:       stock,
	}
	if err := validate.Struct(form); err != nil {
		writeJSON(w, http.StatusBadRequest, message{Message: "invalid request: " + err.Error()})
		return "", nil, false
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("name", form.Name)
	_ = mw.WriteField("description", form.Description)
	_ = mw.WriteField("price", strconv.FormatInt(form.Price, 10))
	_ = mw.WriteField("stock", strconv.FormatInt(form.Stock, 10))

	if file, header, err := r.FormFile("image"); err == nil {
		part, err := mw.CreateFormFile("image", header.Filename)
		if err == nil {
			_, err = io.Copy(part, file)
		}
		_ = file.Close()
		if err != nil {
			h.Log.Error("failed to copy image upload", zap.Error(err))
			writeJSON(w, http.StatusBadRequest, message{Message: "invalid image upload"})
			return "", nil, false
		}
	}

	if err := mw.Close(); err != nil {
		h.Log.Error("failed to finish multipart body", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, message{Message: "something went wrong, please try again"})
		return "", nil, false
	}
	return mw.FormDataContentType(), &buf, true
}
