package http

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"

	"github.com/wawanher487/e-commerceApps/internal/assets"
	"github.com/wawanher487/e-commerceApps/internal/middleware"
	"github.com/wawanher487/e-commerceApps/internal/models"
)

// Handlers bundles every view controller the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Catalog       *CatalogHandler
	Cart          *CartHandler
	Orders        *OrderHandler
	Profile       *ProfileHandler
	AdminProducts *AdminProductHandler
	AdminUsers    *AdminUserHandler
	AdminOrders   *AdminOrderHandler
}

// NewRouter constructs the storefront's HTTP handler. Public routes cover
// login and registration; everything under /user and /admin sits behind the
// route guard for the matching role. The guard is navigation convenience:
// the backend re-authorizes every forwarded call.
//
// Routes:
//
//	GET  /                  → redirect to /login
//	GET  /login             → login page (redirects when already signed in)
//	POST /login             → sign in, store session, go to dashboard
//	GET  /register          → register page (redirects when already signed in)
//	POST /register          → create account, go to /login
//	POST /logout            → destroy session, go to /login
//	GET  /assets/blob/{key} → cached authenticated image
//	GET  /assets/placeholder.png
//	/user/...  (role "user")  dashboard, product detail, cart, orders, profile
//	/admin/... (role "admin") dashboard, products, users, orders, profile
func NewRouter(h Handlers, sessions Sessions, blobs *assets.Manager, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/login", http.StatusFound)
	})

	// Public endpoints
	r.Get("/login", h.Auth.LoginPage)
	r.Post("/login", h.Auth.Login)
	r.Get("/register", h.Auth.RegisterPage)
	r.Post("/register", h.Auth.Register)
	r.Post("/logout", h.Auth.Logout)

	// Locally addressable image blobs and the static fallback
	r.Get("/assets/blob/{key}", blobs.ServeBlob)
	r.Get("/assets/placeholder.png", blobs.ServePlaceholder)

	// Customer pages: requires a session with role "user"
	r.Route("/user", func(r chi.Router) {
		r.Use(middleware.RouteGuard(sessions, models.RoleUser))

		r.Get("/dashboard", h.Catalog.Dashboard)
		r.Get("/product/{id}", h.Catalog.Detail)
		r.Post("/product/{id}/cart", h.Catalog.AddToCart)

		r.Get("/cart", h.Cart.Show)
		r.Patch("/cart/{itemID}", h.Cart.UpdateQuantity)
		r.Delete("/cart/{itemID}", h.Cart.RemoveItem)
		r.Post("/cart/checkout", h.Cart.Checkout)

		r.Get("/orders", h.Orders.List)
		r.Get("/orders/{id}", h.Orders.Detail)

		r.Get("/profile", h.Profile.Show)
		r.Patch("/profile", h.Profile.Update)
		r.Patch("/profile/password", h.Profile.UpdatePassword)
	})

	// Console pages: requires a session with role "admin"
	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.RouteGuard(sessions, models.RoleAdmin))

		r.Get("/dashboard", h.AdminProducts.Dashboard)
		r.Post("/products", h.AdminProducts.Create)
		r.Put("/products/{id}", h.AdminProducts.Update)
		r.Delete("/products/{id}", h.AdminProducts.Delete)

		r.Get("/users", h.AdminUsers.List)
		r.Post("/users", h.AdminUsers.Create)
		r.Patch("/users/{id}", h.AdminUsers.Update)
		r.Delete("/users/{id}", h.AdminUsers.Delete)

		r.Get("/orders", h.AdminOrders.List)
		r.Patch("/orders/{id}/status", h.AdminOrders.UpdateStatus)
		r.Delete("/orders/{id}", h.AdminOrders.Delete)

		r.Get("/profile", h.Profile.Show)
		r.Patch("/profile", h.Profile.Update)
		r.Patch("/profile/password", h.Profile.UpdatePassword)
	})

	return r
}
