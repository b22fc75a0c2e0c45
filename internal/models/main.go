// Package models defines the core data structures exchanged with the
// storefront backend and held in the session store.
package models

import "time"

// Role identifies the authorization level of a signed-in user.
type Role string

const (
	// RoleUser is a regular storefront customer.
	RoleUser Role = "user"
	// RoleAdmin is a console administrator.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one the storefront knows about.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// DashboardPath returns the landing route for the role.
func (r Role) DashboardPath() string {
	return "/" + string(r) + "/dashboard"
}

// Profile is the user identity returned by the backend at login.
type Profile struct {
	// ID is the backend's identifier for the user.
	ID string `json:"id"`
	// Name is the display name of the user.
	Name string `json:"name"`
	// Email is the login email address.
	Email string `json:"email"`
	// Role is either "user" or "admin".
	Role Role `json:"role"`
	// ProfileImage is an opaque filename reference served from the
	// authenticated user-image endpoint, empty when unset.
	ProfileImage string `json:"profileImage,omitempty"`
}

// Session holds the bearer credential and profile for one signed-in browser.
// It is created on a successful login response, read on every protected
// navigation and outgoing backend call, and destroyed on logout or on any
// authorization failure from the backend.
type Session struct {
	// Token addresses the session row; the browser holds it in a cookie.
	Token string
	// Credential is the opaque bearer token issued by the backend.
	Credential string
	// RefreshCredential is stored when the login response carries one.
	// Nothing consumes it.
	RefreshCredential string
	// Profile is the user identity snapshot from login.
	Profile Profile
	// CreatedAt is when the session row was created.
	CreatedAt time.Time
	// LastSeenAt is bumped on each lookup; the sweeper keys off it.
	LastSeenAt time.Time
}

// Product is a catalog item. Server-owned; the client only reads and writes
// it through the backend.
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	// Price is in minor currency units.
	Price int64 `json:"price"`
	Stock int64 `json:"stock"`
	// Image is an opaque filename reference, empty when the product has none.
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CartItem is one line of the cart. Name and price are snapshotted at
// add-time so later product edits never change an existing line.
type CartItem struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	NameAtAdded string `json:"nameAtAdded"`
	// PriceAtAdded is in minor currency units.
	PriceAtAdded int64 `json:"priceAtAdded"`
	Quantity     int64 `json:"quantity"`
}

// LineTotal is the displayed amount for the line: the add-time price times
// the quantity. The current product price never enters this.
func (i CartItem) LineTotal() int64 {
	return i.PriceAtAdded * i.Quantity
}

// Cart is the user's current cart as reported by the backend.
type Cart struct {
	Items []CartItem `json:"items"`
	Total int64      `json:"total"`
}

// OrderStatus is the lifecycle state of an order. The backend is the sole
// enforcer of legal transitions; the client displays and submits values only.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderProcessed OrderStatus = "processed"
	OrderShipped   OrderStatus = "shipped"
	OrderPaid      OrderStatus = "paid"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

// OrderStatuses lists every status the console can submit.
var OrderStatuses = []OrderStatus{
	OrderPending,
	OrderProcessed,
	OrderShipped,
	OrderPaid,
	OrderCompleted,
	OrderCancelled,
}

// OrderItem is one line of a placed order, snapshotted at order time.
type OrderItem struct {
	ProductID   string `json:"productId"`
	NameAtOrder string `json:"nameAtOrder"`
	// PriceAtOrder is in minor currency units.
	PriceAtOrder int64 `json:"priceAtOrder"`
	Quantity     int64 `json:"quantity"`
}

// Order is a placed order. Total is a snapshot, never recomputed from
// current prices.
type Order struct {
	ID        string      `json:"id"`
	UserName  string      `json:"userName,omitempty"`
	Items     []OrderItem `json:"items"`
	Total     int64       `json:"total"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
}

// User is an account row shown in the admin console.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
	// ProfileImage is an opaque filename reference, empty when unset.
	ProfileImage string `json:"profileImage,omitempty"`
}
