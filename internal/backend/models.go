// Package backend is the typed HTTP client for the upstream store API,
// which owns all durable data: users, products, blogs, and orders. The
// gateway holds no database -- every read and write in this package goes
// over the wire, and upstream failures are normalized into the apperror
// taxonomy so callers never see transport details.
package backend

import "time"

// Role values returned by the upstream API.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the upstream identity record. The gateway treats it as opaque
// except for ID and Role, which drive session and guard decisions.
type User struct {
	ID          string `json:"_id"`
	Username    string `json:"username"`
	FullName    string `json:"fullname"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Avatar      string `json:"avatar,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Product is one purchasable item in the upstream catalog. Quantity is the
// current stock figure and acts as the per-line ceiling in the cart.
type Product struct {
	ID          string  `json:"_id"`
	Name        string  `json:"name"`
	Description string  `json:"description,omitempty"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
	Image       string  `json:"image,omitempty"`
}

// OrderItem is one line of a submitted order. Field names follow the
// upstream wire format exactly.
type OrderItem struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// Order is a placed order as returned by the upstream API.
type Order struct {
	ID         string      `json:"_id"`
	User       string      `json:"user,omitempty"`
	OrderItems []OrderItem `json:"orderItems"`
	TotalPrice float64     `json:"totalPrice,omitempty"`
	Status     string      `json:"status,omitempty"`
	CreatedAt  time.Time   `json:"createdAt,omitempty"`
}

// Blog is a content article (recipes, smart-cooking guides, brand news).
type Blog struct {
	ID        string    `json:"_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category,omitempty"`
	Image     string    `json:"image,omitempty"`
	Author    string    `json:"author,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// DashboardStats is the admin dashboard aggregate.
type DashboardStats struct {
	TotalUsers    int `json:"totalUsers"`
	TotalProducts int `json:"totalProducts"`
	TotalBlogs    int `json:"totalBlogs"`
	TotalOrders   int `json:"totalOrders"`
}

// RegisterInput is the multipart payload for creating an account. Avatar
// is optional; when AvatarData is non-nil it is attached as a file part.
type RegisterInput struct {
	Username    string
	Email       string
	FullName    string
	Password    string
	PhoneNumber string
	Address     string
	City        string
	PostalCode  string
	AvatarName  string
	AvatarData  []byte
}

// ProfileUpdate holds the editable profile fields for PATCH /users/update.
// Empty fields are omitted so the upstream only touches what changed.
type ProfileUpdate struct {
	FullName    string `json:"fullname,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
	City        string `json:"city,omitempty"`
	PostalCode  string `json:"postalCode,omitempty"`
}

// ProductInput is the multipart payload for creating a product.
type ProductInput struct {
	Name        string
	Description string
	Price       string
	Quantity    string
	ImageName   string
	ImageData   []byte
}

// ProductUpdate holds the JSON fields for updating a product (image is
// uploaded separately, matching the upstream's split endpoints).
type ProductUpdate struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

// BlogInput is the multipart payload for creating or replacing a blog.
type BlogInput struct {
	Title     string
	Content   string
	Category  string
	ImageName string
	ImageData []byte
}
