package api

import (
	"time"

	"github.com/bookcourier/bookcourier-server/internal/domain"
)

// PartyResponse names a person by name and email.
type PartyResponse struct {
	Name  string `json:"name" doc:"Display name"`
	Email string `json:"email" doc:"Email address"`
}

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID           string        `json:"id" doc:"Book ID"`
	Title        string        `json:"title" doc:"Title"`
	Author       string        `json:"author" doc:"Author"`
	Description  string        `json:"description,omitempty" doc:"Description"`
	Price        float64       `json:"price" doc:"Price in major currency units"`
	Quantity     int           `json:"quantity" doc:"Copies available"`
	Category     string        `json:"category" doc:"Category display name"`
	CategorySlug string        `json:"category_slug" doc:"Category slug used for filtering"`
	Image        string        `json:"image,omitempty" doc:"Cover image URL"`
	Owner        PartyResponse `json:"owner" doc:"Listing owner"`
	CreatedAt    time.Time     `json:"created_at" doc:"Creation time"`
	UpdatedAt    time.Time     `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	return BookResponse{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		Description:  b.Description,
		Price:        b.Price.InexactFloat64(),
		Quantity:     b.Quantity,
		Category:     b.Category,
		CategorySlug: b.CategorySlug,
		Image:        b.ImageURL,
		Owner:        PartyResponse(b.Owner),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
	}
}

func toBookResponses(books []*domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i, b := range books {
		out[i] = toBookResponse(b)
	}
	return out
}

// OrderBookResponse is the listing snapshot an order was placed against.
type OrderBookResponse struct {
	Title    string        `json:"title"`
	Author   string        `json:"author"`
	Price    float64       `json:"price"`
	Image    string        `json:"image,omitempty"`
	Category string        `json:"category"`
	Seller   PartyResponse `json:"seller"`
}

// CustomerResponse holds the buyer's contact fields.
type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

// OrderResponse contains order data in API responses.
type OrderResponse struct {
	ID            string            `json:"id" doc:"Order ID"`
	BookID        string            `json:"book_id" doc:"Ordered book"`
	Book          OrderBookResponse `json:"book" doc:"Listing snapshot at order time"`
	Customer      CustomerResponse  `json:"customer" doc:"Buyer"`
	Quantity      int               `json:"quantity" doc:"Copies ordered"`
	Status        string            `json:"status" enum:"pending,paid" doc:"Order status"`
	PaymentStatus string            `json:"payment_status" enum:"unpaid,paid" doc:"Payment status"`
	TransactionID string            `json:"transaction_id,omitempty" doc:"Provider transaction id once paid"`
	CreatedAt     time.Time         `json:"created_at" doc:"Order time"`
	PaidAt        *time.Time        `json:"paid_at,omitempty" doc:"Payment time"`
}

func toOrderResponse(o *domain.Order) OrderResponse {
	return OrderResponse{
		ID:     o.ID,
		BookID: o.BookID,
		Book: OrderBookResponse{
			Title:    o.Book.Title,
			Author:   o.Book.Author,
			Price:    o.Book.Price.InexactFloat64(),
			Image:    o.Book.ImageURL,
			Category: o.Book.Category,
			Seller:   PartyResponse(o.Book.Seller),
		},
		Customer:      CustomerResponse(o.Customer),
		Quantity:      o.Quantity,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TransactionID: o.TransactionID,
		CreatedAt:     o.CreatedAt,
		PaidAt:        o.PaidAt,
	}
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

// PaymentResponse is one invoice line.
type PaymentResponse struct {
	ID            string    `json:"id" doc:"Payment ID"`
	TransactionID string    `json:"transaction_id" doc:"Provider transaction id"`
	OrderID       string    `json:"order_id" doc:"Settled order"`
	BookID        string    `json:"book_id" doc:"Purchased book"`
	CustomerEmail string    `json:"customer_email" doc:"Buyer email"`
	Amount        float64   `json:"amount" doc:"Amount in major currency units"`
	Currency      string    `json:"currency" doc:"ISO currency code"`
	PaidAt        time.Time `json:"paid_at" doc:"Payment time"`
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = PaymentResponse{
			ID:            p.ID,
			TransactionID: p.TransactionID,
			OrderID:       p.OrderID,
			BookID:        p.BookID,
			CustomerEmail: p.CustomerEmail,
			Amount:        p.Amount.InexactFloat64(),
			Currency:      p.Currency,
			PaidAt:        p.PaidAt,
		}
	}
	return out
}

// WishlistResponse is a saved book.
type WishlistResponse struct {
	ID        string    `json:"id" doc:"Entry ID"`
	BookID    string    `json:"book_id" doc:"Saved book"`
	UserEmail string    `json:"user_email" doc:"Owner of the wishlist"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Price     float64   `json:"price"`
	Image     string    `json:"image,omitempty"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

func toWishlistResponse(e *domain.WishlistEntry) WishlistResponse {
	return WishlistResponse{
		ID:        e.ID,
		BookID:    e.BookID,
		UserEmail: e.UserEmail,
		Title:     e.Title,
		Author:    e.Author,
		Price:     e.Price.InexactFloat64(),
		Image:     e.ImageURL,
		Category:  e.Category,
		CreatedAt: e.CreatedAt,
	}
}

// UserResponse contains account data in API responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"Email address"`
	Name        string    `json:"name" doc:"Display name"`
	Image       string    `json:"image,omitempty" doc:"Avatar URL"`
	Role        string    `json:"role" enum:"user,librarian,admin" doc:"Role"`
	CreatedAt   time.Time `json:"created_at" doc:"Registration time"`
	LastLoginAt time.Time `json:"last_login_at" doc:"Most recent login"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Image:       u.ImageURL,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
