package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// WishlistEntry is a saved book for a user, with display fields copied at
// save time. A user can save a given book once.
type WishlistEntry struct {
	ID        string          `json:"id"`
	BookID    string          `json:"book_id"`
	UserEmail string          `json:"user_email"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"image,omitempty"`
	Category  string          `json:"category"`
	CreatedAt time.Time       `json:"created_at"`
}
