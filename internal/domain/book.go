package domain

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Party identifies a person by name and email; used for book owners,
// sellers, and customers.
type Party struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Book is a listing in the catalog.
type Book struct {
	Record
	Title        string          `json:"title"`
	Author       string          `json:"author"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	Category     string          `json:"category"`
	CategorySlug string          `json:"category_slug"`
	ImageURL     string          `json:"image,omitempty"`
	Owner        Party           `json:"owner"`
}

// InStock reports whether at least one copy is available.
func (b *Book) InStock() bool {
	return b.Quantity > 0
}

// OwnedBy reports whether email belongs to the listing's owner.
func (b *Book) OwnedBy(email string) bool {
	return SameEmail(b.Owner.Email, email)
}

// BookSort selects the ordering of catalog listings.
type BookSort string

// Supported catalog orderings.
const (
	SortNewest    BookSort = "newest"
	SortPriceAsc  BookSort = "price_asc"
	SortPriceDesc BookSort = "price_desc"
)

// Valid reports whether s is a supported ordering.
func (s BookSort) Valid() bool {
	switch s {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return true
	}
	return false
}

// BookFilter narrows catalog queries. Zero values mean "no filter".
type BookFilter struct {
	TitleContains string
	CategorySlug  string
	OwnerEmail    string
	Sort          BookSort
}

// BookUpdate carries a partial listing edit. Nil fields are left unchanged.
type BookUpdate struct {
	Title       *string
	Author      *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Category    *string
	ImageURL    *string
}

// Empty reports whether the update changes nothing.
func (u BookUpdate) Empty() bool {
	return u.Title == nil && u.Author == nil && u.Description == nil &&
		u.Price == nil && u.Quantity == nil && u.Category == nil && u.ImageURL == nil
}

// FoldTitle returns the case-folded NFC form of a title, used for
// case-insensitive matching beyond ASCII ("Émile" and "ÉMILE" fold alike).
func FoldTitle(title string) string {
	return norm.NFC.String(cases.Fold().String(norm.NFC.String(title)))
}
