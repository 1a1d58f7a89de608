// Package search provides the catalog discovery index using Bleve.
// Listings are indexed with their title, author, description and category so
// readers can find books with fuzzy, stemmed, multi-field queries that the
// plain title search cannot answer.
package search

import (
	"github.com/bookcourier/bookcourier-server/internal/domain"
)

// BookDocument is the indexed form of a catalog listing.
type BookDocument struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Author       string  `json:"author,omitempty"`
	Description  string  `json:"description,omitempty"`
	Category     string  `json:"category,omitempty"`
	CategorySlug string  `json:"category_slug,omitempty"`
	OwnerEmail   string  `json:"owner_email,omitempty"`
	Price        float64 `json:"price"`
	Quantity     int     `json:"quantity"`

	CreatedAt int64 `json:"created_at"` // Unix millis
}

// BookToDocument converts a listing to its index document.
func BookToDocument(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:           b.ID,
		Title:        b.Title,
		Author:       b.Author,
		Description:  b.Description,
		Category:     b.Category,
		CategorySlug: b.CategorySlug,
		OwnerEmail:   domain.NormalizeEmail(b.Owner.Email),
		Price:        b.Price.InexactFloat64(),
		Quantity:     b.Quantity,
		CreatedAt:    b.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// Bleve uses Go struct field names by default, but the mapping uses
// lowercase names, so we convert explicitly.
func (d *BookDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"title":      d.Title,
		"price":      d.Price,
		"quantity":   float64(d.Quantity),
		"created_at": float64(d.CreatedAt),
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Category != "" {
		m["category"] = d.Category
	}
	if d.CategorySlug != "" {
		m["category_slug"] = d.CategorySlug
	}
	if d.OwnerEmail != "" {
		m["owner_email"] = d.OwnerEmail
	}
	return m
}
