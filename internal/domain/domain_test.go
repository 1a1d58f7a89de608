package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMinorUnits_Truncates(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"12.00", 1200},
		{"12", 1200},
		{"19.99", 1999},
		{"0.5", 50},
		{"7.129", 712},
		{"7.999", 799},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			assert.Equal(t, tt.want, MinorUnits(decimal.RequireFromString(tt.price)))
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(1200).Equal(decimal.RequireFromString("12.00")))
	assert.True(t, FromMinorUnits(1999).Equal(decimal.RequireFromString("19.99")))
}

func TestPriceFromFloat(t *testing.T) {
	assert.Equal(t, "19.99", PriceFromFloat(19.99).String())
	assert.Equal(t, "12", PriceFromFloat(12.00).String())
	assert.Equal(t, "3.14", PriceFromFloat(3.14159).String())
}

func TestRole_Valid(t *testing.T) {
	for _, r := range Roles {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("seller").Valid())
	assert.False(t, Role("").Valid())
}

func TestRole_OneOf(t *testing.T) {
	assert.True(t, RoleLibrarian.OneOf(RoleLibrarian, RoleAdmin))
	assert.False(t, RoleLibrarian.OneOf(RoleAdmin))
	assert.False(t, Role("").OneOf(RoleUser, RoleAdmin))
	assert.False(t, Role("admin").OneOf())

	u := &User{Role: RoleLibrarian}
	assert.False(t, u.IsAdmin())
}

func TestSameEmail(t *testing.T) {
	assert.True(t, SameEmail("Reader@Example.com ", "reader@example.com"))
	assert.False(t, SameEmail("a@example.com", "b@example.com"))
}

func TestBook_OwnershipAndStock(t *testing.T) {
	b := &Book{Quantity: 1, Owner: Party{Name: "Nadia", Email: "nadia@example.com"}}

	assert.True(t, b.InStock())
	assert.True(t, b.OwnedBy("NADIA@example.com"))
	assert.False(t, b.OwnedBy("other@example.com"))

	b.Quantity = 0
	assert.False(t, b.InStock())
}

func TestSnapshotOf(t *testing.T) {
	b := &Book{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Price:    decimal.RequireFromString("12.00"),
		Category: "Science Fiction",
		ImageURL: "https://img.example/dune.jpg",
		Owner:    Party{Name: "Nadia", Email: "nadia@example.com"},
	}

	snap := SnapshotOf(b)

	assert.Equal(t, "Dune", snap.Title)
	assert.Equal(t, "nadia@example.com", snap.Seller.Email)
	assert.True(t, snap.Price.Equal(b.Price))

	// Later edits to the listing do not leak into the snapshot.
	b.Title = "Dune Messiah"
	assert.Equal(t, "Dune", snap.Title)
}

func TestOrder_MarkPaid(t *testing.T) {
	o := &Order{Status: OrderPending, PaymentStatus: PaymentUnpaid}
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	o.MarkPaid("pi_123", at)

	assert.True(t, o.IsPaid())
	assert.Equal(t, OrderPaid, o.Status)
	assert.Equal(t, "pi_123", o.TransactionID)
	assert.Equal(t, at, *o.PaidAt)
}

func TestBookUpdate_Empty(t *testing.T) {
	assert.True(t, BookUpdate{}.Empty())

	title := "New"
	assert.False(t, BookUpdate{Title: &title}.Empty())
}

func TestBookSort_Valid(t *testing.T) {
	assert.True(t, SortPriceAsc.Valid())
	assert.False(t, BookSort("alphabetical").Valid())
}

func TestFoldTitle(t *testing.T) {
	tests := []struct {
		a, b string
	}{
		{"Émile", "ÉMILE"},
		{"Émile", "émile"},
		{"Straße", "STRASSE"},
		{"The Hobbit", "the hobbit"},
	}
	for _, tt := range tests {
		t.Run(tt.a+"/"+tt.b, func(t *testing.T) {
			assert.Equal(t, FoldTitle(tt.a), FoldTitle(tt.b))
		})
	}
}
