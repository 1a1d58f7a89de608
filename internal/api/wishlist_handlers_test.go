package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcourier/bookcourier-server/internal/domain"
)

func TestWishlist(t *testing.T) {
	ts := setupTestServer(t)
	bookID := ts.listBook(t, "The Beginning Place", 6.5, 1)
	reader := ts.registerUser(t, buyerEmail, domain.RoleUser)
	admin := ts.registerUser(t, adminEmail, domain.RoleAdmin)

	resp := ts.api.Post("/wishlist", reader, map[string]any{"bookId": bookID})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var entry WishlistResponse
	decodeData(t, resp, &entry)
	assert.Equal(t, bookID, entry.BookID)
	assert.Equal(t, "The Beginning Place", entry.Title)
	assert.InDelta(t, 6.5, entry.Price, 0.0001)

	resp = ts.api.Post("/wishlist", reader, map[string]any{"bookId": bookID})
	requireError(t, resp, http.StatusConflict, "CONFLICT")

	resp = ts.api.Post("/wishlist", reader, map[string]any{"bookId": "book-V1StGXR8_Z5jdHi6B-myT"})
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")

	var entries []WishlistResponse
	decodeData(t, ts.api.Get("/wishlist", reader), &entries)
	assert.Len(t, entries, 1)

	decodeData(t, ts.api.Get("/wishlist?email="+buyerEmail, admin), &entries)
	assert.Len(t, entries, 1)

	decodeData(t, ts.api.Get("/wishlist", admin), &entries)
	assert.Empty(t, entries)
}
