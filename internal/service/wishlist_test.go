package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
)

func TestWishlistService_Add(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Saved", "6.50", 1)

	entry, err := env.wishlist.Add(ctx, buyer, book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Saved", entry.Title)
	assert.Equal(t, "6.50", entry.Price.StringFixed(2))

	// Same user in a different case is still a duplicate.
	_, err = env.wishlist.Add(ctx, Caller{Email: "READER@EXAMPLE.COM"}, book.ID)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrConflict))

	_, err = env.wishlist.Add(ctx, seller, book.ID)
	require.NoError(t, err, "other users can save the same book")

	entries, err := env.wishlist.List(ctx, buyerEmail)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, book.ID, entries[0].BookID)
}

func TestWishlistService_Add_UnknownBook(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.wishlist.Add(context.Background(), buyer, "book-V1StGXR8_Z5jdHi6B-myT")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))
}
