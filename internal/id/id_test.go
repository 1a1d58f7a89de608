package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Uniqueness(t *testing.T) {
	ids := make(map[string]bool)
	count := 1000

	for i := 0; i < count; i++ {
		id, err := Generate(PrefixOrder)
		require.NoError(t, err)
		assert.False(t, ids[id], "ID should be unique: %s", id)
		ids[id] = true
	}

	assert.Len(t, ids, count)
}

func TestGenerate_Format(t *testing.T) {
	for _, prefix := range []string{PrefixBook, PrefixUser, PrefixOrder, PrefixPayment, PrefixWishlist} {
		t.Run(prefix, func(t *testing.T) {
			id, err := Generate(prefix)
			require.NoError(t, err)

			assert.True(t, strings.HasPrefix(id, prefix+"-"))
			assert.Len(t, id, len(prefix)+1+nanoidLength)
			assert.True(t, Valid(prefix, id))
		})
	}
}

func TestValid(t *testing.T) {
	good, err := Generate(PrefixBook)
	require.NoError(t, err)

	tests := []struct {
		name   string
		prefix string
		input  string
		want   bool
	}{
		{"generated", PrefixBook, good, true},
		{"wrong prefix", PrefixOrder, good, false},
		{"empty", PrefixBook, "", false},
		{"prefix only", PrefixBook, "book-", false},
		{"too short", PrefixBook, "book-abc", false},
		{"mongo object id", PrefixBook, "64b7f0c2a1e4c3b2a1f0e9d8", false},
		{"bad character", PrefixBook, "book-" + strings.Repeat("!", nanoidLength), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Valid(tt.prefix, tt.input))
		})
	}
}
