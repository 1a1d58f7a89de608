package search

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcourier/bookcourier-server/internal/domain"
)

// setupTestIndex creates a temporary on-disk search index for testing.
func setupTestIndex(t *testing.T) *SearchIndex {
	t.Helper()

	index, err := NewSearchIndex(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testBook(id, title, author, category, slug, price string, qty int) *domain.Book {
	return &domain.Book{
		Record:       domain.Record{ID: id, CreatedAt: time.Now()},
		Title:        title,
		Author:       author,
		Category:     category,
		CategorySlug: slug,
		Price:        decimal.RequireFromString(price),
		Quantity:     qty,
		Owner:        domain.Party{Email: "seller@example.com"},
	}
}

func seedCatalog(t *testing.T, index *SearchIndex) {
	t.Helper()
	books := []*domain.Book{
		testBook("book-1", "The Hobbit", "J.R.R. Tolkien", "Fantasy", "fantasy", "15.00", 2),
		testBook("book-2", "The Fellowship of the Ring", "J.R.R. Tolkien", "Fantasy", "fantasy", "20.00", 0),
		testBook("book-3", "Dune", "Frank Herbert", "Science Fiction", "science-fiction", "12.00", 1),
		testBook("book-4", "Pride and Prejudice", "Jane Austen", "Classics", "classics", "5.00", 4),
	}
	for _, b := range books {
		require.NoError(t, index.IndexBook(context.Background(), b))
	}
}

func hitIDs(r *SearchResult) []string {
	ids := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		ids[i] = h.ID
	}
	return ids
}

func TestNewSearchIndex(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewSearchIndex_ReopensExisting(t *testing.T) {
	dir := t.TempDir()

	first, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	require.NoError(t, first.IndexBook(context.Background(),
		testBook("book-1", "Dune", "Frank Herbert", "", "", "1", 1)))
	require.NoError(t, first.Close())

	second, err := NewSearchIndex(Options{DataPath: dir})
	require.NoError(t, err)
	defer second.Close()

	count, err := second.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_TitleBeatsAuthor(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "hobbit"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)
	assert.Equal(t, "book-1", result.Hits[0].ID)
	assert.Equal(t, "The Hobbit", result.Hits[0].Title)
}

func TestSearch_AuthorMatch(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "tolkien"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-1", "book-2"}, hitIDs(result))
}

func TestSearch_FuzzyTypo(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	result, err := index.Search(context.Background(), SearchParams{Query: "dume"})
	require.NoError(t, err)
	assert.Contains(t, hitIDs(result), "book-3")
}

func TestSearch_Filters(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)
	ctx := context.Background()

	byCategory, err := index.Search(ctx, SearchParams{CategorySlug: "fantasy"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"book-1", "book-2"}, hitIDs(byCategory))

	inStock, err := index.Search(ctx, SearchParams{CategorySlug: "fantasy", InStockOnly: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-1"}, hitIDs(inStock))

	cheap, err := index.Search(ctx, SearchParams{MaxPrice: 12, SortBy: SortPriceAsc})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-4", "book-3"}, hitIDs(cheap))
}

func TestSearch_EmptyQueryMatchesAll(t *testing.T) {
	index := setupTestIndex(t)
	seedCatalog(t, index)

	result, err := index.Search(context.Background(), SearchParams{SortBy: SortPriceDesc})
	require.NoError(t, err)
	assert.Equal(t, uint64(4), result.Total)
	assert.Equal(t, []string{"book-2", "book-1", "book-3", "book-4"}, hitIDs(result))
}

func TestIndexBook_Replaces(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	b := testBook("book-1", "Dune", "Frank Herbert", "", "", "1", 1)
	require.NoError(t, index.IndexBook(ctx, b))
	b.Title = "Children of Dune"
	require.NoError(t, index.IndexBook(ctx, b))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	result, err := index.Search(ctx, SearchParams{Query: "children"})
	require.NoError(t, err)
	assert.Equal(t, []string{"book-1"}, hitIDs(result))
}

func TestRebuild(t *testing.T) {
	for _, inMemory := range []bool{false, true} {
		name := "disk"
		if inMemory {
			name = "memory"
		}
		t.Run(name, func(t *testing.T) {
			index, err := NewSearchIndex(Options{DataPath: t.TempDir(), InMemory: inMemory})
			require.NoError(t, err)
			defer index.Close()
			seedCatalog(t, index)

			err = index.Rebuild([]*domain.Book{
				testBook("book-9", "Emma", "Jane Austen", "Classics", "classics", "3.00", 1),
			})
			require.NoError(t, err)

			count, err := index.DocumentCount()
			require.NoError(t, err)
			assert.Equal(t, uint64(1), count)
		})
	}
}

func TestBookToDocument(t *testing.T) {
	b := testBook("book-1", "Dune", "Frank Herbert", "Science Fiction", "science-fiction", "12.50", 3)
	b.Owner.Email = "Seller@Example.com"

	doc := BookToDocument(b)
	assert.Equal(t, 12.5, doc.Price)
	assert.Equal(t, "seller@example.com", doc.OwnerEmail)

	m := doc.ToMap()
	assert.Equal(t, "Dune", m["title"])
	assert.Equal(t, float64(3), m["quantity"])
	assert.NotContains(t, m, "description")
}
