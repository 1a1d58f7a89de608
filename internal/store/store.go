package store

import (
	"context"
	"net/http"

	"github.com/bookcourier/bookcourier-server/internal/domain"
)

// ErrLastAdmin is returned when a role change would leave no admin.
var ErrLastAdmin = &Error{
	Code:    http.StatusForbidden,
	Message: "cannot demote the last admin",
}

// SearchIndexer keeps the discovery index in sync with catalog writes.
// Store calls it after a book is created, edited, or sold; failures are
// logged and never fail the write.
type SearchIndexer interface {
	IndexBook(ctx context.Context, book *domain.Book) error
}

// NoopSearchIndexer discards index updates.
type NoopSearchIndexer struct{}

// IndexBook implements SearchIndexer as a no-op.
func (NoopSearchIndexer) IndexBook(context.Context, *domain.Book) error { return nil }

// NewNoopSearchIndexer creates a no-op indexer for tests and the CLI.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
