// Package service holds the marketplace business logic. Services validate
// input, translate store errors into domain errors, and publish events
// once a write has committed.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	domainerrors "github.com/bookcourier/bookcourier-server/internal/errors"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/id"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/store"
)

// Caller is the verified identity behind a request.
type Caller struct {
	Email string
	Name  string
}

// publish delivers event and logs a failure. The write it describes has
// already committed, so nothing is rolled back.
func publish(ctx context.Context, p events.Publisher, base *slog.Logger, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		logFor(ctx, base).Warn("Failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"error", err,
		)
	}
}

// logFor returns the request-scoped logger carried by ctx, or base when
// the call did not come through the HTTP stack.
func logFor(ctx context.Context, base *slog.Logger) *slog.Logger {
	return logger.FromContext(ctx, base)
}

// requireBookID rejects identifiers that could never name a book.
func requireBookID(bookID string) error {
	if !id.Valid(id.PrefixBook, bookID) {
		return domainerrors.InvalidInputf("invalid book id: %q", bookID)
	}
	return nil
}

// getBook loads a book, mapping a missing row to NotFound.
func getBook(ctx context.Context, books store.BookRepository, bookID string) (*domain.Book, error) {
	if err := requireBookID(bookID); err != nil {
		return nil, err
	}
	book, err := books.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found").WithCause(err)
		}
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to get book")
	}
	return book, nil
}

// isAdmin reports whether email belongs to a stored admin. Unknown users
// are not admins.
func isAdmin(ctx context.Context, users store.UserRepository, email string) (bool, error) {
	user, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, nil
		}
		return false, domainerrors.Wrap(err, domainerrors.CodeInternal, "failed to look up caller role")
	}
	return user.IsAdmin(), nil
}

// checkPrice rejects a client-supplied price that differs from the stored one.
func checkPrice(book *domain.Book, seen *decimal.Decimal) error {
	if seen == nil {
		return nil
	}
	if !seen.Equal(book.Price) {
		return domainerrors.InvalidInputf("price mismatch: listing price is %s", book.Price.StringFixed(2))
	}
	return nil
}
