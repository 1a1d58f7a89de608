package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/events/eventstest"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/payment/paymenttest"
	"github.com/bookcourier/bookcourier-server/internal/search"
	"github.com/bookcourier/bookcourier-server/internal/store/sqlite"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

const (
	sellerEmail = "seller@example.com"
	buyerEmail  = "reader@example.com"
	adminEmail  = "admin@example.com"
)

var (
	seller = Caller{Email: sellerEmail, Name: "Seller"}
	buyer  = Caller{Email: buyerEmail, Name: "Reader"}
	admin  = Caller{Email: adminEmail, Name: "Admin"}
)

// testEnv wires every service against a temporary database.
type testEnv struct {
	store    *sqlite.Store
	index    *search.SearchIndex
	provider *paymenttest.Provider
	events   *eventstest.Recorder

	catalog  *CatalogService
	users    *UserService
	orders   *OrderService
	checkout *CheckoutService
	wishlist *WishlistService
	invoices *InvoiceService
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.Discard().Logger

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() }) //nolint:errcheck // Test cleanup

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() }) //nolint:errcheck // Test cleanup
	st.SetSearchIndexer(index)

	env := &testEnv{
		store:    st,
		index:    index,
		provider: paymenttest.New(),
		events:   &eventstest.Recorder{},
	}

	v := validation.New()
	env.catalog = NewCatalogService(st, index, env.events, v, log)
	env.users = NewUserService(st, env.events, v, log)
	env.orders = NewOrderService(st, env.events, v, log)
	env.checkout = NewCheckoutService(st, env.provider, env.events, v,
		CheckoutConfig{ClientDomain: "https://bookcourier.test", Currency: "usd"}, log)
	env.wishlist = NewWishlistService(st, log)
	env.invoices = NewInvoiceService(st, log)

	return env
}

// createBook lists a book owned by the seller.
func (e *testEnv) createBook(t *testing.T, title, price string, quantity int) *domain.Book {
	t.Helper()
	book, err := e.catalog.CreateBook(context.Background(), seller, CreateBookRequest{
		Title:    title,
		Author:   "Ursula K. Le Guin",
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
		Category: "Science Fiction",
	})
	require.NoError(t, err)
	return book
}

// createUser registers email and optionally promotes it.
func (e *testEnv) createUser(t *testing.T, c Caller, role domain.Role) {
	t.Helper()
	ctx := context.Background()
	_, _, err := e.users.UpsertUser(ctx, c, UpsertUserRequest{Email: c.Email, Name: c.Name})
	require.NoError(t, err)
	if role != domain.RoleUser {
		_, err = e.store.UpdateUserRole(ctx, c.Email, role)
		require.NoError(t, err)
	}
}

func priceOf(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestServiceLogsCarryRequestID(t *testing.T) {
	env := setupTestEnv(t)

	var buf bytes.Buffer
	scoped := slog.New(slog.NewJSONHandler(&buf, nil)).With("request_id", "req-42")
	ctx := logger.WithContext(context.Background(), scoped)

	_, err := env.catalog.CreateBook(ctx, seller, CreateBookRequest{
		Title:    "The Lathe of Heaven",
		Author:   "Ursula K. Le Guin",
		Price:    decimal.RequireFromString("6.00"),
		Quantity: 1,
		Category: "Science Fiction",
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"msg":"Book listed"`)
	assert.Contains(t, out, `"request_id":"req-42"`)
}

func TestPublishFailureLogsWithRequestID(t *testing.T) {
	var base, scoped bytes.Buffer
	baseLog := slog.New(slog.NewJSONHandler(&base, nil))
	ctx := logger.WithContext(context.Background(),
		slog.New(slog.NewJSONHandler(&scoped, nil)).With("request_id", "req-7"))

	rec := &eventstest.Recorder{Err: errors.New("broker down")}
	publish(ctx, rec, baseLog, events.New(events.TypeBookListed, events.BookListed{BookID: "book-1"}))

	assert.Empty(t, base.String())
	assert.Contains(t, scoped.String(), `"request_id":"req-7"`)
	assert.Contains(t, scoped.String(), "broker down")
}
