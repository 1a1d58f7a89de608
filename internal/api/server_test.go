package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcourier/bookcourier-server/internal/auth"
	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/events/eventstest"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/payment/paymenttest"
	"github.com/bookcourier/bookcourier-server/internal/ratelimit"
	"github.com/bookcourier/bookcourier-server/internal/search"
	"github.com/bookcourier/bookcourier-server/internal/service"
	"github.com/bookcourier/bookcourier-server/internal/store/sqlite"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

const (
	sellerEmail = "seller@example.com"
	buyerEmail  = "reader@example.com"
	adminEmail  = "admin@example.com"
)

// testServer wraps the API server with the fakes behind it.
type testServer struct {
	*Server
	api      humatest.TestAPI
	store    *sqlite.Store
	provider *paymenttest.Provider
	events   *eventstest.Recorder
	tokens   *auth.LocalTokenService
}

// setupTestServer wires a server against a temporary database, an
// in-memory search index and a fake payment provider.
func setupTestServer(t *testing.T, opts ...func(*Options)) *testServer {
	t.Helper()
	tmpDir := t.TempDir()
	log := logger.Discard().Logger

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() }) //nolint:errcheck // Test cleanup

	index, err := search.NewSearchIndex(search.Options{InMemory: true, Logger: log})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() }) //nolint:errcheck // Test cleanup
	st.SetSearchIndexer(index)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)
	tokens, err := auth.NewLocalTokenService(key, time.Hour)
	require.NoError(t, err)

	provider := paymenttest.New()
	recorder := &eventstest.Recorder{}
	v := validation.New()

	services := &Services{
		Catalog: service.NewCatalogService(st, index, recorder, v, log),
		Users:   service.NewUserService(st, recorder, v, log),
		Orders:  service.NewOrderService(st, recorder, v, log),
		Checkout: service.NewCheckoutService(st, provider, recorder, v,
			service.CheckoutConfig{ClientDomain: "https://bookcourier.test", Currency: "usd"}, log),
		Wishlist: service.NewWishlistService(st, log),
		Invoices: service.NewInvoiceService(st, log),
	}

	options := Options{ClientDomain: "https://bookcourier.test", Index: index, Version: "test"}
	for _, opt := range opts {
		opt(&options)
	}

	server := NewServer(st, services, tokens, options, log)

	return &testServer{
		Server:   server,
		api:      humatest.Wrap(t, server.API()),
		store:    st,
		provider: provider,
		events:   recorder,
		tokens:   tokens,
	}
}

// authHeader issues a token for email and formats it as a header argument.
func (ts *testServer) authHeader(t *testing.T, email string) string {
	t.Helper()
	token, err := ts.tokens.Issue(email, "")
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

// registerUser creates email through the API and optionally sets a role.
func (ts *testServer) registerUser(t *testing.T, email string, role domain.Role) string {
	t.Helper()
	header := ts.authHeader(t, email)
	resp := ts.api.Post("/user", header, map[string]any{"email": email, "name": "Test User"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	if role != domain.RoleUser {
		_, err := ts.store.UpdateUserRole(context.Background(), email, role)
		require.NoError(t, err)
	}
	return header
}

// listBook creates a book as a librarian seller and returns its id.
func (ts *testServer) listBook(t *testing.T, title string, price float64, quantity int) string {
	t.Helper()
	header := ts.registerUser(t, sellerEmail, domain.RoleLibrarian)
	resp := ts.api.Post("/books", header, map[string]any{
		"title":    title,
		"author":   "Ursula K. Le Guin",
		"price":    price,
		"quantity": quantity,
		"category": "Science Fiction",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var book BookResponse
	decodeData(t, resp, &book)
	return book.ID
}

// envelope mirrors the response envelope for decoding.
type envelope struct {
	Version int               `json:"v"`
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details"`
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &env), resp.Body.String())
	assert.Equal(t, EnvelopeVersion, env.Version)
	return env
}

// decodeData asserts a success envelope and unmarshals its data into v.
func decodeData(t *testing.T, resp *httptest.ResponseRecorder, v any) {
	t.Helper()
	env := decodeEnvelope(t, resp)
	require.True(t, env.Success, resp.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, v))
}

// requireError asserts a failure envelope with the given status and code.
func requireError(t *testing.T, resp *httptest.ResponseRecorder, status int, code string) envelope {
	t.Helper()
	require.Equal(t, status, resp.Code, resp.Body.String())
	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, code, env.Code)
	assert.NotEmpty(t, env.Error)
	return env
}

func TestEveryOperationHasPolicy(t *testing.T) {
	ts := setupTestServer(t)

	seen := map[string]bool{}
	for path, item := range ts.API().OpenAPI().Paths {
		for _, op := range []*huma.Operation{item.Get, item.Post, item.Patch, item.Put, item.Delete} {
			if op == nil {
				continue
			}
			_, ok := policies[op.OperationID]
			assert.True(t, ok, "%s %s (%s) has no policy", op.Method, path, op.OperationID)
			seen[op.OperationID] = true
		}
	}

	for id := range policies {
		assert.True(t, seen[id], "policy %s has no registered operation", id)
	}
}

func TestNotFoundRoute(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/no-such-route")
	requireError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestSuccessEnvelope(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/books")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decodeEnvelope(t, resp)
	assert.True(t, env.Success)
	assert.Empty(t, env.Code)
	assert.JSONEq(t, `[]`, string(env.Data))
	assert.NotContains(t, resp.Body.String(), "$schema")
}

func TestValidationErrorEnvelope(t *testing.T) {
	ts := setupTestServer(t)
	header := ts.registerUser(t, sellerEmail, domain.RoleLibrarian)

	resp := ts.api.Post("/books", header, map[string]any{"title": "No author"})
	env := requireError(t, resp, http.StatusBadRequest, "INVALID_INPUT")
	assert.NotEmpty(t, env.Details)
}

func TestRateLimitedWrites(t *testing.T) {
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, func(o *Options) { o.Limiter = limiter })

	for i := 0; i < 2; i++ {
		resp := ts.api.Post("/wishlist", map[string]any{"bookId": "x"})
		assert.Equal(t, http.StatusUnauthorized, resp.Code, fmt.Sprintf("attempt %d", i))
	}

	resp := ts.api.Post("/wishlist", map[string]any{"bookId": "x"})
	requireError(t, resp, http.StatusTooManyRequests, "RATE_LIMITED")

	// Reads are never throttled.
	assert.Equal(t, http.StatusOK, ts.api.Get("/books").Code)
}
