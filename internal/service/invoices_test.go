package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookcourier/bookcourier-server/internal/domain"
)

func TestInvoiceService_List(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	book := env.createBook(t, "Ledger", "3.00", 5)
	env.createUser(t, admin, domain.RoleAdmin)

	other := Caller{Email: "other@example.com", Name: "Other"}
	for i, c := range []Caller{buyer, other} {
		order, err := env.orders.PlaceOrder(ctx, c, PlaceOrderRequest{BookID: book.ID})
		require.NoError(t, err)
		session, err := env.checkout.CreateSession(ctx, c, CreateSessionRequest{BookID: book.ID, OrderID: order.ID})
		require.NoError(t, err)
		env.provider.MarkPaid(session.SessionID, []string{"pi_a", "pi_b"}[i])
		_, err = env.checkout.ConfirmPayment(ctx, session.SessionID)
		require.NoError(t, err)
	}

	own, err := env.invoices.List(ctx, buyer, "other@example.com")
	require.NoError(t, err)
	require.Len(t, own, 1, "non-admins only see their own records")
	assert.Equal(t, "pi_a", own[0].TransactionID)

	all, err := env.invoices.List(ctx, admin, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "pi_b", all[0].TransactionID, "newest first")

	filtered, err := env.invoices.List(ctx, admin, "other@example.com")
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "pi_b", filtered[0].TransactionID)
}
