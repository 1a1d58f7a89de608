package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookcourier/bookcourier-server/internal/service"
)

func (s *Server) registerCheckoutRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createCheckoutSession",
		Method:      http.MethodPost,
		Path:        "/payment-checkout-session",
		Summary:     "Create checkout session",
		Description: "Opens a hosted checkout for one book and returns the redirect URL",
		Tags:        []string{"Checkout"},
		Security:    bearer,
	}, s.handleCreateCheckoutSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirmPayment",
		Method:      http.MethodPatch,
		Path:        "/dashboard/payment-success",
		Summary:     "Confirm payment",
		Description: "Settles the order behind a completed checkout session. Safe to repeat.",
		Tags:        []string{"Checkout"},
	}, s.handleConfirmPayment)
}

// CheckoutRequest is the body for opening a checkout session.
type CheckoutRequest struct {
	BookID  string   `json:"bookId" minLength:"1" doc:"Book being bought"`
	Price   *float64 `json:"price,omitempty" minimum:"0" doc:"Price shown to the buyer; must match the listing"`
	OrderID string   `json:"orderId,omitempty" doc:"Pending order to settle"`
}

// CheckoutInput wraps the checkout request for Huma.
type CheckoutInput struct {
	Body CheckoutRequest
}

// CheckoutResponse carries the provider redirect.
type CheckoutResponse struct {
	URL       string `json:"url" doc:"Hosted checkout URL"`
	SessionID string `json:"session_id" doc:"Provider session id"`
}

// CheckoutOutput wraps the checkout response for Huma.
type CheckoutOutput struct {
	Body CheckoutResponse
}

// ConfirmPaymentInput names the checkout session to settle.
type ConfirmPaymentInput struct {
	SessionID string `query:"session_id" required:"true" minLength:"1" doc:"Provider session id"`
}

// ConfirmPaymentResponse reports how the confirmation went.
type ConfirmPaymentResponse struct {
	Status        string `json:"status" enum:"confirmed,already_confirmed,not_paid" doc:"Outcome"`
	TransactionID string `json:"transaction_id,omitempty" doc:"Provider transaction id"`
	OrderID       string `json:"order_id,omitempty" doc:"Settled order"`
	PaymentID     string `json:"payment_id,omitempty" doc:"Recorded payment"`
}

// ConfirmPaymentOutput wraps the confirm response for Huma.
type ConfirmPaymentOutput struct {
	Body ConfirmPaymentResponse
}

func (s *Server) handleCreateCheckoutSession(ctx context.Context, input *CheckoutInput) (*CheckoutOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	session, err := s.services.Checkout.CreateSession(ctx, caller, service.CreateSessionRequest{
		BookID:  input.Body.BookID,
		Price:   clientPrice(input.Body.Price),
		OrderID: input.Body.OrderID,
	})
	if err != nil {
		return nil, err
	}
	return &CheckoutOutput{Body: CheckoutResponse{URL: session.URL, SessionID: session.SessionID}}, nil
}

func (s *Server) handleConfirmPayment(ctx context.Context, input *ConfirmPaymentInput) (*ConfirmPaymentOutput, error) {
	result, err := s.services.Checkout.ConfirmPayment(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}
	return &ConfirmPaymentOutput{Body: ConfirmPaymentResponse{
		Status:        string(result.Status),
		TransactionID: result.TransactionID,
		OrderID:       result.OrderID,
		PaymentID:     result.PaymentID,
	}}, nil
}
