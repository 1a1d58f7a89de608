package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerInvoiceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listInvoices",
		Method:      http.MethodGet,
		Path:        "/dashboard/invoice",
		Summary:     "List invoices",
		Description: "Returns payment records, newest first. Admins see every payment and may filter by email.",
		Tags:        []string{"Checkout"},
		Security:    bearer,
	}, s.handleListInvoices)
}

// ListInvoicesInput contains parameters for listing invoices.
type ListInvoicesInput struct {
	Email string `query:"email" doc:"Customer filter (admins only)"`
}

// InvoiceListOutput wraps a list of payments for Huma.
type InvoiceListOutput struct {
	Body []PaymentResponse
}

func (s *Server) handleListInvoices(ctx context.Context, input *ListInvoicesInput) (*InvoiceListOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	payments, err := s.services.Invoices.List(ctx, caller, input.Email)
	if err != nil {
		return nil, err
	}
	return &InvoiceListOutput{Body: toPaymentResponses(payments)}, nil
}
