package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shopspring/decimal"

	"github.com/bookcourier/bookcourier-server/internal/domain"
	"github.com/bookcourier/bookcourier-server/internal/service"
)

func (s *Server) registerOrderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "placeOrder",
		Method:        http.MethodPost,
		Path:          "/orders",
		Summary:       "Place order",
		Description:   "Orders one copy of a book and takes it out of stock",
		Tags:          []string{"Orders"},
		Security:      bearer,
		DefaultStatus: http.StatusCreated,
	}, s.handlePlaceOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "getOrder",
		Method:      http.MethodGet,
		Path:        "/orders/{id}",
		Summary:     "Get order",
		Description: "Returns an order visible to its customer, its seller, or an admin",
		Tags:        []string{"Orders"},
		Security:    bearer,
	}, s.handleGetOrder)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMyOrders",
		Method:      http.MethodGet,
		Path:        "/my-order/{email}",
		Summary:     "List my orders",
		Description: "Returns orders placed by the caller, newest first",
		Tags:        []string{"Orders"},
		Security:    bearer,
	}, s.handleListMyOrders)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSellerOrders",
		Method:      http.MethodGet,
		Path:        "/manage-orders/{email}",
		Summary:     "List seller orders",
		Description: "Returns orders for books the caller sells, newest first",
		Tags:        []string{"Orders"},
		Security:    bearer,
	}, s.handleListSellerOrders)
}

// PlaceOrderRequest is the body for placing an order.
type PlaceOrderRequest struct {
	BookID  string   `json:"bookId" minLength:"1" doc:"Book to order"`
	Price   *float64 `json:"price,omitempty" minimum:"0" doc:"Price shown to the buyer; must match the listing"`
	Name    string   `json:"name,omitempty" maxLength:"200" doc:"Buyer name (defaults to the account name)"`
	Phone   string   `json:"phone,omitempty" maxLength:"40" doc:"Contact phone"`
	Address string   `json:"address,omitempty" maxLength:"500" doc:"Delivery address"`
}

// PlaceOrderInput wraps the place order request for Huma.
type PlaceOrderInput struct {
	Body PlaceOrderRequest
}

// OrderOutput wraps an order response for Huma.
type OrderOutput struct {
	Body OrderResponse
}

// OrderListOutput wraps a list of orders for Huma.
type OrderListOutput struct {
	Body []OrderResponse
}

// GetOrderInput contains parameters for getting an order.
type GetOrderInput struct {
	ID string `path:"id" doc:"Order ID"`
}

// clientPrice converts an optional displayed price.
func clientPrice(p *float64) *decimal.Decimal {
	if p == nil {
		return nil
	}
	d := domain.PriceFromFloat(*p)
	return &d
}

func (s *Server) handlePlaceOrder(ctx context.Context, input *PlaceOrderInput) (*OrderOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	b := input.Body
	order, err := s.services.Orders.PlaceOrder(ctx, caller, service.PlaceOrderRequest{
		BookID:  b.BookID,
		Price:   clientPrice(b.Price),
		Name:    b.Name,
		Phone:   b.Phone,
		Address: b.Address,
	})
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(order)}, nil
}

func (s *Server) handleGetOrder(ctx context.Context, input *GetOrderInput) (*OrderOutput, error) {
	caller, err := callerFrom(ctx)
	if err != nil {
		return nil, err
	}

	order, err := s.services.Orders.GetOrder(ctx, caller, input.ID)
	if err != nil {
		return nil, err
	}
	return &OrderOutput{Body: toOrderResponse(order)}, nil
}

func (s *Server) handleListMyOrders(ctx context.Context, input *OwnerEmailInput) (*OrderListOutput, error) {
	orders, err := s.services.Orders.ListCustomerOrders(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &OrderListOutput{Body: toOrderResponses(orders)}, nil
}

func (s *Server) handleListSellerOrders(ctx context.Context, input *OwnerEmailInput) (*OrderListOutput, error) {
	orders, err := s.services.Orders.ListSellerOrders(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	return &OrderListOutput{Body: toOrderResponses(orders)}, nil
}
