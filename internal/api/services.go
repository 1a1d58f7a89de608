package api

import "github.com/bookcourier/bookcourier-server/internal/service"

// Services groups all business logic services used by the API server.
type Services struct {
	Catalog  *service.CatalogService
	Users    *service.UserService
	Orders   *service.OrderService
	Checkout *service.CheckoutService
	Wishlist *service.WishlistService
	Invoices *service.InvoiceService
}
