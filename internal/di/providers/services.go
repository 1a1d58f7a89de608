package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/payment"
	"github.com/bookcourier/bookcourier-server/internal/service"
	"github.com/bookcourier/bookcourier-server/internal/validation"
)

// ProvideValidator provides the shared request validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideCatalogService provides the book catalog service.
func ProvideCatalogService(i do.Injector) (*service.CatalogService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCatalogService(storeHandle.Store, indexHandle.SearchIndex, publisher, v, log.Logger), nil
}

// ProvideUserService provides the user and role service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, publisher, v, log.Logger), nil
}

// ProvideOrderService provides the order service.
func ProvideOrderService(i do.Injector) (*service.OrderService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewOrderService(storeHandle.Store, publisher, v, log.Logger), nil
}

// ProvideCheckoutService provides the hosted checkout service.
func ProvideCheckoutService(i do.Injector) (*service.CheckoutService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	provider := do.MustInvoke[payment.Provider](i)
	publisher := do.MustInvoke[*PublisherHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewCheckoutService(storeHandle.Store, provider, publisher, v, service.CheckoutConfig{
		ClientDomain: cfg.Server.ClientDomain,
		Currency:     cfg.Payment.Currency,
	}, log.Logger), nil
}

// ProvideWishlistService provides the wishlist service.
func ProvideWishlistService(i do.Injector) (*service.WishlistService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWishlistService(storeHandle.Store, log.Logger), nil
}

// ProvideInvoiceService provides the invoice service.
func ProvideInvoiceService(i do.Injector) (*service.InvoiceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInvoiceService(storeHandle.Store, log.Logger), nil
}
