// Package di provides dependency injection configuration for the BookCourier server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/api"
	"github.com/bookcourier/bookcourier-server/internal/auth"
	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/di/providers"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/payment"
	"github.com/bookcourier/bookcourier-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideValidator)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)

	// Integrations
	do.Provide(injector, providers.ProvideLocalTokenService)
	do.Provide(injector, providers.ProvideVerifier)
	do.Provide(injector, providers.ProvidePaymentProvider)
	do.Provide(injector, providers.ProvidePublisher)

	// Business services
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideOrderService)
	do.Provide(injector, providers.ProvideCheckoutService)
	do.Provide(injector, providers.ProvideWishlistService)
	do.Provide(injector, providers.ProvideInvoiceService)

	// Server
	do.Provide(injector, providers.ProvideRateLimiter)
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[auth.Verifier](injector)
	_ = do.MustInvoke[payment.Provider](injector)
	_ = do.MustInvoke[*providers.PublisherHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.CatalogService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.OrderService](injector)
	_ = do.MustInvoke[*service.CheckoutService](injector)
	_ = do.MustInvoke[*service.WishlistService](injector)
	_ = do.MustInvoke[*service.InvoiceService](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

// NewCLIContainer wires the storage and service layers around an already
// loaded config, without the HTTP server or payment provider.
func NewCLIContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideLocalTokenService)
	do.Provide(injector, providers.ProvidePublisher)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideUserService)

	return injector
}
