package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/payment"
)

// ProvidePaymentProvider provides Stripe when a secret key is configured.
// Without one every checkout call fails with PROVIDER_ERROR.
func ProvidePaymentProvider(i do.Injector) (payment.Provider, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Payment.StripeSecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY not set; checkout is disabled")
		return payment.Unconfigured{}, nil
	}

	log.Info("Stripe checkout enabled", "currency", cfg.Payment.Currency)
	return payment.NewStripeProvider(cfg.Payment.StripeSecretKey), nil
}
