package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/auth"
	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/logger"
)

// ProvideVerifier provides the bearer token verifier selected by
// IDENTITY_PROVIDER.
func ProvideVerifier(i do.Injector) (auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Identity.Provider {
	case config.IdentityFirebase:
		creds, err := cfg.FirebaseCredentialsJSON()
		if err != nil {
			return nil, fmt.Errorf("decode firebase credentials: %w", err)
		}
		verifier, err := auth.NewFirebaseVerifier(context.Background(), creds)
		if err != nil {
			return nil, err
		}
		log.Info("Firebase identity verifier ready")
		return verifier, nil

	case config.IdentityLocal:
		tokens, err := do.Invoke[*auth.LocalTokenService](i)
		if err != nil {
			return nil, err
		}
		log.Warn("Local identity provider in use; tokens are minted by bookctl")
		return tokens, nil

	default:
		return nil, fmt.Errorf("unknown identity provider %q", cfg.Identity.Provider)
	}
}

// ProvideLocalTokenService provides the PASETO token service used by the
// local identity provider and by bookctl.
func ProvideLocalTokenService(i do.Injector) (*auth.LocalTokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.App.DataPath)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewLocalTokenService(key, cfg.Identity.LocalTokenDuration)
	if err != nil {
		return nil, err
	}

	log.Info("Local token key loaded",
		"key_path", auth.KeyPath(cfg.App.DataPath),
		"token_duration", cfg.Identity.LocalTokenDuration,
	)
	return tokens, nil
}
