package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/logger"
	"github.com/bookcourier/bookcourier-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	db, err := sqlite.Open(cfg.Database.URL, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", cfg.Database.URL)

	return &StoreHandle{Store: db}, nil
}
