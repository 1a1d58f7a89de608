package providers

import (
	"github.com/samber/do/v2"

	"github.com/bookcourier/bookcourier-server/internal/config"
	"github.com/bookcourier/bookcourier-server/internal/events"
	"github.com/bookcourier/bookcourier-server/internal/logger"
)

// PublisherHandle wraps the event publisher with the pool behind it.
type PublisherHandle struct {
	events.Publisher
	pool *events.ChannelPool
}

// Shutdown implements do.Shutdownable.
func (h *PublisherHandle) Shutdown() error {
	if h.pool != nil {
		h.pool.Close()
	}
	return nil
}

// ProvidePublisher provides the RabbitMQ publisher, or a no-op publisher
// when AMQP_URL is empty or the broker is unreachable at startup.
func ProvidePublisher(i do.Injector) (*PublisherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Events.AMQPURL == "" {
		log.Info("AMQP_URL not set; domain events are not published")
		return &PublisherHandle{Publisher: events.Noop{}}, nil
	}

	pool, err := events.NewChannelPool(cfg.Events.AMQPURL, cfg.Events.Queue, cfg.Events.PoolSize, log.Logger)
	if err != nil {
		// Events are advisory; the marketplace runs without the broker.
		log.Warn("RabbitMQ unavailable; domain events are not published", "error", err)
		return &PublisherHandle{Publisher: events.Noop{}}, nil
	}

	return &PublisherHandle{
		Publisher: events.NewAMQPPublisher(pool, cfg.Events.Queue),
		pool:      pool,
	}, nil
}
