package eventbus

import (
	"context"

	"github.com/annel0/voxel-spread/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог на уровне DEBUG.
// Функция неблокирующая.
func StartLoggingListener(bus EventBus) (Subscription, error) {
	log := logging.GetComponentLogger("eventbus")
	sub, err := bus.Subscribe(context.Background(), Filter{}, func(ctx context.Context, ev *Envelope) {
		log.Debug("%s %s src=%s prio=%d size=%dB meta=%v", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload), ev.Metadata)
	})
	if err != nil {
		return nil, err
	}
	log.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
