package changefeed

import (
	"context"

	"github.com/annel0/voxel-spread/internal/eventbus"
	"github.com/annel0/voxel-spread/internal/logging"
)

// ApplyFunc получает декодированную партию изменений
type ApplyFunc func(source string, changes []Change)

// Consumer слушает партии изменений и передаёт их обработчику.
type Consumer struct {
	sub   eventbus.Subscription
	codec Codec
	apply ApplyFunc
	log   *logging.Logger
}

// NewConsumer подписывается на BlockChangeBatch
func NewConsumer(bus eventbus.EventBus, codec Codec, apply ApplyFunc) (*Consumer, error) {
	if codec == nil {
		codec = NewJSONCodec()
	}
	c := &Consumer{codec: codec, apply: apply, log: logging.GetChangefeedLogger()}
	sub, err := bus.Subscribe(context.Background(), eventbus.Filter{Types: []string{eventbus.EventBlockChangeBatch}}, c.handle)
	if err != nil {
		return nil, err
	}
	c.sub = sub
	return c, nil
}

func (c *Consumer) handle(ctx context.Context, ev *eventbus.Envelope) {
	if codec := ev.Metadata["codec"]; codec != "" && codec != c.codec.Name() {
		c.log.Warn("Consumer: партия %s в кодеке %s, ожидался %s", ev.ID, codec, c.codec.Name())
		return
	}
	changes, err := c.codec.Decode(ev.Payload)
	if err != nil {
		c.log.Warn("Consumer decode error: %v", err)
		return
	}
	c.log.Trace("Consumer: %d изменений от %s (%d байт)", len(changes), ev.Source, len(ev.Payload))
	c.apply(ev.Source, changes)
}

// Close отписывается от шины
func (c *Consumer) Close() {
	c.sub.Unsubscribe()
}
