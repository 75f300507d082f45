package changefeed

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/annel0/voxel-spread/internal/eventbus"
	"github.com/annel0/voxel-spread/internal/logging"
)

// BatchManager накапливает изменения и отправляет их пакетами через EventBus.
// Каждый мир имеет собственный экземпляр.
type BatchManager struct {
	mu       sync.Mutex
	buf      []Change
	capacity int

	flushEvery time.Duration
	bus        eventbus.EventBus
	source     string
	codec      Codec
	log        *logging.Logger

	kick     chan struct{} // буфер заполнен
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewBatchManager создаёт менеджер с указанным размером партии и интервалом отправки.
// Партия уходит по таймеру или при заполнении буфера; отправка всегда
// идёт в горутине менеджера, Add не ждёт шину.
func NewBatchManager(bus eventbus.EventBus, source string, capacity int, flushEvery time.Duration, codec Codec) *BatchManager {
	if codec == nil {
		codec = NewJSONCodec()
	}
	if capacity <= 0 {
		capacity = 256
	}
	if flushEvery <= 0 {
		flushEvery = time.Second
	}
	bm := &BatchManager{
		buf:        make([]Change, 0, capacity),
		capacity:   capacity,
		flushEvery: flushEvery,
		bus:        bus,
		source:     source,
		codec:      codec,
		log:        logging.GetChangefeedLogger(),
		kick:       make(chan struct{}, 1),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
	}
	go bm.loop()
	return bm
}

// Add добавляет изменение в буфер
func (bm *BatchManager) Add(ch Change) {
	bm.mu.Lock()
	bm.buf = append(bm.buf, ch)
	full := len(bm.buf) >= bm.capacity
	bm.mu.Unlock()

	if full {
		select {
		case bm.kick <- struct{}{}:
		default:
		}
	}
}

func (bm *BatchManager) loop() {
	ticker := time.NewTicker(bm.flushEvery)
	defer ticker.Stop()
	defer close(bm.done)

	for {
		select {
		case <-ticker.C:
			bm.Flush()
		case <-bm.kick:
			bm.Flush()
		case <-bm.quit:
			return
		}
	}
}

// Flush отсылает накопленные изменения единым сообщением.
func (bm *BatchManager) Flush() {
	bm.mu.Lock()
	if len(bm.buf) == 0 {
		bm.mu.Unlock()
		return
	}
	changes := make([]Change, len(bm.buf))
	copy(changes, bm.buf)
	bm.buf = bm.buf[:0]
	bm.mu.Unlock()

	payload, err := bm.codec.Encode(changes)
	if err != nil {
		bm.log.Warn("BatchManager encode error: %v", err)
		return
	}

	env := eventbus.NewEnvelope(bm.source, eventbus.EventBlockChangeBatch, payload)
	env.Priority = 5
	env.Metadata["codec"] = bm.codec.Name()
	env.Metadata["count"] = strconv.Itoa(len(changes))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := bm.bus.Publish(ctx, env); err != nil {
		bm.log.Warn("BatchManager publish error: %v", err)
	}
}

// Stop завершает работу менеджера и отправляет оставшиеся изменения.
func (bm *BatchManager) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.quit)
		<-bm.done
		bm.Flush()
	})
}
