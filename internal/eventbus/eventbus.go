// Package eventbus - шина событий внутри процесса симулятора.
package eventbus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventBlockChangeBatch - партия изменений клеток мира
const EventBlockChangeBatch = "BlockChangeBatch"

// lowPriority: события ниже этого приоритета отбрасываются при полном буфере
const lowPriority = 5

// Envelope - конверт события с сериализованной полезной нагрузкой
type Envelope struct {
	ID        string
	Timestamp time.Time // UTC
	Source    string    // Мир-источник
	EventType string
	Version   int
	Priority  int // 0..9
	Payload   []byte
	Metadata  map[string]string // Кодек, размер партии и т.п.
}

// NewEnvelope создаёт конверт с новым UUID и текущим временем
func NewEnvelope(source, eventType string, payload []byte) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Payload:   payload,
		Metadata:  make(map[string]string),
	}
}

// ErrClosed возвращается при публикации в закрытую шину
var ErrClosed = errors.New("eventbus: closed")

// Filter отбирает события по типу и источнику. Пустой список пропускает всё.
type Filter struct {
	Types   []string
	Sources []string
}

func (f Filter) matches(ev *Envelope) bool {
	return contains(f.Types, ev.EventType) && contains(f.Sources, ev.Source)
}

func contains(list []string, v string) bool {
	if len(list) == 0 {
		return true
	}
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// Subscription отменяет подписку
type Subscription interface {
	Unsubscribe()
}

// Handler обрабатывает событие в отдельной горутине
type Handler func(ctx context.Context, ev *Envelope)

// Stats - счётчики шины
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus - публикация и подписка на события
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
	Close()
}

type listener struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// memoryBus раздаёт события из буферизованного канала одной горутиной-диспетчером
type memoryBus struct {
	mu        sync.RWMutex
	listeners map[int]listener
	nextID    int
	stats     Stats

	queue chan *Envelope

	// gate не даёт отправить в queue после её закрытия
	gate   sync.RWMutex
	closed bool

	closeOnce sync.Once
	drained   chan struct{}
	inflight  sync.WaitGroup
}

// NewMemoryBus создаёт шину с буфером на capacity событий
func NewMemoryBus(capacity int) EventBus {
	if capacity < 1 {
		capacity = 1
	}
	mb := &memoryBus{
		listeners: make(map[int]listener),
		queue:     make(chan *Envelope, capacity),
		drained:   make(chan struct{}),
	}
	go mb.dispatch()
	return mb
}

// Publish ставит событие в очередь. При полном буфере событие с приоритетом
// ниже lowPriority отбрасывается, остальные ждут места или отмены ctx.
func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	mb.gate.RLock()
	defer mb.gate.RUnlock()
	if mb.closed {
		return ErrClosed
	}

	select {
	case mb.queue <- ev:
		mb.bump(func(s *Stats) { s.Published++ })
		return nil
	default:
	}

	if ev.Priority < lowPriority {
		mb.bump(func(s *Stats) { s.Dropped++ })
		return nil
	}
	select {
	case mb.queue <- ev:
		mb.bump(func(s *Stats) { s.Published++ })
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	lctx, cancel := context.WithCancel(ctx)

	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	mb.listeners[id] = listener{filter: f, handler: h, ctx: lctx, cancel: cancel}
	mb.mu.Unlock()

	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	s := mb.stats
	mb.mu.RUnlock()
	s.InFlight = len(mb.queue)
	return s
}

// Close перестаёт принимать события, доставляет уже принятые и
// отменяет все подписки.
func (mb *memoryBus) Close() {
	mb.closeOnce.Do(func() {
		mb.gate.Lock()
		mb.closed = true
		close(mb.queue)
		mb.gate.Unlock()

		<-mb.drained
		mb.inflight.Wait()

		mb.mu.Lock()
		for id, l := range mb.listeners {
			l.cancel()
			delete(mb.listeners, id)
		}
		mb.mu.Unlock()
	})
}

func (mb *memoryBus) bump(fn func(s *Stats)) {
	mb.mu.Lock()
	fn(&mb.stats)
	mb.mu.Unlock()
}

func (mb *memoryBus) snapshot() []listener {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	out := make([]listener, 0, len(mb.listeners))
	for _, l := range mb.listeners {
		out = append(out, l)
	}
	return out
}

func (mb *memoryBus) dispatch() {
	defer close(mb.drained)
	for ev := range mb.queue {
		for _, l := range mb.snapshot() {
			if !l.filter.matches(ev) {
				continue
			}
			mb.inflight.Add(1)
			go mb.deliver(l, ev)
		}
	}
}

func (mb *memoryBus) deliver(l listener, ev *Envelope) {
	defer mb.inflight.Done()
	if l.ctx.Err() != nil {
		return
	}
	l.handler(l.ctx, ev)
	mb.bump(func(s *Stats) { s.Consumed++ })
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if l, ok := s.bus.listeners[s.id]; ok {
		l.cancel()
		delete(s.bus.listeners, s.id)
	}
	s.bus.mu.Unlock()
}
