// Package schedule содержит очередь отложенных обновлений клеток,
// упорядоченную по тику пробуждения.
package schedule

import (
	"container/heap"
	"sync"

	"github.com/annel0/voxel-spread/internal/logging"
	"github.com/annel0/voxel-spread/internal/vec"
)

// Wakeup - наступившее пробуждение клетки
type Wakeup struct {
	Pos        vec.Vec3
	Tick       int64
	Generation uint64
}

type entry struct {
	Wakeup
	seq uint64
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].Tick != h[j].Tick {
		return h[i].Tick < h[j].Tick
	}
	return h[i].seq < h[j].seq
}
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

type pendingSlot struct {
	generation uint64
	tick       int64
}

// Queue хранит не более одного живого пробуждения на клетку. Записи в куче
// несут (позиция, поколение); запись, поколение которой не совпадает с текущим
// поколением клетки, считается устаревшей и молча отбрасывается при извлечении.
type Queue struct {
	mu          sync.Mutex
	items       entryHeap
	pending     map[vec.Vec3]pendingSlot
	generations map[vec.Vec3]uint64
	seq         uint64
}

// NewQueue создаёт пустую очередь
func NewQueue() *Queue {
	return &Queue{
		pending:     make(map[vec.Vec3]pendingSlot),
		generations: make(map[vec.Vec3]uint64),
	}
}

// Schedule назначает пробуждение клетки на tick, заменяя прежнее
func (q *Queue) Schedule(pos vec.Vec3, tick int64) uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()

	gen := q.bump(pos)
	q.pending[pos] = pendingSlot{generation: gen, tick: tick}
	q.seq++
	heap.Push(&q.items, entry{Wakeup: Wakeup{Pos: pos, Tick: tick, Generation: gen}, seq: q.seq})
	q.maybeCompact()
	return gen
}

// Invalidate снимает ожидающее пробуждение клетки. Возвращает true,
// если пробуждение было.
func (q *Queue) Invalidate(pos vec.Vec3) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, had := q.pending[pos]
	if !had {
		return false
	}
	q.bump(pos)
	delete(q.pending, pos)
	q.maybeCompact()
	return true
}

// Pending возвращает тик ожидающего пробуждения клетки
func (q *Queue) Pending(pos vec.Vec3) (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	slot, ok := q.pending[pos]
	return slot.tick, ok
}

// Len возвращает число живых пробуждений
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// NextTick возвращает ближайший тик живого пробуждения
func (q *Queue) NextTick() (int64, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dropStaleHead()
	if len(q.items) == 0 {
		return 0, false
	}
	return q.items[0].Tick, true
}

// PopDue извлекает все живые пробуждения с Tick <= now в порядке (тик, порядок назначения)
func (q *Queue) PopDue(now int64) []Wakeup {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []Wakeup
	for len(q.items) > 0 && q.items[0].Tick <= now {
		e := heap.Pop(&q.items).(entry)
		slot, ok := q.pending[e.Pos]
		if !ok || slot.generation != e.Generation {
			continue
		}
		delete(q.pending, e.Pos)
		due = append(due, e.Wakeup)
	}
	return due
}

func (q *Queue) bump(pos vec.Vec3) uint64 {
	gen := q.generations[pos] + 1
	q.generations[pos] = gen
	return gen
}

func (q *Queue) dropStaleHead() {
	for len(q.items) > 0 {
		head := q.items[0]
		if slot, ok := q.pending[head.Pos]; ok && slot.generation == head.Generation {
			return
		}
		heap.Pop(&q.items)
	}
}

// maybeCompact перестраивает кучу, когда устаревших записей больше живых.
// Поколения клеток без ожидающих пробуждений тоже забываются: новое поколение
// начнётся с 1, а старых записей для клетки в куче к этому моменту нет.
func (q *Queue) maybeCompact() {
	if len(q.items) < 64 || len(q.items) < 2*len(q.pending) {
		return
	}
	before := len(q.items)
	live := q.items[:0]
	for _, e := range q.items {
		if slot, ok := q.pending[e.Pos]; ok && slot.generation == e.Generation {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(q.items); i++ {
		q.items[i] = entry{}
	}
	q.items = live
	heap.Init(&q.items)

	for pos := range q.generations {
		if _, ok := q.pending[pos]; !ok {
			delete(q.generations, pos)
		}
	}
	logging.GetScheduleLogger().Trace("Очередь уплотнена: %d -> %d записей", before, len(q.items))
}
