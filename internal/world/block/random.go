package block

import (
	"math/rand"
	"sync"
)

// RandomSource выдаёт равномерно распределённые целые для вероятностного
// распространения. Воспроизводимость между запусками не гарантируется.
type RandomSource interface {
	// Intn возвращает число из [0, n)
	Intn(n int) int
}

type lockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource создаёт потокобезопасный источник с указанным сидом
func NewRandomSource(seed int64) RandomSource {
	return &lockedSource{rnd: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	v := s.rnd.Intn(n)
	s.mu.Unlock()
	return v
}
