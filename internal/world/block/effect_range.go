package block

import (
	"fmt"

	"github.com/annel0/voxel-spread/internal/vec"
)

// EffectRange задаёт окрестность материала: набор смещений относительно
// клетки. Порядок перечисления не гарантируется, нулевой вектор не входит никогда.
type EffectRange interface {
	// Neighbors возвращает копию набора смещений
	Neighbors() []vec.Vec3
}

type listEffectRange struct {
	offsets []vec.Vec3
}

// NewCubicEffectRange возвращает куб радиуса r без центра:
// все смещения с max(|dx|,|dy|,|dz|) <= r. Для r=2 это 124 вектора.
func NewCubicEffectRange(r int) (EffectRange, error) {
	if r < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRadius, r)
	}
	side := 2*r + 1
	offsets := make([]vec.Vec3, 0, side*side*side-1)
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				off := vec.Vec3{X: dx, Y: dy, Z: dz}
				if off.Zero() {
					continue
				}
				offsets = append(offsets, off)
			}
		}
	}
	return &listEffectRange{offsets: offsets}, nil
}

// MustCubicEffectRange как NewCubicEffectRange, но паникует на неверном радиусе.
// Только для значений по умолчанию на уровне пакета.
func MustCubicEffectRange(r int) EffectRange {
	er, err := NewCubicEffectRange(r)
	if err != nil {
		panic(err)
	}
	return er
}

// NewListEffectRange строит окрестность из явного списка смещений.
// Дубликаты отбрасываются, нулевой вектор - ошибка конфигурации.
func NewListEffectRange(offsets ...vec.Vec3) (EffectRange, error) {
	seen := make(map[vec.Vec3]struct{}, len(offsets))
	unique := make([]vec.Vec3, 0, len(offsets))
	for _, off := range offsets {
		if off.Zero() {
			return nil, ErrZeroOffset
		}
		if _, dup := seen[off]; dup {
			continue
		}
		seen[off] = struct{}{}
		unique = append(unique, off)
	}
	return &listEffectRange{offsets: unique}, nil
}

func (r *listEffectRange) Neighbors() []vec.Vec3 {
	out := make([]vec.Vec3, len(r.offsets))
	copy(out, r.offsets)
	return out
}
