package block

import (
	"github.com/annel0/voxel-spread/internal/vec"
)

// Cause описывает причину изменения блока
type Cause uint8

const (
	CausePlace  Cause = iota // Внешняя установка
	CauseSpread              // Распространение материала на соседа
	CauseDecay               // Распад материала
)

// String возвращает строковое представление причины
func (c Cause) String() string {
	switch c {
	case CausePlace:
		return "place"
	case CauseSpread:
		return "spread"
	case CauseDecay:
		return "decay"
	default:
		return "unknown"
	}
}

// BlockAPI определяет интерфейс для взаимодействия блоков с воксельным миром.
// Координаты мировые, ось Y направлена вверх; сдвиг на соседа - vec.Vec3.Add.
type BlockAPI interface {
	// GetBlockID возвращает материал в указанной позиции
	GetBlockID(pos vec.Vec3) BlockID

	// GetBlockData возвращает значение data (подвариант материала)
	GetBlockData(pos vec.Vec3) uint16

	// SetBlock записывает материал. Если новый материал динамический,
	// хост вызывает его OnPlace. Возвращает false, если запись отклонена.
	SetBlock(pos vec.Vec3, id BlockID, data uint16, cause Cause) bool

	// GetLight возвращает уровень освещённости клетки (0..15)
	GetLight(pos vec.Vec3) int

	// WorldAge возвращает монотонный номер тика мира
	WorldAge() int64

	// ScheduleUpdate назначает пробуждение клетки на тик tick.
	// Новое назначение заменяет предыдущее для той же клетки.
	ScheduleUpdate(pos vec.Vec3, tick int64)

	// HasPendingUpdate сообщает, ожидает ли клетка пробуждения
	HasPendingUpdate(pos vec.Vec3) bool
}
