package world

import (
	"github.com/annel0/voxel-spread/internal/vec"
	"github.com/annel0/voxel-spread/internal/world/block"
)

// worldBlockAPI реализует block.BlockAPI поверх WorldManager.
// Вызывается только под wm.mu из SetBlock и Tick.
type worldBlockAPI struct {
	world *WorldManager
}

// GetBlockID возвращает ID блока по мировым координатам
func (api *worldBlockAPI) GetBlockID(pos vec.Vec3) block.BlockID {
	id, _ := api.world.grid.Get(pos)
	return id
}

// GetBlockData возвращает data-значение блока
func (api *worldBlockAPI) GetBlockData(pos vec.Vec3) uint16 {
	_, data := api.world.grid.Get(pos)
	return data
}

// SetBlock перенаправляет запись в WorldManager, который вызывает хуки материалов
func (api *worldBlockAPI) SetBlock(pos vec.Vec3, id block.BlockID, data uint16, cause block.Cause) bool {
	return api.world.setBlockLocked(pos, id, data, cause)
}

// GetLight учитывает текущий небесный свет
func (api *worldBlockAPI) GetLight(pos vec.Vec3) int {
	return api.world.lightLocked(pos)
}

// WorldAge возвращает текущий тик мира
func (api *worldBlockAPI) WorldAge() int64 {
	return api.world.age
}

// ScheduleUpdate назначает пробуждение клетки
func (api *worldBlockAPI) ScheduleUpdate(pos vec.Vec3, tick int64) {
	api.world.queue.Schedule(pos, tick)
}

// HasPendingUpdate проверяет наличие пробуждения в очереди
func (api *worldBlockAPI) HasPendingUpdate(pos vec.Vec3) bool {
	_, ok := api.world.queue.Pending(pos)
	return ok
}
