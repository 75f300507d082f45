package vec

// Vec2 представляет 2D координаты. В трехмерном мире используется
// как ключ столбца (X, Z), поле Y хранит мировую Z.
type Vec2 struct {
	X, Y int
}

// At возвращает точку столбца на высоте y
func (v Vec2) At(y int) Vec3 {
	return Vec3{X: v.X, Y: y, Z: v.Y}
}
