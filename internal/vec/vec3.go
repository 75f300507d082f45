package vec

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Ось Y направлена вверх.
type Vec3 struct {
	X int
	Y int
	Z int
}

// Базовые направления
var (
	Up    = Vec3{X: 0, Y: 1, Z: 0}
	Down  = Vec3{X: 0, Y: -1, Z: 0}
	North = Vec3{X: 0, Y: 0, Z: -1}
	South = Vec3{X: 0, Y: 0, Z: 1}
	East  = Vec3{X: 1, Y: 0, Z: 0}
	West  = Vec3{X: -1, Y: 0, Z: 0}
)

// Faces содержит шесть соседей по граням
var Faces = [6]Vec3{Up, Down, North, South, East, West}

// Zero возвращает true для нулевого вектора
func (v Vec3) Zero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Neg возвращает противоположный вектор
func (v Vec3) Neg() Vec3 {
	return Vec3{X: -v.X, Y: -v.Y, Z: -v.Z}
}

// ChebyshevLen возвращает max(|x|,|y|,|z|)
func (v Vec3) ChebyshevLen() int {
	m := abs(v.X)
	if y := abs(v.Y); y > m {
		m = y
	}
	if z := abs(v.Z); z > m {
		m = z
	}
	return m
}

// ToChunkCoords преобразует мировые координаты в координаты секции 16x16x16
func (v Vec3) ToChunkCoords() Vec3 {
	return Vec3{X: v.X >> 4, Y: v.Y >> 4, Z: v.Z >> 4}
}

// LocalInChunk возвращает локальные координаты внутри секции
func (v Vec3) LocalInChunk() Vec3 {
	return Vec3{X: v.X & 0xF, Y: v.Y & 0xF, Z: v.Z & 0xF}
}

// Column возвращает координаты столбца (X, Z)
func (v Vec3) Column() Vec2 {
	return Vec2{X: v.X, Y: v.Z}
}

func abs(a int) int {
	if a < 0 {
		return -a
	}
	return a
}
