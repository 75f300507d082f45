package world

import "math"

// MaxLight - максимальный уровень освещённости
const MaxLight = 15

// minSkyLight - небесный свет ночью
const minSkyLight = 4

// SkyLight вычисляет уровень небесного света по возрасту мира.
// Прогресс суток 0 соответствует рассвету, 0.25 - полудню.
type SkyLight struct {
	DayLength int64 // Длина суток в тиках, <= 0 - вечный день
}

// Level возвращает небесный свет на тике age
func (s SkyLight) Level(age int64) int {
	if s.DayLength <= 0 {
		return MaxLight
	}
	elevation := math.Max(0, math.Sin(s.Progress(age)*2*math.Pi))
	return minSkyLight + int(math.Round(float64(MaxLight-minSkyLight)*elevation))
}

// Progress возвращает долю прошедших суток в [0, 1)
func (s SkyLight) Progress(age int64) float64 {
	if s.DayLength <= 0 {
		return 0.25
	}
	t := age % s.DayLength
	if t < 0 {
		t += s.DayLength
	}
	return float64(t) / float64(s.DayLength)
}

// Phase возвращает "day" или "night"
func (s SkyLight) Phase(age int64) string {
	if s.Progress(age) < 0.5 {
		return "day"
	}
	return "night"
}
