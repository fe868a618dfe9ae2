package viewer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pasture/components"
)

// Base colors per kind.
var (
	colorEmpty      = rl.Color{R: 24, G: 20, B: 16, A: 255}
	colorGrass      = rl.Color{R: 60, G: 150, B: 60, A: 255}
	colorGrassLight = rl.Color{R: 40, G: 70, B: 35, A: 255}
	colorSheep      = rl.Color{R: 235, G: 235, B: 220, A: 255}
	colorWolf       = rl.Color{R: 190, G: 60, B: 50, A: 255}
	colorDead       = rl.Color{R: 90, G: 80, B: 70, A: 255}
)

// cellColor picks the draw color for a cell. Grass shades from light to
// full green as its calories approach full; dead animals are drawn grey.
func cellColor(c *components.Cell, fullGrass float64) rl.Color {
	switch c.Kind {
	case components.Grass:
		t := float32(1)
		if fullGrass > 0 {
			t = float32(min(c.Calories/fullGrass, 1))
		}
		return lerpColor(colorGrassLight, colorGrass, t)
	case components.Sheep:
		if !c.IsAlive() {
			return colorDead
		}
		return colorSheep
	case components.Wolf:
		if !c.IsAlive() {
			return colorDead
		}
		return colorWolf
	default:
		return colorEmpty
	}
}

func lerpColor(a, b rl.Color, t float32) rl.Color {
	return rl.Color{
		R: uint8(float32(a.R) + (float32(b.R)-float32(a.R))*t),
		G: uint8(float32(a.G) + (float32(b.G)-float32(a.G))*t),
		B: uint8(float32(a.B) + (float32(b.B)-float32(a.B))*t),
		A: 255,
	}
}
