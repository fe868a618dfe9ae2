// Package viewer draws a running pasture with raylib and lets the user
// pause, step, pan, zoom and inspect cells.
package viewer

import (
	"fmt"
	"log/slog"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/pasture/camera"
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/game"
	"github.com/pthm-cable/pasture/systems"
	"github.com/pthm-cable/pasture/telemetry"
)

const (
	minWindowH = 480
	maxSpeed   = 20
	controls   = "SPACE pause  . step  arrows pan  +/- zoom  R reset  S snapshot"
)

// Viewer renders one game in a raylib window.
type Viewer struct {
	game *game.Game
	cfg  *config.Config
	cam  *camera.Camera
	r    *Renderer

	phases *systems.PhaseRegistry

	screenW, screenH int32
	panelX           int32

	hovered    components.Cell
	hasHovered bool
	status     string
	statusAt   time.Time
}

// New creates a viewer sized from the viewer config section.
func New(g *game.Game, cfg *config.Config) *Viewer {
	screenW := int32(cfg.Derived.ScreenW)
	screenH := int32(max(cfg.Derived.ScreenH, minWindowH))
	panelW := int32(cfg.Viewer.PanelW)

	grid := g.Grid()
	return &Viewer{
		game:    g,
		cfg:     cfg,
		cam:     camera.New(int(screenW-panelW), int(screenH), grid.Height(), grid.Width(), cfg.Viewer.CellSize),
		r:       NewRenderer(),
		phases:  telemetry.Phases(),
		screenW: screenW,
		screenH: screenH,
		panelX:  screenW - panelW,
	}
}

// Run opens the window and drives the game until the window closes or
// maxTicks is reached (0 = unlimited).
func (v *Viewer) Run(maxTicks int64) error {
	rl.InitWindow(v.screenW, v.screenH, "Pasture")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(v.cfg.Viewer.TargetFPS))

	for !rl.WindowShouldClose() {
		v.handleInput()

		if err := v.game.Update(); err != nil {
			return err
		}
		v.game.RecordFrame()

		v.draw()

		if maxTicks > 0 && v.game.Tick() >= maxTicks {
			slog.Info("max ticks reached", "tick", v.game.Tick())
			break
		}
	}
	return nil
}

func (v *Viewer) handleInput() {
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		v.game.SetPaused(!v.game.Paused())
	case rl.IsKeyPressed(rl.KeyPeriod):
		v.step()
	case rl.IsKeyPressed(rl.KeyR):
		v.cam.Reset()
	case rl.IsKeyPressed(rl.KeyS):
		v.snapshot()
	}

	if rl.IsKeyPressed(rl.KeyLeft) {
		v.cam.Pan(0, -1)
	}
	if rl.IsKeyPressed(rl.KeyRight) {
		v.cam.Pan(0, 1)
	}
	if rl.IsKeyPressed(rl.KeyUp) {
		v.cam.Pan(-1, 0)
	}
	if rl.IsKeyPressed(rl.KeyDown) {
		v.cam.Pan(1, 0)
	}

	zoom := 0
	if rl.IsKeyPressed(rl.KeyEqual) || rl.IsKeyPressed(rl.KeyKpAdd) {
		zoom++
	}
	if rl.IsKeyPressed(rl.KeyMinus) || rl.IsKeyPressed(rl.KeyKpSubtract) {
		zoom--
	}
	if wheel := rl.GetMouseWheelMove(); wheel > 0 {
		zoom++
	} else if wheel < 0 {
		zoom--
	}
	if zoom != 0 {
		v.cam.ZoomBy(zoom)
	}

	mouse := rl.GetMousePosition()
	v.hasHovered = false
	if row, col, ok := v.cam.ScreenToCell(int(mouse.X), int(mouse.Y)); ok {
		if c, err := v.game.Grid().Cell(components.Position{Row: row, Col: col}); err == nil {
			v.hovered = c
			v.hasHovered = true
		}
	}
}

// step runs a single tick while paused.
func (v *Viewer) step() {
	if !v.game.Paused() {
		v.game.SetPaused(true)
	}
	if err := v.game.Step(); err != nil {
		v.setStatus("step failed: " + err.Error())
		slog.Error("step failed", "error", err)
	}
}

func (v *Viewer) snapshot() {
	path, err := v.game.SaveSnapshot()
	if err != nil {
		v.setStatus("snapshot failed")
		slog.Error("failed to save snapshot", "error", err)
		return
	}
	v.setStatus("saved " + path)
	slog.Info("snapshot saved", "path", path, "tick", v.game.Tick())
}

func (v *Viewer) setStatus(s string) {
	v.status = s
	v.statusAt = time.Now()
}

func (v *Viewer) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(v.r.Theme.Background)

	v.drawGrid()
	v.drawPanel()

	rl.DrawText(controls, 10, v.screenH-20, 12, rl.Gray)
	if v.status != "" && time.Since(v.statusAt) < 3*time.Second {
		rl.DrawText(v.status, 10, v.screenH-38, 12, rl.Yellow)
	}

	rl.EndDrawing()
}

func (v *Viewer) drawGrid() {
	size := int32(v.cam.CellSize)
	fullGrass := v.cfg.World.GrassCalories

	for _, c := range v.game.Grid().Cells() {
		sx, sy, ok := v.cam.CellToScreen(c.Pos.Row, c.Pos.Col)
		if !ok {
			continue
		}
		x, y := int32(sx), int32(sy)
		rl.DrawRectangle(x, y, size, size, cellColor(&c, fullGrass))

		// Hosts carrying prey get a dot in the prey's color.
		if c.Contained != nil && size >= 4 {
			prey := components.Cell{Kind: c.Contained.Kind, Status: c.Contained.Status, Calories: c.Contained.Calories}
			rl.DrawRectangle(x+size/2-size/6, y+size/2-size/6, max(size/3, 1), max(size/3, 1), cellColor(&prey, fullGrass))
		}
	}

	if v.hasHovered {
		if sx, sy, ok := v.cam.CellToScreen(v.hovered.Pos.Row, v.hovered.Pos.Col); ok {
			rl.DrawRectangleLines(int32(sx), int32(sy), size, size, v.r.Theme.Highlight)
		}
	}
}

func (v *Viewer) drawPanel() {
	r := v.r
	pad := r.Theme.Padding
	x := v.panelX + pad
	width := v.screenW - v.panelX - 2*pad

	r.DrawPanel(v.panelX, 0, v.screenW-v.panelX, v.screenH)

	y := pad
	y = r.DrawSectionHeader(x, y, "Pasture")
	y = r.DrawLabelValue(x, y, "Tick", fmt.Sprintf("%d", v.game.Tick()))
	y = r.DrawLabelValue(x, y, "Speed", fmt.Sprintf("%dx", v.game.StepsPerUpdate()))
	y = r.DrawLabelValue(x, y, "FPS", fmt.Sprintf("%d", rl.GetFPS()))
	if v.game.Paused() {
		rl.DrawText("PAUSED", x, y, r.Theme.FontSize, rl.Yellow)
	}
	y += r.Theme.LineHeight + 4

	census := v.game.Census()
	y = r.DrawSectionHeader(x, y, "Population")
	y = r.DrawLabelValue(x, y, "Grass", fmt.Sprintf("%d (%.0f cal)", census.Count[components.Grass], census.Calories[components.Grass]))
	y = r.DrawLabelValue(x, y, "Sheep", fmt.Sprintf("%d (%.0f cal)", census.Alive[components.Sheep], census.Calories[components.Sheep]))
	y = r.DrawLabelValue(x, y, "Wolves", fmt.Sprintf("%d (%.0f cal)", census.Alive[components.Wolf], census.Calories[components.Wolf]))
	y = r.DrawLabelValue(x, y, "Contained", fmt.Sprintf("%d", census.Contained))
	y += 4

	rep := v.game.LastReport()
	y = r.DrawSectionHeader(x, y, "Last tick")
	y = r.DrawLabelValue(x, y, "Moves", fmt.Sprintf("%d (%d blocked)", rep.Moves, rep.Blocked))
	y = r.DrawLabelValue(x, y, "Captures", fmt.Sprintf("%d", rep.Captures))
	y = r.DrawLabelValue(x, y, "Deaths", fmt.Sprintf("%d (%d starved)", rep.Deaths, rep.Starved))
	y = r.DrawLabelValue(x, y, "Heals", fmt.Sprintf("%d", rep.Heals))
	y += 4

	perf := v.game.PerfStats()
	y = r.DrawSectionHeader(x, y, "Perf")
	y = r.DrawLabelValue(x, y, "Tick", perf.AvgTickDuration.Round(time.Microsecond).String())
	for _, phase := range v.phases.All() {
		y = r.DrawLabelValue(x, y, phase.Name, fmt.Sprintf("%.0f%%", perf.PhasePct[phase.ID]))
	}
	y += 4

	y = v.drawInspector(x, y, width)
	y += 8

	// Controls
	bw := (width - pad) / 2
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(bw), Height: 24}, toggleText(v.game.Paused(), "Resume", "Pause")) {
		v.game.SetPaused(!v.game.Paused())
	}
	if gui.Button(rl.Rectangle{X: float32(x + bw + pad), Y: float32(y), Width: float32(bw), Height: 24}, "Step") {
		v.step()
	}
	y += 32
	if gui.Button(rl.Rectangle{X: float32(x), Y: float32(y), Width: float32(bw), Height: 24}, "Snapshot") {
		v.snapshot()
	}
	if gui.Button(rl.Rectangle{X: float32(x + bw + pad), Y: float32(y), Width: float32(bw), Height: 24}, "Reset View") {
		v.cam.Reset()
	}
	y += 36

	rl.DrawText("Ticks per frame", x, y, r.Theme.FontSize, r.Theme.LabelColor)
	y += r.Theme.LineHeight
	speed := gui.SliderBar(
		rl.Rectangle{X: float32(x + 10), Y: float32(y), Width: float32(width - 40), Height: 16},
		"1", fmt.Sprint(maxSpeed),
		float32(v.game.StepsPerUpdate()), 1, maxSpeed,
	)
	if int(speed) != v.game.StepsPerUpdate() {
		v.game.SetStepsPerUpdate(int(speed))
	}
}

// drawInspector shows the cell under the mouse.
func (v *Viewer) drawInspector(x, y, width int32) int32 {
	r := v.r
	y = r.DrawSectionHeader(x, y, "Cell")
	if !v.hasHovered {
		return r.DrawLabelValue(x, y, "Hover", "-")
	}

	c := v.hovered
	y = r.DrawLabelValue(x, y, "Pos", c.Pos.String())
	y = r.DrawLabelValue(x, y, "Kind", fmt.Sprintf("%s (%s)", c.Kind, c.Status))
	if c.Kind == components.Empty {
		return y
	}
	y = r.DrawLabelValue(x, y, "ID", fmt.Sprintf("%d", c.ID))
	y = r.DrawLabelValue(x, y, "Calories", fmt.Sprintf("%.2f", c.Calories))
	if c.Kind != components.Grass {
		y = r.DrawLabelValue(x, y, "Stamina", fmt.Sprintf("%d", c.Stamina))
		y = r.DrawLabelValue(x, y, "Heading", c.Dir.String())
		y = r.DrawHealthBar(x, y, "Health", c.Health, v.game.Grid().Params().MaxHealth, width)
	}
	if c.Contained != nil {
		y = r.DrawLabelValue(x, y, "Holding", fmt.Sprintf("%s #%d (%.2f cal)", c.Contained.Kind, c.Contained.ID, c.Contained.Calories))
	}
	return y
}

func toggleText(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
