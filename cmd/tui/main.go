// Terminal viewer for a pasture run: one glyph per cell.
//
// Usage: go run ./cmd/tui -config config.yaml
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/pasture/camera"
	"github.com/pthm-cable/pasture/components"
	"github.com/pthm-cable/pasture/config"
	"github.com/pthm-cable/pasture/game"
)

// statusLines is the number of rows reserved below the grid.
const statusLines = 2

var (
	styleEmpty = tcell.StyleDefault.Foreground(tcell.ColorDimGray)
	styleGrass = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleSheep = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleWolf  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleDead  = tcell.StyleDefault.Foreground(tcell.ColorGray).Dim(true)
	styleText  = tcell.StyleDefault.Foreground(tcell.ColorSilver)
)

// cellStyle picks the style for one cell. Hosts holding prey are underlined.
func cellStyle(c *components.Cell) tcell.Style {
	var st tcell.Style
	switch {
	case c.Kind == components.Grass:
		st = styleGrass
	case c.Kind == components.Empty:
		return styleEmpty
	case !c.IsAlive():
		st = styleDead
	case c.Kind == components.Sheep:
		st = styleSheep
	default:
		st = styleWolf
	}
	if c.HasPrey() {
		st = st.Underline(true)
	}
	return st
}

// tui holds the screen and the game it shows.
type tui struct {
	screen tcell.Screen
	game   *game.Game
	cam    *camera.Camera
	status string
}

func newTUI(screen tcell.Screen, g *game.Game) *tui {
	w, h := screen.Size()
	grid := g.Grid()
	return &tui{
		screen: screen,
		game:   g,
		cam:    camera.New(w, max(h-statusLines, 1), grid.Height(), grid.Width(), 1),
	}
}

func (t *tui) draw() {
	t.screen.Clear()

	for _, c := range t.game.Grid().Cells() {
		x, y, ok := t.cam.CellToScreen(c.Pos.Row, c.Pos.Col)
		if !ok {
			continue
		}
		t.screen.SetContent(x, y, c.Kind.Glyph(), nil, cellStyle(&c))
	}

	census := t.game.Census()
	state := "running"
	if t.game.Paused() {
		state = "paused"
	}
	y := t.cam.VisibleRows()
	drawText(t.screen, 0, y, styleText, fmt.Sprintf("tick %d %s  x%d  grass %d  sheep %d  wolves %d  view (%d,%d)",
		t.game.Tick(), state, t.game.StepsPerUpdate(),
		census.Count[components.Grass], census.Alive[components.Sheep], census.Alive[components.Wolf],
		t.cam.Row, t.cam.Col))
	line := "q quit  space pause  . step  arrows pan  +/- speed  s snapshot"
	if t.status != "" {
		line = t.status
	}
	drawText(t.screen, 0, y+1, styleText, line)

	t.screen.Show()
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}

// handleInput applies one event. Returns false when the user quits.
func (t *tui) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return t.applyKey(ev.Key(), ev.Rune())

	case *tcell.EventResize:
		w, h := t.screen.Size()
		t.cam.Resize(w, max(h-statusLines, 1))
		t.screen.Sync()
	}

	return true
}

// applyKey handles one key press. Returns false when the user quits.
func (t *tui) applyKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyLeft:
		t.cam.Pan(0, -1)
	case tcell.KeyRight:
		t.cam.Pan(0, 1)
	case tcell.KeyUp:
		t.cam.Pan(-1, 0)
	case tcell.KeyDown:
		t.cam.Pan(1, 0)
	case tcell.KeyRune:
		switch r {
		case 'q':
			return false
		case ' ':
			t.game.SetPaused(!t.game.Paused())
		case '.':
			t.game.SetPaused(true)
			if err := t.game.Step(); err != nil {
				t.status = "step failed: " + err.Error()
			}
		case '+', '=':
			t.game.SetStepsPerUpdate(t.game.StepsPerUpdate() + 1)
		case '-':
			t.game.SetStepsPerUpdate(t.game.StepsPerUpdate() - 1)
		case 's':
			if path, err := t.game.SaveSnapshot(); err != nil {
				t.status = "snapshot failed: " + err.Error()
			} else {
				t.status = "saved " + path
			}
		}
	}
	return true
}

func (t *tui) run(tickEvery time.Duration, maxTicks int64) error {
	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- t.screen.PollEvent()
		}
	}()

	t.draw()
	for {
		select {
		case ev := <-eventChan:
			if ev == nil || !t.handleInput(ev) {
				return nil
			}
			t.draw()

		case <-ticker.C:
			if err := t.game.Update(); err != nil {
				return err
			}
			t.draw()
			if maxTicks > 0 && t.game.Tick() >= maxTicks {
				t.game.SetPaused(true)
			}
		}
	}
}

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	tickMs := flag.Int("tick-ms", 100, "Milliseconds between updates")
	maxTicks := flag.Int64("max-ticks", 0, "Pause after N ticks (0 = unlimited)")
	logFile := flag.String("log", "", "Write logs to this file (default: discard)")
	flag.Parse()

	// The terminal belongs to the screen, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "creating log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		logOut = f
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(logOut, nil)))

	if err := config.Init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	g, err := game.NewGameWithOptions(game.Options{Seed: *seed, Headless: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating game: %v\n", err)
		os.Exit(1)
	}
	defer g.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "initializing screen: %v\n", err)
		os.Exit(1)
	}

	runErr := newTUI(screen, g).run(time.Duration(*tickMs)*time.Millisecond, *maxTicks)
	screen.Fini()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "simulation stopped at tick %d: %v\n", g.Tick(), runErr)
		os.Exit(1)
	}
}
