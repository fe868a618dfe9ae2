// Package camera provides a viewport onto a toroidal grid of cells.
package camera

// Camera controls which cells are visible and at what size.
// Panning wraps around the grid edges.
type Camera struct {
	// Row, Col is the cell drawn at the top-left of the viewport
	Row, Col int

	// CellSize is the on-screen size of one cell (pixels or terminal columns)
	CellSize int

	// Viewport dimensions in screen units
	ViewportW, ViewportH int

	// Grid dimensions in cells
	Rows, Cols int

	// Cell size constraints
	MinCellSize, MaxCellSize int
}

// New creates a camera at the grid origin.
// A cellSize below 1 is raised to 1.
func New(viewportW, viewportH, rows, cols, cellSize int) *Camera {
	c := &Camera{
		ViewportW:   viewportW,
		ViewportH:   viewportH,
		Rows:        max(rows, 1),
		Cols:        max(cols, 1),
		MinCellSize: 1,
		MaxCellSize: 32,
	}
	c.SetCellSize(cellSize)
	return c
}

// VisibleRows returns how many grid rows fit in the viewport.
// Never more than the grid has, so no cell is drawn twice.
func (c *Camera) VisibleRows() int {
	return min(c.ViewportH/c.CellSize, c.Rows)
}

// VisibleCols returns how many grid columns fit in the viewport.
func (c *Camera) VisibleCols() int {
	return min(c.ViewportW/c.CellSize, c.Cols)
}

// CellToScreen returns the top-left screen position of a cell and whether
// it is inside the viewport.
func (c *Camera) CellToScreen(row, col int) (sx, sy int, ok bool) {
	dr := wrap(row-c.Row, c.Rows)
	dc := wrap(col-c.Col, c.Cols)
	if dr >= c.VisibleRows() || dc >= c.VisibleCols() {
		return 0, 0, false
	}
	return dc * c.CellSize, dr * c.CellSize, true
}

// ScreenToCell returns the cell under a screen position, or ok=false when
// the position lies outside the drawn cells.
func (c *Camera) ScreenToCell(sx, sy int) (row, col int, ok bool) {
	if sx < 0 || sy < 0 {
		return 0, 0, false
	}
	dc := sx / c.CellSize
	dr := sy / c.CellSize
	if dr >= c.VisibleRows() || dc >= c.VisibleCols() {
		return 0, 0, false
	}
	return wrap(c.Row+dr, c.Rows), wrap(c.Col+dc, c.Cols), true
}

// Pan moves the camera by whole cells, wrapping around the grid.
func (c *Camera) Pan(dRows, dCols int) {
	c.Row = wrap(c.Row+dRows, c.Rows)
	c.Col = wrap(c.Col+dCols, c.Cols)
}

// Resize updates the viewport dimensions.
func (c *Camera) Resize(viewportW, viewportH int) {
	c.ViewportW = viewportW
	c.ViewportH = viewportH
}

// SetCellSize sets the cell size, clamped to min/max.
func (c *Camera) SetCellSize(n int) {
	c.CellSize = clamp(n, c.MinCellSize, c.MaxCellSize)
}

// ZoomBy changes the cell size by step.
func (c *Camera) ZoomBy(step int) {
	c.SetCellSize(c.CellSize + step)
}

// FitCellSize returns the largest cell size at which the whole grid fits.
func (c *Camera) FitCellSize() int {
	return clamp(min(c.ViewportW/c.Cols, c.ViewportH/c.Rows), c.MinCellSize, c.MaxCellSize)
}

// Reset returns the camera to the origin at the fitting cell size.
func (c *Camera) Reset() {
	c.Row = 0
	c.Col = 0
	c.SetCellSize(c.FitCellSize())
}

// wrap computes the positive modulo (Go's % can return negative).
func wrap(x, n int) int {
	r := x % n
	if r < 0 {
		r += n
	}
	return r
}

// clamp restricts a value to a range.
func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
