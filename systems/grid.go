package systems

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/wildfire/components"
)

// CellGrid is the discretized spatial index: at most one entity per cell,
// neighbors are the Moore neighborhood.
type CellGrid struct {
	cellSize float64
	cols     int
	rows     int
	width    float64
	height   float64
	cells    []ecs.Entity
	occupied []bool
	pos      map[ecs.Entity]components.Position
}

// NewCellGrid creates a grid covering the given world size.
func NewCellGrid(width, height, cellSize float64) *CellGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	cols := int(math.Ceil(width / cellSize))
	rows := int(math.Ceil(height / cellSize))
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}

	return &CellGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    make([]ecs.Entity, cols*rows),
		occupied: make([]bool, cols*rows),
		pos:      make(map[ecs.Entity]components.Position),
	}
}

func (g *CellGrid) Width() float64  { return g.width }
func (g *CellGrid) Height() float64 { return g.height }

// cellOf returns the column and row for a world position.
func (g *CellGrid) cellOf(p components.Position) (int, int, bool) {
	if !finite(p) || p.X < 0 || p.Y < 0 || p.X > g.width || p.Y > g.height {
		return 0, 0, false
	}
	col := int(p.X / g.cellSize)
	row := int(p.Y / g.cellSize)
	// The far edge belongs to the last cell
	if col >= g.cols {
		col = g.cols - 1
	}
	if row >= g.rows {
		row = g.rows - 1
	}
	return col, row, true
}

func (g *CellGrid) index(col, row int) int { return row*g.cols + col }

func (g *CellGrid) center(col, row int) components.Position {
	return components.Position{
		X: (float64(col) + 0.5) * g.cellSize,
		Y: (float64(row) + 0.5) * g.cellSize,
	}
}

// Place puts e into the cell containing p. A cell holds one entity.
func (g *CellGrid) Place(e ecs.Entity, p components.Position) error {
	col, row, ok := g.cellOf(p)
	if !ok {
		return fmt.Errorf("%w: (%g, %g)", ErrOutOfBounds, p.X, p.Y)
	}
	idx := g.index(col, row)
	if g.occupied[idx] && g.cells[idx] != e {
		return fmt.Errorf("%w: cell (%d, %d)", ErrCellOccupied, col, row)
	}
	if old, ok := g.pos[e]; ok {
		oc, or, _ := g.cellOf(old)
		g.occupied[g.index(oc, or)] = false
	}
	g.cells[idx] = e
	g.occupied[idx] = true
	g.pos[e] = p
	return nil
}

// Remove frees the entity's cell.
func (g *CellGrid) Remove(e ecs.Entity) error {
	p, ok := g.pos[e]
	if !ok {
		return fmt.Errorf("%w: entity not in grid", ErrInvalidRemoval)
	}
	col, row, _ := g.cellOf(p)
	idx := g.index(col, row)
	g.occupied[idx] = false
	g.cells[idx] = ecs.Entity{}
	delete(g.pos, e)
	return nil
}

// Neighbors returns occupants of the surrounding cells. The ring width is
// radius in cells, at least one (the 8-connected Moore neighborhood).
// The centre cell is never included.
func (g *CellGrid) Neighbors(p components.Position, radius float64, exclude ecs.Entity) []Neighbor {
	col, row, ok := g.cellOf(p)
	if !ok {
		return nil
	}
	ring := int(radius / g.cellSize)
	if ring < 1 {
		ring = 1
	}

	var out []Neighbor
	for dr := -ring; dr <= ring; dr++ {
		for dc := -ring; dc <= ring; dc++ {
			if dc == 0 && dr == 0 {
				continue
			}
			c, r := col+dc, row+dr
			if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
				continue
			}
			idx := g.index(c, r)
			if !g.occupied[idx] || g.cells[idx] == exclude {
				continue
			}
			q := g.pos[g.cells[idx]]
			out = append(out, Neighbor{E: g.cells[idx], Dist: math.Hypot(q.X-p.X, q.Y-p.Y)})
		}
	}
	return out
}

// MooreCells returns the centres of the in-bounds cells around p,
// empty or not. Used for placement checks.
func (g *CellGrid) MooreCells(p components.Position) []components.Position {
	col, row, ok := g.cellOf(p)
	if !ok {
		return nil
	}
	out := make([]components.Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dc == 0 && dr == 0 {
				continue
			}
			c, r := col+dc, row+dr
			if c < 0 || r < 0 || c >= g.cols || r >= g.rows {
				continue
			}
			out = append(out, g.center(c, r))
		}
	}
	return out
}

// Occupied reports whether the cell containing p holds an entity.
// Out-of-bounds positions count as occupied.
func (g *CellGrid) Occupied(p components.Position) bool {
	col, row, ok := g.cellOf(p)
	if !ok {
		return true
	}
	return g.occupied[g.index(col, row)]
}

// Snap returns the centre of the cell containing p.
func (g *CellGrid) Snap(p components.Position) components.Position {
	col, row, ok := g.cellOf(p)
	if !ok {
		return p
	}
	return g.center(col, row)
}

func (g *CellGrid) Contains(e ecs.Entity) bool {
	_, ok := g.pos[e]
	return ok
}

func (g *CellGrid) Position(e ecs.Entity) (components.Position, bool) {
	p, ok := g.pos[e]
	return p, ok
}

func (g *CellGrid) Len() int { return len(g.pos) }

// Entities returns all entities in row-major cell order.
func (g *CellGrid) Entities() []ecs.Entity {
	out := make([]ecs.Entity, 0, len(g.pos))
	for i, occ := range g.occupied {
		if occ {
			out = append(out, g.cells[i])
		}
	}
	return out
}
