package systems

import (
	"github.com/pthm-cable/pasture/components"
)

// MovementResult counts what happened during one movement phase.
type MovementResult struct {
	Moves    int // organisms that changed cell
	Captures int // moves that swallowed an occupant
	Releases int // moves that left a previously contained organism behind
	Blocked  int // moves refused because source or destination was taken
	Stands   int // eligible organisms that stayed put by choice
}

// movementPhase resolves moves from src into dst. claimed must have len(src).
//
// Moves are resolved in ascending source index and the first claim wins: a
// move is accepted only if neither its source nor its destination was written
// by an earlier accepted move. Every index is therefore written at most once
// and every organism is accounted for exactly once.
func movementPhase(g *Grid, src, dst []components.Cell, claimed []bool, policy MovementPolicy) MovementResult {
	var r MovementResult
	copy(dst, src)
	clear(claimed)

	view := View{g: g, cells: src}
	for i := range src {
		if claimed[i] {
			// swallowed by an earlier mover
			continue
		}
		mover := &src[i]
		if !mover.IsAlive() || mover.Stamina < 1 {
			continue
		}

		dir := policy.Choose(mover.Clone(), view)
		if dir >= components.NumDirections {
			dir = components.Stand
		}
		dCol, dRow := dir.Delta()
		d := g.Index(mover.Pos.Row+dRow, mover.Pos.Col+dCol)

		if dir == components.Stand || d == i {
			dst[i].Dir = dir
			r.Stands++
			continue
		}
		if claimed[d] {
			dst[i].Dir = dir
			r.Blocked++
			continue
		}

		landed := *mover
		landed.Pos = src[d].Pos
		landed.Stamina--
		landed.Dir = dir
		landed.Contained = src[d].Capture()
		dst[d] = landed

		if mover.Contained != nil {
			dst[i] = mover.Contained.Release(mover.Pos)
			r.Releases++
		} else {
			dst[i] = components.EmptyCell(mover.Pos)
		}

		claimed[i] = true
		claimed[d] = true
		r.Moves++
		if landed.Contained != nil {
			r.Captures++
		}
	}
	return r
}
