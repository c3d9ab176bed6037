package global

import (
	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
)

// Global is a whole-system event source tied to a particle's position
// relative to the cell grid rather than to another particle or fixed
// geometry: a cell-crossing virtual event. Grounded on the same small-
// interface pattern as interaction.Range and local.Local.
type Global interface {
	Predict(store *particle.Store, liou *liouvillean.Liouvillean, id int) (float64, bool)
	Execute(store *particle.Store, id int)
	Name() string
}

// RegularCell fires a virtual (no momentum change) event whenever a
// particle crosses a neighbour-cell boundary, keeping CellList's bucket
// membership in sync with the particle's actual streamed position.
type RegularCell struct {
	Cells *CellList
}

func (r RegularCell) Name() string { return "RegularCell" }

func (r RegularCell) Predict(store *particle.Store, liou *liouvillean.Liouvillean, id int) (float64, bool) {
	p := store.Get(id)
	idx, ok := r.Cells.CellOf(id)
	if !ok {
		return 0, false
	}
	min, max := r.Cells.Bounds(idx)
	t, _, ok := liou.SquareCellCollisionTime(p.Pos, p.Vel, min, max)
	return t, ok
}

func (r RegularCell) Execute(store *particle.Store, id int) {
	p := store.Get(id)
	r.Cells.Move(id, p.Pos)
}

// ShearingCell is RegularCell's analogue under a Lees-Edwards boundary: the
// grid's x-offset for cells above/below a y-image boundary slides with the
// accumulated shear, so a crossing in y also needs the cell list to track
// which shear image the particle's neighbours are evaluated in. The
// CellList itself stays a plain periodic grid; what changes here is that Execute re-derives the cell
// from the shear-unwrapped position the LeesEdwards boundary produces,
// rather than the particle's raw (possibly far-outside-the-grid) position.
type ShearingCell struct {
	Cells *CellList
	Lees *boundary.LeesEdwards
}

func (s ShearingCell) Name() string { return "ShearingCell" }

func (s ShearingCell) Predict(store *particle.Store, liou *liouvillean.Liouvillean, id int) (float64, bool) {
	p := store.Get(id)
	idx, ok := s.Cells.CellOf(id)
	if !ok {
		return 0, false
	}
	min, max := s.Cells.Bounds(idx)
	t, _, ok := liou.SquareCellCollisionTime(p.Pos, p.Vel, min, max)
	return t, ok
}

func (s ShearingCell) Execute(store *particle.Store, id int) {
	p := store.Get(id)
	wrapped := s.Lees.Apply(p.Pos)
	s.Cells.Move(id, wrapped)
}

// SingleOccupancyCell enforces at most one particle per cell (used for
// jammed/glassy-system "cage" dynamics): crossing into an empty
// neighbouring cell is a normal virtual move, but crossing into an already
// occupied cell is instead resolved as an elastic bounce off the cell
// face, since the destination has no room.
type SingleOccupancyCell struct {
	Cells *CellList
}

func (s SingleOccupancyCell) Name() string { return "SingleOccupancyCell" }

func (s SingleOccupancyCell) Predict(store *particle.Store, liou *liouvillean.Liouvillean, id int) (float64, bool) {
	p := store.Get(id)
	idx, ok := s.Cells.CellOf(id)
	if !ok {
		return 0, false
	}
	min, max := s.Cells.Bounds(idx)
	t, _, ok := liou.SquareCellCollisionTime(p.Pos, p.Vel, min, max)
	return t, ok
}

func (s SingleOccupancyCell) Execute(store *particle.Store, id int) {
	p := store.Get(id)
	idx, _ := s.Cells.CellOf(id)
	face, destIdx := s.crossing(p, idx)

	for _, occ := range s.Cells.Occupants(destIdx) {
		if occ != id {
			p.SetPosVel(p.Pos, bounceFace(p.Vel, face))
			return
		}
	}
	s.Cells.Move(id, p.Pos)
}

// crossing re-derives which face of idx the particle is crossing and the
// destination cell index it would move into, used to resolve a blocked
// single-occupancy move as a reflection off that specific face.
func (s SingleOccupancyCell) crossing(p *particle.Particle, idx CellIndex) (face liouvillean.CellFace, dest CellIndex) {
	minV, maxV := s.Cells.Bounds(idx)
	bestFace := liouvillean.FaceXMin
	bestDist := 1e300
	axes := []struct {
		pos, vel, minB, maxB float64
		lo, hi liouvillean.CellFace
	}{
		{p.Pos.X, p.Vel.X, minV.X, maxV.X, liouvillean.FaceXMin, liouvillean.FaceXMax},
		{p.Pos.Y, p.Vel.Y, minV.Y, maxV.Y, liouvillean.FaceYMin, liouvillean.FaceYMax},
		{p.Pos.Z, p.Vel.Z, minV.Z, maxV.Z, liouvillean.FaceZMin, liouvillean.FaceZMax},
	}
	for _, ax := range axes {
		if d := ax.pos - ax.minB; ax.vel < 0 && d < bestDist {
			bestDist, bestFace = d, ax.lo
		}
		if d := ax.maxB - ax.pos; ax.vel > 0 && d < bestDist {
			bestDist, bestFace = d, ax.hi
		}
	}

	destIdx := idx
	switch bestFace {
	case liouvillean.FaceXMin:
		destIdx[0] = wrapIndex(idx[0]-1, s.Cells.Dims[0])
	case liouvillean.FaceXMax:
		destIdx[0] = wrapIndex(idx[0]+1, s.Cells.Dims[0])
	case liouvillean.FaceYMin:
		destIdx[1] = wrapIndex(idx[1]-1, s.Cells.Dims[1])
	case liouvillean.FaceYMax:
		destIdx[1] = wrapIndex(idx[1]+1, s.Cells.Dims[1])
	case liouvillean.FaceZMin:
		destIdx[2] = wrapIndex(idx[2]-1, s.Cells.Dims[2])
	case liouvillean.FaceZMax:
		destIdx[2] = wrapIndex(idx[2]+1, s.Cells.Dims[2])
	}
	return bestFace, destIdx
}

func bounceFace(vel Vec3, face liouvillean.CellFace) Vec3 {
	switch face {
	case liouvillean.FaceXMin, liouvillean.FaceXMax:
		return Vec3{X: -vel.X, Y: vel.Y, Z: vel.Z}
	case liouvillean.FaceYMin, liouvillean.FaceYMax:
		return Vec3{X: vel.X, Y: -vel.Y, Z: vel.Z}
	default:
		return Vec3{X: vel.X, Y: vel.Y, Z: -vel.Z}
	}
}

// PBCSentinel fires a housekeeping virtual event whenever a particle's raw
// (unwrapped) position would leave the primary image of a periodic box,
// re-wrapping it via the simulation's boundary condition. This keeps
// every other component's arithmetic operating on coordinates that never
// drift unboundedly far from the origin, regardless of how long a
// particle goes between genuine collisions.
type PBCSentinel struct {
	Box Vec3
	Cond boundary.Condition
	Cells *CellList
}

func (s PBCSentinel) Name() string { return "PBCSentinel" }

func (s PBCSentinel) Predict(store *particle.Store, liou *liouvillean.Liouvillean, id int) (float64, bool) {
	p := store.Get(id)
	half := s.Box.SMul(0.5)
	min := half.Neg()
	max := half
	t, _, ok := liou.SquareCellCollisionTime(p.Pos, p.Vel, min, max)
	return t, ok
}

func (s PBCSentinel) Execute(store *particle.Store, id int) {
	p := store.Get(id)
	wrapped, vel := s.Cond.ApplyVel(p.Pos, p.Vel)
	p.SetPosVel(wrapped, vel)
	if s.Cells != nil {
		s.Cells.Move(id, wrapped)
	}
}
