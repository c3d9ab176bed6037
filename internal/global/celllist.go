// Package global implements the neighbour cell list and its
// associated virtual (no-momentum-change) events — regular cell crossings,
// shearing-cell crossings under Lees-Edwards, single-occupancy cells, and
// the periodic-boundary sentinel.
//
// Grounded on taskstore.TaskStore's map-indexed bookkeeping style
// (also followed by interaction.CaptureStore in this module) applied to
// a spatial grid instead of a pair or task key.
package global

import (
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// CellIndex identifies one cell of the neighbour grid.
type CellIndex [3]int

// CellList partitions the simulation box into a regular grid of Dims[0] x
// Dims[1] x Dims[2] cells, each of size CellSize, and tracks which
// particle IDs currently occupy each cell.
type CellList struct {
	Dims [3]int
	CellSize Vec3
	Origin Vec3

	cells map[CellIndex][]int
	particleCell map[int]CellIndex
}

// NewCellList builds a CellList covering a box of the given size starting
// at origin, divided into dims cells per axis.
func NewCellList(dims [3]int, boxSize, origin Vec3) *CellList {
	return &CellList{
		Dims: dims,
		CellSize: Vec3{X: boxSize.X / float64(dims[0]), Y: boxSize.Y / float64(dims[1]), Z: boxSize.Z / float64(dims[2])},
		Origin: origin,
		cells: make(map[CellIndex][]int),
		particleCell: make(map[int]CellIndex),
	}
}

// IndexOf returns the cell index containing pos, wrapping into [0, Dims)
// on every axis (the grid always tiles the primary image; callers with a
// non-periodic boundary are responsible for clamping pos beforehand).
func (c *CellList) IndexOf(pos Vec3) CellIndex {
	return CellIndex{
		wrapIndex(int(floorDiv(pos.X-c.Origin.X, c.CellSize.X)), c.Dims[0]),
		wrapIndex(int(floorDiv(pos.Y-c.Origin.Y, c.CellSize.Y)), c.Dims[1]),
		wrapIndex(int(floorDiv(pos.Z-c.Origin.Z, c.CellSize.Z)), c.Dims[2]),
	}
}

func floorDiv(v, size float64) float64 {
	if size == 0 {
		return 0
	}
	q := v / size
	return fastFloor(q)
}

func fastFloor(v float64) float64 {
	i := int64(v)
	if v < 0 && float64(i) != v {
		i--
	}
	return float64(i)
}

func wrapIndex(i, n int) int {
	if n <= 0 {
		return 0
	}
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

// Bounds returns the min/max corners of the given cell in simulation
// coordinates.
func (c *CellList) Bounds(idx CellIndex) (min, max Vec3) {
	min = Vec3{
		X: c.Origin.X + float64(idx[0])*c.CellSize.X,
		Y: c.Origin.Y + float64(idx[1])*c.CellSize.Y,
		Z: c.Origin.Z + float64(idx[2])*c.CellSize.Z,
	}
	max = min.Add(c.CellSize)
	return min, max
}

// Insert adds particle id to the cell containing pos.
func (c *CellList) Insert(id int, pos Vec3) {
	idx := c.IndexOf(pos)
	c.cells[idx] = append(c.cells[idx], id)
	c.particleCell[id] = idx
}

// Remove deletes particle id from its current cell.
func (c *CellList) Remove(id int) {
	idx, ok := c.particleCell[id]
	if !ok {
		return
	}
	bucket := c.cells[idx]
	for i, member := range bucket {
		if member == id {
			bucket[i] = bucket[len(bucket)-1]
			c.cells[idx] = bucket[:len(bucket)-1]
			break
		}
	}
	delete(c.particleCell, id)
}

// Move relocates particle id to the cell containing newPos.
func (c *CellList) Move(id int, newPos Vec3) {
	c.Remove(id)
	c.Insert(id, newPos)
}

// CellOf returns the cell index a particle currently occupies.
func (c *CellList) CellOf(id int) (CellIndex, bool) {
	idx, ok := c.particleCell[id]
	return idx, ok
}

// Occupants returns the particle IDs currently in the given cell. The
// returned slice aliases internal storage and must not be mutated.
func (c *CellList) Occupants(idx CellIndex) []int {
	return c.cells[idx]
}

// Neighbours returns the 26 neighbouring cell indices of idx (and idx
// itself, as the 27th, if includeSelf), wrapping on every axis — every
// axis is treated as periodic at the grid level regardless of the
// simulation's actual boundary condition, since PBCSentinel and the
// boundary condition are what reconcile that with an open box.
func (c *CellList) Neighbours(idx CellIndex, includeSelf bool) []CellIndex {
	var out []CellIndex
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				if !includeSelf && dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				out = append(out, CellIndex{
					wrapIndex(idx[0]+dx, c.Dims[0]),
					wrapIndex(idx[1]+dy, c.Dims[1]),
					wrapIndex(idx[2]+dz, c.Dims[2]),
				})
			}
		}
	}
	return out
}
