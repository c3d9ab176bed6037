package global

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexOfWrapsIntoGrid(t *testing.T) {
	cl := NewCellList([3]int{4, 4, 4}, Vec3{X: 8, Y: 8, Z: 8}, Vec3{X: -4, Y: -4, Z: -4})
	idx := cl.IndexOf(Vec3{X: -3.9, Y: 0, Z: 3.9})
	assert.Equal(t, CellIndex{0, 2, 3}, idx)
}

func TestInsertRemoveMoveTracksOccupants(t *testing.T) {
	cl := NewCellList([3]int{2, 2, 2}, Vec3{X: 4, Y: 4, Z: 4}, Vec3{X: -2, Y: -2, Z: -2})
	cl.Insert(0, Vec3{X: -1, Y: -1, Z: -1})
	idx, ok := cl.CellOf(0)
	assert.True(t, ok)
	assert.Contains(t, cl.Occupants(idx), 0)

	cl.Move(0, Vec3{X: 1, Y: 1, Z: 1})
	newIdx, _ := cl.CellOf(0)
	assert.NotEqual(t, idx, newIdx)
	assert.NotContains(t, cl.Occupants(idx), 0)
	assert.Contains(t, cl.Occupants(newIdx), 0)

	cl.Remove(0)
	_, ok = cl.CellOf(0)
	assert.False(t, ok)
}

func TestNeighboursReturns26WithoutSelf(t *testing.T) {
	cl := NewCellList([3]int{4, 4, 4}, Vec3{X: 8, Y: 8, Z: 8}, Vec3{})
	neighbours := cl.Neighbours(CellIndex{1, 1, 1}, false)
	assert.Len(t, neighbours, 26)

	withSelf := cl.Neighbours(CellIndex{1, 1, 1}, true)
	assert.Len(t, withSelf, 27)
}

func TestNeighboursWrapAtGridEdge(t *testing.T) {
	cl := NewCellList([3]int{2, 2, 2}, Vec3{X: 4, Y: 4, Z: 4}, Vec3{})
	neighbours := cl.Neighbours(CellIndex{0, 0, 0}, true)
	assert.Contains(t, neighbours, CellIndex{1, 1, 1})
}
