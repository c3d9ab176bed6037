package global

import (
	"testing"

	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSingleParticleCells(t *testing.T, pos, vel Vec3) (*particle.Store, *CellList) {
	t.Helper()
	store := particle.NewStore()
	store.Add(pos, vel, particle.Dynamic|particle.Alive)
	cl := NewCellList([3]int{4, 4, 4}, Vec3{X: 8, Y: 8, Z: 8}, Vec3{X: -4, Y: -4, Z: -4})
	cl.Insert(0, pos)
	return store, cl
}

func TestRegularCellPredictsFaceCrossing(t *testing.T) {
	store, cl := newSingleParticleCells(t, Vec3{X: -3, Y: 0, Z: 0}, Vec3{X: 1})
	liou := liouvillean.New(liouvillean.Newtonian)
	g := RegularCell{Cells: cl}

	p := store.Get(0)
	tc, ok := g.Predict(store, liou, 0)
	require.True(t, ok)
	assert.Greater(t, tc, 0.0)

	newPos, newVel := liou.Stream(p.Pos, p.Vel, tc)
	p.SetPosVel(newPos, newVel)

	g.Execute(store, 0)
	idx, _ := cl.CellOf(0)
	assert.Equal(t, 1, idx[0])
}

func TestSingleOccupancyBouncesOffOccupiedCell(t *testing.T) {
	store := particle.NewStore()
	store.Add(Vec3{X: -0.1}, Vec3{X: 1}, particle.Dynamic|particle.Alive)
	store.Add(Vec3{X: 1.5}, Vec3{}, particle.Dynamic|particle.Alive)
	cl := NewCellList([3]int{4, 4, 4}, Vec3{X: 8, Y: 8, Z: 8}, Vec3{X: -4, Y: -4, Z: -4})
	cl.Insert(0, Vec3{X: -0.1})
	cl.Insert(1, Vec3{X: 1.5})

	g := SingleOccupancyCell{Cells: cl}
	g.Execute(store, 0)

	p := store.Get(0)
	assert.Less(t, p.Vel.X, 0.0, "blocked move should bounce the particle back")
	idxBefore, _ := cl.CellOf(0)
	assert.Equal(t, 1, idxBefore[0], "bounced particle stays in its original cell")
}

func TestSingleOccupancyMovesIntoEmptyCell(t *testing.T) {
	store, cl := newSingleParticleCells(t, Vec3{X: -0.1}, Vec3{X: 1})
	g := SingleOccupancyCell{Cells: cl}
	g.Execute(store, 0)

	p := store.Get(0)
	assert.InDelta(t, 1.0, p.Vel.X, 1e-9, "unblocked move leaves velocity untouched")
}

func TestPBCSentinelWrapsPositionOnCrossing(t *testing.T) {
	store := particle.NewStore()
	store.Add(Vec3{X: 4.1}, Vec3{X: 1}, particle.Dynamic|particle.Alive)
	cond := boundary.Periodic{Box: Vec3{X: 8, Y: 8, Z: 8}}
	s := PBCSentinel{Box: Vec3{X: 8, Y: 8, Z: 8}, Cond: cond}

	s.Execute(store, 0)
	p := store.Get(0)
	assert.True(t, p.Pos.X >= -4 && p.Pos.X < 4)
}
