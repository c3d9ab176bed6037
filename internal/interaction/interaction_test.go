package interaction

import (
	"testing"

	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTwoParticleStore(t *testing.T, pos1, pos2, vel1, vel2 Vec3) *particle.Store {
	t.Helper()
	store := particle.NewStore()
	store.Add(pos1, vel1, particle.Dynamic|particle.Alive)
	store.Add(pos2, vel2, particle.Dynamic|particle.Alive)
	sp := particle.NewSpecies("test", []int{0, 1}, 1.0)
	store.AddSpecies(sp)
	require.NoError(t, store.Initialise(1))
	return store
}

func TestChainRangeMatchesAdjacentOnly(t *testing.T) {
	r := Chain{Min: 0, Max: 3}
	assert.True(t, r.Contains(0, 1))
	assert.True(t, r.Contains(2, 3))
	assert.False(t, r.Contains(0, 2))
	assert.False(t, r.Contains(3, 4))
}

func TestRingRangeAddsWraparound(t *testing.T) {
	r := Ring{Min: 0, Max: 3}
	assert.True(t, r.Contains(0, 1))
	assert.True(t, r.Contains(0, 3))
	assert.False(t, r.Contains(0, 2))
}

func TestListRangeIsOrderIndependent(t *testing.T) {
	l := NewList([][2]int{{5, 9}})
	assert.True(t, l.Contains(5, 9))
	assert.True(t, l.Contains(9, 5))
	assert.False(t, l.Contains(5, 10))
}

func TestInteractionListFirstMatchWins(t *testing.T) {
	specific := &Interaction{Name: "bond", Kind: SquareBond, Range: Chain{0, 3}}
	fallback := &Interaction{Name: "core", Kind: HardSphere, Range: All{}}
	list := List{specific, fallback}

	assert.Equal(t, specific, list.For(0, 1))
	assert.Equal(t, fallback, list.For(0, 2))
}

func TestHardSpherePredictsCoreCollision(t *testing.T) {
	store := newTwoParticleStore(t, Vec3{X: -5}, Vec3{}, Vec3{X: 1}, Vec3{})
	in := &Interaction{Kind: HardSphere, Range: All{}, Diameter: 1.0}
	capture := NewCaptureStore()

	tc, kind, ok := in.Predict(store, capture, 0, 1, 100)
	require.True(t, ok)
	assert.Equal(t, EventCoreCollision, kind)
	assert.InDelta(t, 4.0, tc, 1e-9)
}

func TestHardSphereExecuteReversesApproach(t *testing.T) {
	store := newTwoParticleStore(t, Vec3{X: -1}, Vec3{}, Vec3{X: 1}, Vec3{})
	in := &Interaction{Kind: HardSphere, Range: All{}, Diameter: 1.0}
	capture := NewCaptureStore()

	in.Execute(store, capture, 0, 1, EventCoreCollision)
	p0, p1 := store.Get(0), store.Get(1)
	relVel := p0.Vel.Sub(p1.Vel)
	assert.InDelta(t, -1.0, relVel.X, 1e-9)
}

func TestSquareWellCapturesOnInwardCrossing(t *testing.T) {
	store := newTwoParticleStore(t, Vec3{X: -5}, Vec3{}, Vec3{X: 2}, Vec3{})
	in := &Interaction{Kind: SquareWell, Range: All{}, Diameter: 1.0, OuterDiameter: 1.5, WellDepth: 0.5}
	capture := NewCaptureStore()

	tc, kind, ok := in.Predict(store, capture, 0, 1, 100)
	require.True(t, ok)
	assert.Equal(t, EventWellCapture, kind)
	assert.Greater(t, tc, 0.0)

	in.Execute(store, capture, 0, 1, EventWellCapture)
	_, captured := capture.Shell(0, 1)
	assert.True(t, captured)
}

func TestSteppedPotentialTracksShellIndex(t *testing.T) {
	store := newTwoParticleStore(t, Vec3{X: -10}, Vec3{}, Vec3{X: 3}, Vec3{})
	in := &Interaction{
		Kind:  Stepped,
		Range: All{},
		Steps: []Step{{Distance: 3.0, Energy: 0}, {Distance: 1.5, Energy: -1.0}},
	}
	capture := NewCaptureStore()

	tc, kind, ok := in.Predict(store, capture, 0, 1, 100)
	require.True(t, ok)
	assert.Equal(t, EventStepInward, kind)
	assert.Greater(t, tc, 0.0)

	in.Execute(store, capture, 0, 1, EventStepInward)
	shell, captured := capture.Shell(0, 1)
	require.True(t, captured)
	assert.Equal(t, 1, shell)
}

func TestParallelCubesPredictsOverlapTime(t *testing.T) {
	store := newTwoParticleStore(t, Vec3{X: -5}, Vec3{}, Vec3{X: 1}, Vec3{})
	in := &Interaction{Kind: ParallelCubes, Range: All{}, Diameter: 1.0}
	capture := NewCaptureStore()

	tc, kind, ok := in.Predict(store, capture, 0, 1, 100)
	require.True(t, ok)
	assert.Equal(t, EventCoreCollision, kind)
	assert.InDelta(t, 4.0, tc, 1e-9)
}

func TestNullInteractionNeverPredicts(t *testing.T) {
	store := newTwoParticleStore(t, Vec3{X: -5}, Vec3{}, Vec3{X: 1}, Vec3{})
	in := &Interaction{Kind: Null, Range: All{}}
	capture := NewCaptureStore()

	_, kind, ok := in.Predict(store, capture, 0, 1, 100)
	assert.False(t, ok)
	assert.Equal(t, EventNone, kind)
}

func TestCaptureStoreForgetParticleDropsAllItsPairs(t *testing.T) {
	c := NewCaptureStore()
	c.Capture(1, 2, 0)
	c.Capture(1, 3, 0)
	c.Capture(2, 3, 0)

	c.ForgetParticle(1)
	_, ok := c.Shell(1, 2)
	assert.False(t, ok)
	_, ok = c.Shell(1, 3)
	assert.False(t, ok)
	_, ok = c.Shell(2, 3)
	assert.True(t, ok)
}
