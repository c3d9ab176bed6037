package sim

import (
	"context"
	"math"
	"testing"

	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/interaction"
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/local"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/scheduler"
	"github.com/dynamo-sim/dynamo/internal/sysevent"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHeadOnPair builds a two-particle, unit-mass, unit-diameter hard sphere
// system approaching head-on along X, closing at a combined relative speed
// of 2 starting 4 units apart (so the wall-clock collision time is 1.5,
// contact at separation 1.0 happening at t = (4-1)/2 = 1.5).
func newHeadOnPair(t *testing.T) *Simulation {
	t.Helper()

	store := particle.NewStore()
	store.Add(vecmath.Vec3{X: -2}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)
	store.Add(vecmath.Vec3{X: 2}, vecmath.Vec3{X: -1}, particle.Dynamic|particle.Alive)
	store.AddSpecies(particle.NewSpecies("sphere", []int{0, 1}, 1.0))

	interactions := interaction.List{
		{Name: "core", Kind: interaction.HardSphere, Range: interaction.All{}, Diameter: 1.0},
	}

	s := New(store, boundary.None{}, liouvillean.New(liouvillean.Newtonian), interactions, nil, nil, nil, vecmath.NewSource(1), 100.0)
	require.NoError(t, s.Initialise(scheduler.NewTreeSorter()))
	return s
}

func TestSimulationPredictsAndExecutesHeadOnCollision(t *testing.T) {
	s := newHeadOnPair(t)

	advanced, more := s.Step()
	require.True(t, more)
	require.True(t, advanced)

	assert.InDelta(t, 1.5, s.Now(), 1e-9)

	p0, p1 := s.Store.Get(0), s.Store.Get(1)
	// An elastic equal-mass head-on collision exchanges velocities.
	assert.InDelta(t, -1.0, p0.Vel.X, 1e-9)
	assert.InDelta(t, 1.0, p1.Vel.X, 1e-9)
}

func TestSimulationConservesMomentumAcrossManyEvents(t *testing.T) {
	store := particle.NewStore()
	store.Add(vecmath.Vec3{X: -3}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)
	store.Add(vecmath.Vec3{X: 0}, vecmath.Vec3{X: 0}, particle.Dynamic|particle.Alive)
	store.Add(vecmath.Vec3{X: 3}, vecmath.Vec3{X: -1}, particle.Dynamic|particle.Alive)
	store.AddSpecies(particle.NewSpecies("sphere", []int{0, 1, 2}, 1.0))

	interactions := interaction.List{
		{Name: "core", Kind: interaction.HardSphere, Range: interaction.All{}, Diameter: 1.0},
	}

	totalBefore := 0.0
	for _, p := range store.All() {
		totalBefore += p.Vel.X
	}

	s := New(store, boundary.None{}, liouvillean.New(liouvillean.Newtonian), interactions, nil, nil, nil, vecmath.NewSource(2), 100.0)
	require.NoError(t, s.Initialise(scheduler.NewTreeSorter()))
	s.Run(10)

	totalAfter := 0.0
	for _, p := range s.Store.All() {
		totalAfter += p.Vel.X
	}
	assert.InDelta(t, totalBefore, totalAfter, 1e-9)
}

func TestSimulationWallLocalFiresBetweenCollisions(t *testing.T) {
	store := particle.NewStore()
	store.Add(vecmath.Vec3{X: 0}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)

	wall := local.Wall{Members: local.All(), Normal: vecmath.Vec3{X: 1}, Position: 5.0}

	s := New(store, boundary.None{}, liouvillean.New(liouvillean.Newtonian), nil, local.List{wall}, nil, nil, vecmath.NewSource(3), 100.0)
	require.NoError(t, s.Initialise(scheduler.NewTreeSorter()))

	advanced, more := s.Step()
	require.True(t, more)
	require.True(t, advanced)
	assert.InDelta(t, 5.0, s.Now(), 1e-9)
	assert.InDelta(t, -1.0, s.Store.Get(0).Vel.X, 1e-9, "specular reflection reverses the normal component")
}

func TestSimulationDispatchesSystemEventAlongsideParticles(t *testing.T) {
	store := particle.NewStore()
	store.Add(vecmath.Vec3{}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)

	var ticks []float64
	ticker := sysevent.NewSystemTicker(2.0, func(now float64) { ticks = append(ticks, now) }, 0)

	s := New(store, boundary.None{}, liouvillean.New(liouvillean.Newtonian), nil, nil, nil, []sysevent.System{ticker}, vecmath.NewSource(4), 100.0)
	require.NoError(t, s.Initialise(scheduler.NewTreeSorter()))

	s.Run(3)
	require.GreaterOrEqual(t, len(ticks), 3)
	assert.InDelta(t, 2.0, ticks[0], 1e-9)
	assert.InDelta(t, 4.0, ticks[1], 1e-9)
	assert.InDelta(t, 6.0, ticks[2], 1e-9)
}

func TestReplicaExchangeRescalesTemperaturesAndSwapsSystemState(t *testing.T) {
	hot := newUniformReplica(t, 1, 4.0)
	cold := newUniformReplica(t, 2, 1.0)

	thermHot := sysevent.NewAndersenThermostat(0.1, 4.0, vecmath.NewSource(10), 0)
	thermCold := sysevent.NewAndersenThermostat(0.1, 1.0, vecmath.NewSource(11), 0)
	hot.Systems = []sysevent.System{thermHot}
	cold.Systems = []sysevent.System{thermCold}
	require.NoError(t, hot.Initialise(scheduler.NewTreeSorter()))
	require.NoError(t, cold.Initialise(scheduler.NewTreeSorter()))

	err := ReplicaExchange(hot, cold)
	require.NoError(t, err)

	assert.InDelta(t, 1.0, sysevent.KineticTemperature(hot.Store), 1e-9)
	assert.InDelta(t, 4.0, sysevent.KineticTemperature(cold.Store), 1e-9)
	assert.InDelta(t, 1.0, thermHot.Temp, 1e-9, "system state swaps pairwise along with velocities")
	assert.InDelta(t, 4.0, thermCold.Temp, 1e-9)
}

// newUniformReplica builds a non-interacting N-particle gas at exactly the
// given kinetic temperature (every particle carries speed sqrt(3T) along a
// fixed axis, so KE = 3N*T/2 trivially).
func newUniformReplica(t *testing.T, seed int64, temp float64) *Simulation {
	t.Helper()
	store := particle.NewStore()
	// 2*KE/(3N) = v^2/3 for N particles all carrying speed v along one
	// axis, so v = sqrt(3*temp) gives exactly KineticTemperature == temp.
	speed := math.Sqrt(3 * temp)
	for i := 0; i < 5; i++ {
		store.Add(vecmath.Vec3{X: float64(i) * 10}, vecmath.Vec3{X: speed}, particle.Dynamic|particle.Alive)
	}
	store.AddSpecies(particle.NewSpecies("gas", []int{0, 1, 2, 3, 4}, 1.0))
	return New(store, boundary.None{}, liouvillean.New(liouvillean.Newtonian), nil, nil, nil, nil, vecmath.NewSource(seed), 1000.0)
}

func TestRunParallelRunsEveryReplicaToCompletion(t *testing.T) {
	a := newHeadOnPair(t)
	b := newHeadOnPair(t)

	err := RunParallel(context.Background(), []*Simulation{a, b}, 1)
	require.NoError(t, err)

	assert.InDelta(t, 1.5, a.Now(), 1e-9)
	assert.InDelta(t, 1.5, b.Now(), 1e-9)
}

func TestMetropolisAcceptAlwaysAcceptsNonPositiveDelta(t *testing.T) {
	// Equal energies make delta = (betaB-betaA)*(eA-eB) exactly zero
	// regardless of the beta difference, which must always accept.
	accept := MetropolisAccept(vecmath.NewSource(5), 1.0, 2.0, 3.0, 3.0)
	assert.True(t, accept)
}
