package sysevent

import (
	"testing"

	"github.com/dynamo-sim/dynamo/internal/interaction"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUniformStore(n int, speed float64) *particle.Store {
	store := particle.NewStore()
	ids := make([]int, 0, n)
	for i := 0; i < n; i++ {
		store.Add(vecmath.Vec3{X: float64(i)}, vecmath.Vec3{X: speed}, particle.Dynamic|particle.Alive)
		ids = append(ids, i)
	}
	store.AddSpecies(particle.NewSpecies("all", ids, 1.0))
	return store
}

func TestAndersenThermostatRedrawsOneParticleAndReschedules(t *testing.T) {
	store := newUniformStore(5, 1.0)
	r := vecmath.NewSource(1)
	a := NewAndersenThermostat(2.0, 1.5, r, 0)
	firstNext := a.NextTime()
	require.Greater(t, firstNext, 0.0)

	changes := a.Execute(store)
	require.Len(t, changes.IDs, 1)
	assert.Greater(t, a.NextTime(), firstNext)
}

func TestAndersenThermostatReplicaExchangeSwapsTemp(t *testing.T) {
	r1, r2 := vecmath.NewSource(1), vecmath.NewSource(2)
	a := NewAndersenThermostat(1.0, 1.0, r1, 0)
	b := NewAndersenThermostat(1.0, 2.0, r2, 0)
	a.ReplicaExchange(b)
	assert.Equal(t, 2.0, a.Temp)
	assert.Equal(t, 1.0, b.Temp)
}

func TestRescalerMatchesTargetTemperature(t *testing.T) {
	store := newUniformStore(10, 3.0)
	r := &Rescaler{TargetTemp: 1.0, EveryEvents: 5}

	for i := 0; i < 4; i++ {
		assert.False(t, r.OnEvent())
	}
	assert.True(t, r.OnEvent())

	changes := r.Execute(store)
	assert.Len(t, changes.IDs, 10)
	assert.InDelta(t, 1.0, kineticTemperature(store), 1e-9)
}

func TestDSMCColliderFiresAtTauAndConservesMomentum(t *testing.T) {
	store := newUniformStore(2, 0)
	p0, p1 := store.Get(0), store.Get(1)
	p0.SetPosVel(vecmath.Vec3{X: -0.5}, vecmath.Vec3{X: 1})
	p1.SetPosVel(vecmath.Vec3{X: 0.5}, vecmath.Vec3{X: -1})

	r := vecmath.NewSource(7)
	d := NewDSMCCollider(2.0, 1.0, interaction.All{}, r, 0)
	require.Equal(t, 2.0, d.NextTime())

	before := p0.Vel.Add(p1.Vel)
	d.Execute(store)
	after := store.Get(0).Vel.Add(store.Get(1).Vel)
	assert.InDelta(t, before.X, after.X, 1e-9, "elastic collision must conserve total momentum")
	assert.InDelta(t, 4.0, d.NextTime(), 1e-9)
}

func TestSystemTickerCallsBackAndAdvances(t *testing.T) {
	var fired []float64
	ticker := NewSystemTicker(1.0, func(now float64) { fired = append(fired, now) }, 0)
	store := particle.NewStore()

	ticker.Execute(store)
	ticker.Execute(store)

	assert.Equal(t, []float64{1.0, 2.0}, fired)
	assert.InDelta(t, 3.0, ticker.NextTime(), 1e-9)
}

func TestSleeperFreezesSlowParticle(t *testing.T) {
	store := newUniformStore(1, 0.01)
	s := &Sleeper{SpeedThreshold: 0.1}
	s.OnParticleChanged(store, 0)
	assert.True(t, store.Get(0).IsSleeping())
}

func TestSleeperLeavesFastParticleAwake(t *testing.T) {
	store := newUniformStore(1, 5.0)
	s := &Sleeper{SpeedThreshold: 0.1}
	s.OnParticleChanged(store, 0)
	assert.False(t, store.Get(0).IsSleeping())
}

func TestWakerRewakesSleepingParticles(t *testing.T) {
	store := newUniformStore(3, 0)
	store.Get(1).SetSleeping(true)

	w := NewWaker(5.0, 1.0, vecmath.NewSource(3), 0)
	changes := w.Execute(store)

	assert.Equal(t, []int{1}, changes.IDs)
	assert.False(t, store.Get(1).IsSleeping())
	assert.InDelta(t, 10.0, w.NextTime(), 1e-9)
}

func TestRingDSMCPicksPartnerByFraction(t *testing.T) {
	store := particle.NewStore()
	store.Add(vecmath.Vec3{}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)
	store.Add(vecmath.Vec3{X: 1}, vecmath.Vec3{X: -1}, particle.Dynamic|particle.Alive)
	store.Add(vecmath.Vec3{X: -1}, vecmath.Vec3{X: 1}, particle.Dynamic|particle.Alive)

	speciesI := particle.NewSpecies("I", []int{0}, 1.0)
	speciesJ := particle.NewSpecies("J", []int{1}, 1.0)
	speciesK := particle.NewSpecies("K", []int{2}, 1.0)
	store.AddSpecies(speciesI)
	store.AddSpecies(speciesJ)
	store.AddSpecies(speciesK)

	ring := NewRingDSMC(1.0, 1.0, 1.0, 1.0, speciesI, speciesJ, speciesK, vecmath.NewSource(9), 0)
	changes := ring.Execute(store)
	assert.ElementsMatch(t, []int{0, 1}, changes.IDs, "FractionJK=1 always picks the J partner")
}
