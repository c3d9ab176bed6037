// Package sysevent implements the time-triggered system events:
// events that are scheduled at an absolute simulation time independent of
// any particle's trajectory, in contrast to internal/interaction,
// internal/local and internal/global which all predict an event from a
// specific particle's current streamed state.
//
// Grounded on the same tagged-variant-behind-small-interface shape used
// throughout this module (boundary.Condition, interaction.Range,
// local.Local, global.Global), here applied to a clock-driven rather than
// trajectory-driven event source.
package sysevent

import (
	"math"

	"github.com/dynamo-sim/dynamo/internal/interaction"
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

// ParticleChanges lists the particle IDs mutated by one System.Execute
// call, the information the scheduler's affected_by step needs to
// know which cached predictions to invalidate.
type ParticleChanges struct {
	IDs []int
}

// System is a time-driven event source: thermostat, rescaler, DSMC
// collision step, or periodic plugin ticker. Every System exposes
// its next absolute firing time, runs its effect, and can participate in
// replica exchange.
type System interface {
	NextTime() float64
	Execute(store *particle.Store) ParticleChanges
	ReplicaExchange(other System)
	Stream(dt float64)
	Name() string
}

// EventCounted is implemented by systems triggered by a count of executed
// simulation events rather than elapsed time (the Rescaler). The scheduler
// calls OnEvent after every event it executes; OnEvent reports whether the
// configured interval has now elapsed, in which case the scheduler also
// calls Execute.
type EventCounted interface {
	OnEvent() (due bool)
}

// Watcher is implemented by systems that react to a specific particle
// changing rather than to their own clock (the Sleeper). The scheduler
// calls OnParticleChanged for every particle a just-executed event
// affected.
type Watcher interface {
	OnParticleChanged(store *particle.Store, id int)
}

func massOf(store *particle.Store, id int) float64 {
	if sp := store.SpeciesOf(id); sp != nil {
		return sp.Mass(id)
	}
	return 1.0
}

// AndersenThermostat (the "ghost" system of ) fires at exponentially
// distributed intervals with mean 1/Frequency; each firing redraws one
// random particle's velocity from a Maxwell-Boltzmann distribution at
// Temp, exactly like dipping the particle into an infinite heat bath.
type AndersenThermostat struct {
	Frequency float64
	Temp float64
	Rand vecmath.Rand

	next float64
}

// NewAndersenThermostat builds a thermostat and draws its first firing
// time relative to startTime.
func NewAndersenThermostat(frequency, temp float64, r vecmath.Rand, startTime float64) *AndersenThermostat {
	a := &AndersenThermostat{Frequency: frequency, Temp: temp, Rand: r}
	a.scheduleNext(startTime)
	return a
}

func (a *AndersenThermostat) scheduleNext(now float64) {
	interval := -math.Log(a.Rand.Float64()) / a.Frequency
	a.next = now + interval
}

func (a *AndersenThermostat) NextTime() float64 { return a.next }
func (a *AndersenThermostat) Name() string { return "AndersenThermostat" }
func (a *AndersenThermostat) Stream(dt float64) {}

func (a *AndersenThermostat) Execute(store *particle.Store) ParticleChanges {
	id := a.Rand.Intn(store.Len())
	p := store.Get(id)
	newVel := vecmath.MaxwellBoltzmann(a.Rand, massOf(store, id), a.Temp)
	p.SetPosVel(p.Pos, newVel)
	a.scheduleNext(a.next)
	return ParticleChanges{IDs: []int{id}}
}

func (a *AndersenThermostat) ReplicaExchange(other System) {
	o, ok := other.(*AndersenThermostat)
	if !ok {
		return
	}
	a.Temp, o.Temp = o.Temp, a.Temp
}

// Rescaler scales every particle's velocity by sqrt(TargetTemp/T_current)
// every EveryEvents executed events; it is not scheduled on the
// clock at all, so NextTime always reports +Inf and the scheduler drives
// it through the EventCounted interface instead.
type Rescaler struct {
	TargetTemp float64
	EveryEvents int

	count int
}

func (r *Rescaler) NextTime() float64 { return math.Inf(1) }
func (r *Rescaler) Name() string { return "Rescaler" }
func (r *Rescaler) Stream(dt float64) {}
func (r *Rescaler) ReplicaExchange(System) {}

// OnEvent counts one executed simulation event and reports whether the
// rescale interval has elapsed.
func (r *Rescaler) OnEvent() bool {
	r.count++
	if r.count < r.EveryEvents {
		return false
	}
	r.count = 0
	return true
}

// Execute scales every dynamic particle's velocity so that the
// instantaneous kinetic temperature matches TargetTemp exactly.
func (r *Rescaler) Execute(store *particle.Store) ParticleChanges {
	current := kineticTemperature(store)
	if current <= 0 {
		return ParticleChanges{}
	}
	factor := math.Sqrt(r.TargetTemp / current)

	var ids []int
	for _, p := range store.All() {
		if !p.IsDynamic() {
			continue
		}
		p.SetPosVel(p.Pos, p.Vel.SMul(factor))
		ids = append(ids, p.ID)
	}
	return ParticleChanges{IDs: ids}
}

// KineticTemperature computes 2*KE/(3N) over dynamic particles, the
// equipartition estimator every thermostat/rescaler in this package scales
// against, and the quantity replica exchange swaps between ensembles.
func KineticTemperature(store *particle.Store) float64 {
	var ke float64
	n := 0
	for _, p := range store.All() {
		if !p.IsDynamic() {
			continue
		}
		m := massOf(store, p.ID)
		ke += 0.5 * m * p.Vel.Dot(p.Vel)
		n++
	}
	if n == 0 {
		return 0
	}
	return 2 * ke / (3 * float64(n))
}

func kineticTemperature(store *particle.Store) float64 { return KineticTemperature(store) }

// DSMCCollider implements the direct simulation Monte Carlo sphere
// collider of: every Tau, it samples a random pair within Range,
// accepts with probability Chi (the pair-correlation function at
// contact), and on acceptance applies a smooth hard-sphere post-event —
// a stochastic substitute for predicting every pair's exact collision
// time, used for dense or DSMC-only configurations.
type DSMCCollider struct {
	Tau float64
	Chi float64
	Range interaction.Range
	Rand vecmath.Rand

	next float64
}

// NewDSMCCollider builds a collider with its first firing at startTime+Tau.
func NewDSMCCollider(tau, chi float64, r interaction.Range, rnd vecmath.Rand, startTime float64) *DSMCCollider {
	return &DSMCCollider{Tau: tau, Chi: chi, Range: r, Rand: rnd, next: startTime + tau}
}

func (d *DSMCCollider) NextTime() float64 { return d.next }
func (d *DSMCCollider) Name() string { return "DSMCCollider" }
func (d *DSMCCollider) Stream(dt float64) {}
func (d *DSMCCollider) ReplicaExchange(System) {}

func (d *DSMCCollider) Execute(store *particle.Store) ParticleChanges {
	d.next += d.Tau
	n := store.Len()
	if n < 2 {
		return ParticleChanges{}
	}
	i, j, ok := pickPairInRange(d.Rand, n, d.Range)
	if !ok {
		return ParticleChanges{}
	}
	if d.Rand.Float64() >= d.Chi {
		return ParticleChanges{}
	}
	return collideIJ(store, i, j)
}

// pickPairInRange draws unordered distinct indices in [0,n) until one
// falls inside rng, bailing out after a bounded number of attempts so a
// misconfigured (empty) range can never spin forever.
func pickPairInRange(r vecmath.Rand, n int, rng interaction.Range) (int, int, bool) {
	for attempt := 0; attempt < 64; attempt++ {
		i := r.Intn(n)
		j := r.Intn(n)
		if i == j {
			continue
		}
		if rng == nil || rng.Contains(i, j) {
			return i, j, true
		}
	}
	return 0, 0, false
}

func collideIJ(store *particle.Store, i, j int) ParticleChanges {
	pi, pj := store.Get(i), store.Get(j)
	mi, mj := massOf(store, i), massOf(store, j)
	relPos := pi.Pos.Sub(pj.Pos)
	relVel := pi.Vel.Sub(pj.Vel)
	impulse := liouvillean.SmoothSphereCollision(relPos, relVel, mi, mj, 1.0)
	newVi, newVj := liouvillean.ApplyImpulse(pi.Vel, pj.Vel, impulse, mi, mj)
	pi.SetPosVel(pi.Pos, newVi)
	pj.SetPosVel(pj.Pos, newVj)
	return ParticleChanges{IDs: []int{i, j}}
}

// RingDSMC is the three-species DSMC variant of: a central species I
// particle collides either with a species J partner (weighted by ChiJK,
// picked with probability FractionJK) or a species K partner (weighted by
// ChiIK), modelling e.g. a solute colliding with two distinct solvent
// populations at different pair correlations.
type RingDSMC struct {
	Tau float64
	ChiJK float64
	ChiIK float64
	FractionJK float64
	SpeciesI *particle.Species
	SpeciesJ *particle.Species
	SpeciesK *particle.Species
	Rand vecmath.Rand

	next float64
}

func NewRingDSMC(tau, chiJK, chiIK, fractionJK float64, i, j, k *particle.Species, rnd vecmath.Rand, startTime float64) *RingDSMC {
	return &RingDSMC{
		Tau: tau, ChiJK: chiJK, ChiIK: chiIK, FractionJK: fractionJK,
		SpeciesI: i, SpeciesJ: j, SpeciesK: k, Rand: rnd, next: startTime + tau,
	}
}

func (r *RingDSMC) NextTime() float64 { return r.next }
func (r *RingDSMC) Name() string { return "RingDSMC" }
func (r *RingDSMC) Stream(dt float64) {}
func (r *RingDSMC) ReplicaExchange(System) {}

func (r *RingDSMC) Execute(store *particle.Store) ParticleChanges {
	r.next += r.Tau
	if r.SpeciesI.Count() == 0 {
		return ParticleChanges{}
	}
	i := r.SpeciesI.IDs[r.Rand.Intn(r.SpeciesI.Count())]

	partner := r.SpeciesK
	chi := r.ChiIK
	if r.Rand.Float64() < r.FractionJK {
		partner = r.SpeciesJ
		chi = r.ChiJK
	}
	if partner == nil || partner.Count() == 0 {
		return ParticleChanges{}
	}
	j := partner.IDs[r.Rand.Intn(partner.Count())]
	if j == i {
		return ParticleChanges{}
	}
	if r.Rand.Float64() >= chi {
		return ParticleChanges{}
	}
	return collideIJ(store, i, j)
}

// SystemTicker fires at a fixed Period; its only effect is to call back
// every installed output-plugin ticker, which is why Execute never
// produces any ParticleChanges.
type SystemTicker struct {
	Period float64
	OnTick func(now float64)

	next float64
}

func NewSystemTicker(period float64, onTick func(now float64), startTime float64) *SystemTicker {
	return &SystemTicker{Period: period, OnTick: onTick, next: startTime + period}
}

func (t *SystemTicker) NextTime() float64 { return t.next }
func (t *SystemTicker) Name() string { return "SystemTicker" }
func (t *SystemTicker) Stream(dt float64) {}
func (t *SystemTicker) ReplicaExchange(System) {}

func (t *SystemTicker) Execute(store *particle.Store) ParticleChanges {
	if t.OnTick != nil {
		t.OnTick(t.next)
	}
	t.next += t.Period
	return ParticleChanges{}
}

// Sleeper freezes any particle whose speed drops below SpeedThreshold,
// matching "freezes a particle whose speed drops below a
// threshold". It has no clock of its own: the scheduler invokes
// OnParticleChanged after every event so the check happens exactly when a
// particle's velocity last changed, rather than on a polling timer.
type Sleeper struct {
	SpeedThreshold float64
}

func (s *Sleeper) OnParticleChanged(store *particle.Store, id int) {
	p := store.Get(id)
	if p.IsSleeping() || !p.IsDynamic() {
		return
	}
	if p.Vel.Dot(p.Vel) < s.SpeedThreshold*s.SpeedThreshold {
		p.SetSleeping(true)
	}
}

// Waker rewakes sleeping particles at a fixed Period, redrawing their
// velocity from a Maxwell-Boltzmann distribution at Temp so that a woken
// particle re-enters the dynamics with a plausible thermal kick rather
// than exactly zero velocity.
type Waker struct {
	Period float64
	Temp float64
	Rand vecmath.Rand

	next float64
}

func NewWaker(period, temp float64, r vecmath.Rand, startTime float64) *Waker {
	return &Waker{Period: period, Temp: temp, Rand: r, next: startTime + period}
}

func (w *Waker) NextTime() float64 { return w.next }
func (w *Waker) Name() string { return "Waker" }
func (w *Waker) Stream(dt float64) {}
func (w *Waker) ReplicaExchange(System) {}

func (w *Waker) Execute(store *particle.Store) ParticleChanges {
	w.next += w.Period
	var ids []int
	for _, p := range store.All() {
		if !p.IsSleeping() {
			continue
		}
		p.SetSleeping(false)
		p.SetPosVel(p.Pos, vecmath.MaxwellBoltzmann(w.Rand, massOf(store, p.ID), w.Temp))
		ids = append(ids, p.ID)
	}
	return ParticleChanges{IDs: ids}
}
