// Package sim wires every other internal package into the running
// simulation: particle store, boundary condition, liouvillean,
// interaction/local/global/system event sources, capture state, and the
// generic scheduler event loop, plus the replica exchange and
// stale/overlap recovery built on top of it.
//
// Grounded on the psosimulation package, which plays the same
// role for pso.Swarm/pso.Topology/pso.FitnessFunction: a facade that owns
// construction order and the run loop, but defers every actual mechanism
// to the packages it wires together.
package sim

import (
	"fmt"

	"github.com/dynamo-sim/dynamo/internal/boundary"
	"github.com/dynamo-sim/dynamo/internal/global"
	"github.com/dynamo-sim/dynamo/internal/interaction"
	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/local"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/scheduler"
	"github.com/dynamo-sim/dynamo/internal/sysevent"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
	"github.com/google/uuid"
)

// Simulation owns one complete, runnable event-driven molecular dynamics
// system: the particle population, the geometry and potentials governing
// its events, and the event loop driving it forward in time. A
// replica-exchange run holds several Simulations side by side (see
// replica.go).
type Simulation struct {
	RunID uuid.UUID

	Store *particle.Store
	Boundary boundary.Condition
	Liouvillean *liouvillean.Liouvillean
	Interactions interaction.List
	Locals local.List
	Globals []global.Global
	Systems []sysevent.System
	Capture *interaction.CaptureStore

	// Cells, if non-nil, restricts pairwise prediction to particles
	// sharing or neighbouring a cell rather than scanning every other
	// particle. Left nil, prediction falls back to an O(N) all-pairs scan,
	// which is the only option when no global.Global cell list is
	// registered at all (small systems, or geometries without one).
	Cells *global.CellList

	// Horizon bounds how far ahead any Predict call searches; an event
	// predicted beyond it is treated as "never" (ok == false upstream),
	// matching how interaction.Predict and local.List.Predict already
	// take a horizon argument.
	Horizon float64

	Rand vecmath.Rand

	Loop *scheduler.EventLoop
	now float64

	// OverlapCount tracks "don't abort, log and count" response to
	// a predicted core-collision root that turns out to already be
	// overlapping at prediction time (a grazing/numerical-edge contact).
	OverlapCount int

	// pending records, for every currently-scheduled particle ID, what its
	// cached next event actually resolves to — the scheduler package only
	// sees an opaque scheduler.Event, so Execute needs this side table to
	// know which package and which participants to dispatch to.
	pending map[int]pendingEvent

	// Plugins receive an EventUpdate after every executed event, in the
	// order registered, before invalidation/recompute happens. The core
	// has no import on internal/outputxml — anything satisfying this
	// interface, declared locally to avoid that dependency, can observe.
	Plugins []Plugin

	// DualEvents/SingleEvents tally how many two-particle and one-particle
	// changes have been executed, the mean-free-time denominator
	// Misc plugin reports.
	DualEvents int
	SingleEvents int
}

// Plugin is the hook the control flow notifies after every executed,
// non-stale event, mirroring the original's eventUpdate callback. changes
// is every particle ID the just-executed event touched.
type Plugin interface {
	EventUpdate(store *particle.Store, changes []int)
}

// pendingEvent is the sim-layer detail behind one particle's cached
// scheduler.Event, populated by predictParticle and consumed by
// executeParticle.
type pendingEvent struct {
	kind string // "pair", "local", "global"
	partner int // valid for kind == "pair"

	in *interaction.Interaction
	eventKind interaction.EventKind

	loc local.Local

	glob global.Global
}

// New builds a Simulation from its already-populated components. Callers
// (the packer, or config loading) are expected to have added every
// particle and species to store, and every Interaction/Local/Global/System
// to their respective lists, before calling New; Initialise then validates
// and wires the scheduler.
func New(store *particle.Store, cond boundary.Condition, liou *liouvillean.Liouvillean, interactions interaction.List, locals local.List, globals []global.Global, systems []sysevent.System, rnd vecmath.Rand, horizon float64) *Simulation {
	return &Simulation{
		RunID: uuid.New(),
		Store: store,
		Boundary: cond,
		Liouvillean: liou,
		Interactions: interactions,
		Locals: locals,
		Globals: globals,
		Systems: systems,
		Capture: interaction.NewCaptureStore(),
		Horizon: horizon,
		Rand: rnd,
		pending: make(map[int]pendingEvent),
	}
}

// Initialise performs ordered setup: resolution of each unresolved
// species' InteractionID, species validation, insertion of every particle
// into Cells (when set), then builds the scheduler's event loop over both
// real particles and one pseudo-ID per system event. Must be called
// exactly once, after every component is registered and before the first
// Run/Step.
func (s *Simulation) Initialise(sorter scheduler.Sorter) error {
	for _, sp := range s.Store.Species() {
		if sp.InteractionID >= 0 || len(sp.IDs) == 0 {
			continue
		}
		self := s.Interactions.For(sp.IDs[0], sp.IDs[0])
		for k, in := range s.Interactions {
			if self != nil && in == self {
				sp.InteractionID = k
			}
		}
	}
	if err := s.Store.Initialise(len(s.Interactions)); err != nil {
		return fmt.Errorf("sim: %w", err)
	}

	if s.Cells != nil {
		for _, p := range s.Store.All() {
			s.Cells.Insert(p.ID, p.Pos)
		}
	}

	numIDs := s.Store.Len() + len(s.Systems)
	s.Loop = scheduler.NewEventLoopN(sorter, s.Store, numIDs, s.predict, s.execute)
	s.Loop.OnEvent = s.onEvent
	return nil
}

// onEvent runs after every non-stale event the scheduler fires: it gives
// every EventCounted system (the Rescaler) a chance to trigger off the
// event count rather than the clock, and notifies every Watcher (the
// Sleeper) of whichever particles the just-executed event touched.
func (s *Simulation) onEvent(id int, ev scheduler.Event, affected []int) {
	if len(affected) >= 2 {
		s.DualEvents++
	} else if len(affected) == 1 {
		s.SingleEvents++
	}
	for _, p := range s.Plugins {
		p.EventUpdate(s.Store, affected)
	}

	for _, sys := range s.Systems {
		if ec, ok := sys.(sysevent.EventCounted); ok && ec.OnEvent() {
			changes := sys.Execute(s.Store)
			s.Loop.Invalidate(changes.IDs...)
		}
	}

	for _, pid := range affected {
		for _, sys := range s.Systems {
			if w, ok := sys.(sysevent.Watcher); ok {
				w.OnParticleChanged(s.Store, pid)
			}
		}
	}
}

// MeanFreeTime returns the original's totMeanFreeTime estimator: elapsed
// time times particle count, divided by the weighted event count (pair
// events counted twice, the denominator the original uses so a dual event
// contributes once per participant).
func (s *Simulation) MeanFreeTime() float64 {
	weighted := 2.0*float64(s.DualEvents) + float64(s.SingleEvents)
	if weighted == 0 {
		return 0
	}
	return s.now * float64(s.Store.Len()) / weighted
}

// Now returns the simulation's current global time.
func (s *Simulation) Now() float64 { return s.now }

// Step advances the simulation by one scheduler event. See
// scheduler.EventLoop.Step for the return values' meaning.
func (s *Simulation) Step() (advanced, more bool) {
	return s.Loop.Step()
}

// Run drives Step until the event loop is exhausted or maxEvents real
// events have fired.
func (s *Simulation) Run(maxEvents int) {
	s.Loop.Run(maxEvents)
}

// syncTo streams particle id forward from its own peculiar time to time,
// a no-op if it is already caught up. Two participants in the same event
// must both be synced to a common time before any relative-position or
// relative-velocity calculation is meaningful, since each particle's
// Pos/Vel otherwise reflects whatever time its own last event left it at.
func (s *Simulation) syncTo(id int, time float64) {
	p := s.Store.Get(id)
	dt := time - p.PeculiarTime
	if dt <= 0 {
		return
	}
	newPos, newVel := s.Liouvillean.Stream(p.Pos, p.Vel, dt)
	newPos = s.Boundary.Apply(newPos)
	p.SetPosVel(newPos, newVel)
	p.SetPeculiarTime(time)
}

// predict is the scheduler.PredictFunc wiring point: particle IDs dispatch
// to predictParticle, and the pseudo-IDs beyond the particle range (one per
// registered System) dispatch to that system's own clock.
func (s *Simulation) predict(store *particle.Store, id int) (scheduler.Event, bool) {
	n := store.Len()
	if id >= n {
		// An EventCounted system (the Rescaler) reports NextTime() ==
		// +Inf: it never fires through the calendar on its own, only via
		// onEvent's count-triggered direct call, but it still needs a
		// pseudo-ID and a (never-popped) cache entry like every other
		// system so the ID space stays dense.
		return scheduler.Event{Time: s.Systems[id-n].NextTime()}, true
	}
	return s.predictParticle(id)
}

// execute is the scheduler.ExecuteFunc wiring point, the Execute-side
// counterpart to predict.
func (s *Simulation) execute(store *particle.Store, id int, ev scheduler.Event) []int {
	n := store.Len()
	if id >= n {
		return s.executeSystem(s.Systems[id-n], ev)
	}
	return s.executeParticle(id, ev)
}

// predictParticle finds the soonest event among every pairwise Interaction
// partner, every applicable Local, and every registered Global for
// particle id, streaming every candidate participant to the simulation's
// current time first so their relative position/velocity is valid.
func (s *Simulation) predictParticle(id int) (scheduler.Event, bool) {
	p := s.Store.Get(id)
	if !p.IsAlive() || p.IsSleeping() {
		return scheduler.Event{}, false
	}
	s.syncTo(id, s.now)

	bestT := s.Horizon
	found := false
	var pe pendingEvent

	for _, j := range s.partnerCandidates(id) {
		in := s.Interactions.For(id, j)
		if in == nil {
			continue
		}
		s.syncTo(j, s.now)
		dt, kind, ok := in.Predict(s.Store, s.Capture, id, j, bestT)
		if !ok {
			continue
		}
		if dt < 0 {
			//: a predicted root at or before "now" is an overlap
			// that slipped past the previous event, not a scheduler bug.
			// Treat it as a grazing contact due right away rather than
			// aborting the run.
			s.OverlapCount++
			dt = 0
		}
		if dt < bestT {
			bestT, found = dt, true
			pe = pendingEvent{kind: "pair", partner: j, in: in, eventKind: kind}
		}
	}

	if loc, dt, ok := s.Locals.Predict(p, s.Liouvillean, s.now, bestT); ok {
		bestT, found = dt, true
		pe = pendingEvent{kind: "local", loc: loc}
	}

	for _, g := range s.Globals {
		dt, ok := g.Predict(s.Store, s.Liouvillean, id)
		if ok && dt < bestT {
			bestT, found = dt, true
			pe = pendingEvent{kind: "global", glob: g}
		}
	}

	if !found {
		return scheduler.Event{}, false
	}

	targets := []int{id}
	counters := []uint64{p.Counter()}
	if pe.kind == "pair" {
		targets = append(targets, pe.partner)
		counters = append(counters, s.Store.Get(pe.partner).Counter())
	}
	s.pending[id] = pe

	return scheduler.Event{
		Time: s.now + bestT,
		Targets: targets,
		TargetCounters: counters,
	}, true
}

// partnerCandidates lists the particle IDs to check id's pairwise
// Interactions against: every other particle's current cell-and-neighbour
// occupants when a CellList is wired in, or every other particle in the
// store otherwise. Both give the identical result (a cell list only
// restricts the search space, never the outcome); the all-pairs fallback
// exists for configurations with no cell-indexed Global registered at all.
func (s *Simulation) partnerCandidates(id int) []int {
	if s.Cells == nil {
		candidates := make([]int, 0, s.Store.Len()-1)
		for j := 0; j < s.Store.Len(); j++ {
			if j != id {
				candidates = append(candidates, j)
			}
		}
		return candidates
	}

	idx, ok := s.Cells.CellOf(id)
	if !ok {
		return nil
	}
	var candidates []int
	for _, n := range s.Cells.Neighbours(idx, true) {
		for _, j := range s.Cells.Occupants(n) {
			if j != id {
				candidates = append(candidates, j)
			}
		}
	}
	return candidates
}

// executeParticle resolves particle id's cached pending event, applying
// the momentum/geometry change and returning every particle ID the caller
// must invalidate and re-predict.
func (s *Simulation) executeParticle(id int, ev scheduler.Event) []int {
	pe, ok := s.pending[id]
	if !ok {
		return []int{id}
	}
	delete(s.pending, id)

	s.now = ev.Time
	s.syncTo(id, s.now)

	switch pe.kind {
	case "pair":
		j := pe.partner
		s.syncTo(j, s.now)
		pe.in.Execute(s.Store, s.Capture, id, j, pe.eventKind)
		if s.Cells != nil {
			s.Cells.Move(id, s.Store.Get(id).Pos)
			s.Cells.Move(j, s.Store.Get(j).Pos)
		}
		return []int{id, j}

	case "local":
		pe.loc.Execute(s.Store.Get(id), s.Liouvillean, s.now)
		if s.Cells != nil {
			s.Cells.Move(id, s.Store.Get(id).Pos)
		}
		return []int{id}

	case "global":
		pe.glob.Execute(s.Store, id)
		return []int{id}
	}

	return []int{id}
}

// executeSystem fires a clock-driven System's effect. Watcher notification
// for the particles it changed happens uniformly in onEvent, since the
// scheduler passes this return value through as that callback's affected
// argument regardless of whether the popped ID was a particle or a
// system.
func (s *Simulation) executeSystem(sys sysevent.System, ev scheduler.Event) []int {
	s.now = ev.Time
	changes := sys.Execute(s.Store)
	return changes.IDs
}

// CheckSystem runs invariant sweep: particles whose peculiar time
// has somehow outrun the global simulation clock. It does not stop the
// run; the caller decides what to do with a nonzero count.
func (s *Simulation) CheckSystem() int {
	return s.Store.CheckPeculiarTimeInvariant(s.now)
}
