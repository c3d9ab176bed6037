package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/dynamo-sim/dynamo/internal/nursery"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/sysevent"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

// ReplicaExchange performs pairwise exchange between two replicas
// running at different temperatures: each replica's velocities are rescaled
// by the square root of the other's kinetic temperature ratio, every
// System's internal state is swapped pairwise (so replica a picks up
// replica b's thermostat/collider configuration and vice versa), and every
// cached scheduler prediction in both replicas is invalidated and
// recomputed, since a velocity rescale changes every pending event time.
//
// Acceptance is not decided here — the caller runs whatever Metropolis
// test it likes (see MetropolisAccept) and only calls ReplicaExchange once
// it has already decided to accept; ReplicaExchange always performs the
// swap it's given.
func ReplicaExchange(a, b *Simulation) error {
	if len(a.Systems) != len(b.Systems) {
		return fmt.Errorf("sim: replica exchange requires matching system-event lists, got %d and %d", len(a.Systems), len(b.Systems))
	}

	ta := sysevent.KineticTemperature(a.Store)
	tb := sysevent.KineticTemperature(b.Store)
	if ta <= 0 || tb <= 0 {
		return fmt.Errorf("sim: replica exchange requires a nonzero kinetic temperature in both replicas")
	}

	rescaleVelocities(a.Store, math.Sqrt(tb/ta))
	rescaleVelocities(b.Store, math.Sqrt(ta/tb))

	for i := range a.Systems {
		a.Systems[i].ReplicaExchange(b.Systems[i])
	}

	// A velocity rescale invalidates every cached prediction in both
	// replicas; general potentials don't admit a cheaper analytic
	// time-rescaling of the pending queue, so a full re-predict sweep
	// replaces it.
	a.Loop.Invalidate(allIDs(a.Store.Len() + len(a.Systems))...)
	b.Loop.Invalidate(allIDs(b.Store.Len() + len(b.Systems))...)

	return nil
}

func rescaleVelocities(store *particle.Store, factor float64) {
	for _, p := range store.All() {
		if p.IsDynamic() {
			p.SetPosVel(p.Pos, p.Vel.SMul(factor))
		}
	}
}

func allIDs(n int) []int {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return ids
}

// MetropolisAccept reports whether a proposed exchange between two
// replicas at inverse temperatures betaA, betaB and (kinetic) energies eA,
// eB should be accepted, per the standard replica-exchange acceptance
// ratio min(1, exp(-(betaB-betaA)(eA-eB))). The caller supplies its own
// Rand draw so acceptance remains reproducible under the same
// per-replica-seeded determinism invariant as everything else in this
// package.
func MetropolisAccept(rnd vecmath.Rand, betaA, betaB, eA, eB float64) bool {
	delta := (betaB - betaA) * (eA - eB)
	if delta <= 0 {
		return true
	}
	return rnd.Float64() < math.Exp(-delta)
}

// SwapEnsembleSlot exchanges which replica occupies index i vs j of an
// ordered-by-ensemble slice, the final "ensemble swap last" bookkeeping
// step: the two Simulations keep running at whatever temperature
// their own Systems are now configured for, but the driver's notion of
// "the replica currently assigned to temperature slot i" moves with them.
func SwapEnsembleSlot(replicas []*Simulation, i, j int) {
	replicas[i], replicas[j] = replicas[j], replicas[i]
}

// RunParallel runs every replica's event loop concurrently for up to
// maxEventsPerRound events each, returning once all have stopped (either
// exhausted or hit the cap). Grounded on the nursery package:
// one goroutine per replica, structured so the caller can't return control
// until every replica has actually finished its round.
func RunParallel(ctx context.Context, replicas []*Simulation, maxEventsPerRound int) error {
	return nursery.Run(ctx, func(_ context.Context, n *nursery.Nursery) {
		for _, r := range replicas {
			r := r
			n.Go(func() error {
				r.Run(maxEventsPerRound)
				return nil
			})
		}
	})
}
