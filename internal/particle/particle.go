// Package particle owns the particle store: positions, velocities,
// per-particle state bits and the peculiar-time bookkeeping the liouvillean
// depends on. Grounded on pso.Particle/swarm.Particle's shape
// (current state + best-state/scratch fields, an Init method, a Stringer)
// generalized to an event-driven particle model: a fixed-size, ID-indexed
// store instead of an optimization swarm, with an explicit event counter
// replacing pso.Particle's "Age"/"BestAge" fields (here the counter exists
// purely for the scheduler's stale-event protocol).
package particle

import "fmt"

import "github.com/dynamo-sim/dynamo/internal/vecmath"

// Flags is a bitset of per-particle state.
type Flags uint8

const (
	// Dynamic marks a particle whose trajectory integrates in time. A
	// non-Dynamic particle has velocity identically zero and is never
	// streamed.
	Dynamic Flags = 1 << iota
	// Alive marks an event-producing particle.
	Alive
	// Sleeping marks a particle frozen at rest by the sleeper system event
	//; it is Dynamic but not currently integrated.
	Sleeping
)

// Particle is the atomic mutable unit of the simulation. IDs are assigned by
// position in the owning Store and never reused; Pos/Vel are always in
// simulation units; PeculiarTime is the simulation time at which the stored
// Pos/Vel are valid (it lags global simulation time between this particle's
// events).
type Particle struct {
	ID int

	Pos Vec3
	Vel Vec3

	// Orientation and Spin are only meaningful for particles governed by an
	// oriented-line Interaction; spherical particles leave them at the zero
	// value, which Interaction.Predict's sphere branches never read.
	Orientation Vec3
	Spin Vec3

	PeculiarTime float64
	Flags Flags

	// counter is incremented on every mutation (stream or execute). A
	// predicted event records the counter value of its participants at
	// prediction time; a mismatch at pop time means the event is stale
	// and must be silently discarded.
	counter uint64
}

// Vec3 is an alias kept local to avoid every call site spelling out the
// vecmath package name for the two fields used constantly throughout the
// core.
type Vec3 = vecmath.Vec3

// New creates a particle with the given ID, initial position and velocity.
// Non-Dynamic particles must be constructed with a zero velocity; this is
// checked by Store.Initialise rather than here, since a Particle on
// its own has no species context to consult.
func New(id int, pos, vel Vec3, flags Flags) *Particle {
	return &Particle{ID: id, Pos: pos, Vel: vel, Flags: flags}
}

// IsDynamic reports whether this particle's trajectory integrates in time.
func (p *Particle) IsDynamic() bool { return p.Flags&Dynamic != 0 }

// IsAlive reports whether this particle currently produces events.
func (p *Particle) IsAlive() bool { return p.Flags&Alive != 0 }

// IsSleeping reports whether this particle is frozen at rest.
func (p *Particle) IsSleeping() bool { return p.Flags&Sleeping != 0 }

// SetSleeping sets or clears the Sleeping flag and, since this is a change
// in state that can invalidate any cached prediction that assumed the
// particle moves, bumps the event counter.
func (p *Particle) SetSleeping(sleeping bool) {
	if sleeping {
		p.Flags |= Sleeping
	} else {
		p.Flags &^= Sleeping
	}
	p.touch()
}

// Counter returns the current event-counter value, used by the scheduler to
// stamp predicted events and later detect staleness.
func (p *Particle) Counter() uint64 { return p.counter }

// touch increments the event counter. Called by every liouvillean mutation
// path (stream, execute) — never by callers directly, since the counter
// must track every state change, not just the ones a caller remembers to
// report.
func (p *Particle) touch() { p.counter++ }

// SetPosVel overwrites position and velocity (used by stream and by
// post-event impulse application) and bumps the counter.
func (p *Particle) SetPosVel(pos, vel Vec3) {
	p.Pos = pos
	p.Vel = vel
	p.touch()
}

// SetPeculiarTime records the simulation time at which Pos/Vel became
// valid. Called alongside SetPosVel by the liouvillean's stream operation.
func (p *Particle) SetPeculiarTime(t float64) { p.PeculiarTime = t }

// SetOrientationSpin overwrites orientation and angular velocity for a
// line particle and bumps the counter, mirroring SetPosVel.
func (p *Particle) SetOrientationSpin(orientation, spin Vec3) {
	p.Orientation = orientation
	p.Spin = spin
	p.touch()
}

func (p *Particle) String() string {
	return fmt.Sprintf("particle %d: x=%v v=%v t=%.6g flags=%03b ctr=%d",
		p.ID, p.Pos, p.Vel, p.PeculiarTime, p.Flags, p.counter)
}
