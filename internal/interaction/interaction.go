package interaction

import (
	"fmt"
	"math"

	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// Kind tags the shape of pair potential an Interaction implements.
type Kind int

const (
	HardSphere Kind = iota
	SquareWell
	SquareShoulder
	SquareBond
	Stepped
	Lines
	ParallelCubes
	Null
)

func (k Kind) String() string {
	switch k {
	case HardSphere:
		return "HardSphere"
	case SquareWell:
		return "SquareWell"
	case SquareShoulder:
		return "SquareShoulder"
	case SquareBond:
		return "SquareBond"
	case Stepped:
		return "Stepped"
	case Lines:
		return "Lines"
	case ParallelCubes:
		return "ParallelCubes"
	case Null:
		return "Null"
	default:
		return "Unknown"
	}
}

// Step is one shell of a Stepped potential: the distance at which the
// energy jumps to Energy as the pair moves inward across it.
type Step struct {
	Distance float64
	Energy float64
}

// Interaction is one entry of the ordered interaction list:
// it names the potential shape, the particle-pair range it applies to, and
// the shape parameters that potential needs. The system dispatches a pair
// to the first Interaction in the list whose Range contains it, mirroring
// the original's first-match-wins interaction-list lookup.
type Interaction struct {
	Name string
	Kind Kind
	Range Range

	// Diameter is the core (innermost, hard) distance for every kind:
	// sphere diameter for HardSphere/SquareWell/SquareShoulder, bond inner
	// diameter for SquareBond, line length for Lines, cube side for
	// ParallelCubes.
	Diameter float64

	// OuterDiameter is the well/shoulder/bond outer distance. Unused by
	// HardSphere, Lines, ParallelCubes and Null.
	OuterDiameter float64

	// WellDepth is the magnitude of the energy step at OuterDiameter, given
	// as a positive number for both kinds: released moving inward for
	// SquareWell, absorbed moving inward for SquareShoulder (Execute applies
	// the sign from Kind). Unused by SquareBond (whose shells are both hard),
	// Lines, ParallelCubes and Null.
	WellDepth float64

	// Steps is the ordered (outermost first) shell list for Stepped,
	// unused otherwise.
	Steps []Step
}

// AppliesTo reports whether this Interaction governs the pair (i, j).
func (in *Interaction) AppliesTo(i, j int) bool {
	if in.Range == nil {
		return false
	}
	return in.Range.Contains(i, j)
}

// List is the ordered interaction list a System dispatches pair events
// through: first Range match wins, per the original's interaction lookup.
type List []*Interaction

// For returns the first Interaction in the list whose Range contains (i,
// j), or nil if none matches (an unmatched pair never interacts).
func (l List) For(i, j int) *Interaction {
	for _, in := range l {
		if in.AppliesTo(i, j) {
			return in
		}
	}
	return nil
}

// EventKind tags what a predicted pair event actually is, so Execute knows
// which resolver in package liouvillean to invoke.
type EventKind int

const (
	EventCoreCollision EventKind = iota
	EventWellCapture
	EventWellRelease
	EventStepInward
	EventStepOutward
	EventLineContact
	EventNone
)

// Predict returns the time of the next event between particles i and j
// under this Interaction, the separation vector at prediction time (so
// Execute doesn't need to re-derive it from possibly-stale positions), and
// what kind of event it is. ok is false if no event is predicted (e.g. a
// receding uncaptured pair under a purely repulsive potential). horizon
// bounds the root search only for Lines; every other kind returns its
// analytic root even when it lies beyond horizon.
func (in *Interaction) Predict(store *particle.Store, capture *CaptureStore, i, j int, horizon float64) (t float64, kind EventKind, ok bool) {
	pi, pj := store.Get(i), store.Get(j)
	relPos := pi.Pos.Sub(pj.Pos)
	relVel := pi.Vel.Sub(pj.Vel)

	switch in.Kind {
	case HardSphere:
		t, ok = liouvillean.SphereSphereInRoot(relPos, relVel, in.Diameter)
		return t, EventCoreCollision, ok

	case SquareWell, SquareShoulder:
		shell, captured := capture.Shell(i, j)
		if captured && shell == 0 {
			tIn, inOk := liouvillean.SphereSphereInRoot(relPos, relVel, in.Diameter)
			tOut, outOk := liouvillean.SphereSphereOutRoot(relPos, relVel, in.OuterDiameter)
			switch {
			case inOk && outOk:
				if tIn < tOut {
					return tIn, EventCoreCollision, true
				}
				return tOut, EventWellRelease, true
			case inOk:
				return tIn, EventCoreCollision, true
			case outOk:
				return tOut, EventWellRelease, true
			default:
				return 0, EventNone, false
			}
		}
		t, ok = liouvillean.SphereSphereInRoot(relPos, relVel, in.OuterDiameter)
		return t, EventWellCapture, ok

	case SquareBond:
		tIn, inOk := liouvillean.SphereSphereInRoot(relPos, relVel, in.Diameter)
		tOut, outOk := liouvillean.SphereSphereInRoot(relPos, relVel, in.OuterDiameter)
		switch {
		case inOk && outOk:
			if tIn < tOut {
				return tIn, EventCoreCollision, true
			}
			return tOut, EventCoreCollision, true
		case inOk:
			return tIn, EventCoreCollision, true
		case outOk:
			return tOut, EventCoreCollision, true
		default:
			return 0, EventNone, false
		}

	case Stepped:
		// cur counts how many shell boundaries have been crossed inward so
		// far: 0 means unbound (outside Steps[0], the outermost boundary),
		// len(Steps) means inside the innermost shell. Stored in the
		// capture map only when nonzero.
		cur := 0
		if shell, captured := capture.Shell(i, j); captured {
			cur = shell
		}
		var tInward, tOutward float64
		var inOk, outOk bool
		if cur < len(in.Steps) {
			tInward, inOk = liouvillean.SphereSphereInRoot(relPos, relVel, in.Steps[cur].Distance)
		}
		if cur > 0 {
			tOutward, outOk = liouvillean.SphereSphereOutRoot(relPos, relVel, in.Steps[cur-1].Distance)
		}
		switch {
		case inOk && outOk:
			if tInward < tOutward {
				return tInward, EventStepInward, true
			}
			return tOutward, EventStepOutward, true
		case inOk:
			return tInward, EventStepInward, true
		case outOk:
			return tOutward, EventStepOutward, true
		default:
			return 0, EventNone, false
		}

	case Lines:
		t, ok = liouvillean.LineLineCollision(relPos, relVel, pi.Orientation, pi.Spin, pj.Orientation, pj.Spin, in.Diameter, in.Diameter, horizon)
		return t, EventLineContact, ok

	case ParallelCubes:
		t, ok = cubeCubeRoot(relPos, relVel, in.Diameter)
		return t, EventCoreCollision, ok

	case Null:
		return 0, EventNone, false

	default:
		panic(fmt.Sprintf("interaction: unhandled kind %v", in.Kind))
	}
}

// Execute applies the momentum change for a predicted event of the given
// kind between particles i and j, and updates capture state where the
// event kind requires it. Masses come from each particle's owning species.
func (in *Interaction) Execute(store *particle.Store, capture *CaptureStore, i, j int, kind EventKind) {
	pi, pj := store.Get(i), store.Get(j)
	mi := store.SpeciesOf(i).Mass(i)
	mj := store.SpeciesOf(j).Mass(j)
	relPos := pi.Pos.Sub(pj.Pos)
	relVel := pi.Vel.Sub(pj.Vel)

	var impulse Vec3
	switch in.Kind {
	case HardSphere:
		impulse = liouvillean.SmoothSphereCollision(relPos, relVel, mi, mj, 1.0)

	case SquareWell, SquareShoulder:
		switch kind {
		case EventWellCapture:
			sign := 1.0
			if in.Kind == SquareShoulder {
				sign = -1.0
			}
			var wellKind liouvillean.WellEventKind
			wellKind, impulse = liouvillean.SquareWellEvent(relPos, relVel, mi, mj, sign*in.WellDepth)
			if wellKind == liouvillean.WellCapture {
				capture.Capture(i, j, 0)
			}
		case EventCoreCollision:
			impulse = liouvillean.SmoothSphereCollision(relPos, relVel, mi, mj, 1.0)
		case EventWellRelease:
			sign := -1.0
			if in.Kind == SquareShoulder {
				sign = 1.0
			}
			var wellKind liouvillean.WellEventKind
			wellKind, impulse = liouvillean.SquareWellEvent(relPos, relVel, mi, mj, sign*in.WellDepth)
			if wellKind == liouvillean.WellRelease {
				capture.Release(i, j)
			}
		}

	case SquareBond:
		impulse = liouvillean.HardCoreBondEvent(relPos, relVel, mi, mj)

	case Stepped:
		cur := 0
		if shell, captured := capture.Shell(i, j); captured {
			cur = shell
		}
		switch kind {
		case EventStepInward:
			// Crossing boundary Steps[cur] inward: energy drops from the
			// previous shell's level (0 if unbound) to Steps[cur].Energy.
			prevEnergy := 0.0
			if cur > 0 {
				prevEnergy = in.Steps[cur-1].Energy
			}
			jump := prevEnergy - in.Steps[cur].Energy
			var wellKind liouvillean.WellEventKind
			wellKind, impulse = liouvillean.SteppedPotentialEvent(relPos, relVel, mi, mj, jump)
			if wellKind != liouvillean.WellBounce {
				capture.Capture(i, j, cur+1)
			}
		case EventStepOutward:
			// Crossing boundary Steps[cur-1] outward: climbing from
			// Steps[cur-1].Energy back to the shell beyond it (0 if that
			// takes the pair fully unbound).
			boundary := cur - 1
			prevEnergy := 0.0
			if boundary > 0 {
				prevEnergy = in.Steps[boundary-1].Energy
			}
			jump := in.Steps[boundary].Energy - prevEnergy
			var wellKind liouvillean.WellEventKind
			wellKind, impulse = liouvillean.SteppedPotentialEvent(relPos, relVel, mi, mj, jump)
			if wellKind != liouvillean.WellBounce {
				if boundary == 0 {
					capture.Release(i, j)
				} else {
					capture.Capture(i, j, boundary)
				}
			}
		}

	case ParallelCubes:
		impulse = liouvillean.SmoothSphereCollision(relPos, relVel, mi, mj, 1.0)

	case Lines:
		normal := relPos.Normalized()
		offset1 := pi.Orientation.SMul(0.5 * in.Diameter)
		offset2 := pj.Orientation.SMul(-0.5 * in.Diameter)
		contactVel := relVel
		var ang1, ang2 Vec3
		impulse, ang1, ang2 = liouvillean.OrientedLineCollision(normal, contactVel, offset1, offset2, mi, mj, mi*in.Diameter*in.Diameter/12, mj*in.Diameter*in.Diameter/12, 1.0)
		v1, v2 := liouvillean.ApplyImpulse(pi.Vel, pj.Vel, impulse, mi, mj)
		pi.SetPosVel(pi.Pos, v1)
		pj.SetPosVel(pj.Pos, v2)
		pi.SetOrientationSpin(pi.Orientation, pi.Spin.Add(ang1.SMul(1/(mi*in.Diameter*in.Diameter/12))))
		pj.SetOrientationSpin(pj.Orientation, pj.Spin.Add(ang2.SMul(1/(mj*in.Diameter*in.Diameter/12))))
		return

	case Null:
		return
	}

	v1, v2 := liouvillean.ApplyImpulse(pi.Vel, pj.Vel, impulse, mi, mj)
	pi.SetPosVel(pi.Pos, v1)
	pj.SetPosVel(pj.Pos, v2)
}

// cubeCubeRoot predicts the time at which two axis-aligned cubes of side s
// (parallel, non-rotating) first overlap on every axis simultaneously: the
// AABB-overlap analogue of SphereSphereInRoot. Per axis the cubes overlap
// while |relPos| < side; the pair collides at the latest of the three
// per-axis "entry" times, provided that time precedes every axis's "exit"
// time (otherwise the axes are never simultaneously overlapping and there
// is no collision).
func cubeCubeRoot(relPos, relVel Vec3, side float64) (float64, bool) {
	axes := [3]struct{ p, v float64 }{
		{relPos.X, relVel.X}, {relPos.Y, relVel.Y}, {relPos.Z, relVel.Z},
	}

	entry, exit := 0.0, math.Inf(1)
	for _, ax := range axes {
		if ax.v == 0 {
			if abs(ax.p) >= side {
				return 0, false // parallel on this axis and already clear: never overlaps
			}
			continue
		}
		lo := (-side - ax.p) / ax.v
		hi := (side - ax.p) / ax.v
		if lo > hi {
			lo, hi = hi, lo
		}
		if lo > entry {
			entry = lo
		}
		if hi < exit {
			exit = hi
		}
	}

	if entry > grazingLikeEpsilon && entry < exit {
		return entry, true
	}
	return 0, false
}

const grazingLikeEpsilon = 1e-10

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
