// Package local implements single-particle events against fixed or
// time-dependent geometry that isn't itself a simulated particle — walls,
// double-walls (channels), cylinders and an oscillating plate.
//
// Grounded on the same tagged-variant-behind-a-small-interface pattern as
// boundary.Condition and interaction.Range.
package local

import (
	"math"

	"github.com/dynamo-sim/dynamo/internal/liouvillean"
	"github.com/dynamo-sim/dynamo/internal/particle"
	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

type Vec3 = vecmath.Vec3

// Local is one entry of the local-event list: a piece of fixed or moving
// geometry a subset of particles can collide with.
type Local interface {
	// AppliesTo reports whether this Local governs the given particle ID.
	AppliesTo(id int) bool
	// Predict returns the time at which p next collides with this Local,
	// given the current simulation time now (needed for time-dependent
	// geometry like OscillatingPlate).
	Predict(p *particle.Particle, liou *liouvillean.Liouvillean, now, horizon float64) (float64, bool)
	// Execute resolves the collision, mutating p's velocity in place via
	// particle.Particle's counter-bumping setters.
	Execute(p *particle.Particle, liou *liouvillean.Liouvillean, now float64)
	Name() string
}

// IDRange is the simplest particle-membership predicate a Local needs: a
// closed ID interval, or the zero value (Min==Max==0 with Universal set)
// for "every particle".
type IDRange struct {
	Min, Max int
	Universal bool
}

// All returns an IDRange matching every particle.
func All() IDRange { return IDRange{Universal: true} }

func (r IDRange) Contains(id int) bool {
	if r.Universal {
		return true
	}
	return id >= r.Min && id <= r.Max
}

// Wall is a fixed planar wall: particles reflect specularly off it.
// Grounded on the original's getWallCollision/runWallCollision pair.
type Wall struct {
	Members IDRange
	Normal Vec3
	Position float64
}

func (w Wall) AppliesTo(id int) bool { return w.Members.Contains(id) }
func (w Wall) Name() string { return "Wall" }

func (w Wall) Predict(p *particle.Particle, liou *liouvillean.Liouvillean, now, horizon float64) (float64, bool) {
	return liou.WallCollision(p.Pos, p.Vel, w.Normal, w.Position)
}

func (w Wall) Execute(p *particle.Particle, liou *liouvillean.Liouvillean, now float64) {
	p.SetPosVel(p.Pos, liouvillean.WallCollisionEvent(p.Vel, w.Normal))
}

// DoubleWall bounds a channel between two parallel walls sharing a normal,
// at PositionA and PositionB. Predict picks whichever face is struck
// first; Execute is a specular reflection in either case.
type DoubleWall struct {
	Members IDRange
	Normal Vec3
	PositionA, PositionB float64
}

func (d DoubleWall) AppliesTo(id int) bool { return d.Members.Contains(id) }
func (d DoubleWall) Name() string { return "DoubleWall" }

func (d DoubleWall) Predict(p *particle.Particle, liou *liouvillean.Liouvillean, now, horizon float64) (float64, bool) {
	tA, okA := liou.WallCollision(p.Pos, p.Vel, d.Normal, d.PositionA)
	tB, okB := liou.WallCollision(p.Pos, p.Vel, d.Normal, d.PositionB)
	switch {
	case okA && okB:
		return math.Min(tA, tB), true
	case okA:
		return tA, true
	case okB:
		return tB, true
	default:
		return 0, false
	}
}

func (d DoubleWall) Execute(p *particle.Particle, liou *liouvillean.Liouvillean, now float64) {
	p.SetPosVel(p.Pos, liouvillean.WallCollisionEvent(p.Vel, d.Normal))
}

// Cylinder is an infinite cylindrical wall of given Radius about Axis
// (unit vector) through Center, confining particles radially (e.g. a pore
// or tube). Predict reduces the 3-D trajectory to its component
// perpendicular to Axis and solves |rel + vel*t| = Radius for the smallest
// positive t, whether the particle is moving toward or away from the axis.
type Cylinder struct {
	Members IDRange
	Axis Vec3
	Center Vec3
	Radius float64
}

func (c Cylinder) AppliesTo(id int) bool { return c.Members.Contains(id) }
func (c Cylinder) Name() string { return "Cylinder" }

// perp projects v onto the plane perpendicular to the (unit) axis.
func perp(v, axis Vec3) Vec3 {
	return v.Sub(axis.SMul(v.Dot(axis)))
}

func (c Cylinder) Predict(p *particle.Particle, liou *liouvillean.Liouvillean, now, horizon float64) (float64, bool) {
	rel := perp(p.Pos.Sub(c.Center), c.Axis)
	vel := perp(p.Vel, c.Axis)
	a := vel.Dot(vel)
	b := 2 * rel.Dot(vel)
	cc := rel.Dot(rel) - c.Radius*c.Radius
	return liouvillean.SmallestPositiveQuadraticRoot(a, b, cc)
}

func (c Cylinder) Execute(p *particle.Particle, liou *liouvillean.Liouvillean, now float64) {
	rel := perp(p.Pos.Sub(c.Center), c.Axis)
	normal := rel.Normalized()
	vn := p.Vel.Dot(normal)
	p.SetPosVel(p.Pos, p.Vel.Sub(normal.SMul(2*vn)))
}

// OscillatingPlate is a planar wall whose offset along Normal varies as
// Position0 + Amplitude*sin(Frequency*t + Phase): a driven boundary used to
// do mechanical work on the fluid (e.g. shear- or sound-wave-driving
// experiments). Because the wall's position is not polynomial in t, its
// collision time is found by the same bracket-then-bisect approach
// SmallestPositiveRoot uses for polynomials, applied directly to the
// transcendental gap function instead.
type OscillatingPlate struct {
	Members IDRange
	Normal Vec3
	Position0, Amplitude float64
	Frequency, Phase float64
}

func (o OscillatingPlate) AppliesTo(id int) bool { return o.Members.Contains(id) }
func (o OscillatingPlate) Name() string { return "OscillatingPlate" }

func (o OscillatingPlate) platePosition(t float64) float64 {
	return o.Position0 + o.Amplitude*math.Sin(o.Frequency*t+o.Phase)
}

func (o OscillatingPlate) plateVelocity(t float64) float64 {
	return o.Amplitude * o.Frequency * math.Cos(o.Frequency*t+o.Phase)
}

func (o OscillatingPlate) Predict(p *particle.Particle, liou *liouvillean.Liouvillean, now, horizon float64) (float64, bool) {
	gap := func(dt float64) float64 {
		return p.Pos.Add(p.Vel.SMul(dt)).Dot(o.Normal) - o.platePosition(now+dt)
	}
	return bracketAndBisect(gap, horizon, 256)
}

func (o OscillatingPlate) Execute(p *particle.Particle, liou *liouvillean.Liouvillean, now float64) {
	plateVel := o.Normal.SMul(o.plateVelocity(now))
	relVel := p.Vel.Sub(plateVel)
	vn := relVel.Dot(o.Normal)
	newVel := p.Vel.Sub(o.Normal.SMul(2 * vn))
	p.SetPosVel(p.Pos, newVel)
}

const localGrazingEpsilon = 1e-10

// bracketAndBisect finds the smallest t in (0, horizon] at which f changes
// sign, then bisects to a tight tolerance — the same two-phase strategy
// liouvillean.SmallestPositiveRoot uses, generalised to an arbitrary
// (non-polynomial) function since OscillatingPlate's gap isn't one.
func bracketAndBisect(f func(float64) float64, horizon float64, samples int) (float64, bool) {
	step := horizon / float64(samples)
	prevT := 0.0
	prevVal := f(0)

	for i := 1; i <= samples; i++ {
		t := float64(i) * step
		val := f(t)

		if prevVal == 0 && prevT > localGrazingEpsilon {
			return prevT, true
		}
		if (prevVal > 0) == (val > 0) {
			prevT, prevVal = t, val
			continue
		}

		lo, hi := prevT, t
		for iter := 0; iter < 60; iter++ {
			mid := 0.5 * (lo + hi)
			v := f(mid)
			if (v > 0) == (prevVal > 0) {
				lo = mid
			} else {
				hi = mid
			}
		}
		root := 0.5 * (lo + hi)
		if root > localGrazingEpsilon {
			return root, true
		}
		prevT, prevVal = t, val
	}
	return 0, false
}
