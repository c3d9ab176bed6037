package liouvillean

import (
	"math"

	"github.com/dynamo-sim/dynamo/internal/vecmath"
)

// Rand is the PRNG capability the thermal-wall and thermostat resolvers
// need, re-exported from vecmath so callers don't need a second import.
type Rand = vecmath.Rand

// MaxwellBoltzmann re-exports vecmath.MaxwellBoltzmann for callers already
// importing this package for event resolution.
func MaxwellBoltzmann(r Rand, mass, temperature float64) Vec3 {
	return vecmath.MaxwellBoltzmann(r, mass, temperature)
}

// SmoothSphereCollision resolves an elastic/inelastic hard-sphere collision
// between two particles of mass m1, m2, given their relative position
// relPos = pos1-pos2 at contact and relative velocity relVel = vel1-vel2,
// with normal restitution coefficient e (1 = elastic). Returns the momentum
// impulse on particle 1 (ApplyImpulse adds impulse/m1 to particle 1's
// velocity and subtracts impulse/m2 from particle 2's), following the
// original's SmoothSpheresColl: impulse along
// the line of centres, magnitude set by requiring the post-collision normal
// relative velocity to be -e times the pre-collision one.
func SmoothSphereCollision(relPos, relVel Vec3, m1, m2, e float64) Vec3 {
	n := relPos.Normalized()
	vn := relVel.Dot(n)
	if vn >= 0 {
		// Already separating: nothing to resolve (caller should not have
		// scheduled this as a collision, but stay inert rather than inject
		// energy if it happens).
		return Vec3{}
	}
	reducedMass := m1 * m2 / (m1 + m2)
	impulse := -(1 + e) * vn * reducedMass
	return n.SMul(impulse)
}

// ApplyImpulse returns the post-collision velocities for particle 1 (mass
// m1) and particle 2 (mass m2) given the impulse computed by
// SmoothSphereCollision (or any other event resolver in this file), per the
// standard equal-and-opposite momentum exchange.
func ApplyImpulse(vel1, vel2 Vec3, impulse Vec3, m1, m2 float64) (Vec3, Vec3) {
	return vel1.Add(impulse.SMul(1 / m1)), vel2.Sub(impulse.SMul(1 / m2))
}

// WellEventKind distinguishes the three square-well/shoulder transitions a
// SquareWellEvent can resolve.
type WellEventKind int

const (
	WellCapture WellEventKind = iota
	WellRelease
	WellBounce
)

// SquareWellEvent resolves a square-well/shoulder transition at the well
// boundary (relative separation == wellWidth*coreDiameter). depthChange is
// the well-depth drop crossed in the direction of travel (positive when
// moving into a deeper well, i.e. capture; negative for release). Returns
// the kind of transition that actually occurred (capture/release may turn
// into a bounce if there isn't enough normal kinetic energy to complete the
// transition) and the momentum impulse to pass to ApplyImpulse, mirroring
// the original's SphereWellEvent three-way branch.
func SquareWellEvent(relPos, relVel Vec3, m1, m2, depthChange float64) (WellEventKind, Vec3) {
	n := relPos.Normalized()
	vn := relVel.Dot(n)
	reducedMass := m1 * m2 / (m1 + m2)

	// Normal KE available along the line of centres (unsigned; whether this
	// is a capture or a release attempt comes from depthChange's sign).
	normalKE := 0.5 * reducedMass * vn * vn

	if depthChange > 0 {
		// Capture attempt: energy is released, always succeeds, speeding
		// the pair up along the normal.
		deltaKE := depthChange
		newVnSq := vn*vn + 2*deltaKE/reducedMass
		newVn := math.Copysign(math.Sqrt(newVnSq), vn)
		impulse := n.SMul(reducedMass * (newVn - vn))
		return WellCapture, impulse
	}

	required := -depthChange // energy needed to climb out
	if normalKE < required {
		// Not enough normal KE to escape the well: bounce elastically off
		// the inner wall instead.
		impulse := n.SMul(-2 * reducedMass * vn)
		return WellBounce, impulse
	}

	newVnSq := vn*vn - 2*required/reducedMass
	newVn := math.Copysign(math.Sqrt(math.Max(newVnSq, 0)), vn)
	impulse := n.SMul(reducedMass * (newVn - vn))
	return WellRelease, impulse
}

// SteppedPotentialEvent resolves a transition across one shell of a
// multi-step potential, generalising SquareWellEvent to an arbitrary energy
// jump (positive = falling to lower energy, negative = climbing): identical
// physics, kept as a distinct named entry point because the original keeps
// square-well and the general stepped potential as separate interaction
// types with separate event-resolution entry points.
func SteppedPotentialEvent(relPos, relVel Vec3, m1, m2, energyJump float64) (WellEventKind, Vec3) {
	return SquareWellEvent(relPos, relVel, m1, m2, energyJump)
}

// HardCoreBondEvent resolves a collision at a hard-core bond's inner
// (repulsive) shell: always an elastic bounce, since a bond's inner
// diameter cannot be penetrated regardless of available energy.
func HardCoreBondEvent(relPos, relVel Vec3, m1, m2 float64) Vec3 {
	return SmoothSphereCollision(relPos, relVel, m1, m2, 1.0)
}

// OrientedLineCollision resolves a collision between two finite oriented
// line segments at their contact point, given the contact normal (computed
// by the caller from the geometry at the predicted contact time), the
// relative velocity at the contact point (translational plus each line's
// spin contribution, as used to build the quartic in LineLineCollision),
// and each line's mass and moment of inertia about its centre. Returns the
// linear impulse (applied at the contact point) and each line's angular
// impulse about its own centre, following the original's line-line
// restitution model: impulse along the contact normal sized to invert the
// normal component of the contact-point relative velocity, apportioned
// between translation and rotation by the standard rigid-body collision
// formula.
func OrientedLineCollision(normal, contactRelVel Vec3, offset1, offset2 Vec3, m1, m2, inertia1, inertia2, e float64) (impulse Vec3, angImpulse1, angImpulse2 Vec3) {
	vn := contactRelVel.Dot(normal)
	if vn >= 0 {
		return Vec3{}, Vec3{}, Vec3{}
	}

	// Effective inverse mass along the normal, including each line's
	// rotational contribution: 1/m1 + 1/m2 + (r1 x n)^2/I1 + (r2 x n)^2/I2.
	r1xn := offset1.Cross(normal)
	r2xn := offset2.Cross(normal)
	kEff := 1/m1 + 1/m2 + r1xn.Dot(r1xn)/inertia1 + r2xn.Dot(r2xn)/inertia2

	j := -(1 + e) * vn / kEff
	impulse = normal.SMul(j)
	angImpulse1 = offset1.Cross(impulse)
	angImpulse2 = offset2.Cross(impulse).Neg()
	return impulse, angImpulse1, angImpulse2
}

// WallCollisionEvent resolves an elastic collision of a particle against a
// fixed planar wall with unit Normal: specular reflection of the normal
// velocity component, per the original's runWallCollision.
func WallCollisionEvent(vel, normal Vec3) Vec3 {
	vn := vel.Dot(normal)
	return vel.Sub(normal.SMul(2 * vn))
}

// AndersenWallCollisionEvent resolves a stochastic thermal-wall collision
// (the original's runAndersenWallCollision): instead of specular
// reflection, the outgoing velocity is redrawn from the wall's local
// Maxwell-Boltzmann distribution at temperature temp, with the normal
// component resampled from the flux-weighted (Rayleigh) distribution so
// particles are never reflected back into the wall.
func AndersenWallCollisionEvent(r Rand, normal Vec3, mass, temp float64) Vec3 {
	tangentBasis1, tangentBasis2 := orthonormalBasis(normal)
	sigma := math.Sqrt(temp / mass)

	vt1 := r.NormFloat64() * sigma
	vt2 := r.NormFloat64() * sigma
	// Flux-weighted normal speed: sigma*sqrt(-2*ln(u)) for u uniform(0,1),
	// directed outward along normal.
	u := r.Float64()
	if u <= 0 {
		u = 1e-300
	}
	vn := sigma * math.Sqrt(-2*math.Log(u))

	return normal.SMul(vn).Add(tangentBasis1.SMul(vt1)).Add(tangentBasis2.SMul(vt2))
}

// RandomGaussianEvent redraws a particle's velocity entirely from the
// Maxwell-Boltzmann distribution at the given temperature — the Andersen
// thermostat's bulk resampling event, named for the original's
// randomGaussianEvent.
func RandomGaussianEvent(r Rand, mass, temp float64) Vec3 {
	return MaxwellBoltzmann(r, mass, temp)
}

// orthonormalBasis returns two unit vectors perpendicular to n and to each
// other, completing a right-handed frame with n.
func orthonormalBasis(n Vec3) (Vec3, Vec3) {
	var ref Vec3
	if math.Abs(n.X) < 0.9 {
		ref = Vec3{X: 1}
	} else {
		ref = Vec3{Y: 1}
	}
	t1 := n.Cross(ref).Normalized()
	t2 := n.Cross(t1)
	return t1, t2
}

// TCModelGraze reports whether a pair's collision at simulation time `now`
// should be demoted to a grazing (no-op) event under the tc-model: true
// when the pair's last genuine collision was within tc time units of now,
// the mitigation the original applies to stop inelastic collapse from
// driving the event rate to infinity.
func TCModelGraze(tc, now, lastCollisionTime float64) bool {
	if tc <= 0 {
		return false
	}
	return now-lastCollisionTime < tc
}
