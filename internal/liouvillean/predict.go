package liouvillean

import "math"

// SphereOverlap returns d^2 - |r|^2 for relative position r and interaction
// distance d: positive when the pair already overlaps (used to distinguish
// a genuine future collision from an already-overlapping pair that needs
// the "out" root instead), mirroring the original's sphereOverlap test.
func SphereOverlap(relPos Vec3, d float64) float64 {
	return d*d - relPos.MagSq()
}

// SphereSphereInRoot predicts the smallest positive time at which two
// spheres of radius-sum d, currently separated by relPos = r1-r2 and
// closing at relVel = v1-v2, first touch: the smallest positive root of
// |relPos + relVel*t|^2 = d^2 on the approaching branch (b = relPos.relVel
// < 0). Named for the original SphereSphereInRoot collision predicate.
func SphereSphereInRoot(relPos, relVel Vec3, d float64) (float64, bool) {
	a := relVel.Dot(relVel)
	b := 2 * relPos.Dot(relVel)
	c := relPos.Dot(relPos) - d*d

	if b >= 0 {
		// Separating or stationary: no future in-collision on this branch.
		return 0, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, false
	}
	return SmallestPositiveQuadraticRoot(a, b, c)
}

// SphereSphereOutRoot predicts the smallest positive time at which a pair
// currently within capture range d (e.g. a bonded or captured square-well
// pair) separates back out to distance d — the smallest positive root of
// the same quadratic on the receding branch. Named for the original
// SphereSphereOutRoot.
func SphereSphereOutRoot(relPos, relVel Vec3, d float64) (float64, bool) {
	a := relVel.Dot(relVel)
	b := 2 * relPos.Dot(relVel)
	c := relPos.Dot(relPos) - d*d

	if a == 0 {
		return 0, false
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		// Never reaches distance d: already bound forever along this line.
		return 0, false
	}
	sq := math.Sqrt(disc)
	// The "out" root is the larger of the two — the one after which the
	// separation departs d*d and keeps growing.
	t1 := (-b + sq) / (2 * a)
	t2 := (-b - sq) / (2 * a)
	t := math.Max(t1, t2)
	if t > grazingEpsilon {
		return t, true
	}
	return 0, false
}

// CellFace names the axis-aligned face of a neighbour-cell a particle next
// crosses, used by the Global cell-list virtual events.
type CellFace int

const (
	FaceXMin CellFace = iota
	FaceXMax
	FaceYMin
	FaceYMax
	FaceZMin
	FaceZMax
)

// SquareCellCollisionTime predicts the time and face at which a particle
// streaming with pos/vel under this Liouvillean's law next crosses one of
// the six faces of an axis-aligned cell [min, max]. Named for the
// original's getSquareCellCollision2/3 pair (linear vs. gravity-biased
// streaming).
func (l *Liouvillean) SquareCellCollisionTime(pos, vel Vec3, min, max Vec3) (float64, CellFace, bool) {
	if l.Kind == NewtonianGravity {
		return l.squareCellCollisionGravity(pos, vel, min, max)
	}
	return axisConsiderAll(pos, vel, min, max)
}

// axisCrossing returns the time at which a 1-D linear trajectory pos+vel*t
// reaches target, or false if vel is zero (never reaches it).
func axisCrossing(pos, vel, target float64) (float64, bool) {
	if vel == 0 {
		return 0, false
	}
	return (target - pos) / vel, true
}

func axisConsiderAll(pos, vel, min, max Vec3) (float64, CellFace, bool) {
	best := math.Inf(1)
	bestFace := FaceXMin
	found := false

	t, ok := axisCrossing(pos.X, vel.X, min.X)
	if ok && vel.X < 0 && t > grazingEpsilon && t < best {
		best, bestFace, found = t, FaceXMin, true
	}
	t, ok = axisCrossing(pos.X, vel.X, max.X)
	if ok && vel.X > 0 && t > grazingEpsilon && t < best {
		best, bestFace, found = t, FaceXMax, true
	}
	t, ok = axisCrossing(pos.Y, vel.Y, min.Y)
	if ok && vel.Y < 0 && t > grazingEpsilon && t < best {
		best, bestFace, found = t, FaceYMin, true
	}
	t, ok = axisCrossing(pos.Y, vel.Y, max.Y)
	if ok && vel.Y > 0 && t > grazingEpsilon && t < best {
		best, bestFace, found = t, FaceYMax, true
	}
	t, ok = axisCrossing(pos.Z, vel.Z, min.Z)
	if ok && vel.Z < 0 && t > grazingEpsilon && t < best {
		best, bestFace, found = t, FaceZMin, true
	}
	t, ok = axisCrossing(pos.Z, vel.Z, max.Z)
	if ok && vel.Z > 0 && t > grazingEpsilon && t < best {
		best, bestFace, found = t, FaceZMax, true
	}
	return best, bestFace, found
}

// squareCellCollisionGravity handles the cubic (gravity-biased) cell-face
// crossing: each axis's position is a quadratic in t, so the crossing time
// solves a quadratic per face — still closed-form, no bracketing needed,
// but kept as a distinct entry point mirroring the original's split between
// getSquareCellCollision2 (linear) and getSquareCellCollision3 (gravity).
func (l *Liouvillean) squareCellCollisionGravity(pos, vel Vec3, min, max Vec3) (float64, CellFace, bool) {
	best := math.Inf(1)
	bestFace := FaceXMin
	found := false

	type axisFace struct {
		p, v, g, target float64
		face CellFace
		wantSign float64 // require v-at-impact consistent with approaching target
	}
	axes := []axisFace{
		{pos.X, vel.X, l.Gravity.X, min.X, FaceXMin, -1},
		{pos.X, vel.X, l.Gravity.X, max.X, FaceXMax, 1},
		{pos.Y, vel.Y, l.Gravity.Y, min.Y, FaceYMin, -1},
		{pos.Y, vel.Y, l.Gravity.Y, max.Y, FaceYMax, 1},
		{pos.Z, vel.Z, l.Gravity.Z, min.Z, FaceZMin, -1},
		{pos.Z, vel.Z, l.Gravity.Z, max.Z, FaceZMax, 1},
	}

	for _, ax := range axes {
		// 0.5*g*t^2 + v*t + (p-target) = 0
		a := 0.5 * ax.g
		b := ax.v
		c := ax.p - ax.target
		t, ok := SmallestPositiveQuadraticRoot(a, b, c)
		if !ok {
			continue
		}
		if (ax.v+ax.g*t)*ax.wantSign < 0 {
			continue
		}
		if t < best {
			best, bestFace, found = t, ax.face, true
		}
	}
	return best, bestFace, found
}

// WallCollision predicts the time at which a particle streaming under this
// Liouvillean's law reaches a planar wall with unit outward Normal and
// scalar offset Position (the plane satisfies x.Normal == Position).
// Named for the original's getWallCollision.
func (l *Liouvillean) WallCollision(pos, vel Vec3, normal Vec3, position float64) (float64, bool) {
	pn := pos.Dot(normal) - position
	vn := vel.Dot(normal)

	if l.Kind != NewtonianGravity {
		if vn == 0 {
			return 0, false
		}
		t := -pn / vn
		if t > grazingEpsilon {
			return t, true
		}
		return 0, false
	}

	gn := l.Gravity.Dot(normal)
	return SmallestPositiveQuadraticRoot(0.5*gn, vn, pn)
}

// LineLineCollision predicts the contact time of two finite oriented line
// segments (length len1, len2) given their relative centre position and
// velocity and each segment's orientation unit vector and angular velocity.
// The contact-point trajectory is advanced to second order in t (linear
// velocity plus each end's centripetal term from its spin), making the
// touching condition |relPos(t)|^2 == d^2 a genuine quartic in t, whose
// smallest root in (0, horizon] is found by SmallestPositiveRoot (value
// sign-change bracketing on a uniform grid, then Newton/bisection polish).
func LineLineCollision(relPos, relVel Vec3, u1, w1, u2, w2 Vec3, len1, len2, horizon float64) (float64, bool) {
	// First-order angular velocity contribution to each end's linear
	// velocity: d/dt (0.5*len*u) = 0.5*len*(w x u).
	v1 := w1.Cross(u1).SMul(0.5 * len1)
	v2 := w2.Cross(u2).SMul(0.5 * len2)
	effRelVel := relVel.Add(v1).Sub(v2)

	// Second-order (centripetal) contribution: d/dt v = w x v for a point
	// rotating at constant angular velocity w.
	a1 := w1.Cross(v1)
	a2 := w2.Cross(v2)
	accel := a1.Sub(a2).SMul(0.5)

	d := 0.5 * (len1 + len2)

	// relPos(t) = relPos + effRelVel*t + accel*t^2; |relPos(t)|^2 - d^2 = 0
	// expands to a quartic in t.
	c0 := relPos.Dot(relPos) - d*d
	c1 := 2 * relPos.Dot(effRelVel)
	c2 := effRelVel.Dot(effRelVel) + 2*relPos.Dot(accel)
	c3 := 2 * effRelVel.Dot(accel)
	c4 := accel.Dot(accel)

	coeffs := []float64{c0, c1, c2, c3, c4}
	return SmallestPositiveRoot(coeffs, horizon, 128)
}
