// Package boundary implements the simulation box boundary conditions:
// minimum-image distance, periodic wrap and Lees-Edwards shear.
// Grounded on the same tagged-variant-behind-a-small-interface pattern the
// teacher uses for pso.Topology (Size/Tick/BestNeighbor) and pso.FitnessFunction:
// one interface, several concrete structs, no class hierarchy.
package boundary

import "github.com/dynamo-sim/dynamo/internal/vecmath"

type Vec3 = vecmath.Vec3

// Condition is the shared capability every boundary-condition variant
// exposes: wrapping a position (and, where velocity depends on the shift,
// a velocity) back into the primary cell, and advancing any internal
// shear state in time.
type Condition interface {
	// Apply wraps pos into the primary cell.
	Apply(pos Vec3) Vec3
	// ApplyVel wraps pos and adjusts vel for any boundary-velocity term
	// (nonzero only under Lees-Edwards, when the y-image index changes).
	ApplyVel(pos, vel Vec3) (Vec3, Vec3)
	// MinimumImage returns the minimum-image separation vector dx = a-b,
	// already shifted to lie within [-L/2, L/2) on every periodic axis.
	MinimumImage(a, b Vec3) Vec3
	// Stream advances any time-dependent boundary state (the sheared
	// image lattice) by dt. A no-op for all but LeesEdwards.
	Stream(dt float64)
	// Name identifies the variant, used by config serialization.
	Name() string
}

// None is the unbounded condition: no wrapping, no minimum image.
type None struct{}

func (None) Apply(pos Vec3) Vec3 { return pos }
func (None) ApplyVel(pos, vel Vec3) (Vec3, Vec3) { return pos, vel }
func (None) MinimumImage(a, b Vec3) Vec3 { return a.Sub(b) }
func (None) Stream(dt float64) {}
func (None) Name() string { return "None" }

// Periodic wraps all three axes by the box dimensions.
type Periodic struct {
	Box Vec3
}

func wrapAxis(v, box float64) float64 {
	if box <= 0 {
		return v
	}
	n := round(v / box)
	return v - n*box
}

func round(x float64) float64 {
	if x >= 0 {
		return float64(int64(x + 0.5))
	}
	return float64(int64(x - 0.5))
}

func (p Periodic) Apply(pos Vec3) Vec3 {
	return Vec3{
		X: wrapAxis(pos.X, p.Box.X),
		Y: wrapAxis(pos.Y, p.Box.Y),
		Z: wrapAxis(pos.Z, p.Box.Z),
	}
}

func (p Periodic) ApplyVel(pos, vel Vec3) (Vec3, Vec3) { return p.Apply(pos), vel }

func (p Periodic) MinimumImage(a, b Vec3) Vec3 {
	d := a.Sub(b)
	return Vec3{
		X: wrapAxis(d.X, p.Box.X),
		Y: wrapAxis(d.Y, p.Box.Y),
		Z: wrapAxis(d.Z, p.Box.Z),
	}
}

func (p Periodic) Stream(dt float64) {}
func (p Periodic) Name() string { return "Periodic" }

// PeriodicExceptX is open (unbounded) on the x axis, periodic on y and z;
// used for walled channels bounded by explicit Local walls in x.
type PeriodicExceptX struct {
	Box Vec3
}

func (p PeriodicExceptX) Apply(pos Vec3) Vec3 {
	return Vec3{X: pos.X, Y: wrapAxis(pos.Y, p.Box.Y), Z: wrapAxis(pos.Z, p.Box.Z)}
}
func (p PeriodicExceptX) ApplyVel(pos, vel Vec3) (Vec3, Vec3) { return p.Apply(pos), vel }
func (p PeriodicExceptX) MinimumImage(a, b Vec3) Vec3 {
	d := a.Sub(b)
	return Vec3{X: d.X, Y: wrapAxis(d.Y, p.Box.Y), Z: wrapAxis(d.Z, p.Box.Z)}
}
func (p PeriodicExceptX) Stream(dt float64) {}
func (p PeriodicExceptX) Name() string { return "PeriodicExceptX" }

// PeriodicXOnly is periodic in x only, open in y and z.
type PeriodicXOnly struct {
	Box Vec3
}

func (p PeriodicXOnly) Apply(pos Vec3) Vec3 {
	return Vec3{X: wrapAxis(pos.X, p.Box.X), Y: pos.Y, Z: pos.Z}
}
func (p PeriodicXOnly) ApplyVel(pos, vel Vec3) (Vec3, Vec3) { return p.Apply(pos), vel }
func (p PeriodicXOnly) MinimumImage(a, b Vec3) Vec3 {
	d := a.Sub(b)
	return Vec3{X: wrapAxis(d.X, p.Box.X), Y: d.Y, Z: d.Z}
}
func (p PeriodicXOnly) Stream(dt float64) {}
func (p PeriodicXOnly) Name() string { return "PeriodicXOnly" }

// LeesEdwards implements shear-periodic boundaries: the y-image of the box
// slides in x at a constant rate. ShearRate is dGamma/dt; Shear is the
// accumulated boundary displacement, advanced by Stream and wrapped back
// into [-Box.X/2, Box.X/2) so it never grows without bound.
type LeesEdwards struct {
	Box Vec3
	ShearRate float64
	Shear float64 // accumulated shear offset, in length units
}

func (le *LeesEdwards) imageCount(y float64) float64 {
	if le.Box.Y <= 0 {
		return 0
	}
	return round(y / le.Box.Y)
}

func (le *LeesEdwards) Apply(pos Vec3) Vec3 {
	ny := le.imageCount(pos.Y)
	x := pos.X - ny*le.Shear
	y := pos.Y - ny*le.Box.Y
	x = wrapAxis(x, le.Box.X)
	z := wrapAxis(pos.Z, le.Box.Z)
	return Vec3{X: x, Y: y, Z: z}
}

func (le *LeesEdwards) ApplyVel(pos, vel Vec3) (Vec3, Vec3) {
	ny := le.imageCount(pos.Y)
	wrapped := le.Apply(pos)
	if ny == 0 {
		return wrapped, vel
	}
	// Crossing a y-image boundary shifts the boundary-frame x-velocity by
	// the shear rate times the box height, per image crossed.
	dvx := -ny * le.ShearRate * le.Box.Y
	return wrapped, Vec3{X: vel.X + dvx, Y: vel.Y, Z: vel.Z}
}

func (le *LeesEdwards) MinimumImage(a, b Vec3) Vec3 {
	d := a.Sub(b)
	ny := le.imageCount(d.Y)
	x := d.X - ny*le.Shear
	y := d.Y - ny*le.Box.Y
	x = wrapAxis(x, le.Box.X)
	z := wrapAxis(d.Z, le.Box.Z)
	return Vec3{X: x, Y: y, Z: z}
}

// Stream advances the accumulated shear by dt*ShearRate*Box.Y, wrapping it back
// into the primary cell's x-range so it stays bounded over a long run.
func (le *LeesEdwards) Stream(dt float64) {
	le.Shear += dt * le.ShearRate * le.Box.Y
	le.Shear = wrapAxis(le.Shear, le.Box.X)
}

func (le *LeesEdwards) Name() string { return "LeesEdwards" }
