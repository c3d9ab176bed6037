package boundary

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoneDoesNotWrap(t *testing.T) {
	var c Condition = None{}
	p := Vec3{X: 100, Y: -50, Z: 3}
	assert.Equal(t, p, c.Apply(p))
}

func TestPeriodicWrapsIntoPrimaryCell(t *testing.T) {
	c := Periodic{Box: Vec3{X: 10, Y: 10, Z: 10}}

	got := c.Apply(Vec3{X: 6, Y: -6, Z: 0})
	assert.InDelta(t, -4, got.X, 1e-12)
	assert.InDelta(t, 4, got.Y, 1e-12)
	assert.InDelta(t, 0, got.Z, 1e-12)
}

func TestPeriodicMinimumImage(t *testing.T) {
	c := Periodic{Box: Vec3{X: 10, Y: 10, Z: 10}}
	a := Vec3{X: 1, Y: 0, Z: 0}
	b := Vec3{X: 9, Y: 0, Z: 0}

	d := c.MinimumImage(a, b)
	// True separation should be 2 (wrapping the long way around), not 8.
	assert.InDelta(t, 2.0, d.X, 1e-9)
}

func TestPeriodicExceptXLeavesXOpen(t *testing.T) {
	c := PeriodicExceptX{Box: Vec3{X: 10, Y: 10, Z: 10}}
	got := c.Apply(Vec3{X: 123, Y: 16, Z: 0})
	assert.Equal(t, 123.0, got.X)
	assert.InDelta(t, -4, got.Y, 1e-9)
}

func TestLeesEdwardsStreamAccumulatesShear(t *testing.T) {
	le := &LeesEdwards{Box: Vec3{X: 10, Y: 10, Z: 10}, ShearRate: 1.0}
	le.Stream(0.5)
	assert.InDelta(t, 0.5*1.0*10, le.Shear, 1e-9)
}

func TestLeesEdwardsShiftsXOnYImageCrossing(t *testing.T) {
	le := &LeesEdwards{Box: Vec3{X: 10, Y: 10, Z: 10}, ShearRate: 2.0, Shear: 3.0}

	// A particle just above the box in y should be folded back one image
	// down, and its x coordinate shifted by the accumulated shear.
	pos := Vec3{X: 1, Y: 11, Z: 0}
	wrapped := le.Apply(pos)
	assert.InDelta(t, 1.0, wrapped.Y, 1e-9)
	assert.InDelta(t, 1-3.0, wrapped.X, 1e-9)
}

func TestLeesEdwardsVelocityShiftOnImageCrossing(t *testing.T) {
	le := &LeesEdwards{Box: Vec3{X: 10, Y: 10, Z: 10}, ShearRate: 2.0}
	pos := Vec3{X: 1, Y: 11, Z: 0}
	vel := Vec3{X: 0, Y: 1, Z: 0}

	_, wrappedVel := le.ApplyVel(pos, vel)
	// One image crossed upward (ny=1): dvx = -1*shearRate*boxY = -20.
	assert.InDelta(t, -20.0, wrappedVel.X, 1e-9)
}

func TestLeesEdwardsNoShiftWithoutImageCrossing(t *testing.T) {
	le := &LeesEdwards{Box: Vec3{X: 10, Y: 10, Z: 10}, ShearRate: 2.0}
	pos := Vec3{X: 1, Y: 2, Z: 0}
	vel := Vec3{X: 0, Y: 1, Z: 0}

	_, wrappedVel := le.ApplyVel(pos, vel)
	assert.Equal(t, vel, wrappedVel)
}
