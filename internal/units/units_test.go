package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReducedUnitsAreIdentity(t *testing.T) {
	u := NewReduced()
	assert.Equal(t, 5.0, u.LengthToSim(5.0))
	assert.Equal(t, 5.0, u.LengthToConfig(5.0))
	assert.Equal(t, 1.0, u.Energy())
}

func TestRoundTripPreservesValue(t *testing.T) {
	u := New(2.5, 0.1, 3.0)

	for _, v := range []float64{0, 1, -7.25, 1e6} {
		assert.InDelta(t, v, u.LengthToSim(u.LengthToConfig(v)), 1e-9)
		assert.InDelta(t, v, u.TimeToSim(u.TimeToConfig(v)), 1e-9)
		assert.InDelta(t, v, u.MassToSim(u.MassToConfig(v)), 1e-9)
		assert.InDelta(t, v, u.EnergyToSim(u.EnergyToConfig(v)), 1e-9)
		assert.InDelta(t, v, u.VelocityToSim(u.VelocityToConfig(v)), 1e-9)
	}
}

func TestDerivedScalesAreConsistent(t *testing.T) {
	u := New(2.0, 4.0, 3.0)
	assert.InDelta(t, 2.0/4.0, u.Velocity(), 1e-12)
	assert.InDelta(t, 3.0*2.0*2.0/(4.0*4.0), u.Energy(), 1e-12)
}
