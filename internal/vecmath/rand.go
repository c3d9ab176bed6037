package vecmath

import (
	"math"
	"math/rand"
)

// Rand is the minimal random-number surface the core depends on. It mirrors
// the standard library's math/rand.Rand ("Float64() float64;
// NormFloat64() float64"), widened to cover what the liouvillean and system
// events need: uniform floats for position/velocity sampling, Gaussian
// draws for Maxwell-Boltzmann velocities, and uniform ints for picking
// random particles (Andersen thermostat, DSMC collider).
type Rand interface {
	Float64() float64
	NormFloat64() float64
	Intn(n int) int
}

// Source wraps math/rand.Rand to satisfy Rand. Each replica in a
// replica-exchange run owns its own Source seeded independently, per the
// spec's invariant that the PRNG is process-wide-per-replica and never
// shared.
type Source struct {
	r *rand.Rand
}

// NewSource returns a Source seeded deterministically from seed. Two
// Sources built from the same seed produce identical draw sequences,
// which is what the determinism invariant requires.
func NewSource(seed int64) *Source {
	return &Source{r: rand.New(rand.NewSource(seed))}
}

func (s *Source) Float64() float64 { return s.r.Float64() }
func (s *Source) NormFloat64() float64 { return s.r.NormFloat64() }
func (s *Source) Intn(n int) int { return s.r.Intn(n) }

// MaxwellBoltzmann draws a velocity vector for mass m at temperature T
// (in reduced units where k_B=1): each component is an independent
// zero-mean Gaussian with variance T/m.
func MaxwellBoltzmann(r Rand, mass, temperature float64) Vec3 {
	s := math.Sqrt(temperature / mass)
	return Vec3{
		X: r.NormFloat64() * s,
		Y: r.NormFloat64() * s,
		Z: r.NormFloat64() * s,
	}
}
