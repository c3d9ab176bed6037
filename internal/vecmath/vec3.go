// Package vecmath provides fixed-dimension linear algebra and a seedable
// PRNG for the simulation core. Every particle position, velocity and
// boundary vector in DYNAMO is exactly 3-dimensional, so unlike vec.Vec's
// variable length this package fixes the dimension at compile
// time and returns values rather than slice aliases.
package vecmath

import (
	"fmt"
	"math"
)

// Vec3 is a 3-component vector. The zero value is the origin.
type Vec3 struct {
	X, Y, Z float64
}

// New constructs a Vec3 from components.
func New(x, y, z float64) Vec3 { return Vec3{x, y, z} }

// Add returns v+other.
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

// Sub returns v-other.
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

// Mul returns the componentwise product v*other.
func (v Vec3) Mul(other Vec3) Vec3 {
	return Vec3{v.X * other.X, v.Y * other.Y, v.Z * other.Z}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 { return Vec3{-v.X, -v.Y, -v.Z} }

// SMul returns v scaled by s.
func (v Vec3) SMul(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// SAdd returns v with s added to every component.
func (v Vec3) SAdd(s float64) Vec3 { return Vec3{v.X + s, v.Y + s, v.Z + s} }

// Dot returns the dot product of v and other.
func (v Vec3) Dot(other Vec3) float64 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// Cross returns the cross product v x other.
func (v Vec3) Cross(other Vec3) Vec3 {
	return Vec3{
		v.Y*other.Z - v.Z*other.Y,
		v.Z*other.X - v.X*other.Z,
		v.X*other.Y - v.Y*other.X,
	}
}

// Norm returns the degree-norm of the vector. The 2-norm is the euclidean
// length. Panics on a non-positive degree, matching
// pso.VecFloat64.Norm and vec.Vec.Norm's convention of treating a bad norm
// degree as a programmer error rather than recoverable input.
func (v Vec3) Norm(degree float64) float64 {
	if degree <= 0.0 {
		panic(fmt.Sprintf("vecmath: invalid non-positive norm degree: %v", degree))
	}
	if degree == 2.0 {
		return math.Sqrt(v.Dot(v))
	}
	if degree == 1.0 {
		return math.Abs(v.X) + math.Abs(v.Y) + math.Abs(v.Z)
	}
	s := math.Pow(math.Abs(v.X), degree) + math.Pow(math.Abs(v.Y), degree) + math.Pow(math.Abs(v.Z), degree)
	return math.Pow(s, 1.0/degree)
}

// Mag returns the euclidean length of v. Equivalent to Norm(2) but avoids
// the branch.
func (v Vec3) Mag() float64 { return math.Sqrt(v.Dot(v)) }

// MagSq returns the squared euclidean length of v, useful for comparisons
// against a squared interaction distance without an expensive Sqrt.
func (v Vec3) MagSq() float64 { return v.Dot(v) }

// Normalized returns v scaled to unit length. Returns the zero vector if v
// is (numerically) the zero vector.
func (v Vec3) Normalized() Vec3 {
	m := v.Mag()
	if m == 0 {
		return Vec3{}
	}
	return v.SMul(1.0 / m)
}

// Map applies f to every component and returns the result.
func (v Vec3) Map(f func(float64) float64) Vec3 {
	return Vec3{f(v.X), f(v.Y), f(v.Z)}
}

// Array returns the vector as a [3]float64, useful for cell-index hashing
// and serialization.
func (v Vec3) Array() [3]float64 { return [3]float64{v.X, v.Y, v.Z} }

// Component returns the i'th component (0=X, 1=Y, 2=Z). Panics on an
// out-of-range index.
func (v Vec3) Component(i int) float64 {
	switch i {
	case 0:
		return v.X
	case 1:
		return v.Y
	case 2:
		return v.Z
	default:
		panic(fmt.Sprintf("vecmath: component index out of range: %d", i))
	}
}

// WithComponent returns a copy of v with component i set to val.
func (v Vec3) WithComponent(i int, val float64) Vec3 {
	switch i {
	case 0:
		v.X = val
	case 1:
		v.Y = val
	case 2:
		v.Z = val
	default:
		panic(fmt.Sprintf("vecmath: component index out of range: %d", i))
	}
	return v
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%.6g, %.6g, %.6g)", v.X, v.Y, v.Z)
}
