package vecmath

// Mat3 is a 3x3 matrix stored row-major. Nothing outside this package's
// tests uses it.
type Mat3 struct {
	M [3][3]float64
}

// Identity returns the 3x3 identity matrix.
func Identity() Mat3 {
	var m Mat3
	m.M[0][0], m.M[1][1], m.M[2][2] = 1, 1, 1
	return m
}

// Diag returns a diagonal matrix with the given entries.
func Diag(x, y, z float64) Mat3 {
	var m Mat3
	m.M[0][0], m.M[1][1], m.M[2][2] = x, y, z
	return m
}

// MulVec returns m*v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m.M[0][0]*v.X + m.M[0][1]*v.Y + m.M[0][2]*v.Z,
		m.M[1][0]*v.X + m.M[1][1]*v.Y + m.M[1][2]*v.Z,
		m.M[2][0]*v.X + m.M[2][1]*v.Y + m.M[2][2]*v.Z,
	}
}

// Mul returns m*other.
func (m Mat3) Mul(other Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s := 0.0
			for k := 0; k < 3; k++ {
				s += m.M[i][k] * other.M[k][j]
			}
			out.M[i][j] = s
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m Mat3) Transpose() Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out.M[i][j] = m.M[j][i]
		}
	}
	return out
}
