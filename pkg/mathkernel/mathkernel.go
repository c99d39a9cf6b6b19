// Package mathkernel adapts github.com/go-gl/mathgl/mgl64 for the
// quadric-error geometry the simplifier core needs: double-precision
// vectors, a 4x4 matrix type, and an invert that signals singularity
// instead of returning a matrix full of Inf/NaN.
package mathkernel

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 is a double-precision 3-vector.
type Vec3 = mgl64.Vec3

// Vec4 is a double-precision homogeneous 4-vector.
type Vec4 = mgl64.Vec4

// Mat4 is a double-precision 4x4 matrix, column-major (mgl64 convention).
type Mat4 = mgl64.Mat4

// singularEpsilon bounds how close to zero a determinant can be before a
// matrix is treated as non-invertible.
const singularEpsilon = 1e-12

// Invert4 returns the inverse of m and true, or a zero matrix and false if
// m is numerically singular (|det(m)| < singularEpsilon).
func Invert4(m Mat4) (Mat4, bool) {
	if math.Abs(m.Det()) < singularEpsilon {
		return Mat4{}, false
	}
	return m.Inv(), true
}

// Homogeneous returns (v.X, v.Y, v.Z, 1).
func Homogeneous(v Vec3) Vec4 {
	return v.Vec4(1)
}
