// Package quadric implements the Garland-Heckbert error quadric: a plane
// quadric per face, summed per vertex, stored as its ten unique entries.
package quadric

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/qslim/pkg/mathkernel"
	"github.com/Faultbox/qslim/pkg/mesh"
)

// ErrDegenerateFace is returned in strict mode when a face's three
// vertices are collinear (its normal is the zero vector).
type ErrDegenerateFace struct {
	Face     mesh.Triangle
	P0, P1, P2 mathkernel.Vec3
}

func (e *ErrDegenerateFace) Error() string {
	return fmt.Sprintf("degenerate face %v: vertices %v, %v, %v are collinear", e.Face, e.P0, e.P1, e.P2)
}

// Quadric is a symmetric 4x4 matrix, stored as its 10 unique entries in
// row-major upper-triangle order: (0,0) (0,1) (0,2) (0,3) (1,1) (1,2) (1,3)
// (2,2) (2,3) (3,3).
type Quadric struct {
	e [10]float64
}

// FromPlane builds the rank-1 plane quadric Kp = [a b c d]^T [a b c d] for
// the plane with unit normal n = (a,b,c) and offset d (ax+by+cz+d=0).
func FromPlane(n mathkernel.Vec3, d float64) Quadric {
	a, b, c := n[0], n[1], n[2]
	return Quadric{e: [10]float64{
		a * a, a * b, a * c, a * d,
		b * b, b * c, b * d,
		c * c, c * d,
		d * d,
	}}
}

// Add returns the component-wise sum of two quadrics.
func (q Quadric) Add(o Quadric) Quadric {
	var r Quadric
	for i := range q.e {
		r.e[i] = q.e[i] + o.e[i]
	}
	return r
}

// Mat returns the full symmetric 4x4 matrix for arithmetic that needs it
// (the cost solver's derivative matrix).
func (q Quadric) Mat() mathkernel.Mat4 {
	a00, a01, a02, a03 := q.e[0], q.e[1], q.e[2], q.e[3]
	a11, a12, a13 := q.e[4], q.e[5], q.e[6]
	a22, a23 := q.e[7], q.e[8]
	a33 := q.e[9]
	// mgl64.Mat4 is column-major; the matrix is symmetric so row/col order
	// doesn't matter for the values themselves.
	return mathkernel.Mat4{
		a00, a01, a02, a03,
		a01, a11, a12, a13,
		a02, a12, a22, a23,
		a03, a13, a23, a33,
	}
}

// Evaluate computes v_h^T * Q * v_h directly from the packed entries,
// where v_h = (v.X, v.Y, v.Z, 1), without materializing a 4x4 matrix.
func (q Quadric) Evaluate(v mathkernel.Vec3) float64 {
	x, y, z := v[0], v[1], v[2]
	return q.e[0]*x*x + 2*q.e[1]*x*y + 2*q.e[2]*x*z + 2*q.e[3]*x +
		q.e[4]*y*y + 2*q.e[5]*y*z + 2*q.e[6]*y +
		q.e[7]*z*z + 2*q.e[8]*z +
		q.e[9]
}

// FaceQuadric computes the plane quadric for a single face, or reports it
// degenerate (zero-area) if its two edge vectors are parallel.
func FaceQuadric(p0, p1, p2 mathkernel.Vec3) (Quadric, bool) {
	e1 := p1.Sub(p0)
	e2 := p2.Sub(p0)
	n := e1.Cross(e2)
	length := n.Len()
	if length < 1e-12 {
		return Quadric{}, false
	}
	n = n.Mul(1 / length)
	d := -n.Dot(p0)
	return FromPlane(n, d), true
}

// Initialize computes the per-vertex quadric Q[v] = sum of Kp over faces
// incident to v, mutating m in place by dropping degenerate faces before
// accumulation. In strict mode a degenerate face is a fatal error and m is
// left untouched; in non-strict mode it is dropped and logged.
func Initialize(m *mesh.Mesh, strict bool, log *zap.Logger) (map[int]Quadric, error) {
	if strict {
		for _, t := range m.Faces {
			p0, p1, p2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
			if _, ok := FaceQuadric(p0, p1, p2); !ok {
				return nil, &ErrDegenerateFace{Face: t, P0: p0, P1: p1, P2: p2}
			}
		}
	} else {
		for id, t := range m.Faces {
			p0, p1, p2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
			if _, ok := FaceQuadric(p0, p1, p2); !ok {
				if log != nil {
					log.Warn("dropping degenerate face", zap.Any("face", t))
				}
				m.RemoveFace(id)
			}
		}
	}

	quadrics := make(map[int]Quadric, len(m.Vertices))
	for v := range m.Vertices {
		quadrics[v] = Quadric{}
	}
	for _, t := range m.Faces {
		p0, p1, p2 := m.Vertices[t[0]], m.Vertices[t[1]], m.Vertices[t[2]]
		kp, ok := FaceQuadric(p0, p1, p2)
		if !ok {
			continue
		}
		for _, v := range t {
			quadrics[v] = quadrics[v].Add(kp)
		}
	}
	return quadrics, nil
}
