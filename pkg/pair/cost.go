package pair

import (
	"github.com/Faultbox/qslim/pkg/mathkernel"
	"github.com/Faultbox/qslim/pkg/quadric"
)

// SolveCost computes the optimal contraction target and its quadric error
// for the pair (u,v) with positions (pu,pv) and combined quadric qhat.
//
// The optimal target is the point whose homogeneous coordinates solve
// M * x = (0,0,0,1) where M is qhat's matrix with its last row replaced by
// (0,0,0,1). If M is singular, the minimum-cost candidate among pu, pv, and
// their midpoint is used instead (spec's three-candidate fallback).
func SolveCost(qhat quadric.Quadric, pu, pv mathkernel.Vec3) (target mathkernel.Vec3, cost float64) {
	m := qhat.Mat()
	m[3], m[7], m[11], m[15] = 0, 0, 0, 1 // replace row 3 (mgl64 is column-major: row r, col c is m[c*4+r])

	if inv, ok := mathkernel.Invert4(m); ok {
		target = mathkernel.Vec3{inv[12], inv[13], inv[14]}
		return target, qhat.Evaluate(target)
	}

	mid := pu.Add(pv).Mul(0.5)
	best := pu
	bestCost := qhat.Evaluate(pu)
	if c := qhat.Evaluate(pv); c < bestCost {
		best, bestCost = pv, c
	}
	if c := qhat.Evaluate(mid); c < bestCost {
		best, bestCost = mid, c
	}
	return best, bestCost
}
