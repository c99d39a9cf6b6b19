// Package pair implements valid-pair discovery and the optimal-target cost
// solver for quadric mesh simplification.
package pair

import "github.com/Faultbox/qslim/pkg/mathkernel"

// Key identifies a pair by its underlying vertex-index set; cost and
// target are not part of identity.
type Key struct {
	V1, V2 int
}

// canonical returns (lo, hi) with lo < hi.
func canonical(a, b int) (int, int) {
	if a < b {
		return a, b
	}
	return b, a
}

// NewKey returns the canonical key for the unordered pair {a,b}.
func NewKey(a, b int) Key {
	lo, hi := canonical(a, b)
	return Key{V1: lo, V2: hi}
}

// Pair is an unordered vertex pair with a cached optimal contraction target
// and its cost.
type Pair struct {
	Key
	Target mathkernel.Vec3
	Cost   float64
}
