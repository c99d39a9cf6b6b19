// Package simplify implements the pair-contraction simplifier: seed a
// priority queue with every valid pair's quadric-error cost, then
// repeatedly contract the cheapest pair, maintaining incidence and
// re-costing every pair touched by the contraction, until the mesh is at
// or below the target face count (or no more contractions are possible).
package simplify

import (
	"go.uber.org/zap"

	"github.com/Faultbox/qslim/pkg/mesh"
	"github.com/Faultbox/qslim/pkg/pair"
	"github.com/Faultbox/qslim/pkg/pqueue"
	"github.com/Faultbox/qslim/pkg/quadric"
)

// Options configures a simplification run.
type Options struct {
	TargetFaces       int
	RecordSplits      bool
	Strict            bool
	DistanceThreshold float64
	Logger            *zap.Logger // nil is treated as zap.NewNop()
}

// Simplify reduces m to at most opts.TargetFaces faces by iterated pair
// contraction, mutating m in place and returning it. When the priority
// queue runs dry before the target is reached, the loop stops early (P7) —
// this is not an error.
func Simplify(m *mesh.Mesh, opts Options) (*mesh.Mesh, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	quadrics, err := quadric.Initialize(m, opts.Strict, log)
	if err != nil {
		return nil, err
	}

	q := pqueue.New()
	pairsOfVertex := make(map[int]map[pair.Key]struct{})
	trackPair := func(k pair.Key) {
		for _, v := range []int{k.V1, k.V2} {
			set := pairsOfVertex[v]
			if set == nil {
				set = make(map[pair.Key]struct{})
				pairsOfVertex[v] = set
			}
			set[k] = struct{}{}
		}
	}
	for _, k := range pair.Generate(m, opts.DistanceThreshold) {
		qhat := quadrics[k.V1].Add(quadrics[k.V2])
		target, cost := pair.SolveCost(qhat, m.Vertices[k.V1], m.Vertices[k.V2])
		q.Insert(pair.Pair{Key: k, Target: target, Cost: cost})
		trackPair(k)
	}

	for m.FaceCount() > opts.TargetFaces {
		winner, ok := q.PopMin()
		if !ok {
			log.Debug("queue exhausted before reaching target", zap.Int("faces", m.FaceCount()), zap.Int("target", opts.TargetFaces))
			break
		}
		v1, v2 := winner.V1, winner.V2

		if opts.RecordSplits {
			recordSplit(m, v1, v2)
		}

		log.Debug("contracting pair",
			zap.Int("v1", v1), zap.Int("v2", v2),
			zap.Float64("cost", winner.Cost),
			zap.Int("faces_before", m.FaceCount()),
		)

		contract(m, quadrics, pairsOfVertex, q, winner)

		log.Debug("contraction complete", zap.Int("faces_after", m.FaceCount()))
	}

	return m, nil
}

// contract performs steps 3-9 of the contraction loop for the winning
// pair: move v1 to the target, merge quadrics, rewire v2's faces onto v1,
// drop v2, and recompute every pair now touching v1.
func contract(m *mesh.Mesh, quadrics map[int]quadric.Quadric, pairsOfVertex map[int]map[pair.Key]struct{}, q *pqueue.Queue, winner pair.Pair) {
	v1, v2 := winner.V1, winner.V2

	m.Vertices[v1] = winner.Target
	quadrics[v1] = quadrics[v1].Add(quadrics[v2])

	for faceID := range copyFaceSet(m.Incidence(v2)) {
		face := m.Faces[faceID]
		if face.Has(v1) {
			m.RemoveFace(faceID)
			continue
		}
		m.ReplaceFaceVertex(faceID, v2, v1)
	}

	m.RemoveVertex(v2)

	merged := pairsOfVertex[v1]
	if merged == nil {
		merged = make(map[pair.Key]struct{})
	}
	for k := range pairsOfVertex[v2] {
		merged[k] = struct{}{}
	}
	delete(pairsOfVertex, v2)
	delete(merged, winner.Key) // the winner is the one true self-loop: {v2,v1} rewrites to {v1,v1}

	stale := make([]pair.Key, 0, len(merged))
	for k := range merged {
		stale = append(stale, k)
	}

	// A shared neighbor w connected to both v1 and v2 contributes two
	// stale keys that both rewrite to the same canonical {v1,w} — Pairs is
	// a set keyed by vertex-index-set, so only the first occurrence is
	// recomputed and reinserted; the rest are retired outright.
	fresh := make(map[pair.Key]struct{}, len(stale))
	for _, k := range stale {
		if _, done := fresh[k]; done {
			continue // already recomputed and reinserted under this key
		}
		q.Remove(k)

		other := k.V1
		if other == v1 || other == v2 {
			other = k.V2
		}
		if otherSet := pairsOfVertex[other]; otherSet != nil {
			delete(otherSet, k)
		}

		newKey := pair.NewKey(v1, other)
		if _, already := fresh[newKey]; already {
			continue
		}
		fresh[newKey] = struct{}{}
		if otherSet := pairsOfVertex[other]; otherSet != nil {
			otherSet[newKey] = struct{}{}
		} else {
			pairsOfVertex[other] = map[pair.Key]struct{}{newKey: {}}
		}

		q.Remove(newKey) // a not-yet-visited stale entry may still hold this key
		qhat := quadrics[newKey.V1].Add(quadrics[newKey.V2])
		target, cost := pair.SolveCost(qhat, m.Vertices[newKey.V1], m.Vertices[newKey.V2])
		q.Insert(pair.Pair{Key: newKey, Target: target, Cost: cost})
	}

	pairsOfVertex[v1] = fresh
}

func copyFaceSet(s map[int]struct{}) map[int]struct{} {
	out := make(map[int]struct{}, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}
