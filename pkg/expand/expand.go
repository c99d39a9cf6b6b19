// Package expand implements the progressive-mesh expander: replaying
// vertex-split records to regrow a simplified mesh toward a higher
// resolution.
package expand

import (
	"sort"

	"github.com/Faultbox/qslim/pkg/mesh"
)

// Expand grows m toward targetFaces faces by replaying splits from the
// front of m.Splits (the queue order produced by the simplifier / the
// .obj codec), stopping when the target is reached or the queue empties
// (P8). Consumed splits are removed from m.Splits.
func Expand(m *mesh.Mesh, targetFaces int) (*mesh.Mesh, error) {
	for m.FaceCount() < targetFaces && len(m.Splits) > 0 {
		split := m.Splits[0]
		m.Splits = m.Splits[1:]
		applySplit(m, split)
	}
	return m, nil
}

// applySplit performs §4.I: restore s's pre-contraction position,
// materialize t at its original stable index (not a fresh one — an
// earlier contraction's split may reference t by that index too), re-point
// any current face that used to include t (found by positional match
// against the recorded faces) onto t, and recreate every recorded face
// that still needs creating.
func applySplit(m *mesh.Mesh, split mesh.VertexSplit) {
	m.Vertices[split.S] = split.SPos
	t := split.T
	m.AddVertexAt(t, split.TPos)

	sIncidence := make([]int, 0, len(m.Incidence(split.S)))
	for id := range m.Incidence(split.S) {
		sIncidence = append(sIncidence, id)
	}
	sort.Ints(sIncidence)

	matched := make(map[int]bool, len(split.Faces))
	for _, faceID := range sIncidence {
		current := m.Faces[faceID]
		for i, recorded := range split.Faces {
			if matched[i] {
				continue
			}
			if sameUpToTSlot(current, recorded, split.S, t) {
				m.ReplaceFaceVertex(faceID, split.S, t)
				matched[i] = true
				break
			}
		}
	}

	for i, recorded := range split.Faces {
		if matched[i] {
			continue
		}
		resolved := resolveSentinel(recorded, t)
		m.AddFace(resolved)
	}
}

// sameUpToTSlot reports whether current is the live face that recorded
// used to be before the split: every slot equal at matching positions,
// except recorded's sentinel slot, which must line up with a slot in
// current that currently holds s (the vertex about to be un-contracted
// back into t). This is positional matching (spec's open question on
// IsOriginalFaceOfT): it assumes the expander sees the same index order
// the simplifier recorded, which AddFace/ReplaceFaceVertex preserve.
func sameUpToTSlot(current, recorded mesh.Triangle, s, t int) bool {
	for i := 0; i < 3; i++ {
		if recorded[i] == mesh.SentinelRemoved {
			if current[i] != s {
				return false
			}
			continue
		}
		if current[i] != recorded[i] {
			return false
		}
	}
	return true
}

func resolveSentinel(t mesh.Triangle, newVertex int) mesh.Triangle {
	for i, idx := range t {
		if idx == mesh.SentinelRemoved {
			t[i] = newVertex
		}
	}
	return t
}
