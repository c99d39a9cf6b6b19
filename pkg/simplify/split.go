package simplify

import (
	"sort"

	"github.com/Faultbox/qslim/pkg/mesh"
)

// recordSplit pushes a VertexSplit for the about-to-be-contracted pair
// (v1 survives, v2 is folded away) before any mutation happens — it needs
// v1's pre-move position and v2's incidence map exactly as they stand now.
//
// Splits are kept in replay order (index 0 is always the most recently
// recorded contraction, i.e. the next one the expander should undo) by
// prepending here, so no reversal step is needed before serialization —
// file order already equals replay order.
func recordSplit(m *mesh.Mesh, v1, v2 int) {
	faceIDs := make([]int, 0, len(m.Incidence(v2)))
	for id := range m.Incidence(v2) {
		faceIDs = append(faceIDs, id)
	}
	sort.Ints(faceIDs)

	faces := make([]mesh.Triangle, 0, len(faceIDs))
	for _, id := range faceIDs {
		t := m.Faces[id]
		var rec mesh.Triangle
		for i, idx := range t {
			if idx == v2 {
				rec[i] = mesh.SentinelRemoved
			} else {
				rec[i] = idx
			}
		}
		faces = append(faces, rec)
	}

	split := mesh.VertexSplit{
		S:     v1,
		SPos:  m.Vertices[v1],
		T:     v2,
		TPos:  m.Vertices[v2],
		Faces: faces,
	}
	m.Splits = append([]mesh.VertexSplit{split}, m.Splits...)
}
