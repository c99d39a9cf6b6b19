package pair

import "github.com/Faultbox/qslim/pkg/mesh"

// Generate enumerates the valid pairs for a mesh: every face's three edges,
// deduplicated by canonical key, plus (when distanceThreshold > 0) every
// unordered pair of live vertices closer than distanceThreshold.
func Generate(m *mesh.Mesh, distanceThreshold float64) []Key {
	seen := make(map[Key]struct{})
	var keys []Key

	add := func(a, b int) {
		k := NewKey(a, b)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}

	for _, t := range m.Faces {
		add(t[0], t[1])
		add(t[1], t[2])
		add(t[0], t[2])
	}

	if distanceThreshold > 0 {
		ids := make([]int, 0, len(m.Vertices))
		for v := range m.Vertices {
			ids = append(ids, v)
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				a, b := ids[i], ids[j]
				if m.Vertices[a].Sub(m.Vertices[b]).Len() < distanceThreshold {
					add(a, b)
				}
			}
		}
	}

	return keys
}
