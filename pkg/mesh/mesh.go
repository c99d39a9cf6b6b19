// Package mesh implements the shared data model for the quadric simplifier
// and the progressive-mesh expander: vertices, triangles, and the
// incidence maps that tie them together.
package mesh

import (
	"sort"

	"github.com/Faultbox/qslim/pkg/mathkernel"
)

// Triangle is an ordered triple of vertex indices. Orientation carries the
// front-face normal and is preserved by every mutation.
type Triangle [3]int

// Has reports whether v appears in the triangle.
func (t Triangle) Has(v int) bool {
	return t[0] == v || t[1] == v || t[2] == v
}

// Replace returns a copy of t with every occurrence of old replaced by new.
func (t Triangle) Replace(old, new int) Triangle {
	for i, idx := range t {
		if idx == old {
			t[i] = new
		}
	}
	return t
}

// Degenerate reports whether two of the triangle's three indices are equal.
func (t Triangle) Degenerate() bool {
	return t[0] == t[1] || t[1] == t[2] || t[0] == t[2]
}

// SentinelRemoved marks the slot of a recorded split face where the
// folded-away vertex sat; the expander and the .obj codec both resolve it
// to the re-materialized vertex's index.
const SentinelRemoved = -1

// VertexSplit is the reversible record of one contraction: the vertex that
// survived (s), its position before the contraction (restored on
// expansion), the original stable index of the vertex that was folded away
// (t), and the faces that were incident to t. A face slot of
// SentinelRemoved marks where t sat in its own recorded faces; the expander
// re-materializes t at T itself (via AddVertexAt), not at a fresh index,
// because a split recorded earlier may reference T by that original index
// too (as its S or as a face neighbor): T can have survived an earlier
// contraction before this one folded it away, and that earlier split
// replays after this one, once T is back.
type VertexSplit struct {
	S     int
	SPos  mathkernel.Vec3
	T     int
	TPos  mathkernel.Vec3
	Faces []Triangle
}

// Mesh is a typed container of vertices, faces, and (optionally) a split
// stack. Vertex and face identity is stable: indices are never renumbered
// during simplification or expansion, only by an explicit Compact call.
type Mesh struct {
	Vertices map[int]mathkernel.Vec3
	Faces    map[int]Triangle
	Splits   []VertexSplit

	nextVertexID int
	nextFaceID   int

	incidence map[int]map[int]struct{} // vertex -> set of face IDs
}

// New returns an empty mesh ready for incremental construction.
func New() *Mesh {
	return &Mesh{
		Vertices:  make(map[int]mathkernel.Vec3),
		Faces:     make(map[int]Triangle),
		incidence: make(map[int]map[int]struct{}),
	}
}

// AddVertex inserts a vertex at the next stable index and returns it.
func (m *Mesh) AddVertex(pos mathkernel.Vec3) int {
	v := m.nextVertexID
	m.nextVertexID++
	m.Vertices[v] = pos
	return v
}

// AddVertexAt inserts a vertex at an explicit index, used by the loader to
// preserve the 1-based-minus-one indices from an .obj file. It advances the
// internal counter so subsequently-added vertices never collide.
func (m *Mesh) AddVertexAt(idx int, pos mathkernel.Vec3) {
	m.Vertices[idx] = pos
	if idx >= m.nextVertexID {
		m.nextVertexID = idx + 1
	}
}

// AddFace inserts a triangle at the next stable face ID, updates the
// incidence map for its three vertices, and returns the face ID.
func (m *Mesh) AddFace(t Triangle) int {
	id := m.nextFaceID
	m.nextFaceID++
	m.Faces[id] = t
	for _, v := range t {
		m.addIncidence(v, id)
	}
	return id
}

// RemoveFace deletes a face and its incidence entries.
func (m *Mesh) RemoveFace(id int) {
	t, ok := m.Faces[id]
	if !ok {
		return
	}
	delete(m.Faces, id)
	for _, v := range t {
		if set := m.incidence[v]; set != nil {
			delete(set, id)
		}
	}
}

// ReplaceFaceVertex rewrites every occurrence of old in face id to new and
// moves the incidence entry accordingly. The caller is responsible for
// checking the result isn't degenerate first (I6).
func (m *Mesh) ReplaceFaceVertex(id, old, new int) {
	t, ok := m.Faces[id]
	if !ok {
		return
	}
	m.Faces[id] = t.Replace(old, new)
	if set := m.incidence[old]; set != nil {
		delete(set, id)
	}
	m.addIncidence(new, id)
}

// RemoveVertex deletes a vertex and its incidence entry (I7: the vertex
// must already be absent from every face and pair before this is called).
func (m *Mesh) RemoveVertex(v int) {
	delete(m.Vertices, v)
	delete(m.incidence, v)
}

// Incidence returns the live set of face IDs incident to v (I2).
func (m *Mesh) Incidence(v int) map[int]struct{} {
	return m.incidence[v]
}

func (m *Mesh) addIncidence(v, faceID int) {
	set := m.incidence[v]
	if set == nil {
		set = make(map[int]struct{})
		m.incidence[v] = set
	}
	set[faceID] = struct{}{}
}

// FaceCount returns the number of live faces.
func (m *Mesh) FaceCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of live vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// Compact renumbers live vertices and faces into dense 0..n-1 ranges,
// returning the old->new vertex index map (the split recorder's emitted
// indices must be translated through it before serialization). This is
// the "final compaction pass" that runs only at output time — nothing
// during simplification or expansion depends on indices being dense.
func (m *Mesh) Compact() (vertexMap map[int]int) {
	vertexMap = make(map[int]int, len(m.Vertices))

	oldVerts := make([]int, 0, len(m.Vertices))
	for v := range m.Vertices {
		oldVerts = append(oldVerts, v)
	}
	sort.Ints(oldVerts)

	newVertices := make(map[int]mathkernel.Vec3, len(m.Vertices))
	for i, old := range oldVerts {
		vertexMap[old] = i
		newVertices[i] = m.Vertices[old]
	}

	oldFaces := make([]int, 0, len(m.Faces))
	for f := range m.Faces {
		oldFaces = append(oldFaces, f)
	}
	sort.Ints(oldFaces)

	newFaces := make(map[int]Triangle, len(m.Faces))
	for i, old := range oldFaces {
		t := m.Faces[old]
		newFaces[i] = Triangle{vertexMap[t[0]], vertexMap[t[1]], vertexMap[t[2]]}
	}

	m.Vertices = newVertices
	m.Faces = newFaces
	m.nextVertexID = len(newVertices)
	m.nextFaceID = len(newFaces)

	newIncidence := make(map[int]map[int]struct{}, len(newVertices))
	for faceID, t := range newFaces {
		for _, v := range t {
			set := newIncidence[v]
			if set == nil {
				set = make(map[int]struct{})
				newIncidence[v] = set
			}
			set[faceID] = struct{}{}
		}
	}
	m.incidence = newIncidence

	return vertexMap
}
