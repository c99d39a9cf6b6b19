package simplify

import (
	"math"
	"testing"

	"github.com/Faultbox/qslim/pkg/expand"
	"github.com/Faultbox/qslim/pkg/mathkernel"
	"github.com/Faultbox/qslim/pkg/mesh"
)

func approxEqual(a, b mathkernel.Vec3, tol float64) bool {
	return math.Abs(a[0]-b[0]) <= tol && math.Abs(a[1]-b[1]) <= tol && math.Abs(a[2]-b[2]) <= tol
}

func tetrahedron() *mesh.Mesh {
	m := mesh.New()
	m.AddVertexAt(0, mathkernel.Vec3{0, 0, 0})
	m.AddVertexAt(1, mathkernel.Vec3{1, 0, 0})
	m.AddVertexAt(2, mathkernel.Vec3{0, 1, 0})
	m.AddVertexAt(3, mathkernel.Vec3{0, 0, 1})
	m.AddFace(mesh.Triangle{0, 1, 2})
	m.AddFace(mesh.Triangle{0, 3, 1})
	m.AddFace(mesh.Triangle{0, 2, 3})
	m.AddFace(mesh.Triangle{1, 3, 2})
	return m
}

func flatQuad() *mesh.Mesh {
	m := mesh.New()
	m.AddVertexAt(0, mathkernel.Vec3{0, 0, 0})
	m.AddVertexAt(1, mathkernel.Vec3{1, 0, 0})
	m.AddVertexAt(2, mathkernel.Vec3{1, 1, 0})
	m.AddVertexAt(3, mathkernel.Vec3{0, 1, 0})
	m.AddFace(mesh.Triangle{0, 1, 2})
	m.AddFace(mesh.Triangle{0, 2, 3})
	return m
}

func TestSimplify_TetrahedronToTwoFaces(t *testing.T) {
	m := tetrahedron()
	out, err := Simplify(m, Options{TargetFaces: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FaceCount() > 2 {
		t.Errorf("expected at most 2 faces, got %d", out.FaceCount())
	}
	assertNoDegenerateFaces(t, out)
	assertIncidenceConsistent(t, out)
}

func TestSimplify_FlatQuadCollapsesToOneFace(t *testing.T) {
	m := flatQuad()
	out, err := Simplify(m, Options{TargetFaces: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.FaceCount() != 1 {
		t.Errorf("expected exactly 1 face, got %d", out.FaceCount())
	}
}

func TestSimplify_RoundTripRestoresTetrahedron(t *testing.T) {
	original := tetrahedron()
	originalPositions := make(map[int]mathkernel.Vec3, len(original.Vertices))
	for k, v := range original.Vertices {
		originalPositions[k] = v
	}

	m := tetrahedron()
	simplified, err := Simplify(m, Options{TargetFaces: 2, RecordSplits: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	restored, err := expand.Expand(simplified, 4)
	if err != nil {
		t.Fatalf("unexpected expand error: %v", err)
	}

	if restored.FaceCount() != 4 {
		t.Fatalf("expected round-trip to restore 4 faces, got %d", restored.FaceCount())
	}
	if restored.VertexCount() != 4 {
		t.Fatalf("expected round-trip to restore 4 vertices, got %d", restored.VertexCount())
	}
	assertPositionSetMatches(t, originalPositions, restored.Vertices)
}

// assertPositionSetMatches checks that got holds exactly the same multiset
// of positions as want, without requiring matching keys — P5 only promises
// the restored mesh is geometrically identical, not that re-materialized
// vertices keep any particular index.
func assertPositionSetMatches(t *testing.T, want, got map[int]mathkernel.Vec3) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d vertices, got %d", len(want), len(got))
	}
	remaining := make([]mathkernel.Vec3, 0, len(got))
	for _, pos := range got {
		remaining = append(remaining, pos)
	}
	for _, wantPos := range want {
		found := -1
		for i, pos := range remaining {
			if approxEqual(pos, wantPos, 1e-9) {
				found = i
				break
			}
		}
		if found < 0 {
			t.Errorf("expected a restored vertex at %v, none found", wantPos)
			continue
		}
		remaining = append(remaining[:found], remaining[found+1:]...)
	}
}

func octahedron() *mesh.Mesh {
	m := mesh.New()
	m.AddVertexAt(0, mathkernel.Vec3{1, 0, 0})
	m.AddVertexAt(1, mathkernel.Vec3{-1, 0, 0})
	m.AddVertexAt(2, mathkernel.Vec3{0, 1, 0})
	m.AddVertexAt(3, mathkernel.Vec3{0, -1, 0})
	m.AddVertexAt(4, mathkernel.Vec3{0, 0, 1})
	m.AddVertexAt(5, mathkernel.Vec3{0, 0, -1})
	m.AddFace(mesh.Triangle{0, 2, 4})
	m.AddFace(mesh.Triangle{2, 1, 4})
	m.AddFace(mesh.Triangle{1, 3, 4})
	m.AddFace(mesh.Triangle{3, 0, 4})
	m.AddFace(mesh.Triangle{2, 0, 5})
	m.AddFace(mesh.Triangle{1, 2, 5})
	m.AddFace(mesh.Triangle{3, 1, 5})
	m.AddFace(mesh.Triangle{0, 3, 5})
	return m
}

// TestSimplify_ChainedContractionsRoundTrip collapses an octahedron down to
// 2 faces, which takes several chained contractions, then expands all the
// way back. This guards against a recorded split referencing a vertex that
// only an earlier-replaying split re-materializes (a contraction survivor
// that a subsequent contraction later folds away).
func TestSimplify_ChainedContractionsRoundTrip(t *testing.T) {
	original := octahedron()
	originalPositions := make(map[int]mathkernel.Vec3, len(original.Vertices))
	for k, v := range original.Vertices {
		originalPositions[k] = v
	}

	m := octahedron()
	simplified, err := Simplify(m, Options{TargetFaces: 2, RecordSplits: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(simplified.Splits) < 2 {
		t.Fatalf("expected at least 2 chained splits, got %d", len(simplified.Splits))
	}

	restored, err := expand.Expand(simplified, 8)
	if err != nil {
		t.Fatalf("unexpected expand error: %v", err)
	}
	if restored.FaceCount() != 8 {
		t.Fatalf("expected round-trip to restore 8 faces, got %d", restored.FaceCount())
	}
	if restored.VertexCount() != 6 {
		t.Fatalf("expected round-trip to restore 6 vertices, got %d", restored.VertexCount())
	}
	assertPositionSetMatches(t, originalPositions, restored.Vertices)
	assertNoDegenerateFaces(t, restored)
}

func TestSimplify_DistancePairingMergesDisjointTriangles(t *testing.T) {
	m := mesh.New()
	// Two disjoint triangles; closest cross-vertex distance is 0.5.
	m.AddVertexAt(0, mathkernel.Vec3{0, 0, 0})
	m.AddVertexAt(1, mathkernel.Vec3{1, 0, 0})
	m.AddVertexAt(2, mathkernel.Vec3{0, 1, 0})
	m.AddVertexAt(3, mathkernel.Vec3{1.5, 0, 0})
	m.AddVertexAt(4, mathkernel.Vec3{2.5, 0, 0})
	m.AddVertexAt(5, mathkernel.Vec3{1.5, 1, 0})
	m.AddFace(mesh.Triangle{0, 1, 2})
	m.AddFace(mesh.Triangle{3, 4, 5})

	out, err := Simplify(m, Options{TargetFaces: 2, DistanceThreshold: 0.6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A cross-component contraction must have happened: fewer than 6
	// vertices remain even though no face was removed by edge collapse
	// alone (the two components share no edges).
	if out.VertexCount() >= 6 {
		t.Errorf("expected distance pairing to merge the two components, got %d vertices", out.VertexCount())
	}
}

func TestSimplify_StrictFailsOnDegenerateFace(t *testing.T) {
	m := mesh.New()
	m.AddVertexAt(0, mathkernel.Vec3{0, 0, 0})
	m.AddVertexAt(1, mathkernel.Vec3{1, 1, 1})
	m.AddVertexAt(2, mathkernel.Vec3{2, 2, 2})
	m.AddFace(mesh.Triangle{0, 1, 2})

	if _, err := Simplify(m, Options{TargetFaces: 0, Strict: true}); err == nil {
		t.Fatal("expected strict mode to reject a degenerate face")
	}
}

func assertNoDegenerateFaces(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	for id, tri := range m.Faces {
		if tri.Degenerate() {
			t.Errorf("face %d is degenerate: %v", id, tri)
		}
	}
}

func assertIncidenceConsistent(t *testing.T, m *mesh.Mesh) {
	t.Helper()
	want := make(map[int]map[int]struct{})
	for id, tri := range m.Faces {
		for _, v := range tri {
			if want[v] == nil {
				want[v] = make(map[int]struct{})
			}
			want[v][id] = struct{}{}
		}
	}
	for v := range m.Vertices {
		got := m.Incidence(v)
		wantSet := want[v]
		if len(got) != len(wantSet) {
			t.Errorf("vertex %d: incidence has %d entries, want %d", v, len(got), len(wantSet))
			continue
		}
		for id := range wantSet {
			if _, ok := got[id]; !ok {
				t.Errorf("vertex %d: incidence missing face %d", v, id)
			}
		}
	}
}
