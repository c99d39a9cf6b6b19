package objfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"

	pkgerrors "github.com/pkg/errors"

	"github.com/Faultbox/qslim/pkg/mesh"
)

// Write compacts m to dense 0-based indices and serializes it as the
// triangle-.obj subset: a `# <count> vertices` comment followed by `v`
// lines, a `# <count> faces` comment followed by `f` lines, and one
// `#vsplit` comment per pending split, in replay order (front of m.Splits
// first) so file order already equals the order the expander consumes.
func Write(w io.Writer, m *mesh.Mesh) error {
	vertexMap := m.Compact()

	bw := bufio.NewWriter(w)

	vertexIDs := make([]int, 0, len(m.Vertices))
	for v := range m.Vertices {
		vertexIDs = append(vertexIDs, v)
	}
	sort.Ints(vertexIDs)

	fmt.Fprintf(bw, "# %d vertices\n", len(vertexIDs))
	for _, v := range vertexIDs {
		p := m.Vertices[v]
		fmt.Fprintf(bw, "v %g %g %g\n", p[0], p[1], p[2])
	}

	faceIDs := make([]int, 0, len(m.Faces))
	for f := range m.Faces {
		faceIDs = append(faceIDs, f)
	}
	sort.Ints(faceIDs)

	fmt.Fprintf(bw, "# %d faces\n", len(faceIDs))
	for _, f := range faceIDs {
		t := m.Faces[f]
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}

	// Every split's T is a vertex that is dead by the time Compact runs (it
	// only comes back on expansion), so it needs its own output slot, one
	// past every live vertex, in replay order — mirroring Parse's
	// futureVertex computation exactly, since both start counting from the
	// same compacted vertex count and advance one per split. Collecting all
	// of them up front (not just the split's own sentinel slot) is what
	// lets a split's recorded faces or S reference a vertex that a different
	// split, one that replays (and is written) before it, re-materializes.
	base := len(vertexIDs)
	deadSlot := make(map[int]int, len(m.Splits))
	for i, split := range m.Splits {
		deadSlot[split.T] = base + i
	}

	for _, split := range m.Splits {
		if err := writeVSplit(bw, split, vertexMap, deadSlot); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteFile serializes m to path, wrapping I/O failures with a stack trace.
func WriteFile(path string, m *mesh.Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerrors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	if err := Write(f, m); err != nil {
		return pkgerrors.Wrapf(err, "writing %s", path)
	}
	return nil
}

func writeVSplit(w io.Writer, split mesh.VertexSplit, vertexMap, deadSlot map[int]int) error {
	// S is usually still live, but a contraction's survivor can itself be
	// folded away by a later contraction, so it resolves through the same
	// live-or-dead lookup as every face reference.
	s, err := resolveWriteIndex(split.S, vertexMap, deadSlot)
	if err != nil {
		return fmt.Errorf("%w: split survivor %d: %v", ErrMalformedVSplit, split.S, err)
	}

	fmt.Fprintf(w, "#vsplit %d {%g %g %g} {%g %g %g} {",
		s, split.SPos[0], split.SPos[1], split.SPos[2],
		split.TPos[0], split.TPos[1], split.TPos[2])

	for i, face := range split.Faces {
		if i > 0 {
			io.WriteString(w, " ")
		}
		a, err := resolveFaceIndex(face[0], split.T, vertexMap, deadSlot)
		if err != nil {
			return err
		}
		b, err := resolveFaceIndex(face[1], split.T, vertexMap, deadSlot)
		if err != nil {
			return err
		}
		c, err := resolveFaceIndex(face[2], split.T, vertexMap, deadSlot)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "(%d %d %d)", a, b, c)
	}
	io.WriteString(w, "}\n")
	return nil
}

// resolveFaceIndex converts a recorded face index to its 1-based output
// index. idx is SentinelRemoved for this split's own t slot, which always
// resolves through t's own dead-vertex slot.
func resolveFaceIndex(idx, t int, vertexMap, deadSlot map[int]int) (int, error) {
	if idx == mesh.SentinelRemoved {
		idx = t
	}
	out, err := resolveWriteIndex(idx, vertexMap, deadSlot)
	if err != nil {
		return 0, fmt.Errorf("%w: recorded split face references vertex %d: %v", ErrMalformedVSplit, idx, err)
	}
	return out, nil
}

// resolveWriteIndex maps an original stable vertex index to its 1-based
// output index: either its live compacted slot, or — if it's a vertex some
// pending split folds away — that split's reserved re-materialization
// slot, one past the live vertex range, in replay order.
func resolveWriteIndex(idx int, vertexMap, deadSlot map[int]int) (int, error) {
	if live, ok := vertexMap[idx]; ok {
		return live + 1, nil
	}
	if dead, ok := deadSlot[idx]; ok {
		return dead + 1, nil
	}
	return 0, fmt.Errorf("vertex %d is neither live nor a pending split's folded vertex", idx)
}
