// Package objfile parses and serializes the triangle-.obj subset used as
// this tool's mesh interchange format, including the `#vsplit` comment
// records that carry a progressive mesh's split stack. The shape mirrors
// the teacher's pkg/formats parsers (sentinel errors, fmt.Errorf("%w: ...")
// wrapping, a Parse/Write pair) even though the underlying format here is
// locale-independent text rather than fixed binary records.
package objfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/Faultbox/qslim/pkg/mathkernel"
	"github.com/Faultbox/qslim/pkg/mesh"
)

// .obj format errors.
var (
	ErrMalformedLine   = errors.New("malformed .obj line")
	ErrMalformedVSplit = errors.New("malformed #vsplit record")
)

// Parse reads the triangle-.obj subset from r: `v X Y Z` vertex lines,
// `f i1 i2 i3` 1-based face lines, and `#vsplit ...` split records. Every
// other line (blank, `#` comments, unsupported directives) is ignored.
// Vertices and faces are assigned stable 0-based indices in line order.
func Parse(r io.Reader) (*mesh.Mesh, error) {
	m := mesh.New()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16<<20)

	vertexCount := 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		switch {
		case strings.HasPrefix(line, "v "):
			pos, err := parseVertexLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.AddVertexAt(vertexCount, pos)
			vertexCount++

		case strings.HasPrefix(line, "f "):
			tri, err := parseFaceLine(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.AddFace(tri)

		case line == "#vsplit" || strings.HasPrefix(line, "#vsplit "):
			// The i-th split parsed (0-indexed) re-materializes a vertex at
			// 0-based index vertexCount+i on expansion — see Write's mirror
			// computation for why this stays in lockstep with the writer.
			futureVertex := vertexCount + len(m.Splits)
			split, err := parseVSplitLine(line, futureVertex)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			m.Splits = append(m.Splits, split)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, "reading .obj stream")
	}

	return m, nil
}

// ParseFile opens and parses path, wrapping any I/O failure with a stack
// trace (spec's IOError, surfaced verbatim to the caller).
func ParseFile(path string) (*mesh.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	m, err := Parse(f)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "parsing %s", path)
	}
	return m, nil
}

func parseVertexLine(line string) (mathkernel.Vec3, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return mathkernel.Vec3{}, fmt.Errorf("%w: %q (want \"v X Y Z\")", ErrMalformedLine, line)
	}
	var v mathkernel.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(fields[i+1], 64)
		if err != nil {
			return mathkernel.Vec3{}, fmt.Errorf("%w: %q: %v", ErrMalformedLine, line, err)
		}
		v[i] = f
	}
	return v, nil
}

func parseFaceLine(line string) (mesh.Triangle, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return mesh.Triangle{}, fmt.Errorf("%w: %q (want \"f i1 i2 i3\")", ErrMalformedLine, line)
	}
	var tri mesh.Triangle
	for i := 0; i < 3; i++ {
		idx, err := strconv.Atoi(fields[i+1])
		if err != nil || idx < 1 {
			return mesh.Triangle{}, fmt.Errorf("%w: %q: face index must be a positive integer", ErrMalformedLine, line)
		}
		tri[i] = idx - 1
	}
	return tri, nil
}

var braceTokens = strings.NewReplacer("{", " ", "}", " ", "(", " ", ")", " ")

// parseVSplitLine parses `#vsplit S {SX SY SZ} {TX TY TZ} { (a1 b1 c1) ... }`.
// futureVertex is the 0-based index the re-materialized vertex will receive
// on expansion and becomes this split's T. It is the slot Write reserved for
// this split's folded vertex, and the same index any later #vsplit line uses
// to reference that vertex — so S and face fields referencing another
// split's folded vertex need no translation, only this split's own
// futureVertex (recorded against its own faces) converts to the in-memory
// sentinel.
func parseVSplitLine(line string, futureVertex int) (mesh.VertexSplit, error) {
	fields := strings.Fields(braceTokens.Replace(line))
	// fields[0] is the "#vsplit" tag itself.
	const header = 1 + 1 + 3 + 3 // tag, S, SPos, TPos
	if len(fields) < header || (len(fields)-header)%3 != 0 {
		return mesh.VertexSplit{}, fmt.Errorf("%w: %q", ErrMalformedVSplit, line)
	}

	s, err := strconv.Atoi(fields[1])
	if err != nil || s < 1 {
		return mesh.VertexSplit{}, fmt.Errorf("%w: %q: bad S index", ErrMalformedVSplit, line)
	}

	sPos, err := parseVec3Fields(fields[2:5])
	if err != nil {
		return mesh.VertexSplit{}, fmt.Errorf("%w: %q: bad s_pos: %v", ErrMalformedVSplit, line, err)
	}
	tPos, err := parseVec3Fields(fields[5:8])
	if err != nil {
		return mesh.VertexSplit{}, fmt.Errorf("%w: %q: bad t_pos: %v", ErrMalformedVSplit, line, err)
	}

	faceFields := fields[header:]
	faces := make([]mesh.Triangle, 0, len(faceFields)/3)
	for i := 0; i < len(faceFields); i += 3 {
		var tri mesh.Triangle
		for j := 0; j < 3; j++ {
			raw, err := strconv.Atoi(faceFields[i+j])
			if err != nil || raw < 1 {
				return mesh.VertexSplit{}, fmt.Errorf("%w: %q: bad face index", ErrMalformedVSplit, line)
			}
			zeroBased := raw - 1
			if zeroBased == futureVertex {
				tri[j] = mesh.SentinelRemoved
			} else {
				tri[j] = zeroBased
			}
		}
		faces = append(faces, tri)
	}

	return mesh.VertexSplit{
		S:     s - 1,
		SPos:  sPos,
		T:     futureVertex,
		TPos:  tPos,
		Faces: faces,
	}, nil
}

func parseVec3Fields(fields []string) (mathkernel.Vec3, error) {
	var v mathkernel.Vec3
	for i, field := range fields {
		f, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return mathkernel.Vec3{}, err
		}
		v[i] = f
	}
	return v, nil
}
