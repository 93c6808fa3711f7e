package scene

import (
	"strings"
	"testing"

	"github.com/sixy6e/wavetrace/quantity"
)

func TestRectTrianglesSpansFourCorners(t *testing.T) {
	p0 := quantity.Vec3{X: 0, Y: 0, Z: 0}
	p1 := quantity.Vec3{X: 1, Y: 0, Z: 0}
	p2 := quantity.Vec3{X: 1, Y: 1, Z: 0}
	p3 := quantity.Vec3{X: 0, Y: 1, Z: 0}

	tris := rectTriangles(p0, p1, p2, p3)
	if len(tris) != 2 {
		t.Fatalf("len(tris) = %d, want 2", len(tris))
	}
	var total quantity.Length2
	for _, tr := range tris {
		if tr.Degenerate() {
			t.Fatal("unexpected degenerate triangle in a unit square")
		}
		total += tr.Area()
	}
	if diff := float64(total) - 1; diff < -1e-9 || diff > 1e-9 {
		t.Fatalf("total area = %v, want 1", total)
	}
	if tris[0].N.Z <= 0 {
		t.Fatalf("normal Z = %v, want > 0 for a counter-clockwise XY-plane rect", tris[0].N.Z)
	}
}

func TestBuildTrianglesDispatchesByType(t *testing.T) {
	p := shapeParams{
		Type: "rect",
		P0:   quantity.Vec3{X: 0, Y: 0, Z: 0},
		P1:   quantity.Vec3{X: 1, Y: 0, Z: 0},
		P2:   quantity.Vec3{X: 1, Y: 1, Z: 0},
		P3:   quantity.Vec3{X: 0, Y: 1, Z: 0},
	}
	tris, err := buildTriangles(p, nil)
	if err != nil {
		t.Fatalf("buildTriangles: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("len(tris) = %d, want 2", len(tris))
	}
}

func TestBuildTrianglesUnknownTypeErrors(t *testing.T) {
	if _, err := buildTriangles(shapeParams{Type: "sphere"}, nil); err == nil {
		t.Fatal("expected an error for an unrecognized shape type")
	}
}

func TestBuildTrianglesObjMissingFilenameErrors(t *testing.T) {
	if _, err := buildTriangles(shapeParams{Type: "obj"}, nil); err == nil {
		t.Fatal("expected an error for <shape type=\"obj\"> with no filename")
	}
}

func TestParseOBJTriangulatesQuadFace(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 1 1 0\nv 0 1 0\nf 1 2 3 4\n"
	tris, err := parseOBJ(strings.NewReader(src), 1.0)
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("len(tris) = %d, want 2 (fan-triangulated quad)", len(tris))
	}
}

func TestParseOBJIgnoresVertexNormalTextureSuffix(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1/1/1 2/2/1 3/3/1\n"
	tris, err := parseOBJ(strings.NewReader(src), 1.0)
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if len(tris) != 1 {
		t.Fatalf("len(tris) = %d, want 1", len(tris))
	}
}

func TestParseOBJRejectsOutOfRangeFaceIndex(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 9\n"
	if _, err := parseOBJ(strings.NewReader(src), 1.0); err == nil {
		t.Fatal("expected an error for an out-of-range face index")
	}
}

func TestParseOBJRejectsNoTriangles(t *testing.T) {
	src := "v 0 0 0\nv 1 0 0\nv 0 1 0\n"
	if _, err := parseOBJ(strings.NewReader(src), 1.0); err == nil {
		t.Fatal("expected an error for a mesh with no faces")
	}
}

func TestParseOBJScalesVertexPositions(t *testing.T) {
	src := "v 0 0 0\nv 2 0 0\nv 0 2 0\nf 1 2 3\n"
	tris, err := parseOBJ(strings.NewReader(src), 0.5)
	if err != nil {
		t.Fatalf("parseOBJ: %v", err)
	}
	if tris[0].B.X != 1 || tris[0].C.Y != 1 {
		t.Fatalf("got B=%+v C=%+v, want vertex positions scaled by 0.5", tris[0].B, tris[0].C)
	}
}
