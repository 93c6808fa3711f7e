package ads

import (
	"testing"

	"github.com/sixy6e/wavetrace/mesh"
	"github.com/sixy6e/wavetrace/quantity"
	"github.com/sixy6e/wavetrace/shapes"
)

func unitTriangle(offset float64) shapes.Triangle {
	n := quantity.NewUnit3(0, 0, 1)
	ox := quantity.Length(offset)
	return shapes.Triangle{
		A: quantity.Vec3{X: ox, Y: 0, Z: 0},
		B: quantity.Vec3{X: ox + 1, Y: 0, Z: 0},
		C: quantity.Vec3{X: ox, Y: 1, Z: 0},
		N: n,
	}
}

func gridShapes(n int) []*mesh.Shape {
	var tris []shapes.Triangle
	for i := 0; i < n; i++ {
		tris = append(tris, unitTriangle(float64(i)*3))
	}
	return []*mesh.Shape{{Triangles: tris}}
}

func TestBuildRejectsEmptyScene(t *testing.T) {
	_, err := Build([]*mesh.Shape{{}}, nil, BuildOptions{})
	if err == nil {
		t.Fatal("expected ErrNoTriangles for an empty shape set")
	}
}

func TestBuildRootIsInteriorNode(t *testing.T) {
	bvh, err := Build(gridShapes(1), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(bvh.Nodes) <= RootIndex {
		t.Fatalf("expected at least %d nodes, got %d", RootIndex+1, len(bvh.Nodes))
	}
	root := bvh.Nodes[RootIndex]
	hasChild := false
	for _, c := range root.Child {
		if !IsPtrEmpty(c) {
			hasChild = true
		}
	}
	if !hasChild {
		t.Fatal("root node has no occupied child slots")
	}
}

func TestIntersectFindsCentroidHit(t *testing.T) {
	bvh, err := Build(gridShapes(40), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tri := bvh.Tris[17]
	r := shapes.Ray{O: tri.Centroid().Add(quantity.Vec3{Z: 5}), D: quantity.NewUnit3(0, 0, -1)}
	hit, ok := bvh.Intersect(r, quantity.FullRange(), 0, false, nil)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.Dist <= 0 {
		t.Fatalf("expected positive hit distance, got %v", hit.Dist)
	}
}

func TestIntersectMissesEmptySpace(t *testing.T) {
	bvh, err := Build(gridShapes(10), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := shapes.Ray{O: quantity.Vec3{X: 1000, Y: 1000, Z: 10}, D: quantity.NewUnit3(0, 0, -1)}
	_, ok := bvh.Intersect(r, quantity.FullRange(), 0, false, nil)
	if ok {
		t.Fatal("expected no hit far from every triangle")
	}
}

func TestShadowAgreesWithIntersect(t *testing.T) {
	bvh, err := Build(gridShapes(20), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	tri := bvh.Tris[3]
	r := shapes.Ray{O: tri.Centroid().Add(quantity.Vec3{Z: 5}), D: quantity.NewUnit3(0, 0, -1)}
	_, hit := bvh.Intersect(r, quantity.FullRange(), 0, false, nil)
	shadow := bvh.Shadow(r, quantity.FullRange(), 0, false, nil)
	if hit != shadow {
		t.Fatalf("Intersect found=%v but Shadow=%v disagree", hit, shadow)
	}
}

func TestIntersectConeVisitsOverlappingTriangles(t *testing.T) {
	bvh, err := Build(gridShapes(30), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	target := bvh.Tris[12].Centroid()
	r := shapes.Ray{O: quantity.Vec3{X: target.X, Y: target.Y, Z: 10}, D: quantity.NewUnit3(0, 0, -1)}
	cone := shapes.NewEllipticCone(r, quantity.BuildOrthogonalFrame(r.D).X, 0.05, 0, 0.2)

	var visited []uint32
	bvh.IntersectCone(cone, quantity.FullRange(), func(tri uint32, _ quantity.Length) bool {
		visited = append(visited, tri)
		return true
	}, nil)
	if len(visited) == 0 {
		t.Fatal("expected the narrow cone aimed at a known triangle to visit at least one triangle")
	}
}

func TestQueryBallVisitsNearbyTriangles(t *testing.T) {
	bvh, err := Build(gridShapes(10), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	ball := shapes.Ellipsoid{Centre: bvh.Tris[0].Centroid(), Radius: 0.1}

	found := false
	bvh.QueryBall(ball, func(uint32) bool {
		found = true
		return false
	}, nil)
	if !found {
		t.Fatal("expected a ball centred on a triangle's centroid to find it")
	}
}

func TestQueryStatsCountInteriorVisits(t *testing.T) {
	bvh, err := Build(gridShapes(50), nil, BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r := shapes.Ray{O: quantity.Vec3{X: 1000, Y: 1000, Z: 10}, D: quantity.NewUnit3(0, 0, -1)}
	var stats QueryStats
	bvh.Intersect(r, quantity.FullRange(), 0, false, &stats)
	if stats.RayInteriorTests == 0 {
		t.Fatal("expected at least the root node to be visited")
	}
}
