package scenegeo

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapcase/mapgeo_browser/utils"
)

func TestMeshPositions(t *testing.T) {
	doc := testDocument(17)
	m := &doc.Meshes[0]

	positions, err := doc.MeshPositions(m)
	if err != nil {
		t.Fatal(err)
	}
	want := []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}
	if len(positions) != len(want) {
		t.Fatalf("positions = %d, want %d", len(positions), len(want))
	}
	for i := range want {
		if positions[i] != want[i] {
			t.Errorf("position %d = %v, want %v", i, positions[i], want[i])
		}
	}
}

// Recomputed bounds must stay in local space: moving the transform far away
// must not move the box.
func TestRecomputeLocalBoundsIgnoresTransform(t *testing.T) {
	doc := testDocument(17)
	m := &doc.Meshes[0]
	m.Transform = mgl32.Translate3D(10000, -5000, 300)
	m.BBoxMin = mgl32.Vec3{-99, -99, -99}
	m.BBoxMax = mgl32.Vec3{99, 99, 99}

	if err := doc.RecomputeLocalBounds(m); err != nil {
		t.Fatal(err)
	}
	if m.BBoxMin != (mgl32.Vec3{0, 0, 0}) || m.BBoxMax != (mgl32.Vec3{1, 1, 0}) {
		t.Errorf("local bounds = %v %v, want {0 0 0} {1 1 0}", m.BBoxMin, m.BBoxMax)
	}

	// the world box is where the transform shows up
	worldMin, worldMax := m.WorldBounds()
	if worldMin != (mgl32.Vec3{10000, -5000, 300}) || worldMax != (mgl32.Vec3{10001, -4999, 300}) {
		t.Errorf("world bounds = %v %v", worldMin, worldMax)
	}
}

func TestSwayAnchorsRoundTrip(t *testing.T) {
	doc := testDocument(17)
	m := &doc.Meshes[0]

	if anchors, err := doc.SwayAnchors(m); err != nil || anchors != nil {
		t.Fatalf("fresh mesh anchors = %v, %v", anchors, err)
	}

	want := []mgl32.Vec3{{0, 5, 0}, {1, 5, 0}, {0, 6, 0}}
	if err := doc.AttachSwayAnchors(m, want); err != nil {
		t.Fatal(err)
	}
	if err := doc.AttachSwayAnchors(m, want); err == nil {
		t.Fatal("double attach succeeded")
	}

	got, err := doc.SwayAnchors(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("anchors = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("anchor %d = %v, want %v", i, got[i], want[i])
		}
	}

	// the stream must survive the codec
	encoded, err := Encode(doc)
	if err != nil {
		t.Fatal(err)
	}
	redoc, err := Decode(encoded)
	if err != nil {
		t.Fatal(err)
	}
	reAnchors, err := redoc.SwayAnchors(&redoc.Meshes[0])
	if err != nil {
		t.Fatal(err)
	}
	if len(reAnchors) != len(want) || reAnchors[2] != want[2] {
		t.Errorf("decoded anchors = %v", reAnchors)
	}

	// positions keep working beside the extra stream
	if positions, err := doc.MeshPositions(m); err != nil || positions[1] != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("positions after attach = %v, %v", positions, err)
	}

	if removed, err := doc.DetachSwayAnchors(m); err != nil || !removed {
		t.Fatalf("detach = %v, %v", removed, err)
	}
	if anchors, err := doc.SwayAnchors(m); err != nil || anchors != nil {
		t.Errorf("anchors after detach = %v, %v", anchors, err)
	}
}

func TestGridMeshAssociation(t *testing.T) {
	doc := testDocument(18)

	m := &doc.Meshes[0]
	grid := doc.GridForMesh(m)
	if grid == nil || grid.PathHash != m.RenderRegionHash {
		t.Fatalf("grid for mesh = %+v", grid)
	}

	if got := doc.MeshesForRegion(0xcafe0000); len(got) != 1 || got[0] != 0 {
		t.Errorf("meshes for region = %v", got)
	}
	if got := doc.MeshesForRegion(0x12345678); got != nil {
		t.Errorf("meshes for unknown region = %v", got)
	}
	if grid := doc.GridForMesh(&Mesh{}); grid != nil {
		t.Errorf("grid for regionless mesh = %+v", grid)
	}

	// regions are addressable by path string too
	const region = "Maps/KitPieces/SRS/Grids/Baron"
	m.RenderRegionHash = utils.GameStringHashPath(region)
	if got := doc.MeshesForRegionName(region); len(got) != 1 || got[0] != 0 {
		t.Errorf("meshes for region name = %v", got)
	}
	if got := doc.MeshesForRegionName("no/such/region"); got != nil {
		t.Errorf("meshes for unknown region name = %v", got)
	}
}
