package scenegeo

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapcase/mapgeo_browser/utils"
)

// gridFlagFaceVisibility marks a grid that carries one visibility byte per
// face after its bucket table.
const gridFlagFaceVisibility = 1 << 0

// GeometryBucket is one cell of a bucket grid: a slice of the grid's shared
// index buffer plus how far the cell's faces stick out of its bounds.
type GeometryBucket struct {
	MaxStickoutX         float32
	MaxStickoutZ         float32
	StartIndex           uint32
	BaseVertex           uint32
	InsideFaceCount      uint16
	StickingOutFaceCount uint16
}

// BucketGrid is the uniform spatial index over a render region's simplified
// ground geometry. Buckets are stored row-major, BucketsPerSide per row.
type BucketGrid struct {
	// PathHash names the render region the grid belongs to (version >= 15).
	PathHash uint32
	// Reserved is carried verbatim for version >= 18 files.
	Reserved float32

	MinX, MinZ     float32
	MaxX, MaxZ     float32
	MaxStickoutX   float32
	MaxStickoutZ   float32
	BucketSizeX    float32
	BucketSizeZ    float32
	BucketsPerSide uint16
	Disabled       bool
	Flags          uint8

	Vertices []mgl32.Vec3
	Indices  []uint16
	Buckets  []GeometryBucket
	// FaceVisibility has one entry per face (len(Indices)/3) when flag bit 0
	// is set, nil otherwise.
	FaceVisibility []uint8
}

func (g *BucketGrid) FaceCount() int {
	return len(g.Indices) / 3
}

// Bucket returns the cell at grid coordinates (x, z).
func (g *BucketGrid) Bucket(x, z int) *GeometryBucket {
	return &g.Buckets[z*int(g.BucketsPerSide)+x]
}

func decodeBucketGrid(bs *utils.BufStack, layout versionLayout) BucketGrid {
	var g BucketGrid

	if layout.gridPathHash {
		g.PathHash = bs.ReadLU32()
	}
	if layout.gridReserved {
		g.Reserved = bs.ReadLF()
	}

	g.MinX = bs.ReadLF()
	g.MinZ = bs.ReadLF()
	g.MaxX = bs.ReadLF()
	g.MaxZ = bs.ReadLF()
	g.MaxStickoutX = bs.ReadLF()
	g.MaxStickoutZ = bs.ReadLF()
	g.BucketSizeX = bs.ReadLF()
	g.BucketSizeZ = bs.ReadLF()

	g.BucketsPerSide = bs.ReadLU16()
	g.Disabled = bs.ReadBool()
	g.Flags = bs.ReadByte()

	vertexCount := int(bs.ReadLU32())
	indexCount := int(bs.ReadLU32())

	if g.Disabled {
		return g
	}

	g.Vertices = make([]mgl32.Vec3, 0, vertexCount)
	for i := 0; i < vertexCount; i++ {
		g.Vertices = append(g.Vertices, readVec3(bs))
	}
	g.Indices = make([]uint16, 0, indexCount)
	for i := 0; i < indexCount; i++ {
		g.Indices = append(g.Indices, bs.ReadLU16())
	}

	bucketCount := int(g.BucketsPerSide) * int(g.BucketsPerSide)
	g.Buckets = make([]GeometryBucket, 0, bucketCount)
	for i := 0; i < bucketCount; i++ {
		g.Buckets = append(g.Buckets, GeometryBucket{
			MaxStickoutX:         bs.ReadLF(),
			MaxStickoutZ:         bs.ReadLF(),
			StartIndex:           bs.ReadLU32(),
			BaseVertex:           bs.ReadLU32(),
			InsideFaceCount:      bs.ReadLU16(),
			StickingOutFaceCount: bs.ReadLU16(),
		})
	}

	if g.Flags&gridFlagFaceVisibility != 0 {
		g.FaceVisibility = append([]uint8(nil), bs.Read(indexCount/3)...)
	}
	return g
}

func encodeBucketGrid(bw *utils.BufWriter, layout versionLayout, g *BucketGrid) {
	if layout.gridPathHash {
		bw.PutLU32(g.PathHash)
	}
	if layout.gridReserved {
		bw.PutLF(g.Reserved)
	}

	bw.PutLF(g.MinX)
	bw.PutLF(g.MinZ)
	bw.PutLF(g.MaxX)
	bw.PutLF(g.MaxZ)
	bw.PutLF(g.MaxStickoutX)
	bw.PutLF(g.MaxStickoutZ)
	bw.PutLF(g.BucketSizeX)
	bw.PutLF(g.BucketSizeZ)

	bw.PutLU16(g.BucketsPerSide)
	bw.PutBool(g.Disabled)
	bw.PutByte(g.Flags)

	bw.PutLU32(uint32(len(g.Vertices)))
	bw.PutLU32(uint32(len(g.Indices)))

	if g.Disabled {
		return
	}

	for _, v := range g.Vertices {
		putVec3(bw, v)
	}
	for _, idx := range g.Indices {
		bw.PutLU16(idx)
	}
	for i := range g.Buckets {
		b := &g.Buckets[i]
		bw.PutLF(b.MaxStickoutX)
		bw.PutLF(b.MaxStickoutZ)
		bw.PutLU32(b.StartIndex)
		bw.PutLU32(b.BaseVertex)
		bw.PutLU16(b.InsideFaceCount)
		bw.PutLU16(b.StickingOutFaceCount)
	}

	if g.Flags&gridFlagFaceVisibility != 0 {
		bw.PutBytes(g.FaceVisibility)
	}
}

// GridForMesh returns the bucket grid of the mesh's render region, or nil
// when the mesh has no region or the region has no grid.
func (doc *SceneDocument) GridForMesh(m *Mesh) *BucketGrid {
	if m.RenderRegionHash == 0 {
		return nil
	}
	for i := range doc.BucketGrids {
		if doc.BucketGrids[i].PathHash == m.RenderRegionHash {
			return &doc.BucketGrids[i]
		}
	}
	return nil
}

// MeshesForRegionName is MeshesForRegion over the region's path string,
// hashed the way the container references regions.
func (doc *SceneDocument) MeshesForRegionName(name string) []int {
	return doc.MeshesForRegion(utils.GameStringHashPath(name))
}

// MeshesForRegion returns the indices of every mesh tied to the render
// region.
func (doc *SceneDocument) MeshesForRegion(pathHash uint32) []int {
	var out []int
	for i := range doc.Meshes {
		if doc.Meshes[i].RenderRegionHash == pathHash {
			out = append(out, i)
		}
	}
	return out
}
