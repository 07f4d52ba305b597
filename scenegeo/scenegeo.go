// Package scenegeo reads and writes the versioned binary scene geometry
// container: vertex/index buffers, mesh records with visibility and quality
// metadata, the spatial bucket grid section and planar reflectors. Decode and
// encode are single-pass over in-memory buffers; separate documents may be
// processed concurrently, one document must not be shared between passes.
package scenegeo

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapcase/mapgeo_browser/visibility"
)

type SamplerDef struct {
	Index int32
	Name  string
}

// VertexBuffer holds raw interleaved vertex bytes. Its layout is given by
// the description each referencing mesh resolves for it.
type VertexBuffer struct {
	LayerMask uint8
	Data      []byte
}

// IndexBuffer holds raw 16-bit triangle list indices.
type IndexBuffer struct {
	LayerMask uint8
	Data      []byte
}

func (ib *IndexBuffer) IndexCount() int {
	return len(ib.Data) / 2
}

// Primitive is one material range of a mesh's index buffer.
type Primitive struct {
	MaterialHash uint32
	Material     string
	StartIndex   uint32
	IndexCount   uint32
	MinVertex    uint32
	MaxVertex    uint32
}

// LightChannel is one baked/stationary lighting binding: a lightmap texture
// plus the UV window of the mesh inside its atlas.
type LightChannel struct {
	Texture string
	UvScale mgl32.Vec2
	UvBias  mgl32.Vec2
}

func (lc *LightChannel) Empty() bool {
	return lc.Texture == "" && lc.UvScale == (mgl32.Vec2{}) && lc.UvBias == (mgl32.Vec2{})
}

// TextureOverride remaps one sampler slot of the mesh's material.
type TextureOverride struct {
	Index   uint32
	Texture string
}

type Mesh struct {
	// Name is a display name only; formats in this version range do not
	// store names, decode assigns deterministic placeholders.
	Name string

	VertexCount uint32
	// BaseDescriptionIndex is the description of vertex buffer 0; buffer i
	// uses description BaseDescriptionIndex+i.
	BaseDescriptionIndex uint32
	VertexBufferIndices  []uint32

	IndexCount       uint32
	IndexBufferIndex uint32

	// VisibilityLayer: bit k set = visible while environment state k is
	// active. 0 and 255 both mean every layer.
	VisibilityLayer uint8
	// RenderRegionHash ties the mesh to a bucket grid render region
	// (version >= 18 only).
	RenderRegionHash uint32
	// BaronHash references the override controller graph, 0 = absent
	// (version >= 15 only).
	BaronHash uint32

	Primitives []Primitive

	DisableBackfaceCulling bool

	// BBoxMin/BBoxMax are computed from the mesh's own vertex positions in
	// LOCAL space. Never bake the transform in here: downstream culling
	// multiplies by Transform itself.
	BBoxMin   mgl32.Vec3
	BBoxMax   mgl32.Vec3
	Transform mgl32.Mat4

	QualityMask visibility.QualityMask

	LayerTransitionBehavior uint8
	RenderFlags             uint16

	BakedLight      LightChannel
	StationaryLight LightChannel
	// BakedPaint is a legacy channel slot carried by versions 13-16.
	BakedPaint LightChannel

	TextureOverrides []TextureOverride
	BakedPaintScale  mgl32.Vec2
	BakedPaintBias   mgl32.Vec2
}

// DescriptionIndexForBuffer resolves the description of the i-th vertex
// buffer of the mesh. Descriptions of one mesh are consecutive; reusing the
// base index for every buffer is a known defect class.
func (m *Mesh) DescriptionIndexForBuffer(i int) uint32 {
	return m.BaseDescriptionIndex + uint32(i)
}

func (m *Mesh) State() visibility.MeshState {
	return visibility.MeshState{LayerMask: m.VisibilityLayer, BaronHash: m.BaronHash}
}

// PlanarReflector mirrors geometry across a bounded plane.
type PlanarReflector struct {
	Transform mgl32.Mat4
	Plane     [2]mgl32.Vec3
	Normal    mgl32.Vec3
}

// SceneDocument is the root aggregate of one decoded container. It is fully
// materialized by Decode and re-serialized in one Encode pass; there are no
// partial in-place on-disk updates.
type SceneDocument struct {
	Version uint32

	SamplerDefs        []SamplerDef
	VertexDescriptions []VertexBufferDescription
	VertexBuffers      []VertexBuffer
	IndexBuffers       []IndexBuffer
	Meshes             []Mesh
	BucketGrids        []BucketGrid
	PlanarReflectors   []PlanarReflector
}

// DescriptionForBuffer resolves the description of the i-th buffer of a mesh
// against the document's description table.
func (doc *SceneDocument) DescriptionForBuffer(m *Mesh, i int) (*VertexBufferDescription, error) {
	idx := m.DescriptionIndexForBuffer(i)
	if int(idx) >= len(doc.VertexDescriptions) {
		return nil, &RangeError{Section: "meshes", Field: "vertexDescriptionIndex",
			Value: idx, Limit: uint32(len(doc.VertexDescriptions))}
	}
	return &doc.VertexDescriptions[idx], nil
}
