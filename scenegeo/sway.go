package scenegeo

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// Sway anchors ride in a dedicated secondary vertex buffer: one Texcoord7
// XYZFloat32 stream, one anchor position per vertex. Vegetation shaders bend
// each vertex around its anchor.

func swayAnchorDescription() VertexBufferDescription {
	return VertexBufferDescription{
		Elements: []VertexElement{{Name: Texcoord7, Format: XYZFloat32, Offset: 0}},
	}
}

// SwayAnchors extracts the mesh's anchor stream, nil when the mesh carries
// none.
func (doc *SceneDocument) SwayAnchors(m *Mesh) ([]mgl32.Vec3, error) {
	s, err := doc.findElementStream(m, Texcoord7, XYZFloat32)
	if err != nil {
		// a missing stream is the common case, not a fault
		if _, isRange := errors.Cause(err).(*RangeError); isRange {
			return nil, err
		}
		return nil, nil
	}
	out := make([]mgl32.Vec3, s.count)
	for i := range out {
		out[i] = s.vec3At(i)
	}
	return out, nil
}

// AttachSwayAnchors appends an anchor stream to the mesh, one anchor per
// vertex. The mesh's description block is re-issued at the end of the table
// with the anchor description appended; Encode's deduplication folds the
// copies back together.
func (doc *SceneDocument) AttachSwayAnchors(m *Mesh, anchors []mgl32.Vec3) error {
	if len(anchors) != int(m.VertexCount) {
		return errors.Errorf("mesh %q has %d vertices, got %d anchors", m.Name, m.VertexCount, len(anchors))
	}
	if existing, err := doc.SwayAnchors(m); err != nil {
		return err
	} else if existing != nil {
		return errors.Errorf("mesh %q already carries sway anchors", m.Name)
	}

	base := int(m.BaseDescriptionIndex)
	count := len(m.VertexBufferIndices)
	if base+count > len(doc.VertexDescriptions) {
		return &RangeError{Section: "meshes", Field: "vertexDescriptionIndex",
			Value: uint32(base + count), Limit: uint32(len(doc.VertexDescriptions))}
	}

	newBase := len(doc.VertexDescriptions)
	doc.VertexDescriptions = append(doc.VertexDescriptions, doc.VertexDescriptions[base:base+count]...)
	doc.VertexDescriptions = append(doc.VertexDescriptions, swayAnchorDescription())

	data := make([]byte, 0, len(anchors)*12)
	var scratch [4]byte
	for _, a := range anchors {
		for c := 0; c < 3; c++ {
			binary.LittleEndian.PutUint32(scratch[:], math.Float32bits(a[c]))
			data = append(data, scratch[:]...)
		}
	}
	doc.VertexBuffers = append(doc.VertexBuffers, VertexBuffer{LayerMask: 0xff, Data: data})

	m.BaseDescriptionIndex = uint32(newBase)
	m.VertexBufferIndices = append(m.VertexBufferIndices, uint32(len(doc.VertexBuffers)-1))
	return nil
}

// DetachSwayAnchors drops the mesh's anchor stream if present, reporting
// whether anything was removed. The buffer and descriptions stay in the
// document tables; Encode's deduplication drops what no mesh references.
func (doc *SceneDocument) DetachSwayAnchors(m *Mesh) (bool, error) {
	for i := range m.VertexBufferIndices {
		desc, err := doc.DescriptionForBuffer(m, i)
		if err != nil {
			return false, err
		}
		if _, ok := desc.FindElement(Texcoord7); !ok {
			continue
		}
		anchor := swayAnchorDescription()
		if !desc.equal(&anchor) || i != len(m.VertexBufferIndices)-1 {
			return false, errors.Errorf("mesh %q anchors are interleaved with other elements", m.Name)
		}
		m.VertexBufferIndices = m.VertexBufferIndices[:i]
		return true, nil
	}
	return false, nil
}
