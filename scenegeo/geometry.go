package scenegeo

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// elementStream locates an element inside a mesh's vertex buffers: which
// buffer holds it and where inside each interleaved vertex.
type elementStream struct {
	data   []byte
	offset int
	stride int
	count  int
}

func (doc *SceneDocument) findElementStream(m *Mesh, name ElementName, format ElementFormat) (*elementStream, error) {
	for i, vbIndex := range m.VertexBufferIndices {
		desc, err := doc.DescriptionForBuffer(m, i)
		if err != nil {
			return nil, err
		}
		e, ok := desc.FindElement(name)
		if !ok {
			continue
		}
		if e.Format != format {
			return nil, errors.Errorf("mesh %q element %v has format %d, want %d", m.Name, name, e.Format, format)
		}

		vb := &doc.VertexBuffers[vbIndex]
		stride := int(desc.Stride())
		count := int(m.VertexCount)
		if stride > 0 && count > len(vb.Data)/stride {
			count = len(vb.Data) / stride
		}
		return &elementStream{
			data:   vb.Data,
			offset: int(e.Offset),
			stride: stride,
			count:  count,
		}, nil
	}
	return nil, errors.Errorf("mesh %q has no %v element", m.Name, name)
}

func (s *elementStream) vec2At(i int) mgl32.Vec2 {
	at := i*s.stride + s.offset
	return mgl32.Vec2{
		math.Float32frombits(binary.LittleEndian.Uint32(s.data[at:])),
		math.Float32frombits(binary.LittleEndian.Uint32(s.data[at+4:])),
	}
}

func (s *elementStream) vec3At(i int) mgl32.Vec3 {
	at := i*s.stride + s.offset
	return mgl32.Vec3{
		math.Float32frombits(binary.LittleEndian.Uint32(s.data[at:])),
		math.Float32frombits(binary.LittleEndian.Uint32(s.data[at+4:])),
		math.Float32frombits(binary.LittleEndian.Uint32(s.data[at+8:])),
	}
}

// MeshPositions extracts the mesh's vertex positions, still in local space.
func (doc *SceneDocument) MeshPositions(m *Mesh) ([]mgl32.Vec3, error) {
	s, err := doc.findElementStream(m, Position, XYZFloat32)
	if err != nil {
		return nil, err
	}
	out := make([]mgl32.Vec3, s.count)
	for i := range out {
		out[i] = s.vec3At(i)
	}
	return out, nil
}

// RecomputeLocalBounds refits BBoxMin/BBoxMax around the mesh's own vertex
// positions. The transform is deliberately not applied: culling composes the
// local box with Transform at draw time, a world-space box baked in here
// would be transformed twice.
func (doc *SceneDocument) RecomputeLocalBounds(m *Mesh) error {
	positions, err := doc.MeshPositions(m)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		m.BBoxMin, m.BBoxMax = mgl32.Vec3{}, mgl32.Vec3{}
		return nil
	}

	min, max := positions[0], positions[0]
	for _, p := range positions[1:] {
		for c := 0; c < 3; c++ {
			if p[c] < min[c] {
				min[c] = p[c]
			}
			if p[c] > max[c] {
				max[c] = p[c]
			}
		}
	}
	m.BBoxMin, m.BBoxMax = min, max
	return nil
}

// WorldBounds returns the axis-aligned box of the mesh's local bounds after
// its transform, the box culling effectively tests against.
func (m *Mesh) WorldBounds() (mgl32.Vec3, mgl32.Vec3) {
	var min, max mgl32.Vec3
	for corner := 0; corner < 8; corner++ {
		local := mgl32.Vec3{m.BBoxMin[0], m.BBoxMin[1], m.BBoxMin[2]}
		if corner&1 != 0 {
			local[0] = m.BBoxMax[0]
		}
		if corner&2 != 0 {
			local[1] = m.BBoxMax[1]
		}
		if corner&4 != 0 {
			local[2] = m.BBoxMax[2]
		}
		world := mgl32.TransformCoordinate(local, m.Transform)
		if corner == 0 {
			min, max = world, world
			continue
		}
		for c := 0; c < 3; c++ {
			if world[c] < min[c] {
				min[c] = world[c]
			}
			if world[c] > max[c] {
				max[c] = world[c]
			}
		}
	}
	return min, max
}
