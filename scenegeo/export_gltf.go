package scenegeo

import (
	"encoding/binary"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/mapcase/mapgeo_browser/utils/gltfutils"
)

// ExportGLTF builds a glTF document out of the scene: one node+mesh per
// scene mesh, one glTF primitive per material range, materials shared by
// name across meshes. Quality and visibility metadata ride along in node
// extras.
func (doc *SceneDocument) ExportGLTF() (*gltf.Document, error) {
	tdoc := gltfutils.NewDocument()
	materialIndices := make(map[string]uint32)

	for iMesh := range doc.Meshes {
		m := &doc.Meshes[iMesh]

		positions, err := doc.MeshPositions(m)
		if err != nil {
			return nil, errors.Wrapf(err, "Failed to extract positions of mesh %q", m.Name)
		}
		positionAccessor := modeler.WritePosition(tdoc, vec3Slice(positions))

		var normalsAccessor uint32
		hasNormals := false
		if s, err := doc.findElementStream(m, Normal, XYZFloat32); err == nil {
			normals := make([][3]float32, s.count)
			for i := range normals {
				n := s.vec3At(i)
				if n.Len() > 0.5 {
					n = n.Normalize()
				}
				normals[i] = n
			}
			normalsAccessor = modeler.WriteNormal(tdoc, normals)
			hasNormals = true
		}

		var uvAccessor uint32
		hasUvs := false
		if s, err := doc.findElementStream(m, Texcoord0, XYFloat32); err == nil {
			uvs := make([][2]float32, s.count)
			for i := range uvs {
				uvs[i] = s.vec2At(i)
			}
			uvAccessor = modeler.WriteTextureCoord(tdoc, uvs)
			hasUvs = true
		}

		ib := &doc.IndexBuffers[m.IndexBufferIndex]
		gltfMesh := &gltf.Mesh{Name: m.Name}

		for iPrim := range m.Primitives {
			p := &m.Primitives[iPrim]
			if int(p.StartIndex+p.IndexCount) > ib.IndexCount() {
				return nil, errors.Errorf("mesh %q primitive %d overruns its index buffer", m.Name, iPrim)
			}

			indices := make([]uint32, p.IndexCount)
			for i := range indices {
				at := (int(p.StartIndex) + i) * 2
				indices[i] = uint32(binary.LittleEndian.Uint16(ib.Data[at:]))
			}
			indicesAccessor := modeler.WriteIndices(tdoc, indices)

			attributes := map[string]uint32{"POSITION": positionAccessor}
			if hasNormals {
				attributes["NORMAL"] = normalsAccessor
			}
			if hasUvs {
				attributes["TEXCOORD_0"] = uvAccessor
			}

			materialName := p.Material
			if materialName == "" {
				materialName = fmt.Sprintf("material_%08x", p.MaterialHash)
			}
			materialIndex, ok := materialIndices[materialName]
			if !ok {
				materialIndex = uint32(len(tdoc.Materials))
				tdoc.Materials = append(tdoc.Materials, &gltf.Material{
					Name:        materialName,
					DoubleSided: m.DisableBackfaceCulling,
				})
				materialIndices[materialName] = materialIndex
			}

			gltfMesh.Primitives = append(gltfMesh.Primitives, &gltf.Primitive{
				Indices:    gltf.Index(indicesAccessor),
				Attributes: attributes,
				Material:   gltf.Index(materialIndex),
			})
		}

		tdoc.Meshes = append(tdoc.Meshes, gltfMesh)
		tdoc.Nodes = append(tdoc.Nodes, &gltf.Node{
			Name:   m.Name,
			Mesh:   gltf.Index(uint32(len(tdoc.Meshes) - 1)),
			Matrix: [16]float32(m.Transform),
			Extras: map[string]interface{}{
				"visibilityLayer": m.VisibilityLayer,
				"qualityMask":     uint8(m.QualityMask),
				"baronHash":       m.BaronHash,
			},
		})
	}

	return tdoc, nil
}

func vec3Slice(in []mgl32.Vec3) [][3]float32 {
	out := make([][3]float32, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}
