package scenegeo

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapcase/mapgeo_browser/utils"
	"github.com/mapcase/mapgeo_browser/visibility"
)

// Decode parses one scene container out of b. The document does not alias b.
func Decode(b []byte) (doc *SceneDocument, err error) {
	bs := utils.NewBufStack("scenegeo", b)

	defer func() {
		if r := recover(); r != nil {
			over, ok := r.(*utils.Overrun)
			if !ok {
				panic(r)
			}
			doc = nil
			err = &TruncatedDataError{
				Section: over.Buf.StringChain(),
				Offset:  over.Buf.AbsoluteOffset() + over.Pos,
				Need:    over.Amount,
			}
		}
	}()

	bsHeader := bs.SubBuf("header", 0).SetSize(8)
	var magic [4]byte
	copy(magic[:], bsHeader.Read(4))
	version := bsHeader.ReadLU32()

	if magic != sceneMagic {
		return nil, &FormatError{Magic: magic, Version: version, Reason: "has wrong magic signature"}
	}
	layout, ok := layoutForVersion(version)
	if !ok {
		return nil, &FormatError{Magic: magic, Version: version,
			Reason: fmt.Sprintf("has unsupported version (supported %d-%d)", VersionMin, VersionMax)}
	}

	doc = &SceneDocument{Version: version}

	// bytes of the root buffer behind the given section
	tail := func(section *utils.BufStack) int {
		return bs.Size() - section.RelativeOffset() - section.Size()
	}

	bsSamplers := bsHeader.SubBufFollowing("samplerDefs")
	decodeSamplerDefs(bsSamplers, layout, doc)
	bsSamplers.SetSize(bsSamplers.Pos())

	bsDescs := bsSamplers.SubBufFollowing("vertexDescriptions")
	descCount := int(bsDescs.ReadLU32())
	doc.VertexDescriptions = make([]VertexBufferDescription, 0, descCount)
	for i := 0; i < descCount; i++ {
		doc.VertexDescriptions = append(doc.VertexDescriptions, decodeDescription(bsDescs, layout, i))
	}
	bsDescs.SetSize(bsDescs.Pos())

	bsVbs := bsDescs.SubBufFollowing("vertexBuffers")
	vbCount := int(bsVbs.ReadLU32())
	doc.VertexBuffers = make([]VertexBuffer, 0, vbCount)
	for i := 0; i < vbCount; i++ {
		layerMask := bsVbs.ReadByte()
		size := int(bsVbs.ReadLU32())
		doc.VertexBuffers = append(doc.VertexBuffers, VertexBuffer{
			LayerMask: layerMask,
			Data:      append([]byte(nil), bsVbs.Read(size)...),
		})
	}
	bsVbs.SetSize(bsVbs.Pos())

	bsIbs := bsVbs.SubBufFollowing("indexBuffers")
	ibCount := int(bsIbs.ReadLU32())
	doc.IndexBuffers = make([]IndexBuffer, 0, ibCount)
	for i := 0; i < ibCount; i++ {
		layerMask := bsIbs.ReadByte()
		size := int(bsIbs.ReadLU32())
		doc.IndexBuffers = append(doc.IndexBuffers, IndexBuffer{
			LayerMask: layerMask,
			Data:      append([]byte(nil), bsIbs.Read(size)...),
		})
	}
	bsIbs.SetSize(bsIbs.Pos())

	bsMeshes := bsIbs.SubBufFollowing("meshes")
	meshCount := int(bsMeshes.ReadLU32())
	doc.Meshes = make([]Mesh, 0, meshCount)
	var nameGen utils.RandomNameGenerator
	for i := 0; i < meshCount; i++ {
		bsMesh := bsMeshes.SubBuf("mesh", bsMeshes.Pos()).SetName(fmt.Sprint(i))
		m := decodeMesh(bsMesh, layout)
		m.Name = fmt.Sprintf("mesh%04d_%s", i, nameGen.RandomName())
		bsMesh.SetSize(bsMesh.Pos())
		bsMeshes.Skip(bsMesh.Pos())
		doc.Meshes = append(doc.Meshes, m)
	}
	bsMeshes.SetSize(bsMeshes.Pos())
	lastSection := bsMeshes

	// Older exporters stop after the mesh table; everything below is
	// optional trailing data.
	if tail(lastSection) > 0 {
		bsGrids := lastSection.SubBufFollowing("bucketGrids")
		gridCount := 1
		if layout.multiBucketGrids {
			gridCount = int(bsGrids.ReadLU32())
		}
		doc.BucketGrids = make([]BucketGrid, 0, gridCount)
		for i := 0; i < gridCount; i++ {
			doc.BucketGrids = append(doc.BucketGrids, decodeBucketGrid(bsGrids, layout))
		}
		bsGrids.SetSize(bsGrids.Pos())
		lastSection = bsGrids
	}

	if tail(lastSection) > 0 {
		bsRefl := lastSection.SubBufFollowing("planarReflectors")
		reflCount := int(bsRefl.ReadLU32())
		doc.PlanarReflectors = make([]PlanarReflector, 0, reflCount)
		for i := 0; i < reflCount; i++ {
			var pr PlanarReflector
			pr.Transform = readMat4(bsRefl)
			pr.Plane[0] = readVec3(bsRefl)
			pr.Plane[1] = readVec3(bsRefl)
			pr.Normal = readVec3(bsRefl)
			doc.PlanarReflectors = append(doc.PlanarReflectors, pr)
		}
		bsRefl.SetSize(bsRefl.Pos())
	}

	if err := doc.validateReferences(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodeSamplerDefs(bs *utils.BufStack, layout versionLayout, doc *SceneDocument) {
	if layout.samplerTable {
		count := int(bs.ReadLU32())
		doc.SamplerDefs = make([]SamplerDef, 0, count)
		for i := 0; i < count; i++ {
			index := bs.ReadLI32()
			doc.SamplerDefs = append(doc.SamplerDefs, SamplerDef{Index: index, Name: bs.ReadString()})
		}
	} else {
		// two fixed sampler slots, names may be empty
		doc.SamplerDefs = []SamplerDef{
			{Index: 0, Name: bs.ReadString()},
			{Index: 1, Name: bs.ReadString()},
		}
	}
}

func decodeDescription(bs *utils.BufStack, layout versionLayout, descIndex int) VertexBufferDescription {
	var desc VertexBufferDescription
	desc.Usage = bs.ReadLU32()

	elementCount := int(bs.ReadLU32())
	if elementCount > maxElementSlots {
		// not representable on disk, the count field itself is garbage
		panic(&utils.Overrun{Buf: bs, Pos: bs.Pos(), Amount: elementCount * layout.elementRecordSize()})
	}

	var runningOffset uint32
	for i := 0; i < elementCount; i++ {
		var e VertexElement
		e.Name = ElementName(bs.ReadLU32())
		e.Format = ElementFormat(bs.ReadLU32())
		if layout.elementStoredOffset {
			e.Offset = bs.ReadLU32()
		} else {
			e.Offset = runningOffset
		}

		if checkErr := e.check(); checkErr != nil {
			if !e.Format.Known() && !layout.elementStoredOffset {
				// without a size the offsets of everything behind it are
				// unknowable too, drop the rest of the declaration
				log.Printf("[scenegeo] description %d: %v, dropping trailing elements", descIndex, checkErr)
				bs.Skip((elementCount - 1 - i) * layout.elementRecordSize())
				break
			}
			log.Printf("[scenegeo] description %d: %v, element skipped", descIndex, checkErr)
			runningOffset += e.Size()
			continue
		}

		runningOffset += e.Size()
		desc.Elements = append(desc.Elements, e)
	}

	bs.Skip((maxElementSlots - elementCount) * layout.elementRecordSize())
	return desc
}

func decodeMesh(bs *utils.BufStack, layout versionLayout) Mesh {
	var m Mesh

	m.VertexCount = bs.ReadLU32()
	descriptionCount := int(bs.ReadLU32())
	m.BaseDescriptionIndex = bs.ReadLU32()
	m.VertexBufferIndices = make([]uint32, 0, descriptionCount)
	for i := 0; i < descriptionCount; i++ {
		m.VertexBufferIndices = append(m.VertexBufferIndices, bs.ReadLU32())
	}

	m.IndexCount = bs.ReadLU32()
	m.IndexBufferIndex = bs.ReadLU32()

	m.VisibilityLayer = bs.ReadByte()
	if layout.hasRenderRegionHash {
		m.RenderRegionHash = bs.ReadLU32()
	}
	if layout.hasBaronHash {
		m.BaronHash = bs.ReadLU32()
	}

	primitiveCount := int(bs.ReadLU32())
	m.Primitives = make([]Primitive, 0, primitiveCount)
	for i := 0; i < primitiveCount; i++ {
		var p Primitive
		p.MaterialHash = bs.ReadLU32()
		p.Material = bs.ReadString()
		p.StartIndex = bs.ReadLU32()
		p.IndexCount = bs.ReadLU32()
		p.MinVertex = bs.ReadLU32()
		p.MaxVertex = bs.ReadLU32()
		m.Primitives = append(m.Primitives, p)
	}

	m.DisableBackfaceCulling = bs.ReadBool()
	m.BBoxMin = readVec3(bs)
	m.BBoxMax = readVec3(bs)
	m.Transform = readMat4(bs)
	m.QualityMask = visibility.NormalizeQualityMask(bs.ReadByte())

	if layout.hasLayerTransition {
		m.LayerTransitionBehavior = bs.ReadByte()
		if layout.wideRenderFlags {
			m.RenderFlags = bs.ReadLU16()
		} else {
			m.RenderFlags = uint16(bs.ReadByte())
		}
	}

	m.BakedLight = decodeLightChannel(bs)
	m.StationaryLight = decodeLightChannel(bs)
	if layout.hasBakedPaint {
		m.BakedPaint = decodeLightChannel(bs)
	}

	if layout.hasTextureOverrides {
		overrideCount := int(bs.ReadLU32())
		m.TextureOverrides = make([]TextureOverride, 0, overrideCount)
		for i := 0; i < overrideCount; i++ {
			index := bs.ReadLU32()
			m.TextureOverrides = append(m.TextureOverrides, TextureOverride{Index: index, Texture: bs.ReadString()})
		}
		m.BakedPaintScale = readVec2(bs)
		m.BakedPaintBias = readVec2(bs)
	}

	return m
}

func decodeLightChannel(bs *utils.BufStack) LightChannel {
	var lc LightChannel
	lc.Texture = bs.ReadString()
	lc.UvScale = readVec2(bs)
	lc.UvBias = readVec2(bs)
	return lc
}

func readVec2(bs *utils.BufStack) mgl32.Vec2 {
	return mgl32.Vec2{bs.ReadLF(), bs.ReadLF()}
}

func readVec3(bs *utils.BufStack) mgl32.Vec3 {
	return mgl32.Vec3{bs.ReadLF(), bs.ReadLF(), bs.ReadLF()}
}

func readMat4(bs *utils.BufStack) mgl32.Mat4 {
	var m mgl32.Mat4
	for i := range m {
		m[i] = bs.ReadLF()
	}
	return m
}

// validateReferences checks every cross-table index of the document. Knowing
// records are self-consistent at load time lets everything downstream index
// without rechecking.
func (doc *SceneDocument) validateReferences() error {
	for i := range doc.Meshes {
		m := &doc.Meshes[i]

		if int(m.IndexBufferIndex) >= len(doc.IndexBuffers) {
			return &RangeError{Section: "meshes", Mesh: i, Field: "indexBufferIndex",
				Value: m.IndexBufferIndex, Limit: uint32(len(doc.IndexBuffers))}
		}
		ib := &doc.IndexBuffers[m.IndexBufferIndex]
		if int(m.IndexCount) > ib.IndexCount() {
			return &RangeError{Section: "meshes", Mesh: i, Field: "indexCount",
				Value: m.IndexCount, Limit: uint32(ib.IndexCount())}
		}

		for j, vbIndex := range m.VertexBufferIndices {
			if int(vbIndex) >= len(doc.VertexBuffers) {
				return &RangeError{Section: "meshes", Mesh: i, Field: fmt.Sprintf("vertexBufferIndex[%d]", j),
					Value: vbIndex, Limit: uint32(len(doc.VertexBuffers))}
			}
			descIndex := m.DescriptionIndexForBuffer(j)
			if int(descIndex) >= len(doc.VertexDescriptions) {
				return &RangeError{Section: "meshes", Mesh: i, Field: fmt.Sprintf("vertexDescriptionIndex[%d]", j),
					Value: descIndex, Limit: uint32(len(doc.VertexDescriptions))}
			}
		}
	}
	return nil
}
