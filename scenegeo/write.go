package scenegeo

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/mapcase/mapgeo_browser/utils"
)

// Encode serializes the document back to container bytes. The description
// table is deduplicated on the way out (see dedupDescriptions); doc itself is
// never mutated, encoding the same document twice yields identical bytes.
func Encode(doc *SceneDocument) ([]byte, error) {
	layout, ok := layoutForVersion(doc.Version)
	if !ok {
		return nil, &FormatError{Magic: sceneMagic, Version: doc.Version, Reason: "has unsupported version"}
	}

	dd, err := dedupDescriptions(doc)
	if err != nil {
		return nil, err
	}

	bw := utils.NewBufWriter()
	bw.PutBytes(sceneMagic[:])
	bw.PutLU32(doc.Version)

	encodeSamplerDefs(bw, layout, doc.SamplerDefs)

	bw.PutLU32(uint32(len(dd.descriptions)))
	for i := range dd.descriptions {
		encodeDescription(bw, layout, &dd.descriptions[i])
	}

	bw.PutLU32(uint32(len(doc.VertexBuffers)))
	for i := range doc.VertexBuffers {
		vb := &doc.VertexBuffers[i]
		bw.PutByte(vb.LayerMask)
		bw.PutLU32(uint32(len(vb.Data)))
		bw.PutBytes(vb.Data)
	}

	bw.PutLU32(uint32(len(doc.IndexBuffers)))
	for i := range doc.IndexBuffers {
		ib := &doc.IndexBuffers[i]
		bw.PutByte(ib.LayerMask)
		bw.PutLU32(uint32(len(ib.Data)))
		bw.PutBytes(ib.Data)
	}

	bw.PutLU32(uint32(len(doc.Meshes)))
	for i := range doc.Meshes {
		encodeMesh(bw, layout, &doc.Meshes[i], dd.meshBase[i])
	}

	// Trailing sections are optional on read; emit them only when there is
	// anything to say, older tools choke on an unexpected tail.
	if len(doc.BucketGrids) == 0 && len(doc.PlanarReflectors) == 0 {
		return bw.Bytes(), nil
	}

	if layout.multiBucketGrids {
		bw.PutLU32(uint32(len(doc.BucketGrids)))
		for i := range doc.BucketGrids {
			encodeBucketGrid(bw, layout, &doc.BucketGrids[i])
		}
	} else {
		// single-grid layout has no count; reflectors can only follow a
		// grid, so a disabled stub stands in when there is none
		if len(doc.BucketGrids) > 0 {
			encodeBucketGrid(bw, layout, &doc.BucketGrids[0])
		} else {
			encodeBucketGrid(bw, layout, &BucketGrid{Disabled: true})
		}
	}

	bw.PutLU32(uint32(len(doc.PlanarReflectors)))
	for i := range doc.PlanarReflectors {
		pr := &doc.PlanarReflectors[i]
		putMat4(bw, pr.Transform)
		putVec3(bw, pr.Plane[0])
		putVec3(bw, pr.Plane[1])
		putVec3(bw, pr.Normal)
	}

	return bw.Bytes(), nil
}

func encodeSamplerDefs(bw *utils.BufWriter, layout versionLayout, defs []SamplerDef) {
	if layout.samplerTable {
		// the count is written even when zero, readers key off it
		bw.PutLU32(uint32(len(defs)))
		for _, def := range defs {
			bw.PutLI32(def.Index)
			bw.PutString(def.Name)
		}
		return
	}
	// two fixed slots
	for slot := 0; slot < 2; slot++ {
		if slot < len(defs) {
			bw.PutString(defs[slot].Name)
		} else {
			bw.PutString("")
		}
	}
}

func encodeDescription(bw *utils.BufWriter, layout versionLayout, desc *VertexBufferDescription) {
	bw.PutLU32(desc.Usage)
	bw.PutLU32(uint32(len(desc.Elements)))
	for _, e := range desc.Elements {
		bw.PutLU32(uint32(e.Name))
		bw.PutLU32(uint32(e.Format))
		if layout.elementStoredOffset {
			bw.PutLU32(e.Offset)
		}
	}
	for i := len(desc.Elements); i < maxElementSlots; i++ {
		for b := 0; b < layout.elementRecordSize(); b++ {
			bw.PutByte(0)
		}
	}
}

func encodeMesh(bw *utils.BufWriter, layout versionLayout, m *Mesh, baseDescriptionIndex uint32) {
	bw.PutLU32(m.VertexCount)
	bw.PutLU32(uint32(len(m.VertexBufferIndices)))
	bw.PutLU32(baseDescriptionIndex)
	for _, vbIndex := range m.VertexBufferIndices {
		bw.PutLU32(vbIndex)
	}

	bw.PutLU32(m.IndexCount)
	bw.PutLU32(m.IndexBufferIndex)

	bw.PutByte(m.VisibilityLayer)
	if layout.hasRenderRegionHash {
		bw.PutLU32(m.RenderRegionHash)
	}
	if layout.hasBaronHash {
		bw.PutLU32(m.BaronHash)
	}

	bw.PutLU32(uint32(len(m.Primitives)))
	for i := range m.Primitives {
		p := &m.Primitives[i]
		bw.PutLU32(p.MaterialHash)
		bw.PutString(p.Material)
		bw.PutLU32(p.StartIndex)
		bw.PutLU32(p.IndexCount)
		bw.PutLU32(p.MinVertex)
		bw.PutLU32(p.MaxVertex)
	}

	bw.PutBool(m.DisableBackfaceCulling)
	putVec3(bw, m.BBoxMin)
	putVec3(bw, m.BBoxMax)
	putMat4(bw, m.Transform)
	bw.PutByte(uint8(m.QualityMask))

	if layout.hasLayerTransition {
		bw.PutByte(m.LayerTransitionBehavior)
		if layout.wideRenderFlags {
			bw.PutLU16(m.RenderFlags)
		} else {
			bw.PutByte(uint8(m.RenderFlags))
		}
	}

	encodeLightChannel(bw, &m.BakedLight)
	encodeLightChannel(bw, &m.StationaryLight)
	if layout.hasBakedPaint {
		encodeLightChannel(bw, &m.BakedPaint)
	}

	if layout.hasTextureOverrides {
		bw.PutLU32(uint32(len(m.TextureOverrides)))
		for i := range m.TextureOverrides {
			bw.PutLU32(m.TextureOverrides[i].Index)
			bw.PutString(m.TextureOverrides[i].Texture)
		}
		putVec2(bw, m.BakedPaintScale)
		putVec2(bw, m.BakedPaintBias)
	}
}

func encodeLightChannel(bw *utils.BufWriter, lc *LightChannel) {
	bw.PutString(lc.Texture)
	putVec2(bw, lc.UvScale)
	putVec2(bw, lc.UvBias)
}

func putVec2(bw *utils.BufWriter, v mgl32.Vec2) {
	bw.PutLF(v[0])
	bw.PutLF(v[1])
}

func putVec3(bw *utils.BufWriter, v mgl32.Vec3) {
	bw.PutLF(v[0])
	bw.PutLF(v[1])
	bw.PutLF(v[2])
}

func putMat4(bw *utils.BufWriter, m mgl32.Mat4) {
	for _, f := range m {
		bw.PutLF(f)
	}
}
