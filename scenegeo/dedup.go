package scenegeo

import (
	"fmt"
	"strings"
)

// The unit of deduplication is a mesh's whole description block: the
// descriptionCount consecutive records starting at its base index. A single
// base index is all a mesh record can store, so merging individual records
// would break block contiguity for every mesh sharing only part of a block.

type dedupedDescriptions struct {
	descriptions []VertexBufferDescription
	// meshBase[i] is the rewritten base index of doc.Meshes[i]
	meshBase []uint32
}

// dedupDescriptions builds a canonical description table over the document
// without touching it. Blocks appear in first-use order; records referenced
// by no mesh are dropped.
func dedupDescriptions(doc *SceneDocument) (*dedupedDescriptions, error) {
	dd := &dedupedDescriptions{meshBase: make([]uint32, len(doc.Meshes))}
	blockIndex := make(map[string]uint32)

	for i := range doc.Meshes {
		m := &doc.Meshes[i]
		base := int(m.BaseDescriptionIndex)
		count := len(m.VertexBufferIndices)
		if base+count > len(doc.VertexDescriptions) {
			return nil, &RangeError{Section: "meshes", Mesh: i, Field: "vertexDescriptionIndex",
				Value: uint32(base + count), Limit: uint32(len(doc.VertexDescriptions))}
		}

		block := doc.VertexDescriptions[base : base+count]
		key := descriptionBlockKey(block)
		if at, ok := blockIndex[key]; ok {
			dd.meshBase[i] = at
			continue
		}

		at := uint32(len(dd.descriptions))
		dd.descriptions = append(dd.descriptions, block...)
		blockIndex[key] = at
		dd.meshBase[i] = at
	}
	return dd, nil
}

// descriptionBlockKey flattens a block into a map key. Two blocks collide
// exactly when their usage and ordered element tuples are equal.
func descriptionBlockKey(block []VertexBufferDescription) string {
	var sb strings.Builder
	for i := range block {
		d := &block[i]
		fmt.Fprintf(&sb, "u%d:", d.Usage)
		for _, e := range d.Elements {
			fmt.Fprintf(&sb, "%d/%d/%d;", e.Name, e.Format, e.Offset)
		}
		sb.WriteByte('|')
	}
	return sb.String()
}

// DeduplicateVertexDescriptions rewrites the document in place to the
// canonical description table Encode would emit, returning how many records
// were dropped. Encode runs the same pass internally, calling this first is
// only useful to inspect the result.
func (doc *SceneDocument) DeduplicateVertexDescriptions() (int, error) {
	dd, err := dedupDescriptions(doc)
	if err != nil {
		return 0, err
	}
	dropped := len(doc.VertexDescriptions) - len(dd.descriptions)
	doc.VertexDescriptions = dd.descriptions
	for i := range doc.Meshes {
		doc.Meshes[i].BaseDescriptionIndex = dd.meshBase[i]
	}
	return dropped, nil
}
