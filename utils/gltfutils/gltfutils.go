package gltfutils

import (
	"io"

	"github.com/qmuntal/gltf"
)

func NewDocument() *gltf.Document {
	return gltf.NewDocument()
}

// ExportBinary writes the document as glb. Every node is hooked into the
// default scene; exporters only build nodes.
func ExportBinary(w io.Writer, doc *gltf.Document) error {
	doc.Scenes[0].Nodes = doc.Scenes[0].Nodes[:0]
	for iNode := range doc.Nodes {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = true
	return encoder.Encode(doc)
}

// ExportText writes the document as embedded-buffer .gltf JSON.
func ExportText(w io.Writer, doc *gltf.Document) error {
	doc.Scenes[0].Nodes = doc.Scenes[0].Nodes[:0]
	for iNode := range doc.Nodes {
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, uint32(iNode))
	}

	encoder := gltf.NewEncoder(w)
	encoder.AsBinary = false
	return encoder.Encode(doc)
}
