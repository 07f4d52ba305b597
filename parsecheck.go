package main

import (
	"bytes"
	"log"

	"github.com/mapcase/mapgeo_browser/scenegeo"
	"github.com/mapcase/mapgeo_browser/utils"
)

// parseCheck re-encodes the decoded scene and decodes it again, comparing
// the two passes. Byte equality against the source is not expected (the
// description table is canonicalized), second-pass stability is.
func parseCheck(scene *scenegeo.SceneDocument, original []byte) {
	encoded, err := scenegeo.Encode(scene)
	if err != nil {
		log.Fatalf("parsecheck: encode failed: %v", err)
	}

	reparsed, err := scenegeo.Decode(encoded)
	if err != nil {
		log.Fatalf("parsecheck: decode of re-encoded scene failed: %v", err)
	}
	if len(reparsed.Meshes) != len(scene.Meshes) {
		log.Fatalf("parsecheck: mesh count changed %d -> %d", len(scene.Meshes), len(reparsed.Meshes))
	}

	reencoded, err := scenegeo.Encode(reparsed)
	if err != nil {
		log.Fatalf("parsecheck: second encode failed: %v", err)
	}
	if !bytes.Equal(encoded, reencoded) {
		at := len(encoded)
		for i := 0; i < len(encoded) && i < len(reencoded); i++ {
			if encoded[i] != reencoded[i] {
				at = i
				break
			}
		}
		lo, hi := at-8, at+8
		if lo < 0 {
			lo = 0
		}
		if hi > len(encoded) {
			hi = len(encoded)
		}
		log.Fatalf("parsecheck: encode is not stable (%d vs %d bytes, first diff at 0x%x: %s)",
			len(encoded), len(reencoded), at, utils.DumpToOneLineString(encoded[lo:hi]))
	}

	dropped, err := (&scenegeo.SceneDocument{
		Version:            scene.Version,
		SamplerDefs:        scene.SamplerDefs,
		VertexDescriptions: scene.VertexDescriptions,
		VertexBuffers:      scene.VertexBuffers,
		IndexBuffers:       scene.IndexBuffers,
		Meshes:             append([]scenegeo.Mesh(nil), scene.Meshes...),
	}).DeduplicateVertexDescriptions()
	if err != nil {
		log.Fatalf("parsecheck: dedup failed: %v", err)
	}

	log.Printf("parsecheck: OK, %d -> %d bytes, %d duplicate descriptions",
		len(original), len(encoded), dropped)
}
