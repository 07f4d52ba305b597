// Package vismat builds visibility controller graphs out of the materials
// descriptor that ships beside a scene container, in either its JSON dump or
// ritobin text form. Only visibility controller entries are looked at, the
// rest of the descriptor (material defs, particles, placeables) is skipped.
package vismat

import (
	"strconv"
	"strings"

	"github.com/mapcase/mapgeo_browser/visibility"
)

// Entry type discriminators as they appear in both descriptor forms. The
// leaf and named types only ever occur hashed.
const (
	typeChildController = "ChildMapVisibilityController"
	typeMutator         = "MutatorMapVisibilityController"
	typeDragonLeaf      = "c406a533"
	typePitLeaf         = "ec733fe2"
	typeNamed           = "e07edfa4"
)

// Property hashes inside leaf entries.
const (
	propDragonBit = "27639032"
	propPitBit    = "8bff8cdf"
)

// entry is one descriptor object in parsed, format-neutral form.
type entry struct {
	hash     uint32
	typeName string

	name       string
	parents    []uint32
	hasParents bool
	parentMode uint32

	dragonBit *uint8
	pitBit    *uint8
}

// controller converts the entry to its graph node, nil when the entry is not
// a visibility controller.
func (e *entry) controller() visibility.Controller {
	switch normalizeTypeName(e.typeName) {
	case typeChildController, typeMutator:
		return &visibility.CompositeController{
			Parents: e.parents,
			Mode:    visibility.NormalizeParentMode(e.parentMode),
		}
	case typeDragonLeaf:
		var bit uint8
		if e.dragonBit != nil {
			bit = *e.dragonBit
		}
		return &visibility.LeafLayerController{Kind: visibility.LeafDragonLayer, Bit: bit}
	case typePitLeaf:
		var bit uint8
		if e.pitBit != nil {
			bit = *e.pitBit
		}
		return &visibility.LeafLayerController{Kind: visibility.LeafPitState, Bit: bit}
	case typeNamed:
		return &visibility.NamedController{Name: e.name}
	}

	// some dumps omit the type on composites, the parent list gives them away
	if e.hasParents {
		return &visibility.CompositeController{
			Parents: e.parents,
			Mode:    visibility.NormalizeParentMode(e.parentMode),
		}
	}
	if e.dragonBit != nil {
		return &visibility.LeafLayerController{Kind: visibility.LeafDragonLayer, Bit: *e.dragonBit}
	}
	if e.pitBit != nil {
		return &visibility.LeafLayerController{Kind: visibility.LeafPitState, Bit: *e.pitBit}
	}
	return nil
}

func buildGraph(entries []entry) visibility.Graph {
	graph := make(visibility.Graph, len(entries))
	for i := range entries {
		if c := entries[i].controller(); c != nil {
			graph[entries[i].hash] = c
		}
	}
	return graph
}

// normalizeTypeName strips the varying hash spellings ("{c406a533}",
// "0xc406a533", bare) down to one comparable form.
func normalizeTypeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimPrefix(s, "0x")
	if _, err := strconv.ParseUint(s, 16, 32); err == nil {
		return strings.ToLower(s)
	}
	return s
}

// parseHashRef accepts "{5e652742}", "0x5e652742" and bare hex spellings.
func parseHashRef(s string) (uint32, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "{")
	s = strings.TrimSuffix(s, "}")
	s = strings.TrimPrefix(s, "0x")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return uint32(v), true
}
