package vismat

import (
	"testing"

	"github.com/mapcase/mapgeo_browser/visibility"
)

const materialsJSON = `{
	"{5e652742}": {
		"__type": "ChildMapVisibilityController",
		"PathHash": "{5e652742}",
		"Parents": ["{48106271}", "{0a629a1c}"],
		"ParentMode": 3
	},
	"{48106271}": {
		"__type": "{c406a533}",
		"PathHash": "{48106271}",
		"{27639032}": 32
	},
	"{33221100}": {
		"__type": "{ec733fe2}",
		"PathHash": "{33221100}",
		"{8bff8cdf}": "u8 = 2"
	},
	"{0a629a1c}": {
		"__type": "{e07edfa4}",
		"PathHash": "{0a629a1c}",
		"Name": "BaronTransition"
	},
	"{99999999}": {
		"__type": "StaticMaterialDef",
		"PathHash": "{99999999}",
		"SamplerValues": []
	}
}`

func TestParseJSON(t *testing.T) {
	graph, err := ParseJSON([]byte(materialsJSON))
	if err != nil {
		t.Fatal(err)
	}

	// the material def is not a controller
	if len(graph) != 4 {
		t.Fatalf("graph size = %d, want 4", len(graph))
	}

	comp, ok := graph[0x5e652742].(*visibility.CompositeController)
	if !ok {
		t.Fatalf("composite = %T", graph[0x5e652742])
	}
	if comp.Mode != visibility.ParentNotVisible || len(comp.Parents) != 2 {
		t.Errorf("composite = %+v", comp)
	}

	leaf, ok := graph[0x48106271].(*visibility.LeafLayerController)
	if !ok || leaf.Kind != visibility.LeafDragonLayer || leaf.Bit != 32 {
		t.Fatalf("dragon leaf = %+v", graph[0x48106271])
	}

	pit, ok := graph[0x33221100].(*visibility.LeafLayerController)
	if !ok || pit.Kind != visibility.LeafPitState || pit.Bit != 2 {
		t.Fatalf("pit leaf = %+v (annotated scalar not decoded?)", graph[0x33221100])
	}

	named, ok := graph[0x0a629a1c].(*visibility.NamedController)
	if !ok || named.Name != "BaronTransition" {
		t.Fatalf("named = %+v", graph[0x0a629a1c])
	}

	// end to end: NotVisible over a Hextech leaf hides exactly Hextech
	mesh := visibility.MeshState{LayerMask: 0xff, BaronHash: 0x5e652742}
	if visibility.Resolve(mesh, graph, visibility.DragonHextech, visibility.PitBase) {
		t.Error("Hextech visible under NotVisible controller")
	}
	if !visibility.Resolve(mesh, graph, visibility.DragonInferno, visibility.PitBase) {
		t.Error("Inferno hidden under NotVisible Hextech controller")
	}
}

func TestParseJSONMalformed(t *testing.T) {
	if _, err := ParseJSON([]byte(`{]`)); err == nil {
		t.Error("malformed json accepted")
	}
	graph, err := ParseJSON([]byte(`{"notahash": {"__type": "ChildMapVisibilityController"}}`))
	if err != nil {
		t.Fatal(err)
	}
	if len(graph) != 0 {
		t.Errorf("unkeyable entry kept: %v", graph)
	}
}

const materialsRitobin = `
#PROP_text
"type: PROP"
"version: 3"

0x5e652742 = ChildMapVisibilityController {
	Parents: list2[link] = {
		0x48106271
		0x0a629a1c
	}
	ParentMode: u32 = 1
}

0x48106271 = 0xc406a533 {
	0x27639032: u8 = 32
}

0x33221100 = 0xec733fe2 {
	0x8bff8cdf: u8 = 8
}

0x0a629a1c = 0xe07edfa4 {
	Name: string = "BaronTransition"
}

0x99999999 = StaticMaterialDef {
	samplerValues: list[embed] = {
		SamplerValueDef {
			textureName: string = "ASSETS/Maps/base_srx.dds"
		}
	}
	disableBackfaceCulling: bool = true
}
`

func TestParseRitobin(t *testing.T) {
	graph, err := ParseRitobin([]byte(materialsRitobin))
	if err != nil {
		t.Fatal(err)
	}
	if len(graph) != 4 {
		t.Fatalf("graph size = %d, want 4: %v", len(graph), graph)
	}

	comp, ok := graph[0x5e652742].(*visibility.CompositeController)
	if !ok || comp.Mode != visibility.ParentVisible {
		t.Fatalf("composite = %+v", graph[0x5e652742])
	}
	if len(comp.Parents) != 2 || comp.Parents[0] != 0x48106271 || comp.Parents[1] != 0x0a629a1c {
		t.Errorf("parents = %x", comp.Parents)
	}

	leaf, ok := graph[0x48106271].(*visibility.LeafLayerController)
	if !ok || leaf.Kind != visibility.LeafDragonLayer || leaf.Bit != 32 {
		t.Fatalf("dragon leaf = %+v", graph[0x48106271])
	}

	pit, ok := graph[0x33221100].(*visibility.LeafLayerController)
	if !ok || pit.Kind != visibility.LeafPitState || pit.Bit != 8 {
		t.Fatalf("pit leaf = %+v", graph[0x33221100])
	}

	named, ok := graph[0x0a629a1c].(*visibility.NamedController)
	if !ok || named.Name != "BaronTransition" {
		t.Fatalf("named = %+v", graph[0x0a629a1c])
	}

	mesh := visibility.MeshState{LayerMask: 0x02, BaronHash: 0x5e652742}
	if !visibility.Resolve(mesh, graph, visibility.DragonHextech, visibility.PitBase) {
		t.Error("Hextech hidden under its own controller")
	}
	if visibility.Resolve(mesh, graph, visibility.DragonInferno, visibility.PitBase) {
		t.Error("Inferno visible under a Hextech-only controller")
	}
}

// Both forms of the same descriptor must resolve identically.
func TestJSONAndRitobinAgree(t *testing.T) {
	jsonGraph, err := ParseJSON([]byte(materialsJSON))
	if err != nil {
		t.Fatal(err)
	}
	textGraph, err := ParseRitobin([]byte(materialsRitobin))
	if err != nil {
		t.Fatal(err)
	}

	// the fixtures differ in ParentMode and the pit bit on purpose; the
	// shared entries must match
	jsonLeaf := jsonGraph[0x48106271].(*visibility.LeafLayerController)
	textLeaf := textGraph[0x48106271].(*visibility.LeafLayerController)
	if *jsonLeaf != *textLeaf {
		t.Errorf("dragon leaf differs: %+v vs %+v", jsonLeaf, textLeaf)
	}
}
