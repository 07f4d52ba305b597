package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"github.com/mapcase/mapgeo_browser/scenegeo"
	"github.com/mapcase/mapgeo_browser/utils"
	"github.com/mapcase/mapgeo_browser/visibility"
)

func testServer() *Server {
	return &Server{
		sceneName: "map22",
		scene: &scenegeo.SceneDocument{
			Version:       17,
			IndexBuffers:  []scenegeo.IndexBuffer{{Data: make([]byte, 6)}},
			VertexBuffers: []scenegeo.VertexBuffer{{Data: make([]byte, 36)}},
			VertexDescriptions: []scenegeo.VertexBufferDescription{{
				Elements: []scenegeo.VertexElement{{Name: scenegeo.Position, Format: scenegeo.XYZFloat32}},
			}},
			Meshes: []scenegeo.Mesh{{
				Name:                "mesh0000_test",
				VertexCount:         3,
				VertexBufferIndices: []uint32{0},
				IndexCount:          3,
				VisibilityLayer:     0x21,
				BaronHash:           0x5e652742,
				QualityMask:         visibility.QualityAll,
			}},
		},
		graph: visibility.Graph{
			0x5e652742: &visibility.LeafLayerController{
				Kind: visibility.LeafDragonLayer,
				Bit:  visibility.DragonHextech.Bit(),
			},
		},
	}
}

func routerFor(s *Server) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/scene", s.HandlerAjaxScene)
	r.HandleFunc("/json/scene/mesh/{id}", s.HandlerAjaxMesh)
	r.HandleFunc("/json/scene/mesh/{id}/visibility", s.HandlerAjaxMeshVisibility)
	r.HandleFunc("/json/scene/region/{name}", s.HandlerAjaxRegion)
	return r
}

func TestHandlerRegion(t *testing.T) {
	s := testServer()
	const region = "BaronPit"
	s.scene.Meshes[0].RenderRegionHash = utils.GameStringHashPath(region)
	r := routerFor(s)

	for _, path := range []string{
		"/json/scene/region/" + region,
		fmt.Sprintf("/json/scene/region/0x%08x", s.scene.Meshes[0].RenderRegionHash),
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		var out struct {
			Meshes  []int
			HasGrid bool
		}
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: %v (%s)", path, err, w.Body.String())
		}
		if len(out.Meshes) != 1 || out.Meshes[0] != 0 {
			t.Errorf("%s: meshes = %v", path, out.Meshes)
		}
		if out.HasGrid {
			t.Errorf("%s: has grid, scene carries none", path)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json/scene/region/nothing", nil))
	var out struct{ Meshes []int }
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if out.Meshes != nil {
		t.Errorf("unknown region meshes = %v", out.Meshes)
	}
}

func TestHandlerVisibility(t *testing.T) {
	r := routerFor(testServer())

	tests := []struct {
		query   string
		visible bool
	}{
		{"dragon=Hextech", true},
		{"dragon=5", true},
		{"dragon=Inferno", false},
		{"dragon=Base", true}, // base layer never excludable
		{"", true},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json/scene/mesh/0/visibility?"+tt.query, nil))

		var out struct {
			Visible         bool
			ControllerFound bool
		}
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("%s: %v (%s)", tt.query, err, w.Body.String())
		}
		if !out.ControllerFound {
			t.Errorf("%s: controller not found", tt.query)
		}
		if out.Visible != tt.visible {
			t.Errorf("%s: visible = %v, want %v", tt.query, out.Visible, tt.visible)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json/scene/mesh/0/visibility?dragon=Nashor", nil))
	var jerr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &jerr); err != nil || jerr.Error == "" {
		t.Errorf("bad layer name not rejected: %s", w.Body.String())
	}
}

func TestHandlerSceneAndMesh(t *testing.T) {
	r := routerFor(testServer())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json/scene", nil))
	var scene struct {
		Name   string
		Meshes []struct {
			Name      string
			BaronHash string
		}
	}
	if err := json.Unmarshal(w.Body.Bytes(), &scene); err != nil {
		t.Fatal(err)
	}
	if scene.Name != "map22" || len(scene.Meshes) != 1 || scene.Meshes[0].BaronHash != "0x5e652742" {
		t.Errorf("scene = %+v", scene)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/json/scene/mesh/99", nil))
	var jerr struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &jerr); err != nil || jerr.Error == "" {
		t.Errorf("out-of-range mesh not rejected: %s", w.Body.String())
	}
}
