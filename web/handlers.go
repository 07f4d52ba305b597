package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/mapcase/mapgeo_browser/scenegeo"
	"github.com/mapcase/mapgeo_browser/utils"
	"github.com/mapcase/mapgeo_browser/utils/gltfutils"
	"github.com/mapcase/mapgeo_browser/visibility"
	"github.com/mapcase/mapgeo_browser/webutils"
)

func (s *Server) meshByRequest(r *http.Request) (*scenegeo.Mesh, int, error) {
	idString := mux.Vars(r)["id"]
	id, err := strconv.Atoi(idString)
	if err != nil {
		return nil, 0, errors.Errorf("param '%s' is not integer", idString)
	}
	if id < 0 || id >= len(s.scene.Meshes) {
		return nil, 0, errors.Errorf("mesh %d out of range (scene has %d)", id, len(s.scene.Meshes))
	}
	return &s.scene.Meshes[id], id, nil
}

func (s *Server) HandlerAjaxScene(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type jMesh struct {
		Id              int
		Name            string
		VertexCount     uint32
		IndexCount      uint32
		VisibilityLayer uint8
		BaronHash       string
		QualityMask     uint8
	}
	type jScene struct {
		Name               string
		Version            uint32
		SamplerDefs        []scenegeo.SamplerDef
		VertexBuffers      int
		IndexBuffers       int
		VertexDescriptions int
		BucketGrids        int
		PlanarReflectors   int
		Controllers        int
		Meshes             []jMesh
	}

	out := &jScene{
		Name:               s.sceneName,
		Version:            s.scene.Version,
		SamplerDefs:        s.scene.SamplerDefs,
		VertexBuffers:      len(s.scene.VertexBuffers),
		IndexBuffers:       len(s.scene.IndexBuffers),
		VertexDescriptions: len(s.scene.VertexDescriptions),
		BucketGrids:        len(s.scene.BucketGrids),
		PlanarReflectors:   len(s.scene.PlanarReflectors),
		Controllers:        len(s.graph),
	}
	for i := range s.scene.Meshes {
		m := &s.scene.Meshes[i]
		out.Meshes = append(out.Meshes, jMesh{
			Id:              i,
			Name:            m.Name,
			VertexCount:     m.VertexCount,
			IndexCount:      m.IndexCount,
			VisibilityLayer: m.VisibilityLayer,
			BaronHash:       fmt.Sprintf("0x%08x", m.BaronHash),
			QualityMask:     uint8(m.QualityMask),
		})
	}
	webutils.WriteJson(w, out)
}

func (s *Server) HandlerAjaxMesh(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, _, err := s.meshByRequest(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	type jMesh struct {
		Mesh         *scenegeo.Mesh
		Descriptions []scenegeo.VertexBufferDescription
	}
	out := &jMesh{Mesh: m}
	for i := range m.VertexBufferIndices {
		desc, err := s.scene.DescriptionForBuffer(m, i)
		if err != nil {
			webutils.WriteError(w, err)
			return
		}
		out.Descriptions = append(out.Descriptions, *desc)
	}
	webutils.WriteJson(w, out)
}

func (s *Server) HandlerAjaxMeshVisibility(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, _, err := s.meshByRequest(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	dragon, err := parseDragonLayer(r.FormValue("dragon"))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	pit, err := parsePitState(r.FormValue("pit"))
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	res := s.graph.ResolveController(m.BaronHash)
	type jVisibility struct {
		Dragon           string
		Pit              string
		Visible          bool
		ControllerFound  bool
		DragonBits       uint8
		PitBits          uint8
		Mode             uint32
		FlatLayerMask    uint8
		RenderRegionHash string
	}
	webutils.WriteJson(w, &jVisibility{
		Dragon:           dragon.String(),
		Pit:              pit.String(),
		Visible:          visibility.Resolve(m.State(), s.graph, dragon, pit),
		ControllerFound:  res.Found,
		DragonBits:       res.DragonBits,
		PitBits:          res.PitBits,
		Mode:             uint32(res.Mode),
		FlatLayerMask:    m.VisibilityLayer,
		RenderRegionHash: fmt.Sprintf("0x%08x", m.RenderRegionHash),
	})
}

// HandlerAjaxRegion lists the meshes and grid of a render region, addressed
// by path string or "0x" hash.
func (s *Server) HandlerAjaxRegion(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name := mux.Vars(r)["name"]
	var meshes []int
	if hash, err := strconv.ParseUint(strings.TrimPrefix(name, "0x"), 16, 32); err == nil && strings.HasPrefix(name, "0x") {
		meshes = s.scene.MeshesForRegion(uint32(hash))
	} else {
		meshes = s.scene.MeshesForRegionName(name)
	}

	type jRegion struct {
		Region  string
		Meshes  []int
		HasGrid bool
	}
	out := &jRegion{Region: name, Meshes: meshes}
	for _, id := range meshes {
		if s.scene.GridForMesh(&s.scene.Meshes[id]) != nil {
			out.HasGrid = true
			break
		}
	}
	webutils.WriteJson(w, out)
}

func (s *Server) HandlerDumpMesh(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, id, err := s.meshByRequest(r)
	if err != nil {
		webutils.WriteError(w, err)
		return
	}
	webutils.WriteFile(w, bytes.NewBufferString(utils.SDump(m)),
		fmt.Sprintf("%s-mesh-%d.txt", s.sceneName, id))
}

// meshMetadata is the yaml-editable slice of a mesh record. Geometry stays
// on the server, only draw metadata round-trips through the editor.
type meshMetadata struct {
	Name                    string     `yaml:"name"`
	VisibilityLayer         uint8      `yaml:"visibilityLayer"`
	QualityMask             uint8      `yaml:"qualityMask"`
	RenderFlags             uint16     `yaml:"renderFlags"`
	LayerTransitionBehavior uint8      `yaml:"layerTransitionBehavior"`
	DisableBackfaceCulling  bool       `yaml:"disableBackfaceCulling"`
	BaronHash               uint32     `yaml:"baronHash"`
	RenderRegionHash        uint32     `yaml:"renderRegionHash"`
	BBoxMin                 mgl32.Vec3 `yaml:"bboxMin"`
	BBoxMax                 mgl32.Vec3 `yaml:"bboxMax"`
	Transform               mgl32.Mat4 `yaml:"transform,flow"`
}

func (s *Server) HandlerActionMesh(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]

	switch action {
	case "asyaml":
		s.mu.RLock()
		defer s.mu.RUnlock()

		m, id, err := s.meshByRequest(r)
		if err != nil {
			webutils.WriteError(w, err)
			return
		}

		meta := &meshMetadata{
			Name:                    m.Name,
			VisibilityLayer:         m.VisibilityLayer,
			QualityMask:             uint8(m.QualityMask),
			RenderFlags:             m.RenderFlags,
			LayerTransitionBehavior: m.LayerTransitionBehavior,
			DisableBackfaceCulling:  m.DisableBackfaceCulling,
			BaronHash:               m.BaronHash,
			RenderRegionHash:        m.RenderRegionHash,
			BBoxMin:                 m.BBoxMin,
			BBoxMax:                 m.BBoxMax,
			Transform:               m.Transform,
		}

		var buffer bytes.Buffer
		enc := yaml.NewEncoder(&buffer)
		enc.SetIndent(2)

		if err := enc.Encode(meta); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to marshal yaml"))
			return
		}
		if err := enc.Close(); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to close yaml encoder"))
			return
		}

		webutils.WriteFile(w, &buffer, fmt.Sprintf("%s-mesh-%d.yaml", s.sceneName, id))
	case "fromyaml":
		s.mu.Lock()
		defer s.mu.Unlock()

		m, _, err := s.meshByRequest(r)
		if err != nil {
			webutils.WriteError(w, err)
			return
		}

		data, err := webutils.ReadFormFile(r, "data")
		if err != nil {
			webutils.WriteError(w, err)
			return
		}

		var meta meshMetadata
		if err := yaml.Unmarshal(data, &meta); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to unmarshal yaml"))
			return
		}

		m.Name = meta.Name
		m.VisibilityLayer = meta.VisibilityLayer
		m.QualityMask = visibility.NormalizeQualityMask(meta.QualityMask)
		m.RenderFlags = meta.RenderFlags
		m.LayerTransitionBehavior = meta.LayerTransitionBehavior
		m.DisableBackfaceCulling = meta.DisableBackfaceCulling
		m.BaronHash = meta.BaronHash
		m.RenderRegionHash = meta.RenderRegionHash
		m.BBoxMin = meta.BBoxMin
		m.BBoxMax = meta.BBoxMax
		m.Transform = meta.Transform

		webutils.WriteJson(w, m)
	default:
		webutils.WriteError(w, errors.Errorf("Unknown action %q", action))
	}
}

func (s *Server) HandlerGltfScene(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, err := s.scene.ExportGLTF()
	if err != nil {
		webutils.WriteError(w, err)
		return
	}

	var buffer bytes.Buffer
	if r.FormValue("format") == "text" {
		if err := gltfutils.ExportText(&buffer, doc); err != nil {
			webutils.WriteError(w, errors.Wrapf(err, "Failed to encode gltf"))
			return
		}
		webutils.WriteFile(w, &buffer, s.sceneName+".gltf")
		return
	}
	if err := gltfutils.ExportBinary(&buffer, doc); err != nil {
		webutils.WriteError(w, errors.Wrapf(err, "Failed to encode gltf"))
		return
	}
	webutils.WriteFile(w, &buffer, s.sceneName+".glb")
}

func parseDragonLayer(v string) (visibility.DragonLayer, error) {
	if v == "" {
		return visibility.DragonBase, nil
	}
	if l, ok := visibility.DragonLayerByName(v); ok {
		return l, nil
	}
	if n, err := strconv.Atoi(v); err == nil &&
		n >= 0 && n < int(visibility.DragonLayerCount) {
		return visibility.DragonLayer(n), nil
	}
	return 0, errors.Errorf("unknown dragon layer %q", v)
}

func parsePitState(v string) (visibility.PitState, error) {
	if v == "" {
		return visibility.PitBase, nil
	}
	if p, ok := visibility.PitStateByName(v); ok {
		return p, nil
	}
	if n, err := strconv.Atoi(v); err == nil &&
		n >= 0 && n < int(visibility.PitStateCount) {
		return visibility.PitState(n), nil
	}
	return 0, errors.Errorf("unknown pit state %q", v)
}
