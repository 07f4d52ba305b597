package web

import (
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/mapcase/mapgeo_browser/scenegeo"
	"github.com/mapcase/mapgeo_browser/visibility"
)

// Server holds the loaded scene the inspector handlers run against. The
// fromyaml action mutates meshes, so every handler takes the lock.
type Server struct {
	mu sync.RWMutex

	sceneName string
	scene     *scenegeo.SceneDocument
	graph     visibility.Graph
}

func StartServer(addr string, sceneName string, scene *scenegeo.SceneDocument, graph visibility.Graph) error {
	s := &Server{
		sceneName: sceneName,
		scene:     scene,
		graph:     graph,
	}

	r := mux.NewRouter()
	r.HandleFunc("/json/scene", s.HandlerAjaxScene)
	r.HandleFunc("/json/scene/mesh/{id}", s.HandlerAjaxMesh)
	r.HandleFunc("/json/scene/mesh/{id}/visibility", s.HandlerAjaxMeshVisibility)
	r.HandleFunc("/json/scene/region/{name}", s.HandlerAjaxRegion)
	r.HandleFunc("/dump/scene/mesh/{id}", s.HandlerDumpMesh)
	r.HandleFunc("/action/scene/mesh/{id}/{action}", s.HandlerActionMesh)
	r.HandleFunc("/gltf/scene", s.HandlerGltfScene)

	h := handlers.RecoveryHandler()(r)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("[web] Starting server %v", addr)

	return http.ListenAndServe(addr, h)
}
