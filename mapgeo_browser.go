package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/mapcase/mapgeo_browser/config"
	"github.com/mapcase/mapgeo_browser/scenegeo"
	"github.com/mapcase/mapgeo_browser/visibility"
	"github.com/mapcase/mapgeo_browser/vismat"
	"github.com/mapcase/mapgeo_browser/web"
)

func main() {
	var addr, mapgeoPath, materialsPath, encoding string
	var parsecheck bool
	flag.StringVar(&addr, "i", ":8000", "Address of server")
	flag.StringVar(&mapgeoPath, "mapgeo", "", "Path to scene geometry container (.mapgeo)")
	flag.StringVar(&materialsPath, "materials", "", "Path to materials descriptor (.bin.json or ritobin .py)")
	flag.StringVar(&encoding, "encoding", "", "String charmap override ("+strings.Join(config.ListEncodings(), ", ")+")")
	flag.BoolVar(&parsecheck, "parsecheck", false, "Decode, re-encode and compare instead of serving")
	flag.Parse()

	if encoding != "" {
		if err := config.SetEncoding(encoding); err != nil {
			log.Fatal(err)
		}
	}

	if mapgeoPath == "" {
		flag.PrintDefaults()
		return
	}

	data, err := os.ReadFile(mapgeoPath)
	if err != nil {
		log.Fatal(err)
	}
	scene, err := scenegeo.Decode(data)
	if err != nil {
		log.Fatalf("Failed to parse %q: %v", mapgeoPath, err)
	}
	log.Printf("[main] Loaded scene v%d: %d meshes, %d vertex buffers, %d grids",
		scene.Version, len(scene.Meshes), len(scene.VertexBuffers), len(scene.BucketGrids))

	graph := visibility.Graph{}
	if materialsPath != "" {
		matData, err := os.ReadFile(materialsPath)
		if err != nil {
			log.Fatal(err)
		}
		if strings.HasSuffix(materialsPath, ".json") {
			graph, err = vismat.ParseJSON(matData)
		} else {
			graph, err = vismat.ParseRitobin(matData)
		}
		if err != nil {
			log.Fatalf("Failed to parse %q: %v", materialsPath, err)
		}
		log.Printf("[main] Loaded %d visibility controllers", len(graph))
	}

	if parsecheck {
		parseCheck(scene, data)
		return
	}

	sceneName := strings.TrimSuffix(filepath.Base(mapgeoPath), filepath.Ext(mapgeoPath))
	if err := web.StartServer(addr, sceneName, scene, graph); err != nil {
		log.Fatal(err)
	}
}
