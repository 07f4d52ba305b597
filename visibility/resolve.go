package visibility

// Resolution is the outcome of walking a controller reference: the union of
// contributed layer bits per axis and the authoritative parent mode of the
// controller the walk started at.
type Resolution struct {
	DragonBits uint8
	PitBits    uint8
	Mode       ParentMode
	Found      bool
}

// ResolveController walks the graph from the given path hash. Missing
// references contribute nothing; cycles are cut by the visited set, so the
// walk is bounded by the number of distinct controllers.
func (g Graph) ResolveController(hash uint32) Resolution {
	res := Resolution{Mode: ParentVisible}
	if hash == 0 {
		return res
	}
	node, ok := g[hash]
	if !ok {
		return res
	}
	res.Found = true

	visited := make(map[uint32]struct{})
	g.collect(hash, visited, &res)

	// the starting controller's own mode is authoritative, parents never
	// override it
	if c, ok := node.(*CompositeController); ok {
		res.Mode = NormalizeParentMode(uint32(c.Mode))
	}
	return res
}

func (g Graph) collect(hash uint32, visited map[uint32]struct{}, res *Resolution) {
	if _, seen := visited[hash]; seen {
		return
	}
	visited[hash] = struct{}{}

	node, ok := g[hash]
	if !ok {
		return
	}

	switch c := node.(type) {
	case *LeafLayerController:
		switch c.Kind {
		case LeafDragonLayer:
			res.DragonBits |= c.Bit
		case LeafPitState:
			res.PitBits |= c.Bit
		}
	case *CompositeController:
		for _, parent := range c.Parents {
			g.collect(parent, visited, res)
		}
	case *NamedController:
		// no bit contribution
	}
}

// MeshState is the visibility-relevant slice of a decoded mesh record.
type MeshState struct {
	// LayerMask is the flat 8-bit dragon layer bitmask.
	LayerMask uint8
	// BaronHash references the override controller graph, 0 = absent.
	BaronHash uint32
}

// Resolve computes the final visibility of a mesh for the active dragon
// layer and pit state. The two axes are evaluated independently and both
// must pass.
func Resolve(mesh MeshState, graph Graph, dragon DragonLayer, pit PitState) bool {
	res := graph.ResolveController(mesh.BaronHash)
	return resolveDragon(mesh, res, dragon) && resolvePit(res, pit)
}

func resolveDragon(mesh MeshState, res Resolution, dragon DragonLayer) bool {
	if res.Found && res.DragonBits != 0 {
		// the base state is never excludable, whatever the mode says
		if dragon == DragonBase {
			return true
		}
		// a resolved set carrying the base bit covers every layer
		member := res.DragonBits&dragon.Bit() != 0 || res.DragonBits&DragonBase.Bit() != 0
		if res.Mode == ParentNotVisible {
			return !member
		}
		return member
	}

	// no controller contribution: the flat mask decides; 0 and 255 both mean
	// "every layer", membership is a bit test, not equality
	m := mesh.LayerMask
	return m == 0 || m == 0xff || m&dragon.Bit() != 0
}

func resolvePit(res Resolution, pit PitState) bool {
	if !res.Found || res.PitBits == 0 {
		return true
	}
	if pit == PitBase {
		return true
	}
	member := res.PitBits&pit.Bit() != 0 || res.PitBits&PitBase.Bit() != 0
	if res.Mode == ParentNotVisible {
		return !member
	}
	return member
}
