package visibility

// ParentMode selects how a composite controller interprets membership in the
// union of its parents' bits. The on-disk values come from the materials
// side channel; 0 is normalized to Visible.
type ParentMode uint32

const (
	ParentVisible    ParentMode = 1
	ParentNotVisible ParentMode = 3
)

func NormalizeParentMode(v uint32) ParentMode {
	if v == uint32(ParentNotVisible) {
		return ParentNotVisible
	}
	return ParentVisible
}

// LeafKind distinguishes what axis a leaf layer controller contributes to.
type LeafKind int

const (
	LeafDragonLayer LeafKind = iota
	LeafPitState
)

// Controller is a node in the visibility override graph. Nodes reference
// each other by path hash through the Graph arena, never by pointer.
type Controller interface {
	controller()
}

// LeafLayerController exposes a single layer bit.
type LeafLayerController struct {
	Kind LeafKind
	// Bit is the flag value itself (1, 2, 4, ...), not a layer index.
	Bit uint8
}

// NamedController carries only a display name. It contributes no bits but
// may appear as a parent.
type NamedController struct {
	Name string
}

// CompositeController aggregates parents under a visible/not-visible mode.
type CompositeController struct {
	Parents []uint32
	Mode    ParentMode
}

func (*LeafLayerController) controller() {}
func (*NamedController) controller()     {}
func (*CompositeController) controller() {}

// Graph is the controller arena, indexed by path hash.
type Graph map[uint32]Controller
