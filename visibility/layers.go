// Package visibility evaluates per-mesh visibility from the flat layer
// bitmask stored in the scene container and the override controller graph
// supplied by the materials side channel. Resolution is pure: it performs no
// I/O and never mutates the graph.
package visibility

import (
	"fmt"
	"strings"
)

// DragonLayer is one of the eight alternate map decoration states, addressed
// by index. Bit() gives the flag value used in masks and leaf controllers.
type DragonLayer int

const (
	DragonBase DragonLayer = iota
	DragonInferno
	DragonMountain
	DragonOcean
	DragonCloud
	DragonHextech
	DragonChemtech
	DragonVoid

	DragonLayerCount
)

var dragonLayerNames = [DragonLayerCount]string{
	"Base", "Inferno", "Mountain", "Ocean", "Cloud", "Hextech", "Chemtech", "Void",
}

func (l DragonLayer) Bit() uint8 {
	return 1 << uint(l)
}

func (l DragonLayer) String() string {
	if l < 0 || l >= DragonLayerCount {
		return fmt.Sprintf("DragonLayer(%d)", int(l))
	}
	return dragonLayerNames[l]
}

// DragonLayerByName resolves a layer by its display name, case-insensitive.
func DragonLayerByName(name string) (DragonLayer, bool) {
	for l := DragonBase; l < DragonLayerCount; l++ {
		if strings.EqualFold(dragonLayerNames[l], name) {
			return l, true
		}
	}
	return 0, false
}

// DragonLayerByBit maps a leaf controller bit value back to its layer.
func DragonLayerByBit(bit uint8) (DragonLayer, bool) {
	for l := DragonBase; l < DragonLayerCount; l++ {
		if l.Bit() == bit {
			return l, true
		}
	}
	return 0, false
}

// PitState is the secondary visibility axis controlling the pit area
// decoration, independent of the dragon layer.
type PitState int

const (
	PitBase PitState = iota
	PitCup
	PitTunnel
	PitUpgraded

	PitStateCount
)

var pitStateNames = [PitStateCount]string{
	"Base", "Cup", "Tunnel", "Upgraded",
}

func (p PitState) Bit() uint8 {
	return 1 << uint(p)
}

func (p PitState) String() string {
	if p < 0 || p >= PitStateCount {
		return fmt.Sprintf("PitState(%d)", int(p))
	}
	return pitStateNames[p]
}

// PitStateByName resolves a pit state by its display name, case-insensitive.
func PitStateByName(name string) (PitState, bool) {
	for p := PitBase; p < PitStateCount; p++ {
		if strings.EqualFold(pitStateNames[p], name) {
			return p, true
		}
	}
	return 0, false
}
