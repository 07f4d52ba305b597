package vismat

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/mapcase/mapgeo_browser/visibility"
)

// jsonEntry is the loose shape of one descriptor object. Scalar values come
// in either as numbers or as annotated strings ("u8 = 32"), raw messages
// keep both alive until scalarUint.
type jsonEntry struct {
	Type       string          `json:"__type"`
	PathHash   string          `json:"PathHash"`
	Name       string          `json:"Name"`
	Parents    json.RawMessage `json:"Parents"`
	ParentMode json.RawMessage `json:"ParentMode"`
	DragonBit  json.RawMessage `json:"{27639032}"`
	PitBit     json.RawMessage `json:"{8bff8cdf}"`
}

// ParseJSON builds a controller graph out of a materials.bin.json dump.
// Objects that are not visibility controllers are skipped, a malformed
// top-level document is an error.
func ParseJSON(data []byte) (visibility.Graph, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, "Failed to parse materials json")
	}

	entries := make([]entry, 0, len(root))
	for key, raw := range root {
		var je jsonEntry
		if err := json.Unmarshal(raw, &je); err != nil {
			// a non-object value at top level, not ours
			continue
		}

		hash, ok := parseHashRef(je.PathHash)
		if !ok {
			hash, ok = parseHashRef(key)
		}
		if !ok {
			continue
		}

		e := entry{hash: hash, typeName: je.Type, name: je.Name}

		if mode, ok := scalarUint(je.ParentMode); ok {
			e.parentMode = uint32(mode)
		}
		if bit, ok := scalarUint(je.DragonBit); ok {
			b := uint8(bit)
			e.dragonBit = &b
		}
		if bit, ok := scalarUint(je.PitBit); ok {
			b := uint8(bit)
			e.pitBit = &b
		}
		if refs, ok := parentRefs(je.Parents); ok {
			e.parents = refs
			e.hasParents = true
		}

		entries = append(entries, e)
	}

	return buildGraph(entries), nil
}

// scalarUint reads a number that may be dumped as a JSON number, a numeric
// string, or an annotated string like "u8 = 32".
func scalarUint(raw json.RawMessage) (uint64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	if at := strings.LastIndexByte(s, '='); at >= 0 {
		s = s[at+1:]
	}
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parentRefs reads the parent list, either a plain array of hash refs or a
// wrapper object with the array under a "list..." key.
func parentRefs(raw json.RawMessage) ([]uint32, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, false
		}
		found := false
		for key, inner := range wrapper {
			if strings.Contains(strings.ToLower(key), "list") {
				if err := json.Unmarshal(inner, &refs); err == nil {
					found = true
					break
				}
			}
		}
		if !found {
			return nil, false
		}
	}

	out := make([]uint32, 0, len(refs))
	for _, ref := range refs {
		if hash, ok := parseHashRef(ref); ok {
			out = append(out, hash)
		}
	}
	return out, true
}
