package utils

import "testing"

var hashTests = []struct {
	in_str   string
	out_hash uint32
}{
	{"", 0x811c9dc5},
	{"a", 0xe40c292c},
	{"A", 0xe40c292c},
	{"maps/mapgeometry/map11/base", 0xeb85e370},
	{"Maps/KiloMaps/Map22/Hextech", 0x053e712e},
	{"visibilitycontroller", 0x5150a6a1},
	{"BaronTransition", 0x0a629a1c},
}

func TestStringHashPath(t *testing.T) {
	for _, test := range hashTests {
		result := GameStringHashPath(test.in_str)
		if result != test.out_hash {
			t.Errorf("GameStringHashPath(%q)=0x%x; expected 0x%x", test.in_str, result, test.out_hash)
		}
	}
}
