package utils

const (
	fnvOffsetBasis = 0x811c9dc5
	fnvPrime       = 0x01000193
)

// GameStringHashPath hashes a controller/material path the way the game
// hashes property-bin paths: FNV-1a over the lowercased string.
func GameStringHashPath(str string) uint32 {
	hash := uint32(fnvOffsetBasis)
	for _, c := range []byte(str) {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		hash ^= uint32(c)
		hash *= fnvPrime
	}
	return hash
}
