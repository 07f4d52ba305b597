package scenegeo

import "fmt"

// FormatError means the container cannot be identified at all: wrong magic
// signature or a version outside the supported range. Fatal, abort load.
type FormatError struct {
	Magic   [4]byte
	Version uint32
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("scene container %s (magic %q, version %d)", e.Reason, e.Magic, e.Version)
}

// TruncatedDataError means a length-prefixed section ran past the end of the
// input buffer. Fatal, abort load.
type TruncatedDataError struct {
	Section string
	Offset  int
	Need    int
}

func (e *TruncatedDataError) Error() string {
	return fmt.Sprintf("section %q truncated: need 0x%x bytes at offset 0x%x", e.Section, e.Need, e.Offset)
}

// UnknownElementError reports a vertex element semantic or format code
// outside the known tables. Recoverable: the caller decides whether to skip
// the element or abort.
type UnknownElementError struct {
	Semantic uint32
	Format   uint32
}

func (e *UnknownElementError) Error() string {
	return fmt.Sprintf("unknown vertex element (semantic %d, format %d)", e.Semantic, e.Format)
}

// RangeError reports an out-of-range index or bitmask value inside an
// otherwise well-formed record.
type RangeError struct {
	Section string
	Mesh    int
	Field   string
	Value   uint32
	Limit   uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("mesh %d %s: %s = %d exceeds limit %d", e.Mesh, e.Section, e.Field, e.Value, e.Limit)
}
