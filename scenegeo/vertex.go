package scenegeo

// ElementName is the semantic of a vertex element. The on-disk codes form a
// dense 0-based enumeration.
type ElementName uint32

const (
	Position ElementName = iota
	BlendWeight
	Normal
	FogCoordinate
	PrimaryColor
	SecondaryColor
	BlendIndex
	Texcoord0
	Texcoord1
	Texcoord2
	Texcoord3
	Texcoord4
	Texcoord5
	Texcoord6
	Texcoord7
	Tangent

	elementNameCount
)

var elementNames = [elementNameCount]string{
	"Position", "BlendWeight", "Normal", "FogCoordinate",
	"PrimaryColor", "SecondaryColor", "BlendIndex",
	"Texcoord0", "Texcoord1", "Texcoord2", "Texcoord3",
	"Texcoord4", "Texcoord5", "Texcoord6", "Texcoord7",
	"Tangent",
}

func (n ElementName) Known() bool {
	return n < elementNameCount
}

func (n ElementName) String() string {
	if !n.Known() {
		return "Unknown"
	}
	return elementNames[n]
}

// ElementNameByIdent resolves a semantic by its display name.
func ElementNameByIdent(ident string) (ElementName, bool) {
	for i, name := range elementNames {
		if name == ident {
			return ElementName(i), true
		}
	}
	return 0, false
}

// ElementFormat is the packed numeric layout of a vertex element.
type ElementFormat uint32

const (
	XFloat32 ElementFormat = iota
	XYFloat32
	XYZFloat32
	XYZWFloat32
	BGRAPacked8888
	ZYXWPacked8888
	RGBAPacked8888
	XYPacked1616
	XYZPacked161616
	XYZWPacked16161616
	XYPacked88
	XYZPacked888
	XYZWPacked8888

	elementFormatCount
)

var elementFormatSizes = [elementFormatCount]uint32{
	4, 8, 12, 16,
	4, 4, 4,
	4, 8, 8,
	2, 3, 4,
}

func (f ElementFormat) Known() bool {
	return f < elementFormatCount
}

// Size returns the byte size of one element of this format, 0 for unknown
// codes.
func (f ElementFormat) Size() uint32 {
	if !f.Known() {
		return 0
	}
	return elementFormatSizes[f]
}

type VertexElement struct {
	Name   ElementName
	Format ElementFormat
	// Offset is the byte offset of the element inside one vertex. It is
	// stored on disk up to version 17 and derived from declaration order in
	// version 18.
	Offset uint32
}

func (e VertexElement) Size() uint32 {
	return e.Format.Size()
}

func (e VertexElement) check() error {
	if !e.Name.Known() || !e.Format.Known() {
		return &UnknownElementError{Semantic: uint32(e.Name), Format: uint32(e.Format)}
	}
	return nil
}

// maxElementSlots is the fixed number of element slots each description
// record occupies on disk; unused slots are zero padded.
const maxElementSlots = 15

type VertexBufferDescription struct {
	Usage    uint32
	Elements []VertexElement
}

// Stride is the byte size of one interleaved vertex.
func (d *VertexBufferDescription) Stride() uint32 {
	var stride uint32
	for _, e := range d.Elements {
		stride += e.Size()
	}
	return stride
}

// FindElement returns the element with the given semantic, if present.
func (d *VertexBufferDescription) FindElement(name ElementName) (VertexElement, bool) {
	for _, e := range d.Elements {
		if e.Name == name {
			return e, true
		}
	}
	return VertexElement{}, false
}

func (d *VertexBufferDescription) equal(o *VertexBufferDescription) bool {
	if d.Usage != o.Usage || len(d.Elements) != len(o.Elements) {
		return false
	}
	for i := range d.Elements {
		if d.Elements[i] != o.Elements[i] {
			return false
		}
	}
	return true
}
