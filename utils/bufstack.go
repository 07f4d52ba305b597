package utils

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"
)

// Overrun is raised (via panic) when a read runs past the end of a buffer.
// Decoders recover it at their entry point and turn it into a proper error
// carrying the buffer chain for diagnostics.
type Overrun struct {
	Buf    *BufStack
	Pos    int
	Amount int
}

func (o *Overrun) Error() string {
	return fmt.Sprintf("read of 0x%x bytes at 0x%x overruns %v", o.Amount, o.Pos, o.Buf.StringChain())
}

type BufStack struct {
	parent         *BufStack
	childs         []*BufStack
	buf            []byte
	relativeOffset int
	absoluteOffset int
	size           int
	pos            int
	kind           string
	name           string
}

func NewBufStack(kind string, b []byte) *BufStack {
	return &BufStack{
		buf:  b,
		size: len(b),
		kind: kind,
	}
}

func (bs *BufStack) addChild(childBs *BufStack) {
	if bs.childs == nil {
		bs.childs = make([]*BufStack, 1)
		bs.childs[0] = childBs
	} else {
		index := sort.Search(len(bs.childs), func(i int) bool {
			return bs.childs[i].relativeOffset > childBs.relativeOffset
		})
		bs.childs = append(bs.childs, childBs)
		copy(bs.childs[index+1:], bs.childs[index:])
		bs.childs[index] = childBs
	}
}

func (bs *BufStack) SubBuf(kind string, offset int) *BufStack {
	if offset > len(bs.buf) {
		panic(&Overrun{Buf: bs, Pos: offset})
	}
	childBs := &BufStack{
		parent:         bs,
		relativeOffset: offset,
		absoluteOffset: bs.absoluteOffset + offset,
		kind:           kind,
		buf:            bs.buf[offset:],
	}
	bs.addChild(childBs)
	return childBs
}

func (bs *BufStack) SubBufFollowing(kind string) *BufStack {
	if bs.size == 0 {
		panic(fmt.Sprintf("buffer %v size == 0", bs))
	}
	return bs.parent.SubBuf(kind, bs.relativeOffset+bs.size)
}

func (bs *BufStack) SetName(name string) *BufStack {
	bs.name = name
	return bs
}

func (bs *BufStack) SetSize(size int) *BufStack {
	bs.size = size
	return bs
}

func (bs *BufStack) Expand() *BufStack {
	bs.size = bs.parent.size - bs.relativeOffset
	return bs
}

func (bs *BufStack) Name() string { return bs.name }

func (bs *BufStack) Size() int { return bs.size }

func (bs *BufStack) Kind() string { return bs.kind }

func (bs *BufStack) Parent() *BufStack { return bs.parent }

func (bs *BufStack) RelativeOffset() int { return bs.relativeOffset }

func (bs *BufStack) AbsoluteOffset() int { return bs.absoluteOffset }

func (bs *BufStack) String() string {
	return fmt.Sprintf("buf<%v>(%v)[o:0x%x,s:0x%x,ao:0x%x,ae:0x%x]",
		bs.kind, bs.name, bs.relativeOffset, bs.size, bs.absoluteOffset, bs.absoluteOffset+bs.size)
}

func (bs *BufStack) StringChain() string {
	s := bs.String()
	if bs.parent != nil {
		s += fmt.Sprintf("::%s", bs.parent.String())
	}
	return s
}

func (bs *BufStack) Raw() []byte {
	raw := bs.buf[:]
	if bs.size != 0 {
		raw = raw[:bs.size]
	}
	return raw
}

func (bs *BufStack) Pos() int { return bs.pos }

func (bs *BufStack) Remaining() int { return len(bs.buf) - bs.pos }

func (bs *BufStack) Read(amount int) []byte {
	if bs.pos+amount > len(bs.buf) {
		panic(&Overrun{Buf: bs, Pos: bs.pos, Amount: amount})
	}
	oldPos := bs.pos
	bs.pos += amount
	return bs.buf[oldPos:bs.pos]
}

func (bs *BufStack) Skip(amount int) {
	if bs.pos+amount > len(bs.buf) {
		panic(&Overrun{Buf: bs, Pos: bs.pos, Amount: amount})
	}
	bs.pos += amount
}

func (bs *BufStack) ReadLU32() uint32 {
	return binary.LittleEndian.Uint32(bs.Read(4))
}

func (bs *BufStack) ReadLI32() int32 {
	return int32(bs.ReadLU32())
}

func (bs *BufStack) ReadLU16() uint16 {
	return binary.LittleEndian.Uint16(bs.Read(2))
}

func (bs *BufStack) ReadByte() byte {
	return bs.Read(1)[0]
}

func (bs *BufStack) ReadBool() bool {
	return bs.ReadByte() != 0
}

func (bs *BufStack) ReadLF() float32 {
	return math.Float32frombits(bs.ReadLU32())
}

// ReadString reads a u32 byte length followed by that many bytes, decoded
// with the configured charmap.
func (bs *BufStack) ReadString() string {
	l := int(bs.ReadLU32())
	if l == 0 {
		return ""
	}
	return BytesToString(bs.Read(l))
}

func (bs *BufStack) VerifySize(pos int) {
	if pos != bs.size {
		panic(fmt.Sprintf("Mismatch sizes: %v != %v", pos, bs.size))
	}
}
