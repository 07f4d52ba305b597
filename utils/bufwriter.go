package utils

import (
	"bytes"
	"encoding/binary"
	"math"
)

// BufWriter builds a little-endian byte stream section by section.
type BufWriter struct {
	buf bytes.Buffer
}

func NewBufWriter() *BufWriter {
	return &BufWriter{}
}

func (bw *BufWriter) Len() int { return bw.buf.Len() }

func (bw *BufWriter) Bytes() []byte { return bw.buf.Bytes() }

func (bw *BufWriter) PutBytes(b []byte) {
	bw.buf.Write(b)
}

func (bw *BufWriter) PutByte(v byte) {
	bw.buf.WriteByte(v)
}

func (bw *BufWriter) PutBool(v bool) {
	if v {
		bw.buf.WriteByte(1)
	} else {
		bw.buf.WriteByte(0)
	}
}

func (bw *BufWriter) PutLU16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	bw.buf.Write(b[:])
}

func (bw *BufWriter) PutLU32(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	bw.buf.Write(b[:])
}

func (bw *BufWriter) PutLI32(v int32) {
	bw.PutLU32(uint32(v))
}

func (bw *BufWriter) PutLF(v float32) {
	bw.PutLU32(math.Float32bits(v))
}

// PutString writes a u32 byte length followed by the string encoded with the
// configured charmap, no terminator.
func (bw *BufWriter) PutString(s string) {
	b := StringToBytes(s, false)
	bw.PutLU32(uint32(len(b)))
	bw.buf.Write(b)
}
