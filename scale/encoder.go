package scale

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// Encoder accumulates SCALE-encoded bytes.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the accumulated encoding.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// PutUint8 appends a single byte.
func (e *Encoder) PutUint8(v uint8) {
	e.buf = append(e.buf, v)
}

// PutUint64 appends v as 8 little-endian bytes.
func (e *Encoder) PutUint64(v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
}

// PutU256 appends v as 32 little-endian bytes.
func (e *Encoder) PutU256(v *uint256.Int) {
	b := v.Bytes32()
	// uint256.Bytes32 is big-endian; SCALE / the signing pre-image want LE.
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	e.buf = append(e.buf, b[:]...)
}

// PutFixedBytes appends b verbatim (used for Address/Hash fields which are
// already fixed-width and have no length prefix in SCALE).
func (e *Encoder) PutFixedBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// PutBytes appends a SCALE compact-length-prefixed byte vector.
func (e *Encoder) PutBytes(b []byte) {
	e.buf = append(e.buf, EncodeCompact(uint64(len(b)))...)
	e.buf = append(e.buf, b...)
}

// PutCompact appends n as a SCALE compact integer.
func (e *Encoder) PutCompact(n uint64) {
	e.buf = append(e.buf, EncodeCompact(n)...)
}
