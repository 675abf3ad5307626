package scale

import (
	"encoding/binary"
	"fmt"

	"github.com/holiman/uint256"
)

// Decoder reads SCALE-encoded values off a byte slice, advancing an internal
// cursor. It never copies the backing slice.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps b for sequential decoding.
func NewDecoder(b []byte) *Decoder {
	return &Decoder{buf: b}
}

// Remaining reports how many bytes are left to decode.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

func (d *Decoder) take(n int) ([]byte, error) {
	if d.Remaining() < n {
		return nil, fmt.Errorf("scale: decode: need %d bytes, have %d", n, d.Remaining())
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Uint8 decodes a single byte.
func (d *Decoder) Uint8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint64 decodes 8 little-endian bytes.
func (d *Decoder) Uint64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U256 decodes 32 little-endian bytes into a uint256.Int.
func (d *Decoder) U256() (*uint256.Int, error) {
	b, err := d.take(32)
	if err != nil {
		return nil, err
	}
	rev := make([]byte, 32)
	for i, x := range b {
		rev[31-i] = x
	}
	return uint256.NewInt(0).SetBytes(rev), nil
}

// FixedBytes decodes n raw bytes with no length prefix.
func (d *Decoder) FixedBytes(n int) ([]byte, error) {
	b, err := d.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// Bytes decodes a SCALE compact-length-prefixed byte vector.
func (d *Decoder) Bytes() ([]byte, error) {
	n, consumed, err := DecodeCompact(d.buf[d.pos:])
	if err != nil {
		return nil, err
	}
	d.pos += consumed
	return d.FixedBytes(int(n))
}

// Compact decodes a SCALE compact integer.
func (d *Decoder) Compact() (uint64, error) {
	n, consumed, err := DecodeCompact(d.buf[d.pos:])
	if err != nil {
		return 0, err
	}
	d.pos += consumed
	return n, nil
}
