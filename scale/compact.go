// Package scale implements the minimal subset of the SCALE codec that the
// gateway needs: fixed-width little-endian integers, compact integers, and
// length-prefixed byte vectors. It does not attempt to be a general-purpose
// SCALE library; it only covers EthereumTransaction and RuntimeCall headers.
package scale

import (
	"fmt"
	"math/big"
)

// EncodeCompact encodes n using the SCALE compact-integer format.
func EncodeCompact(n uint64) []byte {
	switch {
	case n < 1<<6:
		return []byte{byte(n << 2)}
	case n < 1<<14:
		v := uint16(n<<2) | 0x01
		return []byte{byte(v), byte(v >> 8)}
	case n < 1<<30:
		v := uint32(n<<2) | 0x02
		return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
	default:
		b := big.NewInt(0).SetUint64(n).Bytes()
		// big.Int.Bytes is big-endian; SCALE wants little-endian.
		reversed := make([]byte, len(b))
		for i, x := range b {
			reversed[len(b)-1-i] = x
		}
		out := make([]byte, 0, len(reversed)+1)
		out = append(out, byte((len(reversed)-4)<<2)|0x03)
		out = append(out, reversed...)
		return out
	}
}

// DecodeCompact decodes a SCALE compact integer from the front of b,
// returning the value and the number of bytes consumed.
func DecodeCompact(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, fmt.Errorf("scale: compact: empty input")
	}
	switch b[0] & 0x03 {
	case 0x00:
		return uint64(b[0] >> 2), 1, nil
	case 0x01:
		if len(b) < 2 {
			return 0, 0, fmt.Errorf("scale: compact: truncated 2-byte mode")
		}
		v := uint16(b[0]) | uint16(b[1])<<8
		return uint64(v >> 2), 2, nil
	case 0x02:
		if len(b) < 4 {
			return 0, 0, fmt.Errorf("scale: compact: truncated 4-byte mode")
		}
		v := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
		return uint64(v >> 2), 4, nil
	default:
		n := int(b[0]>>2) + 4
		if len(b) < 1+n {
			return 0, 0, fmt.Errorf("scale: compact: truncated big-integer mode")
		}
		v := big.NewInt(0)
		for i := n - 1; i >= 0; i-- {
			v.Lsh(v, 8)
			v.Or(v, big.NewInt(int64(b[1+i])))
		}
		if !v.IsUint64() {
			return 0, 0, fmt.Errorf("scale: compact: value overflows uint64")
		}
		return v.Uint64(), 1 + n, nil
	}
}
