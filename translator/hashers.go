package translator

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/crypto/blake2b"
)

// hashBlake2 returns the first size bytes of a Blake2b digest of key. size
// must be between 1 and 64.
func hashBlake2(key []byte, size int) []byte {
	h, err := blake2b.New(size, nil)
	if err != nil {
		// size is always a compile-time-known valid value (16 or 32) at
		// every call site below; a construction error here means the
		// blake2b package itself is broken.
		panic(err)
	}
	h.Write(key)
	return h.Sum(nil)
}

// twox runs xxhash64 (seed = index) over key for each index in [0, rounds),
// concatenating the little-endian results. This is Substrate's
// Twox128/Twox256 construction: Twox128 is two xxhash64 rounds (seeds 0 and
// 1) producing 16 bytes, Twox256 is four rounds producing 32 bytes, and a
// single round (seed 0) is Twox64.
//
// The seeded xxhash64 primitive comes from cespare/xxhash/v2
// (NewWithSeed); the multi-round concatenation above is this package's own
// composition on top of it, documented in DESIGN.md.
func twox(key []byte, rounds int) []byte {
	out := make([]byte, 0, rounds*8)
	for i := 0; i < rounds; i++ {
		d := xxhash.NewWithSeed(uint64(i))
		d.Write(key)
		var sum [8]byte
		binary.LittleEndian.PutUint64(sum[:], d.Sum64())
		out = append(out, sum[:]...)
	}
	return out
}

// HashKey applies the named hasher to key.
func HashKey(key []byte, h Hasher) []byte {
	switch h {
	case Blake2_128:
		return hashBlake2(key, 16)
	case Blake2_256:
		return hashBlake2(key, 32)
	case Blake2_128Concat:
		hashed := hashBlake2(key, 16)
		return append(hashed, key...)
	case Twox128:
		return twox(key, 2)
	case Twox256:
		return twox(key, 4)
	case Twox64Concat:
		hashed := twox(key, 1)
		return append(hashed, key...)
	case Identity:
		return append([]byte(nil), key...)
	default:
		panic("translator: unknown hasher")
	}
}
