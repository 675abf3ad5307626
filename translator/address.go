package translator

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/crypto/blake2b"
)

// ToAccount derives the chain's native 32-byte AccountID from a 20-byte
// Ethereum-style address: Blake2-256(address ‖ [0;12]).
//
// This mapping is deterministic and one-way; ToAddress is not its inverse.
func ToAccount(addr Address) AccountID {
	preimage := make([]byte, 0, 32)
	preimage = append(preimage, addr[:]...)
	preimage = append(preimage, make([]byte, 12)...)

	digest := blake2b.Sum256(preimage)
	var account AccountID
	copy(account[:], digest[:])
	return account
}

// ToAddress truncates a 32-byte AccountID to its first 20 bytes. This
// direction is lossy: ToAddress(ToAccount(a)) != a in general.
func ToAddress(account AccountID) Address {
	var addr Address
	copy(addr[:], account[:20])
	return addr
}

// maxPalletNameLen is the widest pallet name that fits in a 20-byte
// synthetic address with no truncation.
const maxPalletNameLen = 20

// ContractAddress synthesizes a pallet's 20-byte synthetic address: the
// UTF-8 bytes of the pallet name, right-padded with zero bytes to 20
// bytes. Names longer than 20 bytes are truncated.
func ContractAddress(palletName string) Address {
	var addr Address
	b := []byte(palletName)
	if len(b) > maxPalletNameLen {
		b = b[:maxPalletNameLen]
	}
	copy(addr[:], b)
	return addr
}

// PalletName reads a synthetic pallet address back as a UTF-8 pallet name,
// trimming trailing NUL padding. It rejects addresses whose bytes (after
// trimming trailing NULs) are not valid UTF-8.
//
// The pair (ContractAddress, PalletName) round-trips only for pallet names
// whose UTF-8 encoding is <= 20 bytes and contains no interior NUL bytes.
func PalletName(addr Address) (string, bool) {
	trimmed := bytes.TrimRight(addr[:], "\x00")
	if !utf8.Valid(trimmed) {
		return "", false
	}
	return string(trimmed), true
}
