package chainbackend

import (
	"golang.org/x/crypto/blake2b"

	"github.com/subclone/subeth/scale"
	"github.com/subclone/subeth/translator"
)

const (
	extrinsicSignedBit = 0x80

	multiAddressID = 0

	sigEd25519 = 0
	sigSr25519 = 1
	sigEcdsa   = 2
)

// decodeExtrinsic parses one SCALE-encoded UncheckedExtrinsic: a
// compact-length prefix, a version byte (top bit set if signed), an
// optional (MultiAddress, MultiSignature, SignedExtra) triple, then the
// call body. Only MultiAddress::Id and the three standard signature
// kinds are recognized.
//
// Any structural decode failure degrades to a partially-zeroed Extrinsic
// rather than propagating an error: a single malformed or
// not-yet-understood extrinsic (an unsupported MultiAddress variant, an
// exotic signed extension set) never drops the whole block. Hash is
// always set, since it is computed straight off raw and needs no
// envelope decoding.
func decodeExtrinsic(raw []byte) translator.Extrinsic {
	hash := blake2b.Sum256(raw)
	ext := translator.Extrinsic{Hash: hash}

	body := raw
	if n, consumed, err := scale.DecodeCompact(raw); err == nil && consumed+int(n) <= len(raw) {
		body = raw[consumed : consumed+int(n)]
	}

	dec := scale.NewDecoder(body)
	version, err := dec.Uint8()
	if err != nil {
		return ext
	}

	if version&extrinsicSignedBit != 0 {
		signer, nonce, ok := decodeSignedPrefix(dec)
		if !ok {
			return ext
		}
		ext.Signer = signer
		ext.Nonce = nonce
	}

	rest, err := dec.FixedBytes(dec.Remaining())
	if err != nil {
		return ext
	}
	call, err := translator.DecodeRuntimeCall(rest)
	if err != nil {
		return ext
	}
	ext.PalletIdx = call.PalletIndex
	ext.CallIdx = call.CallIndex
	ext.CallData = call.Args
	return ext
}

// decodeSignedPrefix decodes the (MultiAddress, MultiSignature, Era,
// compact nonce, compact tip) prefix of a signed extrinsic, returning
// the signer and nonce. The tip is decoded to advance the cursor but
// otherwise discarded.
func decodeSignedPrefix(dec *scale.Decoder) (*translator.AccountID, uint64, bool) {
	addrTag, err := dec.Uint8()
	if err != nil || addrTag != multiAddressID {
		return nil, 0, false
	}
	raw, err := dec.FixedBytes(32)
	if err != nil {
		return nil, 0, false
	}
	var signer translator.AccountID
	copy(signer[:], raw)

	sigTag, err := dec.Uint8()
	if err != nil {
		return nil, 0, false
	}
	var sigLen int
	switch sigTag {
	case sigEd25519, sigSr25519:
		sigLen = 64
	case sigEcdsa:
		sigLen = 65
	default:
		return nil, 0, false
	}
	if _, err := dec.FixedBytes(sigLen); err != nil {
		return nil, 0, false
	}

	// Era: a single zero byte means Immortal; any other first byte means
	// a 2-byte mortal era encoding.
	eraFirst, err := dec.Uint8()
	if err != nil {
		return nil, 0, false
	}
	if eraFirst != 0 {
		if _, err := dec.Uint8(); err != nil {
			return nil, 0, false
		}
	}

	nonce, err := dec.Compact()
	if err != nil {
		return nil, 0, false
	}
	if _, err := dec.Compact(); err != nil {
		return nil, 0, false
	}

	return &signer, nonce, true
}
