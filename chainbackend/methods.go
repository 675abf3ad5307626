package chainbackend

import (
	"context"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"

	"github.com/subclone/subeth/translator"
)

// these satisfy the typed half of Backend on top of WSClient's raw
// Request/Subscribe primitives, speaking Substrate's chain_* / state_*
// RPC namespace.

// BlockNumber implements Backend.
func (c *WSClient) BlockNumber(ctx context.Context) (uint64, error) {
	var header struct {
		Number string `json:"number"`
	}
	if err := c.Request(ctx, "chain_getHeader", nil, &header); err != nil {
		return 0, errors.Wrap(err, "chain_getHeader")
	}
	return parseHexUint(header.Number)
}

// BlockHash implements Backend.
func (c *WSClient) BlockHash(ctx context.Context, number uint64) ([32]byte, bool, error) {
	var hash *string
	if err := c.Request(ctx, "chain_getBlockHash", []interface{}{number}, &hash); err != nil {
		return [32]byte{}, false, errors.Wrap(err, "chain_getBlockHash")
	}
	if hash == nil {
		return [32]byte{}, false, nil
	}
	h, err := parseHex32(*hash)
	if err != nil {
		return [32]byte{}, false, err
	}
	return h, true, nil
}

// Block implements Backend.
//
// The wire shape of "chain_getBlock" is a JSON header plus a list of
// hex-encoded, SCALE-encoded extrinsics. This method does the JSON
// unwrap and the full structural extrinsic decode (version byte,
// signer, signature, signed extensions, pallet/call index split, and
// extrinsic hash), via decodeExtrinsic. Resolving a decoded pallet
// index to a pallet name, recognizing a Balances transfer, and reading
// the block timestamp out of its Timestamp::set inherent all need
// runtime metadata this layer doesn't have, so those are left to the
// metadata-aware caller (package gateway).
func (c *WSClient) Block(ctx context.Context, hash [32]byte) (translator.SubstrateBlock, error) {
	var raw struct {
		Block struct {
			Header struct {
				Number         string `json:"number"`
				ParentHash     string `json:"parentHash"`
				StateRoot      string `json:"stateRoot"`
				ExtrinsicsRoot string `json:"extrinsicsRoot"`
			} `json:"header"`
			Extrinsics []string `json:"extrinsics"`
		} `json:"block"`
	}
	if err := c.Request(ctx, "chain_getBlock", []interface{}{hex.EncodeToString(hash[:])}, &raw); err != nil {
		return translator.SubstrateBlock{}, errors.Wrap(err, "chain_getBlock")
	}

	number, err := parseHexUint(raw.Block.Header.Number)
	if err != nil {
		return translator.SubstrateBlock{}, err
	}
	parentHash, err := parseHex32(raw.Block.Header.ParentHash)
	if err != nil {
		return translator.SubstrateBlock{}, err
	}
	stateRoot, err := parseHex32(raw.Block.Header.StateRoot)
	if err != nil {
		return translator.SubstrateBlock{}, err
	}
	extrinsicsRoot, err := parseHex32(raw.Block.Header.ExtrinsicsRoot)
	if err != nil {
		return translator.SubstrateBlock{}, err
	}

	block := translator.SubstrateBlock{
		Hash:           hash,
		Number:         number,
		ParentHash:     parentHash,
		StateRoot:      stateRoot,
		ExtrinsicsRoot: extrinsicsRoot,
	}

	for _, encoded := range raw.Block.Extrinsics {
		extBytes, err := hexDecode(encoded)
		if err != nil {
			return translator.SubstrateBlock{}, err
		}
		block.Extrinsics = append(block.Extrinsics, decodeExtrinsic(extBytes))
	}

	return block, nil
}

// Metadata implements Backend.
//
// state_getMetadata returns the runtime's full SCALE-encoded metadata
// blob; decoding that format is a separate concern from RPC plumbing.
// WSClient therefore delegates to an injected MetadataDecoder rather
// than parsing the blob itself, so a real decoder (e.g. one generated
// from a chain's metadata types) can be plugged in without touching the
// RPC layer.
func (c *WSClient) Metadata(ctx context.Context) (translator.Metadata, error) {
	if c.decodeMetadata == nil {
		return translator.Metadata{}, errors.New("chainbackend: no MetadataDecoder configured")
	}
	var hexBlob string
	if err := c.Request(ctx, "state_getMetadata", nil, &hexBlob); err != nil {
		return translator.Metadata{}, errors.Wrap(err, "state_getMetadata")
	}
	raw, err := hexDecode(hexBlob)
	if err != nil {
		return translator.Metadata{}, errors.Wrap(err, "decode metadata hex")
	}
	meta, err := c.decodeMetadata(raw)
	if err != nil {
		return translator.Metadata{}, errors.Wrap(err, "decode metadata blob")
	}
	return meta, nil
}

// MetadataDecoder turns a raw SCALE-encoded runtime metadata blob into the
// parsed shape package translator consumes. WithMetadataDecoder installs
// one; without it, Metadata always fails.
type MetadataDecoder func(raw []byte) (translator.Metadata, error)

// WithMetadataDecoder configures the decoder used by Metadata.
func WithMetadataDecoder(d MetadataDecoder) Option {
	return func(c *WSClient) { c.decodeMetadata = d }
}

// Option configures a WSClient at construction time.
type Option func(*WSClient)

// FetchRaw implements Backend.
func (c *WSClient) FetchRaw(ctx context.Context, key []byte, at [32]byte) ([]byte, error) {
	var value *string
	params := []interface{}{hex.EncodeToString(key), hex.EncodeToString(at[:])}
	if err := c.Request(ctx, "state_getStorage", params, &value); err != nil {
		return nil, errors.Wrap(err, "state_getStorage")
	}
	if value == nil {
		return nil, nil
	}
	return hexDecode(*value)
}

// SubmitExtrinsic implements Backend.
func (c *WSClient) SubmitExtrinsic(ctx context.Context, extrinsic []byte) ([32]byte, error) {
	var hash string
	params := []interface{}{hex.EncodeToString(extrinsic)}
	if err := c.Request(ctx, "author_submitExtrinsic", params, &hash); err != nil {
		return [32]byte{}, errors.Wrap(err, "author_submitExtrinsic")
	}
	return parseHex32(hash)
}

func hexDecode(s string) ([]byte, error) {
	return hex.DecodeString(strings.TrimPrefix(s, "0x"))
}

func parseHex32(s string) ([32]byte, error) {
	var out [32]byte
	b, err := hexDecode(s)
	if err != nil {
		return out, errors.Wrapf(err, "decode hash %q", s)
	}
	if len(b) != 32 {
		return out, errors.Errorf("expected 32-byte hash, got %d bytes", len(b))
	}
	copy(out[:], b)
	return out, nil
}

func parseHexUint(s string) (uint64, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return 0, nil
	}
	var out uint64
	for _, r := range s {
		var v uint64
		switch {
		case r >= '0' && r <= '9':
			v = uint64(r - '0')
		case r >= 'a' && r <= 'f':
			v = uint64(r-'a') + 10
		case r >= 'A' && r <= 'F':
			v = uint64(r-'A') + 10
		default:
			return 0, errors.Errorf("invalid hex digit %q in %q", r, s)
		}
		out = out<<4 | v
	}
	return out, nil
}
