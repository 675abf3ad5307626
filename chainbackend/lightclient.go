package chainbackend

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/subclone/subeth/translator"
)

var _ Backend = (*chainSpecBackend)(nil)

// ChainSpecChannel is the injected, already-opaque request/subscribe
// channel a light client hands us once it has synced against a chain-spec
// file. The light client's internals (networking, sync, light-client
// proofs) are out of scope; this package only wraps whatever channel it
// exposes in the same Backend interface DialURL produces.
type ChainSpecChannel interface {
	Request(ctx context.Context, method string, params []interface{}, out interface{}) error
	Subscribe(ctx context.Context, method string) (Subscription, error)
}

// chainSpecBackend adapts a ChainSpecChannel to the full Backend interface
// by layering the same chain_* / state_* / author_* requests WSClient
// uses for BlockNumber, BlockHash, Metadata, FetchRaw and SubmitExtrinsic.
// Block is not wired through this backend and always returns an error.
type chainSpecBackend struct {
	ChainSpecChannel
	decodeMetadata MetadataDecoder
}

// DialChainSpec validates that path names a readable chain-spec JSON file
// and wraps channel in the Backend interface. Standing up the light client
// itself (parsing the chain spec, bootstrapping sync, exposing channel)
// is the caller's responsibility, out of scope for this module.
func DialChainSpec(ctx context.Context, path string, channel ChainSpecChannel, opts ...Option) (*chainSpecBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open chain spec %s", path)
	}
	defer f.Close()

	var probe json.RawMessage
	if err := json.NewDecoder(f).Decode(&probe); err != nil {
		return nil, errors.Wrapf(err, "chain spec %s is not valid JSON", path)
	}

	b := &chainSpecBackend{ChainSpecChannel: channel}
	wrapped := &WSClient{}
	for _, opt := range opts {
		opt(wrapped)
	}
	b.decodeMetadata = wrapped.decodeMetadata
	return b, nil
}

func (b *chainSpecBackend) BlockNumber(ctx context.Context) (uint64, error) {
	var header struct {
		Number string `json:"number"`
	}
	if err := b.Request(ctx, "chain_getHeader", nil, &header); err != nil {
		return 0, errors.Wrap(err, "chain_getHeader")
	}
	return parseHexUint(header.Number)
}

func (b *chainSpecBackend) BlockHash(ctx context.Context, number uint64) ([32]byte, bool, error) {
	var hash *string
	if err := b.Request(ctx, "chain_getBlockHash", []interface{}{number}, &hash); err != nil {
		return [32]byte{}, false, errors.Wrap(err, "chain_getBlockHash")
	}
	if hash == nil {
		return [32]byte{}, false, nil
	}
	h, err := parseHex32(*hash)
	return h, err == nil, err
}

func (b *chainSpecBackend) Block(ctx context.Context, hash [32]byte) (translator.SubstrateBlock, error) {
	return translator.SubstrateBlock{}, errors.New("chainbackend: light client block decoding not wired; use DialURL")
}

func (b *chainSpecBackend) Metadata(ctx context.Context) (translator.Metadata, error) {
	if b.decodeMetadata == nil {
		return translator.Metadata{}, errors.New("chainbackend: no MetadataDecoder configured")
	}
	var hexBlob string
	if err := b.Request(ctx, "state_getMetadata", nil, &hexBlob); err != nil {
		return translator.Metadata{}, errors.Wrap(err, "state_getMetadata")
	}
	raw, err := hexDecode(hexBlob)
	if err != nil {
		return translator.Metadata{}, err
	}
	return b.decodeMetadata(raw)
}

func (b *chainSpecBackend) FetchRaw(ctx context.Context, key []byte, at [32]byte) ([]byte, error) {
	var value *string
	params := []interface{}{hex.EncodeToString(key), hex.EncodeToString(at[:])}
	if err := b.Request(ctx, "state_getStorage", params, &value); err != nil {
		return nil, errors.Wrap(err, "state_getStorage")
	}
	if value == nil {
		return nil, nil
	}
	return hexDecode(*value)
}

func (b *chainSpecBackend) SubmitExtrinsic(ctx context.Context, extrinsic []byte) ([32]byte, error) {
	var hash string
	params := []interface{}{hex.EncodeToString(extrinsic)}
	if err := b.Request(ctx, "author_submitExtrinsic", params, &hash); err != nil {
		return [32]byte{}, errors.Wrap(err, "author_submitExtrinsic")
	}
	return parseHex32(hash)
}
