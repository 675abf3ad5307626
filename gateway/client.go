// Package gateway implements the semantic layer between the raw chain
// backend and the JSON-RPC surface: block lookups through the cache,
// balance/nonce/code/storage reads, eth_call over typed pallet storage,
// and transaction submission. Client is a small struct holding its
// backend handle plus fixed config (chain id, wrapper pallet), with one
// thin method per RPC semantic.
package gateway

import (
	"context"
	"encoding/json"

	"github.com/holiman/uint256"

	"github.com/subclone/subeth/blockcache"
	"github.com/subclone/subeth/chainbackend"
	"github.com/subclone/subeth/translator"
)

// WrapperPallet identifies the on-chain adapter pallet's dispatch index,
// used to build the two-byte prefix ahead of every submitted
// EthereumTransaction. Configurable rather than hardcoded, since the
// index varies across runtime builds.
type WrapperPallet struct {
	PalletIndex uint8
	CallIndex   uint8
}

// DefaultWrapperPallet matches the source's hardcoded [6, 0].
var DefaultWrapperPallet = WrapperPallet{PalletIndex: 6, CallIndex: 0}

// BalancesPallet identifies the pallet index and call indices this
// gateway recognizes as a native-token transfer, used to fill in an
// EthTransaction's To/Value without a full call-argument metadata
// decoder.
type BalancesPallet struct {
	PalletIndex             uint8
	TransferAllowDeathIndex uint8
	TransferKeepAliveIndex  uint8
}

// DefaultBalancesPallet matches FRAME's usual Balances pallet layout.
var DefaultBalancesPallet = BalancesPallet{PalletIndex: 5, TransferAllowDeathIndex: 0, TransferKeepAliveIndex: 3}

// TimestampPallet identifies the pallet index and call index of the
// Timestamp pallet's set inherent, used to read a block's timestamp.
type TimestampPallet struct {
	PalletIndex  uint8
	SetCallIndex uint8
}

// DefaultTimestampPallet matches FRAME's usual Timestamp pallet layout.
var DefaultTimestampPallet = TimestampPallet{PalletIndex: 3, SetCallIndex: 0}

// Client is cheap to clone by value: Backend is expected to be a
// clone-cheap handle and Cache holds its own lock internally.
type Client struct {
	Backend   chainbackend.Backend
	Cache     *blockcache.Cache
	Wrapper   WrapperPallet
	Balances  BalancesPallet
	Timestamp TimestampPallet
	ChainID   uint64
}

// New constructs a Client. cache may be nil, in which case a
// blockcache.DefaultCapacity cache is created.
func New(backend chainbackend.Backend, cache *blockcache.Cache, wrapper WrapperPallet, balances BalancesPallet, timestamp TimestampPallet, chainID uint64) *Client {
	if cache == nil {
		cache = blockcache.New(blockcache.DefaultCapacity)
	}
	return &Client{Backend: backend, Cache: cache, Wrapper: wrapper, Balances: balances, Timestamp: timestamp, ChainID: chainID}
}

// ChainId returns the chain id configured at construction.
func (c *Client) ChainId() uint64 { return c.ChainID }

// BlockNumber returns the latest finalized block's number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	n, err := c.Backend.BlockNumber(ctx)
	if err != nil {
		return 0, requestFailed(err, "chain_getHeader")
	}
	return n, nil
}

// GetBlockByNumber resolves a block number to its translated view. ok is
// false if no block exists at that number (or the chain has not produced
// it yet). metadata resolves pallet names and drives Balances-transfer
// and Timestamp-inherent recognition for blocks not already cached.
func (c *Client) GetBlockByNumber(ctx context.Context, number uint64, decimals uint8, metadata translator.Metadata) (translator.EthBlock, bool, error) {
	if hash, ok := c.Cache.GetHashByNumber(number); ok {
		if block, ok := c.Cache.GetByHash(hash); ok {
			return block, true, nil
		}
	}

	hash, ok, err := c.Backend.BlockHash(ctx, number)
	if err != nil {
		return translator.EthBlock{}, false, requestFailed(err, "chain_getBlockHash")
	}
	if !ok {
		return translator.EthBlock{}, false, nil
	}

	return c.fetchAndCacheBlock(ctx, hash, decimals, metadata)
}

// GetLatestBlock resolves the "latest" default-block tag.
func (c *Client) GetLatestBlock(ctx context.Context, decimals uint8, metadata translator.Metadata) (translator.EthBlock, bool, error) {
	number, err := c.BlockNumber(ctx)
	if err != nil {
		return translator.EthBlock{}, false, err
	}
	return c.GetBlockByNumber(ctx, number, decimals, metadata)
}

// GetBlockByHash resolves a block by hash.
func (c *Client) GetBlockByHash(ctx context.Context, hash [32]byte, decimals uint8, metadata translator.Metadata) (translator.EthBlock, bool, error) {
	if block, ok := c.Cache.GetByHash(hash); ok {
		return block, true, nil
	}
	return c.fetchAndCacheBlock(ctx, hash, decimals, metadata)
}

func (c *Client) fetchAndCacheBlock(ctx context.Context, hash [32]byte, decimals uint8, metadata translator.Metadata) (translator.EthBlock, bool, error) {
	substrateBlock, err := c.Backend.Block(ctx, hash)
	if err != nil {
		return translator.EthBlock{}, false, requestFailed(err, "chain_getBlock")
	}
	substrateBlock = c.resolveExtrinsics(substrateBlock, metadata)
	block := translator.TranslateBlock(substrateBlock, decimals)
	c.Cache.InsertBlock(block)
	return block, true, nil
}

// GetBalance and GetTransactionCount both read the System.Account storage
// entry for the account mapped from addr, at the latest block. A missing
// entry reads as zero.
func (c *Client) GetBalance(ctx context.Context, addr translator.Address) (*uint256.Int, error) {
	account, err := c.systemAccount(ctx, addr)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return uint256.NewInt(0), nil
	}
	return account.Balance, nil
}

// GetTransactionCount reads the nonce half of the same System.Account
// entry.
func (c *Client) GetTransactionCount(ctx context.Context, addr translator.Address) (uint64, error) {
	account, err := c.systemAccount(ctx, addr)
	if err != nil {
		return 0, err
	}
	if account == nil {
		return 0, nil
	}
	return account.Nonce, nil
}

// systemAccountInfo is the minimal shape this layer cares about out of
// System.Account's full AccountInfo (nonce, consumers, providers,
// sufficients, data{free, reserved, ...}) — only nonce and the free
// balance feed the translated Ethereum view.
type systemAccountInfo struct {
	Nonce   uint64
	Balance *uint256.Int
}

func (c *Client) systemAccount(ctx context.Context, addr translator.Address) (*systemAccountInfo, error) {
	latestHash, ok, err := c.latestHash(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	account := translator.ToAccount(addr)
	key := translator.DeriveStorageKey("System", "Account", translator.StorageEntry{
		Kind:    translator.EntryMap,
		Hashers: []translator.Hasher{translator.Blake2_128Concat},
	}, [][]byte{account[:]})

	raw, err := c.Backend.FetchRaw(ctx, key, latestHash)
	if err != nil {
		return nil, requestFailed(err, "state_getStorage")
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return decodeAccountInfo(raw)
}

func (c *Client) latestHash(ctx context.Context) ([32]byte, bool, error) {
	number, err := c.Backend.BlockNumber(ctx)
	if err != nil {
		return [32]byte{}, false, requestFailed(err, "chain_getHeader")
	}
	return c.Backend.BlockHash(ctx, number)
}

// GetCode returns the synthetic "revert: <PalletName>" marker for a
// pallet-synthetic address, or empty bytes for anything else. Never
// fails.
func (c *Client) GetCode(addr translator.Address) []byte {
	name, ok := translator.PalletName(addr)
	if !ok {
		return nil
	}
	return []byte("revert: " + name)
}

// GetStorageAt bypasses typed metadata entirely and returns the raw
// storage value at key, empty when absent.
func (c *Client) GetStorageAt(ctx context.Context, key []byte, at [32]byte) ([]byte, error) {
	raw, err := c.Backend.FetchRaw(ctx, key, at)
	if err != nil {
		return nil, requestFailed(err, "state_getStorage")
	}
	return raw, nil
}

// Call implements eth_call: a typed pallet-storage read driven by a
// StorageKey JSON payload. Any precondition miss returns (nil, nil)
// rather than an error.
func (c *Client) Call(ctx context.Context, to translator.Address, input []byte, metadata translator.Metadata, at [32]byte) ([]byte, error) {
	palletName, ok := translator.PalletName(to)
	if !ok {
		return nil, nil
	}

	var req translator.StorageKey
	if err := json.Unmarshal(input, &req); err != nil {
		return nil, nil
	}

	pallet, ok := metadata.Pallets[palletName]
	if !ok {
		return nil, nil
	}
	entry, ok := pallet.Entries[req.Name]
	if !ok {
		return nil, nil
	}

	key := translator.DeriveStorageKey(palletName, req.Name, entry, req.Keys)
	return c.GetStorageAt(ctx, key, at)
}

// SubmitEvmTransaction SCALE-encodes tx, prefixes it with the wrapper
// pallet's two index bytes, submits it as an extrinsic, and returns the
// chain's extrinsic hash as a 32-byte Ethereum-style tx hash. No
// signing, nonce assignment, or fee computation happens here; the caller
// supplies an already-signed transaction.
func (c *Client) SubmitEvmTransaction(ctx context.Context, tx translator.EthereumTransaction, scaleEncoded []byte) ([32]byte, error) {
	payload := make([]byte, 0, len(scaleEncoded)+2)
	payload = append(payload, c.Wrapper.PalletIndex, c.Wrapper.CallIndex)
	payload = append(payload, scaleEncoded...)

	hash, err := c.Backend.SubmitExtrinsic(ctx, payload)
	if err != nil {
		return [32]byte{}, requestFailed(err, "author_submitExtrinsic")
	}
	return hash, nil
}

// SubscribeNewHeads opens the backend's finalized-block subscription.
// Only NewHeads is supported; other kinds reject with ErrUnsupported.
func (c *Client) SubscribeNewHeads(ctx context.Context) (chainbackend.Subscription, error) {
	sub, err := c.Backend.Subscribe(ctx, "chain_subscribeFinalizedHeads")
	if err != nil {
		return nil, requestFailed(err, "chain_subscribeFinalizedHeads")
	}
	return sub, nil
}

// SubscribeUnsupported rejects any subscription kind other than NewHeads
// (logs, pending transactions, and sync-status streams all have no
// Substrate-side equivalent this gateway exposes).
func SubscribeUnsupported(kind string) error {
	return unsupported("subscription kind " + kind)
}

// decodeAccountInfo decodes the (nonce, ...consumers/providers/
// sufficients, data{free,...}) layout of FRAME's System.Account value.
// Only the two fields this layer surfaces are extracted; the remaining
// bytes (refcounts, reserved/frozen balance) are skipped.
func decodeAccountInfo(raw []byte) (*systemAccountInfo, error) {
	const (
		nonceLen     = 4  // u32
		refcountsLen = 12 // consumers, providers, sufficients: 3x u32
	)
	if len(raw) < nonceLen+refcountsLen+16 {
		return nil, responseFailed("System.Account value too short")
	}

	nonce := uint64(raw[0]) | uint64(raw[1])<<8 | uint64(raw[2])<<16 | uint64(raw[3])<<24

	freeOffset := nonceLen + refcountsLen
	freeBytes := raw[freeOffset : freeOffset+16]
	le := make([]byte, 16)
	for i, b := range freeBytes {
		le[15-i] = b
	}
	balance := new(uint256.Int).SetBytes(le)

	return &systemAccountInfo{Nonce: nonce, Balance: balance}, nil
}
