// Package translator holds the pure, side-effect-free translation between
// Substrate's data model (pallets, extrinsics, 32-byte accounts, Blake/Twox
// storage hashers) and Ethereum's (20-byte addresses, flat storage, Keccak).
//
// Nothing in this package performs I/O or logs; callers in package gateway
// own the error-wrapping and logging boundary.
package translator

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Address is a 20-byte Ethereum-style account identifier.
type Address = common.Address

// AccountID is the chain's native 32-byte account identifier.
type AccountID [32]byte

// Hasher names the storage-key hashing function used by a pallet storage
// map's key component.
type Hasher int

const (
	Blake2_128 Hasher = iota
	Blake2_256
	Blake2_128Concat
	Twox128
	Twox256
	Twox64Concat
	Identity
)

// EntryKind distinguishes a plain storage value from a storage map.
type EntryKind int

const (
	EntryPlain EntryKind = iota
	EntryMap
)

// StorageEntry is the typed metadata describing one pallet storage entry,
// as consumed by DeriveStorageKey.
type StorageEntry struct {
	Kind    EntryKind
	Hashers []Hasher // one per map key component; empty for EntryPlain
}

// PalletMetadata groups the storage entries of one pallet, keyed by entry
// name.
type PalletMetadata struct {
	Name    string
	Index   uint8 // runtime dispatch index, as carried by an extrinsic's PalletIdx
	Entries map[string]StorageEntry
}

// Metadata is the already-parsed runtime metadata this layer consumes.
// Decoding the raw metadata blob is a separate concern; this layer only
// consumes its already-parsed output.
type Metadata struct {
	Pallets        map[string]PalletMetadata
	TokenDecimals  uint8
	TokenSymbol    string
	SS58Prefix     uint16
}

// PalletNameByIndex resolves a decoded extrinsic's PalletIdx back to its
// metadata-registered name, the reverse of PalletMetadata.Index.
func (m Metadata) PalletNameByIndex(idx uint8) (string, bool) {
	for _, p := range m.Pallets {
		if p.Index == idx {
			return p.Name, true
		}
	}
	return "", false
}

// Extrinsic is the already-decoded shape of one Substrate extrinsic, as
// surfaced by chainbackend. Unsigned/inherent extrinsics have a nil Signer.
type Extrinsic struct {
	Hash      [32]byte
	Signer    *AccountID // nil for inherents/unsigned extrinsics
	Nonce     uint64
	PalletIdx uint8
	CallIdx   uint8
	// PalletName is the metadata-resolved name for PalletIdx, filled in by
	// the caller (package gateway, which holds the metadata) before
	// translation; TranslateExtrinsic falls back to "" when unset so it
	// stays a pure, total function with no metadata dependency of its own.
	PalletName string
	CallData   []byte // raw SCALE-encoded call arguments (after the two index bytes)

	// Decoded convenience fields, populated only when the call is a
	// recognized Balances transfer.
	IsBalanceTransfer bool
	TransferTo        *AccountID
	TransferValue     uint64 // native-token units, pre-decimal-scaling
}

// SubstrateBlock is the already-decoded shape of one Substrate block, as
// surfaced by chainbackend.
type SubstrateBlock struct {
	Hash            [32]byte
	Number          uint64
	ParentHash      [32]byte
	StateRoot       [32]byte
	ExtrinsicsRoot  [32]byte
	TimestampMillis uint64 // from the first timestamp.set inherent; 0 if absent
	Extrinsics      []Extrinsic
}

// EthBlock is the translated, Ethereum-shaped view of a SubstrateBlock.
type EthBlock struct {
	Hash             [32]byte
	Number           uint64
	ParentHash       [32]byte
	StateRoot        [32]byte
	TransactionsRoot [32]byte
	Timestamp        uint64 // seconds
	Transactions     []EthTransaction
}

// EthTransaction is the translated, Ethereum-shaped view of one extrinsic.
type EthTransaction struct {
	Hash                 [32]byte
	From                 Address
	To                   Address
	Value                *uint256.Int
	Input                []byte
	Nonce                uint64
	GasLimit             uint64
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
}

const (
	// DefaultGasLimit is the hardcoded gas limit for every translated
	// transaction.
	DefaultGasLimit = 21_000_000
)

// StorageKey is the eth_call payload: a pallet storage entry name plus
// per-key map components, JSON-decoded from the call's input bytes.
type StorageKey struct {
	Name string   `json:"name"`
	Keys [][]byte `json:"keys"`
}
