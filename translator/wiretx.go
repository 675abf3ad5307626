package translator

import (
	"github.com/holiman/uint256"

	"github.com/subclone/subeth/scale"
)

// AccessTupleEntry is one (address, storage keys) pair of an access list
// entry. Accepted on the wire but unused by dispatch.
type AccessTupleEntry struct {
	Address     Address
	StorageKeys [][32]byte
}

// EthereumTransaction is the wire-level struct submitted to the on-chain
// adapter pallet. It is SCALE-encoded end to end: this is the payload
// carried as the sole argument of the adapter's `transact` extrinsic,
// after the two wrapper index bytes Client prepends.
type EthereumTransaction struct {
	ChainID              uint64
	Nonce                uint64
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             uint64
	To                   Address
	Value                *uint256.Int
	Data                 []byte
	AccessList           []AccessTupleEntry
	V                    uint64
	R                    [32]byte
	S                    [32]byte
}

// EncodeEthereumTransaction produces the full SCALE encoding of tx.
func EncodeEthereumTransaction(tx EthereumTransaction) []byte {
	e := scale.NewEncoder()
	e.PutUint64(tx.ChainID)
	e.PutUint64(tx.Nonce)
	e.PutU256(orZero(tx.MaxPriorityFeePerGas))
	e.PutU256(orZero(tx.MaxFeePerGas))
	e.PutUint64(tx.GasLimit)
	e.PutFixedBytes(tx.To[:])
	e.PutU256(orZero(tx.Value))
	e.PutBytes(tx.Data)

	e.PutCompact(uint64(len(tx.AccessList)))
	for _, entry := range tx.AccessList {
		e.PutFixedBytes(entry.Address[:])
		e.PutCompact(uint64(len(entry.StorageKeys)))
		for _, k := range entry.StorageKeys {
			e.PutFixedBytes(k[:])
		}
	}

	e.PutUint64(tx.V)
	e.PutFixedBytes(tx.R[:])
	e.PutFixedBytes(tx.S[:])
	return e.Bytes()
}

// DecodeEthereumTransaction is the exact inverse of
// EncodeEthereumTransaction.
func DecodeEthereumTransaction(raw []byte) (EthereumTransaction, error) {
	d := scale.NewDecoder(raw)
	var tx EthereumTransaction

	var err error
	if tx.ChainID, err = d.Uint64(); err != nil {
		return EthereumTransaction{}, err
	}
	if tx.Nonce, err = d.Uint64(); err != nil {
		return EthereumTransaction{}, err
	}
	if tx.MaxPriorityFeePerGas, err = d.U256(); err != nil {
		return EthereumTransaction{}, err
	}
	if tx.MaxFeePerGas, err = d.U256(); err != nil {
		return EthereumTransaction{}, err
	}
	if tx.GasLimit, err = d.Uint64(); err != nil {
		return EthereumTransaction{}, err
	}
	toBytes, err := d.FixedBytes(20)
	if err != nil {
		return EthereumTransaction{}, err
	}
	copy(tx.To[:], toBytes)
	if tx.Value, err = d.U256(); err != nil {
		return EthereumTransaction{}, err
	}
	if tx.Data, err = d.Bytes(); err != nil {
		return EthereumTransaction{}, err
	}

	n, err := d.Compact()
	if err != nil {
		return EthereumTransaction{}, err
	}
	tx.AccessList = make([]AccessTupleEntry, 0, n)
	for i := uint64(0); i < n; i++ {
		var entry AccessTupleEntry
		addrBytes, err := d.FixedBytes(20)
		if err != nil {
			return EthereumTransaction{}, err
		}
		copy(entry.Address[:], addrBytes)

		keyCount, err := d.Compact()
		if err != nil {
			return EthereumTransaction{}, err
		}
		entry.StorageKeys = make([][32]byte, 0, keyCount)
		for j := uint64(0); j < keyCount; j++ {
			kb, err := d.FixedBytes(32)
			if err != nil {
				return EthereumTransaction{}, err
			}
			var key [32]byte
			copy(key[:], kb)
			entry.StorageKeys = append(entry.StorageKeys, key)
		}
		tx.AccessList = append(tx.AccessList, entry)
	}

	if tx.V, err = d.Uint64(); err != nil {
		return EthereumTransaction{}, err
	}
	rBytes, err := d.FixedBytes(32)
	if err != nil {
		return EthereumTransaction{}, err
	}
	copy(tx.R[:], rBytes)
	sBytes, err := d.FixedBytes(32)
	if err != nil {
		return EthereumTransaction{}, err
	}
	copy(tx.S[:], sBytes)

	return tx, nil
}

// MessageHashPreimage builds the byte layout that gets Keccak-256 hashed
// to produce a transaction's signing message: a 0x02 type byte, then
// chain_id, nonce, max_priority_fee_per_gas, max_fee_per_gas, gas_limit,
// to, value, and the raw data bytes, all little-endian. This is NOT
// canonical EIP-1559 RLP: any Ethereum-signing client integrating with
// this system must reproduce this exact byte layout, not standard
// transaction RLP.
func MessageHashPreimage(tx EthereumTransaction) []byte {
	e := scale.NewEncoder()
	e.PutUint8(0x02)
	e.PutUint64(tx.ChainID)
	e.PutUint64(tx.Nonce)
	e.PutU256(orZero(tx.MaxPriorityFeePerGas))
	e.PutU256(orZero(tx.MaxFeePerGas))
	e.PutUint64(tx.GasLimit)
	e.PutFixedBytes(tx.To[:])
	e.PutU256(orZero(tx.Value))
	e.PutFixedBytes(tx.Data)
	return e.Bytes()
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return uint256.NewInt(0)
	}
	return v
}
