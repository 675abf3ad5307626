package translator

import (
	"github.com/holiman/uint256"
)

// maxU128 returns u128::MAX, the hardcoded max_fee_per_gas value.
func maxU128() *uint256.Int {
	max := uint256.NewInt(1)
	max.Lsh(max, 128)
	max.Sub(max, uint256.NewInt(1))
	return max
}

// ScaleToWei scales a native-token amount by 10^decimals, the
// "value × 10^decimals" wei-synthesis rule.
func ScaleToWei(amount uint64, decimals uint8) *uint256.Int {
	v := uint256.NewInt(amount)
	scale := uint256.NewInt(10)
	factor := uint256.NewInt(1)
	for i := uint8(0); i < decimals; i++ {
		factor = factor.Mul(factor, scale)
	}
	return v.Mul(v, factor)
}

// TranslateExtrinsic converts one decoded Substrate extrinsic into its
// Ethereum-shaped view: From is the signer's 20-byte truncation (zero
// address when unsigned); a recognized Balances transfer maps to the
// recipient's truncated address with its value scaled by 10^decimals;
// any other call maps to its pallet's synthetic address with zero value
// and the raw call bytes as input. Gas and fee fields are fixed.
func TranslateExtrinsic(ext Extrinsic, decimals uint8) EthTransaction {
	tx := EthTransaction{
		Hash:                 ext.Hash,
		Nonce:                ext.Nonce,
		GasLimit:             DefaultGasLimit,
		MaxFeePerGas:         maxU128(),
		MaxPriorityFeePerGas: uint256.NewInt(0),
	}

	if ext.Signer != nil {
		tx.From = ToAddress(*ext.Signer)
	}

	if ext.IsBalanceTransfer {
		if ext.TransferTo != nil {
			tx.To = ToAddress(*ext.TransferTo)
		}
		tx.Value = ScaleToWei(ext.TransferValue, decimals)
		tx.Input = nil
		return tx
	}

	tx.To = ContractAddress(palletNameFromIndex(ext))
	tx.Value = uint256.NewInt(0)
	tx.Input = ext.CallData
	return tx
}

// palletNameFromIndex is a placeholder seam: the caller (package gateway)
// resolves pallet index -> name via chain metadata before calling
// TranslateExtrinsic in the general case. When the extrinsic already
// carries a resolved pallet name (the common case wired by gateway), that
// name should be threaded through Extrinsic directly; this fallback keeps
// TranslateExtrinsic pure and total even without a metadata lookup handy.
func palletNameFromIndex(ext Extrinsic) string {
	if ext.PalletName != "" {
		return ext.PalletName
	}
	return ""
}

// TranslateBlock converts a decoded Substrate block into its Ethereum-shaped
// view.
func TranslateBlock(block SubstrateBlock, decimals uint8) EthBlock {
	txs := make([]EthTransaction, 0, len(block.Extrinsics))
	for _, ext := range block.Extrinsics {
		txs = append(txs, TranslateExtrinsic(ext, decimals))
	}

	return EthBlock{
		Hash:             block.Hash,
		Number:           block.Number,
		ParentHash:       block.ParentHash,
		StateRoot:        block.StateRoot,
		TransactionsRoot: block.ExtrinsicsRoot,
		Timestamp:        block.TimestampMillis / 1000,
		Transactions:     txs,
	}
}
