package gateway

import (
	"github.com/subclone/subeth/scale"
	"github.com/subclone/subeth/translator"
)

// resolveExtrinsics fills in the metadata-dependent half of each
// extrinsic chainbackend already structurally decoded: a Balances
// transfer's recipient/value, or failing that the extrinsic's pallet
// name. It also reads the block's timestamp off its Timestamp::set
// inherent, the first such call encountered.
func (c *Client) resolveExtrinsics(block translator.SubstrateBlock, metadata translator.Metadata) translator.SubstrateBlock {
	for i, ext := range block.Extrinsics {
		if block.TimestampMillis == 0 &&
			ext.PalletIdx == c.Timestamp.PalletIndex && ext.CallIdx == c.Timestamp.SetCallIndex {
			if moment, _, err := scale.DecodeCompact(ext.CallData); err == nil {
				block.TimestampMillis = moment
			}
		}

		if ext.PalletIdx == c.Balances.PalletIndex &&
			(ext.CallIdx == c.Balances.TransferAllowDeathIndex || ext.CallIdx == c.Balances.TransferKeepAliveIndex) {
			if to, value, ok := decodeBalanceTransfer(ext.CallData); ok {
				block.Extrinsics[i].IsBalanceTransfer = true
				block.Extrinsics[i].TransferTo = &to
				block.Extrinsics[i].TransferValue = value
				continue
			}
		}

		if name, ok := metadata.PalletNameByIndex(ext.PalletIdx); ok {
			block.Extrinsics[i].PalletName = name
		}
	}
	return block
}

// decodeBalanceTransfer decodes a Balances::transfer_allow_death /
// transfer_keep_alive call body: a MultiAddress dest (only the Id
// variant is recognized) followed by a compact balance.
func decodeBalanceTransfer(args []byte) (translator.AccountID, uint64, bool) {
	dec := scale.NewDecoder(args)
	tag, err := dec.Uint8()
	if err != nil || tag != multiAddressID {
		return translator.AccountID{}, 0, false
	}
	raw, err := dec.FixedBytes(32)
	if err != nil {
		return translator.AccountID{}, 0, false
	}
	value, err := dec.Compact()
	if err != nil {
		return translator.AccountID{}, 0, false
	}
	var to translator.AccountID
	copy(to[:], raw)
	return to, value, true
}

// multiAddressID is MultiAddress::Id's enum tag, the only variant this
// layer resolves a 32-byte account out of.
const multiAddressID = 0
