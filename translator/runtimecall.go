package translator

import (
	"fmt"

	"github.com/subclone/subeth/scale"
)

// RuntimeCall is the minimally-typed decode of a SCALE call blob: a pallet
// index byte, a call index byte, then SCALE-encoded call arguments.
type RuntimeCall struct {
	PalletIndex uint8
	CallIndex   uint8
	Args        []byte
}

// DecodeRuntimeCall decodes the [pallet_index, call_index, args...] header
// of a SCALE-encoded call.
func DecodeRuntimeCall(data []byte) (RuntimeCall, error) {
	if len(data) < 2 {
		return RuntimeCall{}, fmt.Errorf("translator: runtime call: need at least 2 bytes, have %d", len(data))
	}
	dec := scale.NewDecoder(data)
	palletIdx, err := dec.Uint8()
	if err != nil {
		return RuntimeCall{}, err
	}
	callIdx, err := dec.Uint8()
	if err != nil {
		return RuntimeCall{}, err
	}
	args, err := dec.FixedBytes(dec.Remaining())
	if err != nil {
		return RuntimeCall{}, err
	}
	return RuntimeCall{PalletIndex: palletIdx, CallIndex: callIdx, Args: args}, nil
}
