package onchainadapter

import (
	"context"

	"github.com/subclone/subeth/translator"
)

// Dispatcher executes one already-decoded runtime call as Origin::Signed
// by the given account. It stands in for the rest of the Substrate
// runtime: everything past call decoding (weight charging, pallet
// lookup, the call's own business logic) belongs to the concrete
// runtime build and is injected rather than implemented here.
type Dispatcher interface {
	Dispatch(ctx context.Context, signer translator.AccountID, call translator.RuntimeCall) error
}
