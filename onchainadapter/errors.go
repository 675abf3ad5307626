package onchainadapter

import "github.com/pkg/errors"

// Error sentinels matching the adapter pallet's dispatch-error taxonomy.
var (
	ErrInvalidRecoveryId      = errors.New("invalid recovery id")
	ErrSignerRecoveryFailed   = errors.New("signer recovery failed")
	ErrCallDecodeFailed       = errors.New("call decode failed")
	ErrDispatchFailed         = errors.New("dispatch failed")
	ErrUnsupportedPallet      = errors.New("unsupported pallet")
	ErrInvalidTransactionData = errors.New("invalid transaction data")
)
