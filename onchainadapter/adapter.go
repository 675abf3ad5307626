// Package onchainadapter implements the counterpart pallet's dispatch
// path: recovering a transaction's signer from its signature, mapping
// that signer to a chain account, decoding its runtime call, and handing
// the pair off to a Dispatcher. The shape is decode args, resolve caller,
// look up account, execute, flush events.
package onchainadapter

import (
	"context"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/subclone/subeth/translator"
)

// MessageHash returns the Keccak-256 digest of tx's signing pre-image.
func MessageHash(tx translator.EthereumTransaction) [32]byte {
	return crypto.Keccak256Hash(translator.MessageHashPreimage(tx))
}

// Signature is a transaction's 65-byte r||s||v_norm signature, already
// normalized to a 0/1 recovery id.
type Signature struct {
	R [32]byte
	S [32]byte
	V uint8 // 0 or 1
}

// NormalizeSignature accepts the wire (r, s, v) triple and returns a
// Signature with v normalized to {0,1}: v-27 for v in {27,28}, v
// unchanged otherwise. Any resulting value above 1 is rejected.
func NormalizeSignature(r, s [32]byte, v uint64) (Signature, error) {
	norm := v
	if v == 27 || v == 28 {
		norm = v - 27
	}
	if norm > 1 {
		return Signature{}, ErrInvalidRecoveryId
	}
	return Signature{R: r, S: s, V: uint8(norm)}, nil
}

// bytes65 returns the signature in the r||s||v wire form crypto.Ecrecover
// expects.
func (sig Signature) bytes65() []byte {
	out := make([]byte, 65)
	copy(out[0:32], sig.R[:])
	copy(out[32:64], sig.S[:])
	out[64] = sig.V
	return out
}

// RecoverSigner recovers the 20-byte Ethereum-style address that signed
// hash with sig: ECDSA public key recovery followed by
// Keccak-256(pubkey)[12:].
func RecoverSigner(hash [32]byte, sig Signature) (translator.Address, error) {
	pub, err := crypto.SigToPub(hash[:], sig.bytes65())
	if err != nil {
		return translator.Address{}, ErrSignerRecoveryFailed
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Adapter ties together signature recovery, account mapping, call
// decoding, and dispatch for one incoming EthereumTransaction.
type Adapter struct {
	Dispatcher Dispatcher
	Events     *EventSink
}

// NewAdapter constructs an Adapter. A nil events sink is replaced with a
// fresh one.
func NewAdapter(dispatcher Dispatcher, events *EventSink) *Adapter {
	if events == nil {
		events = NewEventSink()
	}
	return &Adapter{Dispatcher: dispatcher, Events: events}
}

// Process runs the transact algorithm end to end: message hash,
// signature recovery, account mapping, call decode, and dispatch. The
// transaction's recorded hash is Keccak-256 of the full SCALE-encoded
// EthereumTransaction, not the signing pre-image hash.
func (a *Adapter) Process(ctx context.Context, tx translator.EthereumTransaction, encoded []byte) error {
	sig, err := NormalizeSignature(tx.R, tx.S, tx.V)
	if err != nil {
		return err
	}

	msgHash := MessageHash(tx)
	from, err := RecoverSigner(msgHash, sig)
	if err != nil {
		return err
	}

	account := translator.ToAccount(from)
	txHash := crypto.Keccak256Hash(encoded)

	call, err := translator.DecodeRuntimeCall(tx.Data)
	if err != nil {
		a.Events.RecordFailed(TransactionFailed{From: from, To: tx.To, ErrorBytes: []byte(err.Error())})
		return ErrCallDecodeFailed
	}

	if err := a.Dispatcher.Dispatch(ctx, account, call); err != nil {
		a.Events.RecordFailed(TransactionFailed{From: from, To: tx.To, ErrorBytes: []byte(err.Error())})
		return ErrDispatchFailed
	}

	a.Events.RecordExecuted(TransactionExecuted{From: from, To: tx.To, TxHash: txHash})
	return nil
}
