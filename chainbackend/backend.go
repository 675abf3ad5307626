// Package chainbackend is the opaque handle to a Substrate node: request
// and subscribe primitives, plus typed queries for blocks, extrinsics,
// metadata, and raw storage.
//
// This package deliberately knows nothing about pallets, addresses, or
// Ethereum shapes; package translator and package gateway own that. It
// also deliberately knows nothing about *how* metadata was produced —
// decoding the raw runtime metadata blob is a separate collaborator's
// job, and Metadata arrives here already parsed.
package chainbackend

import (
	"context"

	"github.com/subclone/subeth/translator"
)

// Subscription is a live backend subscription delivering one JSON value per
// notification, until it errors or is unsubscribed.
//
//go:generate counterfeiter -o fakes/fake_subscription.go . Subscription
type Subscription interface {
	// Next blocks until the next notification, a backend error, or ctx
	// cancellation.
	Next(ctx context.Context) (json []byte, err error)
	Unsubscribe()
}

// Backend is an opaque request/subscribe channel to a Substrate node,
// reached either via a conventional RPC endpoint or an in-process light
// client — both constructors return the same interface.
//
//go:generate counterfeiter -o fakes/fake_backend.go . Backend
type Backend interface {
	// Request issues one RPC call and decodes its result into out.
	Request(ctx context.Context, method string, params []interface{}, out interface{}) error

	// Subscribe opens a subscription for the named method (e.g.
	// "chain_subscribeFinalizedHeads").
	Subscribe(ctx context.Context, method string) (Subscription, error)

	// BlockNumber returns the latest (finalized) block's number.
	BlockNumber(ctx context.Context) (uint64, error)

	// BlockHash resolves a block number to its hash. ok is false if the
	// chain has no block at that number yet.
	BlockHash(ctx context.Context, number uint64) (hash [32]byte, ok bool, err error)

	// Block fetches and decodes the block at hash.
	Block(ctx context.Context, hash [32]byte) (translator.SubstrateBlock, error)

	// Metadata returns the already-parsed runtime metadata.
	Metadata(ctx context.Context) (translator.Metadata, error)

	// FetchRaw reads a raw storage key at block hash at. An absent key
	// returns an empty, nil-error result rather than an error.
	FetchRaw(ctx context.Context, key []byte, at [32]byte) ([]byte, error)

	// SubmitExtrinsic submits the wire-encoded extrinsic and returns the
	// chain's extrinsic hash.
	SubmitExtrinsic(ctx context.Context, extrinsic []byte) ([32]byte, error)
}
