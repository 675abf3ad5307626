package gateway

import (
	"github.com/goware/superr"
	"github.com/pkg/errors"
)

// The gateway-side error taxonomy: a handful of sentinel kinds plus one
// message-carrying type, each reachable via errors.Is/As at the RPC
// boundary. Sentinel wrapping goes through superr so a caller can match
// on the kind (ErrRequestFailed, ...) regardless of the label or cause
// folded in underneath.
var (
	// ErrRequestFailed marks an upstream RPC/network failure.
	ErrRequestFailed = errors.New("request failed")
	// ErrResponseFailed marks a malformed response from the backend.
	ErrResponseFailed = errors.New("malformed response")
	// ErrSerde marks a payload encode/decode failure.
	ErrSerde = errors.New("serde error")
	// ErrUnsupported marks an RPC method or subscription kind this gateway
	// chooses not to implement.
	ErrUnsupported = errors.New("unsupported")
)

func requestFailed(cause error, label string) error {
	return superr.Wrap(ErrRequestFailed, errors.Wrap(cause, label))
}

func responseFailed(label string) error {
	return superr.Wrap(ErrResponseFailed, errors.New(label))
}

func serdeError(cause error, label string) error {
	return superr.Wrap(ErrSerde, errors.Wrap(cause, label))
}

func unsupported(label string) error {
	return superr.Wrap(ErrUnsupported, errors.New(label))
}

// AdapterError is a semantic failure specific to the translation layer:
// missing pallet, bad input, or absent data where it was required. Unlike
// the sentinel kinds above, its message is always caller-specific.
type AdapterError struct {
	Message string
}

func (e *AdapterError) Error() string { return "adapter error: " + e.Message }

func newAdapterError(format string, args ...interface{}) error {
	return &AdapterError{Message: errors.Errorf(format, args...).Error()}
}
