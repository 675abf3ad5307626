package onchainadapter

import (
	"github.com/subclone/subeth/translator"
)

// TransactionExecuted is emitted once a dispatched call has completed
// successfully.
type TransactionExecuted struct {
	From   translator.Address
	To     translator.Address
	TxHash [32]byte
}

// TransactionFailed is emitted when the transaction's call data fails to
// decode or the decoded call's dispatch fails, carrying the error's bytes
// for diagnostics.
type TransactionFailed struct {
	From       translator.Address
	To         translator.Address
	ErrorBytes []byte
}

// EventSink accumulates events raised while processing one transaction
// and flushes them in one shot, mirroring the chaincode-events cache/
// flush split: events only become externally visible once Flush is
// called, keeping emission atomic with respect to the surrounding
// dispatch outcome.
type EventSink struct {
	executed []TransactionExecuted
	failed   []TransactionFailed
}

// NewEventSink returns an empty sink.
func NewEventSink() *EventSink {
	return &EventSink{}
}

// RecordExecuted queues a TransactionExecuted event.
func (s *EventSink) RecordExecuted(ev TransactionExecuted) {
	s.executed = append(s.executed, ev)
}

// RecordFailed queues a TransactionFailed event.
func (s *EventSink) RecordFailed(ev TransactionFailed) {
	s.failed = append(s.failed, ev)
}

// Flush returns every queued event and empties the sink. Publishing them
// (to a runtime event log, a subscriber fan-out, or similar) is the
// caller's responsibility.
func (s *EventSink) Flush() ([]TransactionExecuted, []TransactionFailed) {
	executed, failed := s.executed, s.failed
	s.executed, s.failed = nil, nil
	return executed, failed
}
