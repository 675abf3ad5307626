// Package subscription multiplexes a single backend subscription across
// any number of client-facing sinks: one goroutine owns the backend
// stream and rebroadcasts each notification to every live subscriber,
// and one goroutine per subscriber races its sink's closed signal
// against the next broadcast notification, tearing down the moment
// either side gives up.
package subscription

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/goware/channel"

	"github.com/subclone/subeth/chainbackend"
)

// NewHeadNotification is the payload delivered to every subscriber for
// each finalized block. IsNewBest is always false: this gateway has no
// concept of chain reorganization to report.
type NewHeadNotification struct {
	Hash      [32]byte `json:"hash"`
	IsNewBest bool     `json:"is_new_best"`
}

// Sink is a subscription's delivery target, typically a websocket
// connection. Send delivers one already-encoded notification; Closed
// reports when the client side has gone away.
type Sink interface {
	Send(payload []byte) error
	Closed() <-chan struct{}
}

// Decoder extracts a block hash from one raw backend notification.
type Decoder func(raw []byte) ([32]byte, error)

type subscriber struct {
	ch              channel.Channel[NewHeadNotification]
	done            chan struct{}
	unsubscribeOnce sync.Once
	unsubscribe     func()
}

// Fanout owns zero or more client subscribers over one shared backend
// subscription. The zero value is ready to use; Run must be called once
// to start pumping before Subscribe does anything useful.
type Fanout struct {
	mu          sync.Mutex
	subscribers []*subscriber
}

// NewFanout returns an empty Fanout.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Run owns sub for as long as ctx is live or the backend stream keeps
// producing: it decodes each notification with decode and rebroadcasts
// it to every current subscriber, then blocks for the next one. Run
// returns the first error from Next or decode (or ctx's error), having
// first torn down every live subscriber. Callers run it in its own
// goroutine.
func (f *Fanout) Run(ctx context.Context, sub chainbackend.Subscription, decode Decoder) error {
	defer sub.Unsubscribe()
	defer f.closeAll()

	for {
		raw, err := sub.Next(ctx)
		if err != nil {
			return err
		}
		hash, err := decode(raw)
		if err != nil {
			return err
		}
		f.broadcast(NewHeadNotification{Hash: hash, IsNewBest: false})
	}
}

func (f *Fanout) broadcast(n NewHeadNotification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.subscribers {
		s.ch.Send(n)
	}
}

func (f *Fanout) closeAll() {
	f.mu.Lock()
	subs := f.subscribers
	f.subscribers = nil
	f.mu.Unlock()

	for _, s := range subs {
		s.unsubscribeOnce.Do(s.unsubscribe)
	}
}

func (f *Fanout) remove(s *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.subscribers {
		if existing == s {
			f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
			return
		}
	}
}

// Subscribe registers sink as a new subscriber and starts its delivery
// loop in a background goroutine: the loop races sink's closed signal
// against the next broadcast notification, JSON-encodes and sends each
// one to sink, and stops the moment the sink closes, a send fails, or
// the backend stream ends. The returned func unsubscribes; it is safe
// to call more than once and from any goroutine.
func (f *Fanout) Subscribe(sink Sink) (unsubscribe func()) {
	s := &subscriber{
		ch:   channel.NewUnboundedChan[NewHeadNotification](10, 2000, channel.Options{Label: "newheads"}),
		done: make(chan struct{}),
	}
	s.unsubscribe = func() {
		f.remove(s)
		close(s.done)
		s.ch.Close()
		s.ch.Flush()
	}

	f.mu.Lock()
	f.subscribers = append(f.subscribers, s)
	f.mu.Unlock()

	go f.deliver(s, sink)

	return func() { s.unsubscribeOnce.Do(s.unsubscribe) }
}

func (f *Fanout) deliver(s *subscriber, sink Sink) {
	defer s.unsubscribeOnce.Do(s.unsubscribe)

	for {
		select {
		case <-sink.Closed():
			return
		case <-s.done:
			return
		case n, ok := <-s.ch.ReadChannel():
			if !ok {
				return
			}
			payload, err := json.Marshal(n)
			if err != nil {
				return
			}
			if err := sink.Send(payload); err != nil {
				return
			}
		}
	}
}
