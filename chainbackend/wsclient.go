package chainbackend

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var _ Backend = (*WSClient)(nil)

// WSClient is a Backend reached over a Substrate node's JSON-RPC-2.0
// websocket endpoint. One websocket connection is shared by every Request
// and Subscribe caller; a single readPump goroutine demultiplexes incoming
// frames by request id (for call replies) or by subscription id (for
// notifications).
type WSClient struct {
	conn *websocket.Conn

	nextID int64

	mu      sync.Mutex
	pending map[int64]chan rpcResponse
	subs    map[string]*wsSubscription // keyed by substrate subscription id

	closeOnce sync.Once
	closed    chan struct{}

	decodeMetadata MetadataDecoder
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int64         `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcResponse struct {
	ID     int64           `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`

	// present on subscription notifications instead of ID/Result/Error
	Method string          `json:"method"`
	Params *rpcSubNotify   `json:"params"`
}

type rpcSubNotify struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// DialURL opens a websocket connection to a Substrate JSON-RPC endpoint
// (e.g. "ws://127.0.0.1:9944") and returns a ready-to-use Backend.
func DialURL(ctx context.Context, url string, opts ...Option) (*WSClient, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial substrate node at %s", url)
	}

	c := &WSClient{
		conn:    conn,
		pending: make(map[int64]chan rpcResponse),
		subs:    make(map[string]*wsSubscription),
		closed:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.readPump()
	return c, nil
}

// Close tears down the underlying websocket connection and unblocks every
// outstanding Request and Subscription.
func (c *WSClient) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()
	})
	return err
}

func (c *WSClient) readPump() {
	defer func() {
		c.mu.Lock()
		for _, ch := range c.pending {
			close(ch)
		}
		for _, s := range c.subs {
			s.closeWithErr(errors.New("chainbackend: connection closed"))
		}
		c.mu.Unlock()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg rpcResponse
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		if msg.Method != "" && msg.Params != nil {
			c.dispatchNotification(msg)
			continue
		}

		c.mu.Lock()
		ch, ok := c.pending[msg.ID]
		if ok {
			delete(c.pending, msg.ID)
		}
		c.mu.Unlock()
		if ok {
			ch <- msg
			close(ch)
		}
	}
}

func (c *WSClient) dispatchNotification(msg rpcResponse) {
	c.mu.Lock()
	sub, ok := c.subs[msg.Params.Subscription]
	c.mu.Unlock()
	if !ok {
		return
	}
	sub.deliver(msg.Params.Result)
}

// Request implements Backend.
func (c *WSClient) Request(ctx context.Context, method string, params []interface{}, out interface{}) error {
	resp, err := c.call(ctx, method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	if out == nil || len(resp.Result) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(resp.Result, out), "decode rpc result")
}

func (c *WSClient) call(ctx context.Context, method string, params []interface{}) (rpcResponse, error) {
	id := atomic.AddInt64(&c.nextID, 1)
	ch := make(chan rpcResponse, 1)

	c.mu.Lock()
	c.pending[id] = ch
	c.mu.Unlock()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: params}
	payload, err := json.Marshal(req)
	if err != nil {
		return rpcResponse{}, errors.Wrap(err, "encode rpc request")
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return rpcResponse{}, errors.Wrap(err, "write rpc request")
	}

	select {
	case resp, ok := <-ch:
		if !ok {
			return rpcResponse{}, errors.New("chainbackend: connection closed while awaiting reply")
		}
		return resp, nil
	case <-ctx.Done():
		return rpcResponse{}, ctx.Err()
	case <-c.closed:
		return rpcResponse{}, errors.New("chainbackend: connection closed")
	}
}

// Subscribe implements Backend.
func (c *WSClient) Subscribe(ctx context.Context, method string) (Subscription, error) {
	resp, err := c.call(ctx, method, nil)
	if err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}

	var subID string
	if err := json.Unmarshal(resp.Result, &subID); err != nil {
		return nil, errors.Wrap(err, "decode subscription id")
	}

	sub := &wsSubscription{
		id:       subID,
		client:   c,
		messages: make(chan json.RawMessage, 64),
		done:     make(chan struct{}),
	}

	c.mu.Lock()
	c.subs[subID] = sub
	c.mu.Unlock()

	return sub, nil
}

func (c *WSClient) dropSub(id string) {
	c.mu.Lock()
	delete(c.subs, id)
	c.mu.Unlock()
}

// wsSubscription is a live Substrate subscription, fed by WSClient.readPump
// and drained by whatever holds the Subscription handle (usually package
// subscription's Fanout).
type wsSubscription struct {
	id     string
	client *WSClient

	messages chan json.RawMessage
	errOnce  sync.Once
	err      error
	done     chan struct{}
}

func (s *wsSubscription) deliver(result json.RawMessage) {
	select {
	case s.messages <- result:
	case <-s.done:
	case <-time.After(5 * time.Second):
		// slow consumer; drop rather than block the shared readPump.
	}
}

func (s *wsSubscription) closeWithErr(err error) {
	s.errOnce.Do(func() {
		s.err = err
		close(s.done)
	})
}

func (s *wsSubscription) Next(ctx context.Context) ([]byte, error) {
	select {
	case msg, ok := <-s.messages:
		if !ok {
			return nil, s.err
		}
		return msg, nil
	case <-s.done:
		return nil, s.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *wsSubscription) Unsubscribe() {
	s.client.dropSub(s.id)
	s.errOnce.Do(func() {
		close(s.done)
	})
}
