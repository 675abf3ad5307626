package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	gorillarpc "github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/gorilla/websocket"

	"github.com/subclone/subeth/chainbackend"
	"github.com/subclone/subeth/ethapi"
	"github.com/subclone/subeth/gateway"
	"github.com/subclone/subeth/subscription"
)

type serverOptions struct {
	corsOrigins      []string
	maxConnections   int
	messageBuffer    int
	rateLimitPerConn int
}

// server is the gateway's HTTP handler: a gorilla/rpc JSON-RPC endpoint at
// "/" plus a websocket endpoint at "/ws" carrying eth_subscribe traffic
// over the one shared newHeads fan-out.
type server struct {
	router  *mux.Router
	fanout  *subscription.Fanout
	limiter *rateLimiter
	conns   chan struct{}
	upgrade websocket.Upgrader
	opts    serverOptions
	nextSub uint64

	cancel context.CancelFunc
}

func newServer(svc ethapi.EthService, client *gateway.Client, opts serverOptions) (*server, error) {
	rpcServer := gorillarpc.NewServer()
	rpcServer.RegisterCodec(newEthCodec(), "application/json")
	if err := rpcServer.RegisterService(svc, "EthService"); err != nil {
		return nil, fmt.Errorf("register EthService: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	s := &server{
		router: mux.NewRouter(),
		fanout: subscription.NewFanout(),
		cancel: cancel,
		opts:   opts,
		upgrade: websocket.Upgrader{
			CheckOrigin: corsChecker(opts.corsOrigins),
		},
	}
	if opts.maxConnections > 0 {
		s.conns = make(chan struct{}, opts.maxConnections)
	}
	if opts.rateLimitPerConn > 0 {
		s.limiter = newRateLimiter(opts.rateLimitPerConn)
	}

	s.router.Handle("/", s.limited(s.withCORS(rpcServer)))
	s.router.HandleFunc("/ws", s.handleWebsocket)

	go s.runFanout(ctx, client)

	return s, nil
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close tears down the background newHeads pump; every live websocket
// subscriber unwinds the next time the shared subscription is torn down.
func (s *server) Close() {
	s.cancel()
}

func (s *server) runFanout(ctx context.Context, client *gateway.Client) {
	sub, err := client.SubscribeNewHeads(ctx)
	if err != nil {
		return
	}
	s.fanout.Run(ctx, sub, newHeadDecoder(ctx, client.Backend))
}

// newHeadDecoder extracts a finalized header's number from one raw
// "chain_subscribeFinalizedHeads" notification and resolves it to a block
// hash via backend.BlockHash, since the header notification itself carries
// no hash field.
func newHeadDecoder(ctx context.Context, backend chainbackend.Backend) subscription.Decoder {
	return func(raw []byte) ([32]byte, error) {
		var header struct {
			Number string `json:"number"`
		}
		if err := json.Unmarshal(raw, &header); err != nil {
			return [32]byte{}, fmt.Errorf("decode header notification: %w", err)
		}
		number, err := strconv.ParseUint(strings.TrimPrefix(header.Number, "0x"), 16, 64)
		if err != nil {
			return [32]byte{}, fmt.Errorf("parse header number %q: %w", header.Number, err)
		}
		hash, ok, err := backend.BlockHash(ctx, number)
		if err != nil {
			return [32]byte{}, err
		}
		if !ok {
			return [32]byte{}, fmt.Errorf("no hash for finalized block %d", number)
		}
		return hash, nil
	}
}

// corsChecker reports whether origin is allowed to open a cross-origin
// connection. A request carrying no Origin header is always allowed; with
// no configured origins, every request that carries one is rejected; "*"
// allows any origin.
func corsChecker(origins []string) func(*http.Request) bool {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return allowAll || allowed[origin]
	}
}

func (s *server) withCORS(next http.Handler) http.Handler {
	check := corsChecker(s.opts.corsOrigins)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && check(r) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) limited(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.conns != nil {
			select {
			case s.conns <- struct{}{}:
				defer func() { <-s.conns }()
			default:
				http.Error(w, "too many connections", http.StatusServiceUnavailable)
				return
			}
		}
		if s.limiter != nil && !s.limiter.allow(remoteKey(r)) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	return r.RemoteAddr
}

// rateLimiter enforces a fixed per-second request budget per key, reset on
// the first request to land after the previous window elapsed.
type rateLimiter struct {
	limit int

	mu     sync.Mutex
	window map[string]*rateWindow
}

type rateWindow struct {
	count int
	reset time.Time
}

func newRateLimiter(limit int) *rateLimiter {
	return &rateLimiter{limit: limit, window: make(map[string]*rateWindow)}
}

func (l *rateLimiter) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	w, ok := l.window[key]
	if !ok || now.After(w.reset) {
		w = &rateWindow{reset: now.Add(time.Second)}
		l.window[key] = w
	}
	w.count++
	return w.count <= l.limit
}

// ethCodec rewrites a flat "eth_getBalance"-style method name into the
// dotted "EthService.GetBalance" shape gorilla/rpc's json2 codec expects,
// then delegates everything else to json2.
type ethCodec struct {
	inner *json2.Codec
}

func newEthCodec() *ethCodec {
	return &ethCodec{inner: json2.NewCodec()}
}

func (c *ethCodec) NewRequest(r *http.Request) gorillarpc.CodecRequest {
	body, err := io.ReadAll(r.Body)
	r.Body.Close()
	if err == nil {
		if rewritten, ok := rewriteRequestMethod(body); ok {
			body = rewritten
		}
	}
	r.Body = io.NopCloser(bytes.NewReader(body))
	return c.inner.NewRequest(r)
}

func rewriteRequestMethod(body []byte) ([]byte, bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, false
	}
	var method string
	if err := json.Unmarshal(raw["method"], &method); err != nil {
		return nil, false
	}
	dotted, ok := flatToDottedMethod(method)
	if !ok {
		return nil, false
	}
	encoded, err := json.Marshal(dotted)
	if err != nil {
		return nil, false
	}
	raw["method"] = encoded
	out, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	return out, true
}

// flatToDottedMethod turns "eth_getBalance" into "EthService.GetBalance":
// everything before the first underscore is discarded (it names the
// Ethereum JSON-RPC namespace, not a Go receiver), and the remaining
// camelCase word gets an initial capital.
func flatToDottedMethod(flat string) (string, bool) {
	idx := strings.IndexByte(flat, '_')
	if idx < 0 || idx == len(flat)-1 {
		return "", false
	}
	rest := flat[idx+1:]
	return "EthService." + strings.ToUpper(rest[:1]) + rest[1:], true
}

type wsRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Params  []interface{}   `json:"params"`
}

type wsSubParams struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

func (s *server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrade.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	bufSize := s.opts.messageBuffer
	if bufSize <= 0 {
		bufSize = 64
	}
	sink := newWSSink(conn, bufSize)
	defer sink.Close()

	var unsubscribe func()
	defer func() {
		if unsubscribe != nil {
			unsubscribe()
		}
	}()

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		switch req.Method {
		case "eth_subscribe":
			kind, _ := firstParamString(req.Params)
			if kind != "newHeads" {
				sink.sendError(req.ID, "unsupported subscription kind "+kind)
				continue
			}
			if unsubscribe != nil {
				sink.sendError(req.ID, "connection already has an active subscription")
				continue
			}
			sink.subID = fmt.Sprintf("0x%x", atomic.AddUint64(&s.nextSub, 1))
			unsubscribe = s.fanout.Subscribe(sink)
			sink.sendResult(req.ID, sink.subID)
		case "eth_unsubscribe":
			if unsubscribe != nil {
				unsubscribe()
				unsubscribe = nil
			}
			sink.sendResult(req.ID, true)
		default:
			sink.sendError(req.ID, "unsupported method "+req.Method)
		}
	}
}

func firstParamString(params []interface{}) (string, bool) {
	if len(params) == 0 {
		return "", false
	}
	s, ok := params[0].(string)
	return s, ok
}

// wsSink adapts one websocket connection to subscription.Sink. A single
// writeLoop goroutine owns every write to conn (control-message replies
// and subscription.Fanout notifications alike), since gorilla/websocket
// forbids concurrent writers on one connection.
type wsSink struct {
	conn  *websocket.Conn
	subID string

	send      chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newWSSink(conn *websocket.Conn, bufSize int) *wsSink {
	s := &wsSink{
		conn:   conn,
		send:   make(chan []byte, bufSize),
		closed: make(chan struct{}),
	}
	go s.writeLoop()
	return s
}

func (s *wsSink) writeLoop() {
	for {
		select {
		case payload, ok := <-s.send:
			if !ok {
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				s.Close()
				return
			}
		case <-s.closed:
			return
		}
	}
}

func (s *wsSink) enqueue(payload []byte) error {
	select {
	case s.send <- payload:
		return nil
	case <-s.closed:
		return fmt.Errorf("websocket sink closed")
	default:
		return fmt.Errorf("websocket send buffer full")
	}
}

// Send implements subscription.Sink: wraps payload as an eth_subscription
// notification addressed to this sink's subscription id.
func (s *wsSink) Send(payload []byte) error {
	envelope, err := json.Marshal(struct {
		JSONRPC string      `json:"jsonrpc"`
		Method  string      `json:"method"`
		Params  wsSubParams `json:"params"`
	}{
		JSONRPC: "2.0",
		Method:  "eth_subscription",
		Params:  wsSubParams{Subscription: s.subID, Result: payload},
	})
	if err != nil {
		return err
	}
	return s.enqueue(envelope)
}

func (s *wsSink) Closed() <-chan struct{} { return s.closed }

func (s *wsSink) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

func (s *wsSink) sendResult(id json.RawMessage, result interface{}) {
	payload, err := json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Result  interface{}     `json:"result"`
	}{JSONRPC: "2.0", ID: id, Result: result})
	if err != nil {
		return
	}
	s.enqueue(payload)
}

func (s *wsSink) sendError(id json.RawMessage, message string) {
	payload, err := json.Marshal(struct {
		JSONRPC string          `json:"jsonrpc"`
		ID      json.RawMessage `json:"id"`
		Error   struct {
			Message string `json:"message"`
		} `json:"error"`
	}{JSONRPC: "2.0", ID: id, Error: struct {
		Message string `json:"message"`
	}{Message: message}})
	if err != nil {
		return
	}
	s.enqueue(payload)
}
