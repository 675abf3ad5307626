package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("flatToDottedMethod", func() {
	It("splits on the first underscore and capitalizes the rest", func() {
		dotted, ok := flatToDottedMethod("eth_getBalance")
		Expect(ok).To(BeTrue())
		Expect(dotted).To(Equal("EthService.GetBalance"))
	})

	It("capitalizes an already-single-word method", func() {
		dotted, ok := flatToDottedMethod("eth_chainId")
		Expect(ok).To(BeTrue())
		Expect(dotted).To(Equal("EthService.ChainId"))
	})

	It("rejects a method with no underscore", func() {
		_, ok := flatToDottedMethod("malformed")
		Expect(ok).To(BeFalse())
	})

	It("rejects a method ending in an underscore", func() {
		_, ok := flatToDottedMethod("eth_")
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("rewriteRequestMethod", func() {
	It("rewrites the method field and preserves the rest of the body", func() {
		body := []byte(`{"jsonrpc":"2.0","id":1,"method":"eth_blockNumber","params":[]}`)
		out, ok := rewriteRequestMethod(body)
		Expect(ok).To(BeTrue())

		var decoded map[string]interface{}
		Expect(json.Unmarshal(out, &decoded)).To(Succeed())
		Expect(decoded["method"]).To(Equal("EthService.BlockNumber"))
		Expect(decoded["id"]).To(Equal(float64(1)))
	})

	It("leaves an unparseable body alone", func() {
		_, ok := rewriteRequestMethod([]byte("not json"))
		Expect(ok).To(BeFalse())
	})
})

var _ = Describe("corsChecker", func() {
	It("allows requests carrying no Origin header", func() {
		check := corsChecker([]string{"https://example.com"})
		r, _ := http.NewRequest("GET", "/", nil)
		Expect(check(r)).To(BeTrue())
	})

	It("allows a listed origin and rejects an unlisted one", func() {
		check := corsChecker([]string{"https://good.example"})

		r1, _ := http.NewRequest("GET", "/", nil)
		r1.Header.Set("Origin", "https://good.example")
		Expect(check(r1)).To(BeTrue())

		r2, _ := http.NewRequest("GET", "/", nil)
		r2.Header.Set("Origin", "https://bad.example")
		Expect(check(r2)).To(BeFalse())
	})

	It("allows any origin when \"*\" is configured", func() {
		check := corsChecker([]string{"*"})
		r, _ := http.NewRequest("GET", "/", nil)
		r.Header.Set("Origin", "https://anything.example")
		Expect(check(r)).To(BeTrue())
	})
})

var _ = Describe("rateLimiter", func() {
	It("allows up to the configured limit within one window and rejects beyond it", func() {
		l := newRateLimiter(2)
		Expect(l.allow("a")).To(BeTrue())
		Expect(l.allow("a")).To(BeTrue())
		Expect(l.allow("a")).To(BeFalse())
	})

	It("tracks separate keys independently", func() {
		l := newRateLimiter(1)
		Expect(l.allow("a")).To(BeTrue())
		Expect(l.allow("b")).To(BeTrue())
	})
})

var _ = Describe("server request handling", func() {
	It("answers CORS preflight without invoking the wrapped handler", func() {
		s := &server{opts: serverOptions{corsOrigins: []string{"https://good.example"}}}
		called := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodOptions, "/", nil)
		req.Header.Set("Origin", "https://good.example")
		rec := httptest.NewRecorder()

		s.withCORS(inner).ServeHTTP(rec, req)

		Expect(called).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusNoContent))
		Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://good.example"))
	})

	It("rejects connections beyond the configured maximum", func() {
		s := &server{conns: make(chan struct{}, 1)}
		s.conns <- struct{}{}

		called := false
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		s.limited(inner).ServeHTTP(rec, req)

		Expect(called).To(BeFalse())
		Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
	})
})
