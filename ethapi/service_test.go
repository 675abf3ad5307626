package ethapi_test

import (
	"net/http"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/subclone/subeth/blockcache"
	"github.com/subclone/subeth/chainbackend/fakes"
	"github.com/subclone/subeth/ethapi"
	"github.com/subclone/subeth/gateway"
	"github.com/subclone/subeth/translator"
)

var _ = Describe("Service", func() {
	var (
		backend *fakes.FakeBackend
		client  *gateway.Client
		svc     *ethapi.Service
		req     *http.Request
	)

	BeforeEach(func() {
		backend = &fakes.FakeBackend{}
		client = gateway.New(backend, blockcache.New(10), gateway.DefaultWrapperPallet, gateway.DefaultBalancesPallet, gateway.DefaultTimestampPallet, 7)
		svc = &ethapi.Service{
			Client:        client,
			TokenDecimals: 12,
			MetadataLookup: func() (translator.Metadata, error) {
				return translator.Metadata{
					Pallets: map[string]translator.PalletMetadata{
						"Balances": {
							Name: "Balances",
							Entries: map[string]translator.StorageEntry{
								"TotalIssuance": {Kind: translator.EntryPlain},
							},
						},
					},
				}, nil
			},
		}
		req, _ = http.NewRequest("POST", "/", nil)
	})

	It("reports protocol version, syncing, and empty accounts", func() {
		var version string
		Expect(svc.ProtocolVersion(req, nil, &version)).To(Succeed())
		Expect(version).To(Equal("0x1"))

		var syncing bool
		Expect(svc.Syncing(req, nil, &syncing)).To(Succeed())
		Expect(syncing).To(BeFalse())

		var accounts []string
		Expect(svc.Accounts(req, nil, &accounts)).To(Succeed())
		Expect(accounts).To(BeEmpty())
	})

	It("returns the configured chain id as a hex quantity", func() {
		var reply string
		Expect(svc.ChainId(req, nil, &reply)).To(Succeed())
		Expect(reply).To(Equal("0x7"))
	})

	It("returns block number as a hex quantity", func() {
		backend.BlockNumberReturns(42, nil)
		var reply string
		Expect(svc.BlockNumber(req, nil, &reply)).To(Succeed())
		Expect(reply).To(Equal("0x2a"))
	})

	It("returns balance and nonce as hex for a known address", func() {
		info := make([]byte, 32)
		info[0] = 3 // nonce = 3
		info[16] = 0xe8
		info[17] = 0x03 // free balance = 1000 (LE)
		backend.BlockNumberReturns(1, nil)
		backend.BlockHashReturns([32]byte{1}, true, nil)
		backend.FetchRawReturns(info, nil)

		addrParam := []string{"0x0101010101010101010101010101010101010101"}

		var balance string
		Expect(svc.GetBalance(req, &addrParam, &balance)).To(Succeed())
		Expect(balance).To(Equal("0x3e8"))

		var nonce string
		Expect(svc.GetTransactionCount(req, &addrParam, &nonce)).To(Succeed())
		Expect(nonce).To(Equal("0x3"))
	})

	It("rejects a malformed address parameter", func() {
		bad := []string{"not-hex"}
		var reply string
		Expect(svc.GetBalance(req, &bad, &reply)).To(HaveOccurred())
	})

	It("returns the synthetic revert marker from GetCode for a pallet address", func() {
		addr := translator.ContractAddress("Balances")
		hexAddr := "0x" + hexString(addr[:])
		params := []string{hexAddr}
		var reply string
		Expect(svc.GetCode(req, &params, &reply)).To(Succeed())
		Expect(reply).To(Equal("0x" + hexString([]byte("revert: Balances"))))
	})

	It("resolves GetBlockByNumber(latest) through the cache-first gateway path", func() {
		backend.BlockNumberReturns(5, nil)
		backend.BlockHashReturns([32]byte{9}, true, nil)
		backend.BlockReturns(translator.SubstrateBlock{Hash: [32]byte{9}, Number: 5}, nil)

		params := []interface{}{"latest", false}
		var block ethapi.Block
		Expect(svc.GetBlockByNumber(req, &params, &block)).To(Succeed())
		Expect(block.Number).To(Equal("0x5"))
	})

	It("fails Call without a configured MetadataLookup", func() {
		svc.MetadataLookup = nil
		backend.BlockNumberReturns(1, nil)
		backend.BlockHashReturns([32]byte{1}, true, nil)

		args := &ethapi.EthArgs{
			To:   "0x" + hexString(translator.ContractAddress("Balances")[:]),
			Data: "0x7b226e616d65223a22546f74616c49737375616e6365227d",
		}
		var reply string
		Expect(svc.Call(req, args, &reply)).To(HaveOccurred())
	})

	It("decodes, re-encodes, and submits a raw transaction via SendRawTransaction", func() {
		tx := translator.EthereumTransaction{ChainID: 7, Nonce: 1}
		raw := translator.EncodeEthereumTransaction(tx)
		rawHex := "0x" + hexString(raw)

		hash := [32]byte{0x55}
		backend.SubmitExtrinsicReturns(hash, nil)

		var reply string
		Expect(svc.SendRawTransaction(req, &rawHex, &reply)).To(Succeed())
		Expect(reply).To(Equal("0x" + hexString(hash[:])))
	})
})

func hexString(b []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = digits[c>>4]
		out[i*2+1] = digits[c&0xf]
	}
	return string(out)
}
