package gateway_test

import (
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/subclone/subeth/blockcache"
	"github.com/subclone/subeth/chainbackend/fakes"
	"github.com/subclone/subeth/gateway"
	"github.com/subclone/subeth/scale"
	"github.com/subclone/subeth/translator"
)

func accountInfoBytes(nonce uint32, balance uint64) []byte {
	out := make([]byte, 32)
	out[0] = byte(nonce)
	out[1] = byte(nonce >> 8)
	out[2] = byte(nonce >> 16)
	out[3] = byte(nonce >> 24)
	// bytes 4..16 are the three refcounts, left zero
	for i := 0; i < 8; i++ {
		out[16+i] = byte(balance >> (8 * i))
	}
	return out
}

var _ = Describe("Client", func() {
	var (
		backend *fakes.FakeBackend
		client  *gateway.Client
	)

	BeforeEach(func() {
		backend = &fakes.FakeBackend{}
		client = gateway.New(backend, blockcache.New(10), gateway.DefaultWrapperPallet, gateway.DefaultBalancesPallet, gateway.DefaultTimestampPallet, 42)
	})

	It("returns the configured chain id", func() {
		Expect(client.ChainId()).To(Equal(uint64(42)))
	})

	It("passes BlockNumber straight through to the backend", func() {
		backend.BlockNumberReturns(7, nil)
		n, err := client.BlockNumber(context.Background())
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(uint64(7)))
	})

	It("fetches and caches a block by number on first access, then serves from cache", func() {
		var hash [32]byte
		hash[0] = 0xaa
		backend.BlockHashReturns(hash, true, nil)
		backend.BlockReturns(translator.SubstrateBlock{Hash: hash, Number: 9}, nil)

		block, ok, err := client.GetBlockByNumber(context.Background(), 9, 12, translator.Metadata{})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(block.Number).To(Equal(uint64(9)))
		Expect(backend.InvocationsCount("Block")).To(Equal(1))

		_, ok, err = client.GetBlockByNumber(context.Background(), 9, 12, translator.Metadata{})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(backend.InvocationsCount("Block")).To(Equal(1), "second lookup should be served from cache")
	})

	It("reports no block when BlockHash resolves nothing", func() {
		backend.BlockHashReturns([32]byte{}, false, nil)
		_, ok, err := client.GetBlockByNumber(context.Background(), 100, 12, translator.Metadata{})
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("derives balance and nonce from System.Account storage", func() {
		backend.BlockNumberReturns(1, nil)
		backend.BlockHashReturns([32]byte{1}, true, nil)
		backend.FetchRawReturns(accountInfoBytes(5, 1000), nil)

		addr := translator.Address{0x01}
		balance, err := client.GetBalance(context.Background(), addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(balance.Uint64()).To(Equal(uint64(1000)))

		nonce, err := client.GetTransactionCount(context.Background(), addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(nonce).To(Equal(uint64(5)))
	})

	It("returns zero balance and nonce when the account entry is absent", func() {
		backend.BlockNumberReturns(1, nil)
		backend.BlockHashReturns([32]byte{1}, true, nil)
		backend.FetchRawReturns(nil, nil)

		addr := translator.Address{0x02}
		balance, err := client.GetBalance(context.Background(), addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(balance.IsZero()).To(BeTrue())

		nonce, err := client.GetTransactionCount(context.Background(), addr)
		Expect(err).NotTo(HaveOccurred())
		Expect(nonce).To(Equal(uint64(0)))
	})

	It("returns the synthetic revert marker for a pallet address", func() {
		addr := translator.ContractAddress("Balances")
		Expect(client.GetCode(addr)).To(Equal([]byte("revert: Balances")))
	})

	It("returns empty code for a non-pallet address (invalid UTF-8 after trimming)", func() {
		addr := translator.Address{0xff, 0xfe}
		Expect(client.GetCode(addr)).To(BeEmpty())
	})

	It("returns raw storage bytes verbatim for get_storage_at", func() {
		backend.FetchRawReturns([]byte{0xde, 0xad}, nil)
		got, err := client.GetStorageAt(context.Background(), []byte("somekey"), [32]byte{})
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]byte{0xde, 0xad}))
	})

	Describe("Call", func() {
		metadata := translator.Metadata{
			Pallets: map[string]translator.PalletMetadata{
				"Balances": {
					Name: "Balances",
					Entries: map[string]translator.StorageEntry{
						"TotalIssuance": {Kind: translator.EntryPlain},
					},
				},
			},
		}

		It("returns nil when to is not a pallet-synthetic address", func() {
			got, err := client.Call(context.Background(), translator.Address{0xff, 0xfe}, nil, metadata, [32]byte{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("returns nil when input isn't a valid StorageKey payload", func() {
			to := translator.ContractAddress("Balances")
			got, err := client.Call(context.Background(), to, []byte("not json"), metadata, [32]byte{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("returns nil when the pallet or entry is unknown", func() {
			to := translator.ContractAddress("Balances")
			payload, _ := json.Marshal(translator.StorageKey{Name: "NoSuchEntry"})
			got, err := client.Call(context.Background(), to, payload, metadata, [32]byte{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("derives the storage key and fetches it for a known pallet/entry", func() {
			backend.FetchRawReturns([]byte{0x01, 0x02, 0x03, 0x04}, nil)
			to := translator.ContractAddress("Balances")
			payload, _ := json.Marshal(translator.StorageKey{Name: "TotalIssuance"})

			got, err := client.Call(context.Background(), to, payload, metadata, [32]byte{})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal([]byte{0x01, 0x02, 0x03, 0x04}))
		})
	})

	Describe("block translation with pallet metadata", func() {
		metadata := translator.Metadata{
			Pallets: map[string]translator.PalletMetadata{
				"Staking": {Name: "Staking", Index: 9},
			},
		}

		It("detects a Balances transfer, extracts the timestamp inherent, and resolves other pallet names", func() {
			var dest [32]byte
			dest[0] = 0x0b

			transferArgs := append([]byte{0x00}, dest[:]...)
			transferArgs = append(transferArgs, scale.EncodeCompact(500)...)

			timestampArgs := scale.EncodeCompact(1_700_000_000_000)

			block := translator.SubstrateBlock{
				Hash:   [32]byte{7},
				Number: 3,
				Extrinsics: []translator.Extrinsic{
					{PalletIdx: gateway.DefaultTimestampPallet.PalletIndex, CallIdx: gateway.DefaultTimestampPallet.SetCallIndex, CallData: timestampArgs},
					{PalletIdx: gateway.DefaultBalancesPallet.PalletIndex, CallIdx: gateway.DefaultBalancesPallet.TransferAllowDeathIndex, CallData: transferArgs},
					{PalletIdx: 9, CallIdx: 1, CallData: []byte{0xaa}},
				},
			}

			backend.BlockHashReturns([32]byte{7}, true, nil)
			backend.BlockReturns(block, nil)

			got, ok, err := client.GetBlockByNumber(context.Background(), 3, 0, metadata)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(got.Timestamp).To(Equal(uint64(1_700_000_000)))

			transferTx := got.Transactions[1]
			Expect(transferTx.To).To(Equal(translator.ToAddress(translator.AccountID(dest))))
			Expect(transferTx.Value.Uint64()).To(Equal(uint64(500)))

			stakingTx := got.Transactions[2]
			Expect(stakingTx.To).To(Equal(translator.ContractAddress("Staking")))
		})
	})

	It("prefixes the wrapper pallet/call index before submitting the extrinsic", func() {
		var submitted []byte
		backend.SubmitExtrinsicStub = func(ctx context.Context, extrinsic []byte) ([32]byte, error) {
			submitted = extrinsic
			return [32]byte{0x99}, nil
		}

		tx := translator.EthereumTransaction{}
		hash, err := client.SubmitEvmTransaction(context.Background(), tx, []byte{0xaa, 0xbb})
		Expect(err).NotTo(HaveOccurred())
		Expect(hash).To(Equal([32]byte{0x99}))
		Expect(submitted).To(Equal([]byte{6, 0, 0xaa, 0xbb}))
	})
})
