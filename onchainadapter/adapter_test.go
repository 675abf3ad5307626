package onchainadapter_test

import (
	"context"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/subclone/subeth/onchainadapter"
	"github.com/subclone/subeth/translator"
)

var _ = Describe("NormalizeSignature", func() {
	It("maps v=27 to recovery id 0", func() {
		sig, err := onchainadapter.NormalizeSignature([32]byte{1}, [32]byte{2}, 27)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.V).To(Equal(uint8(0)))
	})

	It("maps v=28 to recovery id 1", func() {
		sig, err := onchainadapter.NormalizeSignature([32]byte{1}, [32]byte{2}, 28)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.V).To(Equal(uint8(1)))
	})

	It("passes an already-normalized v=0 or v=1 through unchanged", func() {
		sig, err := onchainadapter.NormalizeSignature([32]byte{1}, [32]byte{2}, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.V).To(Equal(uint8(0)))

		sig, err = onchainadapter.NormalizeSignature([32]byte{1}, [32]byte{2}, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(sig.V).To(Equal(uint8(1)))
	})

	It("rejects any other recovery id", func() {
		_, err := onchainadapter.NormalizeSignature([32]byte{1}, [32]byte{2}, 30)
		Expect(err).To(MatchError(onchainadapter.ErrInvalidRecoveryId))
	})
})

var _ = Describe("RecoverSigner", func() {
	It("recovers the address that produced the signature", func() {
		key, err := crypto.GenerateKey()
		Expect(err).NotTo(HaveOccurred())
		wantAddr := crypto.PubkeyToAddress(key.PublicKey)

		var hash [32]byte
		hash[0] = 0xab

		sigBytes, err := crypto.Sign(hash[:], key)
		Expect(err).NotTo(HaveOccurred())

		var r, s [32]byte
		copy(r[:], sigBytes[0:32])
		copy(s[:], sigBytes[32:64])
		sig, err := onchainadapter.NormalizeSignature(r, s, uint64(sigBytes[64]))
		Expect(err).NotTo(HaveOccurred())

		got, err := onchainadapter.RecoverSigner(hash, sig)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(wantAddr))
	})

	It("fails to recover from a garbage signature", func() {
		var hash [32]byte
		_, err := onchainadapter.RecoverSigner(hash, onchainadapter.Signature{})
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Adapter.Process", func() {
	var (
		dispatch *fakeDispatcher
		adapter  *onchainadapter.Adapter
	)

	BeforeEach(func() {
		dispatch = &fakeDispatcher{}
		adapter = onchainadapter.NewAdapter(dispatch, nil)
	})

	signedTx := func() (translator.EthereumTransaction, []byte, translator.Address) {
		privKey, _ := crypto.GenerateKey()
		addr := crypto.PubkeyToAddress(privKey.PublicKey)

		tx := translator.EthereumTransaction{
			ChainID:              1,
			Nonce:                0,
			MaxPriorityFeePerGas: uint256.NewInt(0),
			MaxFeePerGas:         uint256.NewInt(0),
			GasLimit:             21_000_000,
			To:                   translator.ContractAddress("Balances"),
			Value:                uint256.NewInt(0),
			Data:                 []byte{0x05, 0x00},
		}

		hash := onchainadapter.MessageHash(tx)
		sigBytes, _ := crypto.Sign(hash[:], privKey)
		copy(tx.R[:], sigBytes[0:32])
		copy(tx.S[:], sigBytes[32:64])
		tx.V = uint64(sigBytes[64])

		encoded := translator.EncodeEthereumTransaction(tx)
		return tx, encoded, addr
	}

	It("dispatches a validly-signed transaction and records success", func() {
		tx, encoded, addr := signedTx()

		err := adapter.Process(context.Background(), tx, encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(dispatch.calls).To(Equal(1))
		Expect(dispatch.lastSigner).To(Equal(translator.ToAccount(addr)))

		executed, failed := adapter.Events.Flush()
		Expect(failed).To(BeEmpty())
		Expect(executed).To(HaveLen(1))
		Expect(executed[0].From).To(Equal(addr))
	})

	It("rejects an invalid recovery id before touching the dispatcher", func() {
		tx, encoded, _ := signedTx()
		tx.V = 99

		err := adapter.Process(context.Background(), tx, encoded)
		Expect(err).To(MatchError(onchainadapter.ErrInvalidRecoveryId))
		Expect(dispatch.calls).To(Equal(0))
	})

	It("records a failed event and surfaces ErrDispatchFailed when the dispatcher errors", func() {
		tx, encoded, _ := signedTx()
		dispatch.err = onchainadapter.ErrDispatchFailed

		err := adapter.Process(context.Background(), tx, encoded)
		Expect(err).To(MatchError(onchainadapter.ErrDispatchFailed))

		_, failed := adapter.Events.Flush()
		Expect(failed).To(HaveLen(1))
	})

	It("surfaces ErrCallDecodeFailed for a too-short call payload", func() {
		tx, encoded, _ := signedTx()
		tx.Data = []byte{0x01}

		hash := onchainadapter.MessageHash(tx)
		Expect(hash).NotTo(BeZero())

		err := adapter.Process(context.Background(), tx, encoded)
		Expect(err).To(MatchError(onchainadapter.ErrCallDecodeFailed))
		Expect(dispatch.calls).To(Equal(0))
	})
})
