package translator_test

import (
	"github.com/holiman/uint256"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/subclone/subeth/translator"
)

var _ = Describe("EthereumTransaction SCALE round-trip", func() {
	It("decodes exactly what it encoded", func() {
		tx := translator.EthereumTransaction{
			ChainID:              42,
			Nonce:                7,
			MaxPriorityFeePerGas: uint256.NewInt(100),
			MaxFeePerGas:         uint256.NewInt(200),
			GasLimit:             21_000_000,
			To:                   translator.Address{0x01, 0x02},
			Value:                uint256.NewInt(1_000_000),
			Data:                 []byte{0x06, 0x00, 0xaa, 0xbb},
			AccessList: []translator.AccessTupleEntry{
				{Address: translator.Address{0x03}, StorageKeys: [][32]byte{{0xff}}},
			},
			V: 1,
			R: [32]byte{0x11},
			S: [32]byte{0x22},
		}

		encoded := translator.EncodeEthereumTransaction(tx)
		decoded, err := translator.DecodeEthereumTransaction(encoded)
		Expect(err).NotTo(HaveOccurred())

		Expect(decoded.ChainID).To(Equal(tx.ChainID))
		Expect(decoded.Nonce).To(Equal(tx.Nonce))
		Expect(decoded.MaxPriorityFeePerGas.Eq(tx.MaxPriorityFeePerGas)).To(BeTrue())
		Expect(decoded.MaxFeePerGas.Eq(tx.MaxFeePerGas)).To(BeTrue())
		Expect(decoded.GasLimit).To(Equal(tx.GasLimit))
		Expect(decoded.To).To(Equal(tx.To))
		Expect(decoded.Value.Eq(tx.Value)).To(BeTrue())
		Expect(decoded.Data).To(Equal(tx.Data))
		Expect(decoded.AccessList).To(Equal(tx.AccessList))
		Expect(decoded.V).To(Equal(tx.V))
		Expect(decoded.R).To(Equal(tx.R))
		Expect(decoded.S).To(Equal(tx.S))
	})

	It("round-trips an empty access list and empty data", func() {
		tx := translator.EthereumTransaction{
			MaxPriorityFeePerGas: uint256.NewInt(0),
			MaxFeePerGas:         uint256.NewInt(0),
			Value:                uint256.NewInt(0),
		}
		encoded := translator.EncodeEthereumTransaction(tx)
		decoded, err := translator.DecodeEthereumTransaction(encoded)
		Expect(err).NotTo(HaveOccurred())
		Expect(decoded.AccessList).To(BeEmpty())
		Expect(decoded.Data).To(BeEmpty())
	})
})

var _ = Describe("MessageHashPreimage", func() {
	It("is a pure function of the transaction's fields", func() {
		tx := translator.EthereumTransaction{
			ChainID:              1,
			Nonce:                2,
			MaxPriorityFeePerGas: uint256.NewInt(3),
			MaxFeePerGas:         uint256.NewInt(4),
			GasLimit:             5,
			To:                   translator.Address{0xaa},
			Value:                uint256.NewInt(6),
			Data:                 []byte{0x01, 0x02},
		}

		a := translator.MessageHashPreimage(tx)
		b := translator.MessageHashPreimage(tx)
		Expect(a).To(Equal(b))
		Expect(a[0]).To(Equal(byte(0x02)), "preimage starts with the 0x02 type byte")
	})

	It("does not length-prefix the trailing data bytes", func() {
		tx := translator.EthereumTransaction{
			MaxPriorityFeePerGas: uint256.NewInt(0),
			MaxFeePerGas:         uint256.NewInt(0),
			Value:                uint256.NewInt(0),
			Data:                 []byte{0xde, 0xad, 0xbe, 0xef},
		}
		preimage := translator.MessageHashPreimage(tx)
		Expect(preimage[len(preimage)-4:]).To(Equal([]byte{0xde, 0xad, 0xbe, 0xef}))
	})
})
