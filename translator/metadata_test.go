package translator_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/subclone/subeth/translator"
)

var _ = Describe("Metadata.PalletNameByIndex", func() {
	metadata := translator.Metadata{
		Pallets: map[string]translator.PalletMetadata{
			"Balances":  {Name: "Balances", Index: 5},
			"Timestamp": {Name: "Timestamp", Index: 3},
		},
	}

	It("resolves a known pallet index to its name", func() {
		name, ok := metadata.PalletNameByIndex(5)
		Expect(ok).To(BeTrue())
		Expect(name).To(Equal("Balances"))
	})

	It("reports false for an index no pallet carries", func() {
		_, ok := metadata.PalletNameByIndex(99)
		Expect(ok).To(BeFalse())
	})
})
