package translator_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/subclone/subeth/translator"
)

var _ = Describe("DecodeRuntimeCall", func() {
	It("splits pallet index, call index, and args", func() {
		data := []byte{0x06, 0x00, 0x01, 0x02, 0x03}
		call, err := translator.DecodeRuntimeCall(data)
		Expect(err).NotTo(HaveOccurred())
		Expect(call.PalletIndex).To(Equal(uint8(6)))
		Expect(call.CallIndex).To(Equal(uint8(0)))
		Expect(call.Args).To(Equal([]byte{0x01, 0x02, 0x03}))
	})

	It("rejects input shorter than 2 bytes", func() {
		_, err := translator.DecodeRuntimeCall([]byte{0x06})
		Expect(err).To(HaveOccurred())
	})

	It("allows an empty args tail", func() {
		call, err := translator.DecodeRuntimeCall([]byte{0x06, 0x01})
		Expect(err).NotTo(HaveOccurred())
		Expect(call.Args).To(BeEmpty())
	})
})
