package gomel_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/aleph-committee/aleph-poset/pkg/gomel"
)

var _ = Describe("Hash", func() {

	It("orders distinct hashes consistently in both directions", func() {
		var a, b gomel.Hash
		a[0], b[0] = 1, 2
		Expect(a.LessThan(&b)).To(BeTrue())
		Expect(b.LessThan(&a)).To(BeFalse())
	})

	It("treats a hash as not less than itself", func() {
		var a gomel.Hash
		a[0] = 7
		Expect(a.LessThan(&a)).To(BeFalse())
	})

	It("XORs two hashes byte by byte and is its own inverse", func() {
		var a, b gomel.Hash
		a[0], a[5] = 0xF0, 0x0F
		b[0], b[5] = 0x0F, 0xF0
		x := gomel.XOR(&a, &b)
		Expect(x[0]).To(Equal(byte(0xFF)))
		Expect(x[5]).To(Equal(byte(0xFF)))
		Expect(*gomel.XOR(x, &b)).To(Equal(a))
	})

	It("updates a hash in place via XOREqual", func() {
		var a, b gomel.Hash
		a[1] = 0xAA
		b[1] = 0x0F
		want := *gomel.XOR(&a, &b)
		a.XOREqual(&b)
		Expect(a).To(Equal(want))
	})

	It("computes a deterministic content hash sensitive to every field", func() {
		view := gomel.EmptyCrown(4)
		h1 := gomel.ComputeHash(0, 0, view, []byte("data"), nil)
		h2 := gomel.ComputeHash(0, 0, view, []byte("data"), nil)
		Expect(*h1).To(Equal(*h2))

		h3 := gomel.ComputeHash(0, 0, view, []byte("other"), nil)
		Expect(*h1).NotTo(Equal(*h3))

		h4 := gomel.ComputeHash(1, 0, view, []byte("data"), nil)
		Expect(*h1).NotTo(Equal(*h4))

		h5 := gomel.ComputeHash(0, 1, view, []byte("data"), nil)
		Expect(*h1).NotTo(Equal(*h5))
	})

	It("combines hashes deterministically and order-sensitively", func() {
		var a, b gomel.Hash
		a[0], b[0] = 1, 2
		c1 := gomel.CombineHashes([]*gomel.Hash{&a, &b})
		c2 := gomel.CombineHashes([]*gomel.Hash{&a, &b})
		Expect(*c1).To(Equal(*c2))

		c3 := gomel.CombineHashes([]*gomel.Hash{&b, &a})
		Expect(*c1).NotTo(Equal(*c3))
	})

	It("treats a nil hash the same as ZeroHash when combining", func() {
		var a gomel.Hash
		a[0] = 9
		withNil := gomel.CombineHashes([]*gomel.Hash{&a, nil})
		withZero := gomel.CombineHashes([]*gomel.Hash{&a, &gomel.ZeroHash})
		Expect(*withNil).To(Equal(*withZero))
	})
})
