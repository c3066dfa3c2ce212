package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/shavar/lists"
	"github.com/luma/shavar/protocol"
)

var _ = Describe("ParseGetHash()", func() {
	a, b, c := fullHash('a'), fullHash('b'), fullHash('c')

	It("tags each hash with its list and add chunk", func() {
		data := "goog-phish-shavar:1000:64\n" + string(a[:]) + string(b[:]) +
			"goog-malware-shavar:2000:32\n" + string(c[:])

		resp, err := protocol.ParseGetHash([]byte(data), protocol.Options{})
		Expect(err).To(Succeed())
		Expect(resp.Rekey).To(BeFalse())
		Expect(resp.Hashes).To(Equal([]protocol.HashResult{
			{ListName: lists.PhishName, AddChunkID: 1000, Hash: a},
			{ListName: lists.PhishName, AddChunkID: 1000, Hash: b},
			{ListName: lists.MalwareName, AddChunkID: 2000, Hash: c},
		}))
	})

	It("skips the hashes of unknown lists", func() {
		data := "goog-unknown-shavar:7:64\n" + string(a[:]) + string(b[:]) +
			"goog-malware-shavar:8:32\n" + string(c[:])

		resp, err := protocol.ParseGetHash([]byte(data), protocol.Options{})
		Expect(err).To(Succeed())
		Expect(resp.Hashes).To(HaveLen(1))
		Expect(resp.Hashes[0].Hash).To(Equal(c))
		Expect(resp.Hashes[0].AddChunkID).To(Equal(8))
	})

	It("uses the injected list lookup", func() {
		only := lists.NewTable(lists.List{Name: "my-list"})
		data := "my-list:1:32\n" + string(a[:]) + "goog-malware-shavar:2:32\n" + string(b[:])

		resp, err := protocol.ParseGetHash([]byte(data), protocol.Options{Lists: only.Lookup})
		Expect(err).To(Succeed())
		Expect(resp.Hashes).To(HaveLen(1))
		Expect(resp.Hashes[0].ListName).To(Equal("my-list"))
	})

	It("accepts an empty response", func() {
		resp, err := protocol.ParseGetHash([]byte{}, protocol.Options{})
		Expect(err).To(Succeed())
		Expect(resp.Hashes).To(BeEmpty())
	})

	Describe("with a key", func() {
		body := "goog-phish-shavar:1:32\n" + string(a[:])

		It("verifies the leading MAC over the rest of the response", func() {
			resp, err := protocol.ParseGetHash([]byte(sign(body)+"\n"+body), protocol.Options{Key: testKey})
			Expect(err).To(Succeed())
			Expect(resp.Hashes).To(HaveLen(1))
		})

		It("rejects a response with a bad MAC", func() {
			resp, err := protocol.ParseGetHash([]byte(sign(body+"x")+"\n"+body), protocol.Options{Key: testKey})
			Expect(resp).To(BeNil())
			Expect(errors.Is(err, protocol.ErrMACMismatch)).To(BeTrue())
		})

		It("treats e:pleaserekey in place of the MAC as a rekey", func() {
			resp, err := protocol.ParseGetHash([]byte("e:pleaserekey\n"), protocol.Options{Key: testKey})
			Expect(err).To(Succeed())
			Expect(resp.Rekey).To(BeTrue())
			Expect(resp.Hashes).To(BeEmpty())
		})

		It("rejects a response without a MAC line", func() {
			_, err := protocol.ParseGetHash([]byte{}, protocol.Options{Key: testKey})
			Expect(errors.Is(err, protocol.ErrMissingNewline)).To(BeTrue())
		})
	})

	Describe("malformed responses", func() {
		expectError := func(data string, expected error) {
			resp, err := protocol.ParseGetHash([]byte(data), protocol.Options{})
			Expect(resp).To(BeNil())
			Expect(errors.Is(err, expected)).To(BeTrue(), "got %v", err)
		}

		It("rejects hashes that run past the data", func() {
			expectError("goog-phish-shavar:1:64\n"+string(a[:]), protocol.ErrTruncated)
		})

		It("rejects skipped hashes that run past the data", func() {
			expectError("goog-unknown-shavar:1:64\n"+string(a[:]), protocol.ErrTruncated)
		})

		It("rejects lengths that are not whole hashes", func() {
			expectError("goog-phish-shavar:1:31\n"+string(a[:31]), protocol.ErrTrailingData)
		})

		It("rejects headers with the wrong number of fields", func() {
			expectError("goog-phish-shavar:32\n"+string(a[:]), protocol.ErrFieldCount)
		})

		It("rejects a non numeric add chunk", func() {
			expectError("goog-phish-shavar:x:32\n"+string(a[:]), protocol.ErrBadNumber)
		})
	})
})
