package protocol_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/ranges"
)

var _ = Describe("ParseUpdate()", func() {
	It("parses chunk deletes for several lists", func() {
		data := "n:1700\ni:phishy\nad:1-7,43-597,44444,99999\ni:malware\nsd:21-27,42,171717\n"

		update, err := protocol.ParseUpdate([]byte(data), protocol.Options{})
		Expect(err).To(Succeed())
		Expect(update.NextPollSeconds).To(Equal(1700))
		Expect(update.Rekey).To(BeFalse())
		Expect(update.Reset).To(BeFalse())
		Expect(update.Redirects).To(BeEmpty())

		Expect(update.Deletes).To(Equal([]protocol.ChunkDelete{
			{
				ListName: "phishy",
				IsSubDel: false,
				Ranges: []ranges.Range{
					{Low: 1, High: 7},
					{Low: 43, High: 597},
					{Low: 44444, High: 44444},
					{Low: 99999, High: 99999},
				},
			},
			{
				ListName: "malware",
				IsSubDel: true,
				Ranges: []ranges.Range{
					{Low: 21, High: 27},
					{Low: 42, High: 42},
					{Low: 171717, High: 171717},
				},
			},
		}))
	})

	It("splits the MAC off a redirect URL at the last comma", func() {
		data := "i:goog-phish-shavar\nu:host/path:6501-6505,pcY6iVeT9-CBQ3fdAF0rpnKjR1Y=\n"

		opts := protocol.Options{
			Key:    "key",
			Verify: func(key, mac string, data []byte) bool { return true },
		}

		update, err := protocol.ParseUpdate([]byte(data), opts)
		Expect(err).To(Succeed())
		Expect(update.Redirects).To(Equal([]protocol.RedirectURL{{
			URL:      "host/path:6501-6505",
			ListName: "goog-phish-shavar",
			MAC:      "pcY6iVeT9-CBQ3fdAF0rpnKjR1Y=",
		}}))
	})

	It("keeps the whole redirect URL when there is no key", func() {
		data := "i:goog-malware-shavar\nu:cache.example.com/a,b:1-2\nu:other.example.com/c\n"

		update, err := protocol.ParseUpdate([]byte(data), protocol.Options{})
		Expect(err).To(Succeed())
		Expect(update.Redirects).To(HaveLen(2))
		Expect(update.Redirects[0].URL).To(Equal("cache.example.com/a,b:1-2"))
		Expect(update.Redirects[0].MAC).To(BeEmpty())
		Expect(update.Redirects[1].ListName).To(Equal("goog-malware-shavar"))
	})

	It("rejects a keyed redirect URL without a MAC", func() {
		_, err := protocol.ParseUpdate([]byte("i:l\nu:host/path\n"), protocol.Options{Key: testKey})
		Expect(errors.Is(err, protocol.ErrMissingURLMAC)).To(BeTrue())
	})

	It("parses rekey and reset signals", func() {
		update, err := protocol.ParseUpdate([]byte("e:pleaserekey\nr:pleasereset\ne:pleaserekey\n"), protocol.Options{})
		Expect(err).To(Succeed())
		Expect(update.Rekey).To(BeTrue())
		Expect(update.Reset).To(BeTrue())
	})

	It("ignores commands it does not understand", func() {
		update, err := protocol.ParseUpdate([]byte("z:whatever\nn:30\nq:1\n"), protocol.Options{})
		Expect(err).To(Succeed())
		Expect(update.NextPollSeconds).To(Equal(30))
	})

	table.DescribeTable("skips unknown commands whatever their shape",
		func(data string) {
			update, err := protocol.ParseUpdate([]byte(data), protocol.Options{})
			Expect(err).To(Succeed())
			Expect(update.NextPollSeconds).To(Equal(5))
		},
		table.Entry("extra fields", "z:1:2\nn:5\n"),
		table.Entry("no value", "zz\nn:5\n"),
		table.Entry("after the poll interval", "n:5\nq:a:b:c\n"),
	)

	It("accepts an empty response", func() {
		update, err := protocol.ParseUpdate([]byte{}, protocol.Options{})
		Expect(err).To(Succeed())
		Expect(update.Deletes).To(BeEmpty())
		Expect(update.Redirects).To(BeEmpty())
	})

	Describe("MAC verification", func() {
		body := "n:900\ni:goog-phish-shavar\nu:host/a,MAC\n"

		It("verifies everything after the m: line", func() {
			data := "m:" + sign(body) + "\n" + body

			update, err := protocol.ParseUpdate([]byte(data), protocol.Options{Key: testKey})
			Expect(err).To(Succeed())
			Expect(update.NextPollSeconds).To(Equal(900))
			Expect(update.Redirects[0].MAC).To(Equal("MAC"))
		})

		It("rejects a tampered update", func() {
			data := "m:" + sign(body) + "\n" + "n:901\ni:goog-phish-shavar\nu:host/a,MAC\n"

			update, err := protocol.ParseUpdate([]byte(data), protocol.Options{Key: testKey})
			Expect(update).To(BeNil())
			Expect(errors.Is(err, protocol.ErrMACMismatch)).To(BeTrue())
		})

		It("ignores the m: line when there is no key", func() {
			update, err := protocol.ParseUpdate([]byte("m:garbage\nn:5\n"), protocol.Options{})
			Expect(err).To(Succeed())
			Expect(update.NextPollSeconds).To(Equal(5))
		})
	})

	table.DescribeTable("rejects malformed updates",
		func(data string, expected error) {
			update, err := protocol.ParseUpdate([]byte(data), protocol.Options{})
			Expect(update).To(BeNil())
			Expect(errors.Is(err, expected)).To(BeTrue(), "got %v", err)
		},
		table.Entry("add delete before a list name", "ad:1-7\ni:phishy\n", protocol.ErrMissingListName),
		table.Entry("sub delete before a list name", "sd:1\n", protocol.ErrMissingListName),
		table.Entry("unparsable ranges", "i:l\nad:1-x\n", protocol.ErrBadRanges),
		table.Entry("reserved a command", "i:l\nadd:1\n", protocol.ErrUnknownCommand),
		table.Entry("reserved s command", "i:l\ns:1\n", protocol.ErrUnknownCommand),
		table.Entry("bad rekey value", "e:pleasereset\n", protocol.ErrBadSignal),
		table.Entry("bad reset value", "r:pleaserekey\n", protocol.ErrBadSignal),
		table.Entry("bad poll interval", "n:soon\n", protocol.ErrBadNumber),
		table.Entry("negative poll interval", "n:-5\n", protocol.ErrBadNumber),
		table.Entry("signed poll interval", "n:+5\n", protocol.ErrBadNumber),
		table.Entry("too many fields", "n:1:2\n", protocol.ErrFieldCount),
		table.Entry("missing value", "n\n", protocol.ErrFieldCount),
		table.Entry("empty line", "\n", protocol.ErrUnknownCommand),
		table.Entry("unterminated line", "n:10", protocol.ErrMissingNewline),
	)
})
