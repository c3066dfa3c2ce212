package ranges_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	"github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"

	"github.com/luma/shavar/ranges"
)

var _ = Describe("ranges", func() {
	Describe("Parse()", func() {
		It("parses single chunks and low-high pairs in order", func() {
			rs, err := ranges.Parse("1-7,43-597,44444,99999")
			Expect(err).To(Succeed())
			Expect(rs).To(Equal([]ranges.Range{
				{Low: 1, High: 7},
				{Low: 43, High: 597},
				{Low: 44444, High: 44444},
				{Low: 99999, High: 99999},
			}))
		})

		table.DescribeTable("rejects malformed lists",
			func(input string, expected error) {
				_, err := ranges.Parse(input)
				Expect(errors.Is(err, expected)).To(BeTrue())
			},
			table.Entry("empty string", "", ranges.ErrEmptyRange),
			table.Entry("empty element", "1,,3", ranges.ErrEmptyRange),
			table.Entry("zero chunk", "0", ranges.ErrInvalidRange),
			table.Entry("non numeric", "1-x", ranges.ErrInvalidRange),
			table.Entry("inverted pair", "9-3", ranges.ErrInvalidRange),
			table.Entry("dangling dash", "4-", ranges.ErrInvalidRange),
			table.Entry("signed number", "+3", ranges.ErrInvalidRange),
		)
	})

	Describe("Format()", func() {
		It("is the inverse of Parse", func() {
			input := "21-27,42,171717"
			rs, err := ranges.Parse(input)
			Expect(err).To(Succeed())
			Expect(ranges.Format(rs)).To(Equal(input))
		})

		It("renders nothing for no ranges", func() {
			Expect(ranges.Format(nil)).To(Equal(""))
		})
	})

	Describe("FromNumbers()", func() {
		It("sorts, dedupes and collapses contiguous chunks", func() {
			rs := ranges.FromNumbers([]int{9, 1, 2, 3, 3, 5, 10, 7})
			Expect(ranges.Format(rs)).To(Equal("1-3,5,7,9-10"))
		})

		It("does not modify its input", func() {
			input := []int{3, 2, 1}
			ranges.FromNumbers(input)
			Expect(input).To(Equal([]int{3, 2, 1}))
		})
	})

	Describe("ContainsAny()", func() {
		unsorted := []ranges.Range{{Low: 40, High: 50}, {Low: 1, High: 2}, {Low: 10, High: 10}}

		It("finds numbers inside a range", func() {
			Expect(ranges.ContainsAny(unsorted, 45)).To(BeTrue())
			Expect(ranges.ContainsAny(unsorted, 2)).To(BeTrue())
			Expect(ranges.ContainsAny(unsorted, 10)).To(BeTrue())
		})

		It("misses numbers between ranges", func() {
			Expect(ranges.ContainsAny(unsorted, 3)).To(BeFalse())
			Expect(ranges.ContainsAny(unsorted, 51)).To(BeFalse())
			Expect(ranges.ContainsAny(nil, 1)).To(BeFalse())
		})
	})
})
