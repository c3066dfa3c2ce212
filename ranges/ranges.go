// Package ranges converts between chunk range strings such as "1-7,43,99999"
// and ordered lists of inclusive chunk number ranges.
package ranges

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	ErrEmptyRange   = errors.New("Range list is malformed, it contains an empty element")
	ErrInvalidRange = errors.New("Range list is malformed, it contains an invalid chunk number")
)

// Range is an inclusive span of chunk numbers. A single chunk has Low == High.
type Range struct {
	Low  int `json:"low"`
	High int `json:"high"`
}

func (r Range) String() string {
	if r.Low == r.High {
		return strconv.Itoa(r.Low)
	}

	return fmt.Sprintf("%d-%d", r.Low, r.High)
}

// Parse cracks a comma separated list of chunk numbers and low-high pairs.
//
// Chunk numbers are never zero, so a zero or otherwise unparsable element
// fails the whole list.
func Parse(s string) ([]Range, error) {
	if s == "" {
		return nil, fmt.Errorf("Failed to parse '%s': %w", s, ErrEmptyRange)
	}

	parts := strings.Split(s, ",")
	out := make([]Range, 0, len(parts))

	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("Failed to parse '%s': %w", s, ErrEmptyRange)
		}

		low, high := part, part
		if i := strings.IndexByte(part, '-'); i >= 0 {
			low, high = part[:i], part[i+1:]
		}

		lo, err := parseChunkNumber(low)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse '%s': %w", s, err)
		}

		hi, err := parseChunkNumber(high)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse '%s': %w", s, err)
		}

		if hi < lo {
			return nil, fmt.Errorf("Failed to parse '%s': %w", s, ErrInvalidRange)
		}

		out = append(out, Range{Low: lo, High: hi})
	}

	return out, nil
}

func parseChunkNumber(s string) (int, error) {
	if s == "" || strings.TrimLeft(s, "0123456789") != "" {
		return 0, ErrInvalidRange
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, ErrInvalidRange
	}

	return n, nil
}

// Format renders ranges in wire form, the inverse of Parse.
func Format(rs []Range) string {
	var b strings.Builder

	for i, r := range rs {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.String())
	}

	return b.String()
}

// FromNumbers sorts the chunk numbers and collapses contiguous runs into ranges.
// Duplicates are ignored. The input is not modified.
func FromNumbers(numbers []int) []Range {
	if len(numbers) == 0 {
		return nil
	}

	sorted := append([]int(nil), numbers...)
	sort.Ints(sorted)

	out := []Range{{Low: sorted[0], High: sorted[0]}}
	for _, n := range sorted[1:] {
		last := &out[len(out)-1]

		switch {
		case n <= last.High:
			// duplicate
		case n == last.High+1:
			last.High = n
		default:
			out = append(out, Range{Low: n, High: n})
		}
	}

	return out
}

// ContainsAny reports whether n falls in any of rs. The ranges may come in
// any order, as they do in a chunk delete.
func ContainsAny(rs []Range, n int) bool {
	for _, r := range rs {
		if r.Low <= n && n <= r.High {
			return true
		}
	}

	return false
}
