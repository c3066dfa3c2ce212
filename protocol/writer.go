package protocol

import (
	"bytes"
	"fmt"
	"io"

	"github.com/luma/shavar/ranges"
)

// FormatGetHashRequest encodes the body of a get hash request:
//
//	4:<4 * len(prefixes)>\n
//
// followed by the raw prefixes in order.
func FormatGetHashRequest(prefixes []Prefix) []byte {
	header := fmt.Sprintf("%d:%d\n", PrefixSize, PrefixSize*len(prefixes))

	b := make([]byte, 0, len(header)+PrefixSize*len(prefixes))
	b = append(b, header...)
	for _, p := range prefixes {
		b = append(b, p[:]...)
	}

	return b
}

func WriteGetHashRequest(w io.Writer, prefixes []Prefix) error {
	_, err := w.Write(FormatGetHashRequest(prefixes))
	return err
}

// FormatListRequest encodes one line of a download request:
//
//	<list>;[a:<ranges>][:][s:<ranges>][:mac]\n
func FormatListRequest(req ListRequest, useMAC bool) []byte {
	var b bytes.Buffer

	b.WriteString(req.Name)
	b.WriteByte(';')

	if len(req.Adds) > 0 {
		b.WriteString("a:")
		b.WriteString(ranges.Format(ranges.FromNumbers(req.Adds)))
		if len(req.Subs) > 0 || useMAC {
			b.WriteByte(':')
		}
	}

	if len(req.Subs) > 0 {
		b.WriteString("s:")
		b.WriteString(ranges.Format(ranges.FromNumbers(req.Subs)))
		if useMAC {
			b.WriteByte(':')
		}
	}

	if useMAC {
		b.WriteString("mac")
	}

	b.WriteByte('\n')
	return b.Bytes()
}

// WriteListRequest writes the body of a download request for reqs.
func WriteListRequest(w io.Writer, reqs []ListRequest, useMAC bool) error {
	if len(reqs) == 0 {
		return nil
	}

	lines := make([][]byte, 0, len(reqs))
	for _, req := range reqs {
		lines = append(lines, FormatListRequest(req, useMAC))
	}

	_, err := w.Write(bytes.Join(lines, nil))
	return err
}
