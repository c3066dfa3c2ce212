package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// Framing errors
	ErrMissingNewline = errors.New("Response is malformed, a header line is not terminated by a newline")
	ErrTruncated      = errors.New("Response is malformed, a declared length runs past the end of the data")
	ErrTrailingData   = errors.New("Response is malformed, there is data left after the last record")
	ErrBadNumber      = errors.New("Response is malformed, a numeric field could not be parsed")

	// Grammar errors
	ErrFieldCount      = errors.New("Line is malformed, it has the wrong number of fields")
	ErrUnknownCommand  = errors.New("Unknown command could not be parsed")
	ErrUnknownChunk    = errors.New("Chunk header is malformed, the chunk type must be 'a' or 's'")
	ErrHashLength      = errors.New("Chunk header is malformed, the hash length must be 4 or 32")
	ErrMissingListName = errors.New("Chunk delete has no list name, an 'i:' line must come first")
	ErrBadSignal       = errors.New("Rekey or reset command has an unexpected value")
	ErrMissingURLMAC   = errors.New("Redirect URL is malformed, it appears to be missing its trailing ',<mac>'")
	ErrBadRanges       = errors.New("Chunk delete is malformed, its range list could not be parsed")
	ErrKeyLength       = errors.New("Key is malformed, its declared length does not match its value")
	ErrUnknownKey      = errors.New("Key response contains an unknown field")
	ErrMissingKey      = errors.New("Key response is missing the client key or the wrapped key")

	// Integrity errors
	ErrMACMismatch = errors.New("MAC verification failed")
)

// NextLine returns the bytes of data up to, but not including, the first '\n'.
// NUL bytes are ordinary data. ok is false when data holds no '\n'.
func NextLine(data []byte) (line []byte, ok bool) {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return nil, false
	}

	return data[:i], true
}

// cursor walks an immutable buffer. Every read is bounds checked against
// what remains, never against a length taken from the wire.
type cursor struct {
	data []byte
	off  int
}

func newCursor(data []byte) *cursor {
	return &cursor{data: data}
}

func (c *cursor) remaining() int {
	return len(c.data) - c.off
}

func (c *cursor) rest() []byte {
	return c.data[c.off:]
}

// line consumes the next header line and its '\n'.
func (c *cursor) line() (string, error) {
	line, ok := NextLine(c.rest())
	if !ok {
		return "", ErrMissingNewline
	}

	c.off += len(line) + 1
	return string(line), nil
}

// take consumes exactly n bytes. The returned slice aliases the input.
func (c *cursor) take(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, ErrTruncated
	}

	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

func (c *cursor) skip(n int) error {
	_, err := c.take(n)
	return err
}

func (c *cursor) byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// chunkID reads the one big-endian field on the wire. Host keys and hashes
// are copied raw.
func (c *cursor) chunkID() (int, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}

	return int(binary.BigEndian.Uint32(b)), nil
}

func splitFields(line string) []string {
	return strings.Split(line, ":")
}

// parseCount parses a header field of decimal digits only. Signs are not
// part of the grammar.
func parseCount(field string) (int, error) {
	if !isDigits(field) {
		return 0, fmt.Errorf("'%s': %w", field, ErrBadNumber)
	}

	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("'%s': %w", field, ErrBadNumber)
	}

	return n, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}

	return true
}
