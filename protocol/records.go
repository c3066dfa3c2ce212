package protocol

import "fmt"

// hostHeaderSize is the host key plus the one byte value count.
const hostHeaderSize = HostKeySize + 1

// recordBuilder accumulates the host records of one chunk body. A host whose
// values do not fit in one record (more than 255) is continued in the next
// record with the same host key and hash width; those values are appended to
// the previous record instead of starting a new one.
type recordBuilder struct {
	hosts []HostRecord
}

// entryFor returns the entry that the next count values of host belong to.
func (b *recordBuilder) entryFor(host HostKey, kind EntryKind, count int) *ListEntry {
	if n := len(b.hosts); n > 0 {
		last := &b.hosts[n-1]
		if last.Host == host && last.Entry.Kind.HashLen() == kind.HashLen() && !last.Entry.chunkOnly() {
			last.Entry.grow(count)
			return &last.Entry
		}
	}

	entry := ListEntry{Kind: kind}
	entry.grow(count)

	b.hosts = append(b.hosts, HostRecord{Host: host, Entry: entry})
	return &b.hosts[len(b.hosts)-1].Entry
}

// chunkOnly starts a record for a sub entry that retracts a whole host.
func (b *recordBuilder) chunkOnly(host HostKey, kind EntryKind, chunkID int) {
	b.hosts = append(b.hosts, HostRecord{
		Host:  host,
		Entry: ListEntry{Kind: kind, ChunkID: chunkID},
	})
}

func (e *ListEntry) chunkOnly() bool {
	return e.Kind.IsSub() && e.Len() == 0
}

func (e *ListEntry) grow(count int) {
	if e.Kind.IsPrefix() {
		e.Prefixes = growPrefixes(e.Prefixes, count)
	} else {
		e.FullHashes = growFullHashes(e.FullHashes, count)
	}

	if e.Kind.IsSub() {
		e.ChunkIDs = growInts(e.ChunkIDs, count)
	}
}

func growPrefixes(s []Prefix, n int) []Prefix {
	if cap(s)-len(s) >= n {
		return s
	}

	out := make([]Prefix, len(s), len(s)+n)
	copy(out, s)
	return out
}

func growFullHashes(s []FullHash, n int) []FullHash {
	if cap(s)-len(s) >= n {
		return s
	}

	out := make([]FullHash, len(s), len(s)+n)
	copy(out, s)
	return out
}

func growInts(s []int, n int) []int {
	if cap(s)-len(s) >= n {
		return s
	}

	out := make([]int, len(s), len(s)+n)
	copy(out, s)
	return out
}

// readValue appends one value, preceded by its add chunk number for sub
// entries, from c to e.
func readValue(c *cursor, e *ListEntry) error {
	if e.Kind.IsSub() {
		id, err := c.chunkID()
		if err != nil {
			return err
		}
		e.ChunkIDs = append(e.ChunkIDs, id)
	}

	raw, err := c.take(e.Kind.HashLen())
	if err != nil {
		return err
	}

	if e.Kind.IsPrefix() {
		var p Prefix
		copy(p[:], raw)
		e.Prefixes = append(e.Prefixes, p)
	} else {
		var f FullHash
		copy(f[:], raw)
		e.FullHashes = append(e.FullHashes, f)
	}

	return nil
}

// decodeHostRecords decodes the body of one chunk.
//
//	add:            host(4) count(1) value*count
//	sub, count > 0: host(4) count(1) (chunkid(4, big endian) value)*count
//	sub, count = 0: host(4) count(1) chunkid(4, big endian)
//
// Prefix only lists drop the host framing and the body is a bare run of
// values, or of chunkid/value pairs for sub chunks.
func decodeHostRecords(body []byte, kind EntryKind, prefixOnly bool) ([]HostRecord, error) {
	if prefixOnly {
		return decodeBareValues(body, kind)
	}

	c := newCursor(body)
	b := recordBuilder{}

	for c.remaining() >= hostHeaderSize {
		raw, err := c.take(HostKeySize)
		if err != nil {
			return nil, err
		}

		count, err := c.byte()
		if err != nil {
			return nil, err
		}

		var host HostKey
		copy(host[:], raw)

		if kind.IsSub() && count == 0 {
			id, err := c.chunkID()
			if err != nil {
				return nil, fmt.Errorf("Failed to read chunk number for host %s: %w", host, err)
			}

			b.chunkOnly(host, kind, id)
			continue
		}

		entry := b.entryFor(host, kind, int(count))
		for i := 0; i < int(count); i++ {
			if err := readValue(c, entry); err != nil {
				return nil, fmt.Errorf("Failed to read value %d of %d for host %s: %w", i+1, count, host, err)
			}
		}
	}

	if c.remaining() != 0 {
		return nil, fmt.Errorf("%d bytes after the last host: %w", c.remaining(), ErrTrailingData)
	}

	return b.hosts, nil
}

func decodeBareValues(body []byte, kind EntryKind) ([]HostRecord, error) {
	if len(body) == 0 {
		return nil, nil
	}

	size := kind.HashLen()
	if kind.IsSub() {
		size += 4
	}

	if len(body)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of %d byte values: %w", len(body), size, ErrTrailingData)
	}

	c := newCursor(body)
	b := recordBuilder{}
	entry := b.entryFor(HostKey{}, kind, len(body)/size)

	for c.remaining() > 0 {
		if err := readValue(c, entry); err != nil {
			return nil, err
		}
	}

	return b.hosts, nil
}
