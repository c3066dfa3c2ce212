package protocol

import "fmt"

// ParseChunks decodes the chunk data fetched from a redirect URL of listName.
//
// When opts.Key is set, mac must verify over the whole of data before any of
// it is read. The data is a run of chunks, each a header line
//
//	<a|s>:<chunk number>:<hash length>:<body length>\n
//
// followed by exactly body length bytes of host records. A line of
// "e:pleaserekey" may appear in place of a chunk header and sets Rekey.
//
// Any malformed chunk fails the whole call; no chunks are returned on error.
func ParseChunks(data []byte, listName, mac string, opts Options) (*ChunkSet, error) {
	if opts.Key != "" && !opts.verify(mac, data) {
		return nil, fmt.Errorf("Failed to verify chunk data for '%s': %w", listName, ErrMACMismatch)
	}

	prefixOnly := false
	if l, ok := opts.listLookup()(listName); ok {
		prefixOnly = l.PrefixOnly
	}

	c := newCursor(data)
	set := &ChunkSet{Chunks: []Chunk{}}

	for c.remaining() > 0 {
		line, err := c.line()
		if err != nil {
			return nil, err
		}

		if line == RekeyLine {
			set.Rekey = true
			continue
		}

		chunk, kind, bodyLen, err := parseChunkHeader(line)
		if err != nil {
			return nil, fmt.Errorf("Failed to parse '%s': %w", line, err)
		}

		body, err := c.take(bodyLen)
		if err != nil {
			return nil, fmt.Errorf("Failed to read body of chunk %d: %w", chunk.Number, err)
		}

		chunk.Hosts, err = decodeHostRecords(body, kind, prefixOnly)
		if err != nil {
			return nil, fmt.Errorf("Failed to decode chunk %d: %w", chunk.Number, err)
		}

		if chunk.Hosts == nil {
			chunk.Hosts = []HostRecord{}
		}

		set.Chunks = append(set.Chunks, chunk)
	}

	return set, nil
}

func parseChunkHeader(line string) (Chunk, EntryKind, int, error) {
	fields := splitFields(line)
	if len(fields) != 4 {
		return Chunk{}, 0, 0, ErrFieldCount
	}

	var isAdd bool
	switch Command(fields[0]) {
	case CmdAddChunk:
		isAdd = true
	case CmdSubChunk:
		isAdd = false
	default:
		return Chunk{}, 0, 0, ErrUnknownChunk
	}

	number, err := parseCount(fields[1])
	if err != nil {
		return Chunk{}, 0, 0, err
	}

	hashLen, err := parseCount(fields[2])
	if err != nil {
		return Chunk{}, 0, 0, err
	}

	if hashLen != PrefixSize && hashLen != FullHashSize {
		return Chunk{}, 0, 0, ErrHashLength
	}

	bodyLen, err := parseCount(fields[3])
	if err != nil {
		return Chunk{}, 0, 0, err
	}

	return Chunk{Number: number, IsAdd: isAdd}, entryKind(isAdd, hashLen), bodyLen, nil
}
