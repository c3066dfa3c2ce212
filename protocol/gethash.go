package protocol

import "fmt"

// ParseGetHash decodes the response to a get hash request.
//
// When opts.Key is set the first line is the MAC of everything after it, or
// "e:pleaserekey" in which case nothing else is read. The rest is a run of
//
//	<list>:<add chunk number>:<length>\n
//
// each followed by length bytes of concatenated 32 byte hashes. Hashes from
// lists that opts.Lists does not recognise are skipped.
func ParseGetHash(data []byte, opts Options) (*GetHashResponse, error) {
	c := newCursor(data)
	resp := &GetHashResponse{Hashes: []HashResult{}}

	if opts.Key != "" {
		line, err := c.line()
		if err != nil {
			return nil, fmt.Errorf("Failed to read MAC: %w", err)
		}

		if line == RekeyLine {
			resp.Rekey = true
			return resp, nil
		}

		if !opts.verify(line, c.rest()) {
			return nil, fmt.Errorf("Failed to verify full hashes: %w", ErrMACMismatch)
		}
	}

	known := opts.listLookup()

	for c.remaining() > 0 {
		line, err := c.line()
		if err != nil {
			return nil, err
		}

		fields := splitFields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrFieldCount)
		}

		addChunk, err := parseCount(fields[1])
		if err != nil {
			return nil, fmt.Errorf("Failed to parse '%s': %w", line, err)
		}

		length, err := parseCount(fields[2])
		if err != nil {
			return nil, fmt.Errorf("Failed to parse '%s': %w", line, err)
		}

		if length%FullHashSize != 0 {
			return nil, fmt.Errorf("Failed to parse '%s', not a whole number of hashes: %w", line, ErrTrailingData)
		}

		listName := fields[0]
		if _, ok := known(listName); !ok {
			if err := c.skip(length); err != nil {
				return nil, fmt.Errorf("Failed to skip hashes for '%s': %w", listName, err)
			}
			continue
		}

		raw, err := c.take(length)
		if err != nil {
			return nil, fmt.Errorf("Failed to read hashes for '%s': %w", listName, err)
		}

		for off := 0; off < len(raw); off += FullHashSize {
			result := HashResult{ListName: listName, AddChunkID: addChunk}
			copy(result.Hash[:], raw[off:off+FullHashSize])
			resp.Hashes = append(resp.Hashes, result)
		}
	}

	return resp, nil
}
