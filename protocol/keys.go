package protocol

import "fmt"

// ParseKeys decodes the response to a new key request:
//
//	clientkey:<length>:<key>\n
//	wrappedkey:<length>:<key>\n
//
// The keys are web-safe base64 and may not contain ':'. Both must be present.
func ParseKeys(data []byte) (*Keys, error) {
	c := newCursor(data)
	keys := &Keys{}

	for c.remaining() > 0 {
		line, err := c.line()
		if err != nil {
			return nil, err
		}

		fields := splitFields(line)
		if len(fields) != 3 {
			return nil, fmt.Errorf("Failed to parse key line: %w", ErrFieldCount)
		}

		length, err := parseCount(fields[1])
		if err != nil {
			return nil, fmt.Errorf("Failed to parse length of '%s': %w", fields[0], err)
		}

		if length != len(fields[2]) {
			return nil, fmt.Errorf("Failed to parse '%s', expected %d bytes but got %d: %w",
				fields[0], length, len(fields[2]), ErrKeyLength)
		}

		switch fields[0] {
		case FieldClientKey:
			keys.ClientKey = fields[2]
		case FieldWrappedKey:
			keys.WrappedKey = fields[2]
		default:
			return nil, fmt.Errorf("Failed to parse '%s': %w", fields[0], ErrUnknownKey)
		}
	}

	if keys.ClientKey == "" || keys.WrappedKey == "" {
		return nil, ErrMissingKey
	}

	return keys, nil
}
