package protocol

import (
	"fmt"
	"strings"

	"github.com/luma/shavar/ranges"
)

// updateCommands holds the first letter of every update command.
const updateCommands = "naisumre"

// ParseUpdate decodes the response to a download request: a run of command
// lines, processed strictly in order.
//
//	n:<seconds>          earliest time to poll again
//	i:<list>             list the following ad, sd and u lines apply to
//	ad:<ranges>          delete add chunks
//	sd:<ranges>          delete sub chunks
//	u:<url>[,<mac>]      chunk data to fetch; the mac is present when keyed
//	m:<mac>              MAC over every byte after this line
//	r:pleasereset        discard all list data
//	e:pleaserekey        fetch new keys
//
// Lines starting with any other letter are skipped whatever their shape, so
// the server can extend the protocol. The MAC lines are only checked when opts.Key is set.
func ParseUpdate(data []byte, opts Options) (*Update, error) {
	c := newCursor(data)
	update := &Update{
		Deletes:   []ChunkDelete{},
		Redirects: []RedirectURL{},
	}

	var listName string

	for c.remaining() > 0 {
		line, err := c.line()
		if err != nil {
			return nil, err
		}

		fields := splitFields(line)
		command := fields[0]
		if command == "" {
			return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrUnknownCommand)
		}

		// Letters we do not know are left for future server commands
		if !strings.ContainsRune(updateCommands, rune(command[0])) {
			continue
		}

		// Redirect URLs may themselves contain ':'
		if len(fields) < 2 || (len(fields) > 2 && command[0] != 'u') {
			return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrFieldCount)
		}

		switch command[0] {
		case 'a', 's':
			// ad and sd are the only commands starting with these letters
			if len(command) != 2 || command[1] != 'd' {
				return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrUnknownCommand)
			}

			if listName == "" {
				return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrMissingListName)
			}

			rs, err := ranges.Parse(fields[1])
			if err != nil {
				return nil, fmt.Errorf("Failed to parse '%s': %v: %w", line, err, ErrBadRanges)
			}

			update.Deletes = append(update.Deletes, ChunkDelete{
				ListName: listName,
				IsSubDel: Command(command) == CmdSubDel,
				Ranges:   rs,
			})

		case 'e':
			if fields[1] != SignalRekey {
				return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrBadSignal)
			}
			update.Rekey = true

		case 'i':
			listName = fields[1]

		case 'm':
			if opts.Key != "" && !opts.verify(fields[1], c.rest()) {
				return nil, fmt.Errorf("Failed to verify update: %w", ErrMACMismatch)
			}

		case 'n':
			seconds, err := parseCount(fields[1])
			if err != nil {
				return nil, fmt.Errorf("Failed to parse '%s': %w", line, err)
			}
			update.NextPollSeconds = seconds

		case 'u':
			redirect := RedirectURL{
				URL:      line[len(command)+1:],
				ListName: listName,
			}

			if opts.Key != "" {
				i := strings.LastIndexByte(redirect.URL, ',')
				if i < 0 {
					return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrMissingURLMAC)
				}
				redirect.URL, redirect.MAC = redirect.URL[:i], redirect.URL[i+1:]
			}

			update.Redirects = append(update.Redirects, redirect)

		case 'r':
			if fields[1] != SignalReset {
				return nil, fmt.Errorf("Failed to parse '%s': %w", line, ErrBadSignal)
			}
			update.Reset = true
		}
	}

	return update, nil
}
