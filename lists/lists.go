// Package lists names the threat lists a client knows how to store.
package lists

import "sort"

type ID int

const (
	Malware            ID = 0
	Phish              ID = 1
	BinURL             ID = 2
	BinHash            ID = 3
	CSDWhitelist       ID = 4
	DownloadWhitelist  ID = 6
	ExtensionBlacklist ID = 8
)

const (
	MalwareName            = "goog-malware-shavar"
	PhishName              = "goog-phish-shavar"
	BinURLName             = "goog-badbinurl-shavar"
	BinHashName            = "goog-badbin-digestvar"
	CSDWhitelistName       = "goog-csdwhite-sha256"
	DownloadWhitelistName  = "goog-downloadwhite-digest256"
	ExtensionBlacklistName = "goog-badcrxids-digestvar"
)

type List struct {
	Name string
	ID   ID

	// PrefixOnly lists carry bare hashes in their chunks, without the host
	// key and count framing.
	PrefixOnly bool
}

// Table is a read-only set of lists keyed by name.
type Table struct {
	byName map[string]List
}

func NewTable(ls ...List) *Table {
	t := &Table{byName: make(map[string]List, len(ls))}
	for _, l := range ls {
		t.byName[l.Name] = l
	}

	return t
}

// Default returns the lists served by the Safe Browsing v2.2 protocol.
func Default() *Table {
	return NewTable(
		List{Name: MalwareName, ID: Malware},
		List{Name: PhishName, ID: Phish},
		List{Name: BinURLName, ID: BinURL},
		List{Name: BinHashName, ID: BinHash, PrefixOnly: true},
		List{Name: CSDWhitelistName, ID: CSDWhitelist},
		List{Name: DownloadWhitelistName, ID: DownloadWhitelist, PrefixOnly: true},
		List{Name: ExtensionBlacklistName, ID: ExtensionBlacklist, PrefixOnly: true},
	)
}

func (t *Table) Lookup(name string) (List, bool) {
	l, ok := t.byName[name]
	return l, ok
}

// Names returns every list name in the table, sorted.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.byName))
	for name := range t.byName {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
