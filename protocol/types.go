package protocol

import (
	"encoding/hex"
	"fmt"

	"github.com/luma/shavar/lists"
	"github.com/luma/shavar/mac"
	"github.com/luma/shavar/ranges"
)

const (
	PrefixSize   = 4
	FullHashSize = 32
	HostKeySize  = 4
)

// Prefix is the leading four bytes of a SHA-256 of a canonical URL fragment.
type Prefix [PrefixSize]byte

func (p Prefix) String() string {
	return hex.EncodeToString(p[:])
}

func (p Prefix) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Prefix) UnmarshalText(text []byte) error {
	return decodeHex(p[:], text)
}

// FullHash is the complete SHA-256 of a canonical URL fragment.
type FullHash [FullHashSize]byte

func (f FullHash) String() string {
	return hex.EncodeToString(f[:])
}

func (f FullHash) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

func (f *FullHash) UnmarshalText(text []byte) error {
	return decodeHex(f[:], text)
}

// HostKey is the prefix of the host a set of entries belongs to.
type HostKey [HostKeySize]byte

func (h HostKey) String() string {
	return hex.EncodeToString(h[:])
}

func (h HostKey) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HostKey) UnmarshalText(text []byte) error {
	return decodeHex(h[:], text)
}

func decodeHex(dst, text []byte) error {
	if hex.DecodedLen(len(text)) != len(dst) {
		return fmt.Errorf("'%s' is not %d hex encoded bytes", text, len(dst))
	}

	_, err := hex.Decode(dst, text)
	return err
}

type EntryKind uint8

const (
	AddPrefix EntryKind = iota
	AddFullHash
	SubPrefix
	SubFullHash
)

func entryKind(isAdd bool, hashLen int) EntryKind {
	switch {
	case isAdd && hashLen == PrefixSize:
		return AddPrefix
	case isAdd:
		return AddFullHash
	case hashLen == PrefixSize:
		return SubPrefix
	default:
		return SubFullHash
	}
}

func (k EntryKind) IsSub() bool {
	return k == SubPrefix || k == SubFullHash
}

func (k EntryKind) IsPrefix() bool {
	return k == AddPrefix || k == SubPrefix
}

// HashLen is the wire width of a single value of this kind.
func (k EntryKind) HashLen() int {
	if k.IsPrefix() {
		return PrefixSize
	}

	return FullHashSize
}

func (k EntryKind) String() string {
	switch k {
	case AddPrefix:
		return "add-prefix"
	case AddFullHash:
		return "add-full-hash"
	case SubPrefix:
		return "sub-prefix"
	case SubFullHash:
		return "sub-full-hash"
	default:
		return "unknown"
	}
}

func (k EntryKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EntryKind) UnmarshalText(text []byte) error {
	for _, kind := range []EntryKind{AddPrefix, AddFullHash, SubPrefix, SubFullHash} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}

	return fmt.Errorf("'%s' is not an entry kind", text)
}

// ListEntry holds the values one host contributes to a chunk. Only the slice
// matching Kind is populated.
//
// Sub entries carry the number of the add chunk each value retracts in
// ChunkIDs, one per value. A sub entry with no values retracts a whole host
// from the add chunk in ChunkID instead.
type ListEntry struct {
	Kind       EntryKind  `json:"kind"`
	Prefixes   []Prefix   `json:"prefixes,omitempty"`
	FullHashes []FullHash `json:"fullHashes,omitempty"`
	ChunkIDs   []int      `json:"chunkIds,omitempty"`
	ChunkID    int        `json:"chunkId,omitempty"`
}

// Len is the number of values in the entry.
func (e *ListEntry) Len() int {
	if e.Kind.IsPrefix() {
		return len(e.Prefixes)
	}

	return len(e.FullHashes)
}

type HostRecord struct {
	Host  HostKey   `json:"host"`
	Entry ListEntry `json:"entry"`
}

// Chunk is one numbered unit of add or sub data. A chunk without records is
// still a chunk: its number must be reported back to the server.
type Chunk struct {
	Number int          `json:"number"`
	IsAdd  bool         `json:"isAdd"`
	Hosts  []HostRecord `json:"hosts"`
}

type ChunkSet struct {
	Chunks []Chunk `json:"chunks"`
	Rekey  bool    `json:"rekey"`
}

// ChunkDelete discards whole chunks of a list.
type ChunkDelete struct {
	ListName string         `json:"listName"`
	IsSubDel bool           `json:"isSubDel"`
	Ranges   []ranges.Range `json:"ranges"`
}

// RedirectURL points at chunk data for a list. MAC is only set when the
// update was requested with a client key.
type RedirectURL struct {
	URL      string `json:"url"`
	ListName string `json:"listName"`
	MAC      string `json:"mac,omitempty"`
}

type Update struct {
	NextPollSeconds int           `json:"nextPollSeconds"`
	Rekey           bool          `json:"rekey"`
	Reset           bool          `json:"reset"`
	Deletes         []ChunkDelete `json:"deletes"`
	Redirects       []RedirectURL `json:"redirects"`
}

// HashResult is a full hash matched by a get hash request.
type HashResult struct {
	ListName   string   `json:"listName"`
	AddChunkID int      `json:"addChunkId"`
	Hash       FullHash `json:"hash"`
}

type GetHashResponse struct {
	Hashes []HashResult `json:"hashes"`
	Rekey  bool         `json:"rekey"`
}

type Keys struct {
	ClientKey  string `json:"clientKey"`
	WrappedKey string `json:"wrappedKey"`
}

// ListRequest states which chunks of a list the client already holds.
type ListRequest struct {
	Name string `json:"name"`
	Adds []int  `json:"adds"`
	Subs []int  `json:"subs"`
}

// Verifier checks mac against data under key.
type Verifier func(key, mac string, data []byte) bool

// ListLookup resolves a list name to a known list.
type ListLookup func(name string) (lists.List, bool)

// Options carries what a decoder needs beyond the bytes themselves.
type Options struct {
	// Key is the client key. When empty no MAC is expected or verified.
	Key string

	// Verify defaults to mac.Verify
	Verify Verifier

	// Lists defaults to lists.Default().Lookup
	Lists ListLookup
}

func (o Options) verify(sig string, data []byte) bool {
	if o.Verify == nil {
		return mac.Verify(o.Key, sig, data)
	}

	return o.Verify(o.Key, sig, data)
}

func (o Options) listLookup() ListLookup {
	if o.Lists == nil {
		return lists.Default().Lookup
	}

	return o.Lists
}
