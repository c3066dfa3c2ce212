package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/ranges"
)

const (
	UpdateBufferSize = 255

	chunkKeyPrefix = "chunk_"
)

// InmemoryStore keeps every list in a single JSON document:
//
//	{"<list>": {"add": {"chunk_<n>": <chunk>}, "sub": {...}}}
type InmemoryStore struct {
	valuesMu sync.RWMutex
	values   []byte

	mu          sync.Mutex
	updateChans []chan *Update

	// stop willl be closed when Close() is called
	stop      chan struct{}
	closeOnce sync.Once
}

func NewInmemoryStore() *InmemoryStore {
	return &InmemoryStore{
		values:      []byte("{}"),
		stop:        make(chan struct{}),
		updateChans: make([]chan *Update, 0),
	}
}

func (i *InmemoryStore) Close() error {
	i.closeOnce.Do(func() {
		close(i.stop)

		i.mu.Lock()
		defer i.mu.Unlock()

		for _, updateChan := range i.updateChans {
			close(updateChan)
		}
		i.updateChans = nil
	})

	return nil
}

func (i *InmemoryStore) InsertChunks(ctx context.Context, listName string, chunks []protocol.Chunk) error {
	i.valuesMu.Lock()

	values := i.values
	var adds, subs []int

	for _, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			i.valuesMu.Unlock()
			return err
		}

		raw, err := json.Marshal(chunk)
		if err != nil {
			i.valuesMu.Unlock()
			return err
		}

		values, err = sjson.SetRawBytes(values, chunkPath(listName, chunk.IsAdd, chunk.Number), raw)
		if err != nil {
			i.valuesMu.Unlock()
			return fmt.Errorf("Failed to store chunk %d of '%s': %w", chunk.Number, listName, err)
		}

		if chunk.IsAdd {
			adds = append(adds, chunk.Number)
		} else {
			subs = append(subs, chunk.Number)
		}
	}

	// Only swap in the new document once every chunk is in
	i.values = values
	i.valuesMu.Unlock()

	if len(adds) > 0 {
		i.notify(&Update{Kind: UpdateInsert, ListName: listName, IsAdd: true, Chunks: adds})
	}
	if len(subs) > 0 {
		i.notify(&Update{Kind: UpdateInsert, ListName: listName, IsAdd: false, Chunks: subs})
	}

	return nil
}

func (i *InmemoryStore) DeleteChunks(ctx context.Context, deletes []protocol.ChunkDelete) error {
	i.valuesMu.Lock()

	values := i.values
	updates := make([]*Update, 0, len(deletes))

	for _, del := range deletes {
		if err := ctx.Err(); err != nil {
			i.valuesMu.Unlock()
			return err
		}

		isAdd := !del.IsSubDel
		var deleted []int

		for _, n := range chunkNumbers(values, del.ListName, isAdd) {
			if !ranges.ContainsAny(del.Ranges, n) {
				continue
			}

			var err error
			values, err = sjson.DeleteBytes(values, chunkPath(del.ListName, isAdd, n))
			if err != nil {
				i.valuesMu.Unlock()
				return fmt.Errorf("Failed to delete chunk %d of '%s': %w", n, del.ListName, err)
			}

			deleted = append(deleted, n)
		}

		if len(deleted) > 0 {
			updates = append(updates, &Update{Kind: UpdateDelete, ListName: del.ListName, IsAdd: isAdd, Chunks: deleted})
		}
	}

	i.values = values
	i.valuesMu.Unlock()

	for _, u := range updates {
		i.notify(u)
	}

	return nil
}

func (i *InmemoryStore) Chunk(ctx context.Context, listName string, isAdd bool, number int) (*protocol.Chunk, error) {
	i.valuesMu.RLock()
	result := gjson.GetBytes(i.values, chunkPath(listName, isAdd, number))
	i.valuesMu.RUnlock()

	if !result.Exists() {
		return nil, fmt.Errorf("Chunk %d of '%s': %w", number, listName, ErrChunkNotFound)
	}

	var chunk protocol.Chunk
	if err := json.Unmarshal([]byte(result.Raw), &chunk); err != nil {
		return nil, err
	}

	return &chunk, nil
}

func (i *InmemoryStore) ListRequests(ctx context.Context, listNames []string) ([]protocol.ListRequest, error) {
	i.valuesMu.RLock()
	defer i.valuesMu.RUnlock()

	reqs := make([]protocol.ListRequest, 0, len(listNames))
	for _, name := range listNames {
		reqs = append(reqs, protocol.ListRequest{
			Name: name,
			Adds: chunkNumbers(i.values, name, true),
			Subs: chunkNumbers(i.values, name, false),
		})
	}

	return reqs, nil
}

func (i *InmemoryStore) Reset(ctx context.Context) error {
	i.valuesMu.Lock()
	i.values = []byte("{}")
	i.valuesMu.Unlock()

	i.notify(&Update{Kind: UpdateReset})
	return nil
}

func (i *InmemoryStore) ListenToUpdates() <-chan *Update {
	i.mu.Lock()
	defer i.mu.Unlock()

	updateChan := make(chan *Update, UpdateBufferSize)
	if !i.isRunning() {
		close(updateChan)
		return updateChan
	}

	i.updateChans = append(i.updateChans, updateChan)
	return updateChan
}

func (i *InmemoryStore) Restore(values []byte) error {
	if !gjson.ValidBytes(values) {
		return fmt.Errorf("Failed to restore store: invalid JSON")
	}

	i.valuesMu.Lock()
	i.values = append([]byte(nil), values...)
	i.valuesMu.Unlock()

	return nil
}

func (i *InmemoryStore) Backup() ([]byte, error) {
	i.valuesMu.RLock()
	defer i.valuesMu.RUnlock()

	if len(i.values) == 0 {
		return []byte("{}"), nil
	}

	return append([]byte(nil), i.values...), nil
}

// notify hands u to every listener. Listeners that have fallen more than
// UpdateBufferSize updates behind miss it.
func (i *InmemoryStore) notify(u *Update) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if !i.isRunning() {
		return
	}

	for _, updateChan := range i.updateChans {
		select {
		case updateChan <- u:
		default:
		}
	}
}

// isRunning returns true if Close has not been called
func (i *InmemoryStore) isRunning() bool {
	select {
	case <-i.stop:
		return false

	default:
		return true
	}
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	".", `\.`,
	"*", `\*`,
	"?", `\?`,
	"|", `\|`,
	"#", `\#`,
	"@", `\@`,
	":", `\:`,
)

func listPath(listName string, isAdd bool) string {
	kind := "sub"
	if isAdd {
		kind = "add"
	}

	return pathEscaper.Replace(listName) + "." + kind
}

func chunkPath(listName string, isAdd bool, number int) string {
	return listPath(listName, isAdd) + "." + chunkKeyPrefix + strconv.Itoa(number)
}

// chunkNumbers lists the chunks held for a list, ascending.
func chunkNumbers(values []byte, listName string, isAdd bool) []int {
	var numbers []int

	gjson.GetBytes(values, listPath(listName, isAdd)).ForEach(func(key, _ gjson.Result) bool {
		n, err := strconv.Atoi(strings.TrimPrefix(key.String(), chunkKeyPrefix))
		if err == nil {
			numbers = append(numbers, n)
		}
		return true
	})

	sort.Ints(numbers)
	return numbers
}

var _ Store = (*InmemoryStore)(nil)
