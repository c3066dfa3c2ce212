package storage

import (
	"context"
	"errors"

	"github.com/luma/shavar/protocol"
)

var ErrChunkNotFound = errors.New("Chunk not found")

// Store holds the chunks a client has received for each list and applies
// the changes an update asks for.
type Store interface {
	InsertChunks(ctx context.Context, listName string, chunks []protocol.Chunk) error
	DeleteChunks(ctx context.Context, deletes []protocol.ChunkDelete) error

	// Chunk returns the stored host records of one chunk.
	Chunk(ctx context.Context, listName string, isAdd bool, number int) (*protocol.Chunk, error)

	// ListRequests reports the chunk numbers held for each of listNames, in
	// the order given.
	ListRequests(ctx context.Context, listNames []string) ([]protocol.ListRequest, error)

	// Reset drops every list.
	Reset(ctx context.Context) error

	Restore(values []byte) error
	Backup() ([]byte, error)

	ListenToUpdates() <-chan *Update

	Close() error
}

type UpdateKind string

const (
	UpdateInsert UpdateKind = "insert"
	UpdateDelete UpdateKind = "delete"
	UpdateReset  UpdateKind = "reset"
)

// Update describes a change made to a list.
type Update struct {
	Kind     UpdateKind
	ListName string
	IsAdd    bool
	Chunks   []int
}
