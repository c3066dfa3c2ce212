package client

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/storage"
)

// SyncResult summarises one update round.
type SyncResult struct {
	// NextPollSeconds is how long the server asked the client to wait
	// before the next update.
	NextPollSeconds int `json:"nextPollSeconds"`

	Rekey bool `json:"rekey"`
	Reset bool `json:"reset"`

	Deletes []protocol.ChunkDelete `json:"deletes"`

	// Chunks counts the chunks inserted per list
	Chunks map[string]int `json:"chunks"`
}

type Client struct {
	opts Options
	conn *conn

	keyMu      sync.RWMutex
	clientKey  string
	wrappedKey string

	store storage.Store
	log   *zap.Logger
}

func New(options Options) *Client {
	opts := options.withDefaults()

	return &Client{
		opts: opts,
		conn: &conn{
			http:     opts.HTTPClient,
			maxBytes: opts.MaxResponseBytes,
			log:      opts.Log.Named("conn"),
		},
		clientKey:  opts.ClientKey,
		wrappedKey: opts.WrappedKey,
		store:      opts.Store,
		log:        opts.Log,
	}
}

// Keys returns the keys currently in use.
func (c *Client) Keys() protocol.Keys {
	c.keyMu.RLock()
	defer c.keyMu.RUnlock()

	return protocol.Keys{ClientKey: c.clientKey, WrappedKey: c.wrappedKey}
}

// NewKeys fetches a fresh client key and wrapped key and starts using them.
func (c *Client) NewKeys(ctx context.Context) (*protocol.Keys, error) {
	data, err := c.conn.get(ctx, c.opts.NewKeyURL, c.baseParams())
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch keys: %w", err)
	}

	keys, err := protocol.ParseKeys(data)
	if err != nil {
		return nil, err
	}

	c.keyMu.Lock()
	c.clientKey = keys.ClientKey
	c.wrappedKey = keys.WrappedKey
	c.keyMu.Unlock()

	c.log.Info("Fetched new keys")
	return keys, nil
}

// GetHashes asks the server for the full hashes behind prefixes. A rekey
// response replaces the client's keys before returning.
func (c *Client) GetHashes(ctx context.Context, prefixes []protocol.Prefix) (*protocol.GetHashResponse, error) {
	data, err := c.conn.post(ctx, c.opts.GetHashURL, c.keyedParams(), protocol.FormatGetHashRequest(prefixes))
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch full hashes: %w", err)
	}

	resp, err := protocol.ParseGetHash(data, c.decodeOptions())
	if err != nil {
		return nil, err
	}

	if resp.Rekey {
		if _, err := c.NewKeys(ctx); err != nil {
			return resp, err
		}
	}

	return resp, nil
}

// Update runs one update round: it sends the chunks held in the store,
// applies the resets and deletes the server answers with, then fetches and
// stores the chunk data behind each redirect.
//
// A redirect that fails does not stop the others; every failure is returned
// together with the result.
func (c *Client) Update(ctx context.Context) (*SyncResult, error) {
	reqs, err := c.store.ListRequests(ctx, c.opts.Lists)
	if err != nil {
		return nil, err
	}

	keyed := c.Keys().ClientKey != ""

	var body bytes.Buffer
	if err := protocol.WriteListRequest(&body, reqs, keyed); err != nil {
		return nil, err
	}

	data, err := c.conn.post(ctx, c.opts.UpdateURL, c.keyedParams(), body.Bytes())
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch update: %w", err)
	}

	update, err := protocol.ParseUpdate(data, c.decodeOptions())
	if err != nil {
		return nil, err
	}

	result := &SyncResult{
		NextPollSeconds: update.NextPollSeconds,
		Rekey:           update.Rekey,
		Reset:           update.Reset,
		Deletes:         update.Deletes,
		Chunks:          make(map[string]int),
	}

	if update.Rekey {
		c.log.Info("Server asked for new keys")
		_, err := c.NewKeys(ctx)
		return result, err
	}

	if update.Reset {
		c.log.Info("Server asked for a reset")
		return result, c.store.Reset(ctx)
	}

	if len(update.Deletes) > 0 {
		if err := c.store.DeleteChunks(ctx, update.Deletes); err != nil {
			return result, err
		}
	}

	for _, redirect := range update.Redirects {
		if redirect.ListName == "" {
			c.log.Warn("Skipping redirect without a list", zap.String("url", redirect.URL))
			continue
		}

		n, rekey, rerr := c.fetchChunks(ctx, redirect)
		if rerr != nil {
			c.log.Warn("Failed to fetch chunks",
				zap.String("list", redirect.ListName),
				zap.String("url", redirect.URL),
				zap.Error(rerr))

			err = multierr.Append(err, rerr)
			continue
		}

		result.Chunks[redirect.ListName] += n

		if rekey {
			result.Rekey = true
			c.log.Info("Server asked for new keys", zap.String("list", redirect.ListName))

			_, kerr := c.NewKeys(ctx)
			return result, multierr.Append(err, kerr)
		}
	}

	return result, err
}

func (c *Client) fetchChunks(ctx context.Context, redirect protocol.RedirectURL) (int, bool, error) {
	data, err := c.conn.get(ctx, c.opts.RedirectScheme+"://"+redirect.URL, nil)
	if err != nil {
		return 0, false, err
	}

	set, err := protocol.ParseChunks(data, redirect.ListName, redirect.MAC, c.decodeOptions())
	if err != nil {
		return 0, false, fmt.Errorf("Failed to parse chunks of '%s': %w", redirect.ListName, err)
	}

	if len(set.Chunks) > 0 {
		if err := c.store.InsertChunks(ctx, redirect.ListName, set.Chunks); err != nil {
			return 0, false, err
		}
	}

	return len(set.Chunks), set.Rekey, nil
}

func (c *Client) decodeOptions() protocol.Options {
	opts := c.opts.Decode
	opts.Key = c.Keys().ClientKey
	return opts
}

func (c *Client) baseParams() url.Values {
	params := url.Values{}
	params.Set("client", c.opts.ClientName)
	params.Set("appver", c.opts.AppVersion)
	params.Set("pver", ProtocolVersion)
	return params
}

func (c *Client) keyedParams() url.Values {
	params := c.baseParams()
	if wrapped := c.Keys().WrappedKey; wrapped != "" {
		params.Set("wrkey", wrapped)
	}
	return params
}
