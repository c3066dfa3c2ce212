package client

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/storage"
)

const (
	ProtocolVersion = "2.2"

	DefaultRedirectScheme   = "https"
	DefaultMaxResponseBytes = 8 << 20
)

type Options struct {
	// UpdateURL receives download requests
	UpdateURL string

	// GetHashURL receives full hash requests
	GetHashURL string

	// NewKeyURL hands out a client key and wrapped key
	NewKeyURL string

	ClientName string
	AppVersion string

	// ClientKey and WrappedKey enable MAC verification. Both are empty until
	// NewKeys has been called.
	ClientKey  string
	WrappedKey string

	// Lists to request in each update
	Lists []string

	Store storage.Store

	// RedirectScheme is prefixed to the scheme-less redirect URLs of an
	// update. Defaults to https.
	RedirectScheme string

	// MaxResponseBytes caps how much of any one response is read
	MaxResponseBytes int64

	// Decode is passed to every decoder. Its Key is managed by the client.
	Decode protocol.Options

	HTTPClient *http.Client

	Log *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.RedirectScheme == "" {
		o.RedirectScheme = DefaultRedirectScheme
	}

	if o.MaxResponseBytes <= 0 {
		o.MaxResponseBytes = DefaultMaxResponseBytes
	}

	if o.HTTPClient == nil {
		o.HTTPClient = http.DefaultClient
	}

	if o.Log == nil {
		o.Log = zap.NewNop()
	}

	return o
}
