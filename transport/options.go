package transport

import (
	"go.uber.org/zap"

	"github.com/luma/shavar/lists"
	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/storage"
)

type Options struct {
	// Host to listen on
	Host string

	// Port to listen on
	Port int

	// Reuseport controls setting SO_REUSEPORT
	Reuseport bool

	// NumListeners is the number of SO_REUSEPORT listeners to serve from.
	// Ignored unless Reuseport is set.
	NumListeners int

	// Debug puts gin in debug mode
	Debug bool

	// MaxBodyBytes caps the size of a posted message. Defaults to 8MB.
	MaxBodyBytes int64

	// Decode configures the decoders behind /v1/decode
	Decode protocol.Options

	// Lists are reported by /v1/lists when the request names none
	Lists *lists.Table

	Store storage.Store

	Log *zap.Logger
}
