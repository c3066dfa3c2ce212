package transport

import (
	"context"
	"errors"
	"io/ioutil"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	reuseport "github.com/kavu/go_reuseport"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/shavar/lists"
	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/ranges"
	"github.com/luma/shavar/storage"
)

const DefaultMaxBodyBytes = 8 << 20

// HTTP serves the decoders and the store's list state as JSON.
type HTTP struct {
	cancel     context.CancelFunc
	stopWaiter sync.WaitGroup

	addr         string
	reuseport    bool
	numListeners int

	mu        sync.Mutex
	listeners []net.Listener

	server *http.Server
	router *gin.Engine

	decode   protocol.Options
	lists    *lists.Table
	maxBytes int64
	store    storage.Store

	log *zap.Logger
}

func NewHTTP(options Options) *HTTP {
	numListeners := options.NumListeners
	if numListeners < 1 || !options.Reuseport {
		numListeners = 1
	}

	maxBytes := options.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	table := options.Lists
	if table == nil {
		table = lists.Default()
	}

	log := options.Log
	if log == nil {
		log = zap.NewNop()
	}

	h := &HTTP{
		addr:         net.JoinHostPort(options.Host, strconv.Itoa(options.Port)),
		reuseport:    options.Reuseport,
		numListeners: numListeners,
		decode:       options.Decode,
		lists:        table,
		maxBytes:     maxBytes,
		store:        options.Store,
		log:          log,
	}

	if h.decode.Lists == nil {
		h.decode.Lists = table.Lookup
	}

	h.router = setupRouter(options.Debug, log)
	h.routes(h.router)
	h.server = &http.Server{Handler: h.router}

	return h
}

// Handler exposes the router, mostly for tests.
func (h *HTTP) Handler() http.Handler {
	return h.router
}

// Start opens the listeners and serves on them until ctx is cancelled or
// Close is called.
func (h *HTTP) Start(parentCtx context.Context) error {
	ctx, cancel := context.WithCancel(parentCtx)
	h.cancel = cancel

	h.log.Info("Starting http listeners", zap.Int("count", h.numListeners))

	for i := 0; i < h.numListeners; i++ {
		listener, err := h.listen()
		if err != nil {
			cancel()
			return multierr.Append(err, h.closeListeners())
		}

		h.mu.Lock()
		h.listeners = append(h.listeners, listener)
		h.mu.Unlock()

		h.stopWaiter.Add(1)
		go func(i int) {
			defer h.stopWaiter.Done()

			if err := h.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				h.log.Error("Failed to serve", zap.Int("listener", i), zap.Error(err))
			}
		}(i)
	}

	if h.store != nil {
		h.stopWaiter.Add(1)
		go func() {
			defer h.stopWaiter.Done()
			h.logUpdates(ctx)
		}()
	}

	return nil
}

// Addr returns the address of the first listener, or the configured address
// before Start.
func (h *HTTP) Addr() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.listeners) == 0 {
		return h.addr
	}

	return h.listeners[0].Addr().String()
}

// Close immediately stops all listeners and connections.
//
// For a graceful shutdown, use Shutdown()
func (h *HTTP) Close() error {
	h.log.Info("Stopping HTTP server")
	if h.cancel != nil {
		h.cancel()
	}

	err := h.server.Close()
	h.stopWaiter.Wait()

	return multierr.Append(err, h.closeListeners())
}

// Shutdown stops accepting requests and waits for the active ones to finish
// or ctx to expire.
func (h *HTTP) Shutdown(ctx context.Context) error {
	h.server.SetKeepAlivesEnabled(false)
	err := h.server.Shutdown(ctx)

	if h.cancel != nil {
		h.cancel()
	}
	h.stopWaiter.Wait()

	return err
}

func (h *HTTP) listen() (net.Listener, error) {
	if h.reuseport {
		return reuseport.Listen("tcp", h.addr)
	}

	return net.Listen("tcp", h.addr)
}

func (h *HTTP) closeListeners() (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, listener := range h.listeners {
		if lerr := listener.Close(); lerr != nil && !errors.Is(lerr, net.ErrClosed) {
			err = multierr.Append(err, lerr)
		}
	}
	h.listeners = nil

	return err
}

func (h *HTTP) logUpdates(ctx context.Context) {
	updates := h.store.ListenToUpdates()

	for {
		select {
		case <-ctx.Done():
			return

		case update, ok := <-updates:
			if !ok {
				return
			}

			h.log.Debug("Store updated",
				zap.String("kind", string(update.Kind)),
				zap.String("list", update.ListName),
				zap.Bool("add", update.IsAdd),
				zap.String("chunks", ranges.Format(ranges.FromNumbers(update.Chunks))))
		}
	}
}

func (h *HTTP) readBody(c *gin.Context) ([]byte, bool) {
	body, err := ioutil.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes))
	if err != nil {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return nil, false
	}

	return body, true
}

func setupRouter(debug bool, log *zap.Logger) *gin.Engine {
	gin.DisableConsoleColor()
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Add a ginzap middleware, which:
	//   - Logs all requests, like a combined access and error log.
	//   - RFC3339 with UTC time format.
	r.Use(ginzap.GinzapWithConfig(log, &ginzap.Config{
		TimeFormat: time.RFC3339,
		UTC:        true,
		SkipPaths:  []string{"/ping"},
	}))

	// Logs all panic to error log
	//   - stack means whether output the stack info.
	r.Use(ginzap.RecoveryWithZap(log, true))

	return r
}
