package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/shavar/internal/env"
	"github.com/luma/shavar/protocol"
	"github.com/luma/shavar/storage"
	"github.com/luma/shavar/transport"
)

var (
	// The host to listen on
	host string

	// The port to listen for http requests on
	port int

	// Number of SO_REUSEPORT listeners
	numListeners int

	// State file to load the store from
	serveStateFile string
)

func init() {
	flags := ServeCmd.PersistentFlags()

	flags.IntVarP(&port, "port", "p", 7362, "The port to listen to HTTP requests on")
	flags.StringVarP(&host, "host", "a", "0.0.0.0", "The host to listen on")
	flags.IntVar(&numListeners, "listeners", 1, "The number of SO_REUSEPORT listeners")
	flags.StringVar(&serveStateFile, "state", "", "A state file written by sync to serve list state from")
}

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start up the shavar inspection service",
	Long: `Start up the shavar inspection service

Decodes protocol messages posted to /v1/decode/{update,chunks,gethash,keys}
and reports the chunks held for each list on /v1/lists.

Usage
	shavar serve --port 7362 --state shavar.json

`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer signalStop()

		conf, err := env.LoadConfig(ctx)
		if err != nil {
			return err
		}

		log, err := env.MakeLogger(conf.LogLevel)
		if err != nil {
			return err
		}
		defer log.Sync() // nolint: errcheck

		fileLimit, err := setFileLimit()
		if err != nil {
			return err
		}

		log.Info("Set file limit", zap.Uint64("fileLimit", fileLimit))

		store := storage.NewInmemoryStore()
		defer store.Close()

		if serveStateFile != "" {
			if err := loadState(store, serveStateFile); err != nil {
				return err
			}
		}

		server := transport.NewHTTP(transport.Options{
			Host:         host,
			Port:         port,
			Reuseport:    true,
			NumListeners: numListeners,
			Debug:        conf.DebugHTTP,
			Decode:       protocol.Options{Key: conf.ClientKey},
			Store:        store,
			Log:          log.Named("transport"),
		})

		if err := server.Start(ctx); err != nil {
			return err
		}

		log.Info("Listening",
			zap.String("host", host),
			zap.Int("port", port),
			zap.Int("listeners", numListeners),
			zap.Bool("keyed", conf.ClientKey != ""))

		// Listen for the interrupt signal.
		<-ctx.Done()

		// Restore default behavior on the interrupt signal and notify user of shutdown.
		signalStop()
		log.Info("Shutting down gracefully, press Ctrl+C again to force")

		// The context is used to inform the server it has 5 seconds to finish
		// the request it is currently handling
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("Http server forced to shutdown", zap.Error(err))

			if err := server.Close(); err != nil {
				log.Error("Http server did not close cleanly", zap.Error(err))
			}
		}

		log.Info("Exiting")
		return nil
	},
}

func setFileLimit() (uint64, error) {
	var rLimit syscall.Rlimit

	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	rLimit.Cur = rLimit.Max
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		return 0, err
	}

	return rLimit.Cur, nil
}
