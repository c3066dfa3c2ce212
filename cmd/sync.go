package cmd

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/luma/shavar/client"
	"github.com/luma/shavar/internal/env"
	"github.com/luma/shavar/storage"
)

var (
	syncStateFile string
	syncNewKeys   bool
	syncScheme    string
)

func init() {
	flags := SyncCmd.Flags()

	flags.StringVar(&syncStateFile, "state", "shavar.json", "The file list state is loaded from and saved to")
	flags.BoolVar(&syncNewKeys, "new-keys", false, "Fetch new MAC keys before syncing")
	flags.StringVar(&syncScheme, "redirect-scheme", client.DefaultRedirectScheme, "The scheme chunk data is fetched with")
}

var SyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one update round against the list server",
	Long: `Run one update round against the list server

Sends the chunks held in the state file, applies the deletes the server
answers with, fetches the new chunks and saves the result. Prints how long
the server asked to wait before the next round.

Usage
	SHAVAR_UPDATE_URL=https://example.com/downloads shavar sync --state shavar.json

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

		store := storage.NewInmemoryStore()
		defer func() {
			err = multierr.Append(err, store.Close())
		}()

		if err := loadState(store, syncStateFile); err != nil {
			return err
		}

		c := client.New(client.Options{
			UpdateURL:      conf.UpdateURL,
			GetHashURL:     conf.GetHashURL,
			NewKeyURL:      conf.NewKeyURL,
			ClientName:     conf.ClientName,
			AppVersion:     conf.AppVersion,
			ClientKey:      conf.ClientKey,
			WrappedKey:     conf.WrappedKey,
			Lists:          conf.ListNames(),
			Store:          store,
			RedirectScheme: syncScheme,
			Log:            log.Named("client"),
		})

		if syncNewKeys {
			if _, err := c.NewKeys(ctx); err != nil {
				return err
			}
		}

		result, syncErr := c.Update(ctx)
		if result == nil {
			return syncErr
		}

		if syncErr != nil {
			log.Warn("Update finished with errors", zap.Error(syncErr))
		}

		if err := saveState(store, syncStateFile); err != nil {
			return multierr.Append(syncErr, err)
		}

		log.Info("Update finished",
			zap.Int("nextPollSeconds", result.NextPollSeconds),
			zap.Bool("rekey", result.Rekey),
			zap.Bool("reset", result.Reset),
			zap.Any("chunks", result.Chunks))

		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")
		if err := out.Encode(struct {
			*client.SyncResult
			Keys interface{} `json:"keys,omitempty"`
		}{SyncResult: result, Keys: newKeysOrNil(c, conf)}); err != nil {
			return multierr.Append(syncErr, err)
		}

		return syncErr
	},
}

// newKeysOrNil reports the client's keys when they differ from the
// configured ones, so they can be saved for the next run.
func newKeysOrNil(c *client.Client, conf *env.Config) interface{} {
	keys := c.Keys()
	if keys.ClientKey == conf.ClientKey && keys.WrappedKey == conf.WrappedKey {
		return nil
	}
	return keys
}
