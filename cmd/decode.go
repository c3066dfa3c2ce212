package cmd

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/spf13/cobra"

	"github.com/luma/shavar/internal/env"
	"github.com/luma/shavar/protocol"
)

var (
	decodeKey  string
	decodeList string
	decodeMAC  string
)

func init() {
	flags := DecodeCmd.PersistentFlags()
	flags.StringVar(&decodeKey, "key", "", "The client key to verify MACs with. Defaults to SHAVAR_CLIENT_KEY")

	chunksFlags := decodeChunksCmd.Flags()
	chunksFlags.StringVar(&decodeList, "list", "", "The list the chunk data belongs to")
	chunksFlags.StringVar(&decodeMAC, "mac", "", "The MAC the chunk data was redirected with")

	DecodeCmd.AddCommand(decodeUpdateCmd)
	DecodeCmd.AddCommand(decodeChunksCmd)
	DecodeCmd.AddCommand(decodeGetHashCmd)
	DecodeCmd.AddCommand(decodeKeysCmd)
}

var DecodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode a protocol message and print it as JSON",
	Long: `Decode a protocol message and print it as JSON

Reads the message from the named file, or stdin when none is given.

Usage
	shavar decode update response.txt
	curl -s $URL | shavar decode chunks --list goog-phish-shavar

`,
}

var decodeUpdateCmd = &cobra.Command{
	Use:   "update [file]",
	Short: "Decode an update response",
	Args:  cobra.MaximumNArgs(1),
	RunE: decodeWith(func(data []byte, opts protocol.Options) (interface{}, error) {
		return protocol.ParseUpdate(data, opts)
	}),
}

var decodeChunksCmd = &cobra.Command{
	Use:   "chunks [file]",
	Short: "Decode redirected chunk data",
	Args:  cobra.MaximumNArgs(1),
	RunE: decodeWith(func(data []byte, opts protocol.Options) (interface{}, error) {
		return protocol.ParseChunks(data, decodeList, decodeMAC, opts)
	}),
}

var decodeGetHashCmd = &cobra.Command{
	Use:   "gethash [file]",
	Short: "Decode a full hash response",
	Args:  cobra.MaximumNArgs(1),
	RunE: decodeWith(func(data []byte, opts protocol.Options) (interface{}, error) {
		return protocol.ParseGetHash(data, opts)
	}),
}

var decodeKeysCmd = &cobra.Command{
	Use:   "keys [file]",
	Short: "Decode a new key response",
	Args:  cobra.MaximumNArgs(1),
	RunE: decodeWith(func(data []byte, opts protocol.Options) (interface{}, error) {
		return protocol.ParseKeys(data)
	}),
}

type decodeFunc func(data []byte, opts protocol.Options) (interface{}, error)

func decodeWith(decode decodeFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args)
		if err != nil {
			return err
		}

		key := decodeKey
		if key == "" {
			conf, err := env.LoadConfig(cmd.Context())
			if err != nil {
				return err
			}
			key = conf.ClientKey
		}

		value, err := decode(data, protocol.Options{Key: key})
		if err != nil {
			return fmt.Errorf("%s error: %w", protocol.Classify(err), err)
		}

		out := json.NewEncoder(cmd.OutOrStdout())
		out.SetIndent("", "  ")
		return out.Encode(value)
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return ioutil.ReadAll(cmd.InOrStdin())
	}

	return ioutil.ReadFile(args[0])
}
