package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luma/shavar/cmd/gen"
)

var RootCmd = &cobra.Command{
	Use:   "shavar",
	Short: "Threat list sync client and protocol inspector",
	Long: `Threat list sync client and protocol inspector

Speaks version 2.2 of the shavar list protocol: fetches and stores list
chunks, and decodes protocol messages for inspection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.AddCommand(ServeCmd)
	RootCmd.AddCommand(DecodeCmd)
	RootCmd.AddCommand(SyncCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
