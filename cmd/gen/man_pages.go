package gen

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"github.com/luma/shavar/internal/meta"
)

var (
	manDir      string
	markdownDir string
)

var ManPagesCmd = &cobra.Command{
	Use:   "man",
	Short: "Generate man pages for shavar",
	Long: `Generates up-to-date man pages for every shavar command. By default
the pages are written to the "man" directory under the current directory.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		header := &doc.GenManHeader{
			Section: "1",
			Manual:  "shavar Manual",
			Source:  fmt.Sprintf("shavar %s", meta.GetInfo().Version),
		}

		return generate(cmd, "man pages", manDir, func(root *cobra.Command, dir string) error {
			return doc.GenManTree(root, header, dir)
		})
	},
}

var MarkdownCmd = &cobra.Command{
	Use:   "markdown",
	Short: "Generate markdown docs for shavar",
	RunE: func(cmd *cobra.Command, args []string) error {
		return generate(cmd, "markdown docs", markdownDir, doc.GenMarkdownTree)
	},
}

func generate(cmd *cobra.Command, what, dir string, gen func(*cobra.Command, string) error) error {
	out := cmd.OutOrStdout()
	dir = filepath.Clean(dir) + string(filepath.Separator)

	if _, err := os.Stat(dir); err != nil && os.IsNotExist(err) {
		fmt.Fprintln(out, "Directory", dir, "does not exist, creating...")
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}

	cmd.Root().DisableAutoGenTag = true

	fmt.Fprintln(out, "Generating shavar", what, "in", dir, "...")
	if err := gen(cmd.Root(), dir); err != nil {
		return err
	}

	fmt.Fprintln(out, "Done.")
	return nil
}

func init() {
	ManPagesCmd.PersistentFlags().StringVar(&manDir, "dir", "man/", "the directory to write the man pages.")
	MarkdownCmd.PersistentFlags().StringVar(&markdownDir, "dir", "docs/", "the directory to write the markdown docs.")

	// For bash-completion
	for _, c := range []*cobra.Command{ManPagesCmd, MarkdownCmd} {
		if err := c.PersistentFlags().SetAnnotation("dir", cobra.BashCompSubdirsInDir, []string{}); err != nil {
			panic(err)
		}
	}
}
