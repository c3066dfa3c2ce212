package cmd_test

import (
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/shavar/cmd"
)

func run(stdin string, args ...string) (string, error) {
	out := bytes.NewBuffer([]byte{})

	cmd.RootCmd.SetIn(strings.NewReader(stdin))
	cmd.RootCmd.SetOut(out)
	cmd.RootCmd.SetErr(ioutil.Discard)
	cmd.RootCmd.SetArgs(args)

	err := cmd.RootCmd.Execute()
	return out.String(), err
}

var _ = Describe("cmd", func() {
	Describe("decode", func() {
		It("decodes an update from stdin", func() {
			out, err := run("n:30\ni:goog-phish-shavar\nsd:4\n", "decode", "update")
			Expect(err).To(Succeed())
			Expect(out).To(MatchJSON(`{
				"nextPollSeconds": 30,
				"rekey": false,
				"reset": false,
				"deletes": [{"listName": "goog-phish-shavar", "isSubDel": true, "ranges": [{"low": 4, "high": 4}]}],
				"redirects": []
			}`))
		})

		It("decodes keys from a file", func() {
			dir, err := ioutil.TempDir("", "shavar")
			Expect(err).To(Succeed())
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, "keys.txt")
			Expect(ioutil.WriteFile(path, []byte("clientkey:2:ck\nwrappedkey:2:wk\n"), 0600)).To(Succeed())

			out, err := run("", "decode", "keys", path)
			Expect(err).To(Succeed())
			Expect(out).To(MatchJSON(`{"clientKey": "ck", "wrappedKey": "wk"}`))
		})

		It("reports the error class", func() {
			_, err := run("n:30", "decode", "update")
			Expect(err).To(MatchError(ContainSubstring("framing error")))
		})
	})

	Describe("version", func() {
		It("prints the build info as JSON", func() {
			out, err := run("", "version", "--json")
			Expect(err).To(Succeed())
			Expect(out).To(ContainSubstring(`"version":"dev"`))
		})
	})
})
