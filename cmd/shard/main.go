// shard: snippet capture and recall for the clipboard.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "shard",
		Short: "Snippet capture and recall for the clipboard",
		Long: `shard keeps a persistent, ordered history of clipboard snippets —
colors, code and plain text — in a local SQLite database. Captured text is
classified automatically: CSS-style colors parse into a multi-format value,
code is detected and tagged with a language guess, everything else is text.

Run "shard serve" to capture the clipboard continuously. All other
sub-commands talk to the running daemon over a Unix socket, or open the
database directly when no daemon is present.

Config file search order (first found wins):
  /etc/shard/shard.toml
  $HOME/.config/shard/shard.toml
  path supplied via --config

All flags can be set via SHARD_<FLAG> env vars or config-file keys.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newServeCmd(),
		newAddCmd(),
		newListCmd(),
		newShowCmd(),
		newCopyCmd(),
		newLabelCmd(),
		newRmCmd(),
		newPinCmd(),
		newUnpinCmd(),
		newResolveCmd(),
		newPinsCmd(),
		newConvertCmd(),
		newExportCmd(),
		newImportCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("shard %s\n", Version)
		},
	}
}
