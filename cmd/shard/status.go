package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/ipc"
)

func newStatusCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and database status",
		Long: `Displays the daemon version, database path, schema version, and snippet
and pin counts. Without a running daemon the database is inspected directly
(pins are daemon state and show as zero).`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runStatus(v) },
	}

	f := cmd.Flags()
	f.Bool("json", false, "output raw JSON")
	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runStatus(v *viper.Viper) error {
	daemonUp := ipc.IsRunning()

	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	info, err := s.status()
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	if daemonUp {
		fmt.Fprintf(w, "Daemon:\trunning (%s)\n", ipc.SocketPath())
	} else {
		fmt.Fprintf(w, "Daemon:\tnot running\n")
	}
	fmt.Fprintf(w, "Version:\t%s\n", info.Version)
	fmt.Fprintf(w, "Database:\t%s\n", info.DBPath)
	fmt.Fprintf(w, "Schema:\tv%d\n", info.SchemaVersion)
	fmt.Fprintf(w, "Snippets:\t%d\n", info.Snippets)
	fmt.Fprintf(w, "Pins:\t%d\n", info.Pins)
	fmt.Fprintf(w, "Clipboard:\t%v\n", info.Clipboard)
	return w.Flush()
}
