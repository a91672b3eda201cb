package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/store"
)

func newListCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snippets, newest first",
		Long: `Lists stored snippets in display order (most recently added or bumped
first). --kind narrows the listing to one snippet kind; --query matches a
case-insensitive substring against labels and payloads.`,
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runList(v) },
	}

	f := cmd.Flags()
	f.String("kind", "", "only list snippets of this kind: color|code|text")
	f.String("query", "", "substring filter over label and payload")
	f.Bool("json", false, "output raw JSON")
	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runList(v *viper.Viper) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	recs, err := s.list(v.GetString("kind"), v.GetString("query"))
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(recs, "", "  ")
		fmt.Println(string(enc))
		return nil
	}

	if len(recs) == 0 {
		fmt.Println("No snippets.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "ID\tKIND\tLABEL\tPREVIEW\tADDED\n")
	for _, r := range recs {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			shortID(r.ID), r.Kind, r.Label, preview(r), fmtAge(r.CreatedAt),
		)
	}
	return tw.Flush()
}

// preview renders a one-line glimpse of a record's payload.
func preview(r store.Record) string {
	if r.Color != "" {
		return r.Color
	}
	line := r.Text
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if runes := []rune(line); len(runes) > 48 {
		line = string(runes[:48]) + "…"
	}
	if r.Language != "" {
		return fmt.Sprintf("[%s] %s", r.Language, line)
	}
	return line
}
