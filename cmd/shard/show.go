package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/classify"
	"go.klb.dev/shard/internal/colorlib"
	"go.klb.dev/shard/internal/store"
)

func newShowCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one snippet in full",
		Long: `Prints a snippet's metadata and full payload. The id may be a unique
prefix. Colors are printed in every supported notation. With --raw only the
payload is printed, suitable for piping.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runShow(v, args[0]) },
	}

	f := cmd.Flags()
	f.Bool("raw", false, "print only the payload")
	f.Bool("json", false, "output raw JSON")
	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runShow(v *viper.Viper, id string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.get(id)
	if err != nil {
		return err
	}

	if v.GetBool("json") {
		enc, _ := json.MarshalIndent(rec, "", "  ")
		fmt.Println(string(enc))
		return nil
	}
	if v.GetBool("raw") {
		if rec.Color != "" {
			fmt.Println(rec.Color)
		} else {
			fmt.Print(rec.Text)
		}
		return nil
	}

	printRecord(rec)
	return nil
}

func printRecord(rec store.Record) {
	w := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID:\t%s\n", rec.ID)
	fmt.Fprintf(w, "Kind:\t%s\n", rec.Kind)
	fmt.Fprintf(w, "Label:\t%s\n", rec.Label)
	fmt.Fprintf(w, "Added:\t%s\n", rec.CreatedAt.Local().Format(time.RFC3339))
	if !rec.UpdatedAt.Equal(rec.CreatedAt) {
		fmt.Fprintf(w, "Updated:\t%s\n", rec.UpdatedAt.Local().Format(time.RFC3339))
	}
	if rec.Language != "" {
		fmt.Fprintf(w, "Language:\t%s (.%s)\n", rec.Language, classify.Extension(rec.Language))
	}
	_ = w.Flush()

	if rec.Color != "" {
		c, err := colorlib.Parse(rec.Color)
		if err != nil {
			fmt.Println(rec.Color)
			return
		}
		fmt.Println()
		fmt.Printf("  %s\n", c.Hex())
		fmt.Printf("  %s\n", c.RGBString())
		fmt.Printf("  %s\n", c.HSLString())
		fmt.Printf("  %s\n", c.OKLCHString())
		return
	}

	fmt.Println()
	fmt.Println(rec.Text)
}
