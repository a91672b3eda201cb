package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/store"
)

func newExportCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Export all snippets as JSON",
		Long: `Writes every snippet to the given file (or stdout) as a JSON document,
in display order. The document can be fed back with "shard import".`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runExport(v, args) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runExport(v *viper.Viper, args []string) error {
	st, err := openStoreDirect(v)
	if err != nil {
		return err
	}
	defer st.Close()

	out := os.Stdout
	if len(args) == 1 {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return st.Export(out)
}

func newImportCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import snippets from a JSON export",
		Long: `Reads a document produced by "shard export" from the given file (or
stdin) and inserts every record as a new snippet, on top of the existing
history. Imported snippets get fresh ids.`,
		Args:    cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runImport(v, args) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runImport(v *viper.Viper, args []string) error {
	st, err := openStoreDirect(v)
	if err != nil {
		return err
	}
	defer st.Close()

	in := os.Stdin
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	n, err := st.Import(in)
	if err != nil {
		return err
	}
	fmt.Printf("imported %d snippets\n", n)
	return nil
}

// openStoreDirect opens the database regardless of any running daemon.
// Export and import are bulk file operations; WAL mode and the busy timeout
// make the concurrent access safe.
func openStoreDirect(v *viper.Viper) (*store.Store, error) {
	dbPath := v.GetString("db")
	if dbPath == "" {
		dbPath = store.DefaultPath()
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
