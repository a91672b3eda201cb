package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCopyCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "copy <id>",
		Short: "Put a snippet back on the system clipboard",
		Long: `Copies a snippet's payload to the system clipboard. Colors are copied in
their hex form.

When a daemon is running the daemon performs the write, so the copied text
is not captured back into the history as a new snippet.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runCopy(v, args[0]) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runCopy(v *viper.Viper, id string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.copyToClipboard(id)
	if err != nil {
		return err
	}
	fmt.Printf("copied %s  %s\n", shortID(rec.ID), rec.Label)
	return nil
}
