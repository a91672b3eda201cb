package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRmCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "rm <id>...",
		Short: "Delete snippets",
		Long: `Deletes one or more snippets by id (or unique id prefix). Deleting a
pinned snippet also removes its pins.`,
		Args:    cobra.MinimumNArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runRm(v, args) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runRm(v *viper.Viper, ids []string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, id := range ids {
		if err := s.remove(id); err != nil {
			return fmt.Errorf("%s: %w", id, err)
		}
	}
	return nil
}
