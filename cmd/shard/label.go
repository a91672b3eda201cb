package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newLabelCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "label <id> <label>",
		Short:   "Rename a snippet",
		Args:    cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runLabel(v, args[0], args[1]) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runLabel(v *viper.Viper, id, label string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	rec, err := s.setLabel(id, label)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", shortID(rec.ID), rec.Label)
	return nil
}
