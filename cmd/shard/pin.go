package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newPinCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "pin <id>",
		Short: "Pin a snippet to a surface",
		Long: `Pins a snippet, printing the new surface id. A snippet may be pinned to
any number of surfaces; each pin gets its own surface id. Pins live in the
daemon's memory and vanish when the daemon stops or the snippet is deleted.`,
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runPin(v, args[0]) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runPin(v *viper.Viper, id string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	surface, err := s.pin(id)
	if err != nil {
		return err
	}
	fmt.Println(surface)
	return nil
}

func newUnpinCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "unpin <surface>",
		Short:   "Remove a pinned surface",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runUnpin(v, args[0]) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runUnpin(v *viper.Viper, surface string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	return s.unpin(surface)
}

func newResolveCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "resolve <surface>",
		Short:   "Print the snippet id a pinned surface references",
		Args:    cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runResolve(v, args[0]) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runResolve(v *viper.Viper, surface string) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	id, err := s.resolvePin(surface)
	if err != nil {
		return err
	}
	fmt.Println(id)
	return nil
}

func newPinsCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "pins",
		Short:   "List pinned surfaces",
		Args:    cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, _ []string) error { return runPins(v) },
	}

	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runPins(v *viper.Viper) error {
	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	pinned, err := s.pins()
	if err != nil {
		return err
	}
	if len(pinned) == 0 {
		fmt.Println("No pins.")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 1, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(tw, "SURFACE\tSNIPPET\n")
	for _, p := range pinned {
		_, _ = fmt.Fprintf(tw, "%s\t%s\n", p.Surface, shortID(p.SnippetID))
	}
	return tw.Flush()
}
