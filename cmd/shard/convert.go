package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"go.klb.dev/shard/internal/colorlib"
)

func newConvertCmd() *cobra.Command {
	var to string

	cmd := &cobra.Command{
		Use:   "convert <color>",
		Short: "Convert a color between notations",
		Long: `Parses a color in any supported notation (hex, rgb(), hsl(), oklch())
and prints it in the notation given by --to, or in all four when --to is
omitted. This is a pure conversion; nothing is stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error { return runConvert(args[0], to) },
	}

	cmd.Flags().StringVar(&to, "to", "", "target notation: hex|rgb|hsl|oklch (default: all)")

	return cmd
}

func runConvert(input, to string) error {
	c, err := colorlib.Parse(strings.TrimSpace(input))
	if err != nil {
		return fmt.Errorf("%w: %s", err, input)
	}

	if to == "" {
		fmt.Println(c.Hex())
		fmt.Println(c.RGBString())
		fmt.Println(c.HSLString())
		fmt.Println(c.OKLCHString())
		return nil
	}

	f, err := colorlib.ParseFormat(to)
	if err != nil {
		return err
	}
	fmt.Println(colorlib.FormatAs(c, f))
	return nil
}
