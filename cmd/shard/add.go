package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go.klb.dev/shard/internal/classify"
	"go.klb.dev/shard/internal/colorlib"
	"go.klb.dev/shard/internal/store"
)

func newAddCmd() *cobra.Command {
	v := viper.New()

	cmd := &cobra.Command{
		Use:   "add [text]",
		Short: "Classify and store a snippet",
		Long: `Classifies the given text (or stdin when no argument is given) and stores
it as a snippet. A CSS-style color string becomes a color snippet; text that
looks like source code becomes a code snippet with a language guess;
everything else is stored as plain text.

Adding a color that is already stored bumps the existing snippet to the top
of the history instead of creating a duplicate.`,
		Args:    cobra.ArbitraryArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:    func(_ *cobra.Command, args []string) error { return runAdd(v, args) },
	}

	f := cmd.Flags()
	f.String("label", "", "label for the snippet (default: derived from content)")
	f.String("kind", "", "force the snippet kind instead of classifying: color|code|text")
	addDBFlag(cmd)
	addConfigFlag(cmd)

	return cmd
}

func runAdd(v *viper.Viper, args []string) error {
	text, err := readInput(args)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("nothing to add")
	}

	s, err := openSession(v)
	if err != nil {
		return err
	}
	defer s.Close()

	var rec store.Record
	if kind := v.GetString("kind"); kind != "" {
		forced, err := forcedRecord(kind, text)
		if err != nil {
			return err
		}
		rec, err = s.addRecord(forced, v.GetString("label"))
		if err != nil {
			return err
		}
	} else {
		rec, err = s.add(text, v.GetString("label"))
		if err != nil {
			return err
		}
	}
	fmt.Printf("%s  %s  %s\n", shortID(rec.ID), rec.Kind, rec.Label)
	return nil
}

// forcedRecord builds a record for an explicit --kind, bypassing the
// classifier. Colors must still parse; code gets a language guess.
func forcedRecord(kind, text string) (store.Record, error) {
	k, ok := classify.ParseKind(kind)
	if !ok {
		return store.Record{}, fmt.Errorf("unknown kind %q (want color, code or text)", kind)
	}
	switch k {
	case classify.KindColor:
		c, err := colorlib.Parse(strings.TrimSpace(text))
		if err != nil {
			return store.Record{}, err
		}
		return store.Record{Kind: string(k), Color: c.Hex()}, nil
	case classify.KindCode:
		return store.Record{Kind: string(k), Text: text, Language: classify.DetectLanguage(text)}, nil
	default:
		return store.Record{Kind: string(k), Text: text}, nil
	}
}
