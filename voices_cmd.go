package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/recite-sh/recite/internal/config"
	"github.com/recite-sh/recite/speech"
)

var voicesCmd = &cobra.Command{
	Use:     "voices [QUERY]",
	Short:   "List available voices",
	Long:    paragraph(fmt.Sprintf("\n%s the voices the configured engine can speak with. Pass a query to fuzzy-filter the list.", keyword("List"))),
	Example: paragraph("recite voices\nrecite voices amy"),
	Args:    cobra.MaximumNArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.FromViper()
		if err != nil {
			return err
		}

		engine, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = engine.Close() }()

		voices := engine.Voices()
		if len(args) > 0 {
			voices = filterVoices(voices, args[0])
		}
		if len(voices) == 0 {
			fmt.Println("No matching voices.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLANGUAGE\t")
		for _, v := range voices {
			mark := ""
			if v.Default {
				mark = " (default)"
			}
			fmt.Fprintf(w, "%s\t%s%s\t%s\t\n", v.ID, v.Name, mark, v.Language)
		}
		return w.Flush()
	},
}

// filterVoices ranks voices against the query by ID, name and language.
func filterVoices(voices []speech.Voice, query string) []speech.Voice {
	haystack := make([]string, len(voices))
	for i, v := range voices {
		haystack[i] = v.ID + " " + v.Name + " " + v.Language
	}

	matches := fuzzy.Find(query, haystack)
	out := make([]speech.Voice, 0, len(matches))
	for _, m := range matches {
		out = append(out, voices[m.Index])
	}
	return out
}
