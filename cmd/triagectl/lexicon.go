package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/lexiconfile"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
)

func newLexiconCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lexicon",
		Short: "Inspect and validate classifier lexicon files",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "validate <path>",
			Short: "Check that a lexicon file would be accepted by a reload",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				lex, err := lexiconfile.Load(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok: version=%q positive=%d negative=%d emotions=%d\n",
					lex.Version, len(lex.Positive), len(lex.Negative), len(lex.Emotions))
				return nil
			},
		},
		&cobra.Command{
			Use:   "dump",
			Short: "Print the built-in lexicon as YAML, a starting point for LEXICON_PATH",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				data, err := analysis.EncodeLexicon(analysis.DefaultLexicon())
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			},
		},
	)
	return cmd
}
