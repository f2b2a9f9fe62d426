package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/lexiconfile"
	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/memory"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

type classifyOutput struct {
	Sentiment         string   `json:"sentiment"`
	Confidence        float64  `json:"confidence"`
	UrgencyLevel      int      `json:"urgencyLevel"`
	Emotions          []string `json:"emotions"`
	Keywords          []string `json:"keywords"`
	SuggestedResponse string   `json:"suggestedResponse,omitempty"`
	Classifier        string   `json:"classifier"`
	LexiconVersion    string   `json:"lexiconVersion,omitempty"`
}

func newClassifyCommand(root *rootOptions) *cobra.Command {
	var lexiconPath, feedbackType string
	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify text without touching the store (reads stdin when no text is given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1<<20))
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(raw)
			}

			lex := analysis.DefaultLexicon()
			if lexiconPath != "" {
				var err error
				if lex, err = lexiconfile.Load(lexiconPath); err != nil {
					return err
				}
			}
			classifier, err := analysis.NewLexicalClassifier(lex)
			if err != nil {
				return err
			}
			svc, err := application.NewTriageService(application.ServiceConfig{
				Repository: memory.NewFeedbackRepository(),
				Classifier: classifier,
				Logger:     root.logger,
			})
			if err != nil {
				return err
			}

			result, err := svc.Preview(text, feedbackType)
			if err != nil {
				return err
			}
			out := classifyOutput{
				Sentiment:         result.Sentiment.String(),
				Confidence:        result.Confidence,
				UrgencyLevel:      result.UrgencyLevel,
				Emotions:          orEmpty(result.Emotions),
				Keywords:          orEmpty(result.Keywords),
				SuggestedResponse: result.SuggestedResponse,
				Classifier:        result.Classifier,
				LexiconVersion:    lex.Version,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&lexiconPath, "lexicon", "", "YAML lexicon to classify with instead of the built-in one")
	cmd.Flags().StringVar(&feedbackType, "type", "", "feedback type used to pick a suggested response (complaint, bug_report, ...)")
	return cmd
}

func orEmpty(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
