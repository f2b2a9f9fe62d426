package analysis

import (
	"math"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// Result is the output of a classification run.
type Result struct {
	Sentiment    domain.Sentiment
	Confidence   float64
	Emotions     []string
	Keywords     []string
	PositiveHits int
	NegativeHits int
}

// Classifier maps free text onto a sentiment result. Implementations must be
// safe for concurrent use.
type Classifier interface {
	Name() string
	Classify(content string) Result
}

const (
	neutralConfidence = 0.5
	baseConfidence    = 0.6
	stepConfidence    = 0.1
	maxConfidence     = 0.9
)

// LexicalClassifier counts hits against positive and negative word lists.
type LexicalClassifier struct {
	lexicon atomic.Pointer[Lexicon]
}

func NewLexicalClassifier(lex Lexicon) (*LexicalClassifier, error) {
	c := &LexicalClassifier{}
	if err := c.SetLexicon(lex); err != nil {
		return nil, err
	}
	return c, nil
}

// SetLexicon validates and swaps the active lexicon.
func (c *LexicalClassifier) SetLexicon(lex Lexicon) error {
	if err := lex.Validate(); err != nil {
		return err
	}
	n := lex.normalized()
	c.lexicon.Store(&n)
	return nil
}

// Lexicon returns the active lexicon.
func (c *LexicalClassifier) Lexicon() Lexicon {
	return *c.lexicon.Load()
}

func (c *LexicalClassifier) Name() string {
	return "lexical"
}

func (c *LexicalClassifier) Classify(content string) Result {
	lex := c.lexicon.Load()
	text := normalizeText(content)
	if text == "" {
		return Result{Sentiment: domain.SentimentNeutral, Confidence: neutralConfidence}
	}
	haystack := " " + text + " "

	positive := matchTerms(haystack, lex.Positive)
	negative := matchTerms(haystack, lex.Negative)

	var emotions []string
	for name, triggers := range lex.Emotions {
		if len(matchTerms(haystack, triggers)) > 0 {
			emotions = append(emotions, name)
		}
	}
	sort.Strings(emotions)

	keywords := append(append([]string{}, positive...), negative...)
	sort.Strings(keywords)
	if len(keywords) == 0 {
		keywords = nil
	}

	result := Result{
		Emotions:     emotions,
		Keywords:     keywords,
		PositiveHits: len(positive),
		NegativeHits: len(negative),
	}
	switch {
	case result.PositiveHits > result.NegativeHits:
		result.Sentiment = domain.SentimentPositive
		result.Confidence = decidedConfidence(result.PositiveHits)
	case result.NegativeHits > result.PositiveHits:
		result.Sentiment = domain.SentimentNegative
		result.Confidence = decidedConfidence(result.NegativeHits)
	default:
		result.Sentiment = domain.SentimentNeutral
		result.Confidence = neutralConfidence
	}
	return result
}

func decidedConfidence(winning int) float64 {
	c := math.Min(maxConfidence, baseConfidence+stepConfidence*float64(winning))
	return math.Round(c*100) / 100
}

func matchTerms(haystack string, terms []string) []string {
	var found []string
	for _, term := range terms {
		if strings.Contains(haystack, " "+term+" ") {
			found = append(found, term)
		}
	}
	return found
}
