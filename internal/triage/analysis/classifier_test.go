package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func newDefaultClassifier(t *testing.T) *LexicalClassifier {
	t.Helper()
	c, err := NewLexicalClassifier(DefaultLexicon())
	require.NoError(t, err)
	return c
}

func TestLexicalClassifier_Scenarios(t *testing.T) {
	c := newDefaultClassifier(t)

	t.Run("three negative hits", func(t *testing.T) {
		r := c.Classify("This is terrible, completely broken and useless")
		assert.Equal(t, domain.SentimentNegative, r.Sentiment)
		assert.Equal(t, 3, r.NegativeHits)
		assert.Equal(t, 0, r.PositiveHits)
		assert.InDelta(t, 0.9, r.Confidence, 1e-9)
		assert.Equal(t, []string{"broken", "terrible", "useless"}, r.Keywords)
	})

	t.Run("single positive hit", func(t *testing.T) {
		r := c.Classify("This is absolutely amazing, I love it!")
		assert.Equal(t, domain.SentimentPositive, r.Sentiment)
		assert.Equal(t, 1, r.PositiveHits)
		assert.InDelta(t, 0.7, r.Confidence, 1e-9)
		assert.Equal(t, []string{"amazing"}, r.Keywords)
		assert.Contains(t, r.Emotions, "joy")
	})

	t.Run("no hits is neutral", func(t *testing.T) {
		r := c.Classify("The package arrived on Tuesday.")
		assert.Equal(t, domain.SentimentNeutral, r.Sentiment)
		assert.Equal(t, 0.5, r.Confidence)
		assert.Empty(t, r.Keywords)
	})

	t.Run("empty content", func(t *testing.T) {
		r := c.Classify("   ")
		assert.Equal(t, domain.SentimentNeutral, r.Sentiment)
		assert.Equal(t, 0.5, r.Confidence)
		assert.Empty(t, r.Emotions)
		assert.Empty(t, r.Keywords)
	})

	t.Run("tie is neutral but keeps keywords", func(t *testing.T) {
		r := c.Classify("Great design but slow")
		assert.Equal(t, domain.SentimentNeutral, r.Sentiment)
		assert.Equal(t, 0.5, r.Confidence)
		assert.ElementsMatch(t, []string{"great", "slow"}, r.Keywords)
	})
}

func TestLexicalClassifier_Matching(t *testing.T) {
	c := newDefaultClassifier(t)

	t.Run("token boundaries", func(t *testing.T) {
		r := c.Classify("Goodbye and badminton")
		assert.Equal(t, 0, r.PositiveHits)
		assert.Equal(t, 0, r.NegativeHits)
	})

	t.Run("case insensitive and punctuation", func(t *testing.T) {
		r := c.Classify("GREAT!!! Really...GREAT")
		assert.Equal(t, 1, r.PositiveHits, "each term counts once")
		assert.Equal(t, domain.SentimentPositive, r.Sentiment)
	})

	t.Run("phrases and curly apostrophes", func(t *testing.T) {
		r := c.Classify("Checkout doesn’t work and the app is not working")
		assert.ElementsMatch(t, []string{"doesn't work", "not working"}, r.Keywords)
		assert.Equal(t, domain.SentimentNegative, r.Sentiment)
	})

	t.Run("confidence caps at 0.9", func(t *testing.T) {
		r := c.Classify("bad terrible awful horrible broken useless slow")
		assert.Equal(t, 7, r.NegativeHits)
		assert.InDelta(t, 0.9, r.Confidence, 1e-9)
	})

	t.Run("multiple emotions", func(t *testing.T) {
		r := c.Classify("I am furious and worried about my privacy")
		assert.Equal(t, []string{"anger", "concern"}, r.Emotions)
	})
}

func TestLexicalClassifier_Properties(t *testing.T) {
	c := newDefaultClassifier(t)
	inputs := []string{
		"", "ok", "great great great", "bad", "refund refund please",
		"amazing excellent perfect wonderful fantastic awesome brilliant",
		"it crashed, then it failed, this is the worst, unusable and buggy",
		"thanks, but the error is annoying",
	}
	for _, in := range inputs {
		r := c.Classify(in)
		assert.GreaterOrEqual(t, r.Confidence, 0.0, in)
		assert.LessOrEqual(t, r.Confidence, 1.0, in)
		assert.Contains(t, domain.Sentiments, r.Sentiment, in)
		if r.Sentiment == domain.SentimentNegative {
			assert.Positive(t, r.NegativeHits, "negative sentiment needs at least one hit: %q", in)
		}
		assert.Equal(t, r, c.Classify(in), "deterministic for %q", in)
	}
}

func TestLexicalClassifier_SetLexicon(t *testing.T) {
	c := newDefaultClassifier(t)
	custom := Lexicon{
		Version:  "custom",
		Positive: []string{"Stellar"},
		Negative: []string{"Meh"},
	}
	require.NoError(t, c.SetLexicon(custom))
	assert.Equal(t, "custom", c.Lexicon().Version)

	r := c.Classify("stellar service")
	assert.Equal(t, domain.SentimentPositive, r.Sentiment)
	r = c.Classify("great service")
	assert.Equal(t, domain.SentimentNeutral, r.Sentiment)

	err := c.SetLexicon(Lexicon{Positive: []string{"fine"}, Negative: []string{"FINE"}})
	require.Error(t, err)
	assert.Equal(t, "custom", c.Lexicon().Version, "invalid lexicon must not replace the active one")
}

func TestScoreUrgency(t *testing.T) {
	assert.Equal(t, 1, ScoreUrgency(domain.SentimentPositive, 5))
	assert.Equal(t, 1, ScoreUrgency(domain.SentimentNeutral, 2))
	assert.Equal(t, 3, ScoreUrgency(domain.SentimentNegative, 1))
	assert.Equal(t, 4, ScoreUrgency(domain.SentimentNegative, 2))
	assert.Equal(t, 5, ScoreUrgency(domain.SentimentNegative, 3))
	assert.Equal(t, 5, ScoreUrgency(domain.SentimentNegative, 12))
	for hits := 1; hits < 10; hits++ {
		assert.Equal(t, min(5, 2+hits), ScoreUrgency(domain.SentimentNegative, hits))
	}
}
