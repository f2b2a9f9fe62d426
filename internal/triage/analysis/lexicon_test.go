package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLexicon = `
version: "2024-06"
lexicon:
  positive: [Great, "well done", great]
  negative: [broken, "Not Working"]
emotions:
  Anger: [furious]
`

func TestParseLexicon(t *testing.T) {
	lex, err := ParseLexicon([]byte(sampleLexicon))
	require.NoError(t, err)
	assert.Equal(t, "2024-06", lex.Version)
	assert.Equal(t, []string{"great", "well done"}, lex.Positive)
	assert.Equal(t, []string{"broken", "not working"}, lex.Negative)
	assert.Equal(t, map[string][]string{"anger": {"furious"}}, lex.Emotions)
}

func TestParseLexicon_Invalid(t *testing.T) {
	cases := map[string]string{
		"malformed yaml":   "lexicon: [",
		"missing negative": "lexicon:\n  positive: [good]\n",
		"overlap":          "lexicon:\n  positive: [fine]\n  negative: [Fine]\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLexicon([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestEncodeLexicon_ReadsBack(t *testing.T) {
	def := DefaultLexicon()
	data, err := EncodeLexicon(def)
	require.NoError(t, err)

	parsed, err := ParseLexicon(data)
	require.NoError(t, err)
	assert.Equal(t, def.normalized(), parsed)
}

func TestDefaultLexiconIsValid(t *testing.T) {
	require.NoError(t, DefaultLexicon().Validate())
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "don't stop", normalizeText("  DON’T   stop!! "))
	assert.Equal(t, "customers review", normalizeText("'customers' review"))
	assert.Equal(t, "", normalizeText("...!?"))
}
