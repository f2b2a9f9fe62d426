package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContent(t *testing.T) {
	t.Run("trims and accepts", func(t *testing.T) {
		c, err := NewContent("  hello  ")
		require.NoError(t, err)
		assert.Equal(t, Content("hello"), c)
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := NewContent("   ")
		require.Error(t, err)
		assert.True(t, IsValidation(err))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		_, err := NewContent(strings.Repeat("é", MaxContentRunes))
		require.NoError(t, err)

		_, err = NewContent(strings.Repeat("a", MaxContentRunes+1))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "content")
	})
}

func TestEnumConstructors(t *testing.T) {
	s, err := NewSource(" Email ")
	require.NoError(t, err)
	assert.Equal(t, SourceEmail, s)

	_, err = NewSource("fax")
	assert.True(t, IsValidation(err))

	ft, err := NewFeedbackType("bug_report")
	require.NoError(t, err)
	assert.Equal(t, TypeBugReport, ft)

	_, err = NewFeedbackType("")
	assert.True(t, IsValidation(err))

	sent, err := NewSentiment("NEGATIVE")
	require.NoError(t, err)
	assert.Equal(t, SentimentNegative, sent)
	assert.Equal(t, -1, sent.Score())
}

func TestNewRating(t *testing.T) {
	for _, v := range []int{1, 3, 5} {
		r, err := NewRating(v)
		require.NoError(t, err)
		assert.Equal(t, v, r.Int())
	}
	for _, v := range []int{0, 6, -1} {
		_, err := NewRating(v)
		assert.Error(t, err, "rating %d", v)
	}
}

func TestCustomerInfoAndContext(t *testing.T) {
	info, err := NewCustomerInfo("c-1", "Ada", "ada@example.com", "", "gold")
	require.NoError(t, err)
	assert.False(t, info.IsZero())
	assert.Equal(t, Email("ada@example.com"), info.Email)

	_, err = NewCustomerInfo("", "", "not-an-email", "", "")
	assert.True(t, IsValidation(err))

	empty, err := NewCustomerInfo("", "", "", "", "")
	require.NoError(t, err)
	assert.True(t, empty.IsZero())

	ctx, err := NewContext("https://shop.example.com/checkout", "Mozilla/5.0", "en-US", "", "")
	require.NoError(t, err)
	assert.Equal(t, URL("https://shop.example.com/checkout"), ctx.Page)

	_, err = NewContext("::bad", "", "", "", "")
	assert.True(t, IsValidation(err))
}

func TestNewSentimentAnalysisBounds(t *testing.T) {
	a, err := NewSentimentAnalysis("f1", SentimentPositive, 0.7, 1, []string{"joy", "joy", " "}, []string{"great", "amazing"})
	require.NoError(t, err)
	assert.Equal(t, []string{"joy"}, a.Emotions)
	assert.Equal(t, []string{"amazing", "great"}, a.Keywords)

	_, err = NewSentimentAnalysis("f1", SentimentPositive, 1.2, 1, nil, nil)
	assert.Error(t, err)
	_, err = NewSentimentAnalysis("f1", SentimentNegative, 0.7, 6, nil, nil)
	assert.Error(t, err)
	_, err = NewSentimentAnalysis("f1", Sentiment("mixed"), 0.7, 1, nil, nil)
	assert.Error(t, err)
}

func TestPlaceholderAnalysis(t *testing.T) {
	p := NewPlaceholderAnalysis("f1")
	assert.Equal(t, SentimentNeutral, p.Sentiment)
	assert.Equal(t, 0.0, p.Confidence)
	assert.Equal(t, 1, p.UrgencyLevel)
	assert.False(t, p.IsAnalyzed())

	now := time.Now()
	p.AnalyzedAt = &now
	clone := p.Clone()
	assert.True(t, clone.IsAnalyzed())
	assert.NotSame(t, p.AnalyzedAt, clone.AnalyzedAt)
}

func TestTriagedFeedbackDefaults(t *testing.T) {
	item := TriagedFeedback{Feedback: Feedback{ID: "x"}}
	assert.Equal(t, SentimentNeutral, item.Sentiment())
	assert.Equal(t, 1, item.UrgencyLevel())
	assert.False(t, item.IsUrgent())

	item.Analysis = &SentimentAnalysis{Sentiment: SentimentNegative, UrgencyLevel: 4}
	assert.True(t, item.IsUrgent())
}

func TestParseWindow(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

	w, err := ParseWindow("7d", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-7*24*time.Hour), w.From)
	assert.Equal(t, now, w.To)
	assert.True(t, w.Contains(now.Add(-time.Hour)))
	assert.False(t, w.Contains(now), "upper bound is exclusive")

	def, err := ParseWindow("", now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-30*24*time.Hour), def.From)

	all, err := ParseWindow("all", now)
	require.NoError(t, err)
	assert.True(t, all.IsUnbounded())
	assert.True(t, all.Contains(time.Unix(0, 0)))

	_, err = ParseWindow("fortnight", now)
	assert.True(t, IsValidation(err))

	_, err = NewTimeWindow(now, now.Add(-time.Hour))
	assert.True(t, IsValidation(err))
}
