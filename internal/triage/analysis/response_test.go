package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func TestSuggestResponse(t *testing.T) {
	cases := []struct {
		sentiment domain.Sentiment
		kind      domain.FeedbackType
		want      string
	}{
		{domain.SentimentNegative, domain.TypeComplaint, ComplaintResponse},
		{domain.SentimentNegative, domain.TypeBugReport, BugReportResponse},
		{domain.SentimentNegative, domain.TypeFeatureRequest, ""},
		{domain.SentimentPositive, domain.TypePraise, GratitudeResponse},
		{domain.SentimentPositive, domain.TypeBugReport, GratitudeResponse},
		{domain.SentimentNeutral, domain.TypeComplaint, ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SuggestResponse(tc.sentiment, tc.kind), "%s/%s", tc.sentiment, tc.kind)
	}
}

func TestImproveResponse(t *testing.T) {
	current := "We are fixing the checkout bug."

	t.Run("brief discards current text", func(t *testing.T) {
		got := ImproveResponse(current, ToneFriendly, LengthBrief)
		assert.Equal(t, toneOpenings[ToneFriendly]+" "+briefClosing, got.Response)
		assert.NotContains(t, got.Response, current)
	})

	t.Run("medium keeps current text", func(t *testing.T) {
		got := ImproveResponse(current, ToneProfessional, LengthMedium)
		assert.Equal(t, toneOpenings[ToneProfessional]+" "+current, got.Response)
		assert.Equal(t, []string{"Adjusted tone to professional", "Targeted medium length"}, got.Adjustments)
	})

	t.Run("detailed appends invitation", func(t *testing.T) {
		got := ImproveResponse(current, ToneEmpathetic, LengthDetailed)
		assert.True(t, strings.HasPrefix(got.Response, toneOpenings[ToneEmpathetic]))
		assert.True(t, strings.HasSuffix(got.Response, detailedClosing))
		assert.Contains(t, got.Response, current)
		assert.Contains(t, got.Adjustments, "Added empathetic framing")
	})

	t.Run("empty current text", func(t *testing.T) {
		got := ImproveResponse("", ToneFormal, LengthMedium)
		assert.Equal(t, toneOpenings[ToneFormal], got.Response)
	})

	t.Run("deterministic", func(t *testing.T) {
		assert.Equal(t, ImproveResponse(current, ToneFormal, LengthDetailed), ImproveResponse(current, ToneFormal, LengthDetailed))
	})
}

func TestParseToneAndLength(t *testing.T) {
	tone, err := ParseTone("")
	require.NoError(t, err)
	assert.Equal(t, ToneProfessional, tone)
	tone, err = ParseTone("Empathetic")
	require.NoError(t, err)
	assert.Equal(t, ToneEmpathetic, tone)
	_, err = ParseTone("sarcastic")
	assert.True(t, domain.IsValidation(err))

	length, err := ParseLength("")
	require.NoError(t, err)
	assert.Equal(t, LengthMedium, length)
	_, err = ParseLength("epic")
	assert.True(t, domain.IsValidation(err))
}
