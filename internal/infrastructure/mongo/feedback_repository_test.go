package mongo

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func TestFeedbackDocumentMapping(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	rating := domain.Rating(3)
	fb := &domain.Feedback{
		ID:           "c0ffee",
		Source:       domain.SourceSocial,
		Type:         domain.TypeFeatureRequest,
		Content:      "Please add dark mode",
		Rating:       &rating,
		CustomerInfo: domain.CustomerInfo{Name: "Rin", Email: "rin@example.com", Tier: "gold"},
		Context:      domain.Context{Page: "https://example.com/settings", Locale: "en-GB"},
		Processed:    true,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	doc := mapFeedbackToDocument(fb)
	require.NotNil(t, doc.CustomerInfo)
	require.NotNil(t, doc.Context)
	assert.Equal(t, "rin@example.com", doc.CustomerInfo.Email)

	back := mapFeedbackDocument(doc)
	if diff := cmp.Diff(*fb, back); diff != "" {
		t.Fatalf("feedback mapping mismatch (-want +got):\n%s", diff)
	}
}

func TestFeedbackDocumentMapping_OmitsEmptyParts(t *testing.T) {
	doc := mapFeedbackToDocument(&domain.Feedback{ID: "x", Content: "hi"})
	assert.Nil(t, doc.CustomerInfo)
	assert.Nil(t, doc.Context)
	assert.Nil(t, doc.Rating)
}

func TestAnalysisDocumentMapping(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	a := &domain.SentimentAnalysis{
		FeedbackID:   "c0ffee",
		Sentiment:    domain.SentimentNegative,
		Confidence:   0.8,
		UrgencyLevel: 4,
		Emotions:     []string{"anger"},
		Keywords:     []string{"broken", "slow"},
		Classifier:   "lexical",
		AnalyzedAt:   &at,
	}
	back := mapAnalysisDocument(mapAnalysisToDocument(a))
	if diff := cmp.Diff(a, back); diff != "" {
		t.Fatalf("analysis mapping mismatch (-want +got):\n%s", diff)
	}

	placeholder := mapAnalysisToDocument(domain.NewPlaceholderAnalysis("p"))
	assert.Nil(t, placeholder.AnalyzedAt)
	assert.NotNil(t, placeholder.Emotions, "sets are stored as arrays, never null")
}

func TestAnalysisDocumentBSONRoundTrip(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)
	a := &domain.SentimentAnalysis{
		FeedbackID:        "c0ffee",
		Sentiment:         domain.SentimentNegative,
		Confidence:        0.8,
		UrgencyLevel:      4,
		Emotions:          []string{"anger"},
		Keywords:          []string{"broken"},
		SuggestedResponse: "Sorry about that.",
		Classifier:        "lexical",
		AnalyzedAt:        &at,
	}
	raw, err := bson.Marshal(mapAnalysisToDocument(a))
	require.NoError(t, err)
	var doc AnalysisDocument
	require.NoError(t, bson.Unmarshal(raw, &doc))
	if diff := cmp.Diff(a, mapAnalysisDocument(doc)); diff != "" {
		t.Fatalf("millisecond timestamps survive storage (-want +got):\n%s", diff)
	}
}

func TestFeedbackMatch(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	processed := false
	got := feedbackMatch(application.FeedbackFilter{
		Source:    domain.SourceEmail,
		Type:      domain.TypeComplaint,
		Processed: &processed,
		Window:    domain.TimeWindow{From: from, To: to},
	})
	want := bson.M{
		"source":    "email",
		"type":      "complaint",
		"processed": false,
		"createdAt": bson.M{"$gte": from, "$lt": to},
	}
	assert.Equal(t, want, got)
	assert.Equal(t, bson.M{}, feedbackMatch(application.FeedbackFilter{}))
}

func TestSentimentMatch(t *testing.T) {
	assert.Equal(t, bson.M{"analysis.sentiment": "positive"}, sentimentMatch(domain.SentimentPositive))
	assert.Equal(t,
		bson.M{"analysis.sentiment": bson.M{"$in": bson.A{"neutral", nil}}},
		sentimentMatch(domain.SentimentNeutral),
	)
}

func stageNames(p mongo.Pipeline) []string {
	names := make([]string, 0, len(p))
	for _, stage := range p {
		names = append(names, stage[0].Key)
	}
	return names
}

func TestListPipeline(t *testing.T) {
	p := listPipeline("sentiment_analyses", application.FeedbackFilter{Sentiment: domain.SentimentNegative}, application.Paging{Limit: 20, Offset: 40})
	assert.Equal(t, []string{"$match", "$lookup", "$unwind", "$match", "$addFields", "$sort", "$facet"}, stageNames(p))

	facet := p[len(p)-1][0].Value.(bson.M)
	assert.Equal(t, bson.A{bson.M{"$skip": int64(40)}, bson.M{"$limit": int64(20)}}, facet["items"])

	lookup := p[1][0].Value.(bson.M)
	assert.Equal(t, "sentiment_analyses", lookup["from"])

	p = listPipeline("sentiment_analyses", application.FeedbackFilter{}, application.Paging{Limit: 5})
	assert.Equal(t, []string{"$match", "$lookup", "$unwind", "$addFields", "$sort", "$facet"}, stageNames(p))
}

func TestPendingPipeline(t *testing.T) {
	p := pendingPipeline("sentiment_analyses", 50)
	assert.Equal(t, []string{"$lookup", "$unwind", "$match", "$sort", "$limit", "$project"}, stageNames(p))
	assert.Equal(t, bson.M{"analysis.analyzedAt": nil}, p[2][0].Value)
}

func TestWindowPipeline(t *testing.T) {
	p := windowPipeline("sentiment_analyses", domain.TimeWindow{})
	assert.Equal(t, []string{"$match", "$lookup", "$unwind", "$sort"}, stageNames(p))
	assert.Equal(t, bson.M{}, p[0][0].Value)
}

func TestTranslateNotFound(t *testing.T) {
	assert.ErrorIs(t, translateNotFound(mongo.ErrNoDocuments), domain.ErrNotFound)
	other := errors.New("timeout")
	assert.Equal(t, other, translateNotFound(other))
}
