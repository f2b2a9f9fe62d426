package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

var base = time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC)

func seed(t *testing.T, repo *FeedbackRepository, id string, at time.Time, urgency int, analysed bool) {
	t.Helper()
	fb := &domain.Feedback{ID: id, Source: domain.SourceWebsite, Type: domain.TypeComplaint, Content: "text", CreatedAt: at}
	require.NoError(t, repo.Create(context.Background(), fb, domain.NewPlaceholderAnalysis(id)))
	if analysed {
		a, err := domain.NewSentimentAnalysis(id, domain.SentimentNegative, 0.8, urgency, nil, nil)
		require.NoError(t, err)
		a.AnalyzedAt = &at
		require.NoError(t, repo.SaveAnalysis(context.Background(), a))
	}
}

func TestFeedbackRepository_NotFound(t *testing.T) {
	repo := NewFeedbackRepository()
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = repo.FindAnalysis(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, repo.SaveAnalysis(ctx, domain.NewPlaceholderAnalysis("missing")), domain.ErrNotFound)
	assert.ErrorIs(t, repo.UpdateSuggestedResponse(ctx, "missing", "x"), domain.ErrNotFound)
	assert.ErrorIs(t, repo.SetProcessed(ctx, "missing", true, base), domain.ErrNotFound)
	assert.ErrorIs(t, repo.SetResponded(ctx, "missing", true, base), domain.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), domain.ErrNotFound)
}

func TestFeedbackRepository_CreateRejectsDuplicate(t *testing.T) {
	repo := NewFeedbackRepository()
	seed(t, repo, "a", base, 1, false)
	err := repo.Create(context.Background(), &domain.Feedback{ID: "a"}, nil)
	assert.Error(t, err)
	assert.Equal(t, 1, repo.Len())
}

func TestFeedbackRepository_ReturnsCopies(t *testing.T) {
	repo := NewFeedbackRepository()
	seed(t, repo, "a", base, 5, true)
	ctx := context.Background()

	a, err := repo.FindAnalysis(ctx, "a")
	require.NoError(t, err)
	a.Keywords = append(a.Keywords, "mutated")
	a.SuggestedResponse = "mutated"

	again, err := repo.FindAnalysis(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, again.Keywords)
	assert.Empty(t, again.SuggestedResponse)
}

func TestFeedbackRepository_FindOrdersAndPaginates(t *testing.T) {
	repo := NewFeedbackRepository()
	seed(t, repo, "old-urgent", base, 5, true)
	seed(t, repo, "new-urgent", base.Add(time.Hour), 5, true)
	seed(t, repo, "calm", base.Add(2*time.Hour), 1, false)
	seed(t, repo, "medium", base.Add(-time.Hour), 3, true)

	items, total, err := repo.Find(context.Background(), application.FeedbackFilter{}, application.Paging{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	var ids []string
	for _, item := range items {
		ids = append(ids, item.Feedback.ID)
	}
	assert.Equal(t, []string{"new-urgent", "old-urgent", "medium"}, ids)

	items, total, err = repo.Find(context.Background(), application.FeedbackFilter{}, application.Paging{Limit: 3, Offset: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 1)
	assert.Equal(t, "calm", items[0].Feedback.ID)

	items, _, err = repo.Find(context.Background(), application.FeedbackFilter{}, application.Paging{Limit: 3, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestFeedbackRepository_FindFilters(t *testing.T) {
	repo := NewFeedbackRepository()
	ctx := context.Background()
	seed(t, repo, "a", base, 4, true)
	seed(t, repo, "b", base.Add(48*time.Hour), 1, false)
	require.NoError(t, repo.SetProcessed(ctx, "b", true, base))

	processed := true
	items, total, err := repo.Find(ctx, application.FeedbackFilter{Processed: &processed}, application.Paging{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "b", items[0].Feedback.ID)

	items, _, err = repo.Find(ctx, application.FeedbackFilter{Sentiment: domain.SentimentNegative}, application.Paging{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Feedback.ID)

	window := domain.TimeWindow{From: base.Add(time.Hour)}
	items, _, err = repo.Find(ctx, application.FeedbackFilter{Window: window}, application.Paging{Limit: 10})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].Feedback.ID)
}

func TestFeedbackRepository_ListPending(t *testing.T) {
	repo := NewFeedbackRepository()
	for i := 0; i < 5; i++ {
		seed(t, repo, fmt.Sprintf("p%d", i), base.Add(time.Duration(i)*time.Minute), 1, i%2 == 0)
	}
	ids, err := repo.ListPending(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p3"}, ids)

	ids, err = repo.ListPending(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, ids)
}

func TestFeedbackRepository_DeleteCascades(t *testing.T) {
	repo := NewFeedbackRepository()
	ctx := context.Background()
	seed(t, repo, "a", base, 5, true)

	require.NoError(t, repo.Delete(ctx, "a"))
	_, err := repo.FindAnalysis(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, repo.Len())
}
