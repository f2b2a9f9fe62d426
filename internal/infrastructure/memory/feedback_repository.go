// Package memory provides a process-local FeedbackRepository used by tests and
// CLI dry runs.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

type FeedbackRepository struct {
	mu       sync.RWMutex
	feedback map[string]domain.Feedback
	analyses map[string]*domain.SentimentAnalysis
}

func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{
		feedback: make(map[string]domain.Feedback),
		analyses: make(map[string]*domain.SentimentAnalysis),
	}
}

var _ application.FeedbackRepository = (*FeedbackRepository)(nil)

func (r *FeedbackRepository) Create(_ context.Context, feedback *domain.Feedback, placeholder *domain.SentimentAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.feedback[feedback.ID]; exists {
		return fmt.Errorf("feedback %s already exists", feedback.ID)
	}
	r.feedback[feedback.ID] = cloneFeedback(*feedback)
	if placeholder != nil {
		r.analyses[feedback.ID] = placeholder.Clone()
	}
	return nil
}

func (r *FeedbackRepository) FindByID(_ context.Context, id string) (*domain.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fb, ok := r.feedback[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := cloneFeedback(fb)
	return &out, nil
}

func (r *FeedbackRepository) FindAnalysis(_ context.Context, feedbackID string) (*domain.SentimentAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.analyses[feedbackID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a.Clone(), nil
}

func (r *FeedbackRepository) SaveAnalysis(_ context.Context, analysis *domain.SentimentAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.feedback[analysis.FeedbackID]; !ok {
		return domain.ErrNotFound
	}
	r.analyses[analysis.FeedbackID] = analysis.Clone()
	return nil
}

func (r *FeedbackRepository) UpdateSuggestedResponse(_ context.Context, feedbackID, response string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.analyses[feedbackID]
	if !ok {
		return domain.ErrNotFound
	}
	a.SuggestedResponse = response
	return nil
}

func (r *FeedbackRepository) SetProcessed(_ context.Context, id string, value bool, at time.Time) error {
	return r.update(id, at, func(fb *domain.Feedback) { fb.Processed = value })
}

func (r *FeedbackRepository) SetResponded(_ context.Context, id string, value bool, at time.Time) error {
	return r.update(id, at, func(fb *domain.Feedback) { fb.Responded = value })
}

func (r *FeedbackRepository) update(id string, at time.Time, mutate func(*domain.Feedback)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fb, ok := r.feedback[id]
	if !ok {
		return domain.ErrNotFound
	}
	mutate(&fb)
	fb.UpdatedAt = at
	r.feedback[id] = fb
	return nil
}

func (r *FeedbackRepository) Find(_ context.Context, filter application.FeedbackFilter, paging application.Paging) ([]domain.TriagedFeedback, int, error) {
	r.mu.RLock()
	items := r.collect(filter.Matches)
	r.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.UrgencyLevel() != b.UrgencyLevel() {
			return a.UrgencyLevel() > b.UrgencyLevel()
		}
		if !a.Feedback.CreatedAt.Equal(b.Feedback.CreatedAt) {
			return a.Feedback.CreatedAt.After(b.Feedback.CreatedAt)
		}
		return a.Feedback.ID < b.Feedback.ID
	})

	total := len(items)
	start := min(paging.Offset, total)
	end := total
	if paging.Limit > 0 {
		end = min(start+paging.Limit, total)
	}
	return items[start:end], total, nil
}

func (r *FeedbackRepository) ListWindow(_ context.Context, window domain.TimeWindow) ([]domain.TriagedFeedback, error) {
	r.mu.RLock()
	items := r.collect(func(item domain.TriagedFeedback) bool {
		return window.Contains(item.Feedback.CreatedAt)
	})
	r.mu.RUnlock()
	sortOldestFirst(items)
	return items, nil
}

func (r *FeedbackRepository) ListPending(_ context.Context, limit int) ([]string, error) {
	r.mu.RLock()
	items := r.collect(func(item domain.TriagedFeedback) bool {
		return !item.Analysis.IsAnalyzed()
	})
	r.mu.RUnlock()
	sortOldestFirst(items)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.Feedback.ID)
	}
	return ids, nil
}

func (r *FeedbackRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.feedback[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.analyses, id)
	delete(r.feedback, id)
	return nil
}

// Len returns the number of stored feedback records.
func (r *FeedbackRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.feedback)
}

// collect must be called with r.mu held.
func (r *FeedbackRepository) collect(keep func(domain.TriagedFeedback) bool) []domain.TriagedFeedback {
	items := make([]domain.TriagedFeedback, 0, len(r.feedback))
	for id, fb := range r.feedback {
		item := domain.TriagedFeedback{Feedback: cloneFeedback(fb), Analysis: r.analyses[id].Clone()}
		if keep(item) {
			items = append(items, item)
		}
	}
	return items
}

func sortOldestFirst(items []domain.TriagedFeedback) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].Feedback, items[j].Feedback
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

func cloneFeedback(fb domain.Feedback) domain.Feedback {
	if fb.Rating != nil {
		rating := *fb.Rating
		fb.Rating = &rating
	}
	return fb
}
