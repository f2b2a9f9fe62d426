package analysis

import "github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"

// StatsSnapshot aggregates counts and rates over a window.
type StatsSnapshot struct {
	Window              domain.TimeWindow
	Total               int
	Processed           int
	ProcessedPercentage int
	Responded           int
	ResponseRate        int
	Urgent              int
	UrgentPercentage    int
	BySentiment         map[domain.Sentiment]int
	BySource            map[domain.Source]int
	ByType              map[domain.FeedbackType]int
	AverageSentiment    float64
	AverageRating       float64
}

// Summarize computes a StatsSnapshot. Every ratio is 0 for an empty window.
func Summarize(items []domain.TriagedFeedback, window domain.TimeWindow) StatsSnapshot {
	snap := StatsSnapshot{
		Window:      window,
		Total:       len(items),
		BySentiment: make(map[domain.Sentiment]int),
		BySource:    make(map[domain.Source]int),
		ByType:      make(map[domain.FeedbackType]int),
	}

	ratingSum, rated := 0, 0
	for _, item := range items {
		fb := item.Feedback
		if fb.Processed {
			snap.Processed++
		}
		if fb.Responded {
			snap.Responded++
		}
		if item.IsUrgent() {
			snap.Urgent++
		}
		if fb.Rating != nil {
			ratingSum += fb.Rating.Int()
			rated++
		}
		snap.BySentiment[item.Sentiment()]++
		snap.BySource[fb.Source]++
		snap.ByType[fb.Type]++
	}

	snap.ProcessedPercentage = percentage(snap.Processed, snap.Total)
	snap.ResponseRate = percentage(snap.Responded, snap.Total)
	snap.UrgentPercentage = percentage(snap.Urgent, snap.Total)
	snap.AverageSentiment = averageSentiment(items)
	if rated > 0 {
		snap.AverageRating = roundTo(float64(ratingSum)/float64(rated), 2)
	}
	return snap
}
