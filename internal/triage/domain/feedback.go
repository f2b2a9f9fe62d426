package domain

import "time"

// Feedback is one customer submission.
type Feedback struct {
	ID           string
	Source       Source
	Type         FeedbackType
	Content      Content
	Rating       *Rating
	CustomerInfo CustomerInfo
	Context      Context
	Processed    bool
	Responded    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TriagedFeedback pairs a submission with its analysis. Analysis is nil when the
// store has no analysis record for the feedback.
type TriagedFeedback struct {
	Feedback Feedback
	Analysis *SentimentAnalysis
}

// Sentiment returns the analysed sentiment, treating a missing analysis as neutral.
func (t TriagedFeedback) Sentiment() Sentiment {
	if t.Analysis == nil || t.Analysis.Sentiment == "" {
		return SentimentNeutral
	}
	return t.Analysis.Sentiment
}

// UrgencyLevel returns the analysed urgency, 1 when no analysis exists.
func (t TriagedFeedback) UrgencyLevel() int {
	if t.Analysis == nil {
		return MinUrgency
	}
	return t.Analysis.UrgencyLevel
}

// IsUrgent reports whether the item sits at or above the urgent threshold.
func (t TriagedFeedback) IsUrgent() bool {
	return t.UrgencyLevel() >= UrgentThreshold
}
