package domain

import (
	"sort"
	"strings"
	"time"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Sentiments lists the three polarity values in display order.
var Sentiments = []Sentiment{SentimentPositive, SentimentNegative, SentimentNeutral}

const (
	MinUrgency      = 1
	MaxUrgency      = 5
	UrgentThreshold = 4
)

func NewSentiment(value string) (Sentiment, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	for _, allowed := range Sentiments {
		if string(allowed) == trimmed {
			return allowed, nil
		}
	}
	return "", NewValidationError("sentiment", "invalid value %q", value)
}

func (s Sentiment) String() string {
	return string(s)
}

// Score maps positive/neutral/negative onto +1/0/-1.
func (s Sentiment) Score() int {
	switch s {
	case SentimentPositive:
		return 1
	case SentimentNegative:
		return -1
	default:
		return 0
	}
}

// SentimentAnalysis is the 1:1 analysis record of a Feedback.
type SentimentAnalysis struct {
	FeedbackID        string
	Sentiment         Sentiment
	Confidence        float64
	UrgencyLevel      int
	Emotions          []string
	Keywords          []string
	SuggestedResponse string
	Classifier        string
	AnalyzedAt        *time.Time
}

// NewPlaceholderAnalysis returns the record written at submission time.
func NewPlaceholderAnalysis(feedbackID string) *SentimentAnalysis {
	return &SentimentAnalysis{
		FeedbackID:   feedbackID,
		Sentiment:    SentimentNeutral,
		Confidence:   0,
		UrgencyLevel: MinUrgency,
	}
}

// NewSentimentAnalysis validates bounds and normalises the emotion/keyword sets.
func NewSentimentAnalysis(feedbackID string, sentiment Sentiment, confidence float64, urgency int, emotions, keywords []string) (*SentimentAnalysis, error) {
	if _, err := NewSentiment(string(sentiment)); err != nil {
		return nil, err
	}
	if confidence < 0 || confidence > 1 {
		return nil, NewValidationError("confidence", "must be within [0,1]")
	}
	if urgency < MinUrgency || urgency > MaxUrgency {
		return nil, NewValidationError("urgencyLevel", "must be within [%d,%d]", MinUrgency, MaxUrgency)
	}
	return &SentimentAnalysis{
		FeedbackID:   feedbackID,
		Sentiment:    sentiment,
		Confidence:   confidence,
		UrgencyLevel: urgency,
		Emotions:     NormalizeSet(emotions),
		Keywords:     NormalizeSet(keywords),
	}, nil
}

// IsAnalyzed reports whether the record holds a real classification rather than
// the submission placeholder.
func (a *SentimentAnalysis) IsAnalyzed() bool {
	return a != nil && a.AnalyzedAt != nil
}

// Clone returns a deep copy so callers never share slices with a store.
func (a *SentimentAnalysis) Clone() *SentimentAnalysis {
	if a == nil {
		return nil
	}
	out := *a
	out.Emotions = append([]string(nil), a.Emotions...)
	out.Keywords = append([]string(nil), a.Keywords...)
	if a.AnalyzedAt != nil {
		at := *a.AnalyzedAt
		out.AnalyzedAt = &at
	}
	return &out
}

// NormalizeSet trims, de-duplicates and sorts a string set.
func NormalizeSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	if len(result) == 0 {
		return nil
	}
	sort.Strings(result)
	return result
}
