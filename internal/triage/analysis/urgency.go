package analysis

import "github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"

// ScoreUrgency derives the 1..5 response priority from negative signal strength.
// Positive and neutral items are never urgent.
func ScoreUrgency(sentiment domain.Sentiment, negativeHits int) int {
	if sentiment != domain.SentimentNegative {
		return domain.MinUrgency
	}
	if negativeHits < 0 {
		negativeHits = 0
	}
	return min(domain.MaxUrgency, 2+negativeHits)
}
