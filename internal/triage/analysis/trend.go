package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

type GroupBy string

const (
	GroupByDay   GroupBy = "day"
	GroupByWeek  GroupBy = "week"
	GroupByMonth GroupBy = "month"
)

func ParseGroupBy(value string) (GroupBy, error) {
	v := GroupBy(strings.ToLower(strings.TrimSpace(value)))
	switch v {
	case "":
		return GroupByDay, nil
	case GroupByDay, GroupByWeek, GroupByMonth:
		return v, nil
	}
	return "", domain.NewValidationError("groupBy", "invalid value %q", value)
}

// TrendBucket holds sentiment counts for one time bucket.
type TrendBucket struct {
	Key                string
	Positive           int
	Negative           int
	Neutral            int
	Total              int
	PositivePercentage int
	NegativePercentage int
	NeutralPercentage  int
}

// TrendSummary accompanies a trend series.
type TrendSummary struct {
	TotalFeedback    int
	AverageSentiment float64
}

// BucketKey returns the bucket a timestamp falls into. Weeks are ISO-8601
// calendar weeks of the UTC time.
func BucketKey(t time.Time, groupBy GroupBy) string {
	t = t.UTC()
	switch groupBy {
	case GroupByWeek:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	case GroupByMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// AggregateTrends buckets items by creation time. Buckets are sorted by key.
func AggregateTrends(items []domain.TriagedFeedback, groupBy GroupBy) []TrendBucket {
	index := make(map[string]*TrendBucket)
	for _, item := range items {
		key := BucketKey(item.Feedback.CreatedAt, groupBy)
		bucket, ok := index[key]
		if !ok {
			bucket = &TrendBucket{Key: key}
			index[key] = bucket
		}
		switch item.Sentiment() {
		case domain.SentimentPositive:
			bucket.Positive++
		case domain.SentimentNegative:
			bucket.Negative++
		default:
			bucket.Neutral++
		}
		bucket.Total++
	}

	buckets := make([]TrendBucket, 0, len(index))
	for _, bucket := range index {
		bucket.PositivePercentage = percentage(bucket.Positive, bucket.Total)
		bucket.NegativePercentage = percentage(bucket.Negative, bucket.Total)
		bucket.NeutralPercentage = percentage(bucket.Neutral, bucket.Total)
		buckets = append(buckets, *bucket)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}

func SummarizeTrend(items []domain.TriagedFeedback) TrendSummary {
	return TrendSummary{
		TotalFeedback:    len(items),
		AverageSentiment: averageSentiment(items),
	}
}

func averageSentiment(items []domain.TriagedFeedback) float64 {
	if len(items) == 0 {
		return 0
	}
	sum := 0
	for _, item := range items {
		sum += item.Sentiment().Score()
	}
	return roundTo(float64(sum)/float64(len(items)), 2)
}

// percentage returns round(100*part/total), 0 when total is 0.
func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(total)))
}

func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
