package admin

import (
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// feedbackDomainToResponse converts a triaged item into the admin payload.
func feedbackDomainToResponse(item domain.TriagedFeedback) feedbackResponse {
	fb := item.Feedback
	resp := feedbackResponse{
		ID:        fb.ID,
		Source:    fb.Source.String(),
		Type:      fb.Type.String(),
		Content:   fb.Content.String(),
		Processed: fb.Processed,
		Responded: fb.Responded,
		CreatedAt: fb.CreatedAt,
		UpdatedAt: fb.UpdatedAt,
	}
	if fb.Rating != nil {
		v := fb.Rating.Int()
		resp.Rating = &v
	}
	if !fb.CustomerInfo.IsZero() {
		resp.CustomerInfo = &customerInfoResponse{
			ID:    fb.CustomerInfo.ID,
			Name:  fb.CustomerInfo.Name,
			Email: fb.CustomerInfo.Email.String(),
			Phone: fb.CustomerInfo.Phone,
			Tier:  fb.CustomerInfo.Tier,
		}
	}
	if !fb.Context.IsZero() {
		resp.Context = &contextResponse{
			Page:      fb.Context.Page.String(),
			UserAgent: fb.Context.UserAgent,
			Locale:    fb.Context.Locale,
			Campaign:  fb.Context.Campaign,
			OrderID:   fb.Context.OrderID,
		}
	}
	if item.Analysis != nil {
		a := analysisDomainToResponse(*item.Analysis)
		resp.Analysis = &a
	}
	return resp
}

func analysisDomainToResponse(a domain.SentimentAnalysis) analysisResponse {
	return analysisResponse{
		Sentiment:         a.Sentiment.String(),
		Confidence:        a.Confidence,
		UrgencyLevel:      a.UrgencyLevel,
		Emotions:          nonNil(a.Emotions),
		Keywords:          nonNil(a.Keywords),
		SuggestedResponse: a.SuggestedResponse,
		Classifier:        a.Classifier,
		Analyzed:          a.IsAnalyzed(),
		AnalyzedAt:        a.AnalyzedAt,
	}
}

func windowToResponse(w domain.TimeWindow) windowResponse {
	var resp windowResponse
	if !w.From.IsZero() {
		from := w.From
		resp.From = &from
	}
	if !w.To.IsZero() {
		to := w.To
		resp.To = &to
	}
	return resp
}

func trendReportToResponse(report application.TrendReport) trendsResponse {
	buckets := make([]trendBucketResponse, 0, len(report.Buckets))
	for _, b := range report.Buckets {
		buckets = append(buckets, trendBucketResponse{
			Key:                b.Key,
			Positive:           b.Positive,
			Negative:           b.Negative,
			Neutral:            b.Neutral,
			Total:              b.Total,
			PositivePercentage: b.PositivePercentage,
			NegativePercentage: b.NegativePercentage,
			NeutralPercentage:  b.NeutralPercentage,
		})
	}
	return trendsResponse{
		Range:   windowToResponse(report.Window),
		GroupBy: string(report.GroupBy),
		Buckets: buckets,
		Summary: trendSummaryResponse{
			TotalFeedback:    report.Summary.TotalFeedback,
			AverageSentiment: report.Summary.AverageSentiment,
		},
	}
}

func statsToResponse(s analysis.StatsSnapshot) statsResponse {
	resp := statsResponse{
		Range:               windowToResponse(s.Window),
		Total:               s.Total,
		Processed:           s.Processed,
		ProcessedPercentage: s.ProcessedPercentage,
		Responded:           s.Responded,
		ResponseRate:        s.ResponseRate,
		Urgent:              s.Urgent,
		UrgentPercentage:    s.UrgentPercentage,
		BySentiment:         make(map[string]int, len(s.BySentiment)),
		BySource:            make(map[string]int, len(s.BySource)),
		ByType:              make(map[string]int, len(s.ByType)),
		AverageSentiment:    s.AverageSentiment,
		AverageRating:       s.AverageRating,
	}
	for k, v := range s.BySentiment {
		resp.BySentiment[k.String()] = v
	}
	for k, v := range s.BySource {
		resp.BySource[k.String()] = v
	}
	for k, v := range s.ByType {
		resp.ByType[k.String()] = v
	}
	return resp
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func exportFilename(now time.Time, format application.ExportFormat) string {
	return "feedback-export-" + now.UTC().Format("20060102-150405") + "." + string(format)
}
