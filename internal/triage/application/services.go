package application

import (
	"context"
	"strings"
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// FeedbackRepository persists feedback and its 1:1 analysis record.
// Every id-taking method returns domain.ErrNotFound for unknown ids.
type FeedbackRepository interface {
	// Create stores the feedback together with its placeholder analysis. When the
	// call fails no feedback record may remain.
	Create(ctx context.Context, feedback *domain.Feedback, placeholder *domain.SentimentAnalysis) error
	FindByID(ctx context.Context, id string) (*domain.Feedback, error)
	FindAnalysis(ctx context.Context, feedbackID string) (*domain.SentimentAnalysis, error)
	// SaveAnalysis replaces the analysis record wholesale.
	SaveAnalysis(ctx context.Context, analysis *domain.SentimentAnalysis) error
	UpdateSuggestedResponse(ctx context.Context, feedbackID, response string) error
	SetProcessed(ctx context.Context, id string, value bool, at time.Time) error
	SetResponded(ctx context.Context, id string, value bool, at time.Time) error
	// Find returns one page ordered by urgency desc then creation time desc,
	// plus the total number of matches.
	Find(ctx context.Context, filter FeedbackFilter, paging Paging) ([]domain.TriagedFeedback, int, error)
	// ListWindow returns every item created inside the window, oldest first.
	ListWindow(ctx context.Context, window domain.TimeWindow) ([]domain.TriagedFeedback, error)
	// ListPending returns ids whose analysis is missing or still the placeholder, oldest first.
	ListPending(ctx context.Context, limit int) ([]string, error)
	// Delete removes the analysis and then the feedback.
	Delete(ctx context.Context, id string) error
}

// Notifier is told about newly analysed urgent feedback.
type Notifier interface {
	NotifyUrgent(ctx context.Context, item domain.TriagedFeedback) error
}

// FeedbackFilter expresses admin search criteria. Zero values match everything.
type FeedbackFilter struct {
	Source    domain.Source
	Type      domain.FeedbackType
	Sentiment domain.Sentiment
	Processed *bool
	Responded *bool
	Window    domain.TimeWindow
}

// Matches reports whether item satisfies the filter.
func (f FeedbackFilter) Matches(item domain.TriagedFeedback) bool {
	fb := item.Feedback
	if f.Source != "" && fb.Source != f.Source {
		return false
	}
	if f.Type != "" && fb.Type != f.Type {
		return false
	}
	if f.Sentiment != "" && item.Sentiment() != f.Sentiment {
		return false
	}
	if f.Processed != nil && fb.Processed != *f.Processed {
		return false
	}
	if f.Responded != nil && fb.Responded != *f.Responded {
		return false
	}
	return f.Window.Contains(fb.CreatedAt)
}

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// Paging controls pagination.
type Paging struct {
	Limit  int
	Offset int
}

// NewPaging validates limit and offset. A zero limit selects DefaultPageLimit.
func NewPaging(limit, offset int) (Paging, error) {
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit < 1 || limit > MaxPageLimit {
		return Paging{}, domain.NewValidationError("limit", "must be between 1 and %d", MaxPageLimit)
	}
	if offset < 0 {
		return Paging{}, domain.NewValidationError("offset", "must not be negative")
	}
	return Paging{Limit: limit, Offset: offset}, nil
}

// TriageService describes the feedback triage use-cases.
type TriageService interface {
	Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*domain.TriagedFeedback, error)
	Analyze(ctx context.Context, id string, force bool) (*domain.SentimentAnalysis, error)
	ImproveResponse(ctx context.Context, cmd ImproveResponseCommand) (*ResponseImprovement, error)
	Preview(content, feedbackType string) (*domain.SentimentAnalysis, error)
	List(ctx context.Context, filter FeedbackFilter, paging Paging) (*FeedbackPage, error)
	Detail(ctx context.Context, id string) (*domain.TriagedFeedback, error)
	Trends(ctx context.Context, window domain.TimeWindow, groupBy analysis.GroupBy) (*TrendReport, error)
	Stats(ctx context.Context, window domain.TimeWindow) (*analysis.StatsSnapshot, error)
	Summary(ctx context.Context, window domain.TimeWindow) (*DashboardSummary, error)
	MarkProcessed(ctx context.Context, id string, value bool) error
	MarkResponded(ctx context.Context, id string, value bool) error
	Export(ctx context.Context, cmd ExportCommand) (*ExportResult, error)
	Erase(ctx context.Context, id string) error
	AnalyzePending(ctx context.Context, limit int) (int, error)
}

// SubmitFeedbackCommand captures a customer submission as received.
type SubmitFeedbackCommand struct {
	Source       string
	Type         string
	Content      string
	Rating       *int
	CustomerInfo *CustomerInfoInput
	Context      *ContextInput
}

// CustomerInfoInput holds the optional personal data of a submission.
type CustomerInfoInput struct {
	ID    string
	Name  string
	Email string
	Phone string
	Tier  string
}

// ContextInput holds optional submission metadata.
type ContextInput struct {
	Page      string
	UserAgent string
	Locale    string
	Campaign  string
	OrderID   string
}

// ImproveResponseCommand requests a rewrite of the suggested reply. An empty
// CurrentResponse rewrites the stored suggestion.
type ImproveResponseCommand struct {
	FeedbackID      string
	CurrentResponse string
	Tone            string
	Length          string
}

type ResponseImprovement struct {
	FeedbackID       string
	OriginalResponse string
	ImprovedResponse string
	Tone             analysis.Tone
	Length           analysis.Length
	Adjustments      []string
}

// FeedbackPage is one page of the triage list.
type FeedbackPage struct {
	Items   []domain.TriagedFeedback
	Total   int
	Limit   int
	Offset  int
	HasMore bool
}

type TrendReport struct {
	Window  domain.TimeWindow
	GroupBy analysis.GroupBy
	Buckets []analysis.TrendBucket
	Summary analysis.TrendSummary
}

// DashboardSummary bundles the stats tiles with the daily trend series.
type DashboardSummary struct {
	Stats  analysis.StatsSnapshot
	Trends TrendReport
}

type ExportFormat string

const (
	ExportJSON ExportFormat = "json"
	ExportCSV  ExportFormat = "csv"
)

func ParseExportFormat(value string) (ExportFormat, error) {
	switch ExportFormat(strings.ToLower(strings.TrimSpace(value))) {
	case "", ExportJSON:
		return ExportJSON, nil
	case ExportCSV:
		return ExportCSV, nil
	}
	return "", domain.NewValidationError("format", "invalid value %q", value)
}

// ExportCommand selects the items to export.
type ExportCommand struct {
	Window              domain.TimeWindow
	Format              string
	IncludePersonalInfo bool
}

// ExportResult holds the exported items. CustomerInfo is zeroed unless
// IncludePersonalInfo was requested.
type ExportResult struct {
	Format              ExportFormat
	Window              domain.TimeWindow
	Items               []domain.TriagedFeedback
	IncludePersonalInfo bool
	GeneratedAt         time.Time
	TotalRecords        int
}
