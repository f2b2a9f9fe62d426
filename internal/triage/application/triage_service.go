package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

const defaultSweepConcurrency = 4

// ServiceConfig wires the collaborators of the triage service.
type ServiceConfig struct {
	Repository FeedbackRepository
	Classifier analysis.Classifier
	Notifier   Notifier
	Logger     *zap.Logger

	// AutoAnalyze runs Analyze right after a successful Submit.
	AutoAnalyze bool
	// SweepConcurrency bounds AnalyzePending. Defaults to 4.
	SweepConcurrency int

	Now   func() time.Time
	NewID func() string
}

type triageService struct {
	repo        FeedbackRepository
	classifier  analysis.Classifier
	notifier    Notifier
	logger      *zap.Logger
	autoAnalyze bool
	concurrency int
	now         func() time.Time
	newID       func() string

	analyzeGroup singleflight.Group
}

func NewTriageService(cfg ServiceConfig) (TriageService, error) {
	if cfg.Repository == nil {
		return nil, errors.New("triage service: repository is required")
	}
	if cfg.Classifier == nil {
		return nil, errors.New("triage service: classifier is required")
	}
	s := &triageService{
		repo:        cfg.Repository,
		classifier:  cfg.Classifier,
		notifier:    cfg.Notifier,
		logger:      cfg.Logger,
		autoAnalyze: cfg.AutoAnalyze,
		concurrency: cfg.SweepConcurrency,
		now:         cfg.Now,
		newID:       cfg.NewID,
	}
	if s.notifier == nil {
		s.notifier = NopNotifier{}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultSweepConcurrency
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	return s, nil
}

func (s *triageService) Submit(ctx context.Context, cmd SubmitFeedbackCommand) (*domain.TriagedFeedback, error) {
	feedback, err := buildFeedbackFromCommand(cmd)
	if err != nil {
		return nil, err
	}
	now := s.stamp()
	feedback.ID = s.newID()
	feedback.CreatedAt = now
	feedback.UpdatedAt = now

	placeholder := domain.NewPlaceholderAnalysis(feedback.ID)
	if err := s.repo.Create(ctx, feedback, placeholder); err != nil {
		return nil, fmt.Errorf("create feedback: %w", err)
	}
	result := &domain.TriagedFeedback{Feedback: *feedback, Analysis: placeholder}

	if s.autoAnalyze {
		analysed, err := s.Analyze(ctx, feedback.ID, false)
		if err != nil {
			s.logger.Warn("auto analysis failed", zap.String("feedbackId", feedback.ID), zap.Error(err))
			return result, nil
		}
		result.Analysis = analysed
	}
	return result, nil
}

// Analyze classifies the feedback unless a real analysis already exists and
// force is false. Concurrent calls with the same arguments share one run.
func (s *triageService) Analyze(ctx context.Context, id string, force bool) (*domain.SentimentAnalysis, error) {
	key := id + "|" + strconv.FormatBool(force)
	v, err, _ := s.analyzeGroup.Do(key, func() (any, error) {
		return s.analyze(ctx, id, force)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.SentimentAnalysis).Clone(), nil
}

func (s *triageService) analyze(ctx context.Context, id string, force bool) (*domain.SentimentAnalysis, error) {
	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.FindAnalysis(ctx, id)
	switch {
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load analysis: %w", err)
	case err != nil:
		existing = nil
	case !force && existing.IsAnalyzed():
		return existing, nil
	}

	result, err := s.classify(id, feedback.Content, feedback.Type)
	if err != nil {
		return nil, err
	}
	analyzedAt := s.stamp()
	result.AnalyzedAt = &analyzedAt
	if err := s.repo.SaveAnalysis(ctx, result); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	s.logger.Debug("feedback analysed",
		zap.String("feedbackId", id),
		zap.String("sentiment", result.Sentiment.String()),
		zap.Int("urgency", result.UrgencyLevel),
		zap.Bool("force", force),
	)

	if becameUrgent(existing, result) {
		s.notifyUrgent(ctx, domain.TriagedFeedback{Feedback: *feedback, Analysis: result.Clone()})
	}
	return result, nil
}

func (s *triageService) classify(id string, content domain.Content, feedbackType domain.FeedbackType) (*domain.SentimentAnalysis, error) {
	r := s.classifier.Classify(content.String())
	urgency := analysis.ScoreUrgency(r.Sentiment, r.NegativeHits)
	result, err := domain.NewSentimentAnalysis(id, r.Sentiment, r.Confidence, urgency, r.Emotions, r.Keywords)
	if err != nil {
		return nil, fmt.Errorf("classifier %s: %w", s.classifier.Name(), err)
	}
	result.SuggestedResponse = analysis.SuggestResponse(r.Sentiment, feedbackType)
	result.Classifier = s.classifier.Name()
	return result, nil
}

// becameUrgent reports whether next crosses the urgent threshold. A forced
// re-analysis of an item that was already urgent does not alert again.
func becameUrgent(prev, next *domain.SentimentAnalysis) bool {
	if next.UrgencyLevel < domain.UrgentThreshold {
		return false
	}
	return prev == nil || !prev.IsAnalyzed() || prev.UrgencyLevel < domain.UrgentThreshold
}

// stamp is the service clock in UTC at the millisecond precision BSON keeps,
// so values read back from the store equal the ones returned at write time.
func (s *triageService) stamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// notifyUrgent is best effort; failures are logged only.
func (s *triageService) notifyUrgent(ctx context.Context, item domain.TriagedFeedback) {
	if err := s.notifier.NotifyUrgent(ctx, item); err != nil {
		s.logger.Warn("urgent notification failed", zap.String("feedbackId", item.Feedback.ID), zap.Error(err))
	}
}

// Preview classifies arbitrary text without touching the store.
func (s *triageService) Preview(content, feedbackType string) (*domain.SentimentAnalysis, error) {
	body, err := domain.NewContent(content)
	if err != nil {
		return nil, err
	}
	var kind domain.FeedbackType
	if feedbackType != "" {
		if kind, err = domain.NewFeedbackType(feedbackType); err != nil {
			return nil, err
		}
	}
	result, err := s.classify("", body, kind)
	if err != nil {
		return nil, err
	}
	at := s.stamp()
	result.AnalyzedAt = &at
	return result, nil
}

func (s *triageService) ImproveResponse(ctx context.Context, cmd ImproveResponseCommand) (*ResponseImprovement, error) {
	tone, err := analysis.ParseTone(cmd.Tone)
	if err != nil {
		return nil, err
	}
	length, err := analysis.ParseLength(cmd.Length)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindByID(ctx, cmd.FeedbackID); err != nil {
		return nil, err
	}
	existing, err := s.repo.FindAnalysis(ctx, cmd.FeedbackID)
	if err != nil {
		return nil, err
	}

	original := cmd.CurrentResponse
	if original == "" {
		original = existing.SuggestedResponse
	}
	improved := analysis.ImproveResponse(original, tone, length)
	if err := s.repo.UpdateSuggestedResponse(ctx, cmd.FeedbackID, improved.Response); err != nil {
		return nil, fmt.Errorf("update suggested response: %w", err)
	}
	return &ResponseImprovement{
		FeedbackID:       cmd.FeedbackID,
		OriginalResponse: original,
		ImprovedResponse: improved.Response,
		Tone:             tone,
		Length:           length,
		Adjustments:      improved.Adjustments,
	}, nil
}

func (s *triageService) List(ctx context.Context, filter FeedbackFilter, paging Paging) (*FeedbackPage, error) {
	paging, err := NewPaging(paging.Limit, paging.Offset)
	if err != nil {
		return nil, err
	}
	items, total, err := s.repo.Find(ctx, filter, paging)
	if err != nil {
		return nil, fmt.Errorf("find feedback: %w", err)
	}
	return &FeedbackPage{
		Items:   items,
		Total:   total,
		Limit:   paging.Limit,
		Offset:  paging.Offset,
		HasMore: paging.Offset+len(items) < total,
	}, nil
}

func (s *triageService) Detail(ctx context.Context, id string) (*domain.TriagedFeedback, error) {
	feedback, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item := &domain.TriagedFeedback{Feedback: *feedback}
	analysisRecord, err := s.repo.FindAnalysis(ctx, id)
	switch {
	case err == nil:
		item.Analysis = analysisRecord
	case !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("load analysis: %w", err)
	}
	return item, nil
}

func (s *triageService) Trends(ctx context.Context, window domain.TimeWindow, groupBy analysis.GroupBy) (*TrendReport, error) {
	if groupBy == "" {
		groupBy = analysis.GroupByDay
	}
	items, err := s.repo.ListWindow(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}
	return &TrendReport{
		Window:  window,
		GroupBy: groupBy,
		Buckets: analysis.AggregateTrends(items, groupBy),
		Summary: analysis.SummarizeTrend(items),
	}, nil
}

func (s *triageService) Stats(ctx context.Context, window domain.TimeWindow) (*analysis.StatsSnapshot, error) {
	items, err := s.repo.ListWindow(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}
	snap := analysis.Summarize(items, window)
	return &snap, nil
}

// Summary loads stats and daily trends concurrently.
func (s *triageService) Summary(ctx context.Context, window domain.TimeWindow) (*DashboardSummary, error) {
	var (
		stats  *analysis.StatsSnapshot
		trends *TrendReport
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.Stats(gctx, window)
		return err
	})
	g.Go(func() error {
		var err error
		trends, err = s.Trends(gctx, window, analysis.GroupByDay)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &DashboardSummary{Stats: *stats, Trends: *trends}, nil
}

func (s *triageService) MarkProcessed(ctx context.Context, id string, value bool) error {
	return s.repo.SetProcessed(ctx, id, value, s.stamp())
}

func (s *triageService) MarkResponded(ctx context.Context, id string, value bool) error {
	return s.repo.SetResponded(ctx, id, value, s.stamp())
}

// Export returns the window's items newest first.
func (s *triageService) Export(ctx context.Context, cmd ExportCommand) (*ExportResult, error) {
	format, err := ParseExportFormat(cmd.Format)
	if err != nil {
		return nil, err
	}
	items, err := s.repo.ListWindow(ctx, cmd.Window)
	if err != nil {
		return nil, fmt.Errorf("list window: %w", err)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Feedback.CreatedAt.After(items[j].Feedback.CreatedAt)
	})
	if !cmd.IncludePersonalInfo {
		for i := range items {
			items[i].Feedback.CustomerInfo = domain.CustomerInfo{}
		}
	}
	return &ExportResult{
		Format:              format,
		Window:              cmd.Window,
		Items:               items,
		IncludePersonalInfo: cmd.IncludePersonalInfo,
		GeneratedAt:         s.stamp(),
		TotalRecords:        len(items),
	}, nil
}

func (s *triageService) Erase(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func buildFeedbackFromCommand(cmd SubmitFeedbackCommand) (*domain.Feedback, error) {
	source, err := domain.NewSource(cmd.Source)
	if err != nil {
		return nil, err
	}
	feedbackType, err := domain.NewFeedbackType(cmd.Type)
	if err != nil {
		return nil, err
	}
	content, err := domain.NewContent(cmd.Content)
	if err != nil {
		return nil, err
	}
	feedback := &domain.Feedback{
		Source:  source,
		Type:    feedbackType,
		Content: content,
	}
	if cmd.Rating != nil {
		rating, err := domain.NewRating(*cmd.Rating)
		if err != nil {
			return nil, err
		}
		feedback.Rating = &rating
	}
	if in := cmd.CustomerInfo; in != nil {
		info, err := domain.NewCustomerInfo(in.ID, in.Name, in.Email, in.Phone, in.Tier)
		if err != nil {
			return nil, err
		}
		feedback.CustomerInfo = info
	}
	if in := cmd.Context; in != nil {
		submission, err := domain.NewContext(in.Page, in.UserAgent, in.Locale, in.Campaign, in.OrderID)
		if err != nil {
			return nil, err
		}
		feedback.Context = submission
	}
	return feedback, nil
}

// NopNotifier discards notifications.
type NopNotifier struct{}

func (NopNotifier) NotifyUrgent(context.Context, domain.TriagedFeedback) error { return nil }
