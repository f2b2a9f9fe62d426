package mongo

import (
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// FeedbackDocument は MongoDB 上でのフィードバックスキーマを Go 構造体として表現したもの。
type FeedbackDocument struct {
	ID           string                `bson:"_id"`
	Source       string                `bson:"source"`
	Type         string                `bson:"type"`
	Content      string                `bson:"content"`
	Rating       *int                  `bson:"rating,omitempty"`
	CustomerInfo *CustomerInfoDocument `bson:"customerInfo,omitempty"`
	Context      *ContextDocument      `bson:"context,omitempty"`
	Processed    bool                  `bson:"processed"`
	Responded    bool                  `bson:"responded"`
	CreatedAt    time.Time             `bson:"createdAt"`
	UpdatedAt    time.Time             `bson:"updatedAt"`
}

// CustomerInfoDocument は投稿者の個人情報を保持する埋め込みドキュメント。
type CustomerInfoDocument struct {
	ID    string `bson:"id,omitempty"`
	Name  string `bson:"name,omitempty"`
	Email string `bson:"email,omitempty"`
	Phone string `bson:"phone,omitempty"`
	Tier  string `bson:"tier,omitempty"`
}

// ContextDocument は投稿時のメタデータを保持する埋め込みドキュメント。
type ContextDocument struct {
	Page      string `bson:"page,omitempty"`
	UserAgent string `bson:"userAgent,omitempty"`
	Locale    string `bson:"locale,omitempty"`
	Campaign  string `bson:"campaign,omitempty"`
	OrderID   string `bson:"orderId,omitempty"`
}

// AnalysisDocument は sentiment_analyses コレクションの 1 件。_id はフィードバック ID と同じ。
type AnalysisDocument struct {
	FeedbackID        string     `bson:"_id"`
	Sentiment         string     `bson:"sentiment"`
	Confidence        float64    `bson:"confidence"`
	UrgencyLevel      int        `bson:"urgencyLevel"`
	Emotions          []string   `bson:"emotions"`
	Keywords          []string   `bson:"keywords"`
	SuggestedResponse string     `bson:"suggestedResponse"`
	Classifier        string     `bson:"classifier,omitempty"`
	AnalyzedAt        *time.Time `bson:"analyzedAt,omitempty"`
}

// triagedDocument は $lookup で解析結果を結合した集計結果の 1 行。
type triagedDocument struct {
	FeedbackDocument `bson:",inline"`
	Analysis         *AnalysisDocument `bson:"analysis,omitempty"`
}

func mapFeedbackToDocument(fb *domain.Feedback) FeedbackDocument {
	doc := FeedbackDocument{
		ID:        fb.ID,
		Source:    fb.Source.String(),
		Type:      fb.Type.String(),
		Content:   fb.Content.String(),
		Processed: fb.Processed,
		Responded: fb.Responded,
		CreatedAt: fb.CreatedAt.UTC(),
		UpdatedAt: fb.UpdatedAt.UTC(),
	}
	if fb.Rating != nil {
		v := fb.Rating.Int()
		doc.Rating = &v
	}
	if !fb.CustomerInfo.IsZero() {
		doc.CustomerInfo = &CustomerInfoDocument{
			ID:    fb.CustomerInfo.ID,
			Name:  fb.CustomerInfo.Name,
			Email: fb.CustomerInfo.Email.String(),
			Phone: fb.CustomerInfo.Phone,
			Tier:  fb.CustomerInfo.Tier,
		}
	}
	if !fb.Context.IsZero() {
		doc.Context = &ContextDocument{
			Page:      fb.Context.Page.String(),
			UserAgent: fb.Context.UserAgent,
			Locale:    fb.Context.Locale,
			Campaign:  fb.Context.Campaign,
			OrderID:   fb.Context.OrderID,
		}
	}
	return doc
}

func mapFeedbackDocument(doc FeedbackDocument) domain.Feedback {
	fb := domain.Feedback{
		ID:        doc.ID,
		Source:    domain.Source(doc.Source),
		Type:      domain.FeedbackType(doc.Type),
		Content:   domain.Content(doc.Content),
		Processed: doc.Processed,
		Responded: doc.Responded,
		CreatedAt: doc.CreatedAt.UTC(),
		UpdatedAt: doc.UpdatedAt.UTC(),
	}
	if doc.Rating != nil {
		rating := domain.Rating(*doc.Rating)
		fb.Rating = &rating
	}
	if c := doc.CustomerInfo; c != nil {
		fb.CustomerInfo = domain.CustomerInfo{
			ID:    c.ID,
			Name:  c.Name,
			Email: domain.Email(c.Email),
			Phone: c.Phone,
			Tier:  c.Tier,
		}
	}
	if c := doc.Context; c != nil {
		fb.Context = domain.Context{
			Page:      domain.URL(c.Page),
			UserAgent: c.UserAgent,
			Locale:    c.Locale,
			Campaign:  c.Campaign,
			OrderID:   c.OrderID,
		}
	}
	return fb
}

func mapAnalysisToDocument(a *domain.SentimentAnalysis) AnalysisDocument {
	doc := AnalysisDocument{
		FeedbackID:        a.FeedbackID,
		Sentiment:         a.Sentiment.String(),
		Confidence:        a.Confidence,
		UrgencyLevel:      a.UrgencyLevel,
		Emotions:          append([]string{}, a.Emotions...),
		Keywords:          append([]string{}, a.Keywords...),
		SuggestedResponse: a.SuggestedResponse,
		Classifier:        a.Classifier,
	}
	if a.AnalyzedAt != nil {
		at := a.AnalyzedAt.UTC()
		doc.AnalyzedAt = &at
	}
	return doc
}

func mapAnalysisDocument(doc AnalysisDocument) *domain.SentimentAnalysis {
	a := &domain.SentimentAnalysis{
		FeedbackID:        doc.FeedbackID,
		Sentiment:         domain.Sentiment(doc.Sentiment),
		Confidence:        doc.Confidence,
		UrgencyLevel:      doc.UrgencyLevel,
		Emotions:          domain.NormalizeSet(doc.Emotions),
		Keywords:          domain.NormalizeSet(doc.Keywords),
		SuggestedResponse: doc.SuggestedResponse,
		Classifier:        doc.Classifier,
	}
	if doc.AnalyzedAt != nil {
		at := doc.AnalyzedAt.UTC()
		a.AnalyzedAt = &at
	}
	return a
}

func mapTriagedDocument(doc triagedDocument) domain.TriagedFeedback {
	item := domain.TriagedFeedback{Feedback: mapFeedbackDocument(doc.FeedbackDocument)}
	if doc.Analysis != nil {
		item.Analysis = mapAnalysisDocument(*doc.Analysis)
	}
	return item
}
