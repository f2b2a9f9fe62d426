package admin

import "time"

type feedbackResponse struct {
	ID           string                `json:"id"`
	Source       string                `json:"source"`
	Type         string                `json:"type"`
	Content      string                `json:"content"`
	Rating       *int                  `json:"rating,omitempty"`
	CustomerInfo *customerInfoResponse `json:"customerInfo,omitempty"`
	Context      *contextResponse      `json:"context,omitempty"`
	Processed    bool                  `json:"processed"`
	Responded    bool                  `json:"responded"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Analysis     *analysisResponse     `json:"analysis,omitempty"`
}

type customerInfoResponse struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Tier  string `json:"tier,omitempty"`
}

type contextResponse struct {
	Page      string `json:"page,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Campaign  string `json:"campaign,omitempty"`
	OrderID   string `json:"orderId,omitempty"`
}

type analysisResponse struct {
	Sentiment         string     `json:"sentiment"`
	Confidence        float64    `json:"confidence"`
	UrgencyLevel      int        `json:"urgencyLevel"`
	Emotions          []string   `json:"emotions"`
	Keywords          []string   `json:"keywords"`
	SuggestedResponse string     `json:"suggestedResponse"`
	Classifier        string     `json:"classifier,omitempty"`
	Analyzed          bool       `json:"analyzed"`
	AnalyzedAt        *time.Time `json:"analyzedAt,omitempty"`
}

type feedbackListResponse struct {
	Items   []feedbackResponse `json:"items"`
	Total   int                `json:"total"`
	Limit   int                `json:"limit"`
	Offset  int                `json:"offset"`
	HasMore bool               `json:"hasMore"`
}

type improveResponseRequest struct {
	CurrentResponse string `json:"currentResponse"`
	Tone            string `json:"tone"`
	Length          string `json:"length"`
}

type improveResponseResponse struct {
	FeedbackID       string   `json:"feedbackId"`
	OriginalResponse string   `json:"originalResponse"`
	ImprovedResponse string   `json:"improvedResponse"`
	Tone             string   `json:"tone"`
	Length           string   `json:"length"`
	Adjustments      []string `json:"adjustments"`
}

type flagRequest struct {
	Value *bool `json:"value"`
}

type windowResponse struct {
	From *time.Time `json:"from,omitempty"`
	To   *time.Time `json:"to,omitempty"`
}

type trendBucketResponse struct {
	Key                string `json:"key"`
	Positive           int    `json:"positive"`
	Negative           int    `json:"negative"`
	Neutral            int    `json:"neutral"`
	Total              int    `json:"total"`
	PositivePercentage int    `json:"positivePercentage"`
	NegativePercentage int    `json:"negativePercentage"`
	NeutralPercentage  int    `json:"neutralPercentage"`
}

type trendSummaryResponse struct {
	TotalFeedback    int     `json:"totalFeedback"`
	AverageSentiment float64 `json:"averageSentiment"`
}

type trendsResponse struct {
	Range   windowResponse        `json:"range"`
	GroupBy string                `json:"groupBy"`
	Buckets []trendBucketResponse `json:"buckets"`
	Summary trendSummaryResponse  `json:"summary"`
}

type statsResponse struct {
	Range               windowResponse `json:"range"`
	Total               int            `json:"total"`
	Processed           int            `json:"processed"`
	ProcessedPercentage int            `json:"processedPercentage"`
	Responded           int            `json:"responded"`
	ResponseRate        int            `json:"responseRate"`
	Urgent              int            `json:"urgent"`
	UrgentPercentage    int            `json:"urgentPercentage"`
	BySentiment         map[string]int `json:"bySentiment"`
	BySource            map[string]int `json:"bySource"`
	ByType              map[string]int `json:"byType"`
	AverageSentiment    float64        `json:"averageSentiment"`
	AverageRating       float64        `json:"averageRating"`
}

type summaryResponse struct {
	Stats  statsResponse  `json:"stats"`
	Trends trendsResponse `json:"trends"`
}

type classifyRequest struct {
	Content string `json:"content"`
	Type    string `json:"type"`
}
