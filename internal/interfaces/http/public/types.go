package public

import "time"

type submitFeedbackRequest struct {
	Source       string               `json:"source"`
	Type         string               `json:"type"`
	Content      string               `json:"content"`
	Rating       *int                 `json:"rating,omitempty"`
	CustomerInfo *customerInfoPayload `json:"customerInfo,omitempty"`
	Context      *contextPayload      `json:"context,omitempty"`
}

type customerInfoPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Tier  string `json:"tier"`
}

type contextPayload struct {
	Page      string `json:"page"`
	UserAgent string `json:"userAgent"`
	Locale    string `json:"locale"`
	Campaign  string `json:"campaign"`
	OrderID   string `json:"orderId"`
}

type submitFeedbackResponse struct {
	Status    string          `json:"status"`
	ID        string          `json:"id"`
	Source    string          `json:"source"`
	Type      string          `json:"type"`
	CreatedAt time.Time       `json:"createdAt"`
	Analysis  analysisSummary `json:"analysis"`
}

type analysisSummary struct {
	Analyzed          bool   `json:"analyzed"`
	Sentiment         string `json:"sentiment"`
	UrgencyLevel      int    `json:"urgencyLevel"`
	SuggestedResponse string `json:"suggestedResponse,omitempty"`
}
