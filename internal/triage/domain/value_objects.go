package domain

import (
	"net/mail"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MaxContentRunes bounds the length of a feedback body.
const MaxContentRunes = 5000

type Source string

const (
	SourceWebsite Source = "website"
	SourceEmail   Source = "email"
	SourceSocial  Source = "social"
	SourceSupport Source = "support"
)

// Sources lists every accepted feedback source.
var Sources = []Source{SourceWebsite, SourceEmail, SourceSocial, SourceSupport}

func NewSource(value string) (Source, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", NewValidationError("source", "is required")
	}
	for _, allowed := range Sources {
		if string(allowed) == trimmed {
			return allowed, nil
		}
	}
	return "", NewValidationError("source", "invalid value %q", value)
}

func (s Source) String() string {
	return string(s)
}

type FeedbackType string

const (
	TypeBugReport      FeedbackType = "bug_report"
	TypeFeatureRequest FeedbackType = "feature_request"
	TypeComplaint      FeedbackType = "complaint"
	TypePraise         FeedbackType = "praise"
)

// FeedbackTypes lists every accepted feedback type.
var FeedbackTypes = []FeedbackType{TypeBugReport, TypeFeatureRequest, TypeComplaint, TypePraise}

func NewFeedbackType(value string) (FeedbackType, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return "", NewValidationError("type", "is required")
	}
	for _, allowed := range FeedbackTypes {
		if string(allowed) == trimmed {
			return allowed, nil
		}
	}
	return "", NewValidationError("type", "invalid value %q", value)
}

func (t FeedbackType) String() string {
	return string(t)
}

type Content string

// NewContent trims the body and enforces the 1..MaxContentRunes bound.
func NewContent(value string) (Content, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", NewValidationError("content", "is required")
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxContentRunes {
		return "", NewValidationError("content", "must be at most %d characters (got %d)", MaxContentRunes, n)
	}
	return Content(trimmed), nil
}

func (c Content) String() string {
	return string(c)
}

type Rating int

func NewRating(value int) (Rating, error) {
	if value < 1 || value > 5 {
		return 0, NewValidationError("rating", "must be between 1 and 5")
	}
	return Rating(value), nil
}

func (r Rating) Int() int {
	return int(r)
}

type Email string

func NewEmail(value string) (Email, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if len(trimmed) > 254 {
		return "", NewValidationError("customerInfo.email", "too long")
	}
	if _, err := mail.ParseAddress(trimmed); err != nil {
		return "", NewValidationError("customerInfo.email", "invalid address")
	}
	return Email(trimmed), nil
}

func (e Email) String() string {
	return string(e)
}

type URL string

func NewURL(field, value string) (URL, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return "", NewValidationError(field, "invalid URL")
	}
	return URL(trimmed), nil
}

func (u URL) String() string {
	return string(u)
}

// CustomerInfo carries the optional personal data attached to a submission.
// Exports strip it unless personal info is explicitly requested.
type CustomerInfo struct {
	ID    string
	Name  string
	Email Email
	Phone string
	Tier  string
}

func NewCustomerInfo(id, name, email, phone, tier string) (CustomerInfo, error) {
	addr, err := NewEmail(email)
	if err != nil {
		return CustomerInfo{}, err
	}
	info := CustomerInfo{
		ID:    strings.TrimSpace(id),
		Name:  strings.TrimSpace(name),
		Email: addr,
		Phone: strings.TrimSpace(phone),
		Tier:  strings.TrimSpace(tier),
	}
	for field, value := range map[string]string{"id": info.ID, "name": info.Name, "phone": info.Phone, "tier": info.Tier} {
		if utf8.RuneCountInString(value) > 200 {
			return CustomerInfo{}, NewValidationError("customerInfo."+field, "too long")
		}
	}
	return info, nil
}

func (c CustomerInfo) IsZero() bool {
	return c == CustomerInfo{}
}

// Context describes where a submission came from.
type Context struct {
	Page      URL
	UserAgent string
	Locale    string
	Campaign  string
	OrderID   string
}

func NewContext(page, userAgent, locale, campaign, orderID string) (Context, error) {
	pageURL, err := NewURL("context.page", page)
	if err != nil {
		return Context{}, err
	}
	ctx := Context{
		Page:      pageURL,
		UserAgent: strings.TrimSpace(userAgent),
		Locale:    strings.TrimSpace(locale),
		Campaign:  strings.TrimSpace(campaign),
		OrderID:   strings.TrimSpace(orderID),
	}
	if utf8.RuneCountInString(ctx.UserAgent) > 512 {
		return Context{}, NewValidationError("context.userAgent", "too long")
	}
	return ctx, nil
}

func (c Context) IsZero() bool {
	return c == Context{}
}
