package analysis

import (
	"fmt"
	"strings"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneFriendly     Tone = "friendly"
	ToneEmpathetic   Tone = "empathetic"
	ToneFormal       Tone = "formal"
)

type Length string

const (
	LengthBrief    Length = "brief"
	LengthMedium   Length = "medium"
	LengthDetailed Length = "detailed"
)

const (
	ComplaintResponse = "We're sorry about your experience. We take this seriously and our team is already looking into how we can make it right. We'll follow up with next steps shortly."
	BugReportResponse = "Thank you for reporting this issue. Our team is investigating and will keep you updated on the fix."
	GratitudeResponse = "Thank you so much for your kind words! We're thrilled to hear you're enjoying the experience, and we'll share your feedback with the team."

	briefClosing    = "We'll be in touch shortly."
	detailedClosing = "If there is anything else we can help with, just reply to this message. We'd love to hear from you again."
)

var toneOpenings = map[Tone]string{
	ToneProfessional: "Thank you for reaching out to us.",
	ToneFriendly:     "Hi there, thanks so much for getting in touch!",
	ToneEmpathetic:   "We completely understand how frustrating this must be, and we're truly sorry.",
	ToneFormal:       "Dear customer, we acknowledge receipt of your message.",
}

func ParseTone(value string) (Tone, error) {
	v := Tone(strings.ToLower(strings.TrimSpace(value)))
	if v == "" {
		return ToneProfessional, nil
	}
	if _, ok := toneOpenings[v]; !ok {
		return "", domain.NewValidationError("tone", "invalid value %q", value)
	}
	return v, nil
}

func ParseLength(value string) (Length, error) {
	v := Length(strings.ToLower(strings.TrimSpace(value)))
	switch v {
	case "":
		return LengthMedium, nil
	case LengthBrief, LengthMedium, LengthDetailed:
		return v, nil
	}
	return "", domain.NewValidationError("length", "invalid value %q", value)
}

// SuggestResponse drafts the first reply for an analysed item. Combinations
// without a template yield an empty string.
func SuggestResponse(sentiment domain.Sentiment, feedbackType domain.FeedbackType) string {
	switch {
	case sentiment == domain.SentimentNegative && feedbackType == domain.TypeComplaint:
		return ComplaintResponse
	case sentiment == domain.SentimentNegative && feedbackType == domain.TypeBugReport:
		return BugReportResponse
	case sentiment == domain.SentimentPositive:
		return GratitudeResponse
	}
	return ""
}

// Improvement is a rewritten reply plus a description of what was changed.
// Adjustments are descriptive only and are not verified against the text.
type Improvement struct {
	Response    string
	Adjustments []string
}

// ImproveResponse recomposes current with a tone specific opening according to length.
func ImproveResponse(current string, tone Tone, length Length) Improvement {
	if _, ok := toneOpenings[tone]; !ok {
		tone = ToneProfessional
	}
	opening := toneOpenings[tone]
	current = strings.TrimSpace(current)

	var parts []string
	switch length {
	case LengthBrief:
		parts = []string{opening, briefClosing}
	case LengthDetailed:
		parts = []string{opening, current, detailedClosing}
	default:
		length = LengthMedium
		parts = []string{opening, current}
	}

	adjustments := []string{
		fmt.Sprintf("Adjusted tone to %s", tone),
		fmt.Sprintf("Targeted %s length", length),
	}
	if tone == ToneEmpathetic {
		adjustments = append(adjustments, "Added empathetic framing")
	}
	if length == LengthBrief && current != "" {
		adjustments = append(adjustments, "Replaced body with a short closing")
	}
	if length == LengthDetailed {
		adjustments = append(adjustments, "Added an invitation to follow up")
	}

	return Improvement{Response: joinNonEmpty(parts), Adjustments: adjustments}
}

func joinNonEmpty(parts []string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
