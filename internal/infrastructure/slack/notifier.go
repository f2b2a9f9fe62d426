// Package slack posts urgent-feedback alerts to a Slack incoming webhook.
package slack

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/slack-go/slack"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

const excerptRunes = 280

type Config struct {
	WebhookURL string
	// DashboardBaseURL, when set, is used to link the alert to the feedback detail page.
	DashboardBaseURL string
	Timeout          time.Duration
	HTTPClient       *http.Client
}

type Notifier struct {
	webhookURL string
	dashboard  string
	client     *http.Client
}

var _ application.Notifier = (*Notifier)(nil)

func NewNotifier(cfg Config) *Notifier {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Notifier{
		webhookURL: cfg.WebhookURL,
		dashboard:  strings.TrimRight(cfg.DashboardBaseURL, "/"),
		client:     client,
	}
}

func (n *Notifier) NotifyUrgent(ctx context.Context, item domain.TriagedFeedback) error {
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, n.message(item)); err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	return nil
}

func (n *Notifier) message(item domain.TriagedFeedback) *slack.WebhookMessage {
	fb := item.Feedback
	headline := fmt.Sprintf(":rotating_light: Urgent %s feedback (urgency %d/%d) from %s",
		strings.ReplaceAll(fb.Type.String(), "_", " "), item.UrgencyLevel(), domain.MaxUrgency, fb.Source)

	body := fmt.Sprintf("*%s*\n>%s", headline, excerpt(fb.Content.String()))
	if n.dashboard != "" {
		body += fmt.Sprintf("\n<%s/feedback/%s|Open in dashboard>", n.dashboard, fb.ID)
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Sentiment*\n"+item.Sentiment().String(), false, false),
	}
	if a := item.Analysis; a != nil {
		if len(a.Keywords) > 0 {
			fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Keywords*\n"+strings.Join(a.Keywords, ", "), false, false))
		}
		if len(a.Emotions) > 0 {
			fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType, "*Emotions*\n"+strings.Join(a.Emotions, ", "), false, false))
		}
	}

	section := slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, body, false, false), fields, nil)
	return &slack.WebhookMessage{
		Text:   headline,
		Blocks: &slack.Blocks{BlockSet: []slack.Block{section}},
	}
}

func excerpt(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= excerptRunes {
		return s
	}
	r := []rune(s)
	return string(r[:excerptRunes]) + "…"
}
