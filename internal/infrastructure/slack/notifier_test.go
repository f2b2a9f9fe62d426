package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func urgentItem() domain.TriagedFeedback {
	return domain.TriagedFeedback{
		Feedback: domain.Feedback{
			ID:      "fb-42",
			Source:  domain.SourceSupport,
			Type:    domain.TypeBugReport,
			Content: "Checkout is broken and useless",
		},
		Analysis: &domain.SentimentAnalysis{
			Sentiment:    domain.SentimentNegative,
			UrgencyLevel: 4,
			Keywords:     []string{"broken", "useless"},
		},
	}
}

func TestNotifier_PostsWebhook(t *testing.T) {
	var payload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewNotifier(Config{WebhookURL: srv.URL, DashboardBaseURL: "https://triage.example.com/"})
	require.NoError(t, n.NotifyUrgent(context.Background(), urgentItem()))

	text, _ := payload["text"].(string)
	assert.Contains(t, text, "bug report")
	assert.Contains(t, text, "urgency 4/5")
	raw, err := json.Marshal(payload["blocks"])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://triage.example.com/feedback/fb-42")
	assert.Contains(t, string(raw), "broken, useless")
}

func TestNotifier_ReportsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_token", http.StatusForbidden)
	}))
	defer srv.Close()

	n := NewNotifier(Config{WebhookURL: srv.URL})
	err := n.NotifyUrgent(context.Background(), urgentItem())
	assert.Error(t, err)
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "a b", excerpt("  a \n b "))
	long := strings.Repeat("é", excerptRunes+10)
	got := excerpt(long)
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.Equal(t, excerptRunes+1, len([]rune(got)))
}
