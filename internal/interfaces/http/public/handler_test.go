package public

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/sngm3741/makoto-club-services/triage/internal/infrastructure/memory"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

var testNow = time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

type brokenRepo struct {
	*memory.FeedbackRepository
}

func (brokenRepo) Create(context.Context, *domain.Feedback, *domain.SentimentAnalysis) error {
	return errors.New("connection reset")
}

func newRouter(t *testing.T, repo application.FeedbackRepository, autoAnalyze bool) chi.Router {
	t.Helper()
	classifier, err := analysis.NewLexicalClassifier(analysis.DefaultLexicon())
	require.NoError(t, err)
	svc, err := application.NewTriageService(application.ServiceConfig{
		Repository:  repo,
		Classifier:  classifier,
		Logger:      zaptest.NewLogger(t),
		AutoAnalyze: autoAnalyze,
		Now:         func() time.Time { return testNow },
		NewID:       func() string { return "fb-001" },
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	NewHandler(Config{Logger: zaptest.NewLogger(t), TriageService: svc}).Register(r)
	return r
}

func post(t *testing.T, r chi.Router, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestSubmitFeedback(t *testing.T) {
	repo := memory.NewFeedbackRepository()
	r := newRouter(t, repo, false)

	rec := post(t, r, `{
		"source": "email",
		"type": "complaint",
		"content": "The invoice was wrong",
		"rating": 2,
		"customerInfo": {"name": "Aoi", "email": "aoi@example.com"},
		"context": {"page": "https://example.com/billing", "locale": "ja-JP"}
	}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var got submitFeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "fb-001", got.ID)
	assert.Equal(t, "received", got.Status)
	assert.True(t, got.CreatedAt.Equal(testNow))
	assert.False(t, got.Analysis.Analyzed)
	assert.Equal(t, "neutral", got.Analysis.Sentiment)
	assert.Equal(t, 1, got.Analysis.UrgencyLevel)
	assert.NotContains(t, rec.Body.String(), "aoi@example.com")

	stored, err := repo.FindByID(context.Background(), "fb-001")
	require.NoError(t, err)
	assert.Equal(t, domain.Email("aoi@example.com"), stored.CustomerInfo.Email)
	assert.Equal(t, "ja-JP", stored.Context.Locale)
}

func TestSubmitFeedback_AutoAnalyze(t *testing.T) {
	r := newRouter(t, memory.NewFeedbackRepository(), true)

	rec := post(t, r, `{"source":"website","type":"complaint","content":"This is terrible, completely broken and useless"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var got submitFeedbackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.True(t, got.Analysis.Analyzed)
	assert.Equal(t, "negative", got.Analysis.Sentiment)
	assert.Equal(t, 5, got.Analysis.UrgencyLevel)
	assert.Equal(t, analysis.ComplaintResponse, got.Analysis.SuggestedResponse)
}

func TestSubmitFeedback_Validation(t *testing.T) {
	repo := memory.NewFeedbackRepository()
	r := newRouter(t, repo, false)

	cases := map[string]string{
		"malformed":     `{"source":`,
		"missing body":  `{}`,
		"bad source":    `{"source":"fax","type":"praise","content":"hi"}`,
		"bad rating":    `{"source":"website","type":"praise","content":"hi","rating":9}`,
		"bad email":     `{"source":"website","type":"praise","content":"hi","customerInfo":{"email":"nope"}}`,
		"bad page url":  `{"source":"website","type":"praise","content":"hi","context":{"page":"not a url"}}`,
		"blank content": `{"source":"website","type":"praise","content":"  "}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := post(t, r, body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.NotEmpty(t, payload["error"])
		})
	}
	assert.Zero(t, repo.Len())
}

func TestSubmitFeedback_StoreFailure(t *testing.T) {
	r := newRouter(t, brokenRepo{memory.NewFeedbackRepository()}, false)

	rec := post(t, r, `{"source":"website","type":"praise","content":"hi"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection reset")
}
