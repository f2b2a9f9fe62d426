package main

import (
	"bytes"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestClassifyCommand(t *testing.T) {
	out, err := run(t, "", "classify", "--type", "complaint", "This is terrible, completely broken and useless")
	require.NoError(t, err)

	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "negative", got.Sentiment)
	assert.Equal(t, 5, got.UrgencyLevel)
	assert.Equal(t, analysis.ComplaintResponse, got.SuggestedResponse)
	assert.Equal(t, "lexical", got.Classifier)
}

func TestClassifyCommand_Stdin(t *testing.T) {
	out, err := run(t, "Amazing support, thanks!", "classify")
	require.NoError(t, err)
	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "positive", got.Sentiment)

	_, err = run(t, "   ", "classify")
	assert.True(t, domain.IsValidation(err))
}

func TestClassifyCommand_CustomLexicon(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: v9\nlexicon:\n  positive: [stellar]\n  negative: [meh]\n"), 0o644))

	out, err := run(t, "", "classify", "--lexicon", path, "a stellar release")
	require.NoError(t, err)
	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "positive", got.Sentiment)
	assert.Equal(t, "v9", got.LexiconVersion)
}

func TestLexiconCommands(t *testing.T) {
	dumped, err := run(t, "", "lexicon", "dump")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "lexicon.yaml")
	require.NoError(t, os.WriteFile(path, []byte(dumped), 0o644))
	out, err := run(t, "", "lexicon", "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, `version="builtin-1"`)

	require.NoError(t, os.WriteFile(path, []byte("lexicon: {}\n"), 0o644))
	_, err = run(t, "", "lexicon", "validate", path)
	assert.Error(t, err)
}

func TestGenerateFeedback(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	items := generateFeedback(rng, 200)
	require.Len(t, items, 200)

	seenTypes := map[string]bool{}
	for _, item := range items {
		seenTypes[item.Type] = true
		_, err := domain.NewSource(item.Source)
		require.NoError(t, err)
		_, err = domain.NewContent(item.Content)
		require.NoError(t, err)
		if item.Rating != nil {
			_, err = domain.NewRating(*item.Rating)
			require.NoError(t, err)
		}
		if item.CustomerInfo != nil {
			_, err = domain.NewEmail(item.CustomerInfo.Email)
			require.NoError(t, err)
		}
	}
	assert.Len(t, seenTypes, len(domain.FeedbackTypes))
}

func TestSeedTimestamps(t *testing.T) {
	end := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	stamps := seedTimestamps(rand.New(rand.NewSource(1)), 50, end, 7)
	require.Len(t, stamps, 50)
	for i, ts := range stamps {
		assert.False(t, ts.After(end))
		assert.True(t, ts.After(end.Add(-7*24*time.Hour-time.Second)))
		if i > 0 {
			assert.False(t, ts.Before(stamps[i-1]))
		}
	}
}

func TestExportWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	w, err := exportOptions{rangePreset: "7d"}.window(now)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-7*24*time.Hour), w.From)

	w, err = exportOptions{from: "2024-05-01T00:00:00Z"}.window(now)
	require.NoError(t, err)
	assert.True(t, w.To.IsZero())

	_, err = exportOptions{from: "May 1st"}.window(now)
	assert.Error(t, err)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.env")
	require.NoError(t, os.WriteFile(path, []byte("# comment\nexport TRIAGECTL_A=\"one\"\nTRIAGECTL_B=two\nTRIAGECTL_C='three # kept'\n"), 0o644))
	t.Setenv("TRIAGECTL_B", "preset")
	t.Setenv("TRIAGECTL_A", "")
	os.Unsetenv("TRIAGECTL_A")
	t.Setenv("TRIAGECTL_C", "")
	os.Unsetenv("TRIAGECTL_C")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "one", os.Getenv("TRIAGECTL_A"))
	assert.Equal(t, "preset", os.Getenv("TRIAGECTL_B"))
	assert.Equal(t, "three # kept", os.Getenv("TRIAGECTL_C"))

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}
