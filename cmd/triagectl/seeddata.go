package main

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

var seedContents = map[domain.FeedbackType][]string{
	domain.TypeComplaint: {
		"The delivery was late again and support was useless.",
		"I was charged twice, this is terrible. I want a refund.",
		"Your checkout is frustrating and the page keeps failing.",
		"Disappointed with the quality, it broke after two days.",
	},
	domain.TypeBugReport: {
		"The app crashes when I upload a photo.",
		"Search results are slow and sometimes show an error.",
		"Login is not working on Safari since the last update.",
		"Export button does nothing, looks like a bug.",
	},
	domain.TypeFeatureRequest: {
		"Could you add a dark mode to the dashboard?",
		"It would be great to schedule reports by email.",
		"Please support exporting invoices as PDF.",
		"A keyboard shortcut for search would help.",
	},
	domain.TypePraise: {
		"Amazing service, the team was really helpful!",
		"Thanks for the quick fix, everything is smooth now.",
		"Excellent product, I recommend it to everyone.",
		"Great update, the new editor is easy to use.",
	},
}

var (
	seedNames = []string{"Aoi", "Haruto", "Mia", "Noah", "Sora", "Emma", "Ren", "Liam"}
	seedTiers = []string{"free", "pro", "enterprise"}
	seedPages = []string{"/checkout", "/settings", "/reports", "/search", "/billing"}
)

// generateFeedback returns count random submissions covering every source and type.
func generateFeedback(rng *rand.Rand, count int) []application.SubmitFeedbackCommand {
	types := domain.FeedbackTypes
	out := make([]application.SubmitFeedbackCommand, 0, count)
	for i := 0; i < count; i++ {
		kind := types[rng.Intn(len(types))]
		contents := seedContents[kind]
		cmd := application.SubmitFeedbackCommand{
			Source:  domain.Sources[rng.Intn(len(domain.Sources))].String(),
			Type:    kind.String(),
			Content: contents[rng.Intn(len(contents))],
		}
		if rng.Intn(3) > 0 {
			rating := seedRating(rng, kind)
			cmd.Rating = &rating
		}
		if rng.Intn(2) == 0 {
			name := seedNames[rng.Intn(len(seedNames))]
			cmd.CustomerInfo = &application.CustomerInfoInput{
				ID:    fmt.Sprintf("cust-%04d", rng.Intn(10000)),
				Name:  name,
				Email: fmt.Sprintf("%s.%d@example.com", name, i),
				Tier:  seedTiers[rng.Intn(len(seedTiers))],
			}
		}
		if cmd.Source == domain.SourceWebsite.String() {
			cmd.Context = &application.ContextInput{
				Page:   "https://app.example.com" + seedPages[rng.Intn(len(seedPages))],
				Locale: "en-US",
			}
		}
		out = append(out, cmd)
	}
	return out
}

func seedRating(rng *rand.Rand, kind domain.FeedbackType) int {
	switch kind {
	case domain.TypePraise:
		return 4 + rng.Intn(2)
	case domain.TypeComplaint, domain.TypeBugReport:
		return 1 + rng.Intn(2)
	default:
		return 2 + rng.Intn(3)
	}
}

// seedTimestamps spreads count instants over the days before end, oldest first.
func seedTimestamps(rng *rand.Rand, count int, end time.Time, days int) []time.Time {
	span := time.Duration(days) * 24 * time.Hour
	out := make([]time.Time, count)
	for i := range out {
		out[i] = end.Add(-time.Duration(rng.Int63n(int64(span)))).Truncate(time.Second)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
