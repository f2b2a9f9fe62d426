package admin

import (
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

// LexiconReloader reloads the classifier lexicon on demand.
type LexiconReloader interface {
	Reload() error
}

// Handler wires admin HTTP endpoints to the triage service.
type Handler struct {
	logger  *zap.Logger
	triage  application.TriageService
	lexicon LexiconReloader
	now     func() time.Time
}

// Config provides dependencies for Handler.
type Config struct {
	Logger        *zap.Logger
	TriageService application.TriageService
	// LexiconReloader is optional; the reload route is only mounted when set.
	LexiconReloader LexiconReloader
	Now             func() time.Time
}

// NewHandler constructs an admin HTTP handler set.
func NewHandler(cfg Config) *Handler {
	h := &Handler{
		logger:  cfg.Logger,
		triage:  cfg.TriageService,
		lexicon: cfg.LexiconReloader,
		now:     cfg.Now,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// Register mounts admin routes onto router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/me", h.meHandler())
	r.Get("/feedback", h.feedbackListHandler())
	r.Get("/feedback/{id}", h.feedbackDetailHandler())
	r.Delete("/feedback/{id}", h.feedbackEraseHandler())
	r.Post("/feedback/{id}/analyze", h.feedbackAnalyzeHandler())
	r.Post("/feedback/{id}/improve-response", h.improveResponseHandler())
	r.Patch("/feedback/{id}/processed", h.flagHandler("processed", h.triage.MarkProcessed))
	r.Patch("/feedback/{id}/responded", h.flagHandler("responded", h.triage.MarkResponded))
	r.Get("/trends", h.trendsHandler())
	r.Get("/stats", h.statsHandler())
	r.Get("/summary", h.summaryHandler())
	r.Get("/export", h.exportHandler())
	r.Post("/classify", h.classifyHandler())
	if h.lexicon != nil {
		r.Post("/lexicon/reload", h.lexiconReloadHandler())
	}
}
