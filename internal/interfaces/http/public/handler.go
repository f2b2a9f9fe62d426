package public

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

// Handler wires public HTTP endpoints to application services.
type Handler struct {
	logger *zap.Logger
	triage application.TriageService
}

// Config defines dependencies required by Handler.
type Config struct {
	Logger        *zap.Logger
	TriageService application.TriageService
}

// NewHandler constructs a public HTTP handler set.
func NewHandler(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{logger: logger, triage: cfg.TriageService}
}

// Register mounts all public routes onto the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/feedback", h.feedbackSubmitHandler())
}
