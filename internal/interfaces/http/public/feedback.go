package public

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/common"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func (h *Handler) feedbackSubmitHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitFeedbackRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(&req); err != nil {
			common.WriteMessage(h.logger, w, http.StatusBadRequest, "invalid request body")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		created, err := h.triage.Submit(ctx, req.toCommand())
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to store feedback", zap.String("source", req.Source))
			return
		}

		h.logger.Info("feedback received",
			zap.String("feedbackId", created.Feedback.ID),
			zap.String("source", created.Feedback.Source.String()),
			zap.String("type", created.Feedback.Type.String()),
		)
		common.WriteJSON(h.logger, w, http.StatusCreated, submittedToResponse(*created))
	}
}

func (req submitFeedbackRequest) toCommand() application.SubmitFeedbackCommand {
	cmd := application.SubmitFeedbackCommand{
		Source:  req.Source,
		Type:    req.Type,
		Content: req.Content,
		Rating:  req.Rating,
	}
	if info := req.CustomerInfo; info != nil {
		cmd.CustomerInfo = &application.CustomerInfoInput{
			ID:    info.ID,
			Name:  info.Name,
			Email: info.Email,
			Phone: info.Phone,
			Tier:  info.Tier,
		}
	}
	if c := req.Context; c != nil {
		cmd.Context = &application.ContextInput{
			Page:      c.Page,
			UserAgent: c.UserAgent,
			Locale:    c.Locale,
			Campaign:  c.Campaign,
			OrderID:   c.OrderID,
		}
	}
	return cmd
}

func submittedToResponse(item domain.TriagedFeedback) submitFeedbackResponse {
	resp := submitFeedbackResponse{
		Status:    "received",
		ID:        item.Feedback.ID,
		Source:    item.Feedback.Source.String(),
		Type:      item.Feedback.Type.String(),
		CreatedAt: item.Feedback.CreatedAt,
		Analysis: analysisSummary{
			Sentiment:    item.Sentiment().String(),
			UrgencyLevel: item.UrgencyLevel(),
		},
	}
	if a := item.Analysis; a != nil {
		resp.Analysis.Analyzed = a.IsAnalyzed()
		resp.Analysis.SuggestedResponse = a.SuggestedResponse
	}
	return resp
}
