package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/common"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

func (h *Handler) meHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := common.UserFromContext(r.Context())
		if !ok {
			common.WriteMessage(h.logger, w, http.StatusUnauthorized, "authentication required")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, user)
	}
}

func (h *Handler) feedbackListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, paging, err := h.parseListQuery(r)
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		page, err := h.triage.List(ctx, filter, paging)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to list feedback")
			return
		}

		items := make([]feedbackResponse, 0, len(page.Items))
		for _, item := range page.Items {
			items = append(items, feedbackDomainToResponse(item))
		}
		common.WriteJSON(h.logger, w, http.StatusOK, feedbackListResponse{
			Items:   items,
			Total:   page.Total,
			Limit:   page.Limit,
			Offset:  page.Offset,
			HasMore: page.HasMore,
		})
	}
}

func (h *Handler) parseListQuery(r *http.Request) (application.FeedbackFilter, application.Paging, error) {
	query := r.URL.Query()
	var filter application.FeedbackFilter

	if raw := strings.TrimSpace(query.Get("source")); raw != "" {
		source, err := domain.NewSource(raw)
		if err != nil {
			return filter, application.Paging{}, err
		}
		filter.Source = source
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		feedbackType, err := domain.NewFeedbackType(raw)
		if err != nil {
			return filter, application.Paging{}, err
		}
		filter.Type = feedbackType
	}
	if raw := strings.TrimSpace(query.Get("sentiment")); raw != "" {
		sentiment, err := domain.NewSentiment(raw)
		if err != nil {
			return filter, application.Paging{}, err
		}
		filter.Sentiment = sentiment
	}

	var err error
	if filter.Processed, err = common.ParseOptionalBool("processed", query.Get("processed")); err != nil {
		return filter, application.Paging{}, err
	}
	if filter.Responded, err = common.ParseOptionalBool("responded", query.Get("responded")); err != nil {
		return filter, application.Paging{}, err
	}

	// The list is unbounded unless a range or explicit bounds are given.
	if query.Get("range") != "" || query.Get("from") != "" || query.Get("to") != "" {
		if filter.Window, err = common.ParseWindow(query, h.now()); err != nil {
			return filter, application.Paging{}, err
		}
	}

	limit, err := common.ParseInt("limit", query.Get("limit"), 0)
	if err != nil {
		return filter, application.Paging{}, err
	}
	offset, err := common.ParseInt("offset", query.Get("offset"), 0)
	if err != nil {
		return filter, application.Paging{}, err
	}
	paging, err := application.NewPaging(limit, offset)
	return filter, paging, err
}

func (h *Handler) feedbackDetailHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		item, err := h.triage.Detail(ctx, id)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to load feedback", zap.String("feedbackId", id))
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, feedbackDomainToResponse(*item))
	}
}

func (h *Handler) feedbackEraseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if err := h.triage.Erase(ctx, id); err != nil {
			common.WriteError(h.logger, w, err, "failed to erase feedback", zap.String("feedbackId", id))
			return
		}
		h.logger.Info("feedback erased", zap.String("feedbackId", id), zap.String("operator", operatorID(r)))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) feedbackAnalyzeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))
		force, err := common.ParseOptionalBool("force", r.URL.Query().Get("force"))
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		result, err := h.triage.Analyze(ctx, id, force != nil && *force)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to analyze feedback", zap.String("feedbackId", id))
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, analysisDomainToResponse(*result))
	}
}

func (h *Handler) improveResponseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		var req improveResponseRequest
		if !decodeBody(h, w, r, &req) {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		improved, err := h.triage.ImproveResponse(ctx, application.ImproveResponseCommand{
			FeedbackID:      id,
			CurrentResponse: req.CurrentResponse,
			Tone:            req.Tone,
			Length:          req.Length,
		})
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to improve response", zap.String("feedbackId", id))
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, improveResponseResponse{
			FeedbackID:       improved.FeedbackID,
			OriginalResponse: improved.OriginalResponse,
			ImprovedResponse: improved.ImprovedResponse,
			Tone:             string(improved.Tone),
			Length:           string(improved.Length),
			Adjustments:      nonNil(improved.Adjustments),
		})
	}
}

func (h *Handler) flagHandler(name string, mark func(context.Context, string, bool) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(chi.URLParam(r, "id"))

		var req flagRequest
		if !decodeBody(h, w, r, &req) {
			return
		}
		if req.Value == nil {
			common.WriteMessage(h.logger, w, http.StatusBadRequest, "value: is required")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		if err := mark(ctx, id, *req.Value); err != nil {
			common.WriteError(h.logger, w, err, "failed to update "+name, zap.String("feedbackId", id))
			return
		}

		item, err := h.triage.Detail(ctx, id)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to load feedback", zap.String("feedbackId", id))
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, feedbackDomainToResponse(*item))
	}
}

func (h *Handler) classifyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if !decodeBody(h, w, r, &req) {
			return
		}
		preview, err := h.triage.Preview(req.Content, req.Type)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to classify content")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, analysisDomainToResponse(*preview))
	}
}

func (h *Handler) lexiconReloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.lexicon.Reload(); err != nil {
			h.logger.Warn("lexicon reload rejected", zap.Error(err), zap.String("operator", operatorID(r)))
			common.WriteMessage(h.logger, w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, map[string]string{"status": "reloaded"})
	}
}

func decodeBody(h *Handler, w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(io.LimitReader(r.Body, common.MaxRequestBody)).Decode(dst); err != nil {
		common.WriteMessage(h.logger, w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func operatorID(r *http.Request) string {
	if user, ok := common.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return ""
}
