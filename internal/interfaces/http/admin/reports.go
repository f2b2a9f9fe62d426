package admin

import (
	"bytes"
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sngm3741/makoto-club-services/triage/internal/interfaces/http/common"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/analysis"
	"github.com/sngm3741/makoto-club-services/triage/internal/triage/application"
)

func (h *Handler) trendsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		window, err := common.ParseWindow(query, h.now())
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}
		groupBy, err := analysis.ParseGroupBy(query.Get("groupBy"))
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		report, err := h.triage.Trends(ctx, window, groupBy)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to compute trends")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, trendReportToResponse(*report))
	}
}

func (h *Handler) statsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := common.ParseWindow(r.URL.Query(), h.now())
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		stats, err := h.triage.Stats(ctx, window)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to compute stats")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, statsToResponse(*stats))
	}
}

func (h *Handler) summaryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, err := common.ParseWindow(r.URL.Query(), h.now())
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		summary, err := h.triage.Summary(ctx, window)
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to build summary")
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, summaryResponse{
			Stats:  statsToResponse(summary.Stats),
			Trends: trendReportToResponse(summary.Trends),
		})
	}
}

func (h *Handler) exportHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		window, err := common.ParseWindow(query, h.now())
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}
		includePersonal, err := common.ParseOptionalBool("includePersonalInfo", query.Get("includePersonalInfo"))
		if err != nil {
			common.WriteError(h.logger, w, err, "invalid query")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), common.RequestTimeout)
		defer cancel()

		result, err := h.triage.Export(ctx, application.ExportCommand{
			Window:              window,
			Format:              strings.TrimSpace(query.Get("format")),
			IncludePersonalInfo: includePersonal != nil && *includePersonal,
		})
		if err != nil {
			common.WriteError(h.logger, w, err, "failed to export feedback")
			return
		}

		h.logger.Info("feedback exported",
			zap.String("operator", operatorID(r)),
			zap.String("format", string(result.Format)),
			zap.Int("records", result.TotalRecords),
			zap.Bool("includePersonalInfo", result.IncludePersonalInfo),
		)

		w.Header().Set("Content-Disposition", `attachment; filename="`+exportFilename(result.GeneratedAt, result.Format)+`"`)
		if result.Format == application.ExportCSV {
			var buf bytes.Buffer
			if err := application.WriteCSV(&buf, result); err != nil {
				common.WriteError(h.logger, w, err, "failed to export feedback")
				return
			}
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(buf.Bytes())
			return
		}
		common.WriteJSON(h.logger, w, http.StatusOK, application.NewExportEnvelope(result))
	}
}
