// Package leaderboardapi serves standings, history, charts and exports over HTTP.
package leaderboardapi

import (
	"log/slog"
	"net/http"
	"strconv"

	leaderboardservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/leaderboard/application"
	sharedtypes "github.com/Black-And-White-Club/card-scorekeeper/app/shared/types"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/httpx"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var statusRules = []httpx.StatusRule{
	{Err: leaderboardservice.ErrInvalidKind, Status: http.StatusBadRequest},
	{Err: leaderboardservice.ErrParticipantRequired, Status: http.StatusBadRequest},
	{Err: leaderboardservice.ErrInvalidSince, Status: http.StatusBadRequest},
}

// LeaderboardAPI exposes the leaderboard reads.
type LeaderboardAPI struct {
	service leaderboardservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewLeaderboardAPI creates a new LeaderboardAPI.
func NewLeaderboardAPI(service leaderboardservice.Service, logger *slog.Logger, tracer trace.Tracer) *LeaderboardAPI {
	return &LeaderboardAPI{service: service, logger: logger, tracer: tracer}
}

// RegisterRoutes mounts the leaderboard routes on r.
func (h *LeaderboardAPI) RegisterRoutes(r chi.Router) {
	r.Route("/leaderboard", func(r chi.Router) {
		r.Get("/standings", h.HandleStandings)
		r.Get("/history/{participant}", h.HandleHistory)
		r.Get("/history/{participant}/chart.png", h.HandleHistoryChart)
		r.Get("/export.xlsx", h.HandleExport)
	})
}

func (h *LeaderboardAPI) HandleStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardAPI.HandleStandings")
	defer span.End()

	kind := sharedtypes.GameKind(r.URL.Query().Get("kind"))
	standings, err := h.service.Standings(ctx, kind)
	if err != nil {
		h.fail(w, r, "standings", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, standings)
}

func (h *LeaderboardAPI) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardAPI.HandleHistory")
	defer span.End()

	entries, err := h.service.History(ctx, chi.URLParam(r, "participant"), r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, "history", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

func (h *LeaderboardAPI) HandleHistoryChart(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardAPI.HandleHistoryChart")
	defer span.End()

	png, err := h.service.HistoryChart(ctx, chi.URLParam(r, "participant"))
	if err != nil {
		h.fail(w, r, "history chart", err)
		return
	}
	writeBytes(w, "image/png", "", png)
}

func (h *LeaderboardAPI) HandleExport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "LeaderboardAPI.HandleExport")
	defer span.End()

	data, err := h.service.ExportXLSX(ctx)
	if err != nil {
		h.fail(w, r, "export", err)
		return
	}
	writeBytes(w, xlsxContentType, "leaderboard.xlsx", data)
}

func writeBytes(w http.ResponseWriter, contentType, fileName string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if fileName != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+fileName+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *LeaderboardAPI) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logger.WarnContext(r.Context(), "Leaderboard request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("action", action),
		attr.Error(err),
	)
	httpx.WriteServiceError(w, err, statusRules...)
}
