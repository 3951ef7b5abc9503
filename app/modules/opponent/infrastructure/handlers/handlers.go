package opponenthandlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	opponentservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/opponent/application"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/httpx"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

var statusRules = []httpx.StatusRule{
	{Err: opponentservice.ErrOpponentNotFound, Status: http.StatusNotFound},
	{Err: opponentservice.ErrGameNotFound, Status: http.StatusNotFound},
	{Err: opponentservice.ErrNameRequired, Status: http.StatusBadRequest},
	{Err: opponentservice.ErrInvalidTarget, Status: http.StatusBadRequest},
	{Err: opponentservice.ErrInvalidBonusValue, Status: http.StatusBadRequest},
	{Err: opponentservice.ErrInvalidKnockValue, Status: http.StatusBadRequest},
	{Err: scoring.ErrInvalidScore, Status: http.StatusBadRequest},
	{Err: scoring.ErrWinnerRequired, Status: http.StatusBadRequest},
	{Err: scoring.ErrUnknownBonus, Status: http.StatusBadRequest},
	{Err: scoring.ErrRoundIndex, Status: http.StatusBadRequest},
	{Err: paywallservice.ErrPaywallRequired, Status: http.StatusPaymentRequired},
}

type knockRequest struct {
	KnockValue *int `json:"knockValue"`
}

// OpponentHandlers serves the head-to-head API.
type OpponentHandlers struct {
	service opponentservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewOpponentHandlers creates a new OpponentHandlers.
func NewOpponentHandlers(service opponentservice.Service, logger *slog.Logger, tracer trace.Tracer) *OpponentHandlers {
	return &OpponentHandlers{service: service, logger: logger, tracer: tracer}
}

// RegisterRoutes mounts the opponent routes on r.
func (h *OpponentHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/opponents", func(r chi.Router) {
		r.Get("/", h.HandleListOpponents)
		r.Post("/", h.HandleCreateOpponent)
		r.Route("/{opponentID}", func(r chi.Router) {
			r.Get("/", h.HandleGetOpponent)
			r.Put("/", h.HandleUpdateOpponent)
			r.Delete("/", h.HandleDeleteOpponent)
			r.Get("/stats", h.HandleStats)
			r.Post("/games", h.HandleCreateGame)
			r.Route("/games/{gameID}", func(r chi.Router) {
				r.Get("/", h.HandleGetGame)
				r.Delete("/", h.HandleDeleteGame)
				r.Post("/rounds", h.HandleAddRound)
				r.Put("/rounds/{index}", h.HandleEditRound)
				r.Put("/knock", h.HandleSetKnockValue)
			})
		})
	})
}

func (h *OpponentHandlers) HandleListOpponents(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleListOpponents")
	defer span.End()

	opponents, err := h.service.ListOpponents(ctx)
	if err != nil {
		h.fail(w, r, "list opponents", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, opponents)
}

func (h *OpponentHandlers) HandleCreateOpponent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleCreateOpponent")
	defer span.End()

	var req opponentservice.OpponentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	opp, err := h.service.CreateOpponent(ctx, req)
	if err != nil {
		h.fail(w, r, "create opponent", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, opp)
}

func (h *OpponentHandlers) HandleGetOpponent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleGetOpponent")
	defer span.End()

	opp, err := h.service.GetOpponent(ctx, chi.URLParam(r, "opponentID"))
	if err != nil {
		h.fail(w, r, "get opponent", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, opp)
}

func (h *OpponentHandlers) HandleUpdateOpponent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleUpdateOpponent")
	defer span.End()

	var req opponentservice.OpponentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	opp, err := h.service.UpdateOpponent(ctx, chi.URLParam(r, "opponentID"), req)
	if err != nil {
		h.fail(w, r, "update opponent", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, opp)
}

func (h *OpponentHandlers) HandleDeleteOpponent(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleDeleteOpponent")
	defer span.End()

	if err := h.service.DeleteOpponent(ctx, chi.URLParam(r, "opponentID")); err != nil {
		h.fail(w, r, "delete opponent", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OpponentHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleStats")
	defer span.End()

	stats, err := h.service.OpponentStats(ctx, chi.URLParam(r, "opponentID"))
	if err != nil {
		h.fail(w, r, "stats", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *OpponentHandlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleCreateGame")
	defer span.End()

	var req opponentservice.CreateGameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.CreateGame(ctx, chi.URLParam(r, "opponentID"), req)
	if err != nil {
		h.fail(w, r, "create game", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, game)
}

func (h *OpponentHandlers) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleGetGame")
	defer span.End()

	game, err := h.service.GetGame(ctx, chi.URLParam(r, "opponentID"), chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, r, "get game", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

func (h *OpponentHandlers) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleDeleteGame")
	defer span.End()

	if err := h.service.DeleteGame(ctx, chi.URLParam(r, "opponentID"), chi.URLParam(r, "gameID")); err != nil {
		h.fail(w, r, "delete game", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *OpponentHandlers) HandleAddRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleAddRound")
	defer span.End()

	var in opponentservice.RoundInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.AddRound(ctx, chi.URLParam(r, "opponentID"), chi.URLParam(r, "gameID"), in)
	if err != nil {
		h.fail(w, r, "add round", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

func (h *OpponentHandlers) HandleEditRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleEditRound")
	defer span.End()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "round index must be a non-negative integer")
		return
	}
	var in opponentservice.RoundInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.EditRound(ctx, chi.URLParam(r, "opponentID"), chi.URLParam(r, "gameID"), index, in)
	if err != nil {
		h.fail(w, r, "edit round", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

func (h *OpponentHandlers) HandleSetKnockValue(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "OpponentHandlers.HandleSetKnockValue")
	defer span.End()

	var req knockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.SetKnockValue(ctx, chi.URLParam(r, "opponentID"), chi.URLParam(r, "gameID"), req.KnockValue)
	if err != nil {
		h.fail(w, r, "set knock value", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

func (h *OpponentHandlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logger.WarnContext(r.Context(), "Opponent request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("action", action),
		attr.Error(err),
	)
	httpx.WriteServiceError(w, err, statusRules...)
}
