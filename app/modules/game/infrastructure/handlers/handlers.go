package gamehandlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	gameservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/modules/game/infrastructure/parsers"
	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	"github.com/Black-And-White-Club/card-scorekeeper/app/scoring"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/httpx"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

// maxUploadBytes caps scoresheet uploads.
const maxUploadBytes = 5 << 20

var errMissingFile = errors.New("upload a scoresheet in the \"file\" field or name it with ?filename=")

var statusRules = []httpx.StatusRule{
	{Err: gameservice.ErrGameNotFound, Status: http.StatusNotFound},
	{Err: gameservice.ErrInvalidPlayers, Status: http.StatusBadRequest},
	{Err: gameservice.ErrPlayerNameRequired, Status: http.StatusBadRequest},
	{Err: gameservice.ErrDuplicatePlayer, Status: http.StatusBadRequest},
	{Err: gameservice.ErrInvalidTarget, Status: http.StatusBadRequest},
	{Err: gameservice.ErrInvalidSince, Status: http.StatusBadRequest},
	{Err: gameservice.ErrInvalidImport, Status: http.StatusBadRequest},
	{Err: parsers.ErrUnsupportedFile, Status: http.StatusBadRequest},
	{Err: scoring.ErrInvalidScore, Status: http.StatusBadRequest},
	{Err: scoring.ErrUnknownPlayer, Status: http.StatusBadRequest},
	{Err: scoring.ErrBonusPlayerRequired, Status: http.StatusBadRequest},
	{Err: scoring.ErrUnknownBonus, Status: http.StatusBadRequest},
	{Err: scoring.ErrRoundIndex, Status: http.StatusBadRequest},
	{Err: paywallservice.ErrPaywallRequired, Status: http.StatusPaymentRequired},
}

// GameHandlers serves the multiplayer game API.
type GameHandlers struct {
	service gameservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewGameHandlers creates a new GameHandlers.
func NewGameHandlers(service gameservice.Service, logger *slog.Logger, tracer trace.Tracer) *GameHandlers {
	return &GameHandlers{service: service, logger: logger, tracer: tracer}
}

// RegisterRoutes mounts the game routes on r.
func (h *GameHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/games", func(r chi.Router) {
		r.Get("/", h.HandleListGames)
		r.Post("/", h.HandleCreateGame)
		r.Route("/{gameID}", func(r chi.Router) {
			r.Get("/", h.HandleGetGame)
			r.Delete("/", h.HandleDeleteGame)
			r.Post("/rounds", h.HandleAddRound)
			r.Put("/rounds/{index}", h.HandleEditRound)
			r.Post("/import", h.HandleImport)
		})
	})
}

func (h *GameHandlers) HandleListGames(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleListGames")
	defer span.End()

	games, err := h.service.ListGames(ctx, r.URL.Query().Get("since"))
	if err != nil {
		h.fail(w, r, "list games", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, games)
}

func (h *GameHandlers) HandleCreateGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleCreateGame")
	defer span.End()

	var req gameservice.CreateGameRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.CreateGame(ctx, req)
	if err != nil {
		h.fail(w, r, "create game", err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, game)
}

func (h *GameHandlers) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleGetGame")
	defer span.End()

	game, err := h.service.GetGame(ctx, chi.URLParam(r, "gameID"))
	if err != nil {
		h.fail(w, r, "get game", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

func (h *GameHandlers) HandleDeleteGame(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleDeleteGame")
	defer span.End()

	if err := h.service.DeleteGame(ctx, chi.URLParam(r, "gameID")); err != nil {
		h.fail(w, r, "delete game", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandlers) HandleAddRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleAddRound")
	defer span.End()

	var in gameservice.RoundInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.AddRound(ctx, chi.URLParam(r, "gameID"), in)
	if err != nil {
		h.fail(w, r, "add round", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

func (h *GameHandlers) HandleEditRound(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleEditRound")
	defer span.End()

	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || index < 0 {
		httpx.WriteError(w, http.StatusBadRequest, "round index must be a non-negative integer")
		return
	}
	var in gameservice.RoundInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	game, err := h.service.EditRound(ctx, chi.URLParam(r, "gameID"), index, in)
	if err != nil {
		h.fail(w, r, "edit round", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, game)
}

// HandleImport accepts a multipart upload in the "file" field, or the raw
// file as the body with its name in ?filename=.
func (h *GameHandlers) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "GameHandlers.HandleImport")
	defer span.End()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	fileName, data, err := readUpload(r)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.ImportRounds(ctx, chi.URLParam(r, "gameID"), fileName, data)
	if err != nil {
		h.fail(w, r, "import rounds", err)
		return
	}
	h.logger.InfoContext(ctx, "Scoresheet imported",
		attr.ExtractCorrelationID(ctx),
		attr.String("game_id", chi.URLParam(r, "gameID")),
		attr.String("file", fileName),
		attr.Int("rounds", result.Imported),
	)
	httpx.WriteJSON(w, http.StatusOK, result)
}

func readUpload(r *http.Request) (string, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, errMissingFile
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, fmt.Errorf("failed to read upload: %w", err)
		}
		return header.Filename, data, nil
	}

	fileName := strings.TrimSpace(r.URL.Query().Get("filename"))
	if fileName == "" {
		return "", nil, errMissingFile
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return fileName, data, nil
}

func (h *GameHandlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logger.WarnContext(r.Context(), "Game request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("action", action),
		attr.Error(err),
	)
	httpx.WriteServiceError(w, err, statusRules...)
}
