package settingshandlers

import (
	"log/slog"
	"net/http"

	settingsservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/settings/application"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/httpx"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

var statusRules = []httpx.StatusRule{
	{Err: settingsservice.ErrInvalidValue, Status: http.StatusBadRequest},
}

// SettingsHandlers serves the settings API.
type SettingsHandlers struct {
	service settingsservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewSettingsHandlers creates a new SettingsHandlers.
func NewSettingsHandlers(service settingsservice.Service, logger *slog.Logger, tracer trace.Tracer) *SettingsHandlers {
	return &SettingsHandlers{service: service, logger: logger, tracer: tracer}
}

// RegisterRoutes mounts the settings routes on r.
func (h *SettingsHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/settings", h.HandleGetSettings)
	r.Patch("/settings", h.HandleUpdateSettings)
	r.Delete("/storage", h.HandleClearAll)
}

func (h *SettingsHandlers) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SettingsHandlers.HandleGetSettings")
	defer span.End()

	settings, err := h.service.GetSettings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to get settings", attr.ExtractCorrelationID(ctx), attr.Error(err))
		httpx.WriteServiceError(w, err, statusRules...)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandlers) HandleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SettingsHandlers.HandleUpdateSettings")
	defer span.End()

	var req settingsservice.UpdateSettingsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	settings, err := h.service.UpdateSettings(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to update settings", attr.ExtractCorrelationID(ctx), attr.Error(err))
		httpx.WriteServiceError(w, err, statusRules...)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandlers) HandleClearAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "SettingsHandlers.HandleClearAll")
	defer span.End()

	if err := h.service.ClearAll(ctx); err != nil {
		h.logger.ErrorContext(ctx, "Failed to clear storage", attr.ExtractCorrelationID(ctx), attr.Error(err))
		httpx.WriteServiceError(w, err, statusRules...)
		return
	}
	h.logger.InfoContext(ctx, "Storage cleared", attr.ExtractCorrelationID(ctx))
	w.WriteHeader(http.StatusNoContent)
}
