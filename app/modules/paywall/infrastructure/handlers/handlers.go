package paywallhandlers

import (
	"errors"
	"log/slog"
	"net/http"

	paywallservice "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/application"
	paywallstore "github.com/Black-And-White-Club/card-scorekeeper/app/modules/paywall/infrastructure/store"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/httpx"
	"github.com/Black-And-White-Club/card-scorekeeper/internal/observability/attr"
	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/trace"
)

var statusRules = []httpx.StatusRule{
	{Err: paywallstore.ErrUnknownPlatform, Status: http.StatusBadRequest},
	{Err: paywallservice.ErrInvalidCode, Status: http.StatusBadRequest},
	{Err: paywallservice.ErrNothingToRestore, Status: http.StatusNotFound},
	{Err: paywallservice.ErrPurchaseFailed, Status: http.StatusBadGateway},
	{Err: paywallservice.ErrRestoreFailed, Status: http.StatusBadGateway},
	{Err: paywallservice.ErrInvalidEntitlement, Status: http.StatusUnauthorized},
}

type redeemRequest struct {
	Code string `json:"code"`
}

type platformRequest struct {
	Platform paywallstore.Platform `json:"platform"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

// PaywallHandlers serves the paywall API.
type PaywallHandlers struct {
	service paywallservice.Service
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewPaywallHandlers creates a new PaywallHandlers.
func NewPaywallHandlers(service paywallservice.Service, logger *slog.Logger, tracer trace.Tracer) *PaywallHandlers {
	return &PaywallHandlers{service: service, logger: logger, tracer: tracer}
}

// RegisterRoutes mounts the paywall routes on r.
func (h *PaywallHandlers) RegisterRoutes(r chi.Router) {
	r.Route("/paywall", func(r chi.Router) {
		r.Get("/", h.HandleStatus)
		r.Get("/products", h.HandleProducts)
		r.Post("/redeem", h.HandleRedeem)
		r.Post("/purchase", h.HandlePurchase)
		r.Post("/restore", h.HandleRestore)
		r.Post("/verify", h.HandleVerify)
	})
}

func (h *PaywallHandlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaywallHandlers.HandleStatus")
	defer span.End()

	status, err := h.service.Status(ctx)
	if err != nil {
		h.fail(w, r, "status", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, status)
}

func (h *PaywallHandlers) HandleProducts(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaywallHandlers.HandleProducts")
	defer span.End()

	products, err := h.service.Products(ctx, paywallstore.Platform(r.URL.Query().Get("platform")))
	if err != nil {
		h.fail(w, r, "products", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, products)
}

func (h *PaywallHandlers) HandleRedeem(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaywallHandlers.HandleRedeem")
	defer span.End()

	var req redeemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	unlock, err := h.service.Redeem(ctx, req.Code)
	if err != nil {
		h.fail(w, r, "redeem", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, unlock)
}

func (h *PaywallHandlers) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaywallHandlers.HandlePurchase")
	defer span.End()

	var req platformRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	unlock, err := h.service.Purchase(ctx, req.Platform)
	if err != nil {
		h.fail(w, r, "purchase", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, unlock)
}

func (h *PaywallHandlers) HandleRestore(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaywallHandlers.HandleRestore")
	defer span.End()

	var req platformRequest
	if err := httpx.DecodeJSON(r, &req); err != nil && !errors.Is(err, httpx.ErrEmptyBody) {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	unlock, err := h.service.Restore(ctx, req.Platform)
	if err != nil {
		h.fail(w, r, "restore", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, unlock)
}

func (h *PaywallHandlers) HandleVerify(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "PaywallHandlers.HandleVerify")
	defer span.End()

	var req verifyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	info, err := h.service.VerifyEntitlement(ctx, req.Token)
	if err != nil {
		h.fail(w, r, "verify", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, info)
}

func (h *PaywallHandlers) fail(w http.ResponseWriter, r *http.Request, action string, err error) {
	h.logger.WarnContext(r.Context(), "Paywall request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("action", action),
		attr.Error(err),
	)
	httpx.WriteServiceError(w, err, statusRules...)
}
