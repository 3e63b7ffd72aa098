package settings

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/lift-alumni/liftfund/internal/platform/httpx"
	"github.com/lift-alumni/liftfund/internal/rbac"
)

// Handler manages settings endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New(), rbac: mw}
}

// MountRoutes registers settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/split-ratio", h.current)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.RoleAdmin, rbac.RoleTreasurer))
		r.Put("/split-ratio", h.update)
	})
}

type ratioResponse struct {
	Percent   int       `json:"percent"`
	AAPercent int       `json:"aa_percent"`
	UpdatedBy int64     `json:"updated_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	ratio, err := h.service.Current(r.Context())
	if err != nil {
		h.logger.Error("load split ratio", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, ratioResponse{
		Percent:   ratio.Percent,
		AAPercent: 100 - ratio.Percent,
		UpdatedBy: ratio.UpdatedBy,
		UpdatedAt: ratio.UpdatedAt,
	})
}

type updateRatioRequest struct {
	Percent *int `json:"percent" validate:"required,min=0,max=100"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req updateRatioRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	ratio, err := h.service.SetRatio(r.Context(), *req.Percent, actor)
	switch {
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	case errors.Is(err, ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
		return
	case err != nil:
		h.logger.Error("update split ratio", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusOK, ratioResponse{
		Percent:   ratio.Percent,
		AAPercent: 100 - ratio.Percent,
		UpdatedBy: ratio.UpdatedBy,
		UpdatedAt: ratio.UpdatedAt,
	})
}
