package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lift-alumni/liftfund/internal/platform/httpx"
)

// Handler serves the audit timeline to administrators.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds the audit Handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.timeline)
}

type timelineRow struct {
	ID       int64          `json:"id"`
	Entity   string         `json:"entity"`
	EntityID uuid.UUID      `json:"entity_id"`
	Action   string         `json:"action"`
	ActorID  int64          `json:"actor_id"`
	Notes    string         `json:"notes,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
	At       time.Time      `json:"occurred_at"`
}

type timelineResponse struct {
	Rows     []timelineRow `json:"rows"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	HasMore  bool          `json:"has_more"`
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := TimelineFilters{
		Entity: q.Get("entity"),
		Action: Action(q.Get("action")),
	}
	if raw := q.Get("entity_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entity_id")
			return
		}
		filters.EntityID = id
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filters.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		filters.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	filters.Page, _ = strconv.Atoi(q.Get("page"))
	filters.PageSize, _ = strconv.Atoi(q.Get("page_size"))

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp := timelineResponse{
		Rows:     make([]timelineRow, 0, len(result.Rows)),
		Page:     result.Page,
		PageSize: result.PageSize,
		HasMore:  result.HasMore,
	}
	for _, rec := range result.Rows {
		resp.Rows = append(resp.Rows, timelineRow{
			ID:       rec.ID,
			Entity:   rec.Entity,
			EntityID: rec.EntityID,
			Action:   string(rec.Action),
			ActorID:  rec.ActorID,
			Notes:    rec.Notes,
			Meta:     rec.Meta,
			At:       rec.At,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}
