package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/lift-alumni/liftfund/internal/audit"
	"github.com/lift-alumni/liftfund/internal/money"
	"github.com/lift-alumni/liftfund/internal/platform/httpx"
	"github.com/lift-alumni/liftfund/internal/rbac"
)

const dateLayout = "2006-01-02"

// Handler manages ledger endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	auditSvc *audit.Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, auditSvc *audit.Service, mw rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		auditSvc: auditSvc,
		validate: validator.New(),
		rbac:     mw,
	}
}

// MountRoutes registers ledger routes. Role gating happens here; the
// service re-checks ownership and decision capability on top.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)

		r.Post("/contributions", h.createContribution)
		r.Get("/contributions", h.listEntries(KindContribution))
		r.Get("/contributions/{id}", h.getEntry)
		r.Post("/expenses", h.createExpense)
		r.Get("/expenses", h.listEntries(KindExpense))
		r.Put("/expenses/{id}", h.editEntry)
		r.Get("/ledger/{id}", h.getEntry)
		r.Get("/summary", h.summary)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.RoleAdmin, rbac.RoleTreasurer))

		r.Post("/ledger/{id}/approve", h.approve)
		r.Post("/ledger/{id}/reject", h.reject)
		r.Put("/ledger/{id}", h.editEntry)
		r.Delete("/expenses/{id}", h.deleteExpense)
		r.Get("/ledger/{id}/audit", h.entryAudit)
		r.Get("/ledger/export.csv", h.exportCSV)
	})
}

type entryResponse struct {
	ID               uuid.UUID  `json:"id"`
	Kind             string     `json:"kind"`
	ContributionType string     `json:"contribution_type,omitempty"`
	Bucket           string     `json:"bucket,omitempty"`
	AmountCents      int64      `json:"amount_cents"`
	LiftCents        int64      `json:"lift_cents,omitempty"`
	AACents          int64      `json:"aa_cents,omitempty"`
	LiftPct          int        `json:"lift_pct,omitempty"`
	AAPct            int        `json:"aa_pct,omitempty"`
	Date             string     `json:"date"`
	Status           string     `json:"status"`
	Purpose          string     `json:"purpose,omitempty"`
	Category         string     `json:"category,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	SubmittedBy      int64      `json:"submitted_by"`
	DecidedBy        *int64     `json:"decided_by,omitempty"`
	DecidedAt        *time.Time `json:"decided_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

func toEntryResponse(e LedgerEntry) entryResponse {
	resp := entryResponse{
		ID:               e.ID,
		Kind:             string(e.Kind),
		ContributionType: string(e.ContributionType),
		AmountCents:      e.Total.Cents(),
		Date:             e.Date.Format(dateLayout),
		Status:           string(e.Status),
		Purpose:          e.Purpose,
		Category:         e.Category,
		Notes:            e.Notes,
		SubmittedBy:      e.SubmittedBy,
		DecidedBy:        e.DecidedBy,
		DecidedAt:        e.DecidedAt,
		CreatedAt:        e.CreatedAt,
	}
	if e.Bucket != nil {
		resp.Bucket = string(*e.Bucket)
	}
	if e.IsSplit() {
		resp.LiftCents = e.LiftAmount.Cents()
		resp.AACents = e.AAAmount.Cents()
		resp.LiftPct = e.LiftPct
		resp.AAPct = e.AAPct
	}
	return resp
}

type createContributionRequest struct {
	Type        string `json:"type" validate:"required,oneof=BASIC ADDITIONAL"`
	Bucket      string `json:"bucket" validate:"omitempty,oneof=LIFT ALUMNI_ASSOCIATION"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Notes       string `json:"notes"`
}

// parseAmount resolves the two accepted amount encodings: a decimal
// string ("123.45", comma separator allowed) or raw cents. The decimal
// form wins when both are present.
func parseAmount(amount string, cents int64) (money.Money, error) {
	if amount != "" {
		return money.ParseDecimal(amount)
	}
	if cents == 0 {
		return 0, fmt.Errorf("%w: amount is required", money.ErrInvalidAmount)
	}
	return money.FromCents(cents), nil
}

func (h *Handler) createContribution(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req createContributionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	total, err := parseAmount(req.Amount, req.AmountCents)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	input := CreateContributionInput{
		Type:        ContributionType(req.Type),
		Total:       total,
		Date:        date,
		Notes:       req.Notes,
		SubmittedBy: actor.ID,
	}
	if req.Bucket != "" {
		b := Bucket(req.Bucket)
		input.Bucket = &b
	}

	entry, err := h.service.CreateContribution(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

type createExpenseRequest struct {
	Bucket      string `json:"bucket" validate:"required,oneof=LIFT ALUMNI_ASSOCIATION"`
	AmountCents int64  `json:"amount_cents"`
	Amount      string `json:"amount"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Purpose     string `json:"purpose" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Notes       string `json:"notes"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}

	var req createExpenseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	total, err := parseAmount(req.Amount, req.AmountCents)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, _ := time.Parse(dateLayout, req.Date)

	entry, err := h.service.CreateExpense(r.Context(), CreateExpenseInput{
		Bucket:      Bucket(req.Bucket),
		Total:       total,
		Date:        date,
		Purpose:     req.Purpose,
		Category:    req.Category,
		Notes:       req.Notes,
		SubmittedBy: actor.ID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *Handler) listEntries(kind EntryKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseListRequest(r)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
			return
		}
		req.Kind = kind

		// Alumni see their own submissions; admins see everything.
		if actor, ok := rbac.ActorFromRequest(r); ok && !actor.Role.CanDecide() {
			req.SubmittedBy = actor.ID
		}

		entries, err := h.service.List(r.Context(), req)
		if err != nil {
			h.respondError(w, err)
			return
		}
		out := make([]entryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, toEntryResponse(e))
		}
		httpx.JSON(w, http.StatusOK, out)
	}
}

func parseListRequest(r *http.Request) (ListRequest, error) {
	q := r.URL.Query()
	req := ListRequest{Limit: 100}

	if raw := q.Get("status"); raw != "" {
		req.Status = EntryStatus(raw)
	}
	if raw := q.Get("bucket"); raw != "" {
		req.Bucket = Bucket(raw)
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ListRequest{}, err
		}
		req.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			return ListRequest{}, err
		}
		req.To = t
	}
	return req, nil
}

func (h *Handler) getEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	entry, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

type decisionRequest struct {
	Note string `json:"note"`
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Approve)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, h.service.Reject)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id uuid.UUID, actor rbac.Actor, note string) (LedgerEntry, error)) {
	actor, ok := rbac.ActorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	var req decisionRequest
	if r.ContentLength > 0 {
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
			return
		}
	}

	entry, err := fn(r.Context(), id, actor, req.Note)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

type editRequest struct {
	AmountCents *int64  `json:"amount_cents"`
	Date        *string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Bucket      *string `json:"bucket" validate:"omitempty,oneof=LIFT ALUMNI_ASSOCIATION"`
	Purpose     *string `json:"purpose"`
	Category    *string `json:"category"`
	Notes       *string `json:"notes"`
}

func (h *Handler) editEntry(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}

	var req editRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	updates := EntryUpdate{
		Purpose:  req.Purpose,
		Category: req.Category,
		Notes:    req.Notes,
	}
	if req.AmountCents != nil {
		m := moneyFromCents(*req.AmountCents)
		updates.Total = &m
	}
	if req.Date != nil {
		d, _ := time.Parse(dateLayout, *req.Date)
		updates.Date = &d
	}
	if req.Bucket != nil {
		b := Bucket(*req.Bucket)
		updates.Bucket = &b
	}

	entry, err := h.service.Edit(r.Context(), id, updates, actor)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	actor, ok := rbac.ActorFromRequest(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	if err := h.service.DeleteExpense(r.Context(), id, actor); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type summaryResponse struct {
	Bucket             string `json:"bucket"`
	ContributionsCents int64  `json:"contributions_cents"`
	ExpensesCents      int64  `json:"expenses_cents"`
	BalanceCents       int64  `json:"balance_cents"`
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{Bucket: Bucket(q.Get("bucket"))}
	if filter.Bucket != "" && !filter.Bucket.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown bucket")
		return
	}
	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid from date")
			return
		}
		filter.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(dateLayout, raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid to date")
			return
		}
		filter.To = t
	}

	summaries, err := h.service.Summary(r.Context(), filter)
	if err != nil {
		h.respondError(w, err)
		return
	}

	out := make([]summaryResponse, 0, len(summaries))
	for _, b := range Buckets() {
		s, ok := summaries[b]
		if !ok {
			continue
		}
		out = append(out, summaryResponse{
			Bucket:             string(s.Bucket),
			ContributionsCents: s.Contributions.Cents(),
			ExpensesCents:      s.Expenses.Cents(),
			BalanceCents:       s.Balance.Cents(),
		})
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) entryAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid entry id")
		return
	}
	records, err := h.auditSvc.ForEntry(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

// respondError translates ledger sentinels onto the httpx taxonomy.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrValidation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	case errors.Is(err, ErrForbidden):
		httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	default:
		h.logger.Error("ledger handler", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
